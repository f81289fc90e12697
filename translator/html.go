package translator

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/zasai/zas-translate/languages"
	"github.com/zasai/zas-translate/utils"
)

// content of these elements is never sent for translation
var ignoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
	"svg":      true,
	"template": true,
	"math":     true,
}

var translatableAttrs = []string{"alt", "title", "placeholder", "aria-label"}

// a head or body element also makes the input a document, otherwise the
// fragment parser would drop both elements and their attributes
var fullDocument = regexp.MustCompile(`(?i)<html[\s>]|<!doctype|<head[\s>]|<body[\s>]`)

var (
	htmlOpenTag = regexp.MustCompile(`(?i)<html(\s[^>]*)?>`)
	langDirAttr = regexp.MustCompile(`(?i)\s(?:lang|dir)\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)
)

// Segment is one unique piece of visible text.
type Segment struct {
	Text string
	Hash string
}

type segmentRef struct {
	node  *html.Node
	attr  string // empty for text nodes
	lead  string
	trail string
	hash  string
}

// Page is a parsed HTML input with the locations of its visible text.
// A Page is mutated by Apply and must not be shared between targets.
type Page struct {
	doc      *goquery.Document
	fragment bool
	refs     []segmentRef
	segments []Segment
}

// ParsePage parses a full document or a body fragment and collects its
// translatable segments in document order.
func ParsePage(src string) (*Page, error) {
	p := &Page{}
	if fullDocument.MatchString(src) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("parse html document: %w", err)
		}
		p.doc = doc
	} else {
		context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
		nodes, err := html.ParseFragment(strings.NewReader(src), context)
		if err != nil {
			return nil, fmt.Errorf("parse html fragment: %w", err)
		}
		container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
		for _, n := range nodes {
			container.AppendChild(n)
		}
		p.doc = goquery.NewDocumentFromNode(container)
		p.fragment = true
	}

	seen := make(map[string]bool)
	for _, root := range p.doc.Nodes {
		p.collect(root, seen)
	}
	return p, nil
}

func (p *Page) collect(n *html.Node, seen map[string]bool) {
	switch n.Type {
	case html.TextNode:
		p.add(n, "", n.Data, seen)
		return
	case html.ElementNode:
		if ignoredTags[n.Data] || skipElement(n) {
			return
		}
		for _, name := range elementAttrs(n) {
			if v, ok := attr(n, name); ok {
				p.add(n, name, v, seen)
			}
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.collect(c, seen)
	}
}

func (p *Page) add(n *html.Node, attrName, value string, seen map[string]bool) {
	text := strings.TrimSpace(value)
	if !hasLetter(text) {
		return
	}
	start := strings.Index(value, text)
	ref := segmentRef{
		node:  n,
		attr:  attrName,
		lead:  value[:start],
		trail: value[start+len(text):],
		hash:  utils.HashText(text),
	}
	p.refs = append(p.refs, ref)
	if !seen[ref.hash] {
		seen[ref.hash] = true
		p.segments = append(p.segments, Segment{Text: text, Hash: ref.hash})
	}
}

// Segments returns the unique segments in first-seen order.
func (p *Page) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// Occurrences is the number of places text will be replaced, duplicates included.
func (p *Page) Occurrences() int { return len(p.refs) }

// Apply writes translations (keyed by segment hash) back into the tree,
// keeping the whitespace around each segment. Missing hashes are left as is.
func (p *Page) Apply(translations map[string]string) {
	for _, ref := range p.refs {
		tr, ok := translations[ref.hash]
		if !ok {
			continue
		}
		value := ref.lead + tr + ref.trail
		if ref.attr == "" {
			ref.node.Data = value
			continue
		}
		setAttr(ref.node, ref.attr, value)
	}
}

// Render serializes the page for lang. Documents get lang and dir on <html>;
// fragments are wrapped in a dir="rtl" div only for right-to-left languages.
func (p *Page) Render(lang string) (string, error) {
	code := languages.Normalize(lang)
	dir := languages.Direction(code)

	if !p.fragment {
		if h := p.doc.Find("html"); h.Length() > 0 && code != "" {
			h.SetAttr("lang", code)
			h.SetAttr("dir", dir)
		}
		return p.doc.Html()
	}

	if dir == languages.DirRTL {
		wrapper := p.doc.Selection
		wrapper.SetAttr("dir", dir)
		wrapper.SetAttr("lang", code)
		return goquery.OuterHtml(wrapper)
	}

	var buf bytes.Buffer
	for c := p.doc.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return buf.String(), nil
}

// stampLang sets lang and dir on the <html> start tag of src and leaves every
// other byte as written. Fragments and documents without <html> come back as is.
func stampLang(src, lang string) string {
	code := languages.Normalize(lang)
	loc := htmlOpenTag.FindStringSubmatchIndex(src)
	if code == "" || loc == nil {
		return src
	}
	attrs := ""
	if loc[2] >= 0 {
		attrs = strings.TrimRight(langDirAttr.ReplaceAllString(src[loc[2]:loc[3]], ""), " \t\r\n/")
	}
	tag := fmt.Sprintf(`<html%s lang="%s" dir="%s">`, attrs, code, languages.Direction(code))
	return src[:loc[0]] + tag + src[loc[1]:]
}

func skipElement(n *html.Node) bool {
	if v, ok := attr(n, "translate"); ok && strings.EqualFold(v, "no") {
		return true
	}
	if v, ok := attr(n, "class"); ok {
		for _, cls := range strings.Fields(v) {
			if cls == "notranslate" {
				return true
			}
		}
	}
	return false
}

// elementAttrs lists the attributes of n that carry visible text.
func elementAttrs(n *html.Node) []string {
	names := translatableAttrs
	switch n.Data {
	case "input":
		t, _ := attr(n, "type")
		switch strings.ToLower(t) {
		case "button", "submit", "reset":
			names = append(append([]string{}, names...), "value")
		}
	case "meta":
		name, _ := attr(n, "name")
		switch strings.ToLower(name) {
		case "description", "keywords":
			return []string{"content"}
		}
		return nil
	}
	return names
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
