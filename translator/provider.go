package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/zasai/zas-translate/languages"
)

// BatchRequest is one call to a provider.
type BatchRequest struct {
	Texts      []string
	SourceLang string // "auto" or empty lets the model detect it
	TargetLang string
}

// Provider translates a batch of plain-text segments and returns exactly one
// output per input, in order.
type Provider interface {
	Name() string
	TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error)
}

var (
	ErrNoProviders        = errors.New("no translation provider is configured")
	ErrAllProvidersFailed = errors.New("all translation providers failed")
)

// ProviderError is returned by a provider whose upstream call failed or whose
// answer could not be used.
type ProviderError struct {
	Provider string
	Status   int // HTTP status, 0 when not applicable
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

const systemPrompt = `You are a professional website translator. You receive a JSON array of text fragments taken from a web page.
Translate every fragment and answer with ONLY a JSON array of strings: same length, same order, no commentary, no code fences.
Keep numbers, URLs, e-mail addresses, brand names, placeholders like {name} or %s and HTML entities unchanged.
Never merge or split fragments. If a fragment needs no translation, return it unchanged.`

func userPrompt(req BatchRequest) (string, error) {
	payload, err := json.Marshal(req.Texts)
	if err != nil {
		return "", fmt.Errorf("encode batch: %w", err)
	}
	target := languages.Name(req.TargetLang)
	var b strings.Builder
	if src := strings.ToLower(strings.TrimSpace(req.SourceLang)); src == "" || src == "auto" {
		fmt.Fprintf(&b, "Detect the source language and translate these %d fragments to %s (%s).\n", len(req.Texts), target, req.TargetLang)
	} else {
		fmt.Fprintf(&b, "Translate these %d fragments from %s (%s) to %s (%s).\n",
			len(req.Texts), languages.Name(src), src, target, req.TargetLang)
	}
	fmt.Fprintf(&b, "Return exactly %d strings.\n\n", len(req.Texts))
	b.Write(payload)
	return b.String(), nil
}

// parseTranslations extracts the JSON string array from a model answer that
// may be wrapped in code fences or surrounded by prose.
func parseTranslations(content string, expected int) ([]string, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if i := strings.Index(content, "\n"); i >= 0 {
			content = content[i+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var out []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("decode JSON array: %w", err)
	}
	if len(out) != expected {
		return nil, fmt.Errorf("expected %d translations, got %d", expected, len(out))
	}
	return out, nil
}

var (
	strictPolicy = bluemonday.StrictPolicy()
	tagLike      = regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9-]*(?:\s[^<>]*)?/?>`)
	keptTag      = regexp.MustCompile("\uE000([0-9]+)\uE001")
)

// cleanOutput strips markup the model added to a translation of src.
// Tag-like text that src already shows (e.g. "<div>" on a page about HTML)
// is kept. The HTML tree escapes the result again on render, so entities
// are decoded here.
func cleanOutput(src, out string) string {
	var kept []string
	masked := tagLike.ReplaceAllStringFunc(out, func(tag string) string {
		if !strings.Contains(src, tag) {
			return tag
		}
		kept = append(kept, tag)
		return fmt.Sprintf("\uE000%d\uE001", len(kept)-1)
	})
	cleaned := html.UnescapeString(strictPolicy.Sanitize(masked))
	if len(kept) > 0 {
		cleaned = keptTag.ReplaceAllStringFunc(cleaned, func(m string) string {
			i, err := strconv.Atoi(keptTag.FindStringSubmatch(m)[1])
			if err != nil || i >= len(kept) {
				return m
			}
			return kept[i]
		})
	}
	return strings.TrimSpace(cleaned)
}
