// Package languages is the fixed registry of the 27 languages pages can be
// translated into, with display names and text direction.
package languages

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language describes one supported language.
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	Dir        string `json:"dir"`
}

const (
	DirLTR = "ltr"
	DirRTL = "rtl"
)

// order matters: it is the order shown in the language picker
var registry = []Language{
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "ar", Name: "Arabic", NativeName: "العربية"},
	{Code: "es", Name: "Spanish", NativeName: "Español"},
	{Code: "de", Name: "German", NativeName: "Deutsch"},
	{Code: "it", Name: "Italian", NativeName: "Italiano"},
	{Code: "tr", Name: "Turkish", NativeName: "Türkçe"},
	{Code: "fr", Name: "French", NativeName: "Français"},
	{Code: "zh", Name: "Chinese", NativeName: "中文"},
	{Code: "ko", Name: "Korean", NativeName: "한국어"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語"},
	{Code: "ru", Name: "Russian", NativeName: "Русский"},
	{Code: "id", Name: "Indonesian", NativeName: "Bahasa Indonesia"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "bn", Name: "Bengali", NativeName: "বাংলা"},
	{Code: "pl", Name: "Polish", NativeName: "Polski"},
	{Code: "th", Name: "Thai", NativeName: "ไทย"},
	{Code: "sv", Name: "Swedish", NativeName: "Svenska"},
	{Code: "el", Name: "Greek", NativeName: "Ελληνικά"},
	{Code: "cs", Name: "Czech", NativeName: "Čeština"},
	{Code: "ro", Name: "Romanian", NativeName: "Română"},
	{Code: "hu", Name: "Hungarian", NativeName: "Magyar"},
	{Code: "fi", Name: "Finnish", NativeName: "Suomi"},
	{Code: "uk", Name: "Ukrainian", NativeName: "Українська"},
	{Code: "fa", Name: "Persian", NativeName: "فارسی"},
	{Code: "ur", Name: "Urdu", NativeName: "اردو"},
	{Code: "ms", Name: "Malay", NativeName: "Bahasa Melayu"},
	{Code: "tl", Name: "Filipino", NativeName: "Filipino"},
}

var rtl = map[string]bool{
	"ar": true,
	"fa": true,
	"ur": true,
}

var byCode map[string]Language

func init() {
	byCode = make(map[string]Language, len(registry))
	for i := range registry {
		if rtl[registry[i].Code] {
			registry[i].Dir = DirRTL
		} else {
			registry[i].Dir = DirLTR
		}
		byCode[registry[i].Code] = registry[i]
	}
}

// All returns a copy of the registry in display order.
func All() []Language {
	out := make([]Language, len(registry))
	copy(out, registry)
	return out
}

// Normalize maps a tag such as "AR", "ar-EG" or "fil" to its base code.
// The result is not checked against the registry.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	switch b := base.String(); b {
	case "fil":
		return "tl"
	default:
		return b
	}
}

// Lookup returns the language for code after normalization.
func Lookup(code string) (Language, bool) {
	l, ok := byCode[Normalize(code)]
	return l, ok
}

func IsSupported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

func IsRTL(code string) bool {
	return rtl[Normalize(code)]
}

// Direction returns "rtl" or "ltr".
func Direction(code string) string {
	if IsRTL(code) {
		return DirRTL
	}
	return DirLTR
}

// Name returns the English name, or the code itself when unknown.
func Name(code string) string {
	if l, ok := Lookup(code); ok {
		return l.Name
	}
	return code
}

// ValidateTargets normalizes codes, drops duplicates keeping first occurrence,
// and rejects empty lists and unknown codes.
func ValidateTargets(codes []string) ([]string, error) {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		l, ok := Lookup(c)
		if !ok {
			return nil, fmt.Errorf("unsupported target language %q", c)
		}
		if seen[l.Code] {
			continue
		}
		seen[l.Code] = true
		out = append(out, l.Code)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one target language is required")
	}
	return out, nil
}
