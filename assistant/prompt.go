package assistant

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zasai/zas-translate/languages"
)

const basePrompt = `You are ZAS AI, the assistant of ZAS, a website that translates the source code of web pages.

About ZAS:
- ZAS translates web pages into 27 languages, into one target language or several at once.
- Three AI providers do the work: Groq (fastest), Google AI (most accurate) and Cloudflare (fallback).

How it works:
1. The user pastes HTML into the code editor.
2. They choose the source language and one or more target languages.
3. ZAS extracts the translatable text automatically.
4. The text is translated with AI.
5. Translations are written back into the code with tags and attributes untouched.
6. Arabic, Persian and Urdu automatically get right-to-left (RTL) layout.

Supported languages: %s

Tips for users:
- Whole HTML pages or fragments can be translated.
- All tags and attributes are kept; only text visible to visitors is translated.
- Pick several target languages at once to save time.

Your job: help users understand how to use the site, answer their translation questions and give advice that improves their results.

Rules:
- Always reply in %s only.
- Do not use any other language in your replies.
- Be clear, concise and helpful.`

func languageList() string {
	all := languages.All()
	parts := make([]string, len(all))
	for i, l := range all {
		parts[i] = fmt.Sprintf("%s (%s)", l.Name, l.Code)
	}
	return strings.Join(parts, ", ")
}

// BuildSystemPrompt returns the base prompt followed by the editor content:
// the source code when it is not blank and every translation, ordered by
// language code.
func BuildSystemPrompt(replyLanguage, sourceCode string, translated map[string]string) string {
	if replyLanguage == "" {
		replyLanguage = "Arabic"
	}
	var b strings.Builder
	fmt.Fprintf(&b, basePrompt, languageList(), replyLanguage)

	if strings.TrimSpace(sourceCode) != "" {
		fmt.Fprintf(&b, "\n\nThe source code the user is working on:\n```html\n%s\n```", sourceCode)
	}

	if len(translated) > 0 {
		codes := make([]string, 0, len(translated))
		for code := range translated {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		b.WriteString("\n\nTranslated code:\n")
		for _, code := range codes {
			fmt.Fprintf(&b, "\n**%s:**\n```html\n%s\n```\n", code, translated[code])
		}
	}
	return b.String()
}
