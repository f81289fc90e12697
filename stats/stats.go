// Package stats aggregates translation history into the numbers shown on the
// statistics page. Nothing here is persisted.
package stats

import (
	"math"
	"sort"

	"github.com/zasai/zas-translate/languages"
	"github.com/zasai/zas-translate/models"
)

// TopLanguages caps the breakdown returned by Compute.
const TopLanguages = 10

type LanguageCount struct {
	Language string `json:"language"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}

type Summary struct {
	TotalTranslations          int             `json:"totalTranslations"`
	TotalLanguages             int             `json:"totalLanguages"`
	AvgLanguagesPerTranslation float64         `json:"avgLanguagesPerTranslation"`
	LanguageBreakdown          []LanguageCount `json:"languageBreakdown"`
}

// Buckets counts every occurrence of a target language; a record with N
// targets adds N increments.
func Buckets(records []models.TranslationHistory) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		for _, lang := range r.TargetLangs {
			counts[lang]++
		}
	}
	return counts
}

// Compute builds the summary for a set of records. The breakdown is sorted by
// count descending, then by code, and holds at most TopLanguages entries.
func Compute(records []models.TranslationHistory) Summary {
	counts := Buckets(records)

	total := 0
	breakdown := make([]LanguageCount, 0, len(counts))
	for lang, n := range counts {
		total += n
		breakdown = append(breakdown, LanguageCount{Language: lang, Name: languages.Name(lang), Count: n})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Count != breakdown[j].Count {
			return breakdown[i].Count > breakdown[j].Count
		}
		return breakdown[i].Language < breakdown[j].Language
	})
	if len(breakdown) > TopLanguages {
		breakdown = breakdown[:TopLanguages]
	}

	avg := 0.0
	if len(records) > 0 {
		avg = math.Round(float64(total)/float64(len(records))*10) / 10
	}

	return Summary{
		TotalTranslations:          len(records),
		TotalLanguages:             len(counts),
		AvgLanguagesPerTranslation: avg,
		LanguageBreakdown:          breakdown,
	}
}
