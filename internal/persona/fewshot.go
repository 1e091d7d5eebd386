// Package persona supplies the few-shot style examples injected into the
// generation prompt. The dataset is embedded, validated once at startup and
// read-only afterwards.
package persona

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"
	"unicode/utf8"
)

//go:embed dataset.json
var datasetJSON []byte

type Example struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Language    string `json:"language"` // "russian" or "uzbek"
	Premium     bool   `json:"premium"`
	Output      string `json:"output"`
}

type FewShotConfig struct {
	MaxExamples int
	MaxChars    int
}

func DefaultFewShotConfig() FewShotConfig {
	return FewShotConfig{MaxExamples: 4, MaxChars: 1400}
}

var (
	loadOnce sync.Once
	dataset  []Example
)

func datasetLanguage(locale string) string {
	if locale == "uz" {
		return "uzbek"
	}
	return "russian"
}

func validExample(ex Example) bool {
	if ex.Language != "russian" && ex.Language != "uzbek" {
		return false
	}
	if n := utf8.RuneCountInString(ex.Instruction); n < 1 || n > 300 {
		return false
	}
	if n := utf8.RuneCountInString(ex.Input); n < 1 || n > 500 {
		return false
	}
	if n := utf8.RuneCountInString(ex.Output); n < 1 || n > 800 {
		return false
	}
	return true
}

func loadDataset() []Example {
	loadOnce.Do(func() {
		var raw []Example
		if err := json.Unmarshal(datasetJSON, &raw); err != nil {
			return
		}
		for _, ex := range raw {
			if validExample(ex) {
				dataset = append(dataset, ex)
			}
		}
	})
	return dataset
}

// Render returns the few-shot block for the system prompt, or "" when no
// examples fit. Examples matching both language and premium flag come first;
// the other premium tier of the same language fills remaining slots.
func Render(locale string, premium bool, cfg FewShotConfig) string {
	ds := loadDataset()
	if len(ds) == 0 {
		return ""
	}

	lang := datasetLanguage(locale)

	var selected []Example
	for _, ex := range ds {
		if ex.Language == lang && ex.Premium == premium {
			selected = append(selected, ex)
			if len(selected) >= cfg.MaxExamples {
				break
			}
		}
	}
	if len(selected) < cfg.MaxExamples {
		for _, ex := range ds {
			if ex.Language == lang && ex.Premium != premium {
				selected = append(selected, ex)
				if len(selected) >= cfg.MaxExamples {
					break
				}
			}
		}
	}
	if len(selected) == 0 {
		return ""
	}

	header := "ПРИМЕРЫ СТИЛЯ (только стиль, не факты):"
	if locale == "uz" {
		header = "USLUB NAMUNALARI (faqat uslub uchun, fakt emas):"
	}

	parts := []string{header}
	used := 0
	for _, ex := range selected {
		block := "User: " + ex.Input + "\nAssistant: " + ex.Output
		if used+len(block) > cfg.MaxChars {
			break
		}
		parts = append(parts, block)
		used += len(block)
	}

	return strings.TrimSpace(strings.Join(parts, "\n"))
}
