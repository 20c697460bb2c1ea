// Package langdetect classifies input text as Korean, Russian, mixed, or
// unknown using character-ratio heuristics over Unicode ranges.
package langdetect

import (
	"strings"
	"unicode"
)

// Mode is the translation mode requested by the caller.
type Mode string

// Translation modes.
const (
	ModeAuto    Mode = "auto"
	ModeKorean  Mode = "korean"
	ModeRussian Mode = "russian"
)

// Detected languages.
const (
	LanguageKorean  = "korean"
	LanguageRussian = "russian"
	LanguageMixed   = "mixed"
	LanguageUnknown = "unknown"
)

// confidenceThreshold is the ratio a single script must exceed for a
// definitive classification. Fixed contract; do not tune.
const confidenceThreshold = 0.7

// Result is the outcome of language detection.
type Result struct {
	Language          string  `json:"language"`
	Confidence        float64 `json:"confidence"`
	Text              string  `json:"text"`
	ShouldTranslateTo string  `json:"should_translate_to,omitempty"`
	ForcedLanguage    string  `json:"forced_language,omitempty"`
}

// Detect classifies text. A forced korean/russian mode short-circuits with
// full confidence and the fixed opposite target without inspecting the text.
// Otherwise the Hangul and Cyrillic character counts are compared against
// all letters and digits: a ratio above 0.7 is definitive, both scripts
// present without a definitive ratio is mixed, anything else is unknown.
func Detect(text string, forced Mode) Result {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return Result{Language: LanguageUnknown, Confidence: 0, Text: text}
	}

	switch forced {
	case ModeKorean:
		return Result{
			Language:          LanguageKorean,
			Confidence:        1.0,
			Text:              text,
			ForcedLanguage:    LanguageKorean,
			ShouldTranslateTo: LanguageRussian,
		}
	case ModeRussian:
		return Result{
			Language:          LanguageRussian,
			Confidence:        1.0,
			Text:              text,
			ForcedLanguage:    LanguageRussian,
			ShouldTranslateTo: LanguageKorean,
		}
	}

	var koreanChars, russianChars, totalChars int
	for _, r := range cleaned {
		if isKoreanRune(r) {
			koreanChars++
		}
		if isRussianRune(r) {
			russianChars++
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			totalChars++
		}
	}
	if totalChars == 0 {
		return Result{Language: LanguageUnknown, Confidence: 0, Text: text}
	}

	koreanRatio := float64(koreanChars) / float64(totalChars)
	russianRatio := float64(russianChars) / float64(totalChars)

	switch {
	case koreanRatio > confidenceThreshold:
		return Result{
			Language:          LanguageKorean,
			Confidence:        koreanRatio,
			Text:              text,
			ShouldTranslateTo: LanguageRussian,
		}
	case russianRatio > confidenceThreshold:
		return Result{
			Language:          LanguageRussian,
			Confidence:        russianRatio,
			Text:              text,
			ShouldTranslateTo: LanguageKorean,
		}
	case koreanRatio > 0 && russianRatio > 0:
		return Result{
			Language:   LanguageMixed,
			Confidence: max(koreanRatio, russianRatio),
			Text:       text,
		}
	default:
		return Result{Language: LanguageUnknown, Confidence: 0, Text: text}
	}
}

// isKoreanRune reports Hangul syllables and compatibility jamo.
func isKoreanRune(r rune) bool {
	return (r >= '가' && r <= '힣') ||
		(r >= 'ㄱ' && r <= 'ㅎ') ||
		(r >= 'ㅏ' && r <= 'ㅣ')
}

// isRussianRune reports Cyrillic letters in the Russian alphabet.
func isRussianRune(r rune) bool {
	return (r >= 'а' && r <= 'я') ||
		(r >= 'А' && r <= 'Я') ||
		r == 'ё' || r == 'Ё'
}
