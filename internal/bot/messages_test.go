package bot

import (
	"strings"
	"testing"

	"github.com/hanmaru/vocanote/internal/models"
)

func TestFormatVocabularyHTML(t *testing.T) {
	entry := &models.VocabularyEntry{
		OriginalWord:       "사랑",
		RussianTranslation: "любовь",
		Pronunciation:      "[sa-rang]",
		UsageExamples: []models.UsageExample{
			{
				KoreanSentence:     "사랑해요",
				RussianTranslation: "я люблю тебя",
				GrammarNote:        "해요체",
				GrammarNoteRussian: "вежливая форма",
				Context:            "연인 사이",
			},
		},
	}
	out := formatVocabularyHTML(entry, 7)
	for _, want := range []string{
		"#7", "사랑", "любовь", "[sa-rang]",
		"<b>1. 사랑해요</b>", "я люблю тебя", "해요체", "вежливая форма", "연인 사이",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "맞춤법 교정") {
		t.Error("correction block should be absent without a spelling error")
	}
}

func TestFormatVocabularyHTML_SpellingCorrection(t *testing.T) {
	entry := &models.VocabularyEntry{
		OriginalWord:       "사랑",
		RussianTranslation: "любовь",
		SpellingCheck: &models.SpellCheckInfo{
			OriginalWord:     "사량",
			CorrectedWord:    "사랑",
			HasSpellingError: true,
			CorrectionNote:   "받침 오류",
		},
	}
	out := formatVocabularyHTML(entry, 1)
	for _, want := range []string{"맞춤법 교정", "사량", "받침 오류"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestFormatVocabularyHTML_NoErrorNoCorrectionBlock(t *testing.T) {
	entry := &models.VocabularyEntry{
		OriginalWord:       "사랑",
		RussianTranslation: "любовь",
		SpellingCheck: &models.SpellCheckInfo{
			OriginalWord:  "사랑",
			CorrectedWord: "사랑",
		},
	}
	if out := formatVocabularyHTML(entry, 1); strings.Contains(out, "맞춤법 교정") {
		t.Error("correction block should require has_spelling_error")
	}
}

func TestStartText(t *testing.T) {
	out := startText("Анна")
	if !strings.Contains(out, "Анна") {
		t.Error("greeting should address the user by name")
	}
}
