package ai

import (
	"fmt"

	"github.com/hanmaru/vocanote/internal/models"
)

// FallbackEntry synthesizes a minimal vocabulary entry purely from the input
// text: no network, no randomness, never fails. It is the substitute payload
// whenever the model is unreachable or its output cannot be decoded.
func FallbackEntry(word string) *models.VocabularyEntry {
	return &models.VocabularyEntry{
		OriginalWord:       word,
		RussianTranslation: "번역 필요",
		Pronunciation:      fmt.Sprintf("[%s]", word),
		UsageExamples: []models.UsageExample{
			{
				KoreanSentence:     fmt.Sprintf("%s를 사용해보세요", word),
				RussianTranslation: "Попробуйте использовать это слово",
				GrammarNote:        "기본 사용법",
				GrammarNoteRussian: "базовое использование",
				Context:            "일반적인 상황",
			},
			{
				KoreanSentence:     fmt.Sprintf("정말 %s네요", word),
				RussianTranslation: "Действительно...",
				GrammarNote:        "감탄 표현",
				GrammarNoteRussian: "восклицательное выражение",
				Context:            "감정 표현시",
			},
			{
				KoreanSentence:     fmt.Sprintf("%s라고 생각해요", word),
				RussianTranslation: "Я думаю, что...",
				GrammarNote:        "의견 표현",
				GrammarNoteRussian: "выражение мнения",
				Context:            "의견을 말할 때",
			},
		},
	}
}
