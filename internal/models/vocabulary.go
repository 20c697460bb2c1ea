package models

// UsageExample is one example sentence produced for a vocabulary entry.
// The AI gateway emits these in ordered lists of three by convention;
// the stores do not enforce the count.
type UsageExample struct {
	KoreanSentence     string `json:"korean_sentence"`
	RussianTranslation string `json:"russian_translation"`
	GrammarNote        string `json:"grammar_note"`
	GrammarNoteRussian string `json:"grammar_note_russian"`
	Context            string `json:"context"`
	ContextRussian     string `json:"context_russian,omitempty"`
}

// SpellCheckInfo records the spelling correction applied to the input word.
type SpellCheckInfo struct {
	OriginalWord     string `json:"original_word"`
	CorrectedWord    string `json:"corrected_word"`
	HasSpellingError bool   `json:"has_spelling_error"`
	CorrectionNote   string `json:"correction_note,omitempty"`
}

// VocabularyEntry is a saved translation of one word or phrase.
// OriginalWord is the natural key: saving an entry whose word matches an
// existing entry replaces it in place.
type VocabularyEntry struct {
	ID                 string          `json:"id,omitempty"`
	OriginalWord       string          `json:"original_word"`
	RussianTranslation string          `json:"russian_translation"`
	Pronunciation      string          `json:"pronunciation"`
	UsageExamples      []UsageExample  `json:"usage_examples"`
	SpellingCheck      *SpellCheckInfo `json:"spelling_check,omitempty"`
	CreatedAt          Timestamp       `json:"created_at,omitzero"`
}

// VocabularyRequest is the body of POST /api/generate-vocabulary.
type VocabularyRequest struct {
	KoreanWord string `json:"korean_word"`
}

// VocabularyResponse is the envelope returned by the vocabulary API.
type VocabularyResponse struct {
	Success bool             `json:"success"`
	Data    *VocabularyEntry `json:"data,omitempty"`
	Error   string           `json:"error,omitempty"`
}
