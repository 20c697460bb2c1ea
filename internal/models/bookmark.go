package models

// BookmarkEntry marks an AI chat message for spaced-repetition review.
// (SessionID, MessageID) is a weak back-reference: the store enforces one
// bookmark per pair, but deleting the session leaves the bookmark intact.
type BookmarkEntry struct {
	ID                 string         `json:"id"`
	SessionID          string         `json:"session_id"`
	MessageID          string         `json:"message_id"`
	KoreanText         string         `json:"korean_text"`
	RussianTranslation string         `json:"russian_translation"`
	Pronunciation      string         `json:"pronunciation,omitempty"`
	UsageExamples      []UsageExample `json:"usage_examples,omitempty"`
	CreatedAt          Timestamp      `json:"created_at,omitzero"`
	ReviewCount        int            `json:"review_count"`
	LastReviewed       Timestamp      `json:"last_reviewed,omitzero"`
	NextReviewDate     Timestamp      `json:"next_review_date,omitzero"`
	DifficultyLevel    int            `json:"difficulty_level"`
	Tags               []string       `json:"tags,omitempty"`
}
