// Package ai wraps the hosted generative model behind the Generator
// interface and supplies the deterministic fallback used whenever the model
// is unavailable or returns unusable output.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/hanmaru/vocanote/internal/models"
)

// DefaultModel is the Gemini model used unless configured otherwise.
const DefaultModel = "gemini-2.0-flash-exp"

// Generator produces a vocabulary entry for a word or phrase.
type Generator interface {
	Generate(ctx context.Context, word string) (*models.VocabularyEntry, error)
}

// GeminiGenerator implements Generator against the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

// NewGeminiGenerator creates a generator using the given API key and model
// name (empty selects DefaultModel).
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	model.ResponseMIMEType = "application/json"
	return &GeminiGenerator{client: client, model: model, logger: logger}, nil
}

// Generate asks the model for a vocabulary entry. Any API failure or
// undecodable payload is returned as an error; callers fall back via
// GenerateOrFallback.
func (g *GeminiGenerator) Generate(ctx context.Context, word string) (*models.VocabularyEntry, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(buildPrompt(word)))
	if err != nil {
		return nil, fmt.Errorf("generate content failed: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return nil, errors.New("empty model response")
	}
	entry, err := decodeEntry(text, word)
	if err != nil {
		g.logger.Warn("model response failed schema decode", zap.Error(err))
		return nil, err
	}
	return entry, nil
}

// Close releases the underlying API client.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}

// decodeEntry strictly decodes a model reply into a VocabularyEntry,
// tolerating markdown code fences around the JSON. Decodes fail closed:
// a reply without a usable translation is rejected rather than partially
// trusted.
func decodeEntry(text, word string) (*models.VocabularyEntry, error) {
	cleaned := stripCodeFence(text)
	var entry models.VocabularyEntry
	if err := json.Unmarshal([]byte(cleaned), &entry); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}
	if entry.RussianTranslation == "" {
		return nil, errors.New("model response missing translation")
	}
	if entry.OriginalWord == "" {
		entry.OriginalWord = word
	}
	return &entry, nil
}

func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	return strings.TrimSpace(cleaned)
}

// GenerateOrFallback asks g for an entry and substitutes the deterministic
// fallback on any failure, so every input always yields some entry. A nil
// generator goes straight to the fallback.
func GenerateOrFallback(ctx context.Context, g Generator, word string, logger *zap.Logger) *models.VocabularyEntry {
	if g == nil {
		return FallbackEntry(word)
	}
	entry, err := g.Generate(ctx, word)
	if err != nil {
		logger.Warn("generation failed, using fallback entry",
			zap.String("word", word), zap.Error(err))
		return FallbackEntry(word)
	}
	return entry
}
