// Package search maintains a Bleve full-text index over saved vocabulary
// entries. Bookmark search is deliberately not routed here: its contract is
// a plain substring match handled by the bookmark store.
package search

import (
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/hanmaru/vocanote/internal/models"
)

// WordIndex wraps a Bleve index keyed by the vocabulary natural key.
type WordIndex struct {
	index bleve.Index
}

// indexedEntry is the flattened document shape fed to Bleve.
type indexedEntry struct {
	Word          string `json:"word"`
	Translation   string `json:"translation"`
	Pronunciation string `json:"pronunciation"`
	Sentences     string `json:"sentences"`
}

// Hit is one search result.
type Hit struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

func indexMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize, no stemming. Korean and
	// Russian words must match exactly as typed.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("word", textFieldMapping)
	docMapping.AddFieldMappingsAt("translation", textFieldMapping)
	docMapping.AddFieldMappingsAt("pronunciation", textFieldMapping)
	docMapping.AddFieldMappingsAt("sentences", textFieldMapping)
	im.AddDocumentMapping("entry", docMapping)
	im.DefaultType = "entry"
	im.DefaultMapping = docMapping
	return im
}

// NewWordIndex creates or opens the index at path. An existing index is
// opened and reused; remove the directory to force a full rebuild after a
// mapping change.
func NewWordIndex(path string) (*WordIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open word index: %w", openErr)
		}
		return &WordIndex{index: index}, nil
	}
	index, err := bleve.New(path, indexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create word index: %w", err)
	}
	return &WordIndex{index: index}, nil
}

// NewMemoryWordIndex creates an in-memory index, used in tests.
func NewMemoryWordIndex() (*WordIndex, error) {
	index, err := bleve.NewMemOnly(indexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create word index: %w", err)
	}
	return &WordIndex{index: index}, nil
}

// Index adds or updates the entry, keyed by its word.
func (w *WordIndex) Index(entry *models.VocabularyEntry) error {
	var sentences []string
	for _, example := range entry.UsageExamples {
		sentences = append(sentences, example.KoreanSentence, example.RussianTranslation)
	}
	doc := indexedEntry{
		Word:          entry.OriginalWord,
		Translation:   entry.RussianTranslation,
		Pronunciation: entry.Pronunciation,
		Sentences:     strings.Join(sentences, " "),
	}
	return w.index.Index(entry.OriginalWord, doc)
}

// Delete removes the entry for word from the index.
func (w *WordIndex) Delete(word string) error {
	return w.index.Delete(word)
}

// Rebuild re-indexes the given entries in one batch, replacing prior state
// for their keys. Used at startup to catch up with the JSON store.
func (w *WordIndex) Rebuild(entries []*models.VocabularyEntry) error {
	batch := w.index.NewBatch()
	for _, entry := range entries {
		var sentences []string
		for _, example := range entry.UsageExamples {
			sentences = append(sentences, example.KoreanSentence, example.RussianTranslation)
		}
		doc := indexedEntry{
			Word:          entry.OriginalWord,
			Translation:   entry.RussianTranslation,
			Pronunciation: entry.Pronunciation,
			Sentences:     strings.Join(sentences, " "),
		}
		if err := batch.Index(entry.OriginalWord, doc); err != nil {
			return err
		}
	}
	return w.index.Batch(batch)
}

// Search runs a match query over all fields and returns up to limit hits.
func (w *WordIndex) Search(query string, limit int) ([]*Hit, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := w.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("word index search failed: %w", err)
	}
	hits := make([]*Hit, len(results.Hits))
	for i, hit := range results.Hits {
		hits[i] = &Hit{Word: hit.ID, Score: hit.Score}
	}
	return hits, nil
}

// Close releases the index.
func (w *WordIndex) Close() error {
	return w.index.Close()
}
