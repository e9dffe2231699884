// Package search keeps a full-text index of published posts.
package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Index wraps a bleve index.
type Index struct {
	index bleve.Index
}

// Document is what gets indexed for one post.
type Document struct {
	ID          string
	Slug        string
	Title       string
	Excerpt     string
	Content     string
	Tags        []string
	Categories  []string
	Keyword     string
	PublishedAt time.Time
}

// Hit is one search result.
type Hit struct {
	ID        string
	Slug      string
	Title     string
	Score     float64
	Fragments map[string][]string
}

// Open opens the index at path, creating it when missing.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildMapping())
		if err != nil {
			return nil, fmt.Errorf("search: create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("search: open index: %w", err)
	}
	return &Index{index: idx}, nil
}

// NewMemory returns an index that lives only in memory.
func NewMemory() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("search: create memory index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildMapping() mapping.IndexMapping {
	english := bleve.NewTextFieldMapping()
	english.Analyzer = "en"

	keyword := bleve.NewKeywordFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("ID", keyword)
	doc.AddFieldMappingsAt("Slug", keyword)
	doc.AddFieldMappingsAt("Title", english)
	doc.AddFieldMappingsAt("Excerpt", english)
	doc.AddFieldMappingsAt("Content", english)
	doc.AddFieldMappingsAt("Tags", keyword)
	doc.AddFieldMappingsAt("Categories", keyword)
	doc.AddFieldMappingsAt("Keyword", english)
	doc.AddFieldMappingsAt("PublishedAt", bleve.NewDateTimeFieldMapping())

	m := bleve.NewIndexMapping()
	m.DefaultAnalyzer = "en"
	m.DefaultMapping = doc
	return m
}

// Close closes the index.
func (i *Index) Close() error {
	return i.index.Close()
}

// Upsert adds or replaces a document.
func (i *Index) Upsert(doc Document) error {
	if err := i.index.Index(doc.ID, doc); err != nil {
		return fmt.Errorf("search: index %s: %w", doc.ID, err)
	}
	return nil
}

// Delete removes a document. Deleting an unknown id is not an error.
func (i *Index) Delete(id string) error {
	if err := i.index.Delete(id); err != nil {
		return fmt.Errorf("search: delete %s: %w", id, err)
	}
	return nil
}

// Reindex replaces the whole index content with docs in one batch.
func (i *Index) Reindex(docs []Document) error {
	existing, err := i.allIDs()
	if err != nil {
		return err
	}
	batch := i.index.NewBatch()
	for _, id := range existing {
		batch.Delete(id)
	}
	for _, doc := range docs {
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("search: batch index %s: %w", doc.ID, err)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("search: commit batch: %w", err)
	}
	return nil
}

func (i *Index) allIDs() ([]string, error) {
	count, err := i.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("search: count: %w", err)
	}
	if count == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: list ids: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Search runs a query-string query and returns up to limit hits with
// highlighted fragments.
func (i *Index) Search(q string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(q), limit, 0, false)
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Fields = []string{"Slug", "Title"}

	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score, Fragments: h.Fragments}
		if s, ok := h.Fields["Slug"].(string); ok {
			hit.Slug = s
		}
		if s, ok := h.Fields["Title"].(string); ok {
			hit.Title = s
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Count returns the number of indexed documents.
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}
