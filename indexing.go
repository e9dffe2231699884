package blockpress

import (
	"errors"

	"go.uber.org/zap"

	"github.com/eringen/blockpress/search"
)

// SearchDocument returns the fields of p that go into the full-text index.
func (p Post) SearchDocument() search.Document {
	return search.Document{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Content:     p.ContentText,
		Tags:        p.Tags,
		Categories:  p.Categories,
		Keyword:     p.SEO.FocusKeyword,
		PublishedAt: p.Date(),
	}
}

// Reindex rebuilds the search index from every published post.
func (a *App) Reindex() (int, error) {
	posts, err := a.Store.ListPublished(0)
	if err != nil {
		return 0, err
	}
	docs := make([]search.Document, 0, len(posts))
	for _, p := range posts {
		docs = append(docs, p.SearchDocument())
	}
	return len(docs), a.Search.Reindex(docs)
}

// syncSearch makes the index agree with the stored state of one post:
// published posts are indexed, everything else is removed.
func (a *App) syncSearch(id string) {
	post, err := a.Store.GetPost(id)
	switch {
	case errors.Is(err, ErrNotFound):
		err = a.Search.Delete(id)
	case err != nil:
	case post.Status == StatusPublished:
		err = a.Search.Upsert(post.SearchDocument())
	default:
		err = a.Search.Delete(id)
	}
	if err != nil {
		a.Logger.Warn("search sync failed", zap.String("post", id), zap.Error(err))
	}
}
