package search

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestUpsertAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Upsert(Document{
		ID: "1", Slug: "go-testing", Title: "Go testing in practice",
		Content: "Table driven tests keep things tidy.", PublishedAt: time.Now(),
	}))
	require.NoError(t, idx.Upsert(Document{
		ID: "2", Slug: "sqlite-wal", Title: "SQLite WAL mode",
		Content: "Write ahead logging lets readers proceed.",
	}))

	hits, err := idx.Search("tests", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "1", hits[0].ID)
	assert.Equal(t, "go-testing", hits[0].Slug)
	assert.Equal(t, "Go testing in practice", hits[0].Title)

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestUpsertReplaces(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Upsert(Document{ID: "1", Title: "alpha"}))
	require.NoError(t, idx.Upsert(Document{ID: "1", Title: "bravo"}))

	hits, err := idx.Search("alpha", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
	hits, err = idx.Search("bravo", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestDelete(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Upsert(Document{ID: "1", Title: "gone soon"}))
	require.NoError(t, idx.Delete("1"))
	require.NoError(t, idx.Delete("missing"))

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReindex(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Upsert(Document{ID: "stale", Title: "stale entry"}))
	require.NoError(t, idx.Reindex([]Document{
		{ID: "a", Title: "first"},
		{ID: "b", Title: "second"},
	}))

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
	hits, err := idx.Search("stale", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.bleve")
	idx, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(Document{ID: "1", Title: "persisted"}))
	require.NoError(t, idx.Close())

	idx, err = Open(path)
	require.NoError(t, err)
	defer idx.Close()
	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
