package blockpress

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/eringen/blockpress/blocks"
	"github.com/eringen/blockpress/content"
)

// MaxRevisions is the number of revisions kept per post.
const MaxRevisions = 10

// timeLayout is fixed width so stored timestamps compare as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps a SQLite database holding posts, revisions, categories and
// settings.
type Store struct {
	db       *sql.DB
	now      func() time.Time
	observe  func(time.Duration)
	defaults Settings
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithPipelineObserver is called with the duration of every content
// pipeline run.
func WithPipelineObserver(fn func(time.Duration)) StoreOption {
	return func(s *Store) { s.observe = fn }
}

// WithDefaultSettings sets what GetSettings returns before any settings
// were saved.
func WithDefaultSettings(settings Settings) StoreOption {
	return func(s *Store) { s.defaults = settings }
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string, opts ...StoreOption) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers run alongside the single writer; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, now: time.Now, defaults: DefaultSettings()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '[]',
    content_html TEXT NOT NULL DEFAULT '',
    content_text TEXT NOT NULL DEFAULT '',
    cover_image TEXT NOT NULL DEFAULT '',
    categories TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '{}',
    seo TEXT NOT NULL DEFAULT '{}',
    status TEXT NOT NULL DEFAULT 'draft',
    published_at TEXT NOT NULL DEFAULT '',
    scheduled_at TEXT NOT NULL DEFAULT '',
    reading_time INTEGER NOT NULL DEFAULT 1,
    word_count INTEGER NOT NULL DEFAULT 0,
    version INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_status_published ON posts(status, published_at);
CREATE TABLE IF NOT EXISTS revisions (
    post_id TEXT NOT NULL,
    version INTEGER NOT NULL,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    content_html TEXT NOT NULL,
    saved_at TEXT NOT NULL,
    PRIMARY KEY (post_id, version)
);
CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    seo TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL DEFAULT 0,
    parent_id TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS settings (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("blockpress: migrate: %w", err)
	}
	return nil
}

func (s *Store) process(nodes []blocks.Node, excerpt string) content.Result {
	start := time.Now()
	res := content.Process(nodes, excerpt)
	if s.observe != nil {
		s.observe(time.Since(start))
	}
	return res
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

const postColumns = `id, slug, title, excerpt, content, content_html, content_text, cover_image,
	categories, tags, author, seo, status, published_at, scheduled_at, reading_time, word_count,
	version, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (Post, error) {
	var (
		p                                   Post
		contentJSON, cover, cats, tags      string
		author, seoJSON, status, pub, sched string
		created, updated                    string
	)
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &contentJSON, &p.ContentHTML, &p.ContentText,
		&cover, &cats, &tags, &author, &seoJSON, &status, &pub, &sched, &p.ReadingTime, &p.WordCount,
		&p.Version, &created, &updated)
	if err != nil {
		return Post{}, err
	}
	p.Status = PostStatus(status)
	p.Categories = ParseTags(cats)
	p.Tags = ParseTags(tags)
	if err := json.Unmarshal([]byte(contentJSON), &p.Content); err != nil {
		return Post{}, fmt.Errorf("blockpress: decode content of %s: %w", p.ID, err)
	}
	if cover != "" {
		p.CoverImage = &MediaReference{}
		if err := json.Unmarshal([]byte(cover), p.CoverImage); err != nil {
			return Post{}, fmt.Errorf("blockpress: decode cover of %s: %w", p.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(author), &p.Author); err != nil {
		return Post{}, fmt.Errorf("blockpress: decode author of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(seoJSON), &p.SEO); err != nil {
		return Post{}, fmt.Errorf("blockpress: decode seo of %s: %w", p.ID, err)
	}
	if p.PublishedAt, err = parseTimePtr(pub); err != nil {
		return Post{}, err
	}
	if p.ScheduledAt, err = parseTimePtr(sched); err != nil {
		return Post{}, err
	}
	if p.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return Post{}, err
	}
	if p.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return Post{}, err
	}
	return p, nil
}

func scanPosts(rows *sql.Rows) ([]Post, error) {
	defer rows.Close()
	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CreatePost validates in, runs the content pipeline and inserts a new post
// with a unique slug.
func (s *Store) CreatePost(in PostInput) (Post, error) {
	title := ""
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
	}
	if title == "" {
		return Post{}, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	status := StatusDraft
	if in.Status != nil {
		status = *in.Status
	}
	if !status.Valid() {
		return Post{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}
	if status == StatusScheduled && in.ScheduledAt == nil {
		return Post{}, fmt.Errorf("%w: scheduledAt is required for scheduled posts", ErrInvalid)
	}

	explicit := ""
	if in.Excerpt != nil {
		explicit = *in.Excerpt
	}
	res := s.process(in.Content, explicit)
	now := s.timestamp()

	p := Post{
		ID:          uuid.NewString(),
		Title:       title,
		Excerpt:     res.Excerpt,
		Content:     in.Content,
		ContentHTML: res.ContentHTML,
		ContentText: res.ContentText,
		CoverImage:  in.CoverImage,
		Categories:  FilterEmpty(in.Categories),
		Tags:        NormalizeTags(in.Tags),
		Author:      Author{Name: "Admin"},
		SEO:         PostSEO{OGType: "article"},
		Status:      status,
		PublishedAt: utcPtr(in.PublishedAt),
		ScheduledAt: utcPtr(in.ScheduledAt),
		ReadingTime: res.ReadingTime,
		WordCount:   res.WordCount,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Content == nil {
		p.Content = []blocks.Node{}
	}
	if in.Author != nil && strings.TrimSpace(in.Author.Name) != "" {
		p.Author = *in.Author
	}
	if in.SEO != nil {
		p.SEO = *in.SEO
		if p.SEO.OGType == "" {
			p.SEO.OGType = "article"
		}
	}
	if status == StatusPublished {
		p.PublishedAt = &now
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Post{}, err
	}
	defer tx.Rollback()

	base := slugBase(in.Slug, title)
	if p.Slug, err = uniqueSlug(tx, "posts", base, ""); err != nil {
		return Post{}, err
	}
	if err := insertPost(tx, p); err != nil {
		return Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return Post{}, err
	}
	return p, nil
}

// UpdatePost applies the non-nil fields of in. A new content tree re-runs
// the pipeline, stores the previous state as a revision and bumps the
// version. The first transition to published stamps PublishedAt.
func (s *Store) UpdatePost(id string, in PostInput) (Post, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Post{}, err
	}
	defer tx.Rollback()

	existing, err := scanPost(tx.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		return Post{}, err
	}
	p := existing
	now := s.timestamp()

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return Post{}, fmt.Errorf("%w: title is required", ErrInvalid)
		}
		p.Title = title
	}
	if in.Slug != nil {
		slug := GenerateSlug(*in.Slug)
		if slug == "" {
			return Post{}, fmt.Errorf("%w: slug is empty", ErrInvalid)
		}
		if slug != existing.Slug {
			if p.Slug, err = uniqueSlug(tx, "posts", slug, id); err != nil {
				return Post{}, err
			}
		}
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return Post{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, *in.Status)
		}
		p.Status = *in.Status
	}
	if in.ScheduledAt != nil {
		p.ScheduledAt = utcPtr(in.ScheduledAt)
	}
	if p.Status == StatusScheduled && p.ScheduledAt == nil {
		return Post{}, fmt.Errorf("%w: scheduledAt is required for scheduled posts", ErrInvalid)
	}
	if in.PublishedAt != nil {
		p.PublishedAt = utcPtr(in.PublishedAt)
	}
	if p.Status == StatusPublished && existing.Status != StatusPublished {
		p.PublishedAt = &now
	}

	explicit := ""
	if in.Excerpt != nil {
		explicit = *in.Excerpt
	}
	if in.Content != nil {
		res := s.process(in.Content, explicit)
		p.Content = in.Content
		p.ContentHTML = res.ContentHTML
		p.ContentText = res.ContentText
		p.WordCount = res.WordCount
		p.ReadingTime = res.ReadingTime
		p.Excerpt = res.Excerpt
		p.Version = existing.Version + 1
		if err := saveRevision(tx, existing, now); err != nil {
			return Post{}, err
		}
	} else if in.Excerpt != nil {
		p.Excerpt = explicit
		if strings.TrimSpace(explicit) == "" {
			p.Excerpt = content.Excerpt(p.ContentText)
		}
	}

	if in.CoverImage != nil {
		p.CoverImage = in.CoverImage
		if in.CoverImage.URL == "" {
			p.CoverImage = nil
		}
	}
	if in.Categories != nil {
		p.Categories = FilterEmpty(in.Categories)
	}
	if in.Tags != nil {
		p.Tags = NormalizeTags(in.Tags)
	}
	if in.Author != nil && strings.TrimSpace(in.Author.Name) != "" {
		p.Author = *in.Author
	}
	if in.SEO != nil {
		p.SEO = *in.SEO
		if p.SEO.OGType == "" {
			p.SEO.OGType = "article"
		}
	}
	p.UpdatedAt = now

	if _, err := tx.Exec(`DELETE FROM posts WHERE id = ?`, id); err != nil {
		return Post{}, err
	}
	if err := insertPost(tx, p); err != nil {
		return Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return Post{}, err
	}
	return p, nil
}

func insertPost(q querier, p Post) error {
	contentJSON, err := json.Marshal(p.Content)
	if err != nil {
		return err
	}
	cover := ""
	if p.CoverImage != nil {
		b, err := json.Marshal(p.CoverImage)
		if err != nil {
			return err
		}
		cover = string(b)
	}
	author, err := json.Marshal(p.Author)
	if err != nil {
		return err
	}
	seoJSON, err := json.Marshal(p.SEO)
	if err != nil {
		return err
	}
	_, err = q.Exec(`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Slug, p.Title, p.Excerpt, string(contentJSON), p.ContentHTML, p.ContentText, cover,
		joinTagColumn(p.Categories), joinTagColumn(p.Tags), string(author), string(seoJSON), string(p.Status),
		formatTimePtr(p.PublishedAt), formatTimePtr(p.ScheduledAt), p.ReadingTime, p.WordCount,
		p.Version, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("blockpress: save post %s: %w", p.ID, err)
	}
	return nil
}

func saveRevision(q querier, prev Post, savedAt time.Time) error {
	contentJSON, err := json.Marshal(prev.Content)
	if err != nil {
		return err
	}
	if _, err := q.Exec(`INSERT OR REPLACE INTO revisions (post_id, version, title, content, content_html, saved_at) VALUES (?, ?, ?, ?, ?, ?)`,
		prev.ID, prev.Version, prev.Title, string(contentJSON), prev.ContentHTML, formatTime(savedAt)); err != nil {
		return fmt.Errorf("blockpress: save revision: %w", err)
	}
	_, err = q.Exec(`DELETE FROM revisions WHERE post_id = ? AND version NOT IN (
		SELECT version FROM revisions WHERE post_id = ? ORDER BY version DESC LIMIT ?)`,
		prev.ID, prev.ID, MaxRevisions)
	return err
}

// ArchivePost soft-deletes a post by moving it to the archived status.
func (s *Store) ArchivePost(id string) error {
	res, err := s.db.Exec(`UPDATE posts SET status = ?, updated_at = ? WHERE id = ?`,
		string(StatusArchived), formatTime(s.timestamp()), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeletePost removes a post and its revisions.
func (s *Store) DeletePost(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM revisions WHERE post_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// GetPost returns a post by id regardless of status.
func (s *Store) GetPost(id string) (Post, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
}

// GetPostBySlug returns a post by slug regardless of status.
func (s *Store) GetPostBySlug(slug string) (Post, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
}

var sortColumns = map[string]string{
	SortPublishedAt: "published_at",
	SortCreatedAt:   "created_at",
	SortTitle:       "title COLLATE NOCASE",
}

// ListPosts returns one page of posts matching q. Archived posts are
// excluded unless q.Status asks for them.
func (s *Store) ListPosts(q PostQuery) (PostList, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	var where []string
	var args []any
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(q.Status))
	} else {
		where = append(where, "status != ?")
		args = append(args, string(StatusArchived))
	}
	if q.Category != "" {
		where = append(where, "instr(categories, ',' || ? || ',') > 0")
		args = append(args, q.Category)
	}
	if q.Tag != "" {
		where = append(where, "instr(tags, ',' || ? || ',') > 0")
		args = append(args, normalizeTag(q.Tag))
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		like := "%" + likeEscaper.Replace(term) + "%"
		where = append(where, `(title LIKE ? ESCAPE '\' OR excerpt LIKE ? ESCAPE '\' OR content_text LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}
	cond := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts`+cond, args...).Scan(&total); err != nil {
		return PostList{}, err
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = sortColumns[SortPublishedAt]
	}
	dir := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		dir = "ASC"
	}
	query := `SELECT ` + postColumns + ` FROM posts` + cond +
		` ORDER BY ` + col + ` ` + dir + `, created_at ` + dir + `, id LIMIT ? OFFSET ?`
	rows, err := s.db.Query(query, append(args, q.Limit, (q.Page-1)*q.Limit)...)
	if err != nil {
		return PostList{}, err
	}
	posts, err := scanPosts(rows)
	if err != nil {
		return PostList{}, err
	}
	return PostList{Posts: posts, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListPublished returns published posts, newest first. A limit of zero
// returns all of them.
func (s *Store) ListPublished(limit int) ([]Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = ? ORDER BY published_at DESC, created_at DESC`
	args := []any{string(StatusPublished)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// ListTags returns a sorted, deduplicated slice of all tags from published posts.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT tags FROM posts WHERE status = ?`, string(StatusPublished))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// ListRevisions returns the stored revisions of a post, newest first.
func (s *Store) ListRevisions(postID string) ([]Revision, error) {
	var exists int
	if err := s.db.QueryRow(`SELECT 1 FROM posts WHERE id = ?`, postID).Scan(&exists); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT version, title, content, content_html, saved_at FROM revisions WHERE post_id = ? ORDER BY version DESC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revisions := []Revision{}
	for rows.Next() {
		var r Revision
		var contentJSON, saved string
		if err := rows.Scan(&r.Version, &r.Title, &contentJSON, &r.ContentHTML, &saved); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(contentJSON), &r.Content); err != nil {
			return nil, fmt.Errorf("blockpress: decode revision %d: %w", r.Version, err)
		}
		if r.SavedAt, err = time.Parse(timeLayout, saved); err != nil {
			return nil, err
		}
		revisions = append(revisions, r)
	}
	return revisions, rows.Err()
}

// PublishDue publishes every scheduled post whose ScheduledAt is at or
// before now and returns their ids.
func (s *Store) PublishDue(now time.Time) ([]string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	cutoff := formatTime(now.UTC())
	rows, err := tx.Query(`SELECT id FROM posts WHERE status = ? AND scheduled_at != '' AND scheduled_at <= ?`,
		string(StatusScheduled), cutoff)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, err := tx.Exec(`UPDATE posts SET status = ?, published_at = scheduled_at, updated_at = ? WHERE id = ?`,
			string(StatusPublished), formatTime(s.timestamp()), id); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

const categoryColumns = `c.id, c.name, c.slug, c.description, c.seo, c.sort_order, c.parent_id,
	(SELECT COUNT(*) FROM posts p WHERE p.status = 'published' AND instr(p.categories, ',' || c.slug || ',') > 0)`

func scanCategory(row scanner) (Category, error) {
	var c Category
	var seoJSON string
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &seoJSON, &c.Order, &c.ParentID, &c.PostCount); err != nil {
		return Category{}, err
	}
	if seoJSON != "" {
		c.SEO = &CategorySEO{}
		if err := json.Unmarshal([]byte(seoJSON), c.SEO); err != nil {
			return Category{}, fmt.Errorf("blockpress: decode category seo: %w", err)
		}
	}
	return c, nil
}

// CreateCategory inserts a category with a unique slug.
func (s *Store) CreateCategory(in CategoryInput) (Category, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return Category{}, fmt.Errorf("%w: category name is required", ErrInvalid)
	}
	c := Category{ID: uuid.NewString(), Name: strings.TrimSpace(*in.Name)}
	applyCategoryInput(&c, in)

	tx, err := s.db.Begin()
	if err != nil {
		return Category{}, err
	}
	defer tx.Rollback()
	if c.Slug, err = uniqueSlug(tx, "categories", slugBase(in.Slug, c.Name), ""); err != nil {
		return Category{}, err
	}
	if err := upsertCategory(tx, c); err != nil {
		return Category{}, err
	}
	if err := tx.Commit(); err != nil {
		return Category{}, err
	}
	return c, nil
}

// UpdateCategory applies the non-nil fields of in.
func (s *Store) UpdateCategory(id string, in CategoryInput) (Category, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Category{}, err
	}
	defer tx.Rollback()

	c, err := scanCategory(tx.QueryRow(`SELECT `+categoryColumns+` FROM categories c WHERE c.id = ?`, id))
	if err != nil {
		return Category{}, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Category{}, fmt.Errorf("%w: category name is required", ErrInvalid)
		}
		c.Name = name
	}
	applyCategoryInput(&c, in)
	if in.Slug != nil {
		slug := GenerateSlug(*in.Slug)
		if slug == "" {
			return Category{}, fmt.Errorf("%w: slug is empty", ErrInvalid)
		}
		if slug != c.Slug {
			if c.Slug, err = uniqueSlug(tx, "categories", slug, id); err != nil {
				return Category{}, err
			}
		}
	}
	if err := upsertCategory(tx, c); err != nil {
		return Category{}, err
	}
	if err := tx.Commit(); err != nil {
		return Category{}, err
	}
	return s.GetCategory(id)
}

func applyCategoryInput(c *Category, in CategoryInput) {
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.SEO != nil {
		c.SEO = in.SEO
	}
	if in.Order != nil {
		c.Order = *in.Order
	}
	if in.ParentID != nil {
		c.ParentID = *in.ParentID
	}
}

func upsertCategory(q querier, c Category) error {
	seoJSON := ""
	if c.SEO != nil {
		b, err := json.Marshal(c.SEO)
		if err != nil {
			return err
		}
		seoJSON = string(b)
	}
	_, err := q.Exec(`INSERT OR REPLACE INTO categories (id, name, slug, description, seo, sort_order, parent_id) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.Description, seoJSON, c.Order, c.ParentID)
	if err != nil {
		return fmt.Errorf("blockpress: save category %s: %w", c.ID, err)
	}
	return nil
}

// DeleteCategory removes a category. Posts keep their category slugs.
func (s *Store) DeleteCategory(id string) error {
	res, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetCategory returns a category by id.
func (s *Store) GetCategory(id string) (Category, error) {
	return scanCategory(s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories c WHERE c.id = ?`, id))
}

// GetCategoryBySlug returns a category by slug.
func (s *Store) GetCategoryBySlug(slug string) (Category, error) {
	return scanCategory(s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories c WHERE c.slug = ?`, slug))
}

// ListCategories returns all categories ordered by their order field.
func (s *Store) ListCategories() ([]Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryColumns + ` FROM categories c ORDER BY c.sort_order, c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const settingsID = "site"

// GetSettings returns the saved settings, or the store defaults when none exist.
func (s *Store) GetSettings() (Settings, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM settings WHERE id = ?`, settingsID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return s.defaults, nil
	}
	if err != nil {
		return Settings{}, err
	}
	settings := s.defaults
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return Settings{}, fmt.Errorf("blockpress: decode settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings validates and stores the settings document.
func (s *Store) UpdateSettings(settings Settings) (Settings, error) {
	if settings.PostsPerPage < 1 || settings.PostsPerPage > 100 {
		return Settings{}, fmt.Errorf("%w: postsPerPage must be between 1 and 100", ErrInvalid)
	}
	switch settings.CommentSystem {
	case "":
		settings.CommentSystem = "none"
	case "none", "giscus", "disqus":
	default:
		return Settings{}, fmt.Errorf("%w: unknown comment system %q", ErrInvalid, settings.CommentSystem)
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return Settings{}, err
	}
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO settings (id, data) VALUES (?, ?)`, settingsID, string(data)); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func slugBase(requested *string, fallback string) string {
	if requested != nil {
		if slug := GenerateSlug(*requested); slug != "" {
			return slug
		}
	}
	if slug := GenerateSlug(fallback); slug != "" {
		return slug
	}
	return "post"
}

// uniqueSlug returns base, or base-1, base-2 ... whichever is free in
// table. excludeID lets a row keep its own slug.
func uniqueSlug(q querier, table, base, excludeID string) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		var exists int
		err := q.QueryRow(`SELECT 1 FROM `+table+` WHERE slug = ? AND id != ?`, candidate, excludeID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseTimePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return nil, fmt.Errorf("blockpress: parse time %q: %w", s, err)
	}
	return &t, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
