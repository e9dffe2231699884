package blockpress

import (
	"time"

	"github.com/eringen/blockpress/blocks"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusScheduled PostStatus = "scheduled"
	StatusArchived  PostStatus = "archived"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusScheduled, StatusArchived:
		return true
	}
	return false
}

// Author is the byline attached to a post.
type Author struct {
	Name   string `json:"name" yaml:"name"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Bio    string `json:"bio,omitempty" yaml:"bio,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
}

// MediaReference points at an uploaded image.
type MediaReference struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// PostSEO holds per-post search engine overrides.
type PostSEO struct {
	MetaTitle       string `json:"metaTitle,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
	CanonicalURL    string `json:"canonicalUrl,omitempty"`
	OGImage         string `json:"ogImage,omitempty"`
	OGType          string `json:"ogType"`
	NoIndex         bool   `json:"noIndex"`
	FocusKeyword    string `json:"focusKeyword,omitempty"`
}

// Post is a blog post together with everything derived from its block tree.
type Post struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Excerpt     string          `json:"excerpt"`
	Content     []blocks.Node   `json:"content"`
	ContentHTML string          `json:"contentHTML"`
	ContentText string          `json:"contentText"`
	CoverImage  *MediaReference `json:"coverImage,omitempty"`
	Categories  []string        `json:"categories"`
	Tags        []string        `json:"tags"`
	Author      Author          `json:"author"`
	SEO         PostSEO         `json:"seo"`
	Status      PostStatus      `json:"status"`
	PublishedAt *time.Time      `json:"publishedAt,omitempty"`
	ScheduledAt *time.Time      `json:"scheduledAt,omitempty"`
	ReadingTime int             `json:"readingTime"`
	WordCount   int             `json:"wordCount"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Link returns the site-relative URL of the post.
func (p Post) Link() string {
	return "/blog/" + p.Slug + "/"
}

// Document returns the post's block tree as a document.
func (p Post) Document() blocks.Document {
	return blocks.Doc(p.Content...)
}

// Date returns the publication date, falling back to the creation date.
func (p Post) Date() time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

// Revision is a snapshot of a post taken before its content changed.
type Revision struct {
	Version     int           `json:"version"`
	Title       string        `json:"title"`
	Content     []blocks.Node `json:"content"`
	ContentHTML string        `json:"contentHTML"`
	SavedAt     time.Time     `json:"savedAt"`
}

// PostInput carries the fields of a create or update request. Nil fields
// are left unchanged on update.
type PostInput struct {
	Title       *string         `json:"title,omitempty"`
	Slug        *string         `json:"slug,omitempty"`
	Excerpt     *string         `json:"excerpt,omitempty"`
	Content     []blocks.Node   `json:"content,omitempty"`
	CoverImage  *MediaReference `json:"coverImage,omitempty"`
	Categories  []string        `json:"categories,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Author      *Author         `json:"author,omitempty"`
	SEO         *PostSEO        `json:"seo,omitempty"`
	Status      *PostStatus     `json:"status,omitempty"`
	PublishedAt *time.Time      `json:"publishedAt,omitempty"`
	ScheduledAt *time.Time      `json:"scheduledAt,omitempty"`
}

// Sort fields accepted by PostQuery.
const (
	SortPublishedAt = "publishedAt"
	SortCreatedAt   = "createdAt"
	SortTitle       = "title"
)

// PostQuery filters and pages ListPosts. Zero values mean "any".
type PostQuery struct {
	Page      int
	Limit     int
	Category  string
	Tag       string
	Status    PostStatus // empty lists everything except archived
	Search    string
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// PostList is one page of posts plus the total number of matches.
type PostList struct {
	Posts []Post
	Total int
	Page  int
	Limit int
}

// TotalPages returns the number of pages needed for Total.
func (l PostList) TotalPages() int {
	if l.Limit <= 0 {
		return 0
	}
	return (l.Total + l.Limit - 1) / l.Limit
}

// CategorySEO holds category page overrides.
type CategorySEO struct {
	MetaTitle       string `json:"metaTitle,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
}

// Category groups posts. PostCount counts published posts only.
type Category struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description string       `json:"description,omitempty"`
	SEO         *CategorySEO `json:"seo,omitempty"`
	Order       int          `json:"order"`
	ParentID    string       `json:"parentId,omitempty"`
	PostCount   int          `json:"postCount"`
}

// CategoryInput carries a category create or update request.
type CategoryInput struct {
	Name        *string      `json:"name,omitempty"`
	Slug        *string      `json:"slug,omitempty"`
	Description *string      `json:"description,omitempty"`
	SEO         *CategorySEO `json:"seo,omitempty"`
	Order       *int         `json:"order,omitempty"`
	ParentID    *string      `json:"parentId,omitempty"`
}

// Settings is the site-wide settings document.
type Settings struct {
	PostsPerPage   int     `json:"postsPerPage"`
	DefaultAuthor  *Author `json:"defaultAuthor,omitempty"`
	DefaultOGImage string  `json:"defaultOgImage,omitempty"`
	CommentSystem  string  `json:"commentSystem"`
	CustomCSS      string  `json:"customCSS,omitempty"`
}

// DefaultSettings is returned before any settings were saved.
func DefaultSettings() Settings {
	return Settings{PostsPerPage: 10, CommentSystem: "none"}
}
