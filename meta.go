package blockpress

import "time"

const jsonTime = time.RFC3339

// OGImage is an og:image entry.
type OGImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Alt    string `json:"alt,omitempty"`
}

// OGArticle carries the article:* OpenGraph properties.
type OGArticle struct {
	PublishedTime string   `json:"publishedTime"`
	ModifiedTime  string   `json:"modifiedTime"`
	Section       string   `json:"section,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// OpenGraph is the og:* property set of a page.
type OpenGraph struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	SiteName    string     `json:"siteName"`
	Type        string     `json:"type"`
	Images      []OGImage  `json:"images"`
	Article     *OGArticle `json:"article,omitempty"`
}

// TwitterCard is the twitter:* property set of a page.
type TwitterCard struct {
	Card        string   `json:"card"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// Meta is everything the <head> of a page needs.
type Meta struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Canonical   string      `json:"canonical"`
	OpenGraph   OpenGraph   `json:"openGraph"`
	Twitter     TwitterCard `json:"twitter"`
	Robots      string      `json:"robots,omitempty"`
}

// MetaTags derives the head metadata of a post page, preferring the post's
// SEO overrides over its own fields.
func MetaTags(cfg SiteConfig, post Post) Meta {
	postURL := BuildURL(cfg.URL, "blog", post.Slug)
	title := firstNonEmpty(post.SEO.MetaTitle, post.Title)
	description := firstNonEmpty(post.SEO.MetaDescription, post.Excerpt)
	image := firstNonEmpty(post.SEO.OGImage, coverURL(post))

	m := Meta{
		Title:       title + " | " + cfg.Name,
		Description: description,
		Canonical:   firstNonEmpty(post.SEO.CanonicalURL, postURL),
		OpenGraph: OpenGraph{
			Title:       title,
			Description: description,
			URL:         postURL,
			SiteName:    cfg.Name,
			Type:        firstNonEmpty(post.SEO.OGType, "article"),
			Images:      []OGImage{},
			Article: &OGArticle{
				ModifiedTime: post.UpdatedAt.UTC().Format(jsonTime),
				Tags:         post.Tags,
			},
		},
		Twitter: TwitterCard{
			Card:        "summary_large_image",
			Title:       title,
			Description: description,
			Images:      []string{},
		},
	}
	if post.PublishedAt != nil {
		m.OpenGraph.Article.PublishedTime = post.PublishedAt.UTC().Format(jsonTime)
	}
	if len(post.Categories) > 0 {
		m.OpenGraph.Article.Section = post.Categories[0]
	}
	if image != "" {
		m.OpenGraph.Images = append(m.OpenGraph.Images, OGImage{URL: image, Width: 1200, Height: 630, Alt: title})
		m.Twitter.Images = append(m.Twitter.Images, image)
	}
	if post.SEO.NoIndex {
		m.Robots = "noindex, nofollow"
	}
	return m
}

// SiteMeta returns head metadata for a non-post page such as a listing.
func SiteMeta(cfg SiteConfig, title, description, pageURL string) Meta {
	full := cfg.Name
	if title != "" {
		full = title + " | " + cfg.Name
	}
	description = firstNonEmpty(description, cfg.Description)
	return Meta{
		Title:       full,
		Description: description,
		Canonical:   pageURL,
		OpenGraph: OpenGraph{
			Title:       firstNonEmpty(title, cfg.Name),
			Description: description,
			URL:         pageURL,
			SiteName:    cfg.Name,
			Type:        "website",
			Images:      []OGImage{},
		},
		Twitter: TwitterCard{
			Card:        "summary",
			Title:       firstNonEmpty(title, cfg.Name),
			Description: description,
			Images:      []string{},
		},
	}
}

func coverURL(post Post) string {
	if post.CoverImage == nil {
		return ""
	}
	return post.CoverImage.URL
}

func coverOrOGImage(post Post) string {
	return firstNonEmpty(coverURL(post), post.SEO.OGImage)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
