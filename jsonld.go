package blockpress

import (
	"encoding/json"

	"github.com/eringen/blockpress/blocks"
)

// WebsiteJSONLD returns the WebSite schema for the site.
func WebsiteJSONLD(cfg SiteConfig) map[string]any {
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return data
}

// ArticleJSONLD returns the BlogPosting schema for a post.
func ArticleJSONLD(cfg SiteConfig, post Post) map[string]any {
	postURL := BuildURL(cfg.URL, "blog", post.Slug)
	author := map[string]string{
		"@type": "Person",
		"name":  post.Author.Name,
	}
	if post.Author.URL != "" {
		author["url"] = post.Author.URL
	}
	data := map[string]any{
		"@context":     "https://schema.org",
		"@type":        "BlogPosting",
		"headline":     post.Title,
		"description":  post.Excerpt,
		"dateModified": post.UpdatedAt.UTC().Format(jsonTime),
		"author":       author,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
		"wordCount": post.WordCount,
	}
	if image := coverOrOGImage(post); image != "" {
		data["image"] = image
	}
	if post.PublishedAt != nil {
		data["datePublished"] = post.PublishedAt.UTC().Format(jsonTime)
	}
	if len(post.Categories) > 0 {
		data["articleSection"] = post.Categories[0]
	}
	if len(post.Tags) > 0 {
		data["keywords"] = JoinTags(post.Tags)
	}
	return data
}

// FAQJSONLD returns the FAQPage schema, or nil when there are no items.
func FAQJSONLD(items []blocks.FAQItem) map[string]any {
	if len(items) == 0 {
		return nil
	}
	entities := make([]map[string]any, 0, len(items))
	for _, item := range items {
		entities = append(entities, map[string]any{
			"@type": "Question",
			"name":  item.Question,
			"acceptedAnswer": map[string]string{
				"@type": "Answer",
				"text":  item.Answer,
			},
		})
	}
	return map[string]any{
		"@context":   "https://schema.org",
		"@type":      "FAQPage",
		"mainEntity": entities,
	}
}

// BreadcrumbJSONLD returns Home > Blog > [category >] post. The category
// crumb appears only when categoryName is set and the post has a category.
func BreadcrumbJSONLD(cfg SiteConfig, post Post, categoryName string) map[string]any {
	items := []map[string]any{
		{"@type": "ListItem", "position": 1, "name": "Home", "item": BuildURL(cfg.URL)},
		{"@type": "ListItem", "position": 2, "name": "Blog", "item": BuildURL(cfg.URL, "blog")},
	}
	if categoryName != "" && len(post.Categories) > 0 {
		items = append(items, map[string]any{
			"@type":    "ListItem",
			"position": 3,
			"name":     categoryName,
			"item":     BuildURL(cfg.URL, "blog", "category", post.Categories[0]),
		})
	}
	items = append(items, map[string]any{
		"@type":    "ListItem",
		"position": len(items) + 1,
		"name":     post.Title,
	})
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	}
}

// MarshalJSONLD encodes a schema for a <script type="application/ld+json">
// tag. A nil schema yields "" and an encoding failure "{}".
func MarshalJSONLD(data map[string]any) string {
	if data == nil {
		return ""
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
