package blockpress

import (
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"gopkg.in/yaml.v3"
)

type frontMatter struct {
	Title       string     `yaml:"title"`
	Slug        string     `yaml:"slug"`
	Excerpt     string     `yaml:"excerpt,omitempty"`
	Author      string     `yaml:"author,omitempty"`
	Status      PostStatus `yaml:"status"`
	PublishedAt *time.Time `yaml:"published_at,omitempty"`
	UpdatedAt   time.Time  `yaml:"updated_at"`
	Categories  []string   `yaml:"categories,omitempty"`
	Tags        []string   `yaml:"tags,omitempty"`
	Keyword     string     `yaml:"focus_keyword,omitempty"`
}

// ExportMarkdown converts a post's rendered HTML to GitHub-flavored
// Markdown behind a YAML front matter block.
func ExportMarkdown(post Post) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	body, err := converter.ConvertString(post.ContentHTML)
	if err != nil {
		return "", fmt.Errorf("blockpress: convert %s to markdown: %w", post.Slug, err)
	}
	fm, err := yaml.Marshal(frontMatter{
		Title:       post.Title,
		Slug:        post.Slug,
		Excerpt:     post.Excerpt,
		Author:      post.Author.Name,
		Status:      post.Status,
		PublishedAt: post.PublishedAt,
		UpdatedAt:   post.UpdatedAt,
		Categories:  post.Categories,
		Tags:        post.Tags,
		Keyword:     post.SEO.FocusKeyword,
	})
	if err != nil {
		return "", fmt.Errorf("blockpress: encode front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String(), nil
}
