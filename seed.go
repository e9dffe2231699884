package blockpress

import (
	"errors"
	"fmt"

	"github.com/eringen/blockpress/blocks"
)

func seedText(s string) blocks.Node {
	return blocks.Node{Type: blocks.TypeText, Text: s}
}

func seedParagraph(s string) blocks.Node {
	return blocks.Node{Type: blocks.TypeParagraph, Content: []blocks.Node{seedText(s)}}
}

func seedHeading(level int, s string) blocks.Node {
	return blocks.Node{Type: blocks.TypeHeading, Attrs: map[string]any{"level": level}, Content: []blocks.Node{seedText(s)}}
}

func seedListItem(s string) blocks.Node {
	return blocks.Node{Type: blocks.TypeListItem, Content: []blocks.Node{seedParagraph(s)}}
}

var seedCategories = []struct {
	name, slug, description string
	order                   int
}{
	{"Technology", "technology", "Tech tutorials and updates", 0},
	{"Design", "design", "UI/UX and design tips", 1},
	{"Tutorials", "tutorials", "Step-by-step guides", 2},
}

// WelcomeSlug is the slug of the example post created by Seed.
const WelcomeSlug = "welcome-to-blockpress"

func welcomeContent() []blocks.Node {
	return []blocks.Node{
		seedHeading(2, "Getting Started"),
		seedParagraph("Congratulations! Your blockpress blog is up and running. This example post shows what the block editor can produce."),
		seedHeading(2, "Features"),
		{Type: blocks.TypeBulletList, Content: []blocks.Node{
			seedListItem("Block content rendered to semantic HTML"),
			seedListItem("SEO scoring for every post"),
			seedListItem("Full-text search"),
			seedListItem("Dynamic sitemap and RSS feed"),
		}},
		{Type: blocks.TypeCallout, Attrs: map[string]any{"type": "tip"}, Content: []blocks.Node{
			seedParagraph("Use the JSON API to start creating your own posts!"),
		}},
		{Type: blocks.TypeFAQ, Content: []blocks.Node{{
			Type: blocks.TypeFAQItem,
			Content: []blocks.Node{
				{Type: blocks.TypeFAQQuestion, Content: []blocks.Node{seedText("Where is the content stored?")}},
				{Type: blocks.TypeFAQAnswer, Content: []blocks.Node{seedParagraph("In a single SQLite database file.")}},
			},
		}}},
	}
}

// Seed creates example categories and a welcome post, skipping anything
// that already exists. It returns one line per item for display.
func Seed(s *Store) ([]string, error) {
	var report []string
	for _, c := range seedCategories {
		if _, err := s.GetCategoryBySlug(c.slug); err == nil {
			report = append(report, fmt.Sprintf("category %q already exists", c.name))
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return report, err
		}
		name, slug, description, order := c.name, c.slug, c.description, c.order
		if _, err := s.CreateCategory(CategoryInput{Name: &name, Slug: &slug, Description: &description, Order: &order}); err != nil {
			return report, err
		}
		report = append(report, fmt.Sprintf("created category %q", c.name))
	}

	if _, err := s.GetPostBySlug(WelcomeSlug); err == nil {
		return append(report, "welcome post already exists"), nil
	} else if !errors.Is(err, ErrNotFound) {
		return report, err
	}
	title := "Welcome to blockpress"
	slug := WelcomeSlug
	excerpt := "Your new blog is ready! This is an example post to get you started."
	status := StatusPublished
	_, err := s.CreatePost(PostInput{
		Title:      &title,
		Slug:       &slug,
		Excerpt:    &excerpt,
		Content:    welcomeContent(),
		Categories: []string{"technology"},
		Tags:       []string{"blog", "getting-started"},
		Status:     &status,
		SEO:        &PostSEO{FocusKeyword: "blockpress"},
	})
	if err != nil {
		return report, err
	}
	return append(report, fmt.Sprintf("created post %q", title)), nil
}
