package blocks

import (
	"regexp"
	"strings"
)

// Heading is one entry of a table of contents.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// FAQItem is a question with its answer. Question is plain text for
// schema.org "name"; Answer is HTML.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// walk visits every node below doc in pre-order, the same order the
// renderer emits them.
func walk(nodes []Node, visit func(Node)) {
	for _, n := range nodes {
		visit(n)
		walk(n.Content, visit)
	}
}

// PlainText joins the text of every node in document order with single
// spaces. Structure is dropped.
func PlainText(doc Document) string {
	var parts []string
	walk(doc.Content, func(n Node) {
		if n.Text != "" {
			parts = append(parts, n.Text)
		}
	})
	return strings.Join(parts, " ")
}

// TextContent concatenates the text below n without separators.
func TextContent(n Node) string {
	if n.Text != "" {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Content {
		b.WriteString(TextContent(c))
	}
	return b.String()
}

// ExtractHeadings returns every heading in document order. IDs match the
// id attributes written by the renderer.
func ExtractHeadings(doc Document) []Heading {
	var headings []Heading
	walk(doc.Content, func(n Node) {
		if n.Type != TypeHeading {
			return
		}
		headings = append(headings, Heading{
			ID:    headingID(n),
			Text:  TextContent(n),
			Level: headingLevel(n),
		})
	})
	return headings
}

// ExtractFAQItems returns the question/answer pairs of every well-formed
// faqItem. Items missing either part are skipped.
func ExtractFAQItems(doc Document) []FAQItem {
	var items []FAQItem
	walk(doc.Content, func(n Node) {
		if n.Type != TypeFAQItem {
			return
		}
		question, okQ := firstOfType(n.Content, TypeFAQQuestion)
		answer, okA := firstOfType(n.Content, TypeFAQAnswer)
		if !okQ || !okA {
			return
		}
		items = append(items, FAQItem{
			Question: TextContent(question),
			Answer:   RenderNodes(answer.Content),
		})
	})
	return items
}

func firstOfType(nodes []Node, t Type) (Node, bool) {
	for _, n := range nodes {
		if n.Type == t {
			return n, true
		}
	}
	return Node{}, false
}

var (
	reSlugStrip   = regexp.MustCompile(`[^\w\s-]`)
	reSlugSpaces  = regexp.MustCompile(`[\s_]+`)
	reSlugHyphens = regexp.MustCompile(`-+`)
	reTags        = regexp.MustCompile(`<[^>]+>`)
)

// Slugify turns heading text into an anchor id: lowercase, trimmed, with
// everything except ASCII word characters, whitespace and hyphens removed,
// whitespace and underscores collapsed to one hyphen and repeated hyphens
// collapsed. Leading and trailing hyphens are kept.
func Slugify(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))
	s = reSlugStrip.ReplaceAllString(s, "")
	s = reSlugSpaces.ReplaceAllString(s, "-")
	return reSlugHyphens.ReplaceAllString(s, "-")
}

// StripTags removes anything that looks like an HTML tag.
func StripTags(s string) string {
	return reTags.ReplaceAllString(s, "")
}
