package content

import (
	"strings"

	"github.com/eringen/blockpress/blocks"
)

// Result is everything a store persists alongside the raw block tree.
type Result struct {
	ContentHTML string           `json:"contentHTML"`
	ContentText string           `json:"contentText"`
	WordCount   int              `json:"wordCount"`
	ReadingTime int              `json:"readingTime"`
	Excerpt     string           `json:"excerpt"`
	Headings    []blocks.Heading `json:"headings"`
	FAQ         []blocks.FAQItem `json:"faq"`
}

// Process runs the full content pipeline over a block tree. When
// explicitExcerpt is blank the excerpt is derived from the plain text.
func Process(nodes []blocks.Node, explicitExcerpt string) Result {
	doc := blocks.Doc(nodes...)
	text := blocks.PlainText(doc)
	res := Result{
		ContentHTML: blocks.RenderHTML(doc),
		ContentText: text,
		WordCount:   WordCount(text),
		ReadingTime: ReadingTime(text),
		Excerpt:     explicitExcerpt,
		Headings:    blocks.ExtractHeadings(doc),
		FAQ:         blocks.ExtractFAQItems(doc),
	}
	if strings.TrimSpace(explicitExcerpt) == "" {
		res.Excerpt = Excerpt(text)
	}
	return res
}
