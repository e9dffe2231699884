package blocks

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

type renderFunc func(buf *bytes.Buffer, n Node)

// renderers holds the markup for every known node type. It is filled in
// init to break the initialization cycle through renderNode.
var renderers map[Type]renderFunc

var calloutIcons = map[string]string{
	"info":    "ℹ️",
	"warning": "⚠️",
	"tip":     "💡",
	"danger":  "🚨",
}

func init() {
	renderers = map[Type]renderFunc{
		TypeParagraph:       wrap("<p>", "</p>"),
		TypeHeading:         renderHeading,
		TypeBulletList:      wrap("<ul>", "</ul>"),
		TypeOrderedList:     wrap("<ol>", "</ol>"),
		TypeListItem:        wrap("<li>", "</li>"),
		TypeTaskList:        wrap(`<ul class="bp-task-list">`, "</ul>"),
		TypeTaskItem:        renderTaskItem,
		TypeBlockquote:      wrap("<blockquote>", "</blockquote>"),
		TypeCodeBlock:       renderCodeBlock,
		TypeImage:           renderImage,
		TypeHorizontalRule:  literal("<hr />"),
		TypeTable:           wrap("<table>", "</table>"),
		TypeTableRow:        wrap("<tr>", "</tr>"),
		TypeTableHeader:     wrap("<th>", "</th>"),
		TypeTableCell:       wrap("<td>", "</td>"),
		TypeCallout:         renderCallout,
		TypeFAQ:             wrap(`<div class="bp-faq" itemscope itemtype="https://schema.org/FAQPage">`, "</div>"),
		TypeFAQItem:         wrap(`<div class="bp-faq-item" itemscope itemprop="mainEntity" itemtype="https://schema.org/Question">`, "</div>"),
		TypeFAQQuestion:     wrap(`<h3 itemprop="name">`, "</h3>"),
		TypeFAQAnswer:       wrap(`<div itemprop="acceptedAnswer" itemscope itemtype="https://schema.org/Answer"><div itemprop="text">`, "</div></div>"),
		TypeTableOfContents: literal(`<div data-toc="true" class="bp-toc"></div>`),
		TypeHTML:            renderRawHTML,
		TypeEmbed:           renderEmbed,
		TypeText:            renderText,
		TypeHardBreak:       literal("<br />"),
	}
}

// Component returns a templ.Component that renders doc as HTML.
func Component(doc Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, doc)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// RenderHTML returns the HTML representation of doc.
func RenderHTML(doc Document) string {
	var buf bytes.Buffer
	Render(&buf, doc)
	return buf.String()
}

// RenderNodes renders a sequence of sibling nodes.
func RenderNodes(nodes []Node) string {
	var buf bytes.Buffer
	renderChildren(&buf, nodes)
	return buf.String()
}

// Render writes the HTML representation of doc to buf.
func Render(buf *bytes.Buffer, doc Document) {
	renderChildren(buf, doc.Content)
}

func renderChildren(buf *bytes.Buffer, nodes []Node) {
	for _, n := range nodes {
		renderNode(buf, n)
	}
}

func renderNode(buf *bytes.Buffer, n Node) {
	if fn, ok := renderers[n.Type]; ok {
		fn(buf, n)
		return
	}
	// Unknown type: transparent container, then stray text, then nothing.
	switch {
	case n.Content != nil:
		renderChildren(buf, n.Content)
	case n.Text != "":
		buf.WriteString(EscapeHTML(n.Text))
	}
}

func wrap(open, close string) renderFunc {
	return func(buf *bytes.Buffer, n Node) {
		buf.WriteString(open)
		renderChildren(buf, n.Content)
		buf.WriteString(close)
	}
}

func literal(s string) renderFunc {
	return func(buf *bytes.Buffer, _ Node) {
		buf.WriteString(s)
	}
}

func renderHeading(buf *bytes.Buffer, n Node) {
	level := strconv.Itoa(headingLevel(n))
	buf.WriteString(`<h` + level + ` id="` + EscapeHTML(headingID(n)) + `">`)
	renderChildren(buf, n.Content)
	buf.WriteString(`</h` + level + `>`)
}

// headingLevel returns the level attr when it is a valid HTML heading level, else 2.
func headingLevel(n Node) int {
	level, ok := n.AttrInt("level")
	if !ok || level < 1 || level > 6 {
		return 2
	}
	return level
}

// headingID is shared by the renderer and ExtractHeadings so anchors always agree.
func headingID(n Node) string {
	return Slugify(TextContent(n))
}

func renderTaskItem(buf *bytes.Buffer, n Node) {
	checked := ""
	if n.AttrBool("checked") {
		checked = "checked"
	}
	buf.WriteString(`<li class="bp-task-item" data-checked="` + checked + `"><input type="checkbox" ` + checked + ` disabled />`)
	renderChildren(buf, n.Content)
	buf.WriteString(`</li>`)
}

func renderCodeBlock(buf *bytes.Buffer, n Node) {
	lang := n.AttrString("language")
	if lang == "" {
		lang = "plaintext"
	}
	if filename := n.AttrString("filename"); filename != "" {
		buf.WriteString(`<div class="bp-code-header">` + EscapeHTML(filename) + `</div>`)
	}
	buf.WriteString(`<pre><code class="language-` + EscapeHTML(lang) + `">`)
	buf.WriteString(EscapeHTML(TextContent(n)))
	buf.WriteString(`</code></pre>`)
}

func renderImage(buf *bytes.Buffer, n Node) {
	var img strings.Builder
	img.WriteString(`<img src="` + EscapeHTML(n.AttrString("src")) + `" alt="` + EscapeHTML(n.AttrString("alt")) + `"`)
	if w := n.AttrString("width"); w != "" && w != "0" {
		img.WriteString(` width="` + EscapeHTML(w) + `"`)
	}
	if h := n.AttrString("height"); h != "" && h != "0" {
		img.WriteString(` height="` + EscapeHTML(h) + `"`)
	}
	img.WriteString(` loading="lazy" />`)

	caption := n.AttrString("caption")
	if caption == "" {
		buf.WriteString(img.String())
		return
	}
	buf.WriteString(`<figure>` + img.String() + `<figcaption>` + EscapeHTML(caption) + `</figcaption></figure>`)
}

func renderCallout(buf *bytes.Buffer, n Node) {
	kind := n.AttrString("type")
	if kind == "" {
		kind = "info"
	}
	escaped := EscapeHTML(kind)
	buf.WriteString(`<div class="bp-callout bp-callout-` + escaped + `"><span class="bp-callout-icon">` + calloutIcons[kind] + `</span><div class="bp-callout-content">`)
	renderChildren(buf, n.Content)
	buf.WriteString(`</div></div>`)
}

// renderRawHTML emits the node's text untouched. Authors inserting raw HTML
// own whatever it contains.
func renderRawHTML(buf *bytes.Buffer, n Node) {
	buf.WriteString(TextContent(n))
}

func renderEmbed(buf *bytes.Buffer, n Node) {
	buf.WriteString(`<div class="bp-embed"><iframe src="` + EscapeHTML(n.AttrString("src")) + `" frameborder="0" allowfullscreen loading="lazy"></iframe></div>`)
}

// renderText escapes the text and wraps it in each mark in array order, so
// the first mark ends up innermost.
func renderText(buf *bytes.Buffer, n Node) {
	text := EscapeHTML(n.Text)
	for _, m := range n.Marks {
		switch m.Type {
		case MarkBold:
			text = "<strong>" + text + "</strong>"
		case MarkItalic:
			text = "<em>" + text + "</em>"
		case MarkStrike:
			text = "<s>" + text + "</s>"
		case MarkCode:
			text = "<code>" + text + "</code>"
		case MarkUnderline:
			text = "<u>" + text + "</u>"
		case MarkHighlight:
			text = "<mark>" + text + "</mark>"
		case MarkLink:
			href := m.Href()
			target := ""
			if strings.HasPrefix(href, "http") {
				target = ` target="_blank" rel="noopener noreferrer"`
			}
			text = `<a href="` + EscapeHTML(href) + `"` + target + `>` + text + `</a>`
		}
	}
	buf.WriteString(text)
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML escapes &, <, > and " for text and attribute contexts.
// Single quotes are left alone; every attribute emitted here is double-quoted.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
