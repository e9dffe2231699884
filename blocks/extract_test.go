package blocks

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World!", "hello-world"},
		{"  Trim me  ", "trim-me"},
		{"snake_case and  spaces", "snake-case-and-spaces"},
		{"a -- b", "a-b"},
		{"C'est déjà vu", "cest-dj-vu"},
		{"-edge-", "-edge-"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestHeadingIDsAgreeWithRenderer(t *testing.T) {
	doc := Doc(
		heading(2, "Hello World!"),
		para(text("intro")),
		Node{Type: TypeHeading, Attrs: map[string]any{"level": float64(3)}, Content: []Node{
			text("Tom & "), text("Jerry", Mark{Type: MarkBold}),
		}},
		Node{Type: TypeBlockquote, Content: []Node{heading(4, "Nested <tag>")}},
	)

	headings := ExtractHeadings(doc)
	require.Len(t, headings, 3)
	assert.Equal(t, Heading{ID: "hello-world", Text: "Hello World!", Level: 2}, headings[0])
	assert.Equal(t, "Tom & Jerry", headings[1].Text)
	assert.Equal(t, 3, headings[1].Level)
	assert.Equal(t, 4, headings[2].Level)

	ids := regexp.MustCompile(`<h[1-6] id="([^"]*)">`).FindAllStringSubmatch(RenderHTML(doc), -1)
	require.Len(t, ids, len(headings))
	for i, m := range ids {
		assert.Equal(t, headings[i].ID, m[1], "heading %d", i)
	}
}

func TestHeadingIDIgnoresEscapedEntities(t *testing.T) {
	doc := Doc(heading(2, "Tom & Jerry"))

	headings := ExtractHeadings(doc)
	require.Len(t, headings, 1)
	assert.Equal(t, "tom-jerry", headings[0].ID)
	assert.Equal(t, `<h2 id="tom-jerry">Tom &amp; Jerry</h2>`, RenderHTML(doc))
}

func TestPlainTextOrder(t *testing.T) {
	doc := Doc(
		para(text("Hello"), text("there", Mark{Type: MarkBold})),
		heading(2, "World"),
		Node{Type: TypeBulletList, Content: []Node{
			{Type: TypeListItem, Content: []Node{para(text("one"))}},
			{Type: TypeListItem, Content: []Node{para(text("two"))}},
		}},
		Node{Type: TypeHorizontalRule},
		Node{Type: "futureBlock", Content: []Node{text("tail")}},
	)
	assert.Equal(t, "Hello there World one two tail", PlainText(doc))
}

func TestPlainTextEmpty(t *testing.T) {
	assert.Equal(t, "", PlainText(Doc()))
	assert.Equal(t, "", PlainText(Doc(para(), Node{Type: TypeImage})))
}

func TestExtractFAQItems(t *testing.T) {
	well := Node{Type: TypeFAQItem, Content: []Node{
		{Type: TypeFAQQuestion, Content: []Node{text("What is "), text("Go", Mark{Type: MarkBold}), text("?")}},
		{Type: TypeFAQAnswer, Content: []Node{para(text("A "), text("language", Mark{Type: MarkItalic}))}},
	}}
	reversed := Node{Type: TypeFAQItem, Content: []Node{
		{Type: TypeFAQAnswer, Content: []Node{para(text("Yes."))}},
		{Type: TypeFAQQuestion, Content: []Node{text("Reversed?")}},
	}}
	questionOnly := Node{Type: TypeFAQItem, Content: []Node{
		{Type: TypeFAQQuestion, Content: []Node{text("Lonely?")}},
	}}
	empty := Node{Type: TypeFAQItem}

	doc := Doc(Node{Type: TypeFAQ, Content: []Node{well, questionOnly, reversed, empty}})
	items := ExtractFAQItems(doc)
	require.Len(t, items, 2)
	assert.Equal(t, FAQItem{Question: "What is Go?", Answer: "<p>A <em>language</em></p>"}, items[0])
	assert.Equal(t, FAQItem{Question: "Reversed?", Answer: "<p>Yes.</p>"}, items[1])
}

func TestExtractFAQItemsQuestionOnly(t *testing.T) {
	doc := Doc(Node{Type: TypeFAQItem, Content: []Node{{Type: TypeFAQQuestion, Content: []Node{text("Q")}}}})
	assert.NotPanics(t, func() {
		assert.Empty(t, ExtractFAQItems(doc))
	})
}

func TestTextContent(t *testing.T) {
	n := Node{Type: TypeCodeBlock, Content: []Node{text("a"), {Type: "x", Content: []Node{text("b")}}, text("c")}}
	assert.Equal(t, "abc", TextContent(n))
	assert.Equal(t, "", TextContent(Node{}))
}

func TestParse(t *testing.T) {
	t.Run("document object", func(t *testing.T) {
		doc, err := Parse([]byte(`{"type":"doc","content":[{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Hi"}]}]}`))
		require.NoError(t, err)
		assert.Equal(t, TypeDoc, doc.Type)
		require.Len(t, doc.Content, 1)
		level, ok := doc.Content[0].AttrInt("level")
		assert.True(t, ok)
		assert.Equal(t, 2, level)
	})

	t.Run("bare node array", func(t *testing.T) {
		doc, err := Parse([]byte(`[{"type":"paragraph"},{"type":"futureBlock","content":[]}]`))
		require.NoError(t, err)
		assert.Equal(t, TypeDoc, doc.Type)
		assert.Len(t, doc.Content, 2)
	})

	t.Run("empty input", func(t *testing.T) {
		doc, err := Parse(nil)
		require.NoError(t, err)
		assert.Empty(t, doc.Content)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := Parse([]byte(`{"type":"doc","content":[1,2]}`))
		assert.Error(t, err)
	})
}

func TestJSONRoundTrip(t *testing.T) {
	doc := Doc(
		heading(2, "Title"),
		para(text("link", Mark{Type: MarkLink, Attrs: map[string]any{"href": "/x"}})),
		Node{Type: TypeImage, Attrs: map[string]any{"src": "/a.png", "width": float64(10)}},
	)
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, doc, back)
	assert.Equal(t, RenderHTML(doc), RenderHTML(back))
}

func TestAttrAccessors(t *testing.T) {
	n := Node{Attrs: map[string]any{"f": float64(3), "s": "7", "b": true, "z": float64(0), "w": float64(1.5)}}
	v, ok := n.AttrInt("f")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	v, ok = n.AttrInt("s")
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	_, ok = n.AttrInt("missing")
	assert.False(t, ok)
	assert.True(t, n.AttrBool("b"))
	assert.False(t, n.AttrBool("z"))
	assert.False(t, Node{}.AttrBool("b"))
	assert.Equal(t, "1.5", n.AttrString("w"))
	assert.Equal(t, "", Node{}.AttrString("x"))
}
