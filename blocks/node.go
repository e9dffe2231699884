// Package blocks models the rich-text block tree produced by the editor and
// turns it into HTML, plain text, a heading outline and FAQ entries.
//
// Every function in this package is pure: no I/O, no shared state. A tree of
// any shape can be passed in; unknown node types and missing fields degrade
// to sensible output instead of errors.
package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Type is the tag that discriminates a Node. The vocabulary is open.
type Type string

const (
	TypeDoc             Type = "doc"
	TypeParagraph       Type = "paragraph"
	TypeHeading         Type = "heading"
	TypeBulletList      Type = "bulletList"
	TypeOrderedList     Type = "orderedList"
	TypeListItem        Type = "listItem"
	TypeTaskList        Type = "taskList"
	TypeTaskItem        Type = "taskItem"
	TypeBlockquote      Type = "blockquote"
	TypeCodeBlock       Type = "codeBlock"
	TypeImage           Type = "image"
	TypeHorizontalRule  Type = "horizontalRule"
	TypeTable           Type = "table"
	TypeTableRow        Type = "tableRow"
	TypeTableHeader     Type = "tableHeader"
	TypeTableCell       Type = "tableCell"
	TypeCallout         Type = "callout"
	TypeFAQ             Type = "faq"
	TypeFAQItem         Type = "faqItem"
	TypeFAQQuestion     Type = "faqQuestion"
	TypeFAQAnswer       Type = "faqAnswer"
	TypeTableOfContents Type = "tableOfContents"
	TypeHTML            Type = "html"
	TypeEmbed           Type = "embed"
	TypeText            Type = "text"
	TypeHardBreak       Type = "hardBreak"
)

// KnownTypes returns every node type the renderer has dedicated markup for.
func KnownTypes() []Type {
	return []Type{
		TypeParagraph, TypeHeading, TypeBulletList, TypeOrderedList, TypeListItem,
		TypeTaskList, TypeTaskItem, TypeBlockquote, TypeCodeBlock, TypeImage,
		TypeHorizontalRule, TypeTable, TypeTableRow, TypeTableHeader, TypeTableCell,
		TypeCallout, TypeFAQ, TypeFAQItem, TypeFAQQuestion, TypeFAQAnswer,
		TypeTableOfContents, TypeHTML, TypeEmbed, TypeText, TypeHardBreak,
	}
}

// Mark types applied to text nodes.
const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkStrike    = "strike"
	MarkCode      = "code"
	MarkUnderline = "underline"
	MarkHighlight = "highlight"
	MarkLink      = "link"
)

// Mark is an inline decoration on a text node.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Href returns the link target of a link mark, or "".
func (m Mark) Href() string {
	return stringAttr(m.Attrs, "href")
}

// Node is one unit of the block tree.
type Node struct {
	Type    Type           `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

// Document is the root of a block tree.
type Document struct {
	Type    Type   `json:"type"`
	Content []Node `json:"content"`
}

// Doc wraps top-level nodes in a Document.
func Doc(nodes ...Node) Document {
	return Document{Type: TypeDoc, Content: nodes}
}

// AttrString returns attrs[key] as a string. Numbers and booleans are
// formatted; anything else yields "".
func (n Node) AttrString(key string) string {
	return stringAttr(n.Attrs, key)
}

// AttrInt returns attrs[key] as an int and whether it held a number.
func (n Node) AttrInt(key string) (int, bool) {
	switch v := n.Attrs[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case json.Number:
		i, err := v.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(v)
		return i, err == nil
	}
	return 0, false
}

// AttrBool reports whether attrs[key] is truthy.
func (n Node) AttrBool(key string) bool {
	switch v := n.Attrs[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		return v != ""
	}
	return false
}

func stringAttr(attrs map[string]any, key string) string {
	switch v := attrs[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// Parse decodes a block tree from JSON. It accepts a document object
// ({"type":"doc","content":[...]}) or a bare array of nodes.
func Parse(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Doc(), nil
	}
	if trimmed[0] == '[' {
		var nodes []Node
		if err := json.Unmarshal(trimmed, &nodes); err != nil {
			return Document{}, fmt.Errorf("blocks: decode node list: %w", err)
		}
		return Doc(nodes...), nil
	}
	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Document{}, fmt.Errorf("blocks: decode document: %w", err)
	}
	if doc.Type == "" {
		doc.Type = TypeDoc
	}
	return doc, nil
}
