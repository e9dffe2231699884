package views

import (
	"net/url"
	"strconv"
	"time"
)

// PathEscape wraps url.PathEscape for use in templ expressions.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	base := "bp-tag"
	if active {
		base += " bp-tag-active"
	}
	return base
}

// TagURL links to the listing filtered by tag.
func TagURL(tag string) string {
	return "/?tag=" + url.QueryEscape(tag)
}

// PageURL links to page n of the listing, keeping the active tag.
func PageURL(n int, tag string) string {
	q := url.Values{}
	if n > 1 {
		q.Set("page", strconv.Itoa(n))
	}
	if tag != "" {
		q.Set("tag", tag)
	}
	if len(q) == 0 {
		return "?"
	}
	return "?" + q.Encode()
}

// FormatDate renders a publication date the way listings show it.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// ReadingTime renders "N min read".
func ReadingTime(minutes int) string {
	if minutes < 1 {
		minutes = 1
	}
	return strconv.Itoa(minutes) + " min read"
}

// TOCIndent returns the indent class of a heading in the table of contents.
func TOCIndent(level int) string {
	return "bp-toc-l" + strconv.Itoa(level)
}
