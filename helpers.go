package blockpress

import (
	"net/url"
	"path"
	"strings"

	"github.com/eringen/blockpress/blocks"
)

// GenerateSlug converts a title to a URL slug. It follows the heading
// anchor rules and also trims leading and trailing hyphens.
func GenerateSlug(s string) string {
	return strings.Trim(blocks.Slugify(s), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeTags lowercases, trims and de-duplicates tags, keeping order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = normalizeTag(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// joinTagColumn encodes tags as ",a,b," so a single tag matches with instr.
func joinTagColumn(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return []string{}
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// FilterRelatedPosts finds posts that share a tag or category with current.
func FilterRelatedPosts(current Post, posts []Post) []Post {
	keys := make(map[string]struct{})
	for _, t := range current.Tags {
		if tag := normalizeTag(t); tag != "" {
			keys["t:"+tag] = struct{}{}
		}
	}
	for _, c := range current.Categories {
		keys["c:"+c] = struct{}{}
	}
	var related []Post
	for _, p := range posts {
		if p.ID == current.ID || p.Slug == current.Slug {
			continue
		}
		if sharesKey(p, keys) {
			related = append(related, p)
		}
	}
	return related
}

func sharesKey(p Post, keys map[string]struct{}) bool {
	for _, t := range p.Tags {
		if _, ok := keys["t:"+normalizeTag(t)]; ok {
			return true
		}
	}
	for _, c := range p.Categories {
		if _, ok := keys["c:"+c]; ok {
			return true
		}
	}
	return false
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
