package blockpress

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// changeFreq maps the age of the last modification to a crawl hint.
func changeFreq(lastMod, now time.Time) string {
	days := int(now.Sub(lastMod).Hours() / 24)
	switch {
	case days < 7:
		return "daily"
	case days < 30:
		return "weekly"
	default:
		return "monthly"
	}
}

// BuildSitemap lists the blog index, every published post, every category
// page and listing pages 2..n for perPage posts per page.
func BuildSitemap(cfg SiteConfig, posts []Post, categories []Category, perPage int, now time.Time) ([]byte, error) {
	base := cfg.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base), ChangeFreq: "daily", Priority: "0.9"},
	}
	for _, p := range posts {
		lastMod := p.UpdatedAt
		if lastMod.IsZero() {
			lastMod = p.Date()
		}
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "blog", p.Slug),
			LastMod:    lastMod.UTC().Format("2006-01-02"),
			ChangeFreq: changeFreq(lastMod, now),
			Priority:   "0.8",
		})
	}
	for _, c := range categories {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "blog", "category", c.Slug),
			ChangeFreq: "weekly",
			Priority:   "0.6",
		})
	}
	if perPage > 0 {
		pages := (len(posts) + perPage - 1) / perPage
		root := strings.TrimRight(base, "/") + "/?page="
		for page := 2; page <= pages; page++ {
			urls = append(urls, sitemapURL{
				Loc:        root + strconv.Itoa(page),
				ChangeFreq: "weekly",
				Priority:   "0.5",
			})
		}
	}

	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	out, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
