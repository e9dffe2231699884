package blockpress

import (
	"encoding/xml"
	"strings"
	"time"
)

// FeedLimit is the maximum number of posts in the RSS feed.
const FeedLimit = 50

type rssXML struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	AtomNS    string     `xml:"xmlns:atom,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string      `xml:"title"`
	Link          string      `xml:"link"`
	Description   string      `xml:"description"`
	Language      string      `xml:"language"`
	LastBuildDate string      `xml:"lastBuildDate"`
	AtomLink      rssAtomLink `xml:"atom:link"`
	Items         []rssItem   `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	GUID        rssGUID       `xml:"guid"`
	Description rssCDATA      `xml:"description"`
	PubDate     string        `xml:"pubDate"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
	Categories  []string      `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssCDATA struct {
	Text string `xml:",cdata"`
}

type rssEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// BuildRSS renders an RSS 2.0 document for the newest published posts.
// Descriptions carry the excerpt, or the rendered HTML when fullContent is set.
func BuildRSS(cfg SiteConfig, posts []Post, fullContent bool, now time.Time) ([]byte, error) {
	base := cfg.URL
	if len(posts) > FeedLimit {
		posts = posts[:FeedLimit]
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := BuildURL(base, "blog", p.Slug)
		body := p.Excerpt
		if fullContent {
			body = p.ContentHTML
		}
		item := rssItem{
			Title:       p.Title,
			Link:        postURL,
			GUID:        rssGUID{IsPermaLink: true, Value: postURL},
			Description: rssCDATA{Text: body},
			PubDate:     p.Date().UTC().Format(time.RFC1123Z),
			Categories:  p.Categories,
		}
		if p.CoverImage != nil && p.CoverImage.URL != "" {
			item.Enclosure = &rssEnclosure{URL: p.CoverImage.URL, Type: "image/jpeg"}
		}
		items = append(items, item)
	}

	description := cfg.Description
	if description == "" {
		description = "Latest posts from " + cfg.Name
	}
	feed := rssXML{
		Version:   "2.0",
		AtomNS:    "http://www.w3.org/2005/Atom",
		ContentNS: "http://purl.org/rss/1.0/modules/content/",
		Channel: rssChannel{
			Title:         cfg.Name + " Blog",
			Link:          BuildURL(base),
			Description:   description,
			Language:      cfg.Language,
			LastBuildDate: now.UTC().Format(time.RFC1123Z),
			AtomLink: rssAtomLink{
				Href: strings.TrimRight(base, "/") + "/feed.xml",
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: items,
		},
	}
	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
