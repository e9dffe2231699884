// Package views provides default page templates for a blockpress App.
// Sites that want their own markup supply their own ViewFuncs instead.
package views

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/blockpress"
	"github.com/eringen/blockpress/blocks"
)

var esc = blocks.EscapeHTML

// Default returns ViewFuncs rendering plain semantic HTML styled by
// /public/style.css.
func Default(cfg blockpress.SiteConfig) blockpress.ViewFuncs {
	return blockpress.ViewFuncs{
		Home:       func(page blockpress.ListPage) templ.Component { return Home(cfg, page) },
		Post:       func(page blockpress.PostPage) templ.Component { return PostView(cfg, page) },
		AdminLogin: func(showError bool, csrf string) templ.Component { return AdminLogin(cfg, showError, csrf) },
		NotFound: func() templ.Component {
			return Message(cfg, "Not found", "The page you were looking for does not exist.")
		},
		ServerError: func() templ.Component { return Message(cfg, "Something went wrong", "Please try again later.") },
	}
}

func write(w io.Writer, b *strings.Builder) error {
	_, err := io.WriteString(w, b.String())
	return err
}

func head(b *strings.Builder, cfg blockpress.SiteConfig, m blockpress.Meta, schemas []string, customCSS string) {
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	b.WriteString(`<!DOCTYPE html><html lang="` + esc(lang) + `"><head><meta charset="utf-8" />`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1" />`)
	b.WriteString(`<title>` + esc(m.Title) + `</title>`)
	b.WriteString(`<meta name="description" content="` + esc(m.Description) + `" />`)
	if m.Canonical != "" {
		b.WriteString(`<link rel="canonical" href="` + esc(m.Canonical) + `" />`)
	}
	if m.Robots != "" {
		b.WriteString(`<meta name="robots" content="` + esc(m.Robots) + `" />`)
	}
	property := func(name, value string) {
		if value != "" {
			b.WriteString(`<meta property="` + name + `" content="` + esc(value) + `" />`)
		}
	}
	og := m.OpenGraph
	property("og:title", og.Title)
	property("og:description", og.Description)
	property("og:url", og.URL)
	property("og:site_name", og.SiteName)
	property("og:type", og.Type)
	for _, img := range og.Images {
		property("og:image", img.URL)
		if img.Width > 0 {
			property("og:image:width", strconv.Itoa(img.Width))
			property("og:image:height", strconv.Itoa(img.Height))
		}
		property("og:image:alt", img.Alt)
	}
	if og.Article != nil {
		property("article:published_time", og.Article.PublishedTime)
		property("article:modified_time", og.Article.ModifiedTime)
		property("article:section", og.Article.Section)
		for _, tag := range og.Article.Tags {
			property("article:tag", tag)
		}
	}
	named := func(name, value string) {
		if value != "" {
			b.WriteString(`<meta name="` + name + `" content="` + esc(value) + `" />`)
		}
	}
	named("twitter:card", m.Twitter.Card)
	named("twitter:title", m.Twitter.Title)
	named("twitter:description", m.Twitter.Description)
	for _, img := range m.Twitter.Images {
		named("twitter:image", img)
	}
	b.WriteString(`<link rel="alternate" type="application/rss+xml" title="` + esc(cfg.Name) + `" href="/feed.xml" />`)
	b.WriteString(`<link rel="stylesheet" href="/public/style.css" />`)
	if customCSS != "" {
		b.WriteString(`<style>` + strings.ReplaceAll(customCSS, "</", `<\/`) + `</style>`)
	}
	for _, s := range schemas {
		if s != "" {
			b.WriteString(`<script type="application/ld+json">` + strings.ReplaceAll(s, "</", `<\/`) + `</script>`)
		}
	}
	b.WriteString(`</head><body><header class="bp-site-header"><a href="/">` + esc(cfg.Name) + `</a></header><main>`)
}

func foot(b *strings.Builder, cfg blockpress.SiteConfig) {
	b.WriteString(`</main><footer class="bp-site-footer"><a href="/feed.xml">RSS</a> · ` + esc(cfg.Name) + `</footer></body></html>`)
}

func postCard(b *strings.Builder, p blockpress.Post) {
	b.WriteString(`<article class="bp-card">`)
	if p.CoverImage != nil && p.CoverImage.URL != "" {
		b.WriteString(`<img src="` + esc(p.CoverImage.URL) + `" alt="` + esc(p.CoverImage.Alt) + `" loading="lazy" />`)
	}
	b.WriteString(`<h2><a href="` + esc(p.Link()) + `">` + esc(p.Title) + `</a></h2>`)
	b.WriteString(`<p class="bp-meta"><time datetime="` + p.Date().Format("2006-01-02") + `">` + FormatDate(p.Date()) + `</time> · ` + ReadingTime(p.ReadingTime) + `</p>`)
	b.WriteString(`<p>` + esc(p.Excerpt) + `</p></article>`)
}

func tagList(b *strings.Builder, tags []string, active string) {
	if len(tags) == 0 {
		return
	}
	b.WriteString(`<nav class="bp-tags">`)
	for _, t := range tags {
		b.WriteString(`<a class="` + TagClass(t == active) + `" href="` + esc(TagURL(t)) + `">` + esc(t) + `</a>`)
	}
	b.WriteString(`</nav>`)
}

// Home renders a post listing, the site index or a category page.
func Home(cfg blockpress.SiteConfig, page blockpress.ListPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		head(&b, cfg, page.Meta, []string{blockpress.MarshalJSONLD(blockpress.WebsiteJSONLD(cfg))}, "")
		if page.Category != nil {
			b.WriteString(`<h1>` + esc(page.Category.Name) + `</h1>`)
			if page.Category.Description != "" {
				b.WriteString(`<p class="bp-lead">` + esc(page.Category.Description) + `</p>`)
			}
		} else {
			b.WriteString(`<h1>` + esc(cfg.Name) + `</h1>`)
		}
		tagList(&b, page.Tags, page.ActiveTag)
		if len(page.Categories) > 0 {
			b.WriteString(`<nav class="bp-categories">`)
			for _, c := range page.Categories {
				b.WriteString(`<a href="/blog/category/` + esc(PathEscape(c.Slug)) + `/">` + esc(c.Name) + ` <span>` + strconv.Itoa(c.PostCount) + `</span></a>`)
			}
			b.WriteString(`</nav>`)
		}
		if len(page.Posts) == 0 {
			b.WriteString(`<p class="bp-empty">No posts yet.</p>`)
		}
		for _, p := range page.Posts {
			postCard(&b, p)
		}
		if page.TotalPages > 1 {
			b.WriteString(`<nav class="bp-pagination">`)
			if page.Page > 1 {
				b.WriteString(`<a rel="prev" href="` + esc(PageURL(page.Page-1, page.ActiveTag)) + `">Newer</a>`)
			}
			b.WriteString(`<span>Page ` + strconv.Itoa(page.Page) + ` of ` + strconv.Itoa(page.TotalPages) + `</span>`)
			if page.Page < page.TotalPages {
				b.WriteString(`<a rel="next" href="` + esc(PageURL(page.Page+1, page.ActiveTag)) + `">Older</a>`)
			}
			b.WriteString(`</nav>`)
		}
		foot(&b, cfg)
		return write(w, &b)
	})
}

// PostView renders a single post with its table of contents and related posts.
func PostView(cfg blockpress.SiteConfig, page blockpress.PostPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := page.Post
		var b strings.Builder
		head(&b, cfg, page.Meta, page.JSONLD, page.Settings.CustomCSS)
		b.WriteString(`<article class="bp-post">`)
		b.WriteString(`<h1>` + esc(p.Title) + `</h1>`)
		b.WriteString(`<p class="bp-meta">` + esc(p.Author.Name) + ` · <time datetime="` + p.Date().Format("2006-01-02") + `">` + FormatDate(p.Date()) + `</time> · ` + ReadingTime(p.ReadingTime) + `</p>`)
		if p.CoverImage != nil && p.CoverImage.URL != "" {
			b.WriteString(`<img class="bp-cover" src="` + esc(p.CoverImage.URL) + `" alt="` + esc(p.CoverImage.Alt) + `" />`)
		}
		if len(page.Headings) > 1 {
			b.WriteString(`<nav class="bp-toc-nav"><ol>`)
			for _, h := range page.Headings {
				b.WriteString(`<li class="` + TOCIndent(h.Level) + `"><a href="#` + esc(h.ID) + `">` + esc(h.Text) + `</a></li>`)
			}
			b.WriteString(`</ol></nav>`)
		}
		b.WriteString(`<div class="bp-content">` + p.ContentHTML + `</div>`)
		tagList(&b, p.Tags, "")
		if p.Author.Bio != "" {
			b.WriteString(`<aside class="bp-author"><strong>` + esc(p.Author.Name) + `</strong><p>` + esc(p.Author.Bio) + `</p></aside>`)
		}
		b.WriteString(`</article>`)
		if len(page.Related) > 0 {
			b.WriteString(`<section class="bp-related"><h2>Related posts</h2>`)
			for _, r := range page.Related {
				postCard(&b, r)
			}
			b.WriteString(`</section>`)
		}
		foot(&b, cfg)
		return write(w, &b)
	})
}

// AdminLogin renders the admin password form.
func AdminLogin(cfg blockpress.SiteConfig, showError bool, csrfToken string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		m := blockpress.SiteMeta(cfg, "Admin", "", "")
		m.Robots = "noindex, nofollow"
		head(&b, cfg, m, nil, "")
		b.WriteString(`<form class="bp-login" method="post" action="/admin/login/">`)
		b.WriteString(`<input type="hidden" name="_csrf" value="` + esc(csrfToken) + `" />`)
		if showError {
			b.WriteString(`<p class="bp-error">Invalid password.</p>`)
		}
		b.WriteString(`<label>Password <input type="password" name="password" autofocus /></label><button type="submit">Log in</button></form>`)
		foot(&b, cfg)
		return write(w, &b)
	})
}

// Message renders a simple titled notice, used for error pages.
func Message(cfg blockpress.SiteConfig, title, body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		head(&b, cfg, blockpress.SiteMeta(cfg, title, body, ""), nil, "")
		b.WriteString(`<h1>` + esc(title) + `</h1><p>` + esc(body) + `</p><p><a href="/">Back to the blog</a></p>`)
		foot(&b, cfg)
		return write(w, &b)
	})
}
