package blockpress

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/blockpress/blocks"
)

// RelatedLimit caps the related posts shown under a post.
const RelatedLimit = 3

func (a *App) settings() Settings {
	s, err := a.Store.GetSettings()
	if err != nil {
		a.Logger.Warn("load settings", zap.Error(err))
		return a.defaultSettings()
	}
	return s
}

// paginate returns page (1-based) of posts and the total page count.
func paginate(posts []Post, page, perPage int) ([]Post, int) {
	if perPage <= 0 {
		perPage = 10
	}
	total := (len(posts) + perPage - 1) / perPage
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(posts) {
		return []Post{}, total
	}
	end := start + perPage
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end], total
}

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (a *App) handleHome(c echo.Context) error {
	tag := c.QueryParam("tag")
	posts, err := a.Cache.ListPosts(tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	categories, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	page := pageParam(c)
	visible, totalPages := paginate(posts, page, a.settings().PostsPerPage)
	return Render(c, a.Views.Home(ListPage{
		Meta:       SiteMeta(a.Config, "", "", BuildURL(a.Config.URL)),
		Posts:      visible,
		Tags:       tags,
		ActiveTag:  tag,
		Categories: categories,
		Page:       page,
		TotalPages: totalPages,
		SiteURL:    a.Config.URL,
	}))
}

func (a *App) handleCategory(c echo.Context) error {
	category, err := a.Store.GetCategoryBySlug(c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	if err != nil {
		return err
	}
	posts, err := a.Cache.ListByCategory(category.Slug)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	title, description := category.Name, category.Description
	if category.SEO != nil {
		title = firstNonEmpty(category.SEO.MetaTitle, title)
		description = firstNonEmpty(category.SEO.MetaDescription, description)
	}
	page := pageParam(c)
	visible, totalPages := paginate(posts, page, a.settings().PostsPerPage)
	return Render(c, a.Views.Home(ListPage{
		Meta:       SiteMeta(a.Config, title, description, BuildURL(a.Config.URL, "blog", "category", category.Slug)),
		Posts:      visible,
		Tags:       tags,
		Category:   &category,
		Page:       page,
		TotalPages: totalPages,
		SiteURL:    a.Config.URL,
	}))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	if err != nil {
		return err
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	related := FilterRelatedPosts(post, posts)
	if len(related) > RelatedLimit {
		related = related[:RelatedLimit]
	}
	return RenderCached(c, a.Views.Post(a.postPage(post, related)))
}

func (a *App) postPage(post Post, related []Post) PostPage {
	doc := post.Document()
	categoryName := ""
	if len(post.Categories) > 0 {
		if cat, err := a.Store.GetCategoryBySlug(post.Categories[0]); err == nil {
			categoryName = cat.Name
		}
	}
	schemas := []string{
		MarshalJSONLD(ArticleJSONLD(a.Config, post)),
		MarshalJSONLD(BreadcrumbJSONLD(a.Config, post, categoryName)),
	}
	if faq := MarshalJSONLD(FAQJSONLD(blocks.ExtractFAQItems(doc))); faq != "" {
		schemas = append(schemas, faq)
	}
	return PostPage{
		Meta:     MetaTags(a.Config, post),
		Post:     post,
		Related:  related,
		Headings: blocks.ExtractHeadings(doc),
		JSONLD:   schemas,
		Settings: a.settings(),
		SiteURL:  a.Config.URL,
	}
}

// lastModified returns the newest UpdatedAt among posts, or the zero time.
func lastModified(posts []Post) time.Time {
	var latest time.Time
	for _, p := range posts {
		if p.UpdatedAt.After(latest) {
			latest = p.UpdatedAt
		}
	}
	return latest
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	built := lastModified(posts)
	if built.IsZero() {
		built = a.now()
	}
	body, err := BuildRSS(a.Config, posts, a.Config.FeedFullContent, built)
	if err != nil {
		return err
	}
	return writeCached(c, "application/rss+xml; charset=utf-8", body)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	categories, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	body, err := BuildSitemap(a.Config, posts, categories, a.settings().PostsPerPage, a.now())
	if err != nil {
		return err
	}
	return writeCached(c, "application/xml; charset=utf-8", body)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.staticDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /api/\n\n")
	b.WriteString("Sitemap: " + strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		_ = a.apiError(c, err)
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", zap.String("path", c.Request().URL.Path), zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
