package blockpress

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/blockpress/blocks"
	"github.com/eringen/blockpress/content"
	"github.com/eringen/blockpress/seo"
)

// API error codes.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "INTERNAL_ERROR"
)

// APIMeta carries pagination details of a list response.
type APIMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// APIError is the error member of a failed response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the envelope of every /api response.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

func jsonSuccess(c echo.Context, code int, data any, meta *APIMeta) error {
	return c.JSON(code, APIResponse{Success: true, Data: data, Meta: meta})
}

func jsonError(c echo.Context, code int, errCode, message string) error {
	return c.JSON(code, APIResponse{Error: &APIError{Code: errCode, Message: message}})
}

// apiError maps err onto the error envelope.
func (a *App) apiError(c echo.Context, err error) error {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, ErrNotFound):
		return jsonError(c, http.StatusNotFound, CodeNotFound, "Not found")
	case errors.Is(err, ErrInvalid):
		msg := strings.TrimPrefix(err.Error(), ErrInvalid.Error()+": ")
		return jsonError(c, http.StatusBadRequest, CodeValidation, msg)
	case errors.As(err, &he):
		switch he.Code {
		case http.StatusNotFound:
			return jsonError(c, he.Code, CodeNotFound, "Not found")
		case http.StatusUnauthorized:
			return jsonError(c, he.Code, CodeUnauthorized, "Unauthorized")
		case http.StatusForbidden:
			return jsonError(c, he.Code, CodeForbidden, "Forbidden")
		}
		if he.Code < 500 {
			return jsonError(c, he.Code, CodeValidation, http.StatusText(he.Code))
		}
	}
	a.Logger.Error("api error", zap.String("path", c.Request().URL.Path), zap.Error(err))
	return jsonError(c, http.StatusInternalServerError, CodeInternal, "Internal error")
}

func (a *App) setupAPI(g *echo.Group) {
	auth := a.requireAuth

	g.GET("/posts", a.apiListPosts)
	g.POST("/posts", a.apiCreatePost, auth)
	g.GET("/posts/:id", a.apiGetPost)
	g.PUT("/posts/:id", a.apiUpdatePost, auth)
	g.DELETE("/posts/:id", a.apiDeletePost, auth)
	g.GET("/posts/:id/seo", a.apiScorePost, auth)
	g.GET("/posts/:id/revisions", a.apiListRevisions, auth)
	g.GET("/posts/:id/markdown", a.apiExportMarkdown, auth)
	g.POST("/render", a.apiRender, auth)

	g.GET("/search", a.apiSearch)
	g.GET("/tags", a.apiListTags)

	g.GET("/categories", a.apiListCategories)
	g.POST("/categories", a.apiCreateCategory, auth)
	g.GET("/categories/:id", a.apiGetCategory)
	g.PUT("/categories/:id", a.apiUpdateCategory, auth)
	g.DELETE("/categories/:id", a.apiDeleteCategory, auth)

	g.GET("/settings", a.apiGetSettings, auth)
	g.PUT("/settings", a.apiUpdateSettings, auth)
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return strings.TrimSpace(header)
}

// authorized reports whether the request carries the API key or an admin
// session.
func (a *App) authorized(c echo.Context) bool {
	if IsAdmin(c) {
		return true
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" || a.Config.APIKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(bearerToken(header)), []byte(a.Config.APIKey)) == 1
}

func (a *App) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if a.authorized(c) {
			return next(c)
		}
		if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
			return jsonError(c, http.StatusUnauthorized, CodeUnauthorized, "Authorization header is required")
		}
		return jsonError(c, http.StatusForbidden, CodeForbidden, "Invalid API key")
	}
}

func intParam(c echo.Context, name string, fallback int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return fallback
	}
	return n
}

// afterWrite keeps the cache and search index in step with a post write.
func (a *App) afterWrite(id string) {
	a.Cache.Invalidate()
	a.syncSearch(id)
}

func (a *App) apiListPosts(c echo.Context) error {
	q := PostQuery{
		Page:      intParam(c, "page", 1),
		Limit:     intParam(c, "limit", 10),
		Category:  c.QueryParam("category"),
		Tag:       c.QueryParam("tag"),
		Status:    PostStatus(c.QueryParam("status")),
		Search:    firstNonEmpty(c.QueryParam("q"), c.QueryParam("search")),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}
	if q.Status != "" && !q.Status.Valid() {
		return jsonError(c, http.StatusBadRequest, CodeValidation, "unknown status "+strconv.Quote(string(q.Status)))
	}
	if !a.authorized(c) {
		q.Status = StatusPublished
	}
	list, err := a.Store.ListPosts(q)
	if err != nil {
		return a.apiError(c, err)
	}
	posts := list.Posts
	if posts == nil {
		posts = []Post{}
	}
	return jsonSuccess(c, http.StatusOK, posts, &APIMeta{
		Page:       list.Page,
		Limit:      list.Limit,
		Total:      list.Total,
		TotalPages: list.TotalPages(),
	})
}

// lookupPost finds a post by id, then by slug. Anonymous callers only
// see published posts.
func (a *App) lookupPost(c echo.Context) (Post, error) {
	key := c.Param("id")
	post, err := a.Store.GetPost(key)
	if errors.Is(err, ErrNotFound) {
		post, err = a.Store.GetPostBySlug(key)
	}
	if err != nil {
		return Post{}, err
	}
	if post.Status != StatusPublished && !a.authorized(c) {
		return Post{}, ErrNotFound
	}
	return post, nil
}

func (a *App) apiGetPost(c echo.Context) error {
	post, err := a.lookupPost(c)
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonSuccess(c, http.StatusOK, post, nil)
}

func (a *App) bindPostInput(c echo.Context) (PostInput, error) {
	var in PostInput
	if err := c.Bind(&in); err != nil {
		return PostInput{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return in, nil
}

func (a *App) apiCreatePost(c echo.Context) error {
	in, err := a.bindPostInput(c)
	if err != nil {
		return a.apiError(c, err)
	}
	if in.Author == nil {
		if author := a.settings().DefaultAuthor; author != nil {
			in.Author = author
		}
	}
	post, err := a.Store.CreatePost(in)
	if err != nil {
		return a.apiError(c, err)
	}
	a.afterWrite(post.ID)
	return jsonSuccess(c, http.StatusCreated, post, nil)
}

func (a *App) apiUpdatePost(c echo.Context) error {
	in, err := a.bindPostInput(c)
	if err != nil {
		return a.apiError(c, err)
	}
	post, err := a.Store.UpdatePost(c.Param("id"), in)
	if err != nil {
		return a.apiError(c, err)
	}
	a.afterWrite(post.ID)
	return jsonSuccess(c, http.StatusOK, post, nil)
}

// apiDeletePost archives a post; ?hard=true removes it with its revisions.
func (a *App) apiDeletePost(c echo.Context) error {
	id := c.Param("id")
	hard, _ := strconv.ParseBool(c.QueryParam("hard"))
	var err error
	if hard {
		err = a.Store.DeletePost(id)
	} else {
		err = a.Store.ArchivePost(id)
	}
	if err != nil {
		return a.apiError(c, err)
	}
	a.afterWrite(id)
	return jsonSuccess(c, http.StatusOK, map[string]any{"deleted": true, "archived": !hard}, nil)
}

// SEOInput returns the fields of p the SEO scorer looks at.
func (p Post) SEOInput() seo.Input {
	return seo.Input{
		Title:           p.Title,
		Slug:            p.Slug,
		Excerpt:         p.Excerpt,
		MetaTitle:       p.SEO.MetaTitle,
		MetaDescription: p.SEO.MetaDescription,
		FocusKeyword:    p.SEO.FocusKeyword,
		ContentText:     p.ContentText,
		ContentHTML:     p.ContentHTML,
		WordCount:       p.WordCount,
		CoverImageURL:   coverURL(p),
	}
}

// ScorePost runs the SEO scorer over a stored post.
func (a *App) ScorePost(post Post) seo.Result {
	res := seo.Score(post.SEOInput())
	if a.Metrics != nil {
		a.Metrics.RecordVerdict(string(res.Overall))
	}
	return res
}

func (a *App) apiScorePost(c echo.Context) error {
	post, err := a.lookupPost(c)
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonSuccess(c, http.StatusOK, a.ScorePost(post), nil)
}

func (a *App) apiListRevisions(c echo.Context) error {
	revisions, err := a.Store.ListRevisions(c.Param("id"))
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonSuccess(c, http.StatusOK, revisions, nil)
}

func (a *App) apiExportMarkdown(c echo.Context) error {
	post, err := a.lookupPost(c)
	if err != nil {
		return a.apiError(c, err)
	}
	out, err := ExportMarkdown(post)
	if err != nil {
		return a.apiError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+post.Slug+`.md"`)
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(out))
}

// RenderRequest is the body of POST /api/render.
type RenderRequest struct {
	Title      string          `json:"title"`
	Slug       string          `json:"slug"`
	Excerpt    string          `json:"excerpt"`
	Content    []blocks.Node   `json:"content"`
	CoverImage *MediaReference `json:"coverImage,omitempty"`
	SEO        PostSEO         `json:"seo"`
}

// RenderResponse is the pipeline output plus the SEO verdict for a draft.
type RenderResponse struct {
	content.Result
	SEO seo.Result `json:"seo"`
}

// Preview runs the content pipeline and the SEO scorer without saving.
func (a *App) Preview(req RenderRequest) RenderResponse {
	res := content.Process(req.Content, req.Excerpt)
	post := Post{
		Title:       req.Title,
		Slug:        firstNonEmpty(GenerateSlug(req.Slug), GenerateSlug(req.Title)),
		Excerpt:     res.Excerpt,
		ContentHTML: res.ContentHTML,
		ContentText: res.ContentText,
		WordCount:   res.WordCount,
		CoverImage:  req.CoverImage,
		SEO:         req.SEO,
	}
	return RenderResponse{Result: res, SEO: a.ScorePost(post)}
}

func (a *App) apiRender(c echo.Context) error {
	var req RenderRequest
	if err := c.Bind(&req); err != nil {
		return a.apiError(c, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	return jsonSuccess(c, http.StatusOK, a.Preview(req), nil)
}

func (a *App) apiSearch(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return jsonError(c, http.StatusBadRequest, CodeValidation, "q is required")
	}
	hits, err := a.Search.Search(q, intParam(c, "limit", 10))
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonSuccess(c, http.StatusOK, hits, nil)
}

func (a *App) apiListTags(c echo.Context) error {
	tags, err := a.Cache.ListTags()
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonSuccess(c, http.StatusOK, tags, nil)
}

func (a *App) apiListCategories(c echo.Context) error {
	categories, err := a.Store.ListCategories()
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonSuccess(c, http.StatusOK, categories, nil)
}

func (a *App) apiGetCategory(c echo.Context) error {
	key := c.Param("id")
	category, err := a.Store.GetCategory(key)
	if errors.Is(err, ErrNotFound) {
		category, err = a.Store.GetCategoryBySlug(key)
	}
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonSuccess(c, http.StatusOK, category, nil)
}

func (a *App) apiCreateCategory(c echo.Context) error {
	var in CategoryInput
	if err := c.Bind(&in); err != nil {
		return a.apiError(c, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	category, err := a.Store.CreateCategory(in)
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonSuccess(c, http.StatusCreated, category, nil)
}

func (a *App) apiUpdateCategory(c echo.Context) error {
	var in CategoryInput
	if err := c.Bind(&in); err != nil {
		return a.apiError(c, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	category, err := a.Store.UpdateCategory(c.Param("id"), in)
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonSuccess(c, http.StatusOK, category, nil)
}

func (a *App) apiDeleteCategory(c echo.Context) error {
	if err := a.Store.DeleteCategory(c.Param("id")); err != nil {
		return a.apiError(c, err)
	}
	return jsonSuccess(c, http.StatusOK, map[string]bool{"deleted": true}, nil)
}

func (a *App) apiGetSettings(c echo.Context) error {
	settings, err := a.Store.GetSettings()
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonSuccess(c, http.StatusOK, settings, nil)
}

func (a *App) apiUpdateSettings(c echo.Context) error {
	settings, err := a.Store.GetSettings()
	if err != nil {
		return a.apiError(c, err)
	}
	if err := c.Bind(&settings); err != nil {
		return a.apiError(c, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	saved, err := a.Store.UpdateSettings(settings)
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonSuccess(c, http.StatusOK, saved, nil)
}
