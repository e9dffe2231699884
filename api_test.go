package blockpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eringen/blockpress/blocks"
	"github.com/eringen/blockpress/search"
	"github.com/eringen/blockpress/seo"
)

const testAPIKey = "test-key"

func textComponent(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func stubViews() ViewFuncs {
	return ViewFuncs{
		Home: func(p ListPage) templ.Component {
			name := "home"
			if p.Category != nil {
				name = "category " + p.Category.Name
			}
			return textComponent(fmt.Sprintf("%s %d posts page %d/%d title=%s", name, len(p.Posts), p.Page, p.TotalPages, p.Meta.Title))
		},
		Post: func(p PostPage) templ.Component {
			return textComponent(fmt.Sprintf("post %s headings=%d schemas=%d", p.Meta.Title, len(p.Headings), len(p.JSONLD)))
		},
		AdminLogin: func(showError bool, token string) templ.Component {
			return textComponent(fmt.Sprintf("login error=%v token=%s", showError, token))
		},
		NotFound:    func() templ.Component { return textComponent("not found") },
		ServerError: func() templ.Component { return textComponent("server error") },
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	s, _ := newTestStore(t)
	idx, err := search.NewMemory()
	require.NoError(t, err)

	a := New(SiteConfig{
		Name:          "Test",
		URL:           "https://example.com",
		APIKey:        testAPIKey,
		AdminPassword: "secret",
		SessionSecret: "0123456789abcdef0123456789abcdef",
	}, stubViews(),
		WithStore(s),
		WithSearchIndex(idx),
		WithLogger(zap.NewNop()),
		WithStaticDir(t.TempDir()),
	)
	require.NoError(t, a.Init())
	t.Cleanup(func() { a.Close() })
	return a
}

type request struct {
	method  string
	target  string
	key     string
	body    any
	header  http.Header
	cookies []*http.Cookie
}

func serve(a *App, r request) *httptest.ResponseRecorder {
	var body io.Reader
	if r.body != nil {
		switch b := r.body.(type) {
		case string:
			body = strings.NewReader(b)
		default:
			data, _ := json.Marshal(b)
			body = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(r.method, r.target, body)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.key != "" {
		req.Header.Set("Authorization", "Bearer "+r.key)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *APIMeta        `json:"meta"`
	Error   *APIError       `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func createPost(t *testing.T, a *App, in map[string]any) Post {
	t.Helper()
	rec := serve(a, request{method: http.MethodPost, target: "/api/posts", key: testAPIKey, body: in})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p Post
	env := decode(t, rec, &p)
	require.True(t, env.Success)
	return p
}

func paragraphJSON(text string) map[string]any {
	return map[string]any{"type": "paragraph", "content": []any{map[string]any{"type": "text", "text": text}}}
}

func TestAPIAuth(t *testing.T) {
	a := newTestApp(t)
	body := map[string]any{"title": "x"}

	rec := serve(a, request{method: http.MethodPost, target: "/api/posts", body: body})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec, nil)
	assert.False(t, env.Success)
	assert.Equal(t, CodeUnauthorized, env.Error.Code)

	rec = serve(a, request{method: http.MethodPost, target: "/api/posts", key: "wrong", body: body})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, CodeForbidden, decode(t, rec, nil).Error.Code)

	rec = serve(a, request{method: http.MethodGet, target: "/api/settings"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(a, request{method: http.MethodGet, target: "/api/settings", key: testAPIKey})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestAPIPostLifecycle(t *testing.T) {
	a := newTestApp(t)

	created := createPost(t, a, map[string]any{
		"title": "Hello API",
		"tags":  []string{"Go"},
		"content": []any{
			map[string]any{"type": "heading", "attrs": map[string]any{"level": 2}, "content": []any{map[string]any{"type": "text", "text": "Intro"}}},
			paragraphJSON("First words."),
		},
	})
	assert.Equal(t, "hello-api", created.Slug)
	assert.Equal(t, StatusDraft, created.Status)
	assert.Equal(t, []string{"go"}, created.Tags)
	assert.Equal(t, 1, created.Version)
	assert.Contains(t, created.ContentHTML, `<h2 id="intro">Intro</h2>`)

	// Drafts are invisible to anonymous callers.
	rec := serve(a, request{method: http.MethodGet, target: "/api/posts/" + created.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, decode(t, rec, nil).Error.Code)

	rec = serve(a, request{method: http.MethodGet, target: "/api/posts"})
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []Post
	env := decode(t, rec, &listed)
	assert.Empty(t, listed)
	assert.Equal(t, 0, env.Meta.Total)

	rec = serve(a, request{method: http.MethodGet, target: "/api/posts?status=draft", key: testAPIKey})
	decode(t, rec, &listed)
	assert.Len(t, listed, 1)

	rec = serve(a, request{method: http.MethodPut, target: "/api/posts/" + created.ID, key: testAPIKey, body: map[string]any{
		"status":  "published",
		"content": []any{paragraphJSON("Second draft of the words.")},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated Post
	decode(t, rec, &updated)
	assert.Equal(t, StatusPublished, updated.Status)
	assert.Equal(t, 2, updated.Version)
	require.NotNil(t, updated.PublishedAt)

	rec = serve(a, request{method: http.MethodGet, target: "/api/posts/hello-api"})
	require.Equal(t, http.StatusOK, rec.Code)
	var bySlug Post
	decode(t, rec, &bySlug)
	assert.Equal(t, created.ID, bySlug.ID)

	rec = serve(a, request{method: http.MethodGet, target: "/api/posts?limit=1"})
	env = decode(t, rec, &listed)
	assert.Len(t, listed, 1)
	assert.Equal(t, &APIMeta{Page: 1, Limit: 1, Total: 1, TotalPages: 1}, env.Meta)

	rec = serve(a, request{method: http.MethodGet, target: "/api/posts/" + created.ID + "/revisions", key: testAPIKey})
	require.Equal(t, http.StatusOK, rec.Code)
	var revisions []Revision
	decode(t, rec, &revisions)
	require.Len(t, revisions, 1)
	assert.Equal(t, 1, revisions[0].Version)

	rec = serve(a, request{method: http.MethodGet, target: "/api/posts/" + created.ID + "/seo", key: testAPIKey})
	require.Equal(t, http.StatusOK, rec.Code)
	var score seo.Result
	decode(t, rec, &score)
	assert.NotEmpty(t, score.Overall)
	assert.NotEmpty(t, score.Checks)

	rec = serve(a, request{method: http.MethodGet, target: "/api/posts/" + created.ID + "/markdown", key: testAPIKey})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="hello-api.md"`)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "---\ntitle: Hello API\n"))
	assert.Contains(t, rec.Body.String(), "Second draft of the words.")

	// DELETE archives by default.
	rec = serve(a, request{method: http.MethodDelete, target: "/api/posts/" + created.ID, key: testAPIKey})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = serve(a, request{method: http.MethodGet, target: "/api/posts/" + created.ID, key: testAPIKey})
	var archived Post
	decode(t, rec, &archived)
	assert.Equal(t, StatusArchived, archived.Status)
	assert.Equal(t, http.StatusNotFound, serve(a, request{method: http.MethodGet, target: "/api/posts/" + created.ID}).Code)

	rec = serve(a, request{method: http.MethodDelete, target: "/api/posts/" + created.ID + "?hard=true", key: testAPIKey})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, serve(a, request{method: http.MethodGet, target: "/api/posts/" + created.ID, key: testAPIKey}).Code)
	assert.Equal(t, http.StatusNotFound, serve(a, request{method: http.MethodDelete, target: "/api/posts/" + created.ID, key: testAPIKey}).Code)
}

func TestAPIValidation(t *testing.T) {
	a := newTestApp(t)

	rec := serve(a, request{method: http.MethodPost, target: "/api/posts", key: testAPIKey, body: map[string]any{"title": "  "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec, nil)
	assert.Equal(t, CodeValidation, env.Error.Code)
	assert.Equal(t, "title is required", env.Error.Message)

	rec = serve(a, request{method: http.MethodPost, target: "/api/posts", key: testAPIKey, body: `{"title":`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeValidation, decode(t, rec, nil).Error.Code)

	rec = serve(a, request{method: http.MethodGet, target: "/api/posts?status=bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(a, request{method: http.MethodPut, target: "/api/posts/missing", key: testAPIKey, body: map[string]any{"title": "x"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(a, request{method: http.MethodGet, target: "/api/nothing-here"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, decode(t, rec, nil).Error.Code)
}

func TestAPIDefaultAuthorFromSettings(t *testing.T) {
	a := newTestApp(t)
	rec := serve(a, request{method: http.MethodPut, target: "/api/settings", key: testAPIKey, body: map[string]any{
		"defaultAuthor": map[string]any{"name": "Grace"},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p := createPost(t, a, map[string]any{"title": "Bylined"})
	assert.Equal(t, "Grace", p.Author.Name)
}

func TestAPIRenderPreview(t *testing.T) {
	a := newTestApp(t)
	rec := serve(a, request{method: http.MethodPost, target: "/api/render", key: testAPIKey, body: map[string]any{
		"title": "Preview",
		"content": []any{
			map[string]any{"type": "heading", "attrs": map[string]any{"level": 2}, "content": []any{map[string]any{"type": "text", "text": "Part one"}}},
			paragraphJSON("Some text to measure."),
		},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		ContentHTML string           `json:"contentHTML"`
		ContentText string           `json:"contentText"`
		WordCount   int              `json:"wordCount"`
		ReadingTime int              `json:"readingTime"`
		Excerpt     string           `json:"excerpt"`
		Headings    []blocks.Heading `json:"headings"`
		SEO         seo.Result       `json:"seo"`
	}
	decode(t, rec, &out)
	assert.Equal(t, `<h2 id="part-one">Part one</h2><p>Some text to measure.</p>`, out.ContentHTML)
	assert.Equal(t, 6, out.WordCount)
	assert.Equal(t, 1, out.ReadingTime)
	require.Len(t, out.Headings, 1)
	assert.Equal(t, "part-one", out.Headings[0].ID)
	assert.NotEmpty(t, out.SEO.Checks)

	// Nothing was saved.
	posts, err := a.Store.ListPublished(0)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestAPISearch(t *testing.T) {
	a := newTestApp(t)
	createPost(t, a, map[string]any{"title": "Gophers", "status": "published", "content": []any{paragraphJSON("All about gophers and their burrows.")}})
	createPost(t, a, map[string]any{"title": "Hidden gophers", "content": []any{paragraphJSON("Draft about gophers.")}})

	rec := serve(a, request{method: http.MethodGet, target: "/api/search?q=burrows"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var hits []search.Hit
	decode(t, rec, &hits)
	require.Len(t, hits, 1)
	assert.Equal(t, "gophers", hits[0].Slug)

	rec = serve(a, request{method: http.MethodGet, target: "/api/search?q=gophers"})
	decode(t, rec, &hits)
	assert.Len(t, hits, 1, "drafts stay out of the index")

	rec = serve(a, request{method: http.MethodGet, target: "/api/search"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPICategoriesAndSettings(t *testing.T) {
	a := newTestApp(t)

	rec := serve(a, request{method: http.MethodPost, target: "/api/categories", key: testAPIKey, body: map[string]any{"name": "Go Tips", "order": 1}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var cat Category
	decode(t, rec, &cat)
	assert.Equal(t, "go-tips", cat.Slug)

	rec = serve(a, request{method: http.MethodGet, target: "/api/categories/go-tips"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(a, request{method: http.MethodPut, target: "/api/categories/" + cat.ID, key: testAPIKey, body: map[string]any{"description": "Short ones"}})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &cat)
	assert.Equal(t, "Short ones", cat.Description)

	rec = serve(a, request{method: http.MethodGet, target: "/api/categories"})
	var cats []Category
	decode(t, rec, &cats)
	assert.Len(t, cats, 1)

	rec = serve(a, request{method: http.MethodDelete, target: "/api/categories/" + cat.ID, key: testAPIKey})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, serve(a, request{method: http.MethodGet, target: "/api/categories/" + cat.ID}).Code)

	rec = serve(a, request{method: http.MethodGet, target: "/api/settings", key: testAPIKey})
	var settings Settings
	decode(t, rec, &settings)
	assert.Equal(t, 10, settings.PostsPerPage)
	assert.Equal(t, "none", settings.CommentSystem)

	rec = serve(a, request{method: http.MethodPut, target: "/api/settings", key: testAPIKey, body: map[string]any{"postsPerPage": 0}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(a, request{method: http.MethodPut, target: "/api/settings", key: testAPIKey, body: map[string]any{"postsPerPage": 1, "commentSystem": "giscus"}})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &settings)
	assert.Equal(t, 1, settings.PostsPerPage)
	assert.Equal(t, "giscus", settings.CommentSystem)
}

func TestPublicPages(t *testing.T) {
	a := newTestApp(t)
	rec := serve(a, request{method: http.MethodPost, target: "/api/categories", key: testAPIKey, body: map[string]any{"name": "Technology"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	createPost(t, a, map[string]any{
		"title":      "First",
		"status":     "published",
		"categories": []string{"technology"},
		"tags":       []string{"go"},
		"content": []any{
			map[string]any{"type": "heading", "attrs": map[string]any{"level": 2}, "content": []any{map[string]any{"type": "text", "text": "Start"}}},
			paragraphJSON("Hello readers."),
		},
	})
	createPost(t, a, map[string]any{"title": "Second", "status": "published", "tags": []string{"web"}})

	rec = serve(a, request{method: http.MethodGet, target: "/"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "home 2 posts page 1/1 title=Test", rec.Body.String())

	rec = serve(a, request{method: http.MethodGet, target: "/?tag=go"})
	assert.Equal(t, "home 1 posts page 1/1 title=Test", rec.Body.String())

	rec = serve(a, request{method: http.MethodGet, target: "/blog/category/technology/"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "category Technology 1 posts page 1/1 title=Technology | Test", rec.Body.String())
	assert.Equal(t, http.StatusNotFound, serve(a, request{method: http.MethodGet, target: "/blog/category/nope/"}).Code)

	rec = serve(a, request{method: http.MethodGet, target: "/blog/first/"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "post First | Test headings=1 schemas=2", rec.Body.String())
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	rec = serve(a, request{method: http.MethodGet, target: "/blog/first/", header: http.Header{"If-None-Match": {etag}}})
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = serve(a, request{method: http.MethodGet, target: "/blog/missing/"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", rec.Body.String())

	rec = serve(a, request{method: http.MethodGet, target: "/blog/first"})
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog/first/", rec.Header().Get("Location"))

	rec = serve(a, request{method: http.MethodGet, target: "/blog"})
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestFeedsAndRobots(t *testing.T) {
	a := newTestApp(t)
	createPost(t, a, map[string]any{"title": "Feed me", "status": "published"})

	rec := serve(a, request{method: http.MethodGet, target: "/feed.xml"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600, s-maxage=3600", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "<title>Feed me</title>")
	etag := rec.Header().Get("ETag")

	// The feed only changes when a post does.
	rec = serve(a, request{method: http.MethodGet, target: "/feed.xml", header: http.Header{"If-None-Match": {etag}}})
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = serve(a, request{method: http.MethodGet, target: "/sitemap.xml"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>https://example.com/blog/feed-me/</loc>")

	rec = serve(a, request{method: http.MethodGet, target: "/robots.txt"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Disallow: /api/")
	assert.Contains(t, rec.Body.String(), "Sitemap: https://example.com/sitemap.xml")

	rec = serve(a, request{method: http.MethodGet, target: "/metrics"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "blockpress_http_requests_total")
	assert.Contains(t, rec.Body.String(), "blockpress_content_pipeline_duration_seconds")
}

func TestAdminSession(t *testing.T) {
	a := newTestApp(t)

	rec := serve(a, request{method: http.MethodGet, target: "/admin/"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "login error=false token="))
	token := strings.TrimPrefix(body, "login error=false token=")
	cookies := rec.Result().Cookies()

	login := func(password string) *httptest.ResponseRecorder {
		form := url.Values{"password": {password}, "_csrf": {token}}
		req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		a.Echo.ServeHTTP(rec, req)
		return rec
	}

	rec = login("wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "login error=true"))

	rec = login("secret")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/", rec.Header().Get("Location"))
	cookies = append(cookies, rec.Result().Cookies()...)

	rec = serve(a, request{method: http.MethodGet, target: "/api/settings", cookies: cookies})
	assert.Equal(t, http.StatusOK, rec.Code, "session is enough for reads")

	rec = serve(a, request{method: http.MethodPost, target: "/api/posts", cookies: cookies, body: map[string]any{"title": "From session"}})
	assert.Equal(t, http.StatusForbidden, rec.Code, "session writes need the CSRF token")

	rec = serve(a, request{method: http.MethodPost, target: "/api/posts", cookies: cookies, body: map[string]any{"title": "From session"},
		header: http.Header{"X-Csrf-Token": {token}}})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestLoginRateLimit(t *testing.T) {
	a := newTestApp(t)
	a.loginLimiter.Stop()
	a.loginLimiter = NewLoginLimiter(1, time.Hour)

	rec := serve(a, request{method: http.MethodGet, target: "/admin/"})
	token := strings.TrimPrefix(rec.Body.String(), "login error=false token=")
	cookies := rec.Result().Cookies()

	var codes []int
	for i := 0; i < 2; i++ {
		form := url.Values{"password": {"wrong"}, "_csrf": {token}}
		req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		a.Echo.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestPublishDueRefreshesCacheAndSearch(t *testing.T) {
	a := newTestApp(t)
	at := time.Now().Add(time.Hour).UTC()
	p := createPost(t, a, map[string]any{
		"title":       "Tomorrow",
		"status":      "scheduled",
		"scheduledAt": at.Format(time.RFC3339),
		"content":     []any{paragraphJSON("Scheduled zebras.")},
	})

	posts, err := a.Cache.ListPosts("")
	require.NoError(t, err)
	assert.Empty(t, posts)

	ids, err := a.publishDue(time.Now())
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = a.publishDue(at.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, ids)

	posts, err = a.Cache.ListPosts("")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	hits, err := a.Search.Search("zebras", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}
