package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsesIsolatedRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		New("blockpress")
		New("blockpress")
	})
}

func TestRecorders(t *testing.T) {
	m := New("test")
	m.RecordVerdict("good")
	m.RecordVerdict("good")
	m.RecordVerdict("poor")
	m.AddPublished(3)
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.ObservePipeline(2 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.seoVerdicts.WithLabelValues("good")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.seoVerdicts.WithLabelValues("poor")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.postsPublished))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLoads.WithLabelValues("miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.pipelineDuration))
}

func TestMiddlewareCountsRoutes(t *testing.T) {
	m := New("test")
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/blog/:slug/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot) })

	for _, path := range []string{"/blog/a/", "/blog/b/", "/boom"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/blog/:slug/", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/boom", "418")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("blockpress")
	m.RecordVerdict("ok")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `blockpress_seo_verdicts_total{overall="ok"} 1`)
}
