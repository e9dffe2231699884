package blockpress

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blockpress.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "Blog", cfg.Name)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 10, cfg.PostsPerPage)
	assert.Equal(t, 5*time.Minute, cfg.PostCacheTTL)
	assert.Equal(t, time.Minute, cfg.SchedulerInterval)
	assert.Equal(t, "blockpress", cfg.MetricsNamespace)
	assert.NotEmpty(t, cfg.Log.Level)
	assert.Error(t, cfg.Validate(), "password and secret are required")
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
name: My Blog
url: https://blog.example
admin_password: pw
session_secret: s3cret
posts_per_page: 4
post_cache_ttl: 30s
feed_full_content: true
log:
  level: debug
  console:
    enabled: true
    format: console
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "My Blog", cfg.Name)
	assert.Equal(t, "https://blog.example", cfg.URL)
	assert.Equal(t, 4, cfg.PostsPerPage)
	assert.Equal(t, 30*time.Second, cfg.PostCacheTTL)
	assert.True(t, cfg.FeedFullContent)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "name: x\npost_per_page: 3\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BLOCKPRESS_SITE_NAME":      "From Env",
		"BLOCKPRESS_API_KEY":        "k",
		"BLOCKPRESS_COOKIE_SECURE":  "true",
		"BLOCKPRESS_POSTS_PER_PAGE": "25",
		"BLOCKPRESS_SITE_URL":       "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := SiteConfig{Name: "From File", URL: "https://file.example"}
	require.NoError(t, applyEnv(&cfg, lookup))
	assert.Equal(t, "From Env", cfg.Name)
	assert.Equal(t, "https://file.example", cfg.URL, "empty values do not override")
	assert.Equal(t, "k", cfg.APIKey)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 25, cfg.PostsPerPage)

	env["BLOCKPRESS_POSTS_PER_PAGE"] = "many"
	assert.Error(t, applyEnv(&cfg, lookup))
}

func TestEnvOr(t *testing.T) {
	t.Setenv("BLOCKPRESS_TEST_VALUE", "set")
	assert.Equal(t, "set", EnvOr("BLOCKPRESS_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", EnvOr("BLOCKPRESS_TEST_UNSET", "fallback"))
}

func TestNewAppValidatesConfig(t *testing.T) {
	a := New(SiteConfig{}, stubViews())
	assert.Error(t, a.Init())
}
