package blockpress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eringen/blockpress/logger"
	"github.com/eringen/blockpress/search"
)

// SiteConfig holds all configuration for a blockpress site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Default author name
	Language    string `yaml:"language"`    // RSS language (default "en")

	Addr            string `yaml:"addr"`              // Listen address (default ":3000")
	DatabasePath    string `yaml:"database_path"`     // SQLite path (default "data/blog.db")
	SearchIndexPath string `yaml:"search_index_path"` // bleve index dir (default "data/search.bleve")

	APIKey        string `yaml:"api_key"`        // Bearer key for the JSON API
	AdminPassword string `yaml:"admin_password"` // Required: admin login password
	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	PostsPerPage      int           `yaml:"posts_per_page"`     // default 10
	FeedFullContent   bool          `yaml:"feed_full_content"`  // RSS carries contentHTML instead of excerpt
	PostCacheTTL      time.Duration `yaml:"post_cache_ttl"`     // default 5m
	SchedulerInterval time.Duration `yaml:"scheduler_interval"` // default 1m
	MetricsNamespace  string        `yaml:"metrics_namespace"`  // default "blockpress"

	Log logger.Config `yaml:"log"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.SearchIndexPath == "" {
		c.SearchIndexPath = "data/search.bleve"
	}
	if c.PostsPerPage <= 0 {
		c.PostsPerPage = 10
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.SchedulerInterval == 0 {
		c.SchedulerInterval = time.Minute
	}
	if c.MetricsNamespace == "" {
		c.MetricsNamespace = "blockpress"
	}
	if c.Log.Level == "" && !c.Log.Console.Enabled && !c.Log.File.Enabled {
		c.Log = logger.DefaultConfig()
	}
}

// Validate reports missing required settings.
func (c SiteConfig) Validate() error {
	if c.AdminPassword == "" {
		return errors.New("blockpress: admin_password is required")
	}
	if c.SessionSecret == "" {
		return errors.New("blockpress: session_secret is required")
	}
	return nil
}

// LoadConfig reads a YAML config file, overlays BLOCKPRESS_* environment
// variables and fills defaults. An empty path skips the file. Unknown
// YAML keys are rejected.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("blockpress: read config: %w", err)
		}
		if err := unmarshalStrict(data, &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("blockpress: parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return SiteConfig{}, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func unmarshalStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *SiteConfig, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"BLOCKPRESS_SITE_NAME":        &cfg.Name,
		"BLOCKPRESS_SITE_URL":         &cfg.URL,
		"BLOCKPRESS_SITE_DESCRIPTION": &cfg.Description,
		"BLOCKPRESS_SITE_AUTHOR":      &cfg.Author,
		"BLOCKPRESS_ADDR":             &cfg.Addr,
		"BLOCKPRESS_DATABASE_PATH":    &cfg.DatabasePath,
		"BLOCKPRESS_SEARCH_INDEX":     &cfg.SearchIndexPath,
		"BLOCKPRESS_API_KEY":          &cfg.APIKey,
		"BLOCKPRESS_ADMIN_PASSWORD":   &cfg.AdminPassword,
		"BLOCKPRESS_SESSION_SECRET":   &cfg.SessionSecret,
		"BLOCKPRESS_LOG_LEVEL":        &cfg.Log.Level,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("BLOCKPRESS_COOKIE_SECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("blockpress: BLOCKPRESS_COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = b
	}
	if v, ok := lookup("BLOCKPRESS_POSTS_PER_PAGE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("blockpress: BLOCKPRESS_POSTS_PER_PAGE: %w", err)
		}
		cfg.PostsPerPage = n
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the logger built from SiteConfig.Log.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithSearchIndex uses idx instead of opening SiteConfig.SearchIndexPath.
func WithSearchIndex(idx *search.Index) Option {
	return func(a *App) {
		a.Search = idx
	}
}

// WithStore uses an already opened store instead of SiteConfig.DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
