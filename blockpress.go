// Package blockpress is a block-based blog engine built with Go, Echo, and templ.
// Posts are stored as trees of typed blocks; every save renders them to HTML,
// extracts plain text, headings and FAQ items, and derives reading metrics.
// On top of that it serves post pages, RSS, a sitemap, SEO scoring and a
// JSON API.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// blockpress handles the handler logic, middleware, and database operations.
package blockpress

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/blockpress/blocks"
	"github.com/eringen/blockpress/logger"
	"github.com/eringen/blockpress/metrics"
	"github.com/eringen/blockpress/search"
)

// ListPage is the data behind a paginated post listing.
type ListPage struct {
	Meta       Meta
	Posts      []Post
	Tags       []string
	ActiveTag  string
	Category   *Category
	Categories []Category
	Page       int
	TotalPages int
	SiteURL    string
}

// PostPage is the data behind a single post page.
type PostPage struct {
	Meta     Meta
	Post     Post
	Related  []Post
	Headings []blocks.Heading
	JSONLD   []string // encoded schemas, one <script> each
	Settings Settings
	SiteURL  string
}

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Home        func(page ListPage) templ.Component
	Post        func(page PostPage) templ.Component
	AdminLogin  func(showError bool, csrfToken string) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central blockpress application. It wires together the store,
// cache, search index, handlers, middleware, and user-provided templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Cache   *PostCache
	Search  *search.Index
	Views   ViewFuncs
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	loginLimiter  *LoginLimiter
	customRoutes  []func(*App)
	staticDir     string
	stopScheduler func()
	now           func() time.Time
}

// New creates a new blockpress App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config:    cfg,
		Echo:      e,
		Views:     views,
		staticDir: "public",
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the store and search index, builds the logger and metrics,
// and registers middleware and routes. Start calls it; tests call it
// directly and drive a.Echo with httptest.
func (a *App) Init() error {
	if err := a.Config.Validate(); err != nil {
		return err
	}

	if a.Logger == nil {
		l, err := logger.New(a.Config.Log)
		if err != nil {
			return fmt.Errorf("blockpress: init logger: %w", err)
		}
		a.Logger = l
	}

	a.Metrics = metrics.New(a.Config.MetricsNamespace)

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath,
			WithPipelineObserver(a.Metrics.ObservePipeline),
			WithDefaultSettings(a.defaultSettings()),
		)
		if err != nil {
			return fmt.Errorf("blockpress: init store: %w", err)
		}
		a.Store = store
	}

	if a.Search == nil {
		idx, err := search.Open(a.Config.SearchIndexPath)
		if err != nil {
			return fmt.Errorf("blockpress: init search: %w", err)
		}
		a.Search = idx
	}
	if n, err := a.Reindex(); err != nil {
		a.Logger.Warn("search reindex failed", zap.Error(err))
	} else {
		a.Logger.Debug("search index rebuilt", zap.Int("posts", n))
	}

	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.Cache.Observe(a.Metrics)

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) defaultSettings() Settings {
	settings := DefaultSettings()
	settings.PostsPerPage = a.Config.PostsPerPage
	if a.Config.Author != "" {
		settings.DefaultAuthor = &Author{Name: a.Config.Author}
	}
	return settings
}

// Start initializes the app, starts the publish scheduler and serves HTTP.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.stopScheduler = a.StartPublishScheduler(a.Config.SchedulerInterval)

	a.Logger.Info("blockpress listening", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.URL))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// User's static assets
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/metrics", echo.WrapHandler(a.Metrics.Handler()))
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/blog/category/:slug/", a.handleCategory)

	// Admin session
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	a.setupAPI(e.Group("/api"))
}

// Close stops background work and releases the store and search index.
func (a *App) Close() error {
	if a.stopScheduler != nil {
		a.stopScheduler()
		a.stopScheduler = nil
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	var errs []error
	if a.Search != nil {
		errs = append(errs, a.Search.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
