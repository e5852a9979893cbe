// Package blogspace is the backend for a personal blogging and portfolio
// site built with Go, Echo, and templ. It serves the landing page, the blog
// and work listings, single posts, an authenticated publish form, uploaded
// images, and simple visit analytics.
//
// Users provide their own templ components via the ViewFuncs struct, and
// blogspace handles the handler logic, middleware, and database operations.
package blogspace

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/sayaksen/blogspace/analytics"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Home        func() templ.Component
	PostList    func(space string, posts []PostEntry, activeTags []string) templ.Component
	Post        func(entry PostEntry, body PostBody, shareURL string) templ.Component
	PublishForm func(draft PublishDraft, csrfToken string) templ.Component
	AdminLogin  func(message string, csrfToken string) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central blogspace application. It wires together the content
// store, the analytics store, handlers, middleware, and user-provided
// templates.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Store     *Store
	Analytics *analytics.Store
	Views     ViewFuncs

	loginLimiter *LoginLimiter
	aggregator   *analytics.Aggregator
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new blogspace App with the given configuration and view
// functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "static",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the stores, middleware, routes, the weekly statistics
// job, and starts the server.
func (a *App) Start() error {
	if a.Config.AdminEmail == "" || a.Config.AdminPassword == "" {
		return fmt.Errorf("blogspace: AdminEmail and AdminPassword are required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("blogspace: SessionSecret is required")
	}
	if a.Config.PublishToken == "" {
		return fmt.Errorf("blogspace: PublishToken is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("blogspace: init store: %w", err)
	}
	a.Store = store

	analyticsStore, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
	if err != nil {
		return fmt.Errorf("blogspace: init analytics: %w", err)
	}
	a.Analytics = analyticsStore

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	// The weekly rollup runs in its own goroutine with its own failure
	// isolation; a fault there never affects request serving.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	a.aggregator = analytics.NewAggregator(analyticsStore, logger)
	a.aggregator.Start()

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Static passthrough
	e.GET("/favicon.ico", a.handleStatic("favicon.ico"))
	e.GET("/robots.txt", a.handleStatic("robots.txt"))
	e.GET("/sitemap.xml", a.handleStatic("sitemap.xml"))

	// Public routes
	e.GET("/", a.handleHome)
	e.GET("/blogSpace", a.handleSpace(TargetBlog))
	e.GET("/workSpace", a.handleSpace(TargetWork))
	e.GET("/noneSpace", a.handleNoneSpace)
	e.GET("/blog/:postId", a.handlePost)
	e.GET("/resume", a.handleResume)
	e.GET("/images/:filename", a.handleImage)
	e.GET("/feed.xml", a.handleFeed)

	// Gated routes
	e.GET("/publish", a.handlePublishForm)
	e.POST("/publish", a.handlePublish)
	e.POST("/upload", a.handleUpload)

	// Admin login
	e.GET("/admin", a.handleAdmin)
	e.POST("/admin", a.handleAdminLogin)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.aggregator != nil {
		a.aggregator.Stop()
	}
	if a.Store != nil {
		a.Store.Close()
	}
	if a.Analytics != nil {
		a.Analytics.Close()
	}
	return nil
}
