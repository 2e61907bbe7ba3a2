// Package folio is the backend for a personal/portfolio website: a SQLite
// content store, public read and aggregation endpoints, syndication feed and
// sitemap synthesis, and a session-gated admin surface for authoring.
//
// Page rendering is not this package's business — it serves JSON and XML and
// leaves the pixels to whatever frontend sits in front of it.
package folio

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// App wires together the store, cache, session layer, and routes.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *ContentCache

	sessions     SessionResolver
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	mediaDir     string
	clock        func() time.Time
}

// New creates a folio App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:   cfg,
		Echo:     echo.New(),
		sessions: cookieSessionResolver{},
		mediaDir: "public/uploads",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, cache, middleware, and routes, then starts
// the server. It blocks until the server stops.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) init() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("folio: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewContentCache(store, a.Config.CacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Public content surface. Reads and aggregation bypass the guard; only
	// mutating/administrative routes carry it.
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap", a.handleSitemap)
	e.GET("/blog/feed.xml", a.handleFeed)
	e.GET("/blogs", a.handleListBlogs)
	e.GET("/blogs/categories", a.handleCategories)
	e.GET("/blogs/tags", a.handleTags)
	e.GET("/blogs/:key", a.handleGetBlog)
	e.POST("/blogs/:key/view", a.handleIncrementView)

	// Session endpoints.
	e.POST("/admin/login", a.handleLogin)
	e.POST("/admin/logout", handleLogout)

	// Authoring surface, admin role required.
	guard := a.requireRole(RoleAdmin)
	e.POST("/blogs", a.handleCreateBlog, guard)
	e.PUT("/blogs/:id", a.handleUpdateBlog, guard)
	e.DELETE("/blogs/:id", a.handleDeleteBlog, guard)

	admin := e.Group("/admin", guard)
	admin.GET("/blogs", a.handleAdminListBlogs)
	admin.GET("/media", a.handleListMedia)
	admin.DELETE("/media/:filename", a.handleDeleteMedia)
}

// now is indirected so tests can pin the sitemap synthesis time.
func (a *App) now() time.Time {
	if a.clock != nil {
		return a.clock()
	}
	return time.Now()
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
