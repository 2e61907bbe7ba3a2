package folio

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a folio site. Values come from an
// optional YAML file, then environment variables, then defaults.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Folio")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for the feed
	Author      string `yaml:"author"`      // Default post author

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/folio.db")

	AdminPassword string `yaml:"-"` // Required: admin login password (env only)
	SessionSecret string `yaml:"-"` // Required: session encryption secret (env only)
	CookieSecure  bool   `yaml:"cookie_secure"`

	CacheTTL time.Duration `yaml:"cache_ttl"` // Published-content cache TTL (default 5min)

	// StaticRoutes is the fixed, compile-time-known part of the sitemap.
	StaticRoutes []StaticRoute `yaml:"static_routes"`

	// Services are the site's offering records; each contributes a sitemap
	// entry under /services/ using a slug derived from its title.
	Services []Service `yaml:"services"`
}

// StaticRoute is a hand-configured sitemap entry for a static page.
type StaticRoute struct {
	Path       string  `yaml:"path"`
	ChangeFreq string  `yaml:"changefreq"`
	Priority   float64 `yaml:"priority"`
}

// Service is an offering shown on the site; only its title matters here.
type Service struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// LoadConfig reads the YAML file at path (skipped when path is empty or the
// file does not exist), applies environment overrides, and fills defaults.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return SiteConfig{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return SiteConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() {
	if v := os.Getenv("SITE_NAME"); v != "" {
		c.Name = v
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		c.URL = strings.TrimSuffix(v, "/")
	}
	if v := os.Getenv("SITE_DESCRIPTION"); v != "" {
		c.Description = v
	}
	if v := os.Getenv("SITE_AUTHOR"); v != "" {
		c.Author = v
	}
	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		c.AdminPassword = v
	}
	if v := os.Getenv("ADMIN_SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true") {
		c.CookieSecure = true
	}
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Folio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if len(c.StaticRoutes) == 0 {
		c.StaticRoutes = DefaultStaticRoutes()
	}
}

// DefaultStaticRoutes returns the sitemap entries for the site's fixed pages.
func DefaultStaticRoutes() []StaticRoute {
	return []StaticRoute{
		{Path: "/", ChangeFreq: "weekly", Priority: 1.0},
		{Path: "/about", ChangeFreq: "monthly", Priority: 0.7},
		{Path: "/services", ChangeFreq: "monthly", Priority: 0.8},
		{Path: "/portfolio", ChangeFreq: "weekly", Priority: 0.8},
		{Path: "/blogs", ChangeFreq: "daily", Priority: 0.9},
		{Path: "/contact", ChangeFreq: "yearly", Priority: 0.5},
	}
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

// WithSessionResolver replaces the cookie-session principal resolver.
func WithSessionResolver(r SessionResolver) Option {
	return func(a *App) {
		a.sessions = r
	}
}

// WithMediaDir sets the directory uploaded media files live in (default
// "public/uploads").
func WithMediaDir(dir string) Option {
	return func(a *App) {
		a.mediaDir = dir
	}
}
