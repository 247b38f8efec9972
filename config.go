package folio

import (
	"strings"
	"time"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string // Site name (default "Portfolio")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name shown in the header and JSON-LD

	Addr         string // Listen address (default ":3000")
	APIURL       string // Required: base URL of the content API
	DatabasePath string // SQLite path for the contact inbox (default "data/folio.db")

	AdminEmail        string // Required: admin login email
	AdminPasswordHash string // bcrypt hash of the admin password
	AdminPassword     string // Plain admin password, used only when no hash is set
	SessionSecret     string // Required: session encryption secret
	CookieSecure      bool   // Set true for HTTPS

	ContentCacheTTL time.Duration // Public list cache TTL (default 5min)
	LogLevel        string        // debug, info, warn or error (default "info")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if c.ContentCacheTTL == 0 {
		c.ContentCacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
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

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithContentAPI replaces the content API client built from APIURL.
func WithContentAPI(api ContentAPI) Option {
	return func(a *App) {
		a.API = api
	}
}

// WithViews overrides the default templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
