package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/folio"
)

// configFromEnv builds the site configuration from environment lookups.
// getenv is os.Getenv outside tests.
func configFromEnv(getenv func(string) string) (folio.SiteConfig, error) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := folio.SiteConfig{
		Name:              get("SITE_NAME"),
		URL:               get("SITE_URL"),
		Description:       get("SITE_DESCRIPTION"),
		Author:            get("SITE_AUTHOR"),
		Addr:              get("ADDR"),
		APIURL:            get("API_URL"),
		DatabasePath:      get("DATABASE_PATH"),
		AdminEmail:        get("ADMIN_EMAIL"),
		AdminPasswordHash: get("ADMIN_PASSWORD_HASH"),
		AdminPassword:     getenv("ADMIN_PASSWORD"),
		SessionSecret:     get("ADMIN_SESSION_SECRET"),
		LogLevel:          strings.ToLower(get("LOG_LEVEL")),
	}

	var missing []string
	for key, v := range map[string]string{
		"API_URL":              cfg.APIURL,
		"ADMIN_EMAIL":          cfg.AdminEmail,
		"ADMIN_SESSION_SECRET": cfg.SessionSecret,
	} {
		if v == "" {
			missing = append(missing, key)
		}
	}
	if cfg.AdminPasswordHash == "" && cfg.AdminPassword == "" {
		missing = append(missing, "ADMIN_PASSWORD_HASH or ADMIN_PASSWORD")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return folio.SiteConfig{}, fmt.Errorf("missing required environment: %s", strings.Join(missing, ", "))
	}

	if v := get("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return folio.SiteConfig{}, fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = b
	}
	if v := get("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return folio.SiteConfig{}, fmt.Errorf("CACHE_TTL: invalid duration %q", v)
		}
		cfg.ContentCacheTTL = d
	}
	return cfg, nil
}
