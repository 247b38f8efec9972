package folio

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// contentSecurityPolicy allows no inline script. Uploaded photos may be
// served from the content API's host, hence https: for images.
const contentSecurityPolicy = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' https: data:; font-src 'self'; connect-src 'self'; form-action 'self'; frame-ancestors 'none'"

// Request body caps. They run before the session and CSRF middleware, which
// parse the form, so an upload larger than uploadBodyLimit is never read in
// full, whoever sends it.
const (
	formBodyLimit   = "1M"
	uploadBodyLimit = "12M"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())
	e.Pre(middleware.RemoveTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
	}))

	e.Use(requestLogger())
	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:   5,
		Skipper: isAssetPath,
	}))

	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: formBodyLimit,
		Skipper: func(c echo.Context) bool {
			return isPhotoUpload(c.Request())
		},
	}))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: uploadBodyLimit,
		Skipper: func(c echo.Context) bool {
			return !isPhotoUpload(c.Request())
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: contentSecurityPolicy,
		HSTSMaxAge:            31536000,
	}))

	e.Use(session.Middleware(a.Sessions.Store()))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		Skipper:        isAssetPath,
		ErrorHandler: func(err error, c echo.Context) error {
			c.Logger().Warnf("csrf: %s %s from %s: %v", c.Request().Method, c.Request().URL.Path, c.RealIP(), err)
			return c.String(http.StatusForbidden, "Solicitud no válida. Recarga la página e inténtalo de nuevo.")
		},
	}))

	e.Use(cacheControlMiddleware)
}

// requestLogger logs one line per request through the echo logger, at a
// level that follows the response status. Static assets are not logged.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper:     isAssetPath,
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			switch {
			case v.Status >= 500:
				c.Logger().Errorf("%s %s -> %d (%s) %s", v.Method, v.URI, v.Status, v.Latency, v.RemoteIP)
			case v.Status >= 400:
				c.Logger().Warnf("%s %s -> %d (%s) %s", v.Method, v.URI, v.Status, v.Latency, v.RemoteIP)
			default:
				c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			}
			return nil
		},
	})
}

func isAssetPath(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/public/") || strings.HasPrefix(p, "/assets/")
}

func isPhotoUpload(r *http.Request) bool {
	return r.Method == http.MethodPost && r.URL.Path == "/admin/photos/new"
}

// cachePolicy is the Cache-Control value for a request path.
func cachePolicy(path string) string {
	switch {
	case strings.HasPrefix(path, "/public/"), strings.HasPrefix(path, "/assets/"):
		return "public, max-age=31536000, immutable"
	case path == "/sitemap.xml", path == "/feed.xml", path == "/robots.txt":
		return "public, max-age=3600"
	case path == "/admin", strings.HasPrefix(path, "/admin/"), path == "/login", path == "/contact":
		return "no-store"
	default:
		// Public pages render the admin link for signed-in visitors.
		return "private, no-cache"
	}
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", cachePolicy(c.Request().URL.Path))
		return next(c)
	}
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
