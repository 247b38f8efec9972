// Package folio serves a personal portfolio site: marketing pages, a public
// blog and photo gallery backed by a remote content API, and a session-gated
// admin panel for managing posts, tags and photos.
//
// Content lives in the remote API; folio renders it with templ components and
// keeps only the contact inbox locally in SQLite.
package folio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/folio/contentapi"
	"github.com/eringen/folio/views"
)

// ContentAPI is the subset of the content API client folio depends on.
// *contentapi.Client satisfies it.
type ContentAPI interface {
	ListPhotos(ctx context.Context) ([]contentapi.Photo, error)
	GetPhoto(ctx context.Context, id contentapi.ID) (contentapi.Photo, error)
	UploadPhoto(ctx context.Context, up contentapi.PhotoUpload) (contentapi.Photo, error)
	UpdatePhoto(ctx context.Context, id contentapi.ID, patch contentapi.PhotoPatch) (contentapi.Photo, error)
	DeletePhoto(ctx context.Context, id contentapi.ID) error

	ListPosts(ctx context.Context) ([]contentapi.BlogPost, error)
	GetPost(ctx context.Context, id contentapi.ID) (contentapi.BlogPost, error)
	CreatePost(ctx context.Context, in contentapi.PostInput) (contentapi.BlogPost, error)
	UpdatePost(ctx context.Context, id contentapi.ID, patch contentapi.PostPatch) (contentapi.BlogPost, error)
	DeletePost(ctx context.Context, id contentapi.ID) error
	AttachPhoto(ctx context.Context, postID, photoID contentapi.ID) error

	SearchTag(ctx context.Context, name string) (contentapi.Tag, bool, error)
	CreateTag(ctx context.Context, name string) (contentapi.Tag, error)
}

// ViewFuncs holds the templ components the handlers render. New fills any
// nil field from the views package, so callers may override only some pages.
type ViewFuncs struct {
	Home           func(p views.Page, posts []contentapi.BlogPost, photos []contentapi.Photo) templ.Component
	Blog           func(p views.Page, posts []contentapi.BlogPost, activeTag string, tags []string) templ.Component
	Post           func(p views.Page, post contentapi.BlogPost, related []contentapi.BlogPost) templ.Component
	Photos         func(p views.Page, photos []contentapi.Photo) templ.Component
	CV             func(p views.Page) templ.Component
	Contact        func(p views.Page, form views.ContactForm) templ.Component
	Login          func(p views.Page, email string, failed bool) templ.Component
	AdminDashboard func(p views.Page, stats views.AdminStats) templ.Component
	AdminBlog      func(p views.Page, posts []contentapi.BlogPost, message string) templ.Component
	AdminPostForm  func(p views.Page, form views.PostForm, photos []contentapi.Photo) templ.Component
	AdminPhotos    func(p views.Page, photos []contentapi.Photo, message string) templ.Component
	AdminPhotoForm func(p views.Page, form views.PhotoForm) templ.Component
	AdminMessages  func(p views.Page, messages []views.Message, message string) templ.Component
	NotFound       func(p views.Page) templ.Component
	ServerError    func(p views.Page) templ.Component
}

func (v *ViewFuncs) fillDefaults() {
	if v.Home == nil {
		v.Home = views.Home
	}
	if v.Blog == nil {
		v.Blog = views.Blog
	}
	if v.Post == nil {
		v.Post = views.Post
	}
	if v.Photos == nil {
		v.Photos = views.Photos
	}
	if v.CV == nil {
		v.CV = views.CV
	}
	if v.Contact == nil {
		v.Contact = views.Contact
	}
	if v.Login == nil {
		v.Login = views.Login
	}
	if v.AdminDashboard == nil {
		v.AdminDashboard = views.AdminDashboard
	}
	if v.AdminBlog == nil {
		v.AdminBlog = views.AdminBlog
	}
	if v.AdminPostForm == nil {
		v.AdminPostForm = views.AdminPostForm
	}
	if v.AdminPhotos == nil {
		v.AdminPhotos = views.AdminPhotos
	}
	if v.AdminPhotoForm == nil {
		v.AdminPhotoForm = views.AdminPhotoForm
	}
	if v.AdminMessages == nil {
		v.AdminMessages = views.AdminMessages
	}
	if v.NotFound == nil {
		v.NotFound = views.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = views.ServerError
	}
}

// App is the central folio application. It wires together the content API,
// cache, session manager, inbox store, handlers and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	API      ContentAPI
	Cache    *ContentCache
	Sessions *SessionManager
	Inbox    *Store
	Editor   *PostEditor
	Views    ViewFuncs

	loginLimiter   *Limiter
	contactLimiter *Limiter
	customRoutes   []func(*App)
	staticDir      string
}

// New creates a folio App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	a.Views.fillDefaults()

	return a
}

// Init validates the configuration and builds every collaborator that Start
// needs. It is separate from Start so tests can drive a.Echo directly.
func (a *App) Init() error {
	if a.Config.AdminEmail == "" {
		return fmt.Errorf("folio: AdminEmail is required")
	}
	if a.Config.AdminPasswordHash == "" && a.Config.AdminPassword == "" {
		return fmt.Errorf("folio: AdminPasswordHash or AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}

	a.Echo.Logger.SetLevel(parseLogLevel(a.Config.LogLevel))

	if a.API == nil {
		if a.Config.APIURL == "" {
			return fmt.Errorf("folio: APIURL is required")
		}
		client, err := contentapi.New(a.Config.APIURL)
		if err != nil {
			return fmt.Errorf("folio: init content api: %w", err)
		}
		a.API = client
	}

	if a.Inbox == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("folio: init store: %w", err)
		}
		a.Inbox = store
	}

	a.Cache = NewContentCache(a.API, a.Config.ContentCacheTTL)
	a.Editor = NewPostEditor(a.API, a.Echo.Logger)
	a.Sessions = NewSessionManager(a.Config)
	a.loginLimiter = NewLimiter(5, time.Minute)
	a.contactLimiter = NewLimiter(3, 10*time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves until SIGINT or SIGTERM, then shuts
// down gracefully.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Echo.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.Echo.Shutdown(shutdownCtx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded stylesheet and favicon; site-owned files live under /public.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/assets/*", echo.WrapHandler(http.StripPrefix("/assets/", http.FileServer(http.FS(embeddedFS)))))
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public pages
	e.GET("/", a.handleHome)
	e.GET("/blog", a.handleBlog)
	e.GET("/blog/:id", a.handlePost)
	e.GET("/photos", a.handlePhotos)
	e.GET("/cv", a.handleCV)
	e.GET("/contact", a.handleContact)
	e.POST("/contact", a.handleContactSubmit)
	e.GET("/404", a.handleNotFound)

	// Session
	e.GET("/login", a.handleLoginForm)
	e.POST("/login", a.handleLogin)
	e.POST("/logout", a.handleLogout)

	// Admin, behind the authorization gate
	admin := e.Group("/admin", a.RequireAdmin)
	admin.GET("", a.handleAdminDashboard)
	admin.GET("/blog", a.handleAdminBlog)
	admin.GET("/blog/new", a.handleAdminPostNew)
	admin.POST("/blog/new", a.handleAdminPostCreate)
	admin.GET("/blog/edit/:id", a.handleAdminPostEdit)
	admin.POST("/blog/edit/:id", a.handleAdminPostUpdate)
	admin.POST("/blog/:id/delete", a.handleAdminPostDelete)
	admin.GET("/photos", a.handleAdminPhotos)
	admin.GET("/photos/new", a.handleAdminPhotoNew)
	admin.POST("/photos/new", a.handleAdminPhotoCreate)
	admin.GET("/photos/edit/:id", a.handleAdminPhotoEdit)
	admin.POST("/photos/edit/:id", a.handleAdminPhotoUpdate)
	admin.POST("/photos/:id/delete", a.handleAdminPhotoDelete)
	admin.GET("/messages", a.handleAdminMessages)
	admin.POST("/messages/:id/delete", a.handleAdminMessageDelete)
	admin.Any("/*", a.handleNotFound)

	e.RouteNotFound("/*", a.handleNotFound)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.contactLimiter != nil {
		a.contactLimiter.Stop()
	}
	if a.Inbox != nil {
		return a.Inbox.Close()
	}
	return nil
}

func parseLogLevel(s string) log.Lvl {
	switch s {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
