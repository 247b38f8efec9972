package folio

import (
	"errors"
	"net/http"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/contentapi"
	"github.com/eringen/folio/views"
)

const (
	homePosts    = 2
	homePhotos   = 3
	relatedPosts = 3
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Cache.PublishedPosts(ctx, "")
	if err != nil {
		c.Logger().Errorf("home: load posts: %v", err)
		posts = nil
	}
	photos, err := a.Cache.VisiblePhotos(ctx)
	if err != nil {
		c.Logger().Errorf("home: load photos: %v", err)
		photos = nil
	}
	if len(posts) > homePosts {
		posts = posts[:homePosts]
	}
	if len(photos) > homePhotos {
		photos = photos[:homePhotos]
	}
	return Render(c, a.Views.Home(a.page(c), posts, photos))
}

func (a *App) handleBlog(c echo.Context) error {
	ctx := c.Request().Context()
	tag := strings.TrimSpace(c.QueryParam("tag"))
	posts, err := a.Cache.PublishedPosts(ctx, tag)
	if err != nil {
		c.Logger().Errorf("blog: load posts: %v", err)
		posts = nil
	}
	tags, err := a.Cache.Tags(ctx)
	if err != nil {
		c.Logger().Errorf("blog: load tags: %v", err)
		tags = nil
	}
	return Render(c, a.Views.Blog(a.page(c), posts, tag, tags))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	id := paramID(c)
	if id == "" {
		return a.handleNotFound(c)
	}
	post, err := a.API.GetPost(ctx, id)
	if err != nil {
		if contentapi.IsNotFound(err) {
			return a.handleNotFound(c)
		}
		return err
	}
	if !post.Published() {
		return a.handleNotFound(c)
	}
	var related []contentapi.BlogPost
	if all, err := a.Cache.PublishedPosts(ctx, ""); err != nil {
		c.Logger().Errorf("post %s: load related: %v", id, err)
	} else {
		related = views.RelatedPosts(post, all, relatedPosts)
	}
	return Render(c, a.Views.Post(a.page(c), post, related))
}

func (a *App) handlePhotos(c echo.Context) error {
	photos, err := a.Cache.VisiblePhotos(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("photos: load: %v", err)
		photos = nil
	}
	return Render(c, a.Views.Photos(a.page(c), photos))
}

func (a *App) handleCV(c echo.Context) error {
	return Render(c, a.Views.CV(a.page(c)))
}

func (a *App) handleContact(c echo.Context) error {
	form := views.ContactForm{Sent: c.QueryParam("sent") == "1"}
	return Render(c, a.Views.Contact(a.page(c), form))
}

func (a *App) handleContactSubmit(c echo.Context) error {
	form := views.ContactForm{
		Name:    strings.TrimSpace(c.FormValue("name")),
		Email:   strings.TrimSpace(c.FormValue("email")),
		Subject: strings.TrimSpace(c.FormValue("subject")),
		Message: strings.TrimSpace(c.FormValue("message")),
	}
	if errs := validateContact(form); len(errs) > 0 {
		form.Errors = errs
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.Contact(a.page(c), form))
	}
	if !a.contactLimiter.Allow(c.RealIP()) {
		form.Errors = map[string]string{"form": "Has enviado demasiados mensajes. Inténtalo de nuevo más tarde."}
		return RenderStatus(c, http.StatusTooManyRequests, a.Views.Contact(a.page(c), form))
	}
	if _, err := a.Inbox.SaveMessage(c.Request().Context(), Message{
		Name:    form.Name,
		Email:   form.Email,
		Subject: form.Subject,
		Body:    form.Message,
	}); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/contact?sent=1")
}

// validateContact returns field errors for a contact submission, keyed by
// form field name.
func validateContact(f views.ContactForm) map[string]string {
	errs := make(map[string]string)
	switch {
	case f.Name == "":
		errs["name"] = "Indica tu nombre."
	case utf8.RuneCountInString(f.Name) > 100:
		errs["name"] = "El nombre es demasiado largo."
	}
	if f.Email == "" {
		errs["email"] = "Indica tu correo electrónico."
	} else if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email || len(f.Email) > 200 {
		errs["email"] = "El correo electrónico no es válido."
	}
	switch {
	case f.Subject == "":
		errs["subject"] = "Indica un asunto."
	case utf8.RuneCountInString(f.Subject) > 200:
		errs["subject"] = "El asunto es demasiado largo."
	}
	switch {
	case f.Message == "":
		errs["message"] = "Escribe un mensaje."
	case utf8.RuneCountInString(f.Message) > 5000:
		errs["message"] = "El mensaje es demasiado largo."
	}
	return errs
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.PublishedPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.PublishedPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

// handleRobots serves robots.txt from the static dir when the site ships
// one, and a default that hides the admin area otherwise.
func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.staticDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	body := "User-agent: *\nDisallow: /admin\nDisallow: /login\n\nSitemap: " + views.BuildURL(a.Config.URL, "sitemap.xml") + "\n"
	return c.String(http.StatusOK, body)
}

func (a *App) handleNotFound(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c)))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	isHTTP := errors.As(err, &he)
	if (isHTTP && he.Code == http.StatusNotFound) || contentapi.IsNotFound(err) {
		_ = a.handleNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if isHTTP {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.page(c)))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
