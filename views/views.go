// Package views renders folio's pages. Each page is an html/template file
// under templates/ executed inside the shared layout and exposed as a
// templ.Component, so handlers render every page the same way.
package views

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/folio/contentapi"
	"github.com/eringen/folio/markdown"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"markdown":   renderMarkdown,
	"excerpt":    Excerpt,
	"date":       FormatDate,
	"isoDate":    func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"status":     StatusLabel,
	"postPath":   PostPath,
	"statuses":   func() []contentapi.Status { return contentapi.Statuses },
	"tagURL":     func(tag string) string { return "/blog?tag=" + url.QueryEscape(strings.ToLower(tag)) },
	"eqFold":     strings.EqualFold,
	"siteLD":     func(cfg SiteConfig) template.JS { return template.JS(WebsiteJsonLD(cfg)) },
	"postLD":     func(cfg SiteConfig, p contentapi.BlogPost) template.JS { return template.JS(BlogPostingJsonLD(cfg, p)) },
	"navActive":  navActive,
	"isSelected": func(a contentapi.ID, b string) bool { return a.String() == b },
}

var pages = mustParsePages()

// renderMarkdown embeds the markdown component in a page template.
func renderMarkdown(src string) (template.HTML, error) {
	return templ.ToGoHTML(context.Background(), markdown.Component(src))
}

func mustParsePages() map[string]*template.Template {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		base := strings.TrimSuffix(path.Base(name), ".html")
		if base == "layout" {
			continue
		}
		out[base] = template.Must(template.New(base).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", name))
	}
	return out
}

// navActive reports whether the nav link for prefix should be highlighted
// on current.
func navActive(current, prefix string) bool {
	if prefix == "/" {
		return current == "/"
	}
	return current == prefix || strings.HasPrefix(current, prefix+"/")
}

// render executes page inside the layout. Output is buffered so a template
// error never leaves a half-written page on the wire.
func render(page string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[page]
		if !ok {
			return fmt.Errorf("views: unknown page %q", page)
		}
		var buf bytes.Buffer
		if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
			return fmt.Errorf("views: render %s: %w", page, err)
		}
		_, err := buf.WriteTo(w)
		return err
	})
}

func titled(p Page, title, description string) Page {
	if p.Meta.Title == "" {
		p.Meta.Title = title
	}
	if p.Meta.Description == "" {
		p.Meta.Description = description
	}
	if p.Meta.Description == "" {
		p.Meta.Description = p.Site.Description
	}
	if p.Meta.URL == "" {
		p.Meta.URL = BuildURL(p.Site.URL, p.Path)
	}
	if p.Meta.OGType == "" {
		p.Meta.OGType = "website"
	}
	return p
}

// Home renders the landing page with the latest posts and photos.
func Home(p Page, posts []contentapi.BlogPost, photos []contentapi.Photo) templ.Component {
	return render("home", struct {
		Page
		Posts  []contentapi.BlogPost
		Photos []contentapi.Photo
	}{titled(p, p.Site.Name, ""), posts, photos})
}

// Blog renders the public post listing, optionally filtered by activeTag.
func Blog(p Page, posts []contentapi.BlogPost, activeTag string, tags []string) templ.Component {
	title := "Blog"
	if activeTag != "" {
		title = "Blog: " + activeTag
	}
	return render("blog", struct {
		Page
		Posts     []contentapi.BlogPost
		ActiveTag string
		Tags      []string
	}{titled(p, title, ""), posts, activeTag, tags})
}

// Post renders a single published post.
func Post(p Page, post contentapi.BlogPost, related []contentapi.BlogPost) templ.Component {
	p = titled(p, post.Title, Excerpt(post))
	p.Meta.OGType = "article"
	if post.Photo != nil && post.Photo.URL != "" && p.Meta.Image == "" {
		p.Meta.Image = post.Photo.URL
	}
	return render("post", struct {
		Page
		Post    contentapi.BlogPost
		Related []contentapi.BlogPost
	}{p, post, related})
}

// Photos renders the public gallery.
func Photos(p Page, photos []contentapi.Photo) templ.Component {
	return render("photos", struct {
		Page
		Photos []contentapi.Photo
	}{titled(p, "Fotografías", ""), photos})
}

// CV renders the static curriculum page.
func CV(p Page) templ.Component {
	return render("cv", struct{ Page }{titled(p, "Currículum", "")})
}

// Contact renders the contact page and form.
func Contact(p Page, form ContactForm) templ.Component {
	return render("contact", struct {
		Page
		Form ContactForm
	}{titled(p, "Contacto", ""), form})
}

// Login renders the admin login form. failed shows the invalid credentials
// notice.
func Login(p Page, email string, failed bool) templ.Component {
	return render("login", struct {
		Page
		Email  string
		Failed bool
	}{titled(p, "Acceder", ""), email, failed})
}

// AdminDashboard renders the admin landing page.
func AdminDashboard(p Page, stats AdminStats) templ.Component {
	return render("admin_dashboard", struct {
		Page
		Stats AdminStats
	}{titled(p, "Administración", ""), stats})
}

// AdminBlog lists every post regardless of status.
func AdminBlog(p Page, posts []contentapi.BlogPost, message string) templ.Component {
	return render("admin_blog", struct {
		Page
		Posts   []contentapi.BlogPost
		Message string
	}{titled(p, "Entradas", ""), posts, message})
}

// AdminPostForm renders the post editor with a photo picker.
func AdminPostForm(p Page, form PostForm, photos []contentapi.Photo) templ.Component {
	title := "Editar entrada"
	if form.IsNew {
		title = "Nueva entrada"
	}
	return render("admin_post_form", struct {
		Page
		Form   PostForm
		Photos []contentapi.Photo
	}{titled(p, title, ""), form, photos})
}

// AdminPhotos lists every photo regardless of visibility.
func AdminPhotos(p Page, photos []contentapi.Photo, message string) templ.Component {
	return render("admin_photos", struct {
		Page
		Photos  []contentapi.Photo
		Message string
	}{titled(p, "Fotos", ""), photos, message})
}

// AdminPhotoForm renders the upload form (new) or the metadata editor.
func AdminPhotoForm(p Page, form PhotoForm) templ.Component {
	title := "Editar foto"
	if form.IsNew {
		title = "Subir foto"
	}
	return render("admin_photo_form", struct {
		Page
		Form PhotoForm
	}{titled(p, title, ""), form})
}

// AdminMessages lists the contact inbox.
func AdminMessages(p Page, messages []Message, message string) templ.Component {
	return render("admin_messages", struct {
		Page
		Messages []Message
		Message  string
	}{titled(p, "Mensajes", ""), messages, message})
}

// NotFound renders the 404 page.
func NotFound(p Page) templ.Component {
	return render("not_found", struct{ Page }{titled(p, "Página no encontrada", "")})
}

// ServerError renders the 500 page.
func ServerError(p Page) templ.Component {
	return render("server_error", struct{ Page }{titled(p, "Error del servidor", "")})
}
