package views

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/folio/contentapi"
)

var testSite = SiteConfig{Name: "Estudio", URL: "https://example.com", Description: "Fotografía y notas", Author: "Ana"}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return b.String()
}

func samplePost() contentapi.BlogPost {
	return contentapi.BlogPost{
		ID:        "7",
		Title:     "Luz de invierno",
		Content:   "Primer **párrafo**.\n\nSegundo.",
		Status:    contentapi.StatusPublished,
		CreatedAt: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
		Tags:      []contentapi.Tag{{ID: "1", Name: "Retrato"}},
		Photo:     &contentapi.Photo{ID: "3", Title: "Portada", URL: "https://cdn.example.com/3.jpg"},
	}
}

func TestEveryPageRenders(t *testing.T) {
	p := Page{Site: testSite, Path: "/", CSRF: "tok"}
	admin := p
	admin.IsAdmin = true
	post := samplePost()
	photos := []contentapi.Photo{{ID: "3", Title: "Portada", URL: "/img/3.jpg", Visible: true}}

	pages := map[string]templ.Component{
		"home":             Home(p, []contentapi.BlogPost{post}, photos),
		"blog":             Blog(p, []contentapi.BlogPost{post}, "retrato", []string{"retrato"}),
		"post":             Post(p, post, nil),
		"photos":           Photos(p, photos),
		"cv":               CV(p),
		"contact":          Contact(p, ContactForm{}),
		"login":            Login(p, "", false),
		"admin_dashboard":  AdminDashboard(admin, AdminStats{Posts: 3, Published: 1}),
		"admin_blog":       AdminBlog(admin, []contentapi.BlogPost{post}, "Entrada guardada."),
		"admin_post_form":  AdminPostForm(admin, PostForm{IsNew: true}, photos),
		"admin_photos":     AdminPhotos(admin, photos, ""),
		"admin_photo_form": AdminPhotoForm(admin, PhotoForm{IsNew: true}),
		"admin_messages":   AdminMessages(admin, []Message{{ID: "m1", Name: "Ana", Subject: "Hola", CreatedAt: time.Now()}}, ""),
		"not_found":        NotFound(p),
		"server_error":     ServerError(p),
	}
	for name, c := range pages {
		out := renderString(t, c)
		if !strings.HasPrefix(out, "<!doctype html>") {
			t.Errorf("%s: missing layout", name)
		}
		if !strings.Contains(out, "</html>") {
			t.Errorf("%s: truncated output", name)
		}
	}
}

func TestPostPageContent(t *testing.T) {
	out := renderString(t, Post(Page{Site: testSite, Path: "/blog/7"}, samplePost(), nil))
	for _, want := range []string{
		"<title>Luz de invierno · Estudio</title>",
		"<strong>párrafo</strong>",
		"2 de marzo de 2024",
		`href="/blog?tag=retrato"`,
		`<meta property="og:type" content="article">`,
		`<meta property="og:image" content="https://cdn.example.com/3.jpg">`,
		`"@type":"BlogPosting"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("post page missing %q", want)
		}
	}
	if strings.Contains(out, `"@type":"WebSite"`) {
		t.Error("post page should replace the site JSON-LD")
	}
}

func TestTemplatesEscapeContent(t *testing.T) {
	post := samplePost()
	post.Title = `<script>alert(1)</script>`
	post.Content = `<img src=x onerror=alert(1)>`
	out := renderString(t, Post(Page{Site: testSite}, post, nil))
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Error("title not escaped")
	}
	if strings.Contains(out, "<img src=x onerror") {
		t.Error("raw HTML in markdown passed through")
	}

	form := ContactForm{Name: `"><b>x</b>`, Errors: map[string]string{"name": "Indica tu nombre."}}
	out = renderString(t, Contact(Page{Site: testSite}, form))
	if strings.Contains(out, `"><b>x</b>`) {
		t.Error("form value not escaped")
	}
	if !strings.Contains(out, "Indica tu nombre.") {
		t.Error("field error not shown")
	}
}

func TestLayoutShowsAdminControlsOnlyForAdmins(t *testing.T) {
	p := Page{Site: testSite, Path: "/", CSRF: "tok123"}
	out := renderString(t, Home(p, nil, nil))
	if strings.Contains(out, `action="/logout"`) {
		t.Error("logout shown to visitor")
	}

	p.IsAdmin = true
	out = renderString(t, Home(p, nil, nil))
	if !strings.Contains(out, `action="/logout"`) || !strings.Contains(out, `value="tok123"`) {
		t.Error("admin controls or CSRF token missing")
	}
}

func TestPostFormSelectsPhotoAndStatus(t *testing.T) {
	photos := []contentapi.Photo{{ID: "3", Title: "Portada", URL: "/img/3.jpg"}, {ID: "4", Title: "Otra", URL: "/img/4.jpg"}}
	out := renderString(t, AdminPostForm(Page{Site: testSite, IsAdmin: true}, PostForm{ID: "7", Title: "T", Status: "archived", PhotoID: "4"}, photos))
	if !strings.Contains(out, `value="4" checked`) {
		t.Error("selected photo not checked")
	}
	if strings.Contains(out, `value="3" checked`) {
		t.Error("wrong photo checked")
	}
	if !strings.Contains(out, `value="archived" selected`) {
		t.Error("status not selected")
	}
}

func TestNavActive(t *testing.T) {
	tests := []struct {
		current, prefix string
		want            bool
	}{
		{"/", "/", true},
		{"/blog", "/", false},
		{"/blog", "/blog", true},
		{"/blog/7", "/blog", true},
		{"/blogroll", "/blog", false},
		{"/admin/blog", "/admin", true},
	}
	for _, tt := range tests {
		if got := navActive(tt.current, tt.prefix); got != tt.want {
			t.Errorf("navActive(%q, %q) = %v, want %v", tt.current, tt.prefix, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base  string
		parts []string
		want  string
	}{
		{"https://example.com", nil, "https://example.com/"},
		{"https://example.com/", []string{"/blog/7"}, "https://example.com/blog/7"},
		{"https://example.com/site", []string{"feed.xml"}, "https://example.com/site/feed.xml"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.parts...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.parts, got, tt.want)
		}
	}
}

func TestRelatedPosts(t *testing.T) {
	tag := func(n string) []contentapi.Tag { return []contentapi.Tag{{Name: n}} }
	current := contentapi.BlogPost{ID: "1", Tags: tag("Retrato")}
	posts := []contentapi.BlogPost{
		current,
		{ID: "2", Tags: tag("paisaje")},
		{ID: "3", Tags: tag("retrato")},
		{ID: "4", Tags: tag("RETRATO")},
		{ID: "5", Tags: tag("retrato")},
	}
	got := RelatedPosts(current, posts, 2)
	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "4" {
		t.Errorf("got %+v", got)
	}
	if got := RelatedPosts(contentapi.BlogPost{ID: "9"}, posts, 3); len(got) != 0 {
		t.Errorf("untagged post has related %+v", got)
	}
}

func TestFormatDateAndStatus(t *testing.T) {
	if got := FormatDate(time.Date(2024, 12, 25, 23, 0, 0, 0, time.UTC)); got != "25 de diciembre de 2024" {
		t.Errorf("FormatDate = %q", got)
	}
	if FormatDate(time.Time{}) != "" {
		t.Error("zero time should render empty")
	}
	if StatusLabel(contentapi.StatusPublished) != "Publicado" || StatusLabel("") != "Borrador" {
		t.Error("status labels")
	}
}

func TestJsonLDIsValidJSON(t *testing.T) {
	post := samplePost()
	post.Title = `Comillas "y" </script>`
	for _, ld := range []string{WebsiteJsonLD(testSite), BlogPostingJsonLD(testSite, post)} {
		var v map[string]any
		if err := json.Unmarshal([]byte(ld), &v); err != nil {
			t.Fatalf("invalid JSON-LD %s: %v", ld, err)
		}
		if strings.Contains(ld, "</script>") {
			t.Error("JSON-LD can close the script element")
		}
	}
}
