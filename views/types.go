package views

import "time"

// SiteConfig holds site-wide settings populated from environment variables.
// Every handler passes this to templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME  (default "Portfolio")
	URL         string // SITE_URL   (default "http://localhost:3000")
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, absolute
}

// Page is the per-request context every view receives.
type Page struct {
	Site    SiteConfig
	Meta    PageMeta
	Path    string // request path, used to highlight the active nav item
	IsAdmin bool   // session may administer; shows the admin link and logout
	CSRF    string
}

// ContactForm is the contact page form state. Errors maps field names to
// messages shown next to the field.
type ContactForm struct {
	Name    string
	Email   string
	Subject string
	Message string
	Errors  map[string]string
	Sent    bool
}

// AdminStats are the counters on the admin dashboard.
type AdminStats struct {
	Posts         int
	Published     int
	Drafts        int
	Archived      int
	Photos        int
	VisiblePhotos int
	Messages      int
}

// PostForm is the blog post editor form. Fields hold the raw submitted
// strings so a rejected form re-renders exactly as typed.
type PostForm struct {
	ID      string
	Title   string
	Content string
	Status  string
	Date    string // YYYY-MM-DD
	Tags    string // comma separated
	PhotoID string
	Error   string
	IsNew   bool
}

// PhotoForm is the photo editor form.
type PhotoForm struct {
	ID          string
	Title       string
	Description string
	URL         string
	Visible     bool
	Error       string
	IsNew       bool
}

// Message is a contact form submission stored in the local inbox.
type Message struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Body      string
	CreatedAt time.Time
}
