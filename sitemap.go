package folio

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/contentapi"
	"github.com/eringen/folio/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// staticPages are the public pages listed in the sitemap besides posts.
var staticPages = []string{"/", "/blog", "/photos", "/cv", "/contact"}

func (a *App) renderSitemap(c echo.Context, posts []contentapi.BlogPost) error {
	base := a.Config.URL
	urls := make([]sitemapURL, 0, len(staticPages)+len(posts))
	for _, p := range staticPages {
		urls = append(urls, sitemapURL{Loc: views.BuildURL(base, p)})
	}
	for _, p := range posts {
		mod := p.UpdatedAt
		if mod.IsZero() {
			mod = p.CreatedAt
		}
		u := sitemapURL{Loc: views.BuildURL(base, views.PostPath(p))}
		if !mod.IsZero() {
			u.LastMod = mod.UTC().Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
