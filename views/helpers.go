package views

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/folio/contentapi"
	"github.com/eringen/folio/markdown"
)

const excerptLength = 180

// BuildURL joins path segments onto a base URL. The site root keeps its
// trailing slash; other paths do not get one.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if u.Path == "" || u.Path == "." {
		u.Path = "/"
	}
	return u.String()
}

// PostPath is the public path of a post.
func PostPath(p contentapi.BlogPost) string {
	return "/blog/" + url.PathEscape(p.ID.String())
}

// RelatedPosts returns up to limit posts that share at least one tag with
// current, in the order given.
func RelatedPosts(current contentapi.BlogPost, posts []contentapi.BlogPost, limit int) []contentapi.BlogPost {
	tagSet := make(map[string]struct{})
	for _, name := range current.TagNames() {
		if tag := strings.ToLower(strings.TrimSpace(name)); tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []contentapi.BlogPost
	for _, p := range posts {
		if p.ID == current.ID {
			continue
		}
		for _, name := range p.TagNames() {
			if _, ok := tagSet[strings.ToLower(strings.TrimSpace(name))]; ok {
				related = append(related, p)
				break
			}
		}
		if limit > 0 && len(related) == limit {
			break
		}
	}
	return related
}

// Excerpt is the plain-text summary of a post shown in listings and feeds.
func Excerpt(p contentapi.BlogPost) string {
	return markdown.Excerpt(p.Content, excerptLength)
}

// StatusLabel is the admin-facing label of a post status.
func StatusLabel(s contentapi.Status) string {
	switch s {
	case contentapi.StatusPublished:
		return "Publicado"
	case contentapi.StatusArchived:
		return "Archivado"
	default:
		return "Borrador"
	}
}

var months = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// FormatDate renders t as "2 de marzo de 2024". Zero times render empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.UTC()
	return fmt.Sprintf("%d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(cfg SiteConfig, post contentapi.BlogPost) string {
	postURL := BuildURL(cfg.URL, PostPath(post))
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   Excerpt(post),
		"datePublished": post.CreatedAt.UTC().Format(time.RFC3339),
		"url":           postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if !post.UpdatedAt.IsZero() {
		data["dateModified"] = post.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if post.Photo != nil && post.Photo.URL != "" {
		data["image"] = post.Photo.URL
	}
	if names := post.TagNames(); len(names) > 0 {
		data["keywords"] = strings.Join(names, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
