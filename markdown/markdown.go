// Package markdown renders the Markdown subset used in blog post content
// to HTML, and derives plain-text excerpts for listings and feeds.
package markdown

import (
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
)

var (
	reHeading     = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*$`)
	reOrdered     = regexp.MustCompile(`^\d+[.)]\s+`)
	reImage       = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)\)`)
	reLink        = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	reBold        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnder   = regexp.MustCompile(`\b__(.+?)__\b`)
	reItalic      = regexp.MustCompile(`\*([^*\s][^*]*?)\*`)
	reItalicUnder = regexp.MustCompile(`\b_([^_]+)_\b`)
)

// Component returns a templ.Component that writes src as HTML.
func Component(src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, HTML(src))
		return err
	})
}

type renderer struct {
	out   strings.Builder
	para  []string
	quote []string
	list  string

	inCode bool
	lang   string
	code   []string
}

// HTML converts src to HTML. Raw HTML in src is escaped.
func HTML(src string) string {
	var r renderer
	for _, line := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n") {
		r.line(line)
	}
	if r.inCode {
		r.closeCode()
	}
	r.flush()
	return r.out.String()
}

func (r *renderer) line(line string) {
	trimmed := strings.TrimSpace(line)
	if r.inCode {
		if strings.HasPrefix(trimmed, "```") {
			r.closeCode()
			return
		}
		r.code = append(r.code, line)
		return
	}

	switch {
	case strings.HasPrefix(trimmed, "```"):
		r.flush()
		r.inCode = true
		r.lang = strings.TrimSpace(trimmed[3:])
	case trimmed == "":
		r.flush()
	case trimmed == "---" || trimmed == "***":
		r.flush()
		r.out.WriteString("<hr>")
	case reHeading.MatchString(trimmed):
		r.flush()
		m := reHeading.FindStringSubmatch(trimmed)
		level := string(rune('0' + len(m[1])))
		r.out.WriteString("<h" + level + ">" + Inline(m[2]) + "</h" + level + ">")
	case strings.HasPrefix(trimmed, ">"):
		r.flushPara()
		r.closeList()
		r.quote = append(r.quote, strings.TrimSpace(trimmed[1:]))
	case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
		r.item("ul", trimmed[2:])
	case reOrdered.MatchString(trimmed):
		r.item("ol", reOrdered.ReplaceAllString(trimmed, ""))
	default:
		r.closeList()
		r.flushQuote()
		r.para = append(r.para, trimmed)
	}
}

func (r *renderer) item(kind, text string) {
	r.flushPara()
	r.flushQuote()
	if r.list != kind {
		r.closeList()
		r.out.WriteString("<" + kind + ">")
		r.list = kind
	}
	r.out.WriteString("<li>" + Inline(strings.TrimSpace(text)) + "</li>")
}

func (r *renderer) flush() {
	r.flushPara()
	r.flushQuote()
	r.closeList()
}

func (r *renderer) flushPara() {
	if len(r.para) == 0 {
		return
	}
	r.out.WriteString("<p>" + Inline(strings.Join(r.para, " ")) + "</p>")
	r.para = nil
}

func (r *renderer) flushQuote() {
	if len(r.quote) == 0 {
		return
	}
	r.out.WriteString("<blockquote><p>" + Inline(strings.Join(r.quote, " ")) + "</p></blockquote>")
	r.quote = nil
}

func (r *renderer) closeList() {
	if r.list == "" {
		return
	}
	r.out.WriteString("</" + r.list + ">")
	r.list = ""
}

func (r *renderer) closeCode() {
	if r.lang != "" {
		r.out.WriteString(`<pre><code class="language-` + html.EscapeString(r.lang) + `">`)
	} else {
		r.out.WriteString("<pre><code>")
	}
	r.out.WriteString(html.EscapeString(strings.Join(r.code, "\n")))
	r.out.WriteString("</code></pre>")
	r.inCode = false
	r.lang = ""
	r.code = nil
}

// Inline formats a single line of text: code spans, images, links, bold and
// italic. The text is HTML-escaped first.
func Inline(s string) string {
	parts := strings.Split(s, "`")
	if len(parts)%2 == 0 {
		// Unbalanced backtick: keep the last one literal.
		last := len(parts) - 1
		parts[last-1] += "`" + parts[last]
		parts = parts[:last]
	}
	var b strings.Builder
	for i, part := range parts {
		if i%2 == 1 {
			b.WriteString("<code>" + html.EscapeString(part) + "</code>")
			continue
		}
		b.WriteString(formatText(html.EscapeString(part)))
	}
	return b.String()
}

func formatText(s string) string {
	s = reImage.ReplaceAllStringFunc(s, func(m string) string {
		sub := reImage.FindStringSubmatch(m)
		return `<img src="` + SafeURL(sub[2]) + `" alt="` + sub[1] + `" loading="lazy">`
	})
	s = reLink.ReplaceAllStringFunc(s, func(m string) string {
		sub := reLink.FindStringSubmatch(m)
		href := SafeURL(sub[2])
		attrs := ""
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			attrs = ` rel="noopener" target="_blank"`
		}
		return `<a href="` + href + `"` + attrs + `>` + sub[1] + `</a>`
	})
	return outsideTags(s, func(text string) string {
		text = reBold.ReplaceAllString(text, "<strong>$1</strong>")
		text = reBoldUnder.ReplaceAllString(text, "<strong>$1</strong>")
		text = reItalic.ReplaceAllString(text, "<em>$1</em>")
		return reItalicUnder.ReplaceAllString(text, "<em>$1</em>")
	})
}

// outsideTags applies fn to the text between HTML tags, leaving the tags
// (and their attributes) untouched.
func outsideTags(s string, fn func(string) string) string {
	var b strings.Builder
	for len(s) > 0 {
		open := strings.IndexByte(s, '<')
		if open < 0 {
			b.WriteString(fn(s))
			break
		}
		b.WriteString(fn(s[:open]))
		end := strings.IndexByte(s[open:], '>')
		if end < 0 {
			b.WriteString(s[open:])
			break
		}
		b.WriteString(s[open : open+end+1])
		s = s[open+end+1:]
	}
	return b.String()
}

// SafeURL returns raw (HTML-escaped) when it is relative or uses the http,
// https or mailto scheme, and "#" otherwise. raw may already be escaped.
func SafeURL(raw string) string {
	unescaped := strings.TrimSpace(html.UnescapeString(raw))
	u, err := url.Parse(unescaped)
	if err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return html.EscapeString(unescaped)
	}
	return "#"
}

// Excerpt returns the first max runes of src as plain text, cut at a word
// boundary and suffixed with an ellipsis when truncated. Code blocks and
// images are skipped.
func Excerpt(src string, max int) string {
	var words []string
	inCode := false
	for _, line := range strings.Split(src, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "```") {
			inCode = !inCode
			continue
		}
		if inCode || t == "---" || t == "***" {
			continue
		}
		t = strings.TrimSpace(strings.TrimLeft(t, "#>"))
		t = strings.TrimPrefix(t, "- ")
		t = reOrdered.ReplaceAllString(t, "")
		t = reImage.ReplaceAllString(t, "")
		t = reLink.ReplaceAllString(t, "$1")
		t = strings.NewReplacer("**", "", "__", "", "`", "", "*", "").Replace(t)
		words = append(words, strings.Fields(t)...)
	}
	text := strings.Join(words, " ")
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	cut := string([]rune(text)[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
