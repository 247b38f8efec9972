package folio

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/contentapi"
)

// Slugify converts a title to a URL-safe slug. Accented Latin letters are
// folded to their base letter.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		if base, ok := accentFold[r]; ok {
			r = base
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'ä': 'a', 'â': 'a', 'ã': 'a',
	'é': 'e', 'è': 'e', 'ë': 'e', 'ê': 'e',
	'í': 'i', 'ì': 'i', 'ï': 'i', 'î': 'i',
	'ó': 'o', 'ò': 'o', 'ö': 'o', 'ô': 'o', 'õ': 'o',
	'ú': 'u', 'ù': 'u', 'ü': 'u', 'û': 'u',
	'ñ': 'n', 'ç': 'c',
}

// paramID reads a path parameter as a content API id.
func paramID(c echo.Context) contentapi.ID {
	return contentapi.ID(strings.TrimSpace(c.Param("id")))
}

// formBool reads a checkbox. Browsers omit unchecked boxes.
func formBool(c echo.Context, name string) bool {
	switch strings.ToLower(c.FormValue(name)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// flashMessages maps the ?msg= codes admin redirects carry to the notice
// shown on the next page. Unknown codes show nothing.
var flashMessages = map[string]string{
	"post-saved":      "Entrada guardada.",
	"post-deleted":    "Entrada eliminada.",
	"photo-saved":     "Foto guardada.",
	"photo-deleted":   "Foto eliminada.",
	"message-deleted": "Mensaje eliminado.",
}

func flashMessage(c echo.Context) string {
	return flashMessages[c.QueryParam("msg")]
}
