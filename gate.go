package folio

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// notFoundPath is where the authorization gate sends visitors who may not
// see a protected page.
const notFoundPath = "/404"

// RequireAdmin lets the request through only for an authenticated admin
// session; everyone else is redirected to the not-found page, so the admin
// area is indistinguishable from a missing page.
func (a *App) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !a.Sessions.Current(c).CanAdminister() {
			return c.Redirect(http.StatusSeeOther, notFoundPath)
		}
		return next(c)
	}
}
