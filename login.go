package folio

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleLoginForm(c echo.Context) error {
	if a.Sessions.Current(c).CanAdminister() {
		return c.Redirect(http.StatusSeeOther, "/admin")
	}
	return Render(c, a.Views.Login(a.page(c), "", false))
}

// handleLogin checks the submitted credentials. Every attempt takes a slot
// in the per-IP limit up front; a successful login gives it back, so only
// failures count.
func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Allow(ip) {
		return c.String(http.StatusTooManyRequests, "Demasiados intentos. Inténtalo más tarde.")
	}
	email := strings.TrimSpace(c.FormValue("email"))
	err := a.Sessions.Login(c, email, c.FormValue("password"))
	if err == nil {
		a.loginLimiter.Release(ip)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		c.Logger().Warnf("login: invalid credentials from %s", ip)
		return RenderStatus(c, http.StatusUnauthorized, a.Views.Login(a.page(c), email, true))
	}
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func (a *App) handleLogout(c echo.Context) error {
	if err := a.Sessions.Logout(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
