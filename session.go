package folio

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const sessionName = "admin_session"

// ErrInvalidCredentials is returned by Login when the email or password
// does not match the configured admin account.
var ErrInvalidCredentials = errors.New("folio: invalid credentials")

// Session is the per-browser login state. The zero value is a signed-out
// visitor.
type Session struct {
	IsAuthenticated bool
	IsAdmin         bool
}

// CanAdminister reports whether the session may see admin pages.
func (s Session) CanAdminister() bool {
	return s.IsAuthenticated && s.IsAdmin
}

// SessionManager owns the cookie store and the admin credential check.
// One is built per App; nothing about sessions lives in package state.
type SessionManager struct {
	store        *sessions.CookieStore
	adminEmail   string
	passwordHash []byte
	password     []byte
}

// NewSessionManager builds the cookie store from cfg.
func NewSessionManager(cfg SiteConfig) *SessionManager {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.CookieSecure,
	}
	m := &SessionManager{
		store:      store,
		adminEmail: strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
	}
	if cfg.AdminPasswordHash != "" {
		m.passwordHash = []byte(cfg.AdminPasswordHash)
	} else {
		m.password = []byte(cfg.AdminPassword)
	}
	return m
}

// Store returns the cookie store for the session middleware.
func (m *SessionManager) Store() sessions.Store {
	return m.store
}

// Current returns the session state of the request. Missing or tampered
// cookies read as a signed-out visitor.
func (m *SessionManager) Current(c echo.Context) Session {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return Session{}
	}
	authed, _ := sess.Values["authenticated"].(bool)
	admin, _ := sess.Values["admin"].(bool)
	return Session{IsAuthenticated: authed, IsAdmin: admin}
}

// Login checks the credentials and, on a match, marks the session as an
// authenticated admin. On a mismatch the session is left untouched.
func (m *SessionManager) Login(c echo.Context, email, password string) error {
	if !m.checkCredentials(email, password) {
		return ErrInvalidCredentials
	}
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["authenticated"] = true
	sess.Values["admin"] = true
	return sess.Save(c.Request(), c.Response())
}

// Logout resets the session to a signed-out visitor and expires the cookie.
func (m *SessionManager) Logout(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["authenticated"] = false
	sess.Values["admin"] = false
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

func (m *SessionManager) checkCredentials(email, password string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(m.adminEmail)) == 1
	var passOK bool
	if m.passwordHash != nil {
		passOK = bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
	} else {
		passOK = len(m.password) > 0 && subtle.ConstantTimeCompare([]byte(password), m.password) == 1
	}
	return emailOK && passOK && m.adminEmail != ""
}

// HashPassword returns a bcrypt hash suitable for AdminPasswordHash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("folio: empty password")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
