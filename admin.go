package folio

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/contentapi"
	"github.com/eringen/folio/views"
)

func (a *App) handleAdminDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.API.ListPosts(ctx)
	if err != nil {
		return err
	}
	photos, err := a.API.ListPhotos(ctx)
	if err != nil {
		return err
	}
	messages, err := a.Inbox.CountMessages(ctx)
	if err != nil {
		return err
	}

	stats := views.AdminStats{Posts: len(posts), Photos: len(photos), Messages: messages}
	for _, p := range posts {
		switch p.Status {
		case contentapi.StatusPublished:
			stats.Published++
		case contentapi.StatusArchived:
			stats.Archived++
		default:
			stats.Drafts++
		}
	}
	for _, p := range photos {
		if p.Visible {
			stats.VisiblePhotos++
		}
	}
	return Render(c, a.Views.AdminDashboard(a.page(c), stats))
}

func (a *App) handleAdminMessages(c echo.Context) error {
	messages, err := a.Inbox.ListMessages(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminMessages(a.page(c), messages, flashMessage(c)))
}

func (a *App) handleAdminMessageDelete(c echo.Context) error {
	err := a.Inbox.DeleteMessage(c.Request().Context(), c.Param("id"))
	if errors.Is(err, ErrMessageNotFound) {
		return a.handleNotFound(c)
	}
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/messages?msg=message-deleted")
}
