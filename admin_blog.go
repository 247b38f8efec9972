package folio

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/contentapi"
	"github.com/eringen/folio/views"
)

func (a *App) handleAdminBlog(c echo.Context) error {
	posts, err := a.API.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	SortNewestFirst(posts)
	return Render(c, a.Views.AdminBlog(a.page(c), posts, flashMessage(c)))
}

func (a *App) handleAdminPostNew(c echo.Context) error {
	form := views.PostForm{
		IsNew:  true,
		Status: string(contentapi.StatusDraft),
		Date:   time.Now().UTC().Format(dateLayout),
	}
	return Render(c, a.Views.AdminPostForm(a.page(c), form, a.pickerPhotos(c)))
}

func (a *App) handleAdminPostCreate(c echo.Context) error {
	form := postFormFromRequest(c)
	form.IsNew = true
	draft, err := NormalizePostForm(form, time.Now())
	if err != nil {
		return a.renderPostFormError(c, form, err)
	}
	if _, err := a.Editor.Create(c.Request().Context(), draft); err != nil {
		return a.renderPostFormError(c, form, err)
	}
	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/admin/blog?msg=post-saved")
}

func (a *App) handleAdminPostEdit(c echo.Context) error {
	post, err := a.API.GetPost(c.Request().Context(), paramID(c))
	if err != nil {
		if contentapi.IsNotFound(err) {
			return a.handleNotFound(c)
		}
		return err
	}
	return Render(c, a.Views.AdminPostForm(a.page(c), postFormOf(post), a.pickerPhotos(c)))
}

func (a *App) handleAdminPostUpdate(c echo.Context) error {
	ctx := c.Request().Context()
	existing, err := a.API.GetPost(ctx, paramID(c))
	if err != nil {
		if contentapi.IsNotFound(err) {
			return a.handleNotFound(c)
		}
		return err
	}
	form := postFormFromRequest(c)
	form.ID = existing.ID.String()
	draft, err := NormalizePostForm(form, time.Now())
	if err != nil {
		return a.renderPostFormError(c, form, err)
	}
	if _, err := a.Editor.Update(ctx, existing, draft); err != nil {
		return a.renderPostFormError(c, form, err)
	}
	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/admin/blog?msg=post-saved")
}

func (a *App) handleAdminPostDelete(c echo.Context) error {
	if err := a.API.DeletePost(c.Request().Context(), paramID(c)); err != nil {
		if contentapi.IsNotFound(err) {
			return a.handleNotFound(c)
		}
		return err
	}
	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/admin/blog?msg=post-deleted")
}

// renderPostFormError re-renders the editor with what the admin typed. The
// save workflow has already logged and compensated a failed step.
func (a *App) renderPostFormError(c echo.Context, form views.PostForm, err error) error {
	code := http.StatusBadGateway
	form.Error = "No se pudo guardar la entrada. Inténtalo de nuevo."
	if ve, ok := IsValidationError(err); ok {
		code = http.StatusUnprocessableEntity
		form.Error = ve.Message
	}
	return RenderStatus(c, code, a.Views.AdminPostForm(a.page(c), form, a.pickerPhotos(c)))
}

// pickerPhotos lists every photo for the editor's photo picker. A failure
// only empties the picker.
func (a *App) pickerPhotos(c echo.Context) []contentapi.Photo {
	photos, err := a.API.ListPhotos(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("post editor: load photos: %v", err)
		return nil
	}
	return photos
}

func postFormFromRequest(c echo.Context) views.PostForm {
	return views.PostForm{
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
		Status:  c.FormValue("status"),
		Date:    c.FormValue("date"),
		Tags:    c.FormValue("tags"),
		PhotoID: c.FormValue("photo_id"),
	}
}

func postFormOf(p contentapi.BlogPost) views.PostForm {
	form := views.PostForm{
		ID:      p.ID.String(),
		Title:   p.Title,
		Content: p.Content,
		Status:  string(p.Status),
		Tags:    strings.Join(p.TagNames(), ", "),
		PhotoID: p.PhotoID().String(),
	}
	if !p.CreatedAt.IsZero() {
		form.Date = p.CreatedAt.UTC().Format(dateLayout)
	}
	return form
}
