package folio

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/contentapi"
	"github.com/eringen/folio/views"
)

func (a *App) handleAdminPhotos(c echo.Context) error {
	photos, err := a.API.ListPhotos(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminPhotos(a.page(c), photos, flashMessage(c)))
}

func (a *App) handleAdminPhotoNew(c echo.Context) error {
	return Render(c, a.Views.AdminPhotoForm(a.page(c), views.PhotoForm{IsNew: true, Visible: true}))
}

// handleAdminPhotoCreate downscales the uploaded image and forwards it to
// the content API.
func (a *App) handleAdminPhotoCreate(c echo.Context) error {
	form := photoFormFromRequest(c)
	form.IsNew = true
	if form.Title == "" {
		return a.renderPhotoFormError(c, form, http.StatusUnprocessableEntity, "El título es obligatorio.")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return a.renderPhotoFormError(c, form, http.StatusUnprocessableEntity, "Selecciona una imagen.")
	}
	if file.Size > maxUploadSize {
		return a.renderPhotoFormError(c, form, http.StatusRequestEntityTooLarge, "La imagen supera los 10 MB.")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, err := processImage(src, file.Filename)
	if err != nil {
		c.Logger().Warnf("photo upload %q: %v", file.Filename, err)
		msg := "La imagen no es válida. Usa JPEG, PNG o GIF."
		if errors.Is(err, errImageTooLarge) || errors.Is(err, errImagePixels) {
			msg = "La imagen es demasiado grande."
		}
		return a.renderPhotoFormError(c, form, http.StatusUnprocessableEntity, msg)
	}

	_, err = a.API.UploadPhoto(c.Request().Context(), contentapi.PhotoUpload{
		Title:       form.Title,
		Description: form.Description,
		Visible:     form.Visible,
		Filename:    img.Filename,
		ContentType: "image/jpeg",
		Image:       img.Data,
	})
	if err != nil {
		c.Logger().Errorf("photo upload %q: %v", img.Filename, err)
		return a.renderPhotoFormError(c, form, http.StatusBadGateway, "No se pudo subir la foto. Inténtalo de nuevo.")
	}
	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/admin/photos?msg=photo-saved")
}

func (a *App) handleAdminPhotoEdit(c echo.Context) error {
	photo, err := a.API.GetPhoto(c.Request().Context(), paramID(c))
	if err != nil {
		if contentapi.IsNotFound(err) {
			return a.handleNotFound(c)
		}
		return err
	}
	form := views.PhotoForm{
		ID:          photo.ID.String(),
		Title:       photo.Title,
		Description: photo.Description,
		URL:         photo.URL,
		Visible:     photo.Visible,
	}
	return Render(c, a.Views.AdminPhotoForm(a.page(c), form))
}

func (a *App) handleAdminPhotoUpdate(c echo.Context) error {
	id := paramID(c)
	form := photoFormFromRequest(c)
	form.ID = id.String()
	form.URL = strings.TrimSpace(c.FormValue("url"))
	if form.Title == "" {
		return a.renderPhotoFormError(c, form, http.StatusUnprocessableEntity, "El título es obligatorio.")
	}
	_, err := a.API.UpdatePhoto(c.Request().Context(), id, contentapi.PhotoPatch{
		Title:       form.Title,
		Description: form.Description,
		URL:         form.URL,
		Visible:     form.Visible,
	})
	if err != nil {
		if contentapi.IsNotFound(err) {
			return a.handleNotFound(c)
		}
		c.Logger().Errorf("photo %s update: %v", id, err)
		return a.renderPhotoFormError(c, form, http.StatusBadGateway, "No se pudo guardar la foto. Inténtalo de nuevo.")
	}
	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/admin/photos?msg=photo-saved")
}

func (a *App) handleAdminPhotoDelete(c echo.Context) error {
	if err := a.API.DeletePhoto(c.Request().Context(), paramID(c)); err != nil {
		if contentapi.IsNotFound(err) {
			return a.handleNotFound(c)
		}
		return err
	}
	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/admin/photos?msg=photo-deleted")
}

func (a *App) renderPhotoFormError(c echo.Context, form views.PhotoForm, code int, msg string) error {
	form.Error = msg
	return RenderStatus(c, code, a.Views.AdminPhotoForm(a.page(c), form))
}

func photoFormFromRequest(c echo.Context) views.PhotoForm {
	return views.PhotoForm{
		Title:       strings.TrimSpace(c.FormValue("title")),
		Description: strings.TrimSpace(c.FormValue("description")),
		Visible:     formBool(c, "visible"),
	}
}
