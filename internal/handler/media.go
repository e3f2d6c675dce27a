package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restroo/internal/logx"
	"github.com/iliyamo/restroo/internal/model"
	"github.com/iliyamo/restroo/internal/repository"
	"github.com/iliyamo/restroo/internal/storage"
)

// MediaHandler stores and lists restaurant photos.
type MediaHandler struct {
	Media  *repository.MediaRepo
	Users  *repository.UserRepo
	Images *storage.Images
}

func NewMediaHandler(media *repository.MediaRepo, users *repository.UserRepo, images *storage.Images) *MediaHandler {
	return &MediaHandler{Media: media, Users: users, Images: images}
}

// Upload handles POST /v1/media: multipart "title" and "photo".
func (h *MediaHandler) Upload(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return jsonError(c, http.StatusBadRequest, "title is required")
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "photo is required")
	}
	src, err := fh.Open()
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "cannot read photo")
	}
	defer src.Close()

	name, err := h.Images.Save(storage.MediaDir, fh.Filename, src, storage.MediaMaxSize)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return jsonError(c, http.StatusBadRequest, "photo is not a valid image")
		}
		logx.Error(c, "media_upload", err, nil)
		return jsonError(c, http.StatusInternalServerError, "store photo failed")
	}
	m := &model.Media{Title: title, ImageFile: name, RestaurantID: uid}
	if err := h.Media.Create(c.Request().Context(), m); err != nil {
		_ = h.Images.Remove(storage.MediaDir, name)
		return jsonError(c, http.StatusInternalServerError, "save photo failed")
	}
	logx.Audit(c, "media_upload", map[string]any{"media_id": m.ID})
	return c.JSON(http.StatusCreated, m)
}

// List handles GET /v1/restaurants/:id/media.
func (h *MediaHandler) List(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid restaurant id")
	}
	ctx := c.Request().Context()
	if _, err := h.Users.GetRestaurant(ctx, id); err != nil {
		return reviewError(c, err)
	}
	items, err := h.Media.ListByRestaurant(ctx, id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
