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

// AccountHandler lets a user view and edit their own profile.
type AccountHandler struct {
	Users  *repository.UserRepo
	Images *storage.Images
}

func NewAccountHandler(users *repository.UserRepo, images *storage.Images) *AccountHandler {
	return &AccountHandler{Users: users, Images: images}
}

type updateAccountReq struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Contact  string `json:"contact"`
}

// Get handles GET /v1/account.
func (h *AccountHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	u, err := h.Users.GetByID(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "account not found")
		}
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, u)
}

// Update handles PUT /v1/account.  The role cannot be changed.
func (h *AccountHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	var req updateAccountReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	if name, ok := required(
		field{"name", &req.Name}, field{"username", &req.Username}, field{"email", &req.Email},
		field{"address", &req.Address}, field{"contact", &req.Contact},
	); !ok {
		return jsonError(c, http.StatusBadRequest, name+" is required")
	}
	if !validUsername(req.Username) {
		return jsonError(c, http.StatusBadRequest, "username must be 2 to 20 characters")
	}
	if !strings.Contains(req.Email, "@") {
		return jsonError(c, http.StatusBadRequest, "invalid email")
	}

	ctx := c.Request().Context()
	err = h.Users.UpdateProfile(ctx, uid, repository.ProfileUpdate{
		Name: req.Name, Username: req.Username, Email: req.Email, Address: req.Address, Contact: req.Contact,
	})
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return jsonError(c, http.StatusConflict, "email already exists")
	case errors.Is(err, repository.ErrUsernameExists):
		return jsonError(c, http.StatusConflict, "username already exists")
	case errors.Is(err, repository.ErrNotFound):
		return jsonError(c, http.StatusNotFound, "account not found")
	case err != nil:
		return jsonError(c, http.StatusInternalServerError, "update failed")
	}
	logx.Audit(c, "account_update", nil)
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, u)
}

// Picture handles POST /v1/account/picture with a multipart "picture"
// file.  The image is stored as a 125x125 thumbnail and the previous
// picture is removed.
func (h *AccountHandler) Picture(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	fh, err := c.FormFile("picture")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "picture is required")
	}
	if !allowedPicture(fh.Filename) {
		return jsonError(c, http.StatusBadRequest, "picture must be a jpg or png file")
	}
	src, err := fh.Open()
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "cannot read picture")
	}
	defer src.Close()

	ctx := c.Request().Context()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return jsonError(c, http.StatusNotFound, "account not found")
	}
	name, err := h.Images.Save(storage.ProfileDir, fh.Filename, src, storage.ThumbnailSize)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return jsonError(c, http.StatusBadRequest, "picture is not a valid image")
		}
		logx.Error(c, "account_picture", err, nil)
		return jsonError(c, http.StatusInternalServerError, "store picture failed")
	}
	if err := h.Users.UpdateImage(ctx, uid, name); err != nil {
		_ = h.Images.Remove(storage.ProfileDir, name)
		return jsonError(c, http.StatusInternalServerError, "update failed")
	}
	if u.ImageFile != model.DefaultImageFile {
		_ = h.Images.Remove(storage.ProfileDir, u.ImageFile)
	}
	logx.Audit(c, "account_picture", map[string]any{"image_file": name})
	return c.JSON(http.StatusOK, echo.Map{"image_file": name})
}

func allowedPicture(filename string) bool {
	switch strings.ToLower(filename[strings.LastIndex(filename, ".")+1:]) {
	case "jpg", "jpeg", "png":
		return true
	}
	return false
}
