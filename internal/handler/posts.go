package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restroo/internal/logx"
	"github.com/iliyamo/restroo/internal/model"
	"github.com/iliyamo/restroo/internal/repository"
)

// Response cache scopes invalidated by writes.
const (
	ScopePosts   = "posts"
	ScopeReviews = "reviews"
)

// Invalidator drops cached responses of a scope after a write.
type Invalidator interface {
	Invalidate(ctx context.Context, scope string)
}

// PostHandler manages restaurant announcements.
type PostHandler struct {
	Posts *repository.PostRepo
	Users *repository.UserRepo
	Cache Invalidator
}

func NewPostHandler(posts *repository.PostRepo, users *repository.UserRepo, cache Invalidator) *PostHandler {
	return &PostHandler{Posts: posts, Users: users, Cache: cache}
}

type postReq struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

func (r *postReq) validate() (string, bool) {
	return required(field{"title", &r.Title}, field{"content", &r.Content}, field{"category", &r.Category})
}

// Feed handles GET /v1/posts: every post, newest first, five per page.
func (h *PostHandler) Feed(c echo.Context) error {
	page, err := h.Posts.List(c.Request().Context(), pageParam(c), repository.DefaultPerPage)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, page)
}

// ByUser handles GET /v1/users/:username/posts.
func (h *PostHandler) ByUser(c echo.Context) error {
	ctx := c.Request().Context()
	u, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "user not found")
		}
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	page, err := h.Posts.ListByRestaurant(ctx, u.ID, pageParam(c), repository.DefaultPerPage)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, page)
}

// Get handles GET /v1/posts/:id.
func (h *PostHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid post id")
	}
	p, err := h.Posts.GetByID(c.Request().Context(), id)
	if err != nil {
		return postError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Create handles POST /v1/posts for restaurants.
func (h *PostHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	var req postReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	if name, ok := req.validate(); !ok {
		return jsonError(c, http.StatusBadRequest, name+" is required")
	}
	p := &model.Post{Title: req.Title, Content: req.Content, Category: req.Category, RestaurantID: uid}
	ctx := c.Request().Context()
	if err := h.Posts.Create(ctx, p); err != nil {
		logx.Error(c, "post_create", err, nil)
		return jsonError(c, http.StatusInternalServerError, "create post failed")
	}
	h.Cache.Invalidate(ctx, ScopePosts)
	logx.Audit(c, "post_create", map[string]any{"post_id": p.ID})
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /v1/posts/:id.  Only the author may edit.
func (h *PostHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid post id")
	}
	var req postReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	if name, ok := req.validate(); !ok {
		return jsonError(c, http.StatusBadRequest, name+" is required")
	}
	ctx := c.Request().Context()
	if err := h.Posts.Update(ctx, id, uid, req.Title, req.Content, req.Category); err != nil {
		return postError(c, err)
	}
	h.Cache.Invalidate(ctx, ScopePosts)
	p, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		return postError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/posts/:id.  Only the author may delete.
func (h *PostHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid post id")
	}
	ctx := c.Request().Context()
	if err := h.Posts.Delete(ctx, id, uid); err != nil {
		return postError(c, err)
	}
	h.Cache.Invalidate(ctx, ScopePosts)
	logx.Audit(c, "post_delete", map[string]any{"post_id": id})
	return c.NoContent(http.StatusNoContent)
}

func postError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return jsonError(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrForbidden):
		logx.Security(c, "author_mismatch", nil)
		return jsonError(c, http.StatusForbidden, "forbidden")
	}
	return jsonError(c, http.StatusInternalServerError, "database error")
}
