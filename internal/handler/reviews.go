package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restroo/internal/logx"
	"github.com/iliyamo/restroo/internal/metrics"
	"github.com/iliyamo/restroo/internal/model"
	"github.com/iliyamo/restroo/internal/repository"
)

// Scorer rates review text between 0 (negative) and 1 (positive).
type Scorer interface {
	Score(text string) float64
}

// ReviewHandler manages customer reviews of restaurants.
type ReviewHandler struct {
	Reviews *repository.ReviewRepo
	Users   *repository.UserRepo
	Scorer  Scorer
	Cache   Invalidator
}

func NewReviewHandler(reviews *repository.ReviewRepo, users *repository.UserRepo, scorer Scorer, cache Invalidator) *ReviewHandler {
	if scorer == nil {
		panic("nil scorer passed to NewReviewHandler")
	}
	return &ReviewHandler{Reviews: reviews, Users: users, Scorer: scorer, Cache: cache}
}

type reviewReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Create handles POST /v1/restaurants/:id/reviews.  The sentiment is
// scored once here; later edits keep it.
func (h *ReviewHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	restaurantID, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid restaurant id")
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	if name, ok := required(field{"title", &req.Title}, field{"content", &req.Content}); !ok {
		return jsonError(c, http.StatusBadRequest, name+" is required")
	}
	ctx := c.Request().Context()
	if _, err := h.Users.GetRestaurant(ctx, restaurantID); err != nil {
		return reviewError(c, err)
	}

	rv := &model.Review{
		Title:        req.Title,
		Content:      req.Content,
		Sentiment:    h.Scorer.Score(req.Content),
		CustomerID:   uid,
		RestaurantID: restaurantID,
	}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		logx.Error(c, "review_create", err, nil)
		return jsonError(c, http.StatusInternalServerError, "create review failed")
	}
	metrics.ReviewSentiment.Observe(rv.Sentiment)
	h.Cache.Invalidate(ctx, ScopeReviews)
	logx.Audit(c, "review_create", map[string]any{"review_id": rv.ID, "restaurant_id": restaurantID, "sentiment": rv.Sentiment})
	return c.JSON(http.StatusCreated, rv)
}

// List handles GET /v1/restaurants/:id/reviews, newest first, five per
// page.
func (h *ReviewHandler) List(c echo.Context) error {
	restaurantID, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid restaurant id")
	}
	ctx := c.Request().Context()
	if _, err := h.Users.GetRestaurant(ctx, restaurantID); err != nil {
		return reviewError(c, err)
	}
	page, err := h.Reviews.ListByRestaurant(ctx, restaurantID, pageParam(c), repository.DefaultPerPage)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, page)
}

// Get handles GET /v1/reviews/:id.
func (h *ReviewHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid review id")
	}
	rv, err := h.Reviews.GetByID(c.Request().Context(), id)
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, rv)
}

// Update handles PUT /v1/reviews/:id.  Title and content change; the
// sentiment stays as scored at creation.
func (h *ReviewHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid review id")
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	if name, ok := required(field{"title", &req.Title}, field{"content", &req.Content}); !ok {
		return jsonError(c, http.StatusBadRequest, name+" is required")
	}
	ctx := c.Request().Context()
	if err := h.Reviews.Update(ctx, id, uid, req.Title, req.Content); err != nil {
		return reviewError(c, err)
	}
	h.Cache.Invalidate(ctx, ScopeReviews)
	rv, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, rv)
}

// Delete handles DELETE /v1/reviews/:id.  Only the author may delete.
func (h *ReviewHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid review id")
	}
	ctx := c.Request().Context()
	if err := h.Reviews.Delete(ctx, id, uid); err != nil {
		return reviewError(c, err)
	}
	h.Cache.Invalidate(ctx, ScopeReviews)
	logx.Audit(c, "review_delete", map[string]any{"review_id": id})
	return c.NoContent(http.StatusNoContent)
}

func reviewError(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrForbidden) {
		return postError(c, err)
	}
	return jsonError(c, http.StatusInternalServerError, "database error")
}
