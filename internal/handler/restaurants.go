package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restroo/internal/booking"
	"github.com/iliyamo/restroo/internal/repository"
)

// RestaurantHandler serves the public restaurant directory.
type RestaurantHandler struct {
	Users     *repository.UserRepo
	Inventory *booking.Inventory
	Reviews   *repository.ReviewRepo
}

func NewRestaurantHandler(users *repository.UserRepo, inv *booking.Inventory, reviews *repository.ReviewRepo) *RestaurantHandler {
	return &RestaurantHandler{Users: users, Inventory: inv, Reviews: reviews}
}

// List handles GET /v1/restaurants.
func (h *RestaurantHandler) List(c echo.Context) error {
	items, err := h.Users.ListRestaurants(c.Request().Context())
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/restaurants/:id: profile, availability and the
// average review sentiment.
func (h *RestaurantHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid restaurant id")
	}
	ctx := c.Request().Context()
	u, err := h.Users.GetRestaurant(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "restaurant not found")
		}
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	inv, err := h.Inventory.Get(ctx, id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	avg, count, err := h.Reviews.AverageSentiment(ctx, id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":                u.ID,
		"name":              u.Name,
		"username":          u.Username,
		"address":           u.Address,
		"contact":           u.Contact,
		"image_file":        u.ImageFile,
		"total_tables":      inv.Total,
		"available_tables":  inv.Available,
		"review_count":      count,
		"average_sentiment": avg,
	})
}
