package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restroo/internal/booking"
	"github.com/iliyamo/restroo/internal/logx"
	"github.com/iliyamo/restroo/internal/repository"
)

// busyRetryAfter is the Retry-After hint sent with 503 responses when the
// inventory row stays locked.
const busyRetryAfter = 1

// BookingHandler exposes the booking ledger.  Role checks happen in the
// router; ownership checks happen in the ledger.
type BookingHandler struct {
	Ledger    *booking.Ledger
	Inventory *booking.Inventory
	Users     *repository.UserRepo
}

func NewBookingHandler(ledger *booking.Ledger, inv *booking.Inventory, users *repository.UserRepo) *BookingHandler {
	if ledger == nil || inv == nil || users == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Ledger: ledger, Inventory: inv, Users: users}
}

type createBookingReq struct {
	TableCount int `json:"table_count"`
}

// Create handles POST /v1/restaurants/:id/bookings.  The customer asks for
// table_count tables; the request succeeds only if that many are free.
func (h *BookingHandler) Create(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	restaurantID, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid restaurant id")
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "table_count must be a whole number")
	}

	ctx := c.Request().Context()
	if _, err := h.Users.GetRestaurant(ctx, restaurantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "restaurant not found")
		}
		return jsonError(c, http.StatusInternalServerError, "database error")
	}

	b, err := h.Ledger.CreateBooking(ctx, customerID, restaurantID, req.TableCount)
	if err != nil {
		return bookingError(c, "booking_create", err, map[string]any{
			"restaurant_id": restaurantID, "table_count": req.TableCount,
		})
	}
	logx.Audit(c, "booking_create", map[string]any{
		"booking_id": b.ID, "restaurant_id": restaurantID, "table_count": b.TableCount,
	})
	return c.JSON(http.StatusCreated, b)
}

// Cancel handles DELETE /v1/bookings/:id.  Only the restaurant the booking
// was made at may cancel it.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	bookingID, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid booking id")
	}
	b, err := h.Ledger.CancelBooking(c.Request().Context(), userID, bookingID)
	if err != nil {
		return bookingError(c, "booking_cancel", err, map[string]any{"booking_id": bookingID})
	}
	logx.Audit(c, "booking_cancel", map[string]any{
		"booking_id": b.ID, "customer_id": b.CustomerID, "table_count": b.TableCount,
	})
	return c.NoContent(http.StatusNoContent)
}

// Mine handles GET /v1/me/bookings for customers.
func (h *BookingHandler) Mine(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	items, err := h.Ledger.ListForCustomer(c.Request().Context(), customerID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Received handles GET /v1/restaurant/bookings: the bookings held against
// the calling restaurant, with its current availability.
func (h *BookingHandler) Received(c echo.Context) error {
	restaurantID, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx := c.Request().Context()
	items, err := h.Ledger.ListForRestaurant(ctx, restaurantID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	inv, err := h.Inventory.Get(ctx, restaurantID)
	if err != nil {
		return bookingError(c, "booking_list", err, nil)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":     items,
		"total":     inv.Total,
		"available": inv.Available,
	})
}

// Tables handles GET /v1/restaurants/:id/tables.
func (h *BookingHandler) Tables(c echo.Context) error {
	restaurantID, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid restaurant id")
	}
	inv, err := h.Inventory.Get(c.Request().Context(), restaurantID)
	if err != nil {
		if errors.Is(err, booking.ErrNoInventory) {
			return jsonError(c, http.StatusNotFound, "restaurant not found")
		}
		return jsonError(c, http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"restaurant_id": inv.RestaurantID,
		"total":         inv.Total,
		"available":     inv.Available,
		"booked":        inv.Booked(),
	})
}

// bookingError maps ledger errors to responses.  Refusals are expected
// outcomes and are logged at info level; only unknown errors are logged
// as errors.
func bookingError(c echo.Context, action string, err error, fields map[string]any) error {
	var avail *booking.AvailabilityError
	switch {
	case errors.Is(err, booking.ErrValidation):
		return jsonError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &avail):
		logx.Info(c, action+"_rejected", merge(fields, map[string]any{
			"requested": avail.Requested, "available": avail.Available,
		}))
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     avail.Error(),
			"requested": avail.Requested,
			"available": avail.Available,
		})
	case errors.Is(err, booking.ErrNoInventory):
		logx.Info(c, action+"_rejected", merge(fields, map[string]any{"reason": "no_inventory"}))
		return jsonError(c, http.StatusConflict, "this restaurant does not take bookings")
	case errors.Is(err, booking.ErrForbidden):
		logx.Security(c, action+"_forbidden", fields)
		return jsonError(c, http.StatusForbidden, "only the restaurant can cancel this booking")
	case errors.Is(err, booking.ErrNotFound):
		return jsonError(c, http.StatusNotFound, "booking not found")
	case errors.Is(err, booking.ErrBusy):
		logx.Info(c, action+"_busy", fields)
		c.Response().Header().Set("Retry-After", strconv.Itoa(busyRetryAfter))
		return jsonError(c, http.StatusServiceUnavailable, "the restaurant is busy, try again")
	}
	logx.Error(c, action, err, fields)
	return jsonError(c, http.StatusInternalServerError, "booking failed")
}

func merge(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
