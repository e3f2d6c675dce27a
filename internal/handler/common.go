package handler // handler defines the HTTP handlers of the API

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restroo/internal/middleware"
)

var errNoUser = errors.New("invalid user_id in context")

// getUserID returns the authenticated user's ID set by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errNoUser
	}
	return id, nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// pageParam reads ?page=N; anything missing or invalid means the first page.
func pageParam(c echo.Context) int {
	p, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

type field struct {
	name string
	v    *string
}

// required trims every field and names the first empty one.
func required(fields ...field) (string, bool) {
	for _, f := range fields {
		*f.v = strings.TrimSpace(*f.v)
		if *f.v == "" {
			return f.name, false
		}
	}
	return "", true
}

// validUsername mirrors the 2..20 character rule of the registration form.
func validUsername(u string) bool {
	n := len([]rune(u))
	return n >= 2 && n <= 20 && !strings.ContainsAny(u, " \t/")
}
