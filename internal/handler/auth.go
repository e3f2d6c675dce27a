package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restroo/internal/booking"
	"github.com/iliyamo/restroo/internal/config"
	"github.com/iliyamo/restroo/internal/logx"
	"github.com/iliyamo/restroo/internal/middleware"
	"github.com/iliyamo/restroo/internal/model"
	"github.com/iliyamo/restroo/internal/repository"
	"github.com/iliyamo/restroo/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg       config.Config
	Users     *repository.UserRepo
	Tokens    *repository.TokenRepo
	Inventory *booking.Inventory
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, inv *booking.Inventory) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Inventory: inv}
}

// ----- DTOs -----

type registerReq struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Contact     string `json:"contact"`
	Password    string `json:"password"`
	Role        string `json:"role"`         // customer | restaurant
	TotalTables *int   `json:"total_tables"` // restaurants only
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register creates the account and returns tokens immediately.  A
// restaurant's table inventory is created in the same transaction, so a
// restaurant never exists without one.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	if name, ok := required(
		field{"name", &req.Name}, field{"username", &req.Username}, field{"email", &req.Email},
		field{"address", &req.Address}, field{"contact", &req.Contact},
	); !ok {
		return jsonError(c, http.StatusBadRequest, name+" is required")
	}
	if req.Password == "" {
		return jsonError(c, http.StatusBadRequest, "password is required")
	}
	if !validUsername(req.Username) {
		return jsonError(c, http.StatusBadRequest, "username must be 2 to 20 characters")
	}
	if !strings.Contains(req.Email, "@") {
		return jsonError(c, http.StatusBadRequest, "invalid email")
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleCustomer
	}
	if role != model.RoleCustomer && role != model.RoleRestaurant {
		return jsonError(c, http.StatusBadRequest, "role must be customer or restaurant")
	}
	if role == model.RoleRestaurant && req.TotalTables == nil {
		return jsonError(c, http.StatusBadRequest, "total_tables is required for restaurants")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.Users.DB.BeginTxx(ctx, nil)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "failed to start transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	uid, err := h.Users.CreateTx(ctx, tx, repository.NewUser{
		Name: req.Name, Username: req.Username, Email: req.Email,
		Address: req.Address, Contact: req.Contact, Role: role, Password: req.Password,
	}, h.Cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return jsonError(c, http.StatusConflict, "email already exists")
	case errors.Is(err, repository.ErrUsernameExists):
		return jsonError(c, http.StatusConflict, "username already exists")
	case err != nil:
		logx.Error(c, "register", err, nil)
		return jsonError(c, http.StatusInternalServerError, "create user failed")
	}
	if role == model.RoleRestaurant {
		if _, err := h.Inventory.Create(ctx, tx, uid, *req.TotalTables); err != nil {
			if errors.Is(err, booking.ErrValidation) {
				return jsonError(c, http.StatusBadRequest, err.Error())
			}
			logx.Error(c, "register_inventory", err, map[string]any{"restaurant_id": uid})
			return jsonError(c, http.StatusInternalServerError, "create tables failed")
		}
	}
	if err := tx.Commit(); err != nil {
		return jsonError(c, http.StatusInternalServerError, "create user failed")
	}
	committed = true

	fields := map[string]any{"new_user_id": uid, "role": role}
	if req.TotalTables != nil && role == model.RoleRestaurant {
		fields["total_tables"] = *req.TotalTables
	}
	logx.Audit(c, "register", fields)

	resp, err := h.issue(ctx, userPart{ID: uid, Username: req.Username, Email: strings.ToLower(req.Email), Role: role})
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, "email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logx.Security(c, "login_failed", map[string]any{"email": req.Email})
			return jsonError(c, http.StatusUnauthorized, "invalid credentials")
		}
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		logx.Security(c, "login_failed", map[string]any{"email": req.Email})
		return jsonError(c, http.StatusUnauthorized, "invalid credentials")
	}

	resp, err := h.issue(ctx, userPart{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role})
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh validates the refresh token by hash, revokes it and issues a
// new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return jsonError(c, http.StatusBadRequest, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "invalid refresh")
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "load user failed")
	}
	resp, err := h.issue(ctx, userPart{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role})
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshAccess returns a new access token without rotating the refresh
// token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return jsonError(c, http.StatusBadRequest, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "invalid refresh")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusUnauthorized, "invalid refresh")
		}
		return jsonError(c, http.StatusInternalServerError, "load user failed")
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "issue access failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes one refresh token when it is given in the body, or every
// refresh token of the caller when only a bearer token is sent.
func (h *AuthHandler) Logout(c echo.Context) error {
	var uid uint64
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
			uid, _ = claims.UserID()
		}
	}
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return jsonError(c, http.StatusUnauthorized, "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return jsonError(c, http.StatusInternalServerError, "logout failed")
		}
		return c.NoContent(http.StatusNoContent)
	}
	if uid != 0 {
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return jsonError(c, http.StatusInternalServerError, "logout failed")
		}
		return c.NoContent(http.StatusNoContent)
	}
	return jsonError(c, http.StatusBadRequest, "provide Authorization header or refresh_token")
}

// Me echoes the caller's identity from the access token.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": uid,
		"role":    middleware.Role(c),
	})
}

// issue signs an access token and stores a fresh refresh token.
func (h *AuthHandler) issue(ctx context.Context, u userPart) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, errors.New("issue access failed")
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, errors.New("issue refresh failed")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, errors.New("save refresh failed")
	}
	return authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}
