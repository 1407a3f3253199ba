package handlers

import (
	"errors"
	"net/http"
	"time"

	"sentinel/internal/common"
	"sentinel/internal/models"
	"sentinel/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CookieConfig controls the session cookie set at login.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandlers handles registration, activation and session endpoints
type AuthHandlers struct {
	accounts services.AccountService
	sessions services.SessionService
	cookie   CookieConfig
}

func NewAuthHandlers(accounts services.AccountService, sessions services.SessionService, cookie CookieConfig) *AuthHandlers {
	return &AuthHandlers{
		accounts: accounts,
		sessions: sessions,
		cookie:   cookie,
	}
}

// LoginResponse is the body returned by a successful login.
type LoginResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Roles    []string  `json:"roles"`
}

// Register handles POST /api/register
func (h *AuthHandlers) Register(c echo.Context) error {
	req := services.NewRegistrationRequest()
	if err := decodeJSON(c, req); err != nil {
		return err
	}
	if _, err := h.accounts.Register(c.Request().Context(), req); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, common.MessageResponse{
		Message: "Registration successful. Please check your email to activate your account.",
	})
}

// Activate handles GET /api/activate/:token
func (h *AuthHandlers) Activate(c echo.Context) error {
	if err := h.accounts.Activate(c.Request().Context(), c.Param("token")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, common.MessageResponse{Message: "Account activated successfully."})
}

// Login handles POST /api/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	token, expiresAt, err := h.sessions.Issue(user)
	if err != nil {
		return err
	}
	c.SetCookie(h.sessionCookie(token, expiresAt))

	return c.JSON(http.StatusOK, LoginResponse{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Roles:    models.EffectiveRoles(user.Roles),
	})
}

// Logout handles POST /api/logout. It always succeeds.
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if cookie, err := c.Cookie(h.cookie.Name); err == nil && cookie.Value != "" {
		if claims, err := h.sessions.Parse(ctx, cookie.Value); err == nil {
			if err := h.sessions.Revoke(ctx, claims); err != nil {
				c.Logger().Warnf("failed to revoke session: %v", err)
			}
		}
	}
	expired := h.sessionCookie("", time.Unix(0, 0))
	expired.MaxAge = -1
	c.SetCookie(expired)
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /api/me
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required.")
	}
	user, err := h.accounts.CurrentUser(ctx, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required.")
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandlers) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
