package middleware

import (
	"net/http"

	"sentinel/internal/common"
	"sentinel/internal/services"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// SessionContextKey holds the parsed *services.SessionClaims on the echo context.
const SessionContextKey = "session"

// Session authenticates requests from the session cookie and puts the user
// id and roles into the request context.
func Session(sessions services.SessionService, cookieName string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + cookieName,
		ContextKey:  SessionContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return sessions.Parse(c.Request().Context(), auth)
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := c.Get(SessionContextKey).(*services.SessionClaims)
			if !ok {
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				return
			}
			ctx := common.WithUser(c.Request().Context(), userID)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required.").SetInternal(err)
		},
	})
}
