package handler

import (
	"context"
	"net/http"

	"github.com/jhalttu/textpipe/internal/store"
	"github.com/labstack/echo/v4"
)

type SessionUserReader interface {
	GetUserBySessionID(ctx context.Context, sessionID string) (*store.User, error)
}

type SessionCookieReader interface {
	GetSessionID(c echo.Context) (string, error)
}

// SessionMiddleware resolves the session cookie to a user and stores it on
// the request context. Requests without a valid session continue anonymously.
func SessionMiddleware(
	userService SessionUserReader,
	cookieService SessionCookieReader,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID, err := cookieService.GetSessionID(c)
			if err != nil {
				return next(c)
			}
			u, err := userService.GetUserBySessionID(c.Request().Context(), sessionID)
			if err != nil {
				return next(c)
			}
			c.Set("user", u)
			return next(c)
		}
	}
}

func IsAuthenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := getCtxUser(c)
		if user == nil {
			return newError(nil, http.StatusUnauthorized, "not logged in")
		}
		if user.PasswordChangedOn == nil || user.PasswordChangedOn.IsZero() {
			return newError(nil, http.StatusForbidden, "password must be changed")
		}
		return next(c)
	}
}

func RoleMiddleware(requiredRole store.Role) func(next echo.HandlerFunc) echo.HandlerFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := getCtxUser(c)
			if u == nil || int64(u.UserRoleID) < int64(requiredRole) {
				return newError(nil,
					http.StatusForbidden,
					"invalid permissions",
				)
			}
			return next(c)
		}
	}
}
