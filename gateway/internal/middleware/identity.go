package middleware

import (
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/delivery_platform/pkg/middleware/auth"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// StripIdentity drops identity headers sent by the client. Only
// ForwardIdentity may set them, after the token has been verified.
func StripIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header
			h.Del(HeaderUserID)
			h.Del(HeaderUserRole)
			return next(c)
		}
	}
}

// ForwardIdentity copies the verified subject and role into request headers
// for the upstream service. It must run after the bearer middleware.
func ForwardIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, ok := authmw.ClaimsFrom(c); ok {
				h := c.Request().Header
				h.Set(HeaderUserID, claims.Subject)
				h.Set(HeaderUserRole, string(claims.Role))
			}
			return next(c)
		}
	}
}
