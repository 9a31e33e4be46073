package middleware

import (
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/delivery_platform/pkg/middleware/auth"
)

// GatedRoute names a method and a path.Match pattern that only privileged
// roles may call.
type GatedRoute struct {
	Method  string
	Pattern string
}

func (r GatedRoute) matches(method, p string) bool {
	if r.Method != method {
		return false
	}
	ok, _ := path.Match(r.Pattern, p)
	return ok
}

// PrivilegedFor applies RequirePrivileged to requests matching one of routes
// and lets everything else through to the upstream. It must run after the
// bearer middleware.
func PrivilegedFor(routes ...GatedRoute) echo.MiddlewareFunc {
	gate := authmw.RequirePrivileged()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		gated := gate(next)
		return func(c echo.Context) error {
			req := c.Request()
			p := req.URL.Path
			if len(p) > 1 {
				p = strings.TrimSuffix(p, "/")
			}
			for _, r := range routes {
				if r.matches(req.Method, p) {
					return gated(c)
				}
			}
			return next(c)
		}
	}
}
