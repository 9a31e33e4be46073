package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/delivery_platform/pkg/middleware/auth"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/service"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/transport"
)

type Deps struct {
	Svc *service.AuthService
	// Ready reports whether dependencies such as the database are reachable.
	Ready func(ctx context.Context) error
	// Audit is nil when no Elasticsearch is configured; /audit is then not served.
	Audit AuditSearcher
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = transport.NewValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	authHandler := &AuthHTTP{Svc: d.Svc}
	adminHandler := &AdminHTTP{Svc: d.Svc}

	bearer := authmw.Middleware(authmw.Config{
		Verifier:   d.Svc.Codec,
		Revocation: d.Svc,
	})

	api := e.Group("/api/auth")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/token/refresh", authHandler.Refresh)
	api.POST("/token/revoke", authHandler.Revoke)
	api.GET("/token/verify", authHandler.Verify)

	private := api.Group("", bearer)
	private.GET("/me", authHandler.Me)

	admin := api.Group("/users", bearer, authmw.RequirePrivileged())
	admin.GET("", adminHandler.ListUsers)
	admin.PATCH("/:id", adminHandler.UpdateUser)
	admin.DELETE("/:id", adminHandler.DeactivateUser)

	if d.Audit != nil {
		auditHandler := &AuditHTTP{Audit: d.Audit}
		api.GET("/audit", auditHandler.Search, bearer, authmw.RequirePrivileged())
	}
}
