package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/delivery_platform/gateway/internal/middleware"
	authmw "github.com/Skotchmaster/delivery_platform/pkg/middleware/auth"
)

type Deps struct {
	AuthURL     string
	PedidosURL  string
	FlotaURL    string
	FacturasURL string

	// Verifier checks signature and expiry locally; Revocation asks the
	// auth service whether the token is still active.
	Verifier   authmw.Verifier
	Revocation authmw.RevocationChecker

	Logger *slog.Logger
}

// privilegedRoutes are the calls reserved to ADMIN and SUPERVISOR. Every other
// authenticated call is authorized by the upstream itself.
var privilegedRoutes = []middleware.GatedRoute{
	{Method: http.MethodPatch, Pattern: "/api/pedidos/*"},
	{Method: http.MethodPost, Pattern: "/api/flota/repartidores"},
	{Method: http.MethodPost, Pattern: "/api/flota/vehiculos"},
}

func Register(e *echo.Echo, d *Deps) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, m := range middleware.Common(logger) {
		e.Use(m)
	}

	authProxy, err := newProxy("auth", d.AuthURL)
	if err != nil {
		return err
	}
	pedidosProxy, err := newProxy("pedidos", d.PedidosURL)
	if err != nil {
		return err
	}
	flotaProxy, err := newProxy("flota", d.FlotaURL)
	if err != nil {
		return err
	}
	facturasProxy, err := newProxy("facturas", d.FacturasURL)
	if err != nil {
		return err
	}

	e.Any("/api/auth", authProxy)
	e.Any("/api/auth/*", authProxy)

	api := e.Group("/api",
		authmw.Middleware(authmw.Config{Verifier: d.Verifier, Revocation: d.Revocation}),
		middleware.ForwardIdentity(),
		middleware.PrivilegedFor(privilegedRoutes...),
	)

	for prefix, proxy := range map[string]echo.HandlerFunc{
		"/pedidos":  pedidosProxy,
		"/flota":    flotaProxy,
		"/facturas": facturasProxy,
	} {
		api.Any(prefix, proxy)
		api.Any(prefix+"/*", proxy)
	}

	return nil
}
