package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/delivery_platform/pkg/logging"
	authmw "github.com/Skotchmaster/delivery_platform/pkg/middleware/auth"
	"github.com/Skotchmaster/delivery_platform/pkg/tokens"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/service"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/transport"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/util"
)

type AdminHTTP struct {
	Svc *service.AuthService
}

func (h *AdminHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_users")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.ListUsers(ctx, page, size)
	if err != nil {
		return httpError(l, "list_users_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserPageResponse(res))
}

func (h *AdminHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_user")

	claims, ok := authmw.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	var req transport.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("update_user_failed", "status", 400, "error", err)
		return err
	}

	upd := service.UserUpdate{FullName: req.FullName, IsActive: req.IsActive}
	if req.Role != nil {
		role, _ := tokens.ParseRole(*req.Role)
		upd.Role = &role
	}

	user, err := h.Svc.UpdateUser(ctx, claims, c.Param("id"), upd)
	if err != nil {
		return httpError(l, "update_user_failed", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AdminHTTP) DeactivateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.deactivate_user")

	claims, ok := authmw.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	user, err := h.Svc.DeactivateUser(ctx, claims, c.Param("id"))
	if err != nil {
		return httpError(l, "deactivate_user_failed", err)
	}
	return c.JSON(http.StatusOK, user)
}
