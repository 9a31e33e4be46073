package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/delivery_platform/pkg/logging"
	authmw "github.com/Skotchmaster/delivery_platform/pkg/middleware/auth"
	"github.com/Skotchmaster/delivery_platform/pkg/tokens"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/service"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

type normalizer interface {
	Normalize()
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, transport.Describe(err))
	}
	return nil
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return err
	}

	var role tokens.Role
	if req.Role != "" {
		role, _ = tokens.ParseRole(req.Role)
	}

	user, err := h.Svc.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Role:     role,
	})
	if err != nil {
		return httpError(l, "register_error", err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return httpError(l, "login_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewTokenResponse(res))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return httpError(l, "refresh_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewTokenResponse(res))
}

// Revoke takes the token to revoke from the Authorization header. It does not
// sit behind the revocation-aware middleware so that a repeated revoke of the
// same token still succeeds.
func (h *AuthHTTP) Revoke(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_revoke")

	token, err := tokens.ParseBearer(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		l.Warn("revoke_failed", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed authorization header")
	}

	if err := h.Svc.Revoke(ctx, token, ""); err != nil {
		return httpError(l, "revoke_failed", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Token revoked successfully"})
}

// Verify is the introspection endpoint other services call to check a token
// against the revocation ledger.
func (h *AuthHTTP) Verify(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_verify")

	token, err := tokens.ParseBearer(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		l.Warn("verify_failed", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed authorization header")
	}

	claims, err := h.Svc.Authenticate(ctx, token, tokens.KindAccess)
	if err != nil {
		return httpError(l, "verify_failed", err)
	}
	return c.JSON(http.StatusOK, transport.IntrospectionResponse{
		Active:   true,
		Subject:  claims.Subject,
		Username: claims.Username,
		Role:     string(claims.Role),
		Exp:      claims.ExpiresAt.Unix(),
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_me")

	claims, ok := authmw.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	user, err := h.Svc.GetUser(ctx, claims.Subject)
	if err != nil {
		return httpError(l, "me_failed", err)
	}
	return c.JSON(http.StatusOK, user)
}
