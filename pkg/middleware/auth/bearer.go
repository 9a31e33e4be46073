package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/delivery_platform/pkg/logging"
	"github.com/Skotchmaster/delivery_platform/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxClaims = "claims"
	CtxToken  = "token"
)

var (
	errWrongKind = errors.New("wrong token kind")
	errRevoked   = errors.New("token revoked")
)

type Verifier interface {
	Verify(token string) (*tokens.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type Config struct {
	Verifier Verifier
	// Revocation is optional; when nil only signature and expiry are checked.
	Revocation RevocationChecker
	// Kind defaults to tokens.KindAccess.
	Kind    tokens.Kind
	Skipper func(c echo.Context) bool
}

type revocationError struct{ err error }

func (e *revocationError) Error() string { return "revocation check: " + e.err.Error() }
func (e *revocationError) Unwrap() error { return e.err }

// Middleware rejects requests without a valid "Authorization: Bearer" token
// and stores the decoded claims in the echo context.
func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.Verifier == nil {
		panic("auth middleware: verifier is required")
	}
	kind := cfg.Kind
	if kind == "" {
		kind = tokens.KindAccess
	}

	jwtMw := echojwt.WithConfig(echojwt.Config{
		ContextKey:  CtxClaims,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			claims, err := cfg.Verifier.Verify(auth)
			if err != nil {
				return nil, err
			}
			if claims.TokenKind() != kind {
				return nil, errWrongKind
			}
			if cfg.Revocation != nil {
				revoked, err := cfg.Revocation.IsRevoked(c.Request().Context(), auth)
				if err != nil {
					return nil, &revocationError{err: err}
				}
				if revoked {
					return nil, errRevoked
				}
			}
			c.Set(CtxToken, auth)
			setUserContext(c, claims)
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context()).With("mw", "bearer_auth")
			var rerr *revocationError
			if errors.As(err, &rerr) {
				l.Error("auth_failed", "status", 503, "reason", "revocation check unavailable", "error", rerr.err)
				return echo.NewHTTPError(http.StatusServiceUnavailable, "authorization temporarily unavailable")
			}
			l.Warn("auth_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		h := jwtMw(next)
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}
			if _, err := tokens.ParseBearer(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
				logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", 401, "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed authorization header")
			}
			return h(c)
		}
	}
}

type ValidatorFunc func(claims *tokens.Claims) error

// Require runs validator against the claims stored by Middleware.
func Require(validator ValidatorFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}
			if err := validator(claims); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func RequireRole(roles ...tokens.Role) echo.MiddlewareFunc {
	return Require(func(claims *tokens.Claims) error {
		if !slices.Contains(roles, claims.Role) {
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
		return nil
	})
}

// RequirePrivileged admits ADMIN and SUPERVISOR.
func RequirePrivileged() echo.MiddlewareFunc {
	return RequireRole(tokens.RoleAdmin, tokens.RoleSupervisor)
}

func ClaimsFrom(c echo.Context) (*tokens.Claims, bool) {
	claims, ok := c.Get(CtxClaims).(*tokens.Claims)
	return claims, ok && claims != nil
}

func TokenFrom(c echo.Context) string {
	tok, _ := c.Get(CtxToken).(string)
	return tok
}

func setUserContext(c echo.Context, claims *tokens.Claims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)
}
