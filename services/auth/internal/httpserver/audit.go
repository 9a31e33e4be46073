package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/delivery_platform/pkg/events"
	"github.com/Skotchmaster/delivery_platform/pkg/logging"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/transport"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/util"
)

type AuditSearcher interface {
	Search(ctx context.Context, q events.AuditQuery) (int64, []events.Event, error)
}

type AuditHTTP struct {
	Audit AuditSearcher
}

// Search lists the audit trail, optionally narrowed by ?user_id= and ?type=.
func (h *AuditHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.audit")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}
	from, size := util.Calculate(page, util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))

	total, evs, err := h.Audit.Search(ctx, events.AuditQuery{
		UserID: c.QueryParam("user_id"),
		Type:   c.QueryParam("type"),
		From:   from,
		Size:   size,
	})
	if err != nil {
		l.Error("audit_search_failed", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "audit store unavailable")
	}
	return c.JSON(http.StatusOK, transport.AuditPageResponse{
		Data: evs,
		Meta: transport.NewPageMeta(page, size, total),
	})
}
