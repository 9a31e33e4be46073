package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/delivery_platform/pkg/logging"
)

type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// RunLedgerPurge deletes expired ledger rows every interval until ctx is done.
func RunLedgerPurge(ctx context.Context, p Purger, interval time.Duration, now func() time.Time) {
	l := logging.FromContext(ctx).With("job", "ledger_purge")
	if now == nil {
		now = time.Now
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx, now())
			if err != nil {
				l.Error("ledger_purge_failed", "error", err)
				continue
			}
			if n > 0 {
				l.Info("ledger_purged", "rows", n)
			}
		}
	}
}
