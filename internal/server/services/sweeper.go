package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/logging"
)

type ticketSweeper interface {
	SweepExpiredTickets(ctx context.Context) (int64, error)
}

// RunTicketSweeper deletes expired login tickets every interval until ctx
// is done.
func RunTicketSweeper(ctx context.Context, s ticketSweeper, interval time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepExpiredTickets(ctx)
			if err != nil {
				logger.Error(ctx, "ticket sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info(ctx, "expired tickets swept", "count", n)
			}
		}
	}
}
