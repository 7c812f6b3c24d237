package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/logging"
	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) SweepExpiredTickets(context.Context) (int64, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestRunTicketSweeper_TicksUntilCancelled(t *testing.T) {
	for _, sweepErr := range []error{nil, errors.New("db down")} {
		s := &countingSweeper{err: sweepErr}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		go func() {
			RunTicketSweeper(ctx, s, 5*time.Millisecond, logging.NewDiscardLogger())
			close(done)
		}()

		assert.Eventually(t, func() bool { return s.calls.Load() >= 2 }, time.Second, time.Millisecond)
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("sweeper did not stop")
		}
	}
}
