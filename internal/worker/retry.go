package worker

// retry.go
// Background loop that re-pushes events the dispatcher could not deliver.
// Uses the circuit breaker to avoid hammering a downed Redis.

import (
	"context"
	"time"

	"repairpos/internal/infra"

	"github.com/rs/zerolog/log"
)

const DefaultRetryInterval = 30 * time.Second

// RunRetry ticks every interval and flushes the retry buffer. It returns nil
// when ctx is cancelled.
func (d *Dispatcher) RunRetry(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Msg("dispatcher retry: started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("pending", d.Pending()).Msg("dispatcher retry: shutting down")
			return nil
		case <-ticker.C:
			d.flush(ctx)
		}
	}
}

// flush pushes buffered events in order and stops at the first failure.
func (d *Dispatcher) flush(ctx context.Context) int {
	// If CB is open, skip entirely
	if d.cb.State() == infra.CBOpen {
		log.Debug().Msg("dispatcher retry: circuit breaker is open, skipping tick")
		return 0
	}

	events := d.takePending()
	if len(events) == 0 {
		return 0
	}

	for i, data := range events {
		if err := d.push(ctx, data); err != nil {
			d.requeueFront(events[i:])
			log.Warn().Err(err).Int("sent", i).Int("remaining", len(events)-i).
				Msg("dispatcher retry: flush interrupted")
			return i
		}
	}
	log.Info().Int("count", len(events)).Msg("dispatcher retry: buffered events delivered")
	return len(events)
}
