package scheduler

import (
	"context"
	"time"

	"jobpay-engine/internal/logger"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then on every tick until ctx is done.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	log := logger.For("scheduler")

	t := time.NewTicker(interval)
	defer t.Stop()

	// run immediately
	go func() {
		if err := task(ctx); err != nil {
			log.Error().Str("task", name).Err(err).Msg("task failed")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := task(ctx); err != nil {
				log.Error().Str("task", name).Err(err).Msg("task failed")
			}
		}
	}
}
