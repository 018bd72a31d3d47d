package jobs

import (
	"context"
	"sync"
	"time"

	"pet-adoption-hub/internal/platform/logger"
)

type RejectedPurger interface {
	PurgeOldRejected(ctx context.Context, maxAgeDays int) (int, error)
}

// Retention purga solicitudes rechazadas viejas: una vez al arrancar y luego cada Interval.
type Retention struct {
	purger     RejectedPurger
	interval   time.Duration
	maxAgeDays int
	log        logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRetention(purger RejectedPurger, interval time.Duration, maxAgeDays int, log logger.Logger) *Retention {
	if log == nil {
		log = logger.NewNop()
	}
	return &Retention{
		purger:     purger,
		interval:   interval,
		maxAgeDays: maxAgeDays,
		log:        log.With(map[string]any{"job": "retention"}),
	}
}

// Start es no bloqueante. Llamarlo dos veces no lanza un segundo loop.
func (j *Retention) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.done = make(chan struct{})

	go j.loop(ctx, j.done)
}

// Stop cancela el loop y espera a que termine la corrida en curso.
func (j *Retention) Stop() {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (j *Retention) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	j.RunOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

func (j *Retention) RunOnce(ctx context.Context) {
	start := time.Now()
	n, err := j.purger.PurgeOldRejected(ctx, j.maxAgeDays)
	if err != nil {
		j.log.Error("purge rejected requests failed", map[string]any{"purged": n, "error": err})
		return
	}
	j.log.Info("purged rejected requests", map[string]any{
		"purged":       n,
		"max_age_days": j.maxAgeDays,
		"took_ms":      time.Since(start).Milliseconds(),
	})
}
