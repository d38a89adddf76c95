// Package scheduler runs the daily pipeline while the engine is serving.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"hireassist-engine/internal/logging"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then on every tick until ctx ends. A tick
// that arrives while the previous run is still going is skipped.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	log := logging.Component("scheduler").With(zap.String("task", name))
	var running atomic.Bool

	run := func() {
		if !running.CompareAndSwap(false, true) {
			log.Warn("previous run still active; tick skipped")
			return
		}
		go func() {
			defer running.Store(false)
			start := time.Now()
			if err := task(ctx); err != nil {
				log.Error("run failed", zap.Error(err), zap.Duration("took", time.Since(start)))
				return
			}
			log.Info("run finished", zap.Duration("took", time.Since(start)))
		}()
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
