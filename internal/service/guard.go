package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// MarkerStore persists the shared run marker the guard reads and stamps.
type MarkerStore interface {
	LastRun(ctx context.Context) (*time.Time, error)
	RecordRun(ctx context.Context, ts time.Time) error
}

// Guard keeps two dispatcher processes from running concurrently: a fresh
// run marker means another instance owns the loop and this one should
// stand down.
type Guard struct {
	marker MarkerStore
	window time.Duration
	log    *zap.Logger
}

func NewGuard(marker MarkerStore, window time.Duration, log *zap.Logger) *Guard {
	return &Guard{marker: marker, window: window, log: log}
}

// ShouldSkip reports whether another dispatcher ran within the guard
// window. A marker read failure is logged and treated as "run": refusing
// to dispatch on a store hiccup would strand the backlog.
func (g *Guard) ShouldSkip(ctx context.Context, now time.Time) bool {
	last, err := g.marker.LastRun(ctx)
	if err != nil {
		g.log.Error("reading run marker", zap.Error(err))
		return false
	}
	if last == nil {
		return false
	}

	elapsed := now.Sub(*last)
	if elapsed <= g.window {
		g.log.Info("recent run detected, standing down",
			zap.Duration("elapsed", elapsed),
			zap.Duration("window", g.window))
		return true
	}

	return false
}

// RecordRun stamps the marker at the start of a cycle so peers observe
// this instance as active for the whole window.
func (g *Guard) RecordRun(ctx context.Context, now time.Time) {
	if err := g.marker.RecordRun(ctx, now); err != nil {
		g.log.Error("stamping run marker", zap.Error(err))
	}
}
