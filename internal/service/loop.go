package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Loop runs the dispatcher until its context is cancelled: a one-time
// guard check on startup, then cycle / delay forever.
type Loop struct {
	guard  *Guard
	engine *Engine
	log    *zap.Logger

	cycleDelay time.Duration
	now        func() time.Time
}

func NewLoop(guard *Guard, engine *Engine, log *zap.Logger, opts ...LoopOption) *Loop {
	l := &Loop{
		guard:      guard,
		engine:     engine,
		log:        log,
		cycleDelay: 2 * time.Second,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Run blocks until ctx is done. When another instance holds the run
// marker it returns immediately with no error so the process exits clean.
func (l *Loop) Run(ctx context.Context) error {
	if l.guard.ShouldSkip(ctx, l.now()) {
		l.log.Info("another dispatcher is active, exiting")
		return nil
	}

	l.log.Info("dispatcher loop started", zap.Duration("cycle_delay", l.cycleDelay))

	for {
		if ctx.Err() != nil {
			l.log.Info("dispatcher loop stopped")
			return nil
		}

		l.guard.RecordRun(ctx, l.now())
		l.engine.RunCycle(ctx)

		if !sleep(ctx, l.cycleDelay) {
			l.log.Info("dispatcher loop stopped")
			return nil
		}
	}
}
