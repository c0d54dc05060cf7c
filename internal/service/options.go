package service

import "time"

type EngineOption func(*Engine)

// NotifyPause sets the delay between consecutive notifications in a cycle.
func NotifyPause(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.notifyPause = d
	}
}

// BatchLimit caps how many pending notifications one cycle fetches.
// Zero means no cap.
func BatchLimit(n uint64) EngineOption {
	return func(e *Engine) {
		e.batchLimit = n
	}
}

type LoopOption func(*Loop)

// CycleDelay sets the pause between dispatch cycles.
func CycleDelay(d time.Duration) LoopOption {
	return func(l *Loop) {
		l.cycleDelay = d
	}
}

// WithClock overrides the loop's time source, used in tests.
func WithClock(now func() time.Time) LoopOption {
	return func(l *Loop) {
		l.now = now
	}
}
