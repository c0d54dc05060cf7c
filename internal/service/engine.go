package service

import (
	"context"
	"encoding/json"
	"time"

	"pushdispatcher/internal/entity"
	"pushdispatcher/pkg/metric"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationStore is the slice of notification persistence the engine
// needs: claiming pending work and recording terminal outcomes.
type NotificationStore interface {
	FetchPending(ctx context.Context, limit uint64) ([]entity.Notification, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.Status, processedAt *time.Time) error
}

type DeviceStore interface {
	FetchActive(ctx context.Context, userID uuid.UUID) ([]entity.Device, error)
}

type AttemptStore interface {
	Create(ctx context.Context, notificationID, deviceID uuid.UUID, token string) (uuid.UUID, error)
	RecordOutcome(ctx context.Context, id uuid.UUID, status entity.SendStatus, result json.RawMessage, errorMessage string, retryCount int) error
}

// DeliveryResult is what a gateway reports back for one accepted push.
type DeliveryResult struct {
	MessageID string `json:"message_id"`
}

// Gateway delivers one notification to one device token.
type Gateway interface {
	Send(ctx context.Context, n *entity.Notification, token string) (*DeliveryResult, error)
}

// CycleStats summarizes one dispatch cycle for logging and tests.
type CycleStats struct {
	Fetched   int
	Processed int
	Failed    int
	Attempts  int
	Sent      int
}

// Engine drains pending notifications: each one is fanned out to every
// active device of its user and settles as processed when at least one
// push went through, failed otherwise. Store and gateway errors are
// absorbed per notification so a bad row never stalls the cycle.
type Engine struct {
	notifications NotificationStore
	devices       DeviceStore
	attempts      AttemptStore
	gateway       Gateway
	log           *zap.Logger
	metrics       *metric.Engine

	notifyPause time.Duration
	batchLimit  uint64
}

func NewEngine(
	notifications NotificationStore,
	devices DeviceStore,
	attempts AttemptStore,
	gateway Gateway,
	log *zap.Logger,
	metrics *metric.Engine,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		notifications: notifications,
		devices:       devices,
		attempts:      attempts,
		gateway:       gateway,
		log:           log,
		metrics:       metrics,
		notifyPause:   time.Second,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RunCycle fetches the pending backlog and dispatches it. It never returns
// an error: a fetch failure produces an empty cycle and everything below
// that is handled per notification.
func (e *Engine) RunCycle(ctx context.Context) *CycleStats {
	start := time.Now()
	stats := &CycleStats{}

	defer func() {
		e.metrics.Cycles.Inc()
		e.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	}()

	pending, err := e.notifications.FetchPending(ctx, e.batchLimit)
	if err != nil {
		e.log.Error("fetching pending notifications", zap.Error(err))
		return stats
	}

	stats.Fetched = len(pending)
	if len(pending) == 0 {
		return stats
	}

	e.log.Info("dispatch cycle started", zap.Int("pending", len(pending)))

	for i := range pending {
		if ctx.Err() != nil {
			e.log.Info("dispatch cycle interrupted",
				zap.Int("remaining", len(pending)-i))
			break
		}

		e.dispatch(ctx, &pending[i], stats)

		if i < len(pending)-1 && !sleep(ctx, e.notifyPause) {
			e.log.Info("dispatch cycle interrupted",
				zap.Int("remaining", len(pending)-i-1))
			break
		}
	}

	e.log.Info("dispatch cycle finished",
		zap.Int("fetched", stats.Fetched),
		zap.Int("processed", stats.Processed),
		zap.Int("failed", stats.Failed),
		zap.Int("attempts", stats.Attempts),
		zap.Int("sent", stats.Sent))

	return stats
}

func (e *Engine) dispatch(ctx context.Context, n *entity.Notification, stats *CycleStats) {
	log := e.log.With(
		zap.String("notification_id", n.ID.String()),
		zap.String("user_id", n.UserID.String()))

	if err := e.notifications.UpdateStatus(ctx, n.ID, entity.StatusProcessing, nil); err != nil {
		log.Error("claiming notification", zap.Error(err))
	}

	devices, err := e.devices.FetchActive(ctx, n.UserID)
	if err != nil {
		log.Error("fetching devices", zap.Error(err))
		devices = nil
	}

	anySent := false
	for i := range devices {
		if e.sendToDevice(ctx, n, &devices[i], stats, log) {
			anySent = true
		}
	}

	if anySent {
		now := time.Now()
		if err := e.notifications.UpdateStatus(ctx, n.ID, entity.StatusProcessed, &now); err != nil {
			log.Error("marking notification processed", zap.Error(err))
		}
		stats.Processed++
		e.metrics.Notifications.WithLabelValues("processed").Inc()
		return
	}

	if err := e.notifications.UpdateStatus(ctx, n.ID, entity.StatusFailed, nil); err != nil {
		log.Error("marking notification failed", zap.Error(err))
	}
	stats.Failed++
	e.metrics.Notifications.WithLabelValues("failed").Inc()
	log.Warn("notification failed", zap.Int("devices", len(devices)))
}

// sendToDevice records one attempt and pushes through the gateway. A
// failure to create the attempt row excludes the device from this cycle;
// the next pending fetch will not retry it because the notification still
// settles on the remaining devices.
func (e *Engine) sendToDevice(ctx context.Context, n *entity.Notification, d *entity.Device, stats *CycleStats, log *zap.Logger) bool {
	log = log.With(
		zap.String("device_id", d.ID.String()),
		zap.String("device", d.DisplayName()))

	attemptID, err := e.attempts.Create(ctx, n.ID, d.ID, d.Token)
	if err != nil {
		log.Error("creating send attempt", zap.Error(err))
		return false
	}

	stats.Attempts++

	result, err := e.gateway.Send(ctx, n, d.Token)
	if err != nil {
		e.metrics.Attempts.WithLabelValues("failed").Inc()
		log.Warn("push rejected", zap.Error(err))
		if err := e.attempts.RecordOutcome(ctx, attemptID, entity.SendFailed, nil, err.Error(), 0); err != nil {
			log.Error("recording failed attempt", zap.Error(err))
		}
		return false
	}

	payload, err := json.Marshal(result)
	if err != nil {
		payload = nil
	}
	if err := e.attempts.RecordOutcome(ctx, attemptID, entity.SendSent, payload, "", 0); err != nil {
		log.Error("recording sent attempt", zap.Error(err))
	}

	stats.Sent++
	e.metrics.Attempts.WithLabelValues("sent").Inc()
	log.Info("push accepted", zap.String("message_id", result.MessageID))

	return true
}

// sleep waits for d or until ctx is done, reporting whether the full pause
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
