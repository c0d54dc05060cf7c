package gateway

import (
	"context"
	"fmt"
	"time"

	"pushdispatcher/internal/entity"
	"pushdispatcher/internal/service"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// FCMSender delivers pushes through Firebase Cloud Messaging.
type FCMSender struct {
	client  *messaging.Client
	log     *zap.Logger
	limiter *rate.Limiter
}

type FCMOption func(*FCMSender)

// SendRate throttles outgoing pushes to n per second. Zero leaves the
// sender unthrottled.
func SendRate(n float64) FCMOption {
	return func(s *FCMSender) {
		if n > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

func NewFCMSender(ctx context.Context, credentialsFile string, log *zap.Logger, opts ...FCMOption) (*FCMSender, error) {
	const op = "gateway.NewFCMSender"

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("%s: initializing app: %w", op, err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: messaging client: %w", op, err)
	}

	s := &FCMSender{client: client, log: log}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Send pushes one notification to one device token and returns the FCM
// message id on acceptance.
func (s *FCMSender) Send(ctx context.Context, n *entity.Notification, token string) (*service.DeliveryResult, error) {
	const op = "gateway.FCMSender.Send"

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limit wait: %w", op, err)
		}
	}

	start := time.Now()
	id, err := s.client.Send(ctx, buildMessage(n, token))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("fcm send accepted",
		zap.String("message_id", id),
		zap.Duration("took", time.Since(start)))

	return &service.DeliveryResult{MessageID: id}, nil
}

// buildMessage maps a notification onto the FCM wire shape. FCM data
// values must be strings, so payload values are coerced to their text
// form; a notification without a payload carries an empty data map.
func buildMessage(n *entity.Notification, token string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: n.Data.Strings(),
	}
}
