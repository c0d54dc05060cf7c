package service

import (
	"context"
	"fmt"

	"pushdispatcher/internal/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// InboxStore is the read-side slice of notification persistence.
type InboxStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int, unreadOnly bool) ([]entity.Notification, int64, int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID, deviceID string) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, deviceID string) (int64, error)
	Stats(ctx context.Context, userID uuid.UUID) (*entity.Stats, error)
}

// DeliveryStore reads the send attempts recorded for a notification.
type DeliveryStore interface {
	ListByNotification(ctx context.Context, notificationID uuid.UUID) ([]entity.SendAttempt, error)
}

// UnreadCounterCache fronts the unread badge counter. All methods may fail
// without affecting correctness; the store stays authoritative.
type UnreadCounterCache interface {
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, bool, error)
	SetUnreadCount(ctx context.Context, userID uuid.UUID, count int64) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// InboxPage is one page of a user's notification feed.
type InboxPage struct {
	Items       []entity.Notification
	Page        int
	TotalPages  int
	TotalItems  int64
	UnreadCount int64
}

// Inbox serves the per-user notification feed and read-state mutations.
type Inbox struct {
	store    InboxStore
	delivery DeliveryStore
	cache    UnreadCounterCache
	log      *zap.Logger
}

func NewInbox(store InboxStore, delivery DeliveryStore, cache UnreadCounterCache, log *zap.Logger) *Inbox {
	return &Inbox{store: store, delivery: delivery, cache: cache, log: log}
}

// Get returns one notification with its recorded send attempts. A
// notification owned by another user is reported as not found.
func (s *Inbox) Get(ctx context.Context, id, userID uuid.UUID) (*entity.Notification, []entity.SendAttempt, error) {
	const op = "service.Inbox.Get"

	n, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if n.UserID != userID {
		return nil, nil, fmt.Errorf("%s: %w", op, entity.ErrNotificationNotFound)
	}

	attempts, err := s.delivery.ListByNotification(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return n, attempts, nil
}

func (s *Inbox) List(ctx context.Context, userID uuid.UUID, page, limit int, unreadOnly bool) (*InboxPage, error) {
	const op = "service.Inbox.List"

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, total, unread, err := s.store.ListByUser(ctx, userID, page, limit, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &InboxPage{
		Items:       items,
		Page:        page,
		TotalPages:  totalPages,
		TotalItems:  total,
		UnreadCount: unread,
	}, nil
}

// MarkRead flags one notification as read. It is idempotent: marking an
// already-read notification succeeds without touching the row. A
// notification owned by another user is reported as not found.
func (s *Inbox) MarkRead(ctx context.Context, id, userID uuid.UUID, deviceID string) error {
	const op = "service.Inbox.MarkRead"

	n, err := s.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n.UserID != userID {
		return fmt.Errorf("%s: %w", op, entity.ErrNotificationNotFound)
	}
	if n.IsRead {
		return nil
	}

	if _, err := s.store.MarkRead(ctx, id, deviceID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, userID)
	return nil
}

// MarkAllRead flags every unread notification of userID and returns how
// many changed.
func (s *Inbox) MarkAllRead(ctx context.Context, userID uuid.UUID, deviceID string) (int64, error) {
	const op = "service.Inbox.MarkAllRead"

	changed, err := s.store.MarkAllRead(ctx, userID, deviceID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if changed > 0 {
		s.invalidate(ctx, userID)
	}
	return changed, nil
}

// UnreadCount serves the badge counter, cache first.
func (s *Inbox) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "service.Inbox.UnreadCount"

	if count, ok, err := s.cache.UnreadCount(ctx, userID); err != nil {
		s.log.Warn("unread cache read failed", zap.Error(err))
	} else if ok {
		return count, nil
	}

	count, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.SetUnreadCount(ctx, userID, count); err != nil {
		s.log.Warn("unread cache write failed", zap.Error(err))
	}

	return count, nil
}

func (s *Inbox) Stats(ctx context.Context, userID uuid.UUID) (*entity.Stats, error) {
	const op = "service.Inbox.Stats"

	stats, err := s.store.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

func (s *Inbox) invalidate(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("unread cache invalidation failed", zap.Error(err))
	}
}
