package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pushdispatcher/internal/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeInboxStore struct {
	byID        map[uuid.UUID]*entity.Notification
	listItems   []entity.Notification
	listTotal   int64
	listUnread  int64
	unreadCount int64
	unreadErr   error

	markedRead    []uuid.UUID
	markedAllFor  []uuid.UUID
	markAllResult int64
}

func (f *fakeInboxStore) GetByID(_ context.Context, id uuid.UUID) (*entity.Notification, error) {
	n, ok := f.byID[id]
	if !ok {
		return nil, entity.ErrDataNotFound
	}
	return n, nil
}

func (f *fakeInboxStore) ListByUser(_ context.Context, _ uuid.UUID, _, _ int, _ bool) ([]entity.Notification, int64, int64, error) {
	return f.listItems, f.listTotal, f.listUnread, nil
}

func (f *fakeInboxStore) UnreadCount(_ context.Context, _ uuid.UUID) (int64, error) {
	if f.unreadErr != nil {
		return 0, f.unreadErr
	}
	return f.unreadCount, nil
}

func (f *fakeInboxStore) MarkRead(_ context.Context, id uuid.UUID, _ string) (bool, error) {
	f.markedRead = append(f.markedRead, id)
	return true, nil
}

func (f *fakeInboxStore) MarkAllRead(_ context.Context, userID uuid.UUID, _ string) (int64, error) {
	f.markedAllFor = append(f.markedAllFor, userID)
	return f.markAllResult, nil
}

func (f *fakeInboxStore) Stats(_ context.Context, _ uuid.UUID) (*entity.Stats, error) {
	return &entity.Stats{Total: f.listTotal, Unread: f.listUnread}, nil
}

type fakeDeliveryStore struct {
	attempts []entity.SendAttempt
}

func (f *fakeDeliveryStore) ListByNotification(_ context.Context, _ uuid.UUID) ([]entity.SendAttempt, error) {
	return f.attempts, nil
}

type fakeUnreadCache struct {
	values      map[uuid.UUID]int64
	getErr      error
	invalidated []uuid.UUID
}

func newFakeUnreadCache() *fakeUnreadCache {
	return &fakeUnreadCache{values: make(map[uuid.UUID]int64)}
}

func (f *fakeUnreadCache) UnreadCount(_ context.Context, userID uuid.UUID) (int64, bool, error) {
	if f.getErr != nil {
		return 0, false, f.getErr
	}
	v, ok := f.values[userID]
	return v, ok, nil
}

func (f *fakeUnreadCache) SetUnreadCount(_ context.Context, userID uuid.UUID, count int64) error {
	f.values[userID] = count
	return nil
}

func (f *fakeUnreadCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	delete(f.values, userID)
	f.invalidated = append(f.invalidated, userID)
	return nil
}

func newTestInbox(store *fakeInboxStore, cache *fakeUnreadCache) *Inbox {
	return NewInbox(store, &fakeDeliveryStore{}, cache, zap.NewNop())
}

func TestInboxGetWithDelivery(t *testing.T) {
	userID := uuid.New()
	n := &entity.Notification{ID: uuid.New(), UserID: userID, Status: entity.StatusProcessed}
	store := &fakeInboxStore{byID: map[uuid.UUID]*entity.Notification{n.ID: n}}
	delivery := &fakeDeliveryStore{attempts: []entity.SendAttempt{
		{NotificationID: n.ID, Status: entity.SendSent},
		{NotificationID: n.ID, Status: entity.SendFailed, ErrorMessage: "token expired"},
	}}
	inbox := NewInbox(store, delivery, newFakeUnreadCache(), zap.NewNop())

	got, attempts, err := inbox.Get(context.Background(), n.ID, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != n.ID {
		t.Errorf("got id %v, want %v", got.ID, n.ID)
	}
	if len(attempts) != 2 {
		t.Errorf("got %d attempts, want 2", len(attempts))
	}
}

func TestInboxGetWrongOwner(t *testing.T) {
	n := &entity.Notification{ID: uuid.New(), UserID: uuid.New()}
	store := &fakeInboxStore{byID: map[uuid.UUID]*entity.Notification{n.ID: n}}
	inbox := newTestInbox(store, newFakeUnreadCache())

	_, _, err := inbox.Get(context.Background(), n.ID, uuid.New())
	if !errors.Is(err, entity.ErrNotificationNotFound) {
		t.Fatalf("Get by non-owner = %v, want ErrNotificationNotFound", err)
	}
}

func TestInboxListPagination(t *testing.T) {
	store := &fakeInboxStore{
		listItems:  make([]entity.Notification, 20),
		listTotal:  45,
		listUnread: 7,
	}
	inbox := newTestInbox(store, newFakeUnreadCache())

	page, err := inbox.List(context.Background(), uuid.New(), 1, 20, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if page.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", page.TotalPages)
	}
	if page.TotalItems != 45 {
		t.Errorf("TotalItems = %d, want 45", page.TotalItems)
	}
	if page.UnreadCount != 7 {
		t.Errorf("UnreadCount = %d, want 7", page.UnreadCount)
	}
}

func TestInboxListClampsPageParams(t *testing.T) {
	store := &fakeInboxStore{listTotal: 10}
	inbox := newTestInbox(store, newFakeUnreadCache())

	page, err := inbox.List(context.Background(), uuid.New(), -3, 0, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Page != 1 {
		t.Errorf("Page = %d, want clamped to 1", page.Page)
	}
}

func TestInboxMarkRead(t *testing.T) {
	userID := uuid.New()
	n := &entity.Notification{ID: uuid.New(), UserID: userID}
	store := &fakeInboxStore{byID: map[uuid.UUID]*entity.Notification{n.ID: n}}
	cache := newFakeUnreadCache()
	cache.values[userID] = 5
	inbox := newTestInbox(store, cache)

	if err := inbox.MarkRead(context.Background(), n.ID, userID, "device-1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	if len(store.markedRead) != 1 {
		t.Fatalf("marked %d rows, want 1", len(store.markedRead))
	}
	if _, ok := cache.values[userID]; ok {
		t.Error("unread counter still cached after mark-read")
	}
}

func TestInboxMarkReadIdempotent(t *testing.T) {
	userID := uuid.New()
	readAt := time.Now()
	n := &entity.Notification{ID: uuid.New(), UserID: userID, IsRead: true, ReadAt: &readAt}
	store := &fakeInboxStore{byID: map[uuid.UUID]*entity.Notification{n.ID: n}}
	inbox := newTestInbox(store, newFakeUnreadCache())

	if err := inbox.MarkRead(context.Background(), n.ID, userID, "device-1"); err != nil {
		t.Fatalf("MarkRead on read row: %v", err)
	}
	if len(store.markedRead) != 0 {
		t.Errorf("marked %d rows for an already-read notification, want 0", len(store.markedRead))
	}
}

func TestInboxMarkReadWrongOwner(t *testing.T) {
	owner := uuid.New()
	n := &entity.Notification{ID: uuid.New(), UserID: owner}
	store := &fakeInboxStore{byID: map[uuid.UUID]*entity.Notification{n.ID: n}}
	inbox := newTestInbox(store, newFakeUnreadCache())

	err := inbox.MarkRead(context.Background(), n.ID, uuid.New(), "device-1")
	if !errors.Is(err, entity.ErrNotificationNotFound) {
		t.Fatalf("MarkRead by non-owner = %v, want ErrNotificationNotFound", err)
	}
}

func TestInboxMarkAllRead(t *testing.T) {
	userID := uuid.New()
	store := &fakeInboxStore{markAllResult: 4}
	cache := newFakeUnreadCache()
	cache.values[userID] = 4
	inbox := newTestInbox(store, cache)

	updated, err := inbox.MarkAllRead(context.Background(), userID, "device-1")
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if updated != 4 {
		t.Errorf("updated = %d, want 4", updated)
	}
	if len(cache.invalidated) != 1 {
		t.Error("cache not invalidated after mark-all-read")
	}
}

func TestInboxMarkAllReadNothingToDo(t *testing.T) {
	store := &fakeInboxStore{markAllResult: 0}
	cache := newFakeUnreadCache()
	inbox := newTestInbox(store, cache)

	updated, err := inbox.MarkAllRead(context.Background(), uuid.New(), "")
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if updated != 0 {
		t.Errorf("updated = %d, want 0", updated)
	}
	if len(cache.invalidated) != 0 {
		t.Error("cache invalidated although nothing changed")
	}
}

func TestInboxUnreadCountCacheMissThenHit(t *testing.T) {
	userID := uuid.New()
	store := &fakeInboxStore{unreadCount: 9}
	cache := newFakeUnreadCache()
	inbox := newTestInbox(store, cache)

	count, err := inbox.UnreadCount(context.Background(), userID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 9 {
		t.Errorf("count = %d, want 9", count)
	}

	// Second call must be served from the cache.
	store.unreadErr = errors.New("store must not be hit")
	count, err = inbox.UnreadCount(context.Background(), userID)
	if err != nil {
		t.Fatalf("UnreadCount (cached): %v", err)
	}
	if count != 9 {
		t.Errorf("cached count = %d, want 9", count)
	}
}

func TestInboxUnreadCountSurvivesCacheFailure(t *testing.T) {
	store := &fakeInboxStore{unreadCount: 3}
	cache := newFakeUnreadCache()
	cache.getErr = errors.New("redis down")
	inbox := newTestInbox(store, cache)

	count, err := inbox.UnreadCount(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("UnreadCount with broken cache: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3 from store", count)
	}
}
