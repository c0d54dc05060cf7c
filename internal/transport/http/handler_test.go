package httpt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pushdispatcher/internal/entity"
	"pushdispatcher/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeInbox struct {
	page     *service.InboxPage
	delivery []entity.SendAttempt
	listErr  error
	markErr  error
	unread   int64
	stats    *entity.Stats
	markedID uuid.UUID
	allFor   uuid.UUID
}

func (f *fakeInbox) List(_ context.Context, _ uuid.UUID, _, _ int, _ bool) (*service.InboxPage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.page, nil
}

func (f *fakeInbox) Get(_ context.Context, id, _ uuid.UUID) (*entity.Notification, []entity.SendAttempt, error) {
	if f.listErr != nil {
		return nil, nil, f.listErr
	}
	return &entity.Notification{ID: id, Status: entity.StatusProcessed}, f.delivery, nil
}

func (f *fakeInbox) MarkRead(_ context.Context, id, _ uuid.UUID, _ string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markedID = id
	return nil
}

func (f *fakeInbox) MarkAllRead(_ context.Context, userID uuid.UUID, _ string) (int64, error) {
	f.allFor = userID
	return 3, nil
}

func (f *fakeInbox) UnreadCount(_ context.Context, _ uuid.UUID) (int64, error) {
	return f.unread, nil
}

func (f *fakeInbox) Stats(_ context.Context, _ uuid.UUID) (*entity.Stats, error) {
	return f.stats, nil
}

func perform(h *InboxHandler, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.Engine().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	h := NewInboxHandler(&fakeInbox{}, zap.NewNop())

	w := perform(h, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestListNotifications(t *testing.T) {
	userID := uuid.New()
	svc := &fakeInbox{page: &service.InboxPage{
		Items: []entity.Notification{{
			ID:     uuid.New(),
			UserID: userID,
			Title:  "Shift assigned",
			Type:   entity.TypeJob,
			Status: entity.StatusProcessed,
		}},
		Page:        1,
		TotalPages:  1,
		TotalItems:  1,
		UnreadCount: 1,
	}}
	h := NewInboxHandler(svc, zap.NewNop())

	w := perform(h, http.MethodGet, "/notifications?user_id="+userID.String(), "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var resp ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status field = %q, want success", resp.Status)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("data has %d items, want 1", len(resp.Data))
	}
	if resp.Data[0].Title != "Shift assigned" {
		t.Errorf("title = %q", resp.Data[0].Title)
	}
	if resp.UnreadCount != 1 {
		t.Errorf("unread_count = %d, want 1", resp.UnreadCount)
	}
}

func TestListRequiresUserID(t *testing.T) {
	h := NewInboxHandler(&fakeInbox{}, zap.NewNop())

	w := perform(h, http.MethodGet, "/notifications", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Code != "invalid_uuid" {
		t.Errorf("code = %q, want invalid_uuid", resp.Code)
	}
}

func TestGetNotificationWithDelivery(t *testing.T) {
	svc := &fakeInbox{delivery: []entity.SendAttempt{
		{Status: entity.SendSent},
		{Status: entity.SendFailed, ErrorMessage: "token expired"},
	}}
	h := NewInboxHandler(svc, zap.NewNop())

	id := uuid.New()
	w := perform(h, http.MethodGet, "/notifications/"+id.String()+"?user_id="+uuid.NewString(), "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var resp GetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.ID != id.String() {
		t.Errorf("id = %q, want %q", resp.Data.ID, id)
	}
	if len(resp.Delivery) != 2 {
		t.Errorf("delivery has %d attempts, want 2", len(resp.Delivery))
	}
}

func TestMarkRead(t *testing.T) {
	svc := &fakeInbox{}
	h := NewInboxHandler(svc, zap.NewNop())

	id := uuid.New()
	userID := uuid.New()
	body := `{"user_id":"` + userID.String() + `","device_id":"device-1"}`

	w := perform(h, http.MethodPost, "/notifications/"+id.String()+"/read", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	if svc.markedID != id {
		t.Errorf("marked id = %v, want %v", svc.markedID, id)
	}
}

func TestMarkReadNotFound(t *testing.T) {
	svc := &fakeInbox{markErr: entity.ErrNotificationNotFound}
	h := NewInboxHandler(svc, zap.NewNop())

	body := `{"user_id":"` + uuid.NewString() + `"}`
	w := perform(h, http.MethodPost, "/notifications/"+uuid.NewString()+"/read", body)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestMarkReadInvalidID(t *testing.T) {
	h := NewInboxHandler(&fakeInbox{}, zap.NewNop())

	w := perform(h, http.MethodPost, "/notifications/not-a-uuid/read", `{"user_id":"`+uuid.NewString()+`"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestMarkAllRead(t *testing.T) {
	svc := &fakeInbox{}
	h := NewInboxHandler(svc, zap.NewNop())

	userID := uuid.New()
	body := `{"user_id":"` + userID.String() + `"}`
	w := perform(h, http.MethodPost, "/notifications/read-all", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var resp SuccessResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Updated != 3 {
		t.Errorf("updated = %d, want 3", resp.Updated)
	}
	if svc.allFor != userID {
		t.Errorf("mark-all user = %v, want %v", svc.allFor, userID)
	}
}

func TestUnreadCount(t *testing.T) {
	svc := &fakeInbox{unread: 12}
	h := NewInboxHandler(svc, zap.NewNop())

	w := perform(h, http.MethodGet, "/notifications/unread-count?user_id="+uuid.NewString(), "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp UnreadCountResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.UnreadCount != 12 {
		t.Errorf("unread_count = %d, want 12", resp.UnreadCount)
	}
}

func TestStats(t *testing.T) {
	svc := &fakeInbox{stats: &entity.Stats{Total: 20, Unread: 4, Job: 10}}
	h := NewInboxHandler(svc, zap.NewNop())

	w := perform(h, http.MethodGet, "/notifications/stats?user_id="+uuid.NewString(), "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.Total != 20 || resp.Data.Job != 10 {
		t.Errorf("stats = %+v", resp.Data)
	}
}
