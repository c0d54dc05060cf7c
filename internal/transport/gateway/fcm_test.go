package gateway

import (
	"testing"

	"pushdispatcher/internal/entity"

	"github.com/google/uuid"
)

func TestBuildMessage(t *testing.T) {
	n := &entity.Notification{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Title:    "Shift assigned",
		Message:  "You have a new shift tomorrow",
		Type:     entity.TypeJob,
		Priority: entity.PriorityUrgent,
		Data: entity.Payload{
			"job_id": entity.Int(42),
			"city":   entity.String("Berlin"),
		},
	}

	msg := buildMessage(n, "device-token-1")

	if msg.Token != "device-token-1" {
		t.Errorf("token = %q", msg.Token)
	}
	if msg.Notification.Title != "Shift assigned" {
		t.Errorf("title = %q", msg.Notification.Title)
	}
	if msg.Notification.Body != "You have a new shift tomorrow" {
		t.Errorf("body = %q", msg.Notification.Body)
	}

	want := map[string]string{
		"job_id": "42",
		"city":   "Berlin",
	}
	if len(msg.Data) != len(want) {
		t.Errorf("data has %d keys, want %d: %v", len(msg.Data), len(want), msg.Data)
	}
	for k, v := range want {
		if msg.Data[k] != v {
			t.Errorf("data[%q] = %q, want %q", k, msg.Data[k], v)
		}
	}
}

func TestBuildMessageNoPayload(t *testing.T) {
	n := &entity.Notification{
		ID:       uuid.New(),
		Title:    "Maintenance tonight",
		Message:  "Service window 02:00-03:00",
		Type:     entity.TypeSystem,
		Priority: entity.PriorityNormal,
	}

	msg := buildMessage(n, "tok")

	if msg.Data == nil {
		t.Fatal("data map is nil, want empty map")
	}
	if len(msg.Data) != 0 {
		t.Errorf("data = %v, want empty map", msg.Data)
	}
}
