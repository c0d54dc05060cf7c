package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SendStatus is the state of a single per-device delivery attempt.
type SendStatus string

const (
	SendPending   SendStatus = "pending"
	SendSent      SendStatus = "sent"
	SendDelivered SendStatus = "delivered"
	SendFailed    SendStatus = "failed"
)

func (s SendStatus) IsValid() bool {
	switch s {
	case SendPending, SendSent, SendDelivered, SendFailed:
		return true
	}
	return false
}

func (s SendStatus) String() string {
	return string(s)
}

// SendAttempt is one (notification, device) send record. The row is created
// in SendPending before the gateway call, so a crash mid-send still leaves
// an auditable pending row; it is updated exactly once to a terminal state.
type SendAttempt struct {
	ID             uuid.UUID       `json:"id"`
	NotificationID uuid.UUID       `json:"notification_id"`
	DeviceID       uuid.UUID       `json:"device_id"`
	Token          string          `json:"token"`
	Status         SendStatus      `json:"status"`
	Result         json.RawMessage `json:"result,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	RetryCount     int             `json:"retry_count"`
	CreatedAt      time.Time       `json:"created_at"`
	SentAt         *time.Time      `json:"sent_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
