package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a notification. Transitions are forward
// only: pending → processing → processed | failed.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusProcessed, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

func (s Status) String() string {
	return string(s)
}

// Type is the notification category tag.
type Type string

const (
	TypeGeneral Type = "general"
	TypeJob     Type = "job"
	TypeAlert   Type = "alert"
	TypeSystem  Type = "system"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeGeneral, TypeJob, TypeAlert, TypeSystem:
		return true
	}
	return false
}

// NormalizeType lowercases a raw tag and maps unknown values to
// TypeGeneral.
func NormalizeType(s string) Type {
	t := Type(strings.ToLower(s))
	if !t.IsValid() {
		return TypeGeneral
	}
	return t
}

// Priority orders dispatch: higher values first.
type Priority int16

const (
	PriorityLow    Priority = 1
	PriorityNormal Priority = 2
	PriorityHigh   Priority = 3
	PriorityUrgent Priority = 4
)

// ParsePriority maps a textual priority to its ordered value, falling back
// to PriorityNormal for unknown input.
func ParsePriority(s string) Priority {
	switch s {
	case "low":
		return PriorityLow
	case "normal":
		return PriorityNormal
	case "high":
		return PriorityHigh
	case "urgent":
		return PriorityUrgent
	}
	return PriorityNormal
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	}
	return "normal"
}

// Notification is one unit of content addressed to a user; dispatch expands
// it into a send attempt per active device.
type Notification struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Data         Payload    `json:"data,omitempty"`
	Type         Type       `json:"type"`
	Priority     Priority   `json:"priority"`
	Status       Status     `json:"status"`
	IsRead       bool       `json:"is_read"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	ReadDeviceID string     `json:"read_device_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}

// Stats aggregates a user's notifications by read state and category.
type Stats struct {
	Total  int64 `json:"total_notifications"`
	Unread int64 `json:"unread_count"`
	Job    int64 `json:"job_notifications"`
	Alert  int64 `json:"alert_notifications"`
	System int64 `json:"system_notifications"`
	Urgent int64 `json:"urgent_notifications"`
}
