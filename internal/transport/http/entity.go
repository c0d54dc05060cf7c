package httpt

import (
	"time"

	"pushdispatcher/internal/entity"
)

type NotificationResponse struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	Type      string            `json:"type"`
	Priority  string            `json:"priority"`
	Status    string            `json:"status"`
	IsRead    bool              `json:"is_read"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type Pagination struct {
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

type ListResponse struct {
	Status      string                 `json:"status"`
	Data        []NotificationResponse `json:"data"`
	Pagination  Pagination             `json:"pagination"`
	UnreadCount int64                  `json:"unread_count"`
}

type GetResponse struct {
	Status   string               `json:"status"`
	Data     NotificationResponse `json:"data"`
	Delivery []entity.SendAttempt `json:"delivery"`
}

type UnreadCountResponse struct {
	Status      string `json:"status"`
	UnreadCount int64  `json:"unread_count"`
}

type StatsResponse struct {
	Status string        `json:"status"`
	Data   *entity.Stats `json:"data"`
}

type MarkReadRequest struct {
	UserID   string `json:"user_id" binding:"required,uuid"`
	DeviceID string `json:"device_id"`
}

type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Updated int64  `json:"updated,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func toNotificationResponse(n *entity.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		UserID:    n.UserID.String(),
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Priority:  n.Priority.String(),
		Status:    string(n.Status),
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Data) > 0 {
		resp.Data = n.Data.Strings()
	}
	return resp
}
