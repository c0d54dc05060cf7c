package httpt

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"pushdispatcher/internal/entity"
	"pushdispatcher/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const _defaultContextTimeout = 2 * time.Second

// InboxService is what the handler needs from the inbox layer.
type InboxService interface {
	List(ctx context.Context, userID uuid.UUID, page, limit int, unreadOnly bool) (*service.InboxPage, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*entity.Notification, []entity.SendAttempt, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID, deviceID string) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, deviceID string) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	Stats(ctx context.Context, userID uuid.UUID) (*entity.Stats, error)
}

type InboxHandler struct {
	svc    InboxService
	log    *zap.Logger
	router *gin.Engine
}

func NewInboxHandler(svc InboxService, log *zap.Logger) *InboxHandler {
	h := &InboxHandler{
		svc: svc,
		log: log,
	}

	router := gin.New()
	router.Use(h.requestIDMiddleware())
	router.Use(h.loggingMiddleware())
	router.Use(gin.Recovery())

	h.router = router
	h.setupRoutes()

	return h
}

func (h *InboxHandler) Engine() *gin.Engine {
	return h.router
}

func (h *InboxHandler) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *InboxHandler) listHandler(c *gin.Context) {
	const op = "transport.listHandler"

	userID, ok := h.userIDQuery(c, op)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	unreadOnly := c.Query("unread_only") == "true"

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	feed, err := h.svc.List(ctx, userID, page, limit, unreadOnly)
	if err != nil {
		h.handleServiceError(c, op, err)
		return
	}

	items := make([]NotificationResponse, 0, len(feed.Items))
	for i := range feed.Items {
		items = append(items, toNotificationResponse(&feed.Items[i]))
	}

	c.JSON(http.StatusOK, ListResponse{
		Status: "success",
		Data:   items,
		Pagination: Pagination{
			Page:       feed.Page,
			TotalPages: feed.TotalPages,
			TotalItems: feed.TotalItems,
		},
		UnreadCount: feed.UnreadCount,
	})
}

func (h *InboxHandler) getHandler(c *gin.Context) {
	const op = "transport.getHandler"

	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.handleInvalidUUID(c, op, idStr)
		return
	}

	userID, ok := h.userIDQuery(c, op)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	n, attempts, err := h.svc.Get(ctx, id, userID)
	if err != nil {
		h.handleServiceError(c, op, err)
		return
	}

	c.JSON(http.StatusOK, GetResponse{
		Status:   "success",
		Data:     toNotificationResponse(n),
		Delivery: attempts,
	})
}

func (h *InboxHandler) markReadHandler(c *gin.Context) {
	const op = "transport.markReadHandler"

	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.handleInvalidUUID(c, op, idStr)
		return
	}

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_data", "Invalid request body", err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.handleInvalidUUID(c, op, req.UserID)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	if err := h.svc.MarkRead(ctx, id, userID, req.DeviceID); err != nil {
		h.handleServiceError(c, op, err)
		return
	}

	h.log.Info("notification marked read",
		zap.String("notification_id", idStr),
		zap.String("user_id", req.UserID))

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  "success",
		Message: "Notification marked as read",
	})
}

func (h *InboxHandler) markAllReadHandler(c *gin.Context) {
	const op = "transport.markAllReadHandler"

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_data", "Invalid request body", err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.handleInvalidUUID(c, op, req.UserID)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	updated, err := h.svc.MarkAllRead(ctx, userID, req.DeviceID)
	if err != nil {
		h.handleServiceError(c, op, err)
		return
	}

	h.log.Info("all notifications marked read",
		zap.String("user_id", req.UserID),
		zap.Int64("updated", updated))

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  "success",
		Message: "All notifications marked as read",
		Updated: updated,
	})
}

func (h *InboxHandler) unreadCountHandler(c *gin.Context) {
	const op = "transport.unreadCountHandler"

	userID, ok := h.userIDQuery(c, op)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	count, err := h.svc.UnreadCount(ctx, userID)
	if err != nil {
		h.handleServiceError(c, op, err)
		return
	}

	c.JSON(http.StatusOK, UnreadCountResponse{
		Status:      "success",
		UnreadCount: count,
	})
}

func (h *InboxHandler) statsHandler(c *gin.Context) {
	const op = "transport.statsHandler"

	userID, ok := h.userIDQuery(c, op)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	stats, err := h.svc.Stats(ctx, userID)
	if err != nil {
		h.handleServiceError(c, op, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Status: "success",
		Data:   stats,
	})
}

func (h *InboxHandler) userIDQuery(c *gin.Context, op string) (uuid.UUID, bool) {
	userIDStr := c.Query("user_id")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		h.handleInvalidUUID(c, op, userIDStr)
		return uuid.Nil, false
	}
	return userID, true
}
