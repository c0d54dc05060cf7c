package httpt

import (
	"errors"
	"net/http"

	"pushdispatcher/internal/entity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *InboxHandler) handleServiceError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, entity.ErrNotificationNotFound),
		errors.Is(err, entity.ErrDataNotFound):
		h.log.Warn("notification not found",
			zap.String("op", op), zap.Error(err))
		h.respondError(c, http.StatusNotFound, "not_found", "Notification not found", err)

	case errors.Is(err, entity.ErrInvalidData):
		h.log.Warn("invalid data",
			zap.String("op", op), zap.Error(err))
		h.respondError(c, http.StatusBadRequest, "invalid_data", "Invalid input data", err)

	case errors.Is(err, entity.ErrConflictingData):
		h.log.Warn("conflicting data",
			zap.String("op", op), zap.Error(err))
		h.respondError(c, http.StatusConflict, "conflict", "Data conflict occurred", err)

	default:
		h.log.Error("internal server error",
			zap.String("op", op), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "internal_error",
			"Internal server error occurred", err)
	}
}

func (h *InboxHandler) handleInvalidUUID(c *gin.Context, op, raw string) {
	h.log.Warn("invalid uuid",
		zap.String("op", op), zap.String("value", raw))
	h.respondError(c, http.StatusBadRequest, "invalid_uuid", "Invalid identifier format", nil)
}

func (h *InboxHandler) respondError(c *gin.Context, status int, code, message string, err error) {
	resp := ErrorResponse{
		Status: "error",
		Error:  message,
		Code:   code,
	}
	if err != nil {
		resp.Details = err.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}
