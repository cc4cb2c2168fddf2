package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"klink-backend/internal/models"
	"klink-backend/internal/push"
	"klink-backend/internal/telemetry"
)

// Dispatcher is the fan-out contract consumed by the handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.NotificationRequest) (models.DispatchResult, error)
}

// NotificationHandler serves the dispatch-notification RPC.
type NotificationHandler struct {
	dispatcher Dispatcher
	audit      *telemetry.AuditEmitter
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(dispatcher Dispatcher, audit *telemetry.AuditEmitter) *NotificationHandler {
	return &NotificationHandler{
		dispatcher: dispatcher,
		audit:      audit,
	}
}

// Send validates the request, resolves targets and fans the notification
// out, reporting per-token outcomes as data. The request body is a single
// typed schema; clients must not nest it inside wrapper envelopes.
func (h *NotificationHandler) Send(c *gin.Context) {
	requestID := requestIDFromContext(c)

	var req models.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rpcError(c, CodeInvalidArgument, err.Error())
		return
	}

	if err := push.Validate(req); err != nil {
		rpcError(c, CodeInvalidArgument, err.Error())
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, push.ErrNoTargets) {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "No device tokens found"})
			return
		}
		rpcError(c, CodeInternal, "failed to dispatch notification")
		return
	}

	h.audit.Emit(c.Request.Context(), "notification_dispatched", requestID, telemetry.AuditPayload{
		UserID:    req.ToUserID,
		ChatID:    req.ChatID,
		MessageID: req.MessageID,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":      result.SuccessCount > 0,
		"successCount": result.SuccessCount,
		"failureCount": result.FailureCount,
		"failures":     result.Failures,
	})
}
