package delivery

import (
	"errors"
	"net/http"

	"taskflow-backend/internal/push/domain"
	"taskflow-backend/internal/push/dto"
	"taskflow-backend/internal/push/usecase"
	"taskflow-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PushHandler handles push subscription HTTP requests
type PushHandler struct {
	pushUsecase usecase.PushUsecase
	logger      *zap.Logger
}

// NewPushHandler creates a new PushHandler
func NewPushHandler(pushUsecase usecase.PushUsecase, logger *zap.Logger) *PushHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PushHandler{
		pushUsecase: pushUsecase,
		logger:      logger,
	}
}

// Subscribe registers the caller's browser push subscription
// POST /api/push/subscribe
func (h *PushHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "Invalid subscription"})
		return
	}

	created, err := h.pushUsecase.Subscribe(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if !created {
		c.JSON(http.StatusOK, dto.MessageResponse{Message: "Already subscribed"})
		return
	}
	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "Subscribed successfully"})
}

// Unsubscribe removes one of the caller's subscriptions
// DELETE /api/push/subscribe
func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var req dto.UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "Endpoint required"})
		return
	}

	if err := h.pushUsecase.Unsubscribe(c.Request.Context(), c.GetString("userID"), req.Endpoint); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Unsubscribed successfully"})
}

// GetVAPIDPublicKey returns the application server key for pushManager.subscribe
// GET /api/push/vapid-public-key
func (h *PushHandler) GetVAPIDPublicKey(c *gin.Context) {
	key := h.pushUsecase.VAPIDPublicKey()
	if key == "" {
		c.JSON(http.StatusNotFound, dto.MessageResponse{Message: "Web push is not configured"})
		return
	}
	c.JSON(http.StatusOK, dto.VAPIDKeyResponse{PublicKey: key})
}

func (h *PushHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidSubscription):
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "Invalid subscription"})
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		c.JSON(http.StatusNotFound, dto.MessageResponse{Message: "Subscription not found"})
	default:
		logger.WithRequestID(c.Request.Context(), h.logger).Error("push request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: "Server error"})
	}
}
