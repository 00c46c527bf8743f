package dto

import "taskflow-backend/internal/push/domain"

// SubscribeRequest is the body of POST /api/push/subscribe.
type SubscribeRequest = domain.Subscription

// UnsubscribeRequest is the body of DELETE /api/push/subscribe.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type VAPIDKeyResponse struct {
	PublicKey string `json:"publicKey"`
}
