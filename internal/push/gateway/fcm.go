package gateway

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"taskflow-backend/internal/push/domain"
	"taskflow-backend/pkg/fcm"

	"go.uber.org/zap"
)

const fcmEndpointPrefix = "https://fcm.googleapis.com/fcm/send/"

var errNotFCMEndpoint = errors.New("endpoint is not an FCM endpoint")

type deviceSender interface {
	SendToDevice(ctx context.Context, token string, notification fcm.NotificationData) (string, error)
}

// FCMGateway delivers through Firebase Cloud Messaging. It only serves endpoints
// issued by FCM, whose last path segment is the registration token.
type FCMGateway struct {
	client    deviceSender
	timeout   time.Duration
	ttl       time.Duration
	permanent func(error) bool
	logger    *zap.Logger
}

func NewFCMGateway(client deviceSender, timeout, ttl time.Duration, logger *zap.Logger) *FCMGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FCMGateway{
		client:    client,
		timeout:   timeout,
		ttl:       ttl,
		permanent: fcm.IsUnregistered,
		logger:    logger.Named("fcm_gateway"),
	}
}

func (g *FCMGateway) Send(ctx context.Context, sub domain.Subscription, n Notification) Result {
	token, ok := fcmToken(sub.Endpoint)
	if !ok {
		return Result{Outcome: TransientFailure, Err: errNotFCMEndpoint}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	data := fcm.NotificationData{
		Title: n.Title,
		Body:  n.Body,
		Data:  map[string]string{"title": n.Title, "body": n.Body},
	}
	if g.ttl > 0 {
		data.TTL = strconv.Itoa(int(g.ttl / time.Second))
	}

	if _, err := g.client.SendToDevice(ctx, token, data); err != nil {
		if g.permanent(err) {
			return Result{Outcome: PermanentFailure, Err: err}
		}
		return Result{Outcome: TransientFailure, Err: err}
	}
	return Result{Outcome: Delivered}
}

func fcmToken(endpoint string) (string, bool) {
	if !strings.HasPrefix(endpoint, fcmEndpointPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(endpoint, fcmEndpointPrefix)
	if token == "" || strings.Contains(token, "/") {
		return "", false
	}
	return token, true
}
