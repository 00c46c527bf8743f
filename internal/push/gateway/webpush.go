package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"taskflow-backend/internal/push/domain"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
)

// WebPushConfig holds the VAPID application server identity.
type WebPushConfig struct {
	Subject    string
	PublicKey  string
	PrivateKey string
	TTL        time.Duration
	Timeout    time.Duration
}

// WebPushGateway delivers encrypted payloads directly to browser push services.
type WebPushGateway struct {
	cfg    WebPushConfig
	client *http.Client
	logger *zap.Logger
}

// NewWebPushGateway requires both VAPID keys. A missing Timeout defaults to 10s.
func NewWebPushGateway(cfg WebPushConfig, logger *zap.Logger) (*WebPushGateway, error) {
	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil, errors.New("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY are required for web push")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebPushGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("webpush"),
	}, nil
}

func (g *WebPushGateway) Send(ctx context.Context, sub domain.Subscription, n Notification) Result {
	payload, err := json.Marshal(n)
	if err != nil {
		return Result{Outcome: TransientFailure, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      g.client,
		Subscriber:      g.cfg.Subject,
		VAPIDPublicKey:  g.cfg.PublicKey,
		VAPIDPrivateKey: g.cfg.PrivateKey,
		TTL:             int(g.cfg.TTL / time.Second),
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		if resp != nil {
			drain(resp)
		}
		return Result{Outcome: TransientFailure, Err: fmt.Errorf("web push: %w", err)}
	}
	defer drain(resp)

	return classify(resp.StatusCode)
}

func classify(status int) Result {
	switch {
	case status >= 200 && status < 300:
		return Result{Outcome: Delivered, StatusCode: status}
	case status == http.StatusNotFound || status == http.StatusGone:
		return Result{
			Outcome:    PermanentFailure,
			StatusCode: status,
			Err:        fmt.Errorf("push service reports subscription gone (%d)", status),
		}
	default:
		return Result{
			Outcome:    TransientFailure,
			StatusCode: status,
			Err:        fmt.Errorf("push service responded %d", status),
		}
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
