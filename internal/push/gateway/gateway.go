package gateway

import (
	"context"
	"fmt"
	"strings"

	"taskflow-backend/internal/push/domain"
	"taskflow-backend/pkg/config"
	"taskflow-backend/pkg/fcm"

	"go.uber.org/zap"
)

const (
	ProviderWebPush = "webpush"
	ProviderFCM     = "fcm"
)

// Notification is the JSON payload shown by the client's service worker.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Outcome classifies a single delivery attempt.
type Outcome int

const (
	Delivered Outcome = iota
	// PermanentFailure means the push service reports the subscription gone.
	PermanentFailure
	// TransientFailure covers everything else: timeouts, 5xx, rate limits, transport errors.
	TransientFailure
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case PermanentFailure:
		return "permanent_failure"
	case TransientFailure:
		return "transient_failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result reports one delivery attempt. StatusCode is 0 when no HTTP response was received.
type Result struct {
	Outcome    Outcome
	StatusCode int
	Err        error
}

// Gateway delivers a notification to one subscription.
// Implementations never panic and report every failure through Result.
type Gateway interface {
	Send(ctx context.Context, sub domain.Subscription, n Notification) Result
}

// NewFromConfig builds the gateway selected by cfg.Provider.
func NewFromConfig(ctx context.Context, cfg config.PushConfig, logger *zap.Logger) (Gateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderWebPush, "":
		return NewWebPushGateway(WebPushConfig{
			Subject:    cfg.VAPIDSubject,
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
			TTL:        cfg.TTL,
			Timeout:    cfg.Timeout,
		}, logger)
	case ProviderFCM:
		client, err := fcm.NewClient(ctx, cfg.FirebaseCredentials, logger)
		if err != nil {
			return nil, err
		}
		return NewFCMGateway(client, cfg.Timeout, cfg.TTL, logger), nil
	default:
		return nil, fmt.Errorf("unsupported PUSH_PROVIDER %q", cfg.Provider)
	}
}
