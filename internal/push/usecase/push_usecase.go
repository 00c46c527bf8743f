package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"taskflow-backend/internal/push/domain"
	"taskflow-backend/internal/push/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// PushUsecase manages the push subscriptions of a user
type PushUsecase interface {
	// Subscribe registers sub for userID. created is false when the endpoint was already known.
	Subscribe(ctx context.Context, userID string, sub domain.Subscription) (created bool, err error)
	Unsubscribe(ctx context.Context, userID, endpoint string) error
	VAPIDPublicKey() string
}

type pushUsecase struct {
	subRepo        repository.SubscriptionRepository
	vapidPublicKey string
	logger         *zap.Logger
}

// NewPushUsecase creates a new instance of pushUsecase
func NewPushUsecase(subRepo repository.SubscriptionRepository, vapidPublicKey string, logger *zap.Logger) PushUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &pushUsecase{
		subRepo:        subRepo,
		vapidPublicKey: vapidPublicKey,
		logger:         logger,
	}
}

func (u *pushUsecase) Subscribe(ctx context.Context, userID string, sub domain.Subscription) (bool, error) {
	sub.Endpoint = strings.TrimSpace(sub.Endpoint)
	if err := ValidateSubscription(sub); err != nil {
		return false, err
	}

	created, err := u.subRepo.Create(ctx, sub.ToModel(userID))
	if err != nil {
		return false, err
	}
	if created {
		u.logger.Info("push subscription registered", zap.String("user_id", userID))
	} else {
		u.logger.Debug("push subscription already registered", zap.String("user_id", userID))
	}
	return created, nil
}

func (u *pushUsecase) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return fmt.Errorf("%w: endpoint required", domain.ErrInvalidSubscription)
	}
	return u.subRepo.DeleteByEndpoint(ctx, userID, endpoint)
}

func (u *pushUsecase) VAPIDPublicKey() string {
	return u.vapidPublicKey
}

// ValidateSubscription checks the browser payload before it is stored.
func ValidateSubscription(sub domain.Subscription) error {
	if err := validate.Struct(sub); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidSubscription, err)
	}
	parsed, err := url.Parse(sub.Endpoint)
	if err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") || parsed.Host == "" {
		return fmt.Errorf("%w: endpoint must be an absolute http(s) URL", domain.ErrInvalidSubscription)
	}
	return nil
}
