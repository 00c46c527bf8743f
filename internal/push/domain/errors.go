package domain

import "errors"

var (
	ErrInvalidSubscription  = errors.New("invalid push subscription")
	ErrSubscriptionNotFound = errors.New("push subscription not found")
)
