package domain

import "time"

// PushSubscription is a browser push endpoint registered by a user.
// Endpoint is globally unique; the first user to register it owns it.
type PushSubscription struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	UserID         string    `json:"user_id" gorm:"index;not null"`
	Endpoint       string    `json:"endpoint" gorm:"uniqueIndex;not null"`
	P256dh         string    `json:"-" gorm:"not null"`
	Auth           string    `json:"-" gorm:"not null"`
	ExpirationTime *int64    `json:"expiration_time"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Keys is the client key bundle used to encrypt payloads for an endpoint.
type Keys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// Subscription is the PushSubscription JSON produced by the browser's pushManager.subscribe().
type Subscription struct {
	Endpoint       string `json:"endpoint" validate:"required,url,max=2048"`
	ExpirationTime *int64 `json:"expirationTime"`
	Keys           Keys   `json:"keys"`
}

// ToModel binds the wire subscription to its owner.
func (s Subscription) ToModel(userID string) *PushSubscription {
	return &PushSubscription{
		UserID:         userID,
		Endpoint:       s.Endpoint,
		P256dh:         s.Keys.P256dh,
		Auth:           s.Keys.Auth,
		ExpirationTime: s.ExpirationTime,
	}
}

// Wire returns the subscription in the shape push services expect.
func (p *PushSubscription) Wire() Subscription {
	return Subscription{
		Endpoint:       p.Endpoint,
		ExpirationTime: p.ExpirationTime,
		Keys:           Keys{P256dh: p.P256dh, Auth: p.Auth},
	}
}
