package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Sender is the part of *messaging.Client used here.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	sender Sender
	logger *zap.Logger
}

// NewClient creates a new FCM client using the provided credentials file.
// An empty path falls back to Application Default Credentials.
func NewClient(ctx context.Context, credentialsFile string, logger *zap.Logger) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	c := NewClientWithSender(messagingClient, logger)
	c.logger.Info("client initialized")
	return c, nil
}

// NewClientWithSender builds a Client around an existing sender.
func NewClientWithSender(sender Sender, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{sender: sender, logger: logger.Named("fcm")}
}

// NotificationData contains the data to send in a push notification
type NotificationData struct {
	Title string
	Body  string
	Data  map[string]string
	Icon  string
	TTL   string // seconds, as FCM's webpush TTL header expects
}

// SendToDevice sends a push notification to a single registration token and
// returns the FCM message id.
func (c *Client) SendToDevice(ctx context.Context, token string, notification NotificationData) (string, error) {
	headers := map[string]string{}
	if notification.TTL != "" {
		headers["TTL"] = notification.TTL
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Body,
		},
		Data: notification.Data,
		Webpush: &messaging.WebpushConfig{
			Headers: headers,
			Notification: &messaging.WebpushNotification{
				Title: notification.Title,
				Body:  notification.Body,
				Icon:  notification.Icon,
			},
		},
	}

	id, err := c.sender.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("failed to send FCM message: %w", err)
	}

	c.logger.Debug("message sent", zap.String("message_id", id))
	return id, nil
}

// IsUnregistered reports whether err means the token will never be valid again.
func IsUnregistered(err error) bool {
	return messaging.IsUnregistered(err) || messaging.IsSenderIDMismatch(err)
}
