package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/ecolaura/ecolaura-api/internal/config"
)

// FCMChannel delivers push notifications via Firebase Cloud Messaging
type FCMChannel struct {
	projectID string
	client    *messaging.Client
}

// NewFCMChannel creates a new FCM push channel
func NewFCMChannel(ctx context.Context, cfg config.FCMConfig) (*FCMChannel, error) {
	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get FCM client: %w", err)
	}

	return &FCMChannel{
		projectID: cfg.ProjectID,
		client:    client,
	}, nil
}

// Name returns the channel name
func (c *FCMChannel) Name() string {
	return "fcm"
}

// Send delivers a push message to the device token in msg.To
func (c *FCMChannel) Send(ctx context.Context, msg *Message) error {
	fcmMessage := &messaging.Message{
		Token: msg.To,
		Notification: &messaging.Notification{
			Title: msg.Subject,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: msg.Subject,
						Body:  msg.Body,
					},
					Sound: "default",
				},
			},
		},
	}

	if _, err := c.client.Send(ctx, fcmMessage); err != nil {
		return fmt.Errorf("fcm send failed: %w", err)
	}
	return nil
}
