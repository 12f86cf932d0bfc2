// Package notify implements the delivery channels behind the notification
// dispatcher: push via Firebase Cloud Messaging and email via SendGrid.
// Channel delivery is best-effort; persistence of the notification record
// is handled by the services layer.
package notify

import "context"

// Message is a channel-agnostic notification payload
type Message struct {
	To      string            // device token or email address
	Subject string
	Body    string
	Data    map[string]string // optional push payload
}

// Channel delivers a message over one transport
type Channel interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
}
