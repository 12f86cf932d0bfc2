package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ecolaura/ecolaura-api/internal/config"
)

// SendGridChannel delivers notification emails via SendGrid
type SendGridChannel struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewSendGridChannel creates a new SendGrid email channel
func NewSendGridChannel(cfg config.EmailConfig) *SendGridChannel {
	return &SendGridChannel{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

// Name returns the channel name
func (c *SendGridChannel) Name() string {
	return "sendgrid"
}

// Send delivers an email to the address in msg.To
func (c *SendGridChannel) Send(ctx context.Context, msg *Message) error {
	from := mail.NewEmail(c.fromName, c.fromEmail)
	to := mail.NewEmail("", msg.To)
	html := fmt.Sprintf("<p>%s</p>", msg.Body)
	email := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, html)

	resp, err := c.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed with status %d", resp.StatusCode)
	}
	return nil
}
