package mailer

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

// Mailgun sends notification emails through one shared Mailgun client.
type Mailgun struct {
	Sender string
	Tags   []string

	client *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string, tags ...string) *Mailgun {
	return &Mailgun{Sender: sender, Tags: tags, client: mg.NewMailgun(domain, apiKey)}
}

// Send sends one email. html is optional and replaces the text body in clients that render it.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	if len(m.Tags) > 0 {
		if err := msg.AddTag(m.Tags...); err != nil {
			return fmt.Errorf("mailgun tag: %w", err)
		}
	}
	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if _, _, err := m.client.Send(c, msg); err != nil {
		return fmt.Errorf("mailgun send to %s: %w", to, err)
	}
	return nil
}
