package mailer

import (
	"context"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun sends rendered emails through one Mailgun client built at startup.
type Mailgun struct {
	client mg.Mailgun
	sender string
}

// NewMailgun builds the client for domain. apiBase is optional and selects
// another region, e.g. https://api.eu.mailgun.net/v3.
func NewMailgun(domain, apiKey, sender, apiBase string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{client: client, sender: sender}
}

// Send delivers one message. html is optional. The caller's context bounds the request.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	_, _, err := m.client.Send(ctx, msg)
	return err
}
