package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Message is one rendered transactional email.
type Message struct {
	To      string
	Subject string
	HTML    string
	// Kind tags the message for the provider and for logs.
	Kind string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes emails to the log. Used with ENV=local so verification
// codes and reset links can be copied from the console.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "email (local dev)",
		"kind", msg.Kind,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.HTML,
	)
	return nil
}

// ResendSender delivers through the Resend API in staging and production.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Tags:    []resend.Tag{{Name: "kind", Value: msg.Kind}},
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// NewSender returns a LogSender for ENV=local, ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return &LogSender{logger: logger.With("component", "email")}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}
