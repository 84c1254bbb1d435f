package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/ErlanBelekov/swinggity/internal/metrics"
)

// Kinds of transactional email, used as the metrics label.
const (
	KindVerification = "verification"
	KindWelcome      = "welcome"
	KindReset        = "password_reset"
	KindResetSuccess = "password_reset_success"
)

// Mailer renders the auth emails and hands them to a Sender.
type Mailer struct {
	sender Sender
}

func NewMailer(sender Sender) *Mailer {
	return &Mailer{sender: sender}
}

func (m *Mailer) SendVerification(ctx context.Context, to, code string) error {
	return m.send(ctx, KindVerification, to, "Verify your email", verificationTmpl, struct{ Code string }{code})
}

func (m *Mailer) SendWelcome(ctx context.Context, to, firstName string) error {
	return m.send(ctx, KindWelcome, to, "Welcome to Swinggity", welcomeTmpl, struct{ Name string }{firstName})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	return m.send(ctx, KindReset, to, "Reset your password", resetTmpl, struct{ URL string }{resetURL})
}

func (m *Mailer) SendResetSuccess(ctx context.Context, to string) error {
	return m.send(ctx, KindResetSuccess, to, "Password reset successful", resetSuccessTmpl, nil)
}

func (m *Mailer) send(ctx context.Context, kind, to, subject string, tmpl *template.Template, data any) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		metrics.EmailsSentTotal.WithLabelValues(kind, "error").Inc()
		return fmt.Errorf("render %s email: %w", kind, err)
	}
	msg := Message{To: to, Subject: subject, HTML: body.String(), Kind: kind}
	if err := m.sender.Send(ctx, msg); err != nil {
		metrics.EmailsSentTotal.WithLabelValues(kind, "error").Inc()
		return fmt.Errorf("send %s email: %w", kind, err)
	}
	metrics.EmailsSentTotal.WithLabelValues(kind, "sent").Inc()
	return nil
}
