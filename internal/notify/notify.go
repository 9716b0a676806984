// Package notify implements the outbound notification collaborators.
package notify

import (
	"context"
	"errors"

	"github.com/stocksentry/stocksentry/internal/obs"
)

// Messenger delivers a short text alert over a chat-style transport.
type Messenger interface {
	SendMessage(ctx context.Context, text string) error
}

// Reporter delivers a report with an attachment over email.
type Reporter interface {
	SendReport(ctx context.Context, subject, body string, attachment []byte, attachmentName string) error
}

// Fanout delivers one message to every configured messenger and joins the
// failures, so one broken channel does not mask delivery on the others.
type Fanout []Messenger

// SendMessage implements Messenger.
func (f Fanout) SendMessage(ctx context.Context, text string) error {
	var errs []error
	for _, m := range f {
		if err := m.SendMessage(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoopMessenger stands in when no chat channel is configured; it logs the
// message instead of sending it.
type NoopMessenger struct{}

// SendMessage implements Messenger.
func (NoopMessenger) SendMessage(_ context.Context, text string) error {
	obs.Logger.Info("message_skipped_channel_disabled", "text", text)
	return nil
}

// NoopReporter stands in when email is not configured.
type NoopReporter struct{}

// SendReport implements Reporter.
func (NoopReporter) SendReport(_ context.Context, subject, _ string, attachment []byte, attachmentName string) error {
	obs.Logger.Info("report_skipped_channel_disabled",
		"subject", subject,
		"attachment_name", attachmentName,
		"attachment_bytes", len(attachment),
	)
	return nil
}
