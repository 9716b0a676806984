package notify

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/stocksentry/stocksentry/internal/config"
	"github.com/stocksentry/stocksentry/internal/obs"
)

// MailReporter sends reports and short alerts over SMTP. It implements both
// Reporter (daily report with CSV attachment) and Messenger (immediate
// activity alerts), mirroring the two kinds of mail the service sends.
type MailReporter struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

// NewMailReporter builds a reporter from validated SMTP settings.
func NewMailReporter(cfg config.EmailConfig) *MailReporter {
	return &MailReporter{
		dialer: gomail.NewDialer(cfg.Server, cfg.Port, cfg.Sender, cfg.Password),
		from:   cfg.Sender,
		to:     cfg.Recipient,
	}
}

// SendReport implements Reporter. The attachment is built in memory and
// streamed into the message, no temp files. The dialer has no deadline knob,
// so the send runs in a goroutine and the context bounds the wait; an
// abandoned send finishes on the TCP timeout in the background.
func (m *MailReporter) SendReport(ctx context.Context, subject, body string, attachment []byte, attachmentName string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if len(attachment) > 0 {
		msg.Attach(attachmentName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(attachment)
			return err
		}))
	}
	errc := make(chan error, 1)
	go func() { errc <- m.dialer.DialAndSend(msg) }()
	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", m.to, err)
		}
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s: %w", m.to, ctx.Err())
	}
	obs.Logger.Info("email_sent", "to", m.to, "subject", subject, "attachment_name", attachmentName)
	return nil
}

// SendMessage implements Messenger by mailing the alert text with a fixed
// subject line.
func (m *MailReporter) SendMessage(ctx context.Context, text string) error {
	return m.SendReport(ctx, "Inventory Activity Notification", text, nil, "")
}
