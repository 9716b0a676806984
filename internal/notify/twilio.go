package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/stocksentry/stocksentry/internal/config"
	"github.com/stocksentry/stocksentry/internal/obs"
)

// TwilioMessenger sends WhatsApp messages through the Twilio REST API.
type TwilioMessenger struct {
	client *twilio.RestClient
	from   string
	to     string
}

// NewTwilioMessenger builds a messenger from validated WhatsApp credentials.
func NewTwilioMessenger(cfg config.WhatsAppConfig) *TwilioMessenger {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioMessenger{
		client: client,
		from:   whatsappAddr(cfg.FromNumber),
		to:     whatsappAddr(cfg.ToNumber),
	}
}

// whatsappAddr normalizes a number to the "whatsapp:+<number>" form Twilio
// expects, whether or not the prefix was configured.
func whatsappAddr(number string) string {
	return "whatsapp:" + strings.TrimPrefix(number, "whatsapp:")
}

// SendMessage implements Messenger. The SDK manages its own HTTP timeouts;
// the context is part of the collaborator contract.
func (t *TwilioMessenger) SendMessage(_ context.Context, text string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(t.to)
	params.SetBody(text)
	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", t.to, err)
	}
	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	obs.Logger.Info("whatsapp_sent", "to", t.to, "sid", sid)
	return nil
}
