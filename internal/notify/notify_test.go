package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksentry/stocksentry/internal/obs"
)

type recordingMessenger struct {
	sent []string
	err  error
}

func (r *recordingMessenger) SendMessage(_ context.Context, text string) error {
	r.sent = append(r.sent, text)
	return r.err
}

func TestFanoutDeliversToAll(t *testing.T) {
	obs.InitLogger("info")
	a := &recordingMessenger{}
	b := &recordingMessenger{}
	f := Fanout{a, b}
	require.NoError(t, f.SendMessage(context.Background(), "hello"))
	assert.Equal(t, []string{"hello"}, a.sent)
	assert.Equal(t, []string{"hello"}, b.sent)
}

func TestFanoutOneFailureDoesNotBlockOthers(t *testing.T) {
	obs.InitLogger("info")
	broken := &recordingMessenger{err: errors.New("transport down")}
	ok := &recordingMessenger{}
	f := Fanout{broken, ok}
	err := f.SendMessage(context.Background(), "alert")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport down")
	assert.Equal(t, []string{"alert"}, ok.sent)
}

func TestFanoutEmptyIsNoop(t *testing.T) {
	obs.InitLogger("info")
	var f Fanout
	require.NoError(t, f.SendMessage(context.Background(), "nobody listening"))
}

func TestNoopChannels(t *testing.T) {
	obs.InitLogger("info")
	require.NoError(t, NoopMessenger{}.SendMessage(context.Background(), "skipped"))
	require.NoError(t, NoopReporter{}.SendReport(context.Background(), "subject", "body", []byte("csv"), "report.csv"))
}

func TestWhatsAppAddr(t *testing.T) {
	assert.Equal(t, "whatsapp:+15551234567", whatsappAddr("+15551234567"))
	assert.Equal(t, "whatsapp:+15551234567", whatsappAddr("whatsapp:+15551234567"))
}
