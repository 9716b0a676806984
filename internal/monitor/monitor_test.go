package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stocksentry/stocksentry/internal/config"
	"github.com/stocksentry/stocksentry/internal/model"
	"github.com/stocksentry/stocksentry/internal/obs"
	"github.com/stocksentry/stocksentry/internal/store"
)

type fakeMessenger struct {
	sent []string
	err  error
}

func (f *fakeMessenger) SendMessage(_ context.Context, text string) error {
	f.sent = append(f.sent, text)
	return f.err
}

type fakeReporter struct {
	subjects    []string
	bodies      []string
	attachments [][]byte
	err         error
}

func (f *fakeReporter) SendReport(_ context.Context, subject, body string, attachment []byte, _ string) error {
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, body)
	f.attachments = append(f.attachments, attachment)
	return f.err
}

func testConfig() config.Config {
	return config.Config{
		LowStockThreshold: 10,
		MonitorInterval:   time.Second,
		DailyReportAt:     "09:00",
		NotifyTimeout:     time.Second,
	}
}

func setup(t *testing.T) (*store.Store, *fakeMessenger, *fakeReporter, *Monitor) {
	t.Helper()
	obs.InitLogger("info")
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "inv.json"), filepath.Join(dir, "act.jsonl"), 10)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	msg := &fakeMessenger{}
	rep := &fakeReporter{}
	m := New(testConfig(), st, msg, rep)
	// pin the clock before the scheduled report time so ticks exercise only
	// the transition path unless a test moves it
	m.now = func() time.Time { return time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC) }
	m.lastReport = ""
	return st, msg, rep, m
}

func TestFirstObservationInitializesSilently(t *testing.T) {
	st, msg, _, m := setup(t)
	if _, err := st.Add("P001", "Mouse", 3, 1, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	m.tick(context.Background())
	if len(msg.sent) != 0 {
		t.Fatalf("expected no notifications on first tick, got %v", msg.sent)
	}
	if m.statuses["P001"] != model.StatusLow {
		t.Fatalf("status not recorded: %v", m.statuses["P001"])
	}
}

func TestEdgeTriggeredTransitions(t *testing.T) {
	st, msg, _, m := setup(t)
	if _, err := st.Add("P001", "Mouse", 15, 1, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	m.tick(context.Background())
	if len(msg.sent) != 0 {
		t.Fatalf("startup should not notify, got %v", msg.sent)
	}

	if _, err := st.AdjustQuantity("P001", -10); err != nil { // 15 -> 5
		t.Fatalf("adjust: %v", err)
	}
	m.tick(context.Background())
	if len(msg.sent) != 1 {
		t.Fatalf("expected one ok->low event, got %v", msg.sent)
	}

	if _, err := st.AdjustQuantity("P001", -5); err != nil { // 5 -> 0
		t.Fatalf("adjust: %v", err)
	}
	m.tick(context.Background())
	if len(msg.sent) != 2 {
		t.Fatalf("expected one low->out event, got %v", msg.sent)
	}

	if _, err := st.AdjustQuantity("P001", 20); err != nil { // 0 -> 20
		t.Fatalf("adjust: %v", err)
	}
	m.tick(context.Background())
	if len(msg.sent) != 3 {
		t.Fatalf("expected one out->ok event, got %v", msg.sent)
	}
}

func TestUnchangedStatusNeverRenotifies(t *testing.T) {
	st, msg, _, m := setup(t)
	if _, err := st.Add("P001", "Mouse", 20, 1, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	m.tick(context.Background())
	if _, err := st.AdjustQuantity("P001", -15); err != nil { // ok -> low
		t.Fatalf("adjust: %v", err)
	}
	for i := 0; i < 5; i++ {
		m.tick(context.Background())
	}
	if len(msg.sent) != 1 {
		t.Fatalf("expected exactly one event across repeated ticks, got %d", len(msg.sent))
	}
}

func TestQuantityChangeWithinSameStatusIsSilent(t *testing.T) {
	st, msg, _, m := setup(t)
	if _, err := st.Add("P001", "Mouse", 8, 1, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	m.tick(context.Background())
	if _, err := st.AdjustQuantity("P001", -3); err != nil { // 8 -> 5, still low
		t.Fatalf("adjust: %v", err)
	}
	m.tick(context.Background())
	if len(msg.sent) != 0 {
		t.Fatalf("low->low should not notify, got %v", msg.sent)
	}
}

func TestDeliveryFailureStillMarksSeen(t *testing.T) {
	st, msg, _, m := setup(t)
	msg.err = errors.New("transport down")
	if _, err := st.Add("P001", "Mouse", 15, 1, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	m.tick(context.Background())
	if _, err := st.AdjustQuantity("P001", -10); err != nil { // ok -> low
		t.Fatalf("adjust: %v", err)
	}
	m.tick(context.Background())
	if len(msg.sent) != 1 {
		t.Fatalf("expected one attempted send, got %d", len(msg.sent))
	}
	// transition is seen despite the failure; no retry on the next tick
	m.tick(context.Background())
	if len(msg.sent) != 1 {
		t.Fatalf("expected no retry, got %d sends", len(msg.sent))
	}
	if m.statuses["P001"] != model.StatusLow {
		t.Fatalf("status not recorded after failed delivery")
	}
}

func TestRemovedProductForgotten(t *testing.T) {
	st, msg, _, m := setup(t)
	if _, err := st.Add("P001", "Mouse", 0, 1, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	m.tick(context.Background())
	if _, err := st.Remove("P001"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	m.tick(context.Background())
	if _, ok := m.statuses["P001"]; ok {
		t.Fatalf("status retained for removed product")
	}
	// re-adding is a fresh first observation, not a transition
	if _, err := st.Add("P001", "Mouse", 50, 1, ""); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	m.tick(context.Background())
	if len(msg.sent) != 0 {
		t.Fatalf("re-add should initialize silently, got %v", msg.sent)
	}
}

func TestDailyReportFiresOncePerDay(t *testing.T) {
	st, _, rep, m := setup(t)
	if _, err := st.Add("P001", "Mouse", 5, 9.99, "Tools"); err != nil {
		t.Fatalf("add: %v", err)
	}

	day1Morning := time.Date(2026, 3, 2, 8, 59, 0, 0, time.UTC)
	day1After := time.Date(2026, 3, 2, 9, 1, 0, 0, time.UTC)
	day2After := time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC)

	m.now = func() time.Time { return day1Morning }
	m.tick(context.Background())
	if len(rep.subjects) != 0 {
		t.Fatalf("report sent before scheduled time")
	}

	m.now = func() time.Time { return day1After }
	m.tick(context.Background())
	m.tick(context.Background())
	if len(rep.subjects) != 1 {
		t.Fatalf("expected exactly one report on day 1, got %d", len(rep.subjects))
	}
	if rep.subjects[0] != "Inventory Daily Report - 2026-03-02" {
		t.Fatalf("unexpected subject %q", rep.subjects[0])
	}
	if len(rep.attachments[0]) == 0 {
		t.Fatalf("expected csv attachment")
	}

	m.now = func() time.Time { return day2After }
	m.tick(context.Background())
	if len(rep.subjects) != 2 {
		t.Fatalf("expected a second report on day 2, got %d", len(rep.subjects))
	}
}

func TestDailyReportFailureWaitsForNextDay(t *testing.T) {
	st, _, rep, m := setup(t)
	if _, err := st.Add("P001", "Mouse", 5, 1, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	rep.err = errors.New("smtp down")
	m.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	m.tick(context.Background())
	m.tick(context.Background())
	if len(rep.subjects) != 1 {
		t.Fatalf("expected one failed attempt, got %d", len(rep.subjects))
	}
}

func TestStartStop(t *testing.T) {
	_, _, _, m := setup(t)
	m.cfg.MonitorInterval = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Stop did not return")
	}
}
