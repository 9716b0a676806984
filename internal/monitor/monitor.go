// Package monitor runs the periodic stock evaluation loop and dispatches
// edge-triggered notifications.
package monitor

import (
	"context"
	"time"

	"github.com/stocksentry/stocksentry/internal/config"
	"github.com/stocksentry/stocksentry/internal/model"
	"github.com/stocksentry/stocksentry/internal/notify"
	"github.com/stocksentry/stocksentry/internal/obs"
	"github.com/stocksentry/stocksentry/internal/report"
	"github.com/stocksentry/stocksentry/internal/store"
)

// Monitor evaluates stock levels on a fixed interval. Per product it tracks
// the last observed status and fires exactly one notification per status
// transition; an unchanged status never re-notifies. Delivery failures are
// logged and the transition still counts as seen, so a flaky transport does
// not cause alert storms.
type Monitor struct {
	cfg config.Config
	st  *store.Store
	msg notify.Messenger
	rep notify.Reporter

	statuses map[string]model.StockStatus

	reportHour   int
	reportMinute int
	lastReport   string // "2006-01-02" of the last daily report

	now    func() time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a Monitor. The initial statuses are derived from current
// quantities on the first tick without firing notifications. A report time
// already past at startup does not trigger a catch-up send.
func New(cfg config.Config, st *store.Store, msg notify.Messenger, rep notify.Reporter) *Monitor {
	h, m, _ := config.ParseClock(cfg.DailyReportAt) // validated in config.Load
	mon := &Monitor{
		cfg:          cfg,
		st:           st,
		msg:          msg,
		rep:          rep,
		statuses:     make(map[string]model.StockStatus),
		reportHour:   h,
		reportMinute: m,
		now:          time.Now,
	}
	if now := mon.now(); !now.Before(mon.reportDue(now)) {
		mon.lastReport = now.Format("2006-01-02")
	}
	return mon
}

// Start launches the evaluation loop in the background.
func (m *Monitor) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.run(ctx)
}

// Stop cancels the loop and waits for the current tick to finish. In-flight
// notification sends complete or time out on their own contexts.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)
	t := time.NewTicker(m.cfg.MonitorInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.tick(ctx)
		}
	}
}

// tick reads one snapshot, dispatches status transitions, and sends the
// daily report when due. The store lock is never held here; the snapshot is
// a copy and all sends run against it.
func (m *Monitor) tick(ctx context.Context) {
	snap := m.st.Snapshot()
	for _, tr := range m.evaluate(snap) {
		m.dispatch(ctx, tr)
	}
	m.maybeDailyReport(ctx)
}

// evaluate computes the status transitions since the previous tick and
// records the new statuses. First observations initialize silently; removed
// products are forgotten.
func (m *Monitor) evaluate(snap []model.Product) []model.Transition {
	var out []model.Transition
	seen := make(map[string]struct{}, len(snap))
	for _, p := range snap {
		seen[p.ID] = struct{}{}
		next := model.StatusFor(p.Quantity, m.cfg.LowStockThreshold)
		prev, ok := m.statuses[p.ID]
		m.statuses[p.ID] = next
		if !ok || prev == next {
			continue
		}
		out = append(out, model.Transition{
			ProductID: p.ID,
			Name:      p.Name,
			From:      prev,
			To:        next,
			Quantity:  p.Quantity,
		})
	}
	for id := range m.statuses {
		if _, ok := seen[id]; !ok {
			delete(m.statuses, id)
		}
	}
	return out
}

func (m *Monitor) dispatch(ctx context.Context, tr model.Transition) {
	sctx, cancel := context.WithTimeout(ctx, m.cfg.NotifyTimeout)
	defer cancel()
	if err := m.msg.SendMessage(sctx, report.AlertText(tr)); err != nil {
		obs.Logger.Error("notification_failed",
			"product_id", tr.ProductID,
			"from", string(tr.From),
			"to", string(tr.To),
			"error", err,
		)
		return
	}
	obs.Logger.Info("notification_sent",
		"product_id", tr.ProductID,
		"from", string(tr.From),
		"to", string(tr.To),
		"quantity", tr.Quantity,
	)
}

// reportDue returns today's scheduled report time for the given moment.
func (m *Monitor) reportDue(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), m.reportHour, m.reportMinute, 0, 0, now.Location())
}

// maybeDailyReport sends the daily report the first tick at or after the
// configured time of day, at most once per day. The day is marked sent even
// when delivery fails; the next attempt is tomorrow.
func (m *Monitor) maybeDailyReport(ctx context.Context) {
	now := m.now()
	day := now.Format("2006-01-02")
	if day == m.lastReport || now.Before(m.reportDue(now)) {
		return
	}
	m.lastReport = day
	csvBytes, err := m.st.ExportCSV()
	if err != nil {
		obs.Logger.Error("daily_report_export_failed", "error", err)
		return
	}
	body := report.DailyBody(m.st.Status(), m.st.RecentActivities(5))
	sctx, cancel := context.WithTimeout(ctx, m.cfg.NotifyTimeout)
	defer cancel()
	if err := m.rep.SendReport(sctx, report.DailySubject(now), body, csvBytes, report.AttachmentName(now)); err != nil {
		obs.Logger.Error("daily_report_failed", "error", err)
		return
	}
	obs.Logger.Info("daily_report_sent", "day", day)
}
