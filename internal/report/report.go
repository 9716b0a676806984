// Package report formats inventory summaries for outbound delivery.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/stocksentry/stocksentry/internal/model"
)

// AlertText renders a single stock-status transition as a one-line alert.
func AlertText(tr model.Transition) string {
	return fmt.Sprintf("Stock alert: %s (ID: %s) went %s -> %s, quantity now %d",
		tr.Name, tr.ProductID, tr.From, tr.To, tr.Quantity)
}

// Digest renders recent activity entries as a numbered multi-line summary,
// newest first.
func Digest(entries []model.ActivityEntry) string {
	if len(entries) == 0 {
		return "No recent activities to report."
	}
	var b strings.Builder
	b.WriteString("Recent inventory activities:\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s %s %s: %s\n",
			i+1, e.Timestamp.Format(time.RFC3339), e.Operation, e.ProductID, e.Detail)
	}
	return strings.TrimRight(b.String(), "\n")
}

// DailySubject is the subject line of the daily report email.
func DailySubject(t time.Time) string {
	return "Inventory Daily Report - " + t.Format("2006-01-02")
}

// AttachmentName names the CSV attached to the daily report.
func AttachmentName(t time.Time) string {
	return "inventory_report_" + t.Format("20060102") + ".csv"
}

// DailyBody renders the daily report email body from the status summary and
// the recent-activity digest.
func DailyBody(status model.StatusSummary, entries []model.ActivityEntry) string {
	var b strings.Builder
	b.WriteString("Inventory Status Report\n\n")
	fmt.Fprintf(&b, "Total products: %d\n", status.TotalProducts)
	fmt.Fprintf(&b, "Total units: %d\n", status.TotalUnits)
	fmt.Fprintf(&b, "Out of stock items: %d\n", len(status.Out))
	fmt.Fprintf(&b, "Low stock items: %d\n", len(status.Low))
	fmt.Fprintf(&b, "Total inventory value: $%.2f\n\n", status.TotalValue)
	b.WriteString(Digest(entries))
	b.WriteString("\n\nSee the attached CSV for full inventory details.\n")
	return b.String()
}
