package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stocksentry/stocksentry/internal/model"
)

func TestAlertText(t *testing.T) {
	tr := model.Transition{
		ProductID: "P001",
		Name:      "Wireless Mouse",
		From:      model.StatusOK,
		To:        model.StatusLow,
		Quantity:  5,
	}
	got := AlertText(tr)
	assert.Contains(t, got, "Wireless Mouse")
	assert.Contains(t, got, "P001")
	assert.Contains(t, got, "ok -> low")
	assert.Contains(t, got, "quantity now 5")
}

func TestDigestEmpty(t *testing.T) {
	assert.Equal(t, "No recent activities to report.", Digest(nil))
}

func TestDigestNumbersEntries(t *testing.T) {
	ts := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	entries := []model.ActivityEntry{
		{Timestamp: ts, Operation: model.OpSell, ProductID: "P001", Detail: "sold 3 of Mouse, remaining qty=2"},
		{Timestamp: ts.Add(-time.Minute), Operation: model.OpAdd, ProductID: "P002", Detail: "added Keyboard"},
	}
	got := Digest(entries)
	assert.Contains(t, got, "1. ")
	assert.Contains(t, got, "2. ")
	assert.Contains(t, got, "sell P001")
	assert.Contains(t, got, "add P002")
}

func TestDailySubjectAndAttachmentName(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "Inventory Daily Report - 2026-03-02", DailySubject(ts))
	assert.Equal(t, "inventory_report_20260302.csv", AttachmentName(ts))
}

func TestDailyBody(t *testing.T) {
	status := model.StatusSummary{
		TotalProducts: 3,
		TotalUnits:    53,
		TotalValue:    112.5,
		Low:           []model.Product{{ID: "P001"}},
		Out:           []model.Product{{ID: "P002"}},
	}
	got := DailyBody(status, nil)
	assert.Contains(t, got, "Total products: 3")
	assert.Contains(t, got, "Total units: 53")
	assert.Contains(t, got, "Out of stock items: 1")
	assert.Contains(t, got, "Low stock items: 1")
	assert.Contains(t, got, "$112.50")
	assert.Contains(t, got, "attached CSV")
}
