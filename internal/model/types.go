// Package model defines domain types used by the service.
package model

import "time"

// StockStatus classifies a product's quantity against the low-stock threshold.
type StockStatus string

const (
	StatusOK  StockStatus = "ok"
	StatusLow StockStatus = "low"
	StatusOut StockStatus = "out"
)

// StatusFor derives the stock status for a quantity given a threshold.
// quantity == 0 is out of stock; anything below the threshold is low.
func StatusFor(quantity, threshold int) StockStatus {
	switch {
	case quantity <= 0:
		return StatusOut
	case quantity < threshold:
		return StatusLow
	default:
		return StatusOK
	}
}

// Product represents a single inventory record.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	LastUpdated time.Time `json:"last_updated"`
}

// Activity operation kinds.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpSell   = "sell"
	OpRemove = "remove"
)

// ActivityEntry is one append-only audit record written per mutation.
type ActivityEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	ProductID string    `json:"product_id"`
	Detail    string    `json:"detail"`
}

// StatusSummary is a point-in-time partition of the inventory by stock status.
type StatusSummary struct {
	TotalProducts int       `json:"total_products"`
	TotalUnits    int       `json:"total_units"`
	TotalValue    float64   `json:"total_value"`
	OK            []Product `json:"ok"`
	Low           []Product `json:"low"`
	Out           []Product `json:"out"`
}

// Transition describes one stock-status change observed by the monitor.
type Transition struct {
	ProductID string      `json:"product_id"`
	Name      string      `json:"name"`
	From      StockStatus `json:"from"`
	To        StockStatus `json:"to"`
	Quantity  int         `json:"quantity"`
}
