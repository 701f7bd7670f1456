package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures the order journal.
//
// Driver values:
//   - "file": dependency-free jsonl backend
//   - "sqlite": SQLite database file (optional build tag)
//   - "http": POST each order row to an external collector
//
// If Driver is empty or "none", journaling is disabled.
type Config struct {
	Driver      string
	Path        string
	URL         string        // http only
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// OrderRecord is one journaled order.
// Keep it compact and schema-stable.
type OrderRecord struct {
	OrderID     string    `json:"order_id"`
	At          time.Time `json:"at"`
	CustomerID  int64     `json:"customer_id"`
	Handle      string    `json:"handle,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Total       float64   `json:"total"`
	ItemsJSON   string    `json:"items_json"`
}
