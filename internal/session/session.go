// Package session keeps short-lived per-customer state, currently the last
// accepted order so /last can replay a receipt.
package session

import (
	"context"
	"time"

	"shopbot/internal/order"
)

const defaultTTL = 24 * time.Hour

// Store is the per-customer session API. GetLast returns ok=false when no
// session exists or it has expired.
type Store interface {
	PutLast(ctx context.Context, customerID int64, o *order.Order) error
	GetLast(ctx context.Context, customerID int64) (*order.Order, bool, error)
	Close() error
}

// Config selects the session backend.
//
// Driver values: "memory" (default) or "redis".
type Config struct {
	Driver   string
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}
