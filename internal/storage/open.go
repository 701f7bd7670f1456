package storage

import (
	"context"
	"errors"
	"strings"

	logx "shopbot/pkg/logx"
)

// Store is the order journal API.
type Store interface {
	AppendOrder(ctx context.Context, rec OrderRecord) error
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if journaling is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "http":
		return openHTTP(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
