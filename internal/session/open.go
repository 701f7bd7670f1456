package session

import (
	"errors"
	"strings"

	logx "shopbot/pkg/logx"
)

// Open initializes the configured session store. An empty driver selects the
// in-memory backend.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "memory":
		return newMemoryStore(cfg.TTL), nil
	case "redis":
		return openRedis(cfg, log)
	default:
		return nil, errors.New("unknown session driver: " + driver)
	}
}
