package app

import (
	"fmt"
	"strings"
	"time"

	"shopbot/internal/catalog"
	"shopbot/internal/config"
	"shopbot/internal/session"
	"shopbot/internal/storage"
	"shopbot/internal/web"
)

type Config = config.Config

func parseDurationField(path, raw string) (time.Duration, error) {
	return config.ParseDurationField(path, raw)
}

func parseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	return config.ParseDurationOrDefault(path, raw, def)
}

func mapStorageConfig(cfg *Config) (storage.Config, bool, error) {
	if cfg == nil || cfg.Storage == nil {
		return storage.Config{}, false, nil
	}
	sc := cfg.Storage
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	if driver == "" || driver == "none" {
		return storage.Config{}, false, nil
	}
	path := strings.TrimSpace(sc.Path)

	switch driver {
	case "file":
		if path == "" {
			return storage.Config{}, false, fmt.Errorf("storage.path is required when storage.driver=file")
		}
		return storage.Config{Driver: driver, Path: path}, true, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return storage.Config{}, false, fmt.Errorf("storage.path is required when storage.driver=sqlite")
		}
		busy, err := parseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, time.Second)
		if err != nil {
			return storage.Config{}, false, err
		}
		return storage.Config{Driver: driver, Path: path, BusyTimeout: busy}, true, nil
	case "http":
		if strings.TrimSpace(sc.URL) == "" {
			return storage.Config{}, false, fmt.Errorf("storage.url is required when storage.driver=http")
		}
		return storage.Config{Driver: driver, URL: strings.TrimSpace(sc.URL)}, true, nil
	default:
		return storage.Config{}, false, fmt.Errorf("unknown storage.driver: %s", sc.Driver)
	}
}

func mapSessionConfig(cfg *Config) (session.Config, error) {
	sc := session.Config{}
	if cfg == nil || cfg.Sessions == nil {
		return sc, nil
	}
	c := cfg.Sessions
	ttl, err := parseDurationField("sessions.ttl", c.TTL)
	if err != nil {
		return sc, err
	}
	driver := strings.ToLower(strings.TrimSpace(c.Driver))
	if driver == "redis" && strings.TrimSpace(c.Addr) == "" {
		return sc, fmt.Errorf("sessions.addr is required when sessions.driver=redis")
	}
	return session.Config{
		Driver:   driver,
		Addr:     strings.TrimSpace(c.Addr),
		Password: c.Password,
		DB:       c.DB,
		TTL:      ttl,
	}, nil
}

func mapCatalogConfig(cfg *Config) (catalog.Config, error) {
	if cfg == nil {
		return catalog.Config{}, nil
	}
	c := cfg.Catalog
	ttl, err := parseDurationField("catalog.cache_ttl", c.CacheTTL)
	if err != nil {
		return catalog.Config{}, err
	}
	fetchTimeout, err := parseDurationField("catalog.fetch_timeout", c.FetchTimeout)
	if err != nil {
		return catalog.Config{}, err
	}
	return catalog.Config{
		SourceURL:    strings.TrimSpace(c.SourceURL),
		Refresh:      strings.TrimSpace(c.Refresh),
		CacheTTL:     ttl,
		FetchTimeout: fetchTimeout,
	}, nil
}

func mapWebConfig(cfg *Config) (web.Config, error) {
	if cfg == nil {
		return web.Config{}, nil
	}
	c := cfg.Web
	readTO, err := parseDurationField("web.read_timeout", c.ReadTimeout)
	if err != nil {
		return web.Config{}, err
	}
	writeTO, err := parseDurationField("web.write_timeout", c.WriteTimeout)
	if err != nil {
		return web.Config{}, err
	}
	idleTO, err := parseDurationField("web.idle_timeout", c.IdleTimeout)
	if err != nil {
		return web.Config{}, err
	}
	return web.Config{
		Enabled:      c.Enabled,
		Addr:         strings.TrimSpace(c.Addr),
		StaticDir:    strings.TrimSpace(c.StaticDir),
		ReadTimeout:  readTO,
		WriteTimeout: writeTO,
		IdleTimeout:  idleTO,
	}, nil
}
