// Package app wires configuration, transport, storage, catalog, web server
// and the order intake pipeline into one runnable unit.
package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"shopbot/internal/bot"
	"shopbot/internal/catalog"
	"shopbot/internal/config"
	"shopbot/internal/order"
	"shopbot/internal/runtime/supervisor"
	"shopbot/internal/session"
	"shopbot/internal/storage"
	kit "shopbot/internal/transport"
	telegram "shopbot/internal/transport/telegram/adapter"
	"shopbot/internal/web"
	logx "shopbot/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service

	adapter  *telegram.Adapter
	store    storage.Store
	sessions session.Store
	catalog  *catalog.Service
	web      *web.Service

	pipeline *order.Pipeline
	router   *bot.Router

	// adminChatID and webAppURL are read per request so reloads apply live.
	adminChatID atomic.Int64
	webAppURL   atomic.Value // string

	updates chan kit.Update
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))

	pollTimeout, err := parseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	ad, err := telegram.New(telegram.Config{
		Token:          cfg.Telegram.Token,
		PollTimeout:    pollTimeout,
		SendRatePerSec: cfg.Telegram.SendRatePerSec,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, err
	}

	// Order journal (optional)
	var store storage.Store
	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		return nil, err
	} else if enabled {
		st, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
		if err != nil {
			return nil, err
		}
		store = st
	}

	sessCfg, err := mapSessionConfig(cfg)
	if err != nil {
		return nil, err
	}
	sessions, err := session.Open(sessCfg, log.With(logx.String("comp", "sessions")))
	if err != nil {
		return nil, err
	}

	catCfg, err := mapCatalogConfig(cfg)
	if err != nil {
		return nil, err
	}
	catSvc := catalog.New(catCfg, log)

	webCfg, err := mapWebConfig(cfg)
	if err != nil {
		return nil, err
	}
	webSvc := web.New(webCfg, catSvc, log)

	a := &App{
		cfgPath:  cfgPath,
		cfgm:     cfgm,
		log:      log,
		logs:     logSvc,
		adapter:  ad,
		store:    store,
		sessions: sessions,
		catalog:  catSvc,
		web:      webSvc,
		updates:  make(chan kit.Update, 256),
	}
	a.adminChatID.Store(cfg.Telegram.AdminChatID)
	a.webAppURL.Store(cfg.Telegram.WebAppURL)

	// A disabled journal must stay a nil interface, not a typed-nil adapter.
	var journal order.Journal
	if store != nil {
		journal = storage.NewOrderJournal(store)
	}
	a.pipeline = order.NewPipeline(
		ad,
		func() int64 { return a.adminChatID.Load() },
		journal,
		sessions,
		log.With(logx.String("comp", "order")),
	)
	a.router = bot.NewRouter(bot.Config{
		WebAppURL: func() string { v, _ := a.webAppURL.Load().(string); return v },
	}, ad, a.pipeline, sessions, log)

	return a, nil
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	// transactional config reload: validate before commit/publish
	a.cfgm.SetValidator(func(_ context.Context, cfg *Config) error {
		if cfg.Telegram.Token == "" {
			return fmt.Errorf("telegram.token is required")
		}
		if _, err := parseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout); err != nil {
			return err
		}
		if _, _, err := mapStorageConfig(cfg); err != nil {
			return err
		}
		if _, err := mapSessionConfig(cfg); err != nil {
			return err
		}
		if _, err := mapCatalogConfig(cfg); err != nil {
			return err
		}
		if _, err := mapWebConfig(cfg); err != nil {
			return err
		}
		return nil
	})

	if err := a.adapter.Start(a.sup.Context(), a.updates); err != nil {
		return err
	}
	if err := a.catalog.Start(a.sup.Context()); err != nil {
		return err
	}
	if err := a.web.Start(a.sup.Context()); err != nil {
		return err
	}
	a.router.StartOn(a.sup, a.updates)

	// hot reload fan-out
	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				a.applyReload(newCfg)
			}
		}
	})
	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	a.log.Info("app started")
	return nil
}

// applyReload applies the subset of config that is safe to change live:
// logging, admin chat, web-app URL. Everything else needs a restart.
func (a *App) applyReload(cfg *Config) {
	if cfg == nil {
		return
	}
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	prevAdmin := a.adminChatID.Swap(cfg.Telegram.AdminChatID)
	if prevAdmin != cfg.Telegram.AdminChatID {
		a.log.Info("admin chat updated",
			logx.Int64("old", prevAdmin), logx.Int64("new", cfg.Telegram.AdminChatID))
	}
	a.webAppURL.Store(cfg.Telegram.WebAppURL)

	a.log.Info("config reloaded")
}

func (a *App) Stop(ctx context.Context) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping")
	a.sup.Cancel()

	// One component must not stall the whole stop.
	step := func(name string, max time.Duration, fn func(context.Context) error) {
		stepCtx, cancel := context.WithTimeout(ctx, max)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
			}
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)", logx.String("name", name))
		}
	}

	step("adapter", 2*time.Second, func(c context.Context) error { return a.adapter.Stop(c) })
	step("web", 2*time.Second, func(c context.Context) error { return a.web.Stop(c) })
	step("catalog", time.Second, func(context.Context) error { a.catalog.Stop(); return nil })
	step("sessions", time.Second, func(context.Context) error {
		if a.sessions != nil {
			return a.sessions.Close()
		}
		return nil
	})
	step("storage", time.Second, func(context.Context) error {
		if a.store != nil {
			return a.store.Close()
		}
		return nil
	})
	step("supervisor", 2*time.Second, func(c context.Context) error { return a.sup.Wait(c) })

	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return nil
}
