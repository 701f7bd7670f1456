// Package web hosts the mini-app: static files plus a tiny JSON API the
// storefront page calls to render the product list.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"shopbot/internal/catalog"
	rtsup "shopbot/internal/runtime/supervisor"
	logx "shopbot/pkg/logx"
)

// ProductSource yields the current product snapshot for /api/products.
type ProductSource interface {
	Snapshot(ctx context.Context) ([]catalog.Product, error)
}

type Config struct {
	Enabled   bool
	Addr      string
	StaticDir string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

const (
	defaultAddr         = ":8080"
	defaultStaticDir    = "./webapp"
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

type Service struct {
	cfg      Config
	products ProductSource
	log      logx.Logger

	mu  sync.Mutex
	ln  net.Listener
	srv *http.Server
	sup *rtsup.Supervisor
}

func New(cfg Config, products ProductSource, log logx.Logger) *Service {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = defaultStaticDir
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	return &Service{
		cfg:      cfg,
		products: products,
		log:      log.With(logx.String("component", "web")),
	}
}

func (s *Service) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("web: listen %s: %w", s.cfg.Addr, err)
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	sup := rtsup.New(ctx, rtsup.WithLogger(s.log))
	sup.Go("web.serve", func(context.Context) error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	s.mu.Lock()
	s.ln = ln
	s.srv = srv
	s.sup = sup
	s.mu.Unlock()

	s.log.Info("web server listening", logx.String("addr", ln.Addr().String()),
		logx.String("static_dir", s.cfg.StaticDir))
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, sup := s.srv, s.sup
	s.srv, s.ln, s.sup = nil, nil, nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	shCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shCtx)
	if sup != nil {
		_ = sup.Stop(shCtx)
	}
	return err
}

// Handler builds the route table. Split out so tests can drive it with
// httptest without binding a socket.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/api/products", s.handleProducts)
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	return mux
}

func (s *Service) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	products, err := s.products.Snapshot(ctx)
	if err != nil {
		s.log.Warn("products snapshot failed", logx.Err(err))
		http.Error(w, "catalog unavailable", http.StatusBadGateway)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(products); err != nil {
		s.log.Debug("products encode failed", logx.Err(err))
	}
}
