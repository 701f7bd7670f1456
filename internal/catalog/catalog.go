// Package catalog serves the product list shown inside the mini-app.
//
// Products live in an external spreadsheet published as JSON. The service
// keeps a cached snapshot, refreshes it on a cron schedule, and falls back to
// the last good snapshot when the source is unreachable.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "shopbot/pkg/logx"
)

// Product is a single sellable item.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand,omitempty"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
	InStock  bool    `json:"in_stock"`
}

// Config for the catalog service. Zero-valued durations get defaults.
type Config struct {
	SourceURL    string
	Refresh      string // cron spec or @every descriptor; empty disables the schedule
	CacheTTL     time.Duration
	FetchTimeout time.Duration
}

const (
	defaultCacheTTL     = 5 * time.Minute
	defaultFetchTimeout = 10 * time.Second
	maxSourceBytes      = 4 << 20
)

type Service struct {
	cfg    Config
	client *http.Client
	log    logx.Logger

	mu        sync.RWMutex
	products  []Product
	fetchedAt time.Time

	c       *cron.Cron
	entryID cron.EntryID
}

func New(cfg Config, log logx.Logger) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
		log:    log.With(logx.String("component", "catalog")),
	}
}

// Start registers the refresh schedule and primes the cache. A failed initial
// fetch is logged but not fatal; the first Snapshot call retries.
func (s *Service) Start(ctx context.Context) error {
	if s.cfg.SourceURL == "" {
		return fmt.Errorf("catalog: source_url is required")
	}

	if _, err := s.Refresh(ctx); err != nil {
		s.log.Warn("initial catalog fetch failed", logx.Err(err))
	}

	if s.cfg.Refresh == "" {
		return nil
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	s.c = cron.New(cron.WithParser(parser))
	id, err := s.c.AddFunc(s.cfg.Refresh, func() {
		rctx, cancel := context.WithTimeout(context.Background(), s.cfg.FetchTimeout)
		defer cancel()
		if _, err := s.Refresh(rctx); err != nil {
			s.log.Warn("scheduled catalog refresh failed", logx.Err(err))
		}
	})
	if err != nil {
		s.c = nil
		return fmt.Errorf("catalog: bad refresh spec %q: %w", s.cfg.Refresh, err)
	}
	s.entryID = id
	s.c.Start()
	s.log.Info("catalog refresh scheduled", logx.String("spec", s.cfg.Refresh))
	return nil
}

func (s *Service) Stop() {
	if s.c == nil {
		return
	}
	stopCtx := s.c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(2 * time.Second):
	}
	s.c = nil
}

// Snapshot returns the cached product list, refetching when the cache is
// older than CacheTTL. A stale snapshot is returned as-is if the refetch
// fails and any previous fetch succeeded.
func (s *Service) Snapshot(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	fresh := time.Since(s.fetchedAt) < s.cfg.CacheTTL && s.fetchedAt != (time.Time{})
	cached := s.products
	s.mu.RUnlock()
	if fresh {
		return cached, nil
	}

	products, err := s.Refresh(ctx)
	if err != nil {
		if cached != nil {
			s.log.Warn("serving stale catalog snapshot", logx.Err(err))
			return cached, nil
		}
		return nil, err
	}
	return products, nil
}

// Refresh fetches the source unconditionally and swaps the cache on success.
func (s *Service) Refresh(ctx context.Context) ([]Product, error) {
	products, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.products = products
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	s.log.Debug("catalog refreshed", logx.Int("products", len(products)))
	return products, nil
}

func (s *Service) fetch(ctx context.Context) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.SourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog: source returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("catalog: read body: %w", err)
	}
	return decodeProducts(body)
}

// decodeProducts accepts either a bare JSON array or an object wrapping one
// under "products" (both shapes occur in published-sheet exports).
func decodeProducts(body []byte) ([]Product, error) {
	var raw []Product
	if err := json.Unmarshal(body, &raw); err != nil {
		var wrapped struct {
			Products []Product `json:"products"`
		}
		if err2 := json.Unmarshal(body, &wrapped); err2 != nil || wrapped.Products == nil {
			return nil, fmt.Errorf("catalog: decode: %w", err)
		}
		raw = wrapped.Products
	}

	out := make([]Product, 0, len(raw))
	for _, p := range raw {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" || !p.InStock || p.Price < 0 {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Brand != out[j].Brand {
			return out[i].Brand < out[j].Brand
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
