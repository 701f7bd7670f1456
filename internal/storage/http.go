package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	logx "shopbot/pkg/logx"
)

// httpStore POSTs each order row to an external collector, typically a
// spreadsheet webhook. Delivery is best-effort; the caller decides whether a
// failed append is fatal.
type httpStore struct {
	url    string
	client *http.Client
	log    logx.Logger
}

func openHTTP(cfg Config, log logx.Logger) (Store, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("storage.url is required for http driver")
	}
	log.Info("order journal opened", logx.String("driver", "http"), logx.String("url", url))
	return &httpStore{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}, nil
}

func (s *httpStore) AppendOrder(ctx context.Context, rec OrderRecord) error {
	if s == nil || s.client == nil {
		return ErrDisabled
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector returned %s", resp.Status)
	}
	return nil
}

func (s *httpStore) Close() error { return nil }
