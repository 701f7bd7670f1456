package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"shopbot/internal/catalog"
	logx "shopbot/pkg/logx"
)

type stubSource struct {
	products []catalog.Product
	err      error
}

func (s *stubSource) Snapshot(context.Context) ([]catalog.Product, error) {
	return s.products, s.err
}

func TestProductsEndpoint(t *testing.T) {
	src := &stubSource{products: []catalog.Product{
		{ID: "p1", Name: "Cola", Price: 100, InStock: true},
	}}
	h := New(Config{}, src, logx.Nop()).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content-type = %q", ct)
	}

	var got []catalog.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Cola" {
		t.Fatalf("got %+v", got)
	}
}

func TestProductsEndpointEmptySliceNotNull(t *testing.T) {
	h := New(Config{}, &stubSource{}, logx.Nop()).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("body = %q, want JSON array", body)
	}
}

func TestProductsEndpointSourceError(t *testing.T) {
	h := New(Config{}, &stubSource{err: errors.New("boom")}, logx.Nop()).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestProductsEndpointMethodNotAllowed(t *testing.T) {
	h := New(Config{}, &stubSource{}, logx.Nop()).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := New(Config{}, &stubSource{}, logx.Nop()).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>shop</html>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	h := New(Config{StaticDir: dir}, &stubSource{}, logx.Nop()).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "<html>shop</html>" {
		t.Fatalf("static = %d %q", rec.Code, rec.Body.String())
	}
}
