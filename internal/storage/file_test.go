package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"shopbot/internal/order"
	logx "shopbot/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	for _, driver := range []string{"", "none", "NONE", " none "} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("driver %q: got (%v, %v), want disabled", driver, st, err)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "cassandra"}, logx.Nop()); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestFileAppendAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.jsonl")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	recs := []OrderRecord{
		{OrderID: "a", CustomerID: 1, Total: 100, ItemsJSON: "[]"},
		{OrderID: "b", CustomerID: 2, Handle: "bob", Total: 70.5, ItemsJSON: `[{"name":"Cola"}]`},
	}
	for _, r := range recs {
		if err := st.AppendOrder(context.Background(), r); err != nil {
			t.Fatalf("AppendOrder: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()

	var got []OrderRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r OrderRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("bad journal line %q: %v", sc.Text(), err)
		}
		got = append(got, r)
	}
	if len(got) != 2 {
		t.Fatalf("journal has %d lines, want 2", len(got))
	}
	if got[0].OrderID != "a" || got[1].OrderID != "b" {
		t.Fatalf("order ids = %q, %q", got[0].OrderID, got[1].OrderID)
	}
	if got[1].Total != 70.5 || got[1].Handle != "bob" {
		t.Fatalf("record = %+v", got[1])
	}
	if got[0].At.IsZero() {
		t.Fatalf("timestamp not stamped on append")
	}
}

func TestFileAppendAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.jsonl")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := st.AppendOrder(context.Background(), OrderRecord{OrderID: "x"}); err == nil {
		t.Fatalf("append after close succeeded")
	}
}

func TestHTTPAppend(t *testing.T) {
	var got OrderRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st, err := Open(Config{Driver: "http", URL: srv.URL}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.AppendOrder(context.Background(), OrderRecord{OrderID: "o1", Total: 42}); err != nil {
		t.Fatalf("AppendOrder: %v", err)
	}
	if got.OrderID != "o1" || got.Total != 42 {
		t.Fatalf("collector saw %+v", got)
	}
}

func TestHTTPAppendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	st, err := Open(Config{Driver: "http", URL: srv.URL}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.AppendOrder(context.Background(), OrderRecord{OrderID: "o1"}); err == nil {
		t.Fatalf("expected error for 403 response")
	}
}

func TestRecordFromOrder(t *testing.T) {
	total := 150.0
	o := &order.Order{
		ID:       "ord-1",
		Customer: order.Customer{ID: 7, Username: "alice", DisplayName: "Alice"},
		Items: []order.LineItem{
			{Name: "Cola", Quantity: 2, UnitPrice: 100},
		},
		DeclaredTotal: &total,
	}
	rec := RecordFromOrder(o)
	if rec.OrderID != "ord-1" || rec.CustomerID != 7 || rec.Handle != "alice" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.Total != 150 {
		t.Fatalf("total = %v, want declared 150", rec.Total)
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(rec.ItemsJSON), &items); err != nil {
		t.Fatalf("items json: %v", err)
	}
	if len(items) != 1 || items[0]["name"] != "Cola" {
		t.Fatalf("items = %v", items)
	}
}
