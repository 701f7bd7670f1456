package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	kit "shopbot/internal/transport"
	logx "shopbot/pkg/logx"
)

type sentMsg struct {
	ChatID    int64
	Text      string
	ParseMode string
}

// fakeSender records sends and can fail selectively per chat.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMsg
	failFor map[int64]error
}

func (f *fakeSender) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[to.ChatID]; err != nil {
		return kit.MessageRef{}, err
	}
	pm := ""
	if opt != nil {
		pm = opt.ParseMode
	}
	f.sent = append(f.sent, sentMsg{ChatID: to.ChatID, Text: text, ParseMode: pm})
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(f.sent)}, nil
}

func (f *fakeSender) toChat(chatID int64) []sentMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMsg
	for _, m := range f.sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

const (
	adminChat    = int64(1000)
	customerChat = int64(7)
)

func TestDispatchDeliversChunksInOrderThenAcks(t *testing.T) {
	fs := &fakeSender{}
	d := NewDispatcher(fs, logx.Nop())

	chunks := []string{"part-1", "part-2", "part-3"}
	out := d.Dispatch(context.Background(), chunks, adminChat, kit.ChatTarget{ChatID: customerChat}, "ack")

	if !out.AdminDelivered || !out.CustomerAcked || out.Err != nil {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	got := fs.toChat(adminChat)
	if len(got) != 3 {
		t.Fatalf("expected 3 admin sends, got %d", len(got))
	}
	for i, m := range got {
		if m.Text != chunks[i] {
			t.Fatalf("chunk %d out of order: %q", i, m.Text)
		}
		if m.ParseMode != "HTML" {
			t.Fatalf("admin chunk sent without HTML parse mode")
		}
	}
	acks := fs.toChat(customerChat)
	if len(acks) != 1 || acks[0].Text != "ack" {
		t.Fatalf("expected exactly one ack, got %v", acks)
	}
}

func TestDispatchNoAdminConfigured(t *testing.T) {
	fs := &fakeSender{}
	d := NewDispatcher(fs, logx.Nop())

	out := d.Dispatch(context.Background(), []string{"msg"}, 0, kit.ChatTarget{ChatID: customerChat}, "ack")

	if out.AdminDelivered {
		t.Fatalf("admin delivery reported despite unset channel")
	}
	if out.Err != nil {
		t.Fatalf("missing admin channel must be a degraded success, got err=%v", out.Err)
	}
	if !out.CustomerAcked {
		t.Fatalf("customer must still be acknowledged")
	}
	if len(fs.sent) != 1 || fs.sent[0].ChatID != customerChat {
		t.Fatalf("expected only the customer ack, got %v", fs.sent)
	}
}

func TestDispatchAdminFailureStillAcksCustomer(t *testing.T) {
	boom := errors.New("telegram: chat not found")
	fs := &fakeSender{failFor: map[int64]error{adminChat: boom}}
	d := NewDispatcher(fs, logx.Nop())

	out := d.Dispatch(context.Background(), []string{"a", "b"}, adminChat, kit.ChatTarget{ChatID: customerChat}, "ack")

	if out.AdminDelivered {
		t.Fatalf("admin delivery should have failed")
	}
	if !errors.Is(out.Err, boom) {
		t.Fatalf("expected dispatch error, got %v", out.Err)
	}
	if !out.CustomerAcked {
		t.Fatalf("customer ack must survive admin failure")
	}
	if got := fs.toChat(customerChat); len(got) != 1 {
		t.Fatalf("expected 1 customer message, got %d", len(got))
	}
}

func TestDispatchCustomerFailureReported(t *testing.T) {
	boom := errors.New("blocked by user")
	fs := &fakeSender{failFor: map[int64]error{customerChat: boom}}
	d := NewDispatcher(fs, logx.Nop())

	out := d.Dispatch(context.Background(), []string{"a"}, adminChat, kit.ChatTarget{ChatID: customerChat}, "ack")

	if !out.AdminDelivered {
		t.Fatalf("admin delivery should have succeeded")
	}
	if out.CustomerAcked {
		t.Fatalf("customer ack should have failed")
	}
	if !errors.Is(out.Err, boom) {
		t.Fatalf("expected customer error surfaced, got %v", out.Err)
	}
}
