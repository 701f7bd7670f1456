package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"shopbot/internal/order"
	kit "shopbot/internal/transport"
	logx "shopbot/pkg/logx"
)

type sentMsg struct {
	chatID int64
	text   string
	opt    *kit.SendOptions
}

type fakeSender struct {
	sent    []sentMsg
	markups []any
}

func (f *fakeSender) SendText(_ context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	f.sent = append(f.sent, sentMsg{chatID: to.ChatID, text: text, opt: opt})
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(f.sent)}, nil
}

func (f *fakeSender) WebAppKeyboard(label, url string) any {
	m := map[string]string{"label": label, "url": url}
	f.markups = append(f.markups, m)
	return m
}

type fakeOrders struct {
	handled []*kit.Message
	out     order.Outcome
}

func (f *fakeOrders) Handle(_ context.Context, m *kit.Message) order.Outcome {
	f.handled = append(f.handled, m)
	return f.out
}

type fakeLast struct {
	o   *order.Order
	err error
}

func (f *fakeLast) GetLast(context.Context, int64) (*order.Order, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.o, f.o != nil, nil
}

func textMsg(text string) *kit.Message {
	return &kit.Message{ChatID: 7, FromID: 7, Text: text}
}

func newTestRouter(sender order.Sender, orders OrderHandler, last LastGetter, url string) *Router {
	return NewRouter(Config{WebAppURL: func() string { return url }}, sender, orders, last, logx.Nop())
}

func TestCommandParsing(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/start", "/start"},
		{"/START", "/start"},
		{"/start@shop_bot", "/start"},
		{"/start deep-link-arg", "/start"},
		{"  /help  ", "/help"},
		{"hello", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := command(tc.in); got != tc.want {
			t.Fatalf("command(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStartSendsWebAppKeyboard(t *testing.T) {
	sender := &fakeSender{}
	r := newTestRouter(sender, &fakeOrders{}, nil, "https://shop.example")

	r.handleUpdate(context.Background(), kit.Update{Kind: kit.UpdateMessage, Message: textMsg("/start")})

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	if got.opt == nil || got.opt.ReplyMarkupAdapter == nil {
		t.Fatalf("no keyboard attached: %+v", got.opt)
	}
	if len(sender.markups) != 1 {
		t.Fatalf("keyboard built %d times", len(sender.markups))
	}
	kb := sender.markups[0].(map[string]string)
	if kb["url"] != "https://shop.example" {
		t.Fatalf("keyboard url = %q", kb["url"])
	}
}

func TestStartWithoutWebAppURL(t *testing.T) {
	sender := &fakeSender{}
	r := newTestRouter(sender, &fakeOrders{}, nil, "")

	r.handleUpdate(context.Background(), kit.Update{Kind: kit.UpdateMessage, Message: textMsg("/start")})

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	if sender.sent[0].opt != nil && sender.sent[0].opt.ReplyMarkupAdapter != nil {
		t.Fatalf("keyboard attached despite missing url")
	}
	if !strings.Contains(sender.sent[0].text, "unavailable") {
		t.Fatalf("unexpected degraded reply %q", sender.sent[0].text)
	}
}

func TestWebAppUpdateGoesToPipeline(t *testing.T) {
	sender := &fakeSender{}
	orders := &fakeOrders{}
	r := newTestRouter(sender, orders, nil, "https://shop.example")

	m := &kit.Message{ChatID: 7, FromID: 7, WebAppData: `{"items":[]}`}
	r.handleUpdate(context.Background(), kit.Update{Kind: kit.UpdateWebApp, Message: m})

	if len(orders.handled) != 1 || orders.handled[0] != m {
		t.Fatalf("pipeline saw %d messages", len(orders.handled))
	}
	// the pipeline owns all replies for order submissions
	if len(sender.sent) != 0 {
		t.Fatalf("router replied to web-app update itself: %+v", sender.sent)
	}
}

func TestLastWithOrder(t *testing.T) {
	sender := &fakeSender{}
	o := &order.Order{
		ID:       "ord-1",
		Customer: order.Customer{ID: 7},
		Items:    []order.LineItem{{Name: "Cola", Quantity: 2, UnitPrice: 100}},
	}
	r := newTestRouter(sender, &fakeOrders{}, &fakeLast{o: o}, "u")

	r.handleUpdate(context.Background(), kit.Update{Kind: kit.UpdateMessage, Message: textMsg("/last")})

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].text, "Cola") {
		t.Fatalf("receipt missing item: %q", sender.sent[0].text)
	}
	if sender.sent[0].opt == nil || sender.sent[0].opt.ParseMode != "HTML" {
		t.Fatalf("receipt not sent as HTML")
	}
}

func TestLastEmptyAndError(t *testing.T) {
	sender := &fakeSender{}
	r := newTestRouter(sender, &fakeOrders{}, &fakeLast{}, "u")
	r.handleUpdate(context.Background(), kit.Update{Kind: kit.UpdateMessage, Message: textMsg("/last")})
	if !strings.Contains(sender.sent[0].text, "no orders") {
		t.Fatalf("empty reply = %q", sender.sent[0].text)
	}

	sender = &fakeSender{}
	r = newTestRouter(sender, &fakeOrders{}, &fakeLast{err: errors.New("redis down")}, "u")
	r.handleUpdate(context.Background(), kit.Update{Kind: kit.UpdateMessage, Message: textMsg("/last")})
	if strings.Contains(sender.sent[0].text, "redis") {
		t.Fatalf("raw error leaked to customer: %q", sender.sent[0].text)
	}
}

func TestGroupMessagesIgnored(t *testing.T) {
	sender := &fakeSender{}
	r := newTestRouter(sender, &fakeOrders{}, nil, "u")
	m := textMsg("/start")
	m.IsGroup = true
	r.handleUpdate(context.Background(), kit.Update{Kind: kit.UpdateMessage, Message: m})
	if len(sender.sent) != 0 {
		t.Fatalf("replied in a group chat: %+v", sender.sent)
	}
}

func TestUnknownTextGetsHint(t *testing.T) {
	sender := &fakeSender{}
	r := newTestRouter(sender, &fakeOrders{}, nil, "u")
	r.handleUpdate(context.Background(), kit.Update{Kind: kit.UpdateMessage, Message: textMsg("what do I do")})
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0].text, "/start") {
		t.Fatalf("hint = %+v", sender.sent)
	}
}

func TestRunDrainsChannel(t *testing.T) {
	sender := &fakeSender{}
	orders := &fakeOrders{}
	r := newTestRouter(sender, orders, nil, "u")

	updates := make(chan kit.Update, 2)
	updates <- kit.Update{Kind: kit.UpdateWebApp, Message: &kit.Message{ChatID: 1, WebAppData: "{}"}}
	updates <- kit.Update{Kind: kit.UpdateWebApp, Message: &kit.Message{ChatID: 2, WebAppData: "{}"}}
	close(updates)

	r.Run(context.Background(), updates)

	if len(orders.handled) != 2 {
		t.Fatalf("handled %d updates, want 2", len(orders.handled))
	}
}
