// Package bot consumes inbound updates and routes them: commands to their
// handlers, mini-app submissions into the order intake pipeline.
package bot

import (
	"context"
	"strings"
	"time"

	"shopbot/internal/order"
	rtsup "shopbot/internal/runtime/supervisor"
	kit "shopbot/internal/transport"
	"shopbot/pkg/tgui"

	logx "shopbot/pkg/logx"
)

// LastGetter looks up a customer's most recent accepted order.
type LastGetter interface {
	GetLast(ctx context.Context, customerID int64) (*order.Order, bool, error)
}

// OrderHandler runs one mini-app submission through the intake pipeline.
type OrderHandler interface {
	Handle(ctx context.Context, m *kit.Message) order.Outcome
}

type Config struct {
	// WebAppURL is read per /start so config reloads take effect live.
	WebAppURL func() string

	// HandleTimeout bounds the processing of a single update.
	HandleTimeout time.Duration
}

const defaultHandleTimeout = 30 * time.Second

type Router struct {
	cfg      Config
	sender   order.Sender
	keyboard kit.WebAppKeyboarder // optional
	orders   OrderHandler
	last     LastGetter // optional
	log      logx.Logger
}

func NewRouter(cfg Config, sender order.Sender, orders OrderHandler, last LastGetter, log logx.Logger) *Router {
	if cfg.HandleTimeout <= 0 {
		cfg.HandleTimeout = defaultHandleTimeout
	}
	if cfg.WebAppURL == nil {
		cfg.WebAppURL = func() string { return "" }
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	kb, _ := sender.(kit.WebAppKeyboarder)
	return &Router{
		cfg:      cfg,
		sender:   sender,
		keyboard: kb,
		orders:   orders,
		last:     last,
		log:      log.With(logx.String("component", "router")),
	}
}

// Run consumes updates until ctx is done or the channel closes. Updates are
// handled sequentially; the pipeline itself is safe for concurrent use but
// per-chat ordering is easier to reason about.
func (r *Router) Run(ctx context.Context, updates <-chan kit.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			r.handleUpdate(ctx, u)
		}
	}
}

// StartOn launches Run under the supervisor.
func (r *Router) StartOn(sup *rtsup.Supervisor, updates <-chan kit.Update) {
	sup.Go0("bot.router", func(ctx context.Context) {
		r.Run(ctx, updates)
	})
}

func (r *Router) handleUpdate(ctx context.Context, u kit.Update) {
	if u.Message == nil {
		return
	}
	hctx, cancel := context.WithTimeout(ctx, r.cfg.HandleTimeout)
	defer cancel()

	switch u.Kind {
	case kit.UpdateWebApp:
		out := r.orders.Handle(hctx, u.Message)
		if out.Err != nil {
			r.log.Warn("order intake failed", logx.Int64("chat", u.Message.ChatID), logx.Err(out.Err))
		}
	case kit.UpdateMessage:
		r.handleText(hctx, u.Message)
	}
}

func (r *Router) handleText(ctx context.Context, m *kit.Message) {
	// Group chatter is not for us.
	if m.IsGroup {
		return
	}

	cmd := command(m.Text)
	switch cmd {
	case "/start":
		r.cmdStart(ctx, m)
	case "/last":
		r.cmdLast(ctx, m)
	case "/help":
		r.cmdHelp(ctx, m)
	default:
		r.reply(ctx, m, "Use /start to open the shop, or /help for commands.", nil)
	}
}

// command extracts the leading slash-command, tolerating bot-name suffixes
// ("/start@shop_bot") and arguments.
func command(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	if i := strings.IndexAny(text, " \t\n"); i >= 0 {
		text = text[:i]
	}
	if i := strings.IndexByte(text, '@'); i >= 0 {
		text = text[:i]
	}
	return strings.ToLower(text)
}

func (r *Router) cmdStart(ctx context.Context, m *kit.Message) {
	url := r.cfg.WebAppURL()
	if url == "" || r.keyboard == nil {
		r.log.Warn("webapp url not configured; /start degraded", logx.Int64("chat", m.ChatID))
		r.reply(ctx, m, "The shop is temporarily unavailable. Please try again later.", nil)
		return
	}

	markup := r.keyboard.WebAppKeyboard("🛍 Open shop", url)
	greeting := string(tgui.Raw("👋 Welcome! Tap ") + tgui.B("Open shop") + tgui.Raw(" below to browse and place an order."))
	r.reply(ctx, m, greeting, &kit.SendOptions{ParseMode: "HTML", ReplyMarkupAdapter: markup})
}

func (r *Router) cmdLast(ctx context.Context, m *kit.Message) {
	if r.last == nil {
		r.reply(ctx, m, "You have no orders yet.", nil)
		return
	}
	o, ok, err := r.last.GetLast(ctx, m.FromID)
	if err != nil {
		r.log.Warn("last-order lookup failed", logx.Int64("customer", m.FromID), logx.Err(err))
		r.reply(ctx, m, "Couldn't look that up right now. Please try again later.", nil)
		return
	}
	if !ok {
		r.reply(ctx, m, "You have no orders yet.", nil)
		return
	}
	r.reply(ctx, m, order.CustomerReceipt(o), &kit.SendOptions{ParseMode: "HTML"})
}

func (r *Router) cmdHelp(ctx context.Context, m *kit.Message) {
	help := string(tgui.JoinH("\n",
		tgui.B("Commands"),
		tgui.Raw("/start - open the shop"),
		tgui.Raw("/last - show your latest order"),
		tgui.Raw("/help - this message"),
	))
	r.reply(ctx, m, help, &kit.SendOptions{ParseMode: "HTML"})
}

func (r *Router) reply(ctx context.Context, m *kit.Message, text string, opt *kit.SendOptions) {
	if _, err := r.sender.SendText(ctx, kit.ChatTarget{ChatID: m.ChatID}, text, opt); err != nil {
		r.log.Warn("reply failed", logx.Int64("chat", m.ChatID), logx.Err(err))
	}
}
