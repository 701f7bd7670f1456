package order

import (
	"context"
	"fmt"
	"runtime/debug"

	kit "shopbot/internal/transport"
	logx "shopbot/pkg/logx"
)

// Journal persists accepted orders. Implementations must be best-effort from
// the pipeline's point of view: a journal failure never fails the order.
type Journal interface {
	Append(ctx context.Context, o *Order) error
}

// LastStore remembers the most recent accepted order per customer.
type LastStore interface {
	PutLast(ctx context.Context, customerID int64, o *Order) error
}

// Pipeline runs one mini-app order submission through
// validate -> format -> dispatch, with the Reporter as the single error sink.
//
// It holds no cross-request state; Handle may be called concurrently.
type Pipeline struct {
	dispatcher *Dispatcher
	reporter   *Reporter

	journal Journal   // optional
	last    LastStore // optional

	// adminChatID is read per request so config reloads take effect live.
	adminChatID func() int64
	log         logx.Logger
}

func NewPipeline(sender Sender, adminChatID func() int64, journal Journal, last LastStore, log logx.Logger) *Pipeline {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Pipeline{
		dispatcher:  NewDispatcher(sender, log.With(logx.String("comp", "order.dispatch"))),
		reporter:    NewReporter(sender, log.With(logx.String("comp", "order.report"))),
		journal:     journal,
		last:        last,
		adminChatID: adminChatID,
		log:         log,
	}
}

// Handle processes one inbound web-app message end to end. Each event is
// handled exactly once; there are no retries across stages (at-most-once).
func (p *Pipeline) Handle(ctx context.Context, m *kit.Message) (out Outcome) {
	customer := kit.ChatTarget{ChatID: m.ChatID}
	stage := StageValidation

	// Top-level guard: unexpected failures become a generic customer apology
	// plus an admin diagnostic, never a crash or raw error text.
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			p.log.Error("order pipeline panicked",
				logx.String("stage", string(stage)), logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
			p.reporter.Report(ctx, stage, err, customer, p.adminChatID(), out.CustomerAcked)
			out.Err = err
		}
	}()

	o, err := Parse([]byte(m.WebAppData), Customer{
		ID:          m.FromID,
		Username:    m.FromUsername,
		DisplayName: m.FromName,
	})
	if err != nil {
		p.reporter.Report(ctx, StageValidation, err, customer, p.adminChatID(), false)
		return Outcome{Err: err}
	}

	// Record the order before notifying, like the spreadsheet append this
	// replaces. Persistence is a collaborator; its failure is logged only.
	if p.journal != nil {
		if err := p.journal.Append(ctx, o); err != nil {
			p.log.Error("order journal append failed", logx.String("order_id", o.ID), logx.Err(err))
		}
	}
	if p.last != nil {
		if err := p.last.PutLast(ctx, o.Customer.ID, o); err != nil {
			p.log.Warn("session store update failed", logx.Int64("customer", o.Customer.ID), logx.Err(err))
		}
	}

	stage = StageFormatting
	chunks := AdminNotification(o)

	stage = StageDispatch
	out = p.dispatcher.Dispatch(ctx, chunks, p.adminChatID(), customer, CustomerAck())
	if out.Err != nil {
		p.reporter.Report(ctx, StageDispatch, out.Err, customer, p.adminChatID(), out.CustomerAcked)
	}

	p.log.Info("order handled",
		logx.String("order_id", o.ID),
		logx.Int64("customer", o.Customer.ID),
		logx.Int("items", len(o.Items)),
		logx.Float64("total", o.EffectiveTotal()),
		logx.Bool("admin_delivered", out.AdminDelivered),
		logx.Bool("customer_acked", out.CustomerAcked))
	return out
}
