package order

import (
	"context"

	kit "shopbot/internal/transport"
	logx "shopbot/pkg/logx"
)

// Sender is the slice of the transport adapter the pipeline needs.
type Sender interface {
	SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error)
}

// Outcome reports how one dispatch went. A missing admin channel is a
// degraded success (AdminDelivered=false, Err=nil), not a failure.
type Outcome struct {
	AdminDelivered bool
	CustomerAcked  bool
	Err            error
}

// Dispatcher delivers a formatted order notification to the admin chat and
// acknowledges the customer.
type Dispatcher struct {
	sender Sender
	log    logx.Logger
}

func NewDispatcher(sender Sender, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{sender: sender, log: log}
}

// Dispatch sends the admin chunks in order (chunk N+1 is not attempted before
// chunk N succeeded, since they are one logical message), then always sends
// the customer acknowledgment. The customer must never be left without a
// response, even when admin delivery fails.
func (d *Dispatcher) Dispatch(ctx context.Context, chunks []string, adminChatID int64, customer kit.ChatTarget, ack string) Outcome {
	var out Outcome

	if adminChatID == 0 {
		d.log.Warn("admin chat not configured; order notification skipped")
	} else {
		out.AdminDelivered = true
		opt := &kit.SendOptions{ParseMode: "HTML", DisablePreview: true}
		for i, chunk := range chunks {
			if _, err := d.sender.SendText(ctx, kit.ChatTarget{ChatID: adminChatID}, chunk, opt); err != nil {
				d.log.Error("admin notification failed",
					logx.Int("chunk", i), logx.Int("chunks", len(chunks)), logx.Err(err))
				out.AdminDelivered = false
				out.Err = err
				break
			}
		}
	}

	// Customer ack goes out regardless of what happened above.
	if _, err := d.sender.SendText(ctx, customer, ack, nil); err != nil {
		d.log.Error("customer acknowledgment failed", logx.Int64("chat_id", customer.ChatID), logx.Err(err))
		if out.Err == nil {
			out.Err = err
		}
	} else {
		out.CustomerAcked = true
	}

	return out
}
