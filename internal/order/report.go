package order

import (
	"context"

	kit "shopbot/internal/transport"
	logx "shopbot/pkg/logx"
	"shopbot/pkg/tgui"
)

// Stage names the pipeline stage a failure surfaced from.
type Stage string

const (
	StageValidation Stage = "validation"
	StageFormatting Stage = "formatting"
	StageDispatch   Stage = "dispatch"
)

const diagDetailLimit = 500

// Reporter is the single convergence point for pipeline failures.
//
// It always produces exactly one customer-facing message (never a silent
// failure toward the customer) and, when an admin chat is configured and the
// stage warrants it, one escaped diagnostic to the admin. It cannot fail the
// request itself: send errors are logged and swallowed, and a panic guard
// covers the rest. There is no further fallback channel.
type Reporter struct {
	sender Sender
	log    logx.Logger
}

func NewReporter(sender Sender, log logx.Logger) *Reporter {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Reporter{sender: sender, log: log}
}

// Report handles a stage failure for one inbound order event.
//
// Validation failures get no admin diagnostic: nothing was validated, the
// customer just sees a generic message. Dispatch failures skip the customer
// message when the dispatcher already acknowledged the customer.
func (r *Reporter) Report(ctx context.Context, stage Stage, cause error, customer kit.ChatTarget, adminChatID int64, customerAcked bool) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("error reporter panicked", logx.Any("panic", p))
		}
	}()

	r.log.Warn("order intake failed",
		logx.String("stage", string(stage)), logx.Int64("customer", customer.ChatID), logx.Err(cause))

	if !customerAcked {
		if _, err := r.sender.SendText(ctx, customer, customerApology(stage), nil); err != nil {
			r.log.Error("failed to deliver error message to customer", logx.Err(err))
		}
	}

	if stage == StageValidation || adminChatID == 0 {
		return
	}

	diag := adminDiagnostic(stage, cause)
	opt := &kit.SendOptions{ParseMode: "HTML", DisablePreview: true}
	if _, err := r.sender.SendText(ctx, kit.ChatTarget{ChatID: adminChatID}, diag, opt); err != nil {
		r.log.Error("failed to deliver diagnostic to admin", logx.Err(err))
	}
}

// customerApology never leaks internal error detail.
func customerApology(stage Stage) string {
	if stage == StageValidation {
		return "❗️ Sorry, we could not process your order. Please try again."
	}
	return "❗️ Something went wrong on our side. Please try again in a moment."
}

// adminDiagnostic renders the escaped admin-facing error report.
func adminDiagnostic(stage Stage, cause error) string {
	detail := "unknown error"
	if cause != nil {
		detail = cause.Error()
	}
	lines := []tgui.H{
		tgui.Raw("⚠️ ") + tgui.B("Order intake error"),
		tgui.B("Stage:") + tgui.H(" "+tgui.Esc(string(stage)).String()),
		tgui.Code(tgui.TruncRunes(detail, diagDetailLimit)),
	}
	return joinLines(lines)
}
