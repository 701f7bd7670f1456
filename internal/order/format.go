package order

import (
	"fmt"
	"strconv"
	"strings"

	"shopbot/pkg/tgui"
)

// AdminNotification renders the admin-facing order message as a sequence of
// Telegram-safe HTML chunks (each within the platform message limit).
//
// It is a pure function: same Order in, same chunks out. All customer-supplied
// text is escaped before it touches the markup; item lines keep payload order.
func AdminNotification(o *Order) []string {
	lines := make([]tgui.H, 0, len(o.Items)+5)

	lines = append(lines, tgui.Raw("🛒 ")+tgui.B("New order")+tgui.Raw(" from ")+customerRef(o.Customer))
	lines = append(lines, "")

	for _, li := range o.Items {
		lines = append(lines, tgui.H(fmt.Sprintf("• %s x%d — %s",
			tgui.Esc(li.Name), li.Quantity, formatAmount(li.Subtotal()))))
	}
	if len(o.Items) > 0 {
		lines = append(lines, "")
	}

	lines = append(lines, tgui.B("Total:")+tgui.H(" "+formatAmount(o.EffectiveTotal())))
	lines = append(lines, tgui.Esc("Contact the customer to confirm the order."))

	return tgui.SplitLines(joinLines(lines), tgui.MessageLimit)
}

// CustomerAck is the short plain-text acknowledgment sent back to the
// customer right after dispatch, regardless of admin delivery.
func CustomerAck() string {
	return "✅ Thanks! Your order has been received."
}

// CustomerReceipt renders the customer-facing order summary (used by /last).
func CustomerReceipt(o *Order) string {
	lines := make([]tgui.H, 0, len(o.Items)+4)
	lines = append(lines, tgui.Raw("✅ ")+tgui.B("Your order"))
	lines = append(lines, "")
	for _, li := range o.Items {
		lines = append(lines, tgui.H(fmt.Sprintf("• %s (x%d)", tgui.Esc(li.Name), li.Quantity)))
	}
	if len(o.Items) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, tgui.B("Total:")+tgui.H(" "+formatAmount(o.EffectiveTotal())))
	return joinLines(lines)
}

// customerRef prefers the @handle; without one it renders a clickable
// tg://user mention with the escaped display name.
func customerRef(c Customer) tgui.H {
	if u := strings.TrimSpace(c.Username); u != "" {
		return tgui.Esc("@" + u)
	}
	name := strings.TrimSpace(c.DisplayName)
	if name == "" {
		name = "id " + strconv.FormatInt(c.ID, 10)
	}
	return tgui.Mention(name, c.ID)
}

// formatAmount renders a money value without a trailing ".0" for whole
// amounts (the catalog uses whole prices; fractions survive untouched).
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinLines(lines []tgui.H) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.String()
	}
	return strings.Join(parts, "\n")
}
