package order

// Customer identifies the ordering user as reported by the chat platform.
type Customer struct {
	ID          int64
	Username    string // without "@", may be empty
	DisplayName string // may be empty
}

// LineItem is one ordered product line. Values are already coerced:
// Quantity >= 1, UnitPrice >= 0, Name non-empty (placeholder if unknown).
type LineItem struct {
	Name      string
	Quantity  int
	UnitPrice float64
}

func (li LineItem) Subtotal() float64 {
	return float64(li.Quantity) * li.UnitPrice
}

// Order is the validated form of one mini-app submission. It lives for the
// duration of one inbound update and is never mutated after Parse returns it.
type Order struct {
	ID       string
	Customer Customer
	Items    []LineItem

	// DeclaredTotal is the total as stated by the mini-app, when present.
	DeclaredTotal *float64
}

// ComputedTotal is the sum of line subtotals.
func (o *Order) ComputedTotal() float64 {
	var sum float64
	for _, li := range o.Items {
		sum += li.Subtotal()
	}
	return sum
}

// EffectiveTotal prefers the sender-declared total over the computed sum.
// The mini-app may apply discounts the bot doesn't know about; see the
// integrity note in DESIGN.md.
func (o *Order) EffectiveTotal() float64 {
	if o.DeclaredTotal != nil {
		return *o.DeclaredTotal
	}
	return o.ComputedTotal()
}
