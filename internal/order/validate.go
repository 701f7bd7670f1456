package order

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrMalformedPayload is returned when the mini-app payload is not valid JSON.
// Content problems inside valid JSON never fail validation; they degrade
// per-field instead.
var ErrMalformedPayload = fmt.Errorf("malformed order payload")

const namePlaceholder = "?"

// rawPayload mirrors the shapes the mini-app generations have sent over time.
// Every field is decoded as `any` so a single odd value can't fail the whole
// payload.
type rawPayload struct {
	Items         any `json:"items"`
	TotalPrice    any `json:"total_price"`
	TotalPriceJS  any `json:"totalPrice"`
	DeclaredTotal any `json:"declared_total"`
}

// Parse validates and coerces one raw mini-app payload into an Order.
//
// Only non-JSON input fails (wrapping ErrMalformedPayload with the parser
// message). Missing or bogus fields fall back: name -> "?", quantity -> 1,
// unit price -> 0; a non-array "items" is treated as empty.
func Parse(raw []byte, cust Customer) (*Order, error) {
	var p rawPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	o := &Order{
		ID:       uuid.NewString(),
		Customer: cust,
		Items:    []LineItem{},
	}

	if arr, ok := p.Items.([]any); ok {
		for _, el := range arr {
			o.Items = append(o.Items, coerceItem(el))
		}
	}

	for _, v := range []any{p.TotalPrice, p.TotalPriceJS, p.DeclaredTotal} {
		if t, ok := coerceAmount(v); ok {
			o.DeclaredTotal = &t
			break
		}
	}

	return o, nil
}

func coerceItem(el any) LineItem {
	li := LineItem{Name: namePlaceholder, Quantity: 1}

	m, ok := el.(map[string]any)
	if !ok {
		return li
	}

	if s, ok := coerceString(m["name"]); ok {
		li.Name = s
	} else if s, ok := coerceString(m["title"]); ok {
		li.Name = s
	}

	if q, ok := coerceQuantity(m["quantity"]); ok {
		li.Quantity = q
	}

	if a, ok := coerceAmount(m["price"]); ok {
		li.UnitPrice = a
	} else if a, ok := coerceAmount(m["unit_price"]); ok {
		li.UnitPrice = a
	}

	return li
}

func coerceString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// coerceQuantity accepts whole positive numbers (JSON numbers or numeric
// strings). Everything else falls back to the default.
func coerceQuantity(v any) (int, bool) {
	f, ok := coerceNumber(v)
	if !ok {
		return 0, false
	}
	n := int(f)
	if float64(n) != f || n < 1 {
		return 0, false
	}
	return n, true
}

// coerceAmount accepts non-negative numbers (JSON numbers or numeric strings).
func coerceAmount(v any) (float64, bool) {
	f, ok := coerceNumber(v)
	if !ok || f < 0 {
		return 0, false
	}
	return f, true
}

func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
