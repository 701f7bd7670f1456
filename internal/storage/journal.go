package storage

import (
	"context"
	"encoding/json"
	"time"

	"shopbot/internal/order"
)

// OrderJournal adapts a Store to the intake pipeline's journal port.
type OrderJournal struct {
	st Store
}

func NewOrderJournal(st Store) *OrderJournal {
	if st == nil {
		return nil
	}
	return &OrderJournal{st: st}
}

func (j *OrderJournal) Append(ctx context.Context, o *order.Order) error {
	if j == nil || j.st == nil {
		return ErrDisabled
	}
	return j.st.AppendOrder(ctx, RecordFromOrder(o))
}

// RecordFromOrder flattens an order into its journal row.
func RecordFromOrder(o *order.Order) OrderRecord {
	type itemRow struct {
		Name      string  `json:"name"`
		Quantity  int     `json:"quantity"`
		UnitPrice float64 `json:"unit_price"`
	}
	rows := make([]itemRow, 0, len(o.Items))
	for _, li := range o.Items {
		rows = append(rows, itemRow{Name: li.Name, Quantity: li.Quantity, UnitPrice: li.UnitPrice})
	}
	items, err := json.Marshal(rows)
	if err != nil {
		items = []byte("[]")
	}
	return OrderRecord{
		OrderID:     o.ID,
		At:          time.Now(),
		CustomerID:  o.Customer.ID,
		Handle:      o.Customer.Username,
		DisplayName: o.Customer.DisplayName,
		Total:       o.EffectiveTotal(),
		ItemsJSON:   string(items),
	}
}
