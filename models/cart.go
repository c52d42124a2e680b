package models

import "github.com/shopspring/decimal"

// MenuItem is a catalog record. The cart treats it as an opaque value.
type MenuItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	RestaurantID string          `json:"restaurant_id"`
	IsAvailable  bool            `json:"is_available"`
}

type CartLine struct {
	Item     MenuItem `json:"menuItem"`
	Quantity int      `json:"quantity"`
}

// CartState is the persisted cart blob. RestaurantID is empty when Lines is.
type CartState struct {
	Lines        []CartLine `json:"lines"`
	RestaurantID string     `json:"restaurantId,omitempty"`
}

// Clone returns a deep copy so callers never share the store's slice.
func (s CartState) Clone() CartState {
	out := CartState{RestaurantID: s.RestaurantID}
	if len(s.Lines) > 0 {
		out.Lines = make([]CartLine, len(s.Lines))
		copy(out.Lines, s.Lines)
	}
	return out
}

func (s CartState) Empty() bool {
	return len(s.Lines) == 0
}

// TotalAmount sums price times quantity in decimal, never in float.
func (s CartState) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.Item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

func (s CartState) TotalItems() int {
	n := 0
	for _, line := range s.Lines {
		n += line.Quantity
	}
	return n
}
