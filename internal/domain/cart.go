package domain

import (
	"encoding/json"
	"fmt"
	"maps"
)

// CartEntry is one product line in the cart.
type CartEntry struct {
	Product
	Amount int
}

func (e CartEntry) MarshalJSON() ([]byte, error) {
	fields, err := e.Product.fields()
	if err != nil {
		return nil, err
	}
	amount, err := json.Marshal(e.Amount)
	if err != nil {
		return nil, fmt.Errorf("marshal amount: %w", err)
	}
	fields[keyAmount] = amount
	return json.Marshal(fields)
}

func (e *CartEntry) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}

	var amount int
	if raw, ok := fields[keyAmount]; ok {
		if err := json.Unmarshal(raw, &amount); err != nil {
			return fmt.Errorf("decode amount: %w", err)
		}
		delete(fields, keyAmount)
	}

	var p Product
	if err := p.fromFields(fields); err != nil {
		return err
	}

	*e = CartEntry{Product: p, Amount: amount}
	return nil
}

// Cart is the ordered list of entries, in first-add order.
type Cart []CartEntry

// Find returns the index of the entry for productID.
func (c Cart) Find(productID int64) (int, bool) {
	for i, entry := range c {
		if entry.ID == productID {
			return i, true
		}
	}
	return -1, false
}

// Clone returns a deep copy; the result is never nil.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for i, entry := range c {
		out[i] = entry
		if entry.Attributes != nil {
			out[i].Attributes = maps.Clone(entry.Attributes)
		}
	}
	return out
}

// Validate checks that every entry has a positive amount and that no
// product id appears twice.
func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c))
	for i, entry := range c {
		if entry.Amount < 1 {
			return fmt.Errorf("entry %d: amount %d is not positive", i, entry.Amount)
		}
		if _, dup := seen[entry.ID]; dup {
			return fmt.Errorf("entry %d: duplicate product id %d", i, entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}

// Quantity is the total number of units across all entries.
func (c Cart) Quantity() int {
	total := 0
	for _, entry := range c {
		total += entry.Amount
	}
	return total
}
