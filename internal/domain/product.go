package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is the catalog record copied into a cart entry on first add.
// Display attributes the cart does not interpret are kept in Attributes
// so they survive a snapshot round-trip unchanged.
type Product struct {
	ID         int64
	Title      string
	Price      decimal.Decimal
	Image      string
	Attributes map[string]json.RawMessage
}

const (
	keyID     = "id"
	keyTitle  = "title"
	keyPrice  = "price"
	keyImage  = "image"
	keyAmount = "amount"
)

func (p Product) MarshalJSON() ([]byte, error) {
	fields, err := p.fields()
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	return p.fromFields(fields)
}

// fields flattens the product into a single JSON object, attributes first
// so the typed fields always win.
func (p Product) fields() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(p.Attributes)+4)
	for k, v := range p.Attributes {
		out[k] = v
	}

	id, err := json.Marshal(p.ID)
	if err != nil {
		return nil, fmt.Errorf("marshal product id: %w", err)
	}
	title, err := json.Marshal(p.Title)
	if err != nil {
		return nil, fmt.Errorf("marshal product title: %w", err)
	}
	image, err := json.Marshal(p.Image)
	if err != nil {
		return nil, fmt.Errorf("marshal product image: %w", err)
	}

	out[keyID] = id
	out[keyTitle] = title
	// price is written as a bare JSON number, the way the catalog serves it
	out[keyPrice] = json.RawMessage(p.Price.String())
	out[keyImage] = image
	return out, nil
}

func (p *Product) fromFields(fields map[string]json.RawMessage) error {
	*p = Product{}

	if raw, ok := fields[keyID]; ok {
		if err := json.Unmarshal(raw, &p.ID); err != nil {
			return fmt.Errorf("decode product id: %w", err)
		}
		delete(fields, keyID)
	}
	if raw, ok := fields[keyTitle]; ok {
		if err := json.Unmarshal(raw, &p.Title); err != nil {
			return fmt.Errorf("decode product title: %w", err)
		}
		delete(fields, keyTitle)
	}
	if raw, ok := fields[keyPrice]; ok {
		if err := p.Price.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("decode product price: %w", err)
		}
		delete(fields, keyPrice)
	}
	if raw, ok := fields[keyImage]; ok {
		if err := json.Unmarshal(raw, &p.Image); err != nil {
			return fmt.Errorf("decode product image: %w", err)
		}
		delete(fields, keyImage)
	}

	if len(fields) > 0 {
		p.Attributes = fields
	}
	return nil
}

// decodeFields splits a JSON object into compacted raw values, so that
// re-encoding yields byte-identical attributes.
func decodeFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return nil, fmt.Errorf("compact %q: %w", k, err)
		}
		fields[k] = buf.Bytes()
	}
	return fields, nil
}
