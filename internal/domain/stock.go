package domain

// Stock is the remotely reported number of units available for a product.
type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}
