package orderitem

import "time"

// OrderItem represents an item line within an order. Insertion order is
// preserved for display.
type OrderItem struct {
	ID         int64     `json:"id"`
	OrderID    int64     `json:"orderId"`
	ItemID     int64     `json:"itemId"`
	Title      string    `json:"title"`
	Quantity   int       `json:"quantity"`
	PriceCents *int64    `json:"priceCents,omitempty"`
	PriceNote  string    `json:"priceNote,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
