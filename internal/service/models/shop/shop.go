package shop

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("shop not found")

// Shop is the owning side of orders and advertisements. Shopkeeper-facing
// notifications are addressed to OwnerID.
type Shop struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
