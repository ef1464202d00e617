package order

import (
	"errors"
	"time"

	"github.com/corray333/shopline/notify/internal/service/models/orderitem"
)

// Type distinguishes how the customer receives the order.
type Type string

const (
	TypePickup   Type = "pickup"
	TypeDelivery Type = "delivery"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("illegal order status transition")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidType       = errors.New("invalid order type")
)

// ParseType validates a raw order type value at the boundary.
func ParseType(raw string) (Type, error) {
	switch Type(raw) {
	case TypePickup, TypeDelivery:
		return Type(raw), nil
	default:
		return "", ErrInvalidType
	}
}

// Order represents a customer order placed with a shop.
type Order struct {
	ID              int64                 `json:"id"`
	ShopID          int64                 `json:"shopId"`
	CustomerID      int64                 `json:"customerId"`
	Status          Status                `json:"status"`
	Type            Type                  `json:"orderType"`
	TotalCents      int64                 `json:"totalCents"`
	DeliveryAddress string                `json:"deliveryAddress,omitempty"`
	DeliveryLat     *float64              `json:"deliveryLat,omitempty"`
	DeliveryLng     *float64              `json:"deliveryLng,omitempty"`
	DeliveryTime    *int                  `json:"deliveryTimeMinutes,omitempty"`
	RejectionReason *string               `json:"rejectionReason,omitempty"`
	PlacedAt        time.Time             `json:"placedAt"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	OrderItems      []orderitem.OrderItem `json:"orderItems"`
}
