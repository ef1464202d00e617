package advertisement

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("advertisement not found")

// Advertisement represents a promotional broadcast created by a shop owner.
type Advertisement struct {
	ID              int64    `json:"id"`
	ShopID          int64    `json:"shopId"`
	OwnerID         int64    `json:"ownerId"`
	Message         string   `json:"message"`
	ImageURLs       []string `json:"imageUrls,omitempty"`
	VideoURLs       []string `json:"videoUrls,omitempty"`
	HasDiscount     bool     `json:"hasDiscount"`
	DiscountPercent *int     `json:"discountPercent,omitempty"`
	DiscountNote    string   `json:"discountNote,omitempty"`
	IsActive        bool     `json:"isActive"`

	// NotificationsSent is the number of recipients newly notified by the
	// most recent broadcast call, not a cumulative total. The cumulative
	// total is the count of notification rows for this advertisement.
	NotificationsSent int `json:"notificationsSent"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
