package notification

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("notification not found")

// Notification is a registry entry recording that a recipient has been
// notified about an advertisement. The (AdvertisementID, RecipientID) pair
// is unique: it is what makes broadcast fan-out at-most-once per recipient.
type Notification struct {
	ID              int64     `json:"id"`
	AdvertisementID int64     `json:"advertisementId"`
	RecipientID     int64     `json:"recipientId"`
	ShopID          int64     `json:"shopId"`
	Message         string    `json:"message"`
	IsRead          bool      `json:"isRead"`
	SentAt          time.Time `json:"sentAt"`
}
