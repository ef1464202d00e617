package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// Role of a registered account.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleShopOwner Role = "shop_owner"
)

// User is a registered account. DeviceToken is the opaque handle for the
// external push channel; accounts without one still receive in-app
// notifications through the registry.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	DeviceToken string    `json:"deviceToken,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
