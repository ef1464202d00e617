package iuserrepo

import (
	"context"

	"github.com/corray333/shopline/notify/internal/service/models/user"
)

// IUserRepository defines the account lookup operations the notification
// subsystem needs.
type IUserRepository interface {
	// GetByID returns user.ErrNotFound for an unknown id.
	GetByID(ctx context.Context, id int64) (user.User, error)

	// ListIDs enumerates all registered user ids. Broadcast targeting uses
	// this as the candidate set, regardless of role.
	ListIDs(ctx context.Context) ([]int64, error)

	// ListByIDs fetches the given accounts, used to resolve device tokens
	// for the push side channel.
	ListByIDs(ctx context.Context, ids []int64) ([]user.User, error)
}
