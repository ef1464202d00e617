package inotificationrepo

import (
	"context"

	"github.com/corray333/shopline/notify/internal/service/models/notification"
)

// INotificationRepository defines the notification registry operations.
type INotificationRepository interface {
	// InsertUnique inserts registry rows for the given candidates, skipping
	// pairs that already exist, and returns the recipient ids actually
	// inserted. The skip is enforced by the unique
	// (advertisement_id, recipient_id) index, so concurrent broadcasts
	// cannot produce duplicates.
	InsertUnique(ctx context.Context, rows []notification.Notification) ([]int64, error)

	// CountByAdvertisement returns the cumulative number of registry rows
	// for the advertisement.
	CountByAdvertisement(ctx context.Context, advertisementID int64) (int, error)

	// ListByRecipient returns the recipient's notification feed, newest first.
	ListByRecipient(ctx context.Context, recipientID int64, limit, offset int) ([]notification.Notification, error)

	// MarkRead flags a notification as read. Returns
	// notification.ErrNotFound for an unknown id.
	MarkRead(ctx context.Context, id int64) error

	// DeleteByAdvertisement removes all registry rows for an advertisement.
	DeleteByAdvertisement(ctx context.Context, advertisementID int64) error

	// DeleteByRecipient removes all registry rows for a recipient account.
	DeleteByRecipient(ctx context.Context, recipientID int64) error
}
