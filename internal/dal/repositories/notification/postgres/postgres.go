package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/shopline/notify/internal/dal/postgres"
	"github.com/corray333/shopline/notify/internal/service/models/notification"
)

// NotificationRepository implements the notification registry for PostgreSQL.
type NotificationRepository struct {
	conn postgres.Querier
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(conn postgres.Querier) *NotificationRepository {
	return &NotificationRepository{
		conn: conn,
	}
}

// InsertUnique inserts registry rows for the given candidates, skipping
// pairs that already exist. ON CONFLICT DO NOTHING on the unique
// (advertisement_id, recipient_id) index makes the insert atomic under
// concurrent broadcasts: a pair is inserted exactly once no matter how
// many broadcasts race.
func (r *NotificationRepository) InsertUnique(
	ctx context.Context,
	rows []notification.Notification,
) ([]int64, error) {
	if len(rows) == 0 {
		return []int64{}, nil
	}

	builder := sq.Insert("notifications").
		Columns(
			"advertisement_id",
			"recipient_id",
			"shop_id",
			"message",
			"is_read",
			"sent_at",
		).
		Suffix("ON CONFLICT (advertisement_id, recipient_id) DO NOTHING RETURNING recipient_id").
		PlaceholderFormat(sq.Dollar)

	for _, n := range rows {
		builder = builder.Values(
			n.AdvertisementID,
			n.RecipientID,
			n.ShopID,
			n.Message,
			n.IsRead,
			n.SentAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	result, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert notifications: %w", err)
	}
	defer result.Close()

	inserted := make([]int64, 0, len(rows))
	for result.Next() {
		var recipientID int64
		if err := result.Scan(&recipientID); err != nil {
			return nil, fmt.Errorf("failed to scan inserted recipient: %w", err)
		}
		inserted = append(inserted, recipientID)
	}

	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inserted recipients: %w", err)
	}

	return inserted, nil
}

// CountByAdvertisement returns the cumulative number of registry rows for
// the advertisement.
func (r *NotificationRepository) CountByAdvertisement(
	ctx context.Context,
	advertisementID int64,
) (int, error) {
	query, args, err := sq.Select("COUNT(*)").
		From("notifications").
		Where(sq.Eq{"advertisement_id": advertisementID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	return count, nil
}

// ListByRecipient returns the recipient's notification feed, newest first.
func (r *NotificationRepository) ListByRecipient(
	ctx context.Context,
	recipientID int64,
	limit, offset int,
) ([]notification.Notification, error) {
	builder := sq.Select(
		"id",
		"advertisement_id",
		"recipient_id",
		"shop_id",
		"message",
		"is_read",
		"sent_at",
	).
		From("notifications").
		Where(sq.Eq{"recipient_id": recipientID}).
		OrderBy("sent_at DESC").
		PlaceholderFormat(sq.Dollar)

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		var n notification.Notification
		err := rows.Scan(
			&n.ID,
			&n.AdvertisementID,
			&n.RecipientID,
			&n.ShopID,
			&n.Message,
			&n.IsRead,
			&n.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flags a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	query, args, err := sq.Update("notifications").
		Set("is_read", true).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotFound
	}

	return nil
}

// DeleteByAdvertisement removes all registry rows for an advertisement.
func (r *NotificationRepository) DeleteByAdvertisement(
	ctx context.Context,
	advertisementID int64,
) error {
	query, args, err := sq.Delete("notifications").
		Where(sq.Eq{"advertisement_id": advertisementID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}

	return nil
}

// DeleteByRecipient removes all registry rows for a recipient account.
func (r *NotificationRepository) DeleteByRecipient(ctx context.Context, recipientID int64) error {
	query, args, err := sq.Delete("notifications").
		Where(sq.Eq{"recipient_id": recipientID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}

	return nil
}
