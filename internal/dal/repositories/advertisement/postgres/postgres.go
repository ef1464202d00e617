package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/shopline/notify/internal/dal/postgres"
	"github.com/corray333/shopline/notify/internal/service/models/advertisement"
	"github.com/jackc/pgx/v5"
)

var advertisementColumns = []string{
	"id",
	"shop_id",
	"owner_id",
	"message",
	"image_urls",
	"video_urls",
	"has_discount",
	"discount_percent",
	"discount_note",
	"is_active",
	"notifications_sent",
	"created_at",
	"updated_at",
}

// AdvertisementRepository implements the advertisement repository for PostgreSQL.
type AdvertisementRepository struct {
	conn postgres.Querier
}

// NewAdvertisementRepository creates a new advertisement repository.
func NewAdvertisementRepository(conn postgres.Querier) *AdvertisementRepository {
	return &AdvertisementRepository{
		conn: conn,
	}
}

// Insert persists a new advertisement and returns it with its assigned id.
func (r *AdvertisementRepository) Insert(
	ctx context.Context,
	ad advertisement.Advertisement,
) (advertisement.Advertisement, error) {
	query, args, err := sq.Insert("advertisements").
		Columns(
			"shop_id",
			"owner_id",
			"message",
			"image_urls",
			"video_urls",
			"has_discount",
			"discount_percent",
			"discount_note",
			"is_active",
			"notifications_sent",
			"created_at",
			"updated_at",
		).
		Values(
			ad.ShopID,
			ad.OwnerID,
			ad.Message,
			ad.ImageURLs,
			ad.VideoURLs,
			ad.HasDiscount,
			ad.DiscountPercent,
			ad.DiscountNote,
			ad.IsActive,
			ad.NotificationsSent,
			ad.CreatedAt,
			ad.UpdatedAt,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return advertisement.Advertisement{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&ad.ID); err != nil {
		return advertisement.Advertisement{}, fmt.Errorf("failed to insert advertisement: %w", err)
	}

	return ad, nil
}

// GetByID fetches an advertisement by id.
func (r *AdvertisementRepository) GetByID(
	ctx context.Context,
	id int64,
) (advertisement.Advertisement, error) {
	query, args, err := sq.Select(advertisementColumns...).
		From("advertisements").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return advertisement.Advertisement{}, fmt.Errorf("failed to build select query: %w", err)
	}

	var ad advertisement.Advertisement
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&ad.ID,
		&ad.ShopID,
		&ad.OwnerID,
		&ad.Message,
		&ad.ImageURLs,
		&ad.VideoURLs,
		&ad.HasDiscount,
		&ad.DiscountPercent,
		&ad.DiscountNote,
		&ad.IsActive,
		&ad.NotificationsSent,
		&ad.CreatedAt,
		&ad.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return advertisement.Advertisement{}, advertisement.ErrNotFound
		}

		return advertisement.Advertisement{}, fmt.Errorf("failed to get advertisement: %w", err)
	}

	return ad, nil
}

// Update persists message, media and discount fields.
func (r *AdvertisementRepository) Update(
	ctx context.Context,
	ad advertisement.Advertisement,
) error {
	query, args, err := sq.Update("advertisements").
		Set("message", ad.Message).
		Set("image_urls", ad.ImageURLs).
		Set("video_urls", ad.VideoURLs).
		Set("has_discount", ad.HasDiscount).
		Set("discount_percent", ad.DiscountPercent).
		Set("discount_note", ad.DiscountNote).
		Set("is_active", ad.IsActive).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": ad.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update advertisement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return advertisement.ErrNotFound
	}

	return nil
}

// SetNotificationsSent overwrites the last-broadcast counter.
func (r *AdvertisementRepository) SetNotificationsSent(ctx context.Context, id int64, sent int) error {
	query, args, err := sq.Update("advertisements").
		Set("notifications_sent", sent).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update notifications counter: %w", err)
	}

	return nil
}

// Delete removes the advertisement. Notification rows cascade via the
// foreign key.
func (r *AdvertisementRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := sq.Delete("advertisements").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete advertisement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return advertisement.ErrNotFound
	}

	return nil
}
