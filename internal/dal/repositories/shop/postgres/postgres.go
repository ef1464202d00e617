package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/shopline/notify/internal/dal/postgres"
	"github.com/corray333/shopline/notify/internal/service/models/shop"
	"github.com/jackc/pgx/v5"
)

// ShopRepository implements shop lookups for PostgreSQL.
type ShopRepository struct {
	conn postgres.Querier
}

// NewShopRepository creates a new shop repository.
func NewShopRepository(conn postgres.Querier) *ShopRepository {
	return &ShopRepository{
		conn: conn,
	}
}

// GetByID fetches a shop by id.
func (r *ShopRepository) GetByID(ctx context.Context, id int64) (shop.Shop, error) {
	query, args, err := sq.Select("id", "owner_id", "name", "created_at").
		From("shops").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return shop.Shop{}, fmt.Errorf("failed to build select query: %w", err)
	}

	var s shop.Shop
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&s.ID,
		&s.OwnerID,
		&s.Name,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shop.Shop{}, shop.ErrNotFound
		}

		return shop.Shop{}, fmt.Errorf("failed to get shop: %w", err)
	}

	return s, nil
}

// ListByOwner returns the shops owned by a user.
func (r *ShopRepository) ListByOwner(ctx context.Context, ownerID int64) ([]shop.Shop, error) {
	query, args, err := sq.Select("id", "owner_id", "name", "created_at").
		From("shops").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("id ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shops: %w", err)
	}
	defer rows.Close()

	var shops []shop.Shop
	for rows.Next() {
		var s shop.Shop
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		shops = append(shops, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shops: %w", err)
	}

	return shops, nil
}
