package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/shopline/notify/internal/dal/postgres"
	"github.com/corray333/shopline/notify/internal/service/models/order"
	"github.com/jackc/pgx/v5"
)

var orderColumns = []string{
	"id",
	"shop_id",
	"customer_id",
	"status",
	"order_type",
	"total_cents",
	"delivery_address",
	"delivery_lat",
	"delivery_lng",
	"delivery_time_minutes",
	"rejection_reason",
	"placed_at",
	"created_at",
	"updated_at",
}

// OrderRepository implements the order repository for PostgreSQL.
type OrderRepository struct {
	conn postgres.Querier
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(conn postgres.Querier) *OrderRepository {
	return &OrderRepository{
		conn: conn,
	}
}

// Insert persists a new order and returns it with its assigned id.
func (r *OrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	query, args, err := sq.Insert("orders").
		Columns(
			"shop_id",
			"customer_id",
			"status",
			"order_type",
			"total_cents",
			"delivery_address",
			"delivery_lat",
			"delivery_lng",
			"placed_at",
			"created_at",
			"updated_at",
		).
		Values(
			o.ShopID,
			o.CustomerID,
			o.Status,
			o.Type,
			o.TotalCents,
			o.DeliveryAddress,
			o.DeliveryLat,
			o.DeliveryLng,
			o.PlacedAt,
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&o.ID); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	return o, nil
}

// GetForUpdate fetches an order, locking the row when inside a transaction.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id int64) (order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build select query: %w", err)
	}

	o, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}

		return order.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	return o, nil
}

// UpdateStatus persists status and the status-specific optional fields.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o order.Order) error {
	query, args, err := sq.Update("orders").
		Set("status", o.Status).
		Set("delivery_time_minutes", o.DeliveryTime).
		Set("rejection_reason", o.RejectionReason).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": o.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	return nil
}

// Query retrieves orders matching the filter.
func (r *OrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		OrderBy("placed_at DESC").
		PlaceholderFormat(sq.Dollar)

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.ShopIds) > 0 {
		builder = builder.Where(sq.Eq{"shop_id": filter.ShopIds})
	}
	if len(filter.CustomerIds) > 0 {
		builder = builder.Where(sq.Eq{"customer_id": filter.CustomerIds})
	}
	if len(filter.Statuses) > 0 {
		builder = builder.Where(sq.Eq{"status": filter.Statuses})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID,
		&o.ShopID,
		&o.CustomerID,
		&o.Status,
		&o.Type,
		&o.TotalCents,
		&o.DeliveryAddress,
		&o.DeliveryLat,
		&o.DeliveryLng,
		&o.DeliveryTime,
		&o.RejectionReason,
		&o.PlacedAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)

	return o, err
}
