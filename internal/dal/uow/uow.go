package uow

import (
	"context"

	"github.com/corray333/shopline/notify/internal/dal/interfaces/iadvertisementrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/inotificationrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/iratelimitrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/ishoprepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/iuserrepo"
	"github.com/corray333/shopline/notify/internal/dal/postgres"
	adrepo "github.com/corray333/shopline/notify/internal/dal/repositories/advertisement/postgres"
	notificationrepo "github.com/corray333/shopline/notify/internal/dal/repositories/notification/postgres"
	orderrepo "github.com/corray333/shopline/notify/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/corray333/shopline/notify/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/corray333/shopline/notify/internal/dal/repositories/outbox/postgres"
	ratelimitrepo "github.com/corray333/shopline/notify/internal/dal/repositories/ratelimit/postgres"
	shoprepo "github.com/corray333/shopline/notify/internal/dal/repositories/shop/postgres"
	userrepo "github.com/corray333/shopline/notify/internal/dal/repositories/user/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitOfWork scopes repositories to one connection. After Begin, the
// repositories run inside a single transaction until Commit or Rollback,
// which is what lets state mutations and their outbox rows commit together.
type UnitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
	conn postgres.Querier
}

// NewUnitOfWork creates a unit of work bound to the pool. Before Begin is
// called, repository calls run directly against the pool.
func NewUnitOfWork(client *postgres.Client) *UnitOfWork {
	return &UnitOfWork{
		pool: client.Pool(),
		conn: client.Pool(),
	}
}

// Begin starts a transaction; subsequent repository calls run inside it.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.conn = tx

	return nil
}

// Commit commits the transaction, if one was started.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback rolls back the transaction, if one was started. Safe to defer
// after Commit: pgx treats rollback of a finished transaction as a no-op
// error.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}

func (u *UnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return orderrepo.NewOrderRepository(u.conn)
}

func (u *UnitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return orderitemrepo.NewOrderItemRepository(u.conn)
}

func (u *UnitOfWork) AdvertisementRepository() iadvertisementrepo.IAdvertisementRepository {
	return adrepo.NewAdvertisementRepository(u.conn)
}

func (u *UnitOfWork) NotificationRepository() inotificationrepo.INotificationRepository {
	return notificationrepo.NewNotificationRepository(u.conn)
}

func (u *UnitOfWork) ShopRepository() ishoprepo.IShopRepository {
	return shoprepo.NewShopRepository(u.conn)
}

func (u *UnitOfWork) UserRepository() iuserrepo.IUserRepository {
	return userrepo.NewUserRepository(u.conn)
}

func (u *UnitOfWork) RateLimitRepository() iratelimitrepo.IRateLimitRepository {
	return ratelimitrepo.NewRateLimitRepository(u.conn)
}

func (u *UnitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return outboxrepo.NewOutboxRepository(u.conn)
}
