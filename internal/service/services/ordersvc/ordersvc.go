package ordersvc

import (
	"context"
	"fmt"
	"time"

	"github.com/corray333/shopline/notify/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/ishoprepo"
	"github.com/corray333/shopline/notify/internal/dal/postgres"
	"github.com/corray333/shopline/notify/internal/dal/uow"
	"github.com/corray333/shopline/notify/internal/service/models/event"
	"github.com/corray333/shopline/notify/internal/service/models/order"
	"github.com/corray333/shopline/notify/internal/service/models/outbox"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// OrderService manages the order lifecycle. Status mutations and the
// notification jobs they trigger are written in one transaction: the
// mutation is durable before any delivery is attempted, and delivery
// failures can never roll it back.
type OrderService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
	queueName  string
	maxRetries int
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	ShopRepository() ishoprepo.IShopRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

func (s *OrderService) newUOW() unitOfWork {
	return s.uowFactory()
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	queueName := viper.GetString("rabbitmq.notifications.queue")
	if queueName == "" {
		queueName = "notifications"
	}

	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	s := &OrderService{
		queueName:  queueName,
		maxRetries: maxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.uowFactory == nil {
		if s.pgClient == nil {
			panic("ordersvc: postgres client is not configured")
		}
		s.uowFactory = func() unitOfWork { return uow.NewUnitOfWork(s.pgClient) }
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides the unit of work construction.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.uowFactory = factory
	}
}

// Create places a new order in the pending state with its items.
func (s *OrderService) Create(ctx context.Context, o order.Order) (order.Order, error) {
	now := time.Now()
	o.Status = order.StatusPending
	o.PlacedAt = now
	o.CreatedAt = now
	o.UpdatedAt = now

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, err
	}
	defer work.Rollback(ctx) //nolint:errcheck // no-op after commit

	o, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return order.Order{}, err
	}

	for i := range o.OrderItems {
		o.OrderItems[i].OrderID = o.ID
		o.OrderItems[i].CreatedAt = now
	}
	o.OrderItems, err = work.OrderItemRepository().BulkInsert(ctx, o.OrderItems)
	if err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, err
	}

	return o, nil
}

// UpdateStatus applies a status transition. For transitions into confirmed,
// rejected or completed a customer notification job is enqueued; completed
// additionally enqueues a shopkeeper "order received" job. Jobs commit with
// the mutation and are published later by the outbox worker.
func (s *OrderService) UpdateStatus(
	ctx context.Context,
	orderID int64,
	newStatus order.Status,
	deliveryTime *int,
	rejectionReason *string,
) (order.Order, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, err
	}
	defer work.Rollback(ctx) //nolint:errcheck // no-op after commit

	o, err := work.OrderRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		return order.Order{}, err
	}

	if !o.Status.CanTransitionTo(newStatus) {
		return order.Order{}, fmt.Errorf(
			"%w: %s -> %s", order.ErrInvalidTransition, o.Status, newStatus,
		)
	}

	o.Status = newStatus
	switch newStatus {
	case order.StatusConfirmed:
		o.DeliveryTime = deliveryTime
	case order.StatusRejected:
		o.RejectionReason = rejectionReason
	}
	o.UpdatedAt = time.Now()

	if err := work.OrderRepository().UpdateStatus(ctx, o); err != nil {
		return order.Order{}, err
	}

	if kind, notifies := customerEventFor(newStatus); notifies {
		if err := s.enqueueJob(ctx, work, orderJob(kind, o, []int64{o.CustomerID})); err != nil {
			return order.Order{}, err
		}
	}

	if newStatus == order.StatusCompleted {
		shp, err := work.ShopRepository().GetByID(ctx, o.ShopID)
		if err != nil {
			return order.Order{}, err
		}
		if err := s.enqueueJob(ctx, work, orderJob(event.KindOrderReceived, o, []int64{shp.OwnerID})); err != nil {
			return order.Order{}, err
		}
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, err
	}

	return o, nil
}

// Cancel is the customer-initiated cancellation. It moves the order to
// cancelled and enqueues a shopkeeper-facing job.
func (s *OrderService) Cancel(ctx context.Context, orderID int64) (order.Order, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, err
	}
	defer work.Rollback(ctx) //nolint:errcheck // no-op after commit

	o, err := work.OrderRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		return order.Order{}, err
	}

	if !o.Status.CanTransitionTo(order.StatusCancelled) {
		return order.Order{}, fmt.Errorf(
			"%w: %s -> %s", order.ErrInvalidTransition, o.Status, order.StatusCancelled,
		)
	}

	o.Status = order.StatusCancelled
	o.UpdatedAt = time.Now()

	if err := work.OrderRepository().UpdateStatus(ctx, o); err != nil {
		return order.Order{}, err
	}

	shp, err := work.ShopRepository().GetByID(ctx, o.ShopID)
	if err != nil {
		return order.Order{}, err
	}
	if err := s.enqueueJob(ctx, work, orderJob(event.KindOrderCancelled, o, []int64{shp.OwnerID})); err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, err
	}

	return o, nil
}

// GetOrders retrieves orders with their items based on filter.
func (s *OrderService) GetOrders(
	ctx context.Context,
	filter order.QueryOrdersModel,
) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &filter)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	items, err := work.OrderItemRepository().QueryByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].OrderItems = append(orders[i].OrderItems, item)
			}
		}
	}

	return orders, nil
}

// GetOrderHistory retrieves orders narrowed to terminal statuses.
func (s *OrderService) GetOrderHistory(
	ctx context.Context,
	filter order.QueryOrdersModel,
) ([]order.Order, error) {
	return s.GetOrders(ctx, filter.TerminalOnly())
}

// customerEventFor maps a target status to the customer-facing event it
// triggers. Only confirmed, rejected and completed notify the customer.
func customerEventFor(status order.Status) (event.Kind, bool) {
	switch status {
	case order.StatusConfirmed:
		return event.KindOrderConfirmed, true
	case order.StatusRejected:
		return event.KindOrderRejected, true
	case order.StatusCompleted:
		return event.KindOrderCompleted, true
	default:
		return "", false
	}
}

func orderJob(kind event.Kind, o order.Order, recipients []int64) event.Job {
	return event.Job{
		JobID:           uuid.NewString(),
		Kind:            kind,
		ShopID:          o.ShopID,
		RecipientIDs:    recipients,
		OrderID:         o.ID,
		DeliveryTime:    o.DeliveryTime,
		RejectionReason: o.RejectionReason,
	}
}

func (s *OrderService) enqueueJob(ctx context.Context, work unitOfWork, job event.Job) error {
	payload, err := job.Marshal()
	if err != nil {
		return err
	}

	now := time.Now()

	return work.OutboxRepository().Insert(ctx, outbox.Message{
		QueueName:   s.queueName,
		RoutingKey:  s.queueName,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  s.maxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	})
}
