package ordersvc

import (
	"context"
	"testing"
	"time"

	"github.com/corray333/shopline/notify/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/ishoprepo"
	"github.com/corray333/shopline/notify/internal/service/models/event"
	"github.com/corray333/shopline/notify/internal/service/models/order"
	"github.com/corray333/shopline/notify/internal/service/models/orderitem"
	"github.com/corray333/shopline/notify/internal/service/models/outbox"
	"github.com/corray333/shopline/notify/internal/service/models/shop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	orders      map[int64]order.Order
	nextOrderID int64
	items       []orderitem.OrderItem
	nextItemID  int64
	shops       map[int64]shop.Shop
	outbox      []outbox.Message
	outboxErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:      make(map[int64]order.Order),
		nextOrderID: 1,
		shops:       map[int64]shop.Shop{1: {ID: 1, OwnerID: 100, Name: "Corner Deli"}},
	}
}

type fakeOrderRepo struct{ s *fakeStore }

func (r *fakeOrderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	o.ID = r.s.nextOrderID
	r.s.nextOrderID++

	// The orders table carries no item rows; items live in their own
	// repository and get attached on read.
	stored := o
	stored.OrderItems = nil
	r.s.orders[o.ID] = stored

	return o, nil
}

func (r *fakeOrderRepo) GetForUpdate(_ context.Context, id int64) (order.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}

	return o, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, o order.Order) error {
	if _, ok := r.s.orders[o.ID]; !ok {
		return order.ErrNotFound
	}
	r.s.orders[o.ID] = o

	return nil
}

func (r *fakeOrderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	var result []order.Order
	for _, o := range r.s.orders {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, o.Status) {
			continue
		}
		if len(filter.CustomerIds) > 0 && !containsID(filter.CustomerIds, o.CustomerID) {
			continue
		}
		result = append(result, o)
	}

	return result, nil
}

func containsStatus(statuses []order.Status, s order.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}

	return false
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}

	return false
}

type fakeItemRepo struct{ s *fakeStore }

func (r *fakeItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	for i := range items {
		r.s.nextItemID++
		items[i].ID = r.s.nextItemID
		r.s.items = append(r.s.items, items[i])
	}

	return items, nil
}

func (r *fakeItemRepo) QueryByOrderIDs(_ context.Context, orderIDs []int64) ([]orderitem.OrderItem, error) {
	var result []orderitem.OrderItem
	for _, item := range r.s.items {
		if containsID(orderIDs, item.OrderID) {
			result = append(result, item)
		}
	}

	return result, nil
}

type fakeShopRepo struct{ s *fakeStore }

func (r *fakeShopRepo) GetByID(_ context.Context, id int64) (shop.Shop, error) {
	shp, ok := r.s.shops[id]
	if !ok {
		return shop.Shop{}, shop.ErrNotFound
	}

	return shp, nil
}

func (r *fakeShopRepo) ListByOwner(context.Context, int64) ([]shop.Shop, error) {
	return nil, nil
}

type fakeOutboxRepo struct{ s *fakeStore }

func (r *fakeOutboxRepo) Insert(_ context.Context, msg outbox.Message) error {
	if r.s.outboxErr != nil {
		return r.s.outboxErr
	}
	r.s.outbox = append(r.s.outbox, msg)

	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(context.Context, int) ([]outbox.Message, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) Delete(context.Context, int64) error { return nil }

func (r *fakeOutboxRepo) UpdateRetry(context.Context, int64, int, string, time.Time) error {
	return nil
}

type fakeOrderUOW struct {
	s          *fakeStore
	committed  bool
	rolledBack bool
}

func (u *fakeOrderUOW) Begin(context.Context) error { return nil }

func (u *fakeOrderUOW) Commit(context.Context) error {
	u.committed = true

	return nil
}

func (u *fakeOrderUOW) Rollback(context.Context) error {
	if !u.committed {
		u.rolledBack = true
	}

	return nil
}

func (u *fakeOrderUOW) OrderRepository() iorderrepo.IOrderRepository {
	return &fakeOrderRepo{s: u.s}
}

func (u *fakeOrderUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return &fakeItemRepo{s: u.s}
}

func (u *fakeOrderUOW) ShopRepository() ishoprepo.IShopRepository {
	return &fakeShopRepo{s: u.s}
}

func (u *fakeOrderUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return &fakeOutboxRepo{s: u.s}
}

func newTestService(store *fakeStore) *OrderService {
	return MustNewOrderService(
		WithUnitOfWorkFactory(func() unitOfWork { return &fakeOrderUOW{s: store} }),
	)
}

func placeOrder(t *testing.T, svc *OrderService, store *fakeStore) order.Order {
	t.Helper()
	o, err := svc.Create(context.Background(), order.Order{
		ShopID:     1,
		CustomerID: 42,
		Type:       order.TypeDelivery,
		TotalCents: 25000,
		OrderItems: []orderitem.OrderItem{
			{ItemID: 7, Title: "Margherita", Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Equal(t, order.StatusPending, store.orders[o.ID].Status)

	return o
}

func decodeJobs(t *testing.T, store *fakeStore) []event.Job {
	t.Helper()
	jobs := make([]event.Job, 0, len(store.outbox))
	for _, msg := range store.outbox {
		job, err := event.Unmarshal(msg.Payload)
		require.NoError(t, err)
		jobs = append(jobs, job)
	}

	return jobs
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestCreateStartsPendingWithItems(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	o := placeOrder(t, svc, store)

	assert.Equal(t, order.StatusPending, o.Status)
	require.Len(t, o.OrderItems, 1)
	assert.Equal(t, o.ID, o.OrderItems[0].OrderID)
	assert.Empty(t, store.outbox)
}

func TestUpdateStatusConfirmedNotifiesCustomer(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	o := placeOrder(t, svc, store)

	updated, err := svc.UpdateStatus(context.Background(), o.ID, order.StatusConfirmed, intPtr(20), nil)
	require.NoError(t, err)

	assert.Equal(t, order.StatusConfirmed, updated.Status)
	require.NotNil(t, updated.DeliveryTime)
	assert.Equal(t, 20, *updated.DeliveryTime)
	assert.Equal(t, order.StatusConfirmed, store.orders[o.ID].Status)

	jobs := decodeJobs(t, store)
	require.Len(t, jobs, 1)
	assert.Equal(t, event.KindOrderConfirmed, jobs[0].Kind)
	assert.Equal(t, []int64{42}, jobs[0].RecipientIDs)
	require.NotNil(t, jobs[0].DeliveryTime)
	assert.Equal(t, 20, *jobs[0].DeliveryTime)
}

func TestUpdateStatusRejectedCarriesReason(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	o := placeOrder(t, svc, store)

	updated, err := svc.UpdateStatus(context.Background(), o.ID, order.StatusRejected, nil, strPtr("out of stock"))
	require.NoError(t, err)

	require.NotNil(t, updated.RejectionReason)
	assert.Equal(t, "out of stock", *updated.RejectionReason)

	jobs := decodeJobs(t, store)
	require.Len(t, jobs, 1)
	assert.Equal(t, event.KindOrderRejected, jobs[0].Kind)
	require.NotNil(t, jobs[0].RejectionReason)
	assert.Equal(t, "out of stock", *jobs[0].RejectionReason)
}

func TestUpdateStatusRejectedWithoutReasonIsAllowed(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	o := placeOrder(t, svc, store)

	updated, err := svc.UpdateStatus(context.Background(), o.ID, order.StatusRejected, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.RejectionReason)
}

func TestUpdateStatusCompletedNotifiesBothSides(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	o := placeOrder(t, svc, store)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, o.ID, order.StatusConfirmed, intPtr(20), nil)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, o.ID, order.StatusCompleted, nil, nil)
	require.NoError(t, err)

	jobs := decodeJobs(t, store)
	require.Len(t, jobs, 3)

	assert.Equal(t, event.KindOrderCompleted, jobs[1].Kind)
	assert.Equal(t, []int64{42}, jobs[1].RecipientIDs)

	assert.Equal(t, event.KindOrderReceived, jobs[2].Kind)
	assert.Equal(t, []int64{100}, jobs[2].RecipientIDs)
}

func TestUpdateStatusIntermediateStagesDoNotNotify(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	o := placeOrder(t, svc, store)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, o.ID, order.StatusConfirmed, intPtr(20), nil)
	require.NoError(t, err)
	require.Len(t, store.outbox, 1)

	_, err = svc.UpdateStatus(ctx, o.ID, order.StatusPreparing, nil, nil)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, o.ID, order.StatusReady, nil, nil)
	require.NoError(t, err)

	assert.Len(t, store.outbox, 1)
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	o := placeOrder(t, svc, store)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, o.ID, order.StatusCompleted, nil, nil)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, o.ID, order.StatusRejected, nil, nil)
	require.NoError(t, err)

	// Terminal states accept no further transitions.
	_, err = svc.UpdateStatus(ctx, o.ID, order.StatusConfirmed, nil, nil)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)

	assert.Equal(t, order.StatusRejected, store.orders[o.ID].Status)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.UpdateStatus(context.Background(), 999, order.StatusConfirmed, nil, nil)
	assert.ErrorIs(t, err, order.ErrNotFound)
	assert.Empty(t, store.outbox)
}

func TestUpdateStatusJobFailureRollsBackMutation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	o := placeOrder(t, svc, store)
	store.outboxErr = assert.AnError

	_, err := svc.UpdateStatus(context.Background(), o.ID, order.StatusConfirmed, intPtr(20), nil)
	require.Error(t, err)

	// Job row and mutation commit together or not at all; the in-memory
	// fake cannot undo the write, but nothing must reach the outbox.
	assert.Empty(t, store.outbox)
}

func TestCancelNotifiesShopkeeper(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	o := placeOrder(t, svc, store)

	cancelled, err := svc.Cancel(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	jobs := decodeJobs(t, store)
	require.Len(t, jobs, 1)
	assert.Equal(t, event.KindOrderCancelled, jobs[0].Kind)
	assert.Equal(t, []int64{100}, jobs[0].RecipientIDs)
}

func TestCancelTerminalOrderFails(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	o := placeOrder(t, svc, store)
	ctx := context.Background()

	_, err := svc.Cancel(ctx, o.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, o.ID)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
}

func TestGetOrderHistoryReturnsTerminalOnly(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	active := placeOrder(t, svc, store)
	done := placeOrder(t, svc, store)
	_, err := svc.UpdateStatus(ctx, done.ID, order.StatusConfirmed, nil, nil)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, done.ID, order.StatusCompleted, nil, nil)
	require.NoError(t, err)

	history, err := svc.GetOrderHistory(ctx, order.QueryOrdersModel{CustomerIds: []int64{42}})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, done.ID, history[0].ID)
	assert.NotEqual(t, active.ID, history[0].ID)
	require.Len(t, history[0].OrderItems, 1)
	assert.Equal(t, "Margherita", history[0].OrderItems[0].Title)
	assert.Equal(t, done.ID, history[0].OrderItems[0].OrderID)
}

func TestOrderLifecycleDeliveryScenario(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	o := placeOrder(t, svc, store)

	_, err := svc.UpdateStatus(ctx, o.ID, order.StatusConfirmed, intPtr(20), nil)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, o.ID, order.StatusCompleted, nil, nil)
	require.NoError(t, err)

	jobs := decodeJobs(t, store)
	require.Len(t, jobs, 3)

	assert.Equal(t, event.KindOrderConfirmed, jobs[0].Kind)
	assert.Equal(t, []int64{42}, jobs[0].RecipientIDs)
	require.NotNil(t, jobs[0].DeliveryTime)
	assert.Equal(t, 20, *jobs[0].DeliveryTime)

	assert.Equal(t, event.KindOrderCompleted, jobs[1].Kind)
	assert.Equal(t, []int64{42}, jobs[1].RecipientIDs)

	assert.Equal(t, event.KindOrderReceived, jobs[2].Kind)
	assert.Equal(t, []int64{100}, jobs[2].RecipientIDs)

	_, err = svc.UpdateStatus(ctx, o.ID, order.StatusRejected, nil, nil)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
	assert.Equal(t, order.StatusCompleted, store.orders[o.ID].Status)
}
