package broadcastsvc

import (
	"context"
	"testing"
	"time"

	"github.com/corray333/shopline/notify/internal/dal/interfaces/iadvertisementrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/inotificationrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/iuserrepo"
	"github.com/corray333/shopline/notify/internal/service/models/advertisement"
	"github.com/corray333/shopline/notify/internal/service/models/event"
	"github.com/corray333/shopline/notify/internal/service/models/notification"
	"github.com/corray333/shopline/notify/internal/service/models/outbox"
	"github.com/corray333/shopline/notify/internal/service/models/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	adID, recipientID int64
}

type fakeStore struct {
	ads       map[int64]advertisement.Advertisement
	nextAdID  int64
	registry  map[pair]notification.Notification
	nextNotID int64
	userIDs   []int64
	outbox    []outbox.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ads:      make(map[int64]advertisement.Advertisement),
		nextAdID: 1,
		registry: make(map[pair]notification.Notification),
	}
}

type fakeAdRepo struct{ s *fakeStore }

func (r *fakeAdRepo) Insert(_ context.Context, ad advertisement.Advertisement) (advertisement.Advertisement, error) {
	ad.ID = r.s.nextAdID
	r.s.nextAdID++
	r.s.ads[ad.ID] = ad

	return ad, nil
}

func (r *fakeAdRepo) GetByID(_ context.Context, id int64) (advertisement.Advertisement, error) {
	ad, ok := r.s.ads[id]
	if !ok {
		return advertisement.Advertisement{}, advertisement.ErrNotFound
	}

	return ad, nil
}

func (r *fakeAdRepo) Update(_ context.Context, ad advertisement.Advertisement) error {
	stored, ok := r.s.ads[ad.ID]
	if !ok {
		return advertisement.ErrNotFound
	}
	stored.Message = ad.Message
	stored.IsActive = ad.IsActive
	r.s.ads[ad.ID] = stored

	return nil
}

func (r *fakeAdRepo) SetNotificationsSent(_ context.Context, id int64, sent int) error {
	ad := r.s.ads[id]
	ad.NotificationsSent = sent
	r.s.ads[id] = ad

	return nil
}

func (r *fakeAdRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.ads[id]; !ok {
		return advertisement.ErrNotFound
	}
	delete(r.s.ads, id)

	return nil
}

type fakeNotifRepo struct{ s *fakeStore }

func (r *fakeNotifRepo) InsertUnique(_ context.Context, rows []notification.Notification) ([]int64, error) {
	inserted := make([]int64, 0, len(rows))
	for _, n := range rows {
		key := pair{n.AdvertisementID, n.RecipientID}
		if _, exists := r.s.registry[key]; exists {
			continue
		}
		r.s.nextNotID++
		n.ID = r.s.nextNotID
		r.s.registry[key] = n
		inserted = append(inserted, n.RecipientID)
	}

	return inserted, nil
}

func (r *fakeNotifRepo) CountByAdvertisement(_ context.Context, adID int64) (int, error) {
	count := 0
	for key := range r.s.registry {
		if key.adID == adID {
			count++
		}
	}

	return count, nil
}

func (r *fakeNotifRepo) ListByRecipient(_ context.Context, recipientID int64, _, _ int) ([]notification.Notification, error) {
	var feed []notification.Notification
	for key, n := range r.s.registry {
		if key.recipientID == recipientID {
			feed = append(feed, n)
		}
	}

	return feed, nil
}

func (r *fakeNotifRepo) MarkRead(_ context.Context, id int64) error {
	for key, n := range r.s.registry {
		if n.ID == id {
			n.IsRead = true
			r.s.registry[key] = n

			return nil
		}
	}

	return notification.ErrNotFound
}

func (r *fakeNotifRepo) DeleteByAdvertisement(_ context.Context, adID int64) error {
	for key := range r.s.registry {
		if key.adID == adID {
			delete(r.s.registry, key)
		}
	}

	return nil
}

func (r *fakeNotifRepo) DeleteByRecipient(_ context.Context, recipientID int64) error {
	for key := range r.s.registry {
		if key.recipientID == recipientID {
			delete(r.s.registry, key)
		}
	}

	return nil
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) GetByID(context.Context, int64) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (r *fakeUserRepo) ListIDs(context.Context) ([]int64, error) {
	return append([]int64(nil), r.s.userIDs...), nil
}

func (r *fakeUserRepo) ListByIDs(context.Context, []int64) ([]user.User, error) {
	return nil, nil
}

type fakeOutboxRepo struct{ s *fakeStore }

func (r *fakeOutboxRepo) Insert(_ context.Context, msg outbox.Message) error {
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

type fakeBroadcastUOW struct{ s *fakeStore }

func (u *fakeBroadcastUOW) Begin(context.Context) error    { return nil }
func (u *fakeBroadcastUOW) Commit(context.Context) error   { return nil }
func (u *fakeBroadcastUOW) Rollback(context.Context) error { return nil }

func (u *fakeBroadcastUOW) AdvertisementRepository() iadvertisementrepo.IAdvertisementRepository {
	return &fakeAdRepo{s: u.s}
}

func (u *fakeBroadcastUOW) NotificationRepository() inotificationrepo.INotificationRepository {
	return &fakeNotifRepo{s: u.s}
}

func (u *fakeBroadcastUOW) UserRepository() iuserrepo.IUserRepository {
	return &fakeUserRepo{s: u.s}
}

func (u *fakeBroadcastUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return &fakeOutboxRepo{s: u.s}
}

func newTestService(store *fakeStore) *BroadcastService {
	return MustNewBroadcastService(
		WithUnitOfWorkFactory(func() unitOfWork { return &fakeBroadcastUOW{s: store} }),
	)
}

func seedAd(t *testing.T, svc *BroadcastService) advertisement.Advertisement {
	t.Helper()
	ad, err := svc.CreateAdvertisement(context.Background(), advertisement.Advertisement{
		ShopID:  1,
		OwnerID: 10,
		Message: "Fresh bread every morning",
	})
	require.NoError(t, err)

	return ad
}

func TestBroadcastNotifiesAllUsersOnce(t *testing.T) {
	store := newFakeStore()
	store.userIDs = []int64{10, 20, 30}
	svc := newTestService(store)
	ad := seedAd(t, svc)

	result, err := svc.Broadcast(context.Background(), ad.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Sent)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 3, result.Total)
	assert.Len(t, store.registry, 3)
	assert.Equal(t, 3, store.ads[ad.ID].NotificationsSent)
	require.Len(t, store.outbox, 1)

	job, err := event.Unmarshal(store.outbox[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, event.KindAdvertisement, job.Kind)
	assert.ElementsMatch(t, []int64{10, 20, 30}, job.RecipientIDs)
	assert.Equal(t, ad.ID, job.AdvertisementID)
}

func TestBroadcastResendIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.userIDs = []int64{10, 20}
	svc := newTestService(store)
	ad := seedAd(t, svc)
	ctx := context.Background()

	_, err := svc.Broadcast(ctx, ad.ID)
	require.NoError(t, err)

	result, err := svc.Broadcast(ctx, ad.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, store.registry, 2)
	// No push job when nobody new was notified.
	assert.Len(t, store.outbox, 1)
	// The counter reflects the most recent call, not the total.
	assert.Equal(t, 0, store.ads[ad.ID].NotificationsSent)
}

func TestBroadcastResendReachesOnlyNewUsers(t *testing.T) {
	store := newFakeStore()
	store.userIDs = []int64{10, 20}
	svc := newTestService(store)
	ad := seedAd(t, svc)
	ctx := context.Background()

	_, err := svc.Broadcast(ctx, ad.ID)
	require.NoError(t, err)

	store.userIDs = append(store.userIDs, 30, 40)

	result, err := svc.Broadcast(ctx, ad.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 4, result.Total)
	assert.Len(t, store.registry, 4)
	assert.Equal(t, 2, store.ads[ad.ID].NotificationsSent)

	require.Len(t, store.outbox, 2)
	job, err := event.Unmarshal(store.outbox[1].Payload)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{30, 40}, job.RecipientIDs)
}

func TestBroadcastUnknownAdvertisement(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.Broadcast(context.Background(), 999)
	assert.ErrorIs(t, err, advertisement.ErrNotFound)
}

func TestGetAdvertisementReportsCumulativeTotal(t *testing.T) {
	store := newFakeStore()
	store.userIDs = []int64{10, 20}
	svc := newTestService(store)
	ad := seedAd(t, svc)
	ctx := context.Background()

	_, err := svc.Broadcast(ctx, ad.ID)
	require.NoError(t, err)

	store.userIDs = append(store.userIDs, 30)
	_, err = svc.Broadcast(ctx, ad.ID)
	require.NoError(t, err)

	got, total, err := svc.GetAdvertisement(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NotificationsSent)
	assert.Equal(t, 3, total)
}

func TestDeleteAdvertisementRemovesRegistryRows(t *testing.T) {
	store := newFakeStore()
	store.userIDs = []int64{10, 20}
	svc := newTestService(store)
	ctx := context.Background()

	ad := seedAd(t, svc)
	other := seedAd(t, svc)

	_, err := svc.Broadcast(ctx, ad.ID)
	require.NoError(t, err)
	_, err = svc.Broadcast(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, store.registry, 4)

	require.NoError(t, svc.DeleteAdvertisement(ctx, ad.ID))

	assert.NotContains(t, store.ads, ad.ID)
	assert.Len(t, store.registry, 2)
	for key := range store.registry {
		assert.Equal(t, other.ID, key.adID)
	}
}

func TestUpdateAdvertisementKeepsHistory(t *testing.T) {
	store := newFakeStore()
	store.userIDs = []int64{10}
	svc := newTestService(store)
	ctx := context.Background()
	ad := seedAd(t, svc)

	_, err := svc.Broadcast(ctx, ad.ID)
	require.NoError(t, err)

	ad.Message = "Even fresher bread"
	require.NoError(t, svc.UpdateAdvertisement(ctx, ad))

	// Editing does not reopen delivery: a resend still skips everyone.
	result, err := svc.Broadcast(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 1, result.Skipped)
}

func TestMarkNotificationRead(t *testing.T) {
	store := newFakeStore()
	store.userIDs = []int64{10}
	svc := newTestService(store)
	ctx := context.Background()
	ad := seedAd(t, svc)

	_, err := svc.Broadcast(ctx, ad.ID)
	require.NoError(t, err)

	feed, err := svc.ListNotifications(ctx, 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.False(t, feed[0].IsRead)

	require.NoError(t, svc.MarkNotificationRead(ctx, feed[0].ID))

	feed, err = svc.ListNotifications(ctx, 10, 0, 0)
	require.NoError(t, err)
	assert.True(t, feed[0].IsRead)

	assert.ErrorIs(t, svc.MarkNotificationRead(ctx, 999), notification.ErrNotFound)
}
