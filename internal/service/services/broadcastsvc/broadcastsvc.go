package broadcastsvc

import (
	"context"
	"time"

	"github.com/corray333/shopline/notify/internal/dal/interfaces/iadvertisementrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/inotificationrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/shopline/notify/internal/dal/interfaces/iuserrepo"
	"github.com/corray333/shopline/notify/internal/dal/postgres"
	"github.com/corray333/shopline/notify/internal/dal/uow"
	"github.com/corray333/shopline/notify/internal/service/models/advertisement"
	"github.com/corray333/shopline/notify/internal/service/models/event"
	"github.com/corray333/shopline/notify/internal/service/models/notification"
	"github.com/corray333/shopline/notify/internal/service/models/outbox"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// BroadcastService manages advertisements and their fan-out. The
// notification registry rows are the source of truth for "already
// notified": the unique (advertisement, recipient) pair makes any number
// of broadcast calls deliver at most once per recipient.
type BroadcastService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
	queueName  string
	maxRetries int
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	AdvertisementRepository() iadvertisementrepo.IAdvertisementRepository
	NotificationRepository() inotificationrepo.INotificationRepository
	UserRepository() iuserrepo.IUserRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// Result summarizes one broadcast call.
type Result struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// option is a function that configures the BroadcastService.
type option func(*BroadcastService)

// MustNewBroadcastService creates a new BroadcastService.
func MustNewBroadcastService(opts ...option) *BroadcastService {
	queueName := viper.GetString("rabbitmq.notifications.queue")
	if queueName == "" {
		queueName = "notifications"
	}

	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	s := &BroadcastService{
		queueName:  queueName,
		maxRetries: maxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.uowFactory == nil {
		if s.pgClient == nil {
			panic("broadcastsvc: postgres client is not configured")
		}
		s.uowFactory = func() unitOfWork { return uow.NewUnitOfWork(s.pgClient) }
	}

	return s
}

// WithPostgresClient sets the Postgres client for the BroadcastService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *BroadcastService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides the unit of work construction.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *BroadcastService) {
		s.uowFactory = factory
	}
}

// CreateAdvertisement persists a new advertisement.
func (s *BroadcastService) CreateAdvertisement(
	ctx context.Context,
	ad advertisement.Advertisement,
) (advertisement.Advertisement, error) {
	now := time.Now()
	ad.IsActive = true
	ad.NotificationsSent = 0
	ad.CreatedAt = now
	ad.UpdatedAt = now

	return s.uowFactory().AdvertisementRepository().Insert(ctx, ad)
}

// GetAdvertisement fetches an advertisement together with its cumulative
// notified total (the count of registry rows, as opposed to the
// last-broadcast NotificationsSent counter).
func (s *BroadcastService) GetAdvertisement(
	ctx context.Context,
	id int64,
) (advertisement.Advertisement, int, error) {
	work := s.uowFactory()

	ad, err := work.AdvertisementRepository().GetByID(ctx, id)
	if err != nil {
		return advertisement.Advertisement{}, 0, err
	}

	total, err := work.NotificationRepository().CountByAdvertisement(ctx, id)
	if err != nil {
		return advertisement.Advertisement{}, 0, err
	}

	return ad, total, nil
}

// UpdateAdvertisement edits message, media and discount fields without
// touching notification history: recipients already notified stay
// notified.
func (s *BroadcastService) UpdateAdvertisement(
	ctx context.Context,
	ad advertisement.Advertisement,
) error {
	return s.uowFactory().AdvertisementRepository().Update(ctx, ad)
}

// DeleteAdvertisement removes the advertisement and every notification
// referencing it, so no registry row can outlive its advertisement.
func (s *BroadcastService) DeleteAdvertisement(ctx context.Context, id int64) error {
	work := s.uowFactory()
	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer work.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := work.NotificationRepository().DeleteByAdvertisement(ctx, id); err != nil {
		return err
	}
	if err := work.AdvertisementRepository().Delete(ctx, id); err != nil {
		return err
	}

	return work.Commit(ctx)
}

// Broadcast notifies every registered user about an advertisement. All
// users are candidates regardless of role, including the advertisement's
// own shop owner, so owners see their promotion in their own feed.
// Recipients already holding a registry row are skipped, which makes
// resend idempotent: only users registered since the previous call are
// newly notified. NotificationsSent is overwritten with this call's sent
// count. One push job for the newly notified set commits with the rows.
func (s *BroadcastService) Broadcast(ctx context.Context, advertisementID int64) (Result, error) {
	work := s.uowFactory()
	if err := work.Begin(ctx); err != nil {
		return Result{}, err
	}
	defer work.Rollback(ctx) //nolint:errcheck // no-op after commit

	ad, err := work.AdvertisementRepository().GetByID(ctx, advertisementID)
	if err != nil {
		return Result{}, err
	}

	candidates, err := work.UserRepository().ListIDs(ctx)
	if err != nil {
		return Result{}, err
	}

	now := time.Now()
	rows := make([]notification.Notification, 0, len(candidates))
	for _, recipientID := range candidates {
		rows = append(rows, notification.Notification{
			AdvertisementID: ad.ID,
			RecipientID:     recipientID,
			ShopID:          ad.ShopID,
			Message:         ad.Message,
			SentAt:          now,
		})
	}

	inserted, err := work.NotificationRepository().InsertUnique(ctx, rows)
	if err != nil {
		return Result{}, err
	}

	if err := work.AdvertisementRepository().SetNotificationsSent(ctx, ad.ID, len(inserted)); err != nil {
		return Result{}, err
	}

	if len(inserted) > 0 {
		job := event.Job{
			JobID:           uuid.NewString(),
			Kind:            event.KindAdvertisement,
			ShopID:          ad.ShopID,
			RecipientIDs:    inserted,
			AdvertisementID: ad.ID,
			Message:         ad.Message,
		}
		payload, err := job.Marshal()
		if err != nil {
			return Result{}, err
		}

		err = work.OutboxRepository().Insert(ctx, outbox.Message{
			QueueName:   s.queueName,
			RoutingKey:  s.queueName,
			Payload:     payload,
			ContentType: "application/json",
			MaxRetries:  s.maxRetries,
			CreatedAt:   now,
			UpdatedAt:   now,
			NextRetryAt: now,
		})
		if err != nil {
			return Result{}, err
		}
	}

	if err := work.Commit(ctx); err != nil {
		return Result{}, err
	}

	return Result{
		Sent:    len(inserted),
		Skipped: len(candidates) - len(inserted),
		Total:   len(candidates),
	}, nil
}

// ListNotifications returns a recipient's notification feed.
func (s *BroadcastService) ListNotifications(
	ctx context.Context,
	recipientID int64,
	limit, offset int,
) ([]notification.Notification, error) {
	return s.uowFactory().NotificationRepository().ListByRecipient(ctx, recipientID, limit, offset)
}

// MarkNotificationRead flags a feed entry as read.
func (s *BroadcastService) MarkNotificationRead(ctx context.Context, id int64) error {
	return s.uowFactory().NotificationRepository().MarkRead(ctx, id)
}
