package dispatchsvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/corray333/shopline/notify/internal/dal/clickhouse"
	"github.com/corray333/shopline/notify/internal/dal/pushgateway"
	"github.com/corray333/shopline/notify/internal/service/models/event"
	"github.com/corray333/shopline/notify/internal/service/models/user"
)

// gateway is the external push provider surface.
type gateway interface {
	Send(ctx context.Context, targets []string, payload event.Payload) (pushgateway.SendResult, error)
}

// userLister resolves recipients to their accounts for device tokens.
type userLister interface {
	ListByIDs(ctx context.Context, ids []int64) ([]user.User, error)
}

// dispatchLogger records delivery outcomes.
type dispatchLogger interface {
	InsertDispatchLog(ctx context.Context, row clickhouse.DispatchLog) error
}

// DispatchService formats notification jobs into push payloads and hands
// them to the gateway. The push channel is a best-effort amplifier of the
// registry: nothing here ever propagates back to the caller that caused
// the job.
type DispatchService struct {
	gateway gateway
	users   userLister
	chLog   dispatchLogger
}

// option is a function that configures the DispatchService.
type option func(*DispatchService)

// MustNewDispatchService creates a new DispatchService.
func MustNewDispatchService(opts ...option) *DispatchService {
	s := &DispatchService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.gateway == nil {
		panic("dispatchsvc: push gateway is not configured")
	}
	if s.users == nil {
		panic("dispatchsvc: user repository is not configured")
	}

	return s
}

// WithGateway sets the push gateway for the DispatchService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithGateway(g gateway) option {
	return func(s *DispatchService) {
		s.gateway = g
	}
}

// WithUserLister sets the account lookup for the DispatchService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUserLister(users userLister) option {
	return func(s *DispatchService) {
		s.users = users
	}
}

// WithDispatchLogger sets the optional delivery result log. A nil client
// leaves result recording off.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithDispatchLogger(l *clickhouse.Client) option {
	return func(s *DispatchService) {
		if l != nil {
			s.chLog = l
		}
	}
}

// Dispatch sends one job through the push gateway. Recipients without a
// device token are skipped for the push channel only; their registry rows
// already exist. Gateway failures are logged and recorded, never returned:
// by the time a job reaches dispatch, the state change that produced it
// has long been committed.
func (s *DispatchService) Dispatch(ctx context.Context, job event.Job) error {
	payload, err := event.BuildPayload(job)
	if err != nil {
		return err
	}

	recipients, err := s.users.ListByIDs(ctx, job.RecipientIDs)
	if err != nil {
		return err
	}

	targets := make([]string, 0, len(recipients))
	for _, u := range recipients {
		if u.DeviceToken == "" {
			continue
		}
		targets = append(targets, u.DeviceToken)
	}

	if len(targets) == 0 {
		slog.Info("No push targets for notification job",
			"job_id", job.JobID,
			"kind", job.Kind,
			"recipients", len(job.RecipientIDs),
		)
		s.record(ctx, job, len(targets), pushgateway.SendResult{}, nil)

		return nil
	}

	result, err := s.gateway.Send(ctx, targets, payload)
	if err != nil {
		slog.Error("Push gateway dispatch failed",
			"job_id", job.JobID,
			"kind", job.Kind,
			"targets", len(targets),
			"error", err,
		)
		s.record(ctx, job, len(targets), pushgateway.SendResult{}, err)

		return nil
	}

	slog.Info("Notification job dispatched",
		"job_id", job.JobID,
		"kind", job.Kind,
		"targets", len(targets),
		"provider_message_id", result.ProviderMessageID,
	)
	s.record(ctx, job, len(targets), result, nil)

	return nil
}

func (s *DispatchService) record(
	ctx context.Context,
	job event.Job,
	pushTargets int,
	result pushgateway.SendResult,
	sendErr error,
) {
	if s.chLog == nil {
		return
	}

	row := clickhouse.DispatchLog{
		JobID:             job.JobID,
		Kind:              string(job.Kind),
		ShopID:            job.ShopID,
		RecipientCount:    int32(len(job.RecipientIDs)),
		PushTargets:       int32(pushTargets),
		ProviderMessageID: result.ProviderMessageID,
		Success:           sendErr == nil,
		DispatchedAt:      time.Now(),
	}
	if sendErr != nil {
		row.Error = sendErr.Error()
	}

	if err := s.chLog.InsertDispatchLog(ctx, row); err != nil {
		slog.Warn("Failed to record dispatch result", "job_id", job.JobID, "error", err)
	}
}
