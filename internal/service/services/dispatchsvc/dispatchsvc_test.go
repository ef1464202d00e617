package dispatchsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/corray333/shopline/notify/internal/dal/clickhouse"
	"github.com/corray333/shopline/notify/internal/dal/pushgateway"
	"github.com/corray333/shopline/notify/internal/service/models/event"
	"github.com/corray333/shopline/notify/internal/service/models/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	sent [][]string
	err  error
}

func (g *fakeGateway) Send(_ context.Context, targets []string, _ event.Payload) (pushgateway.SendResult, error) {
	g.sent = append(g.sent, targets)
	if g.err != nil {
		return pushgateway.SendResult{}, g.err
	}

	return pushgateway.SendResult{RecipientCount: len(targets), ProviderMessageID: "pm-1"}, nil
}

type fakeUsers struct {
	users []user.User
}

func (u *fakeUsers) ListByIDs(context.Context, []int64) ([]user.User, error) {
	return u.users, nil
}

type fakeLog struct {
	rows []clickhouse.DispatchLog
}

func (l *fakeLog) InsertDispatchLog(_ context.Context, row clickhouse.DispatchLog) error {
	l.rows = append(l.rows, row)

	return nil
}

func newTestService(g *fakeGateway, u *fakeUsers, l *fakeLog) *DispatchService {
	svc := MustNewDispatchService(
		WithGateway(g),
		WithUserLister(u),
	)
	if l != nil {
		svc.chLog = l
	}

	return svc
}

func TestDispatchSendsToTokenHolders(t *testing.T) {
	gw := &fakeGateway{}
	users := &fakeUsers{users: []user.User{
		{ID: 1, DeviceToken: "tok-1"},
		{ID: 2, DeviceToken: "tok-2"},
	}}
	chLog := &fakeLog{}
	svc := newTestService(gw, users, chLog)

	err := svc.Dispatch(context.Background(), event.Job{
		JobID:        "j1",
		Kind:         event.KindOrderConfirmed,
		RecipientIDs: []int64{1, 2},
		OrderID:      5,
	})
	require.NoError(t, err)

	require.Len(t, gw.sent, 1)
	assert.ElementsMatch(t, []string{"tok-1", "tok-2"}, gw.sent[0])

	require.Len(t, chLog.rows, 1)
	assert.True(t, chLog.rows[0].Success)
	assert.Equal(t, "pm-1", chLog.rows[0].ProviderMessageID)
}

func TestDispatchSkipsRecipientsWithoutToken(t *testing.T) {
	gw := &fakeGateway{}
	users := &fakeUsers{users: []user.User{
		{ID: 1, DeviceToken: "tok-1"},
		{ID: 2},
	}}
	svc := newTestService(gw, users, nil)

	err := svc.Dispatch(context.Background(), event.Job{
		Kind:         event.KindOrderCompleted,
		RecipientIDs: []int64{1, 2},
	})
	require.NoError(t, err)

	require.Len(t, gw.sent, 1)
	assert.Equal(t, []string{"tok-1"}, gw.sent[0])
}

func TestDispatchNoTargetsSkipsGateway(t *testing.T) {
	gw := &fakeGateway{}
	users := &fakeUsers{users: []user.User{{ID: 1}, {ID: 2}}}
	svc := newTestService(gw, users, nil)

	err := svc.Dispatch(context.Background(), event.Job{
		Kind:         event.KindAdvertisement,
		RecipientIDs: []int64{1, 2},
		Message:      "sale",
	})
	require.NoError(t, err)
	assert.Empty(t, gw.sent)
}

func TestDispatchSwallowsGatewayFailure(t *testing.T) {
	gw := &fakeGateway{err: errors.New("provider down")}
	users := &fakeUsers{users: []user.User{{ID: 1, DeviceToken: "tok-1"}}}
	chLog := &fakeLog{}
	svc := newTestService(gw, users, chLog)

	err := svc.Dispatch(context.Background(), event.Job{
		Kind:         event.KindOrderRejected,
		RecipientIDs: []int64{1},
	})
	assert.NoError(t, err)

	require.Len(t, chLog.rows, 1)
	assert.False(t, chLog.rows[0].Success)
	assert.Contains(t, chLog.rows[0].Error, "provider down")
}

func TestDispatchUnknownKindIsAnError(t *testing.T) {
	gw := &fakeGateway{}
	users := &fakeUsers{}
	svc := newTestService(gw, users, nil)

	err := svc.Dispatch(context.Background(), event.Job{Kind: "order_shipped"})
	assert.ErrorIs(t, err, event.ErrUnknownKind)
	assert.Empty(t, gw.sent)
}
