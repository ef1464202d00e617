package order_test

import (
	"testing"

	"github.com/corray333/shopline/notify/internal/service/models/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    order.Status
		to      order.Status
		allowed bool
	}{
		{"pending to confirmed", order.StatusPending, order.StatusConfirmed, true},
		{"pending to rejected", order.StatusPending, order.StatusRejected, true},
		{"pending to cancelled", order.StatusPending, order.StatusCancelled, true},
		{"pending to preparing", order.StatusPending, order.StatusPreparing, false},
		{"pending to completed", order.StatusPending, order.StatusCompleted, false},
		{"confirmed to preparing", order.StatusConfirmed, order.StatusPreparing, true},
		{"confirmed skips straight to completed", order.StatusConfirmed, order.StatusCompleted, true},
		{"confirmed to ready", order.StatusConfirmed, order.StatusReady, true},
		{"confirmed back to pending", order.StatusConfirmed, order.StatusPending, false},
		{"preparing to ready", order.StatusPreparing, order.StatusReady, true},
		{"preparing to completed", order.StatusPreparing, order.StatusCompleted, true},
		{"preparing back to confirmed", order.StatusPreparing, order.StatusConfirmed, false},
		{"ready to completed", order.StatusReady, order.StatusCompleted, true},
		{"ready to cancelled", order.StatusReady, order.StatusCancelled, true},
		{"completed to confirmed", order.StatusCompleted, order.StatusConfirmed, false},
		{"completed to cancelled", order.StatusCompleted, order.StatusCancelled, false},
		{"rejected to confirmed", order.StatusRejected, order.StatusConfirmed, false},
		{"cancelled to pending", order.StatusCancelled, order.StatusPending, false},
		{"same status is not a transition", order.StatusConfirmed, order.StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, order.StatusPending.IsTerminal())
	assert.False(t, order.StatusConfirmed.IsTerminal())
	assert.False(t, order.StatusPreparing.IsTerminal())
	assert.False(t, order.StatusReady.IsTerminal())

	assert.True(t, order.StatusCompleted.IsTerminal())
	assert.True(t, order.StatusRejected.IsTerminal())
	assert.True(t, order.StatusCancelled.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{
		"pending", "confirmed", "preparing", "ready", "completed", "rejected", "cancelled",
	} {
		status, err := order.ParseStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, order.Status(raw), status)
	}

	_, err := order.ParseStatus("shipped")
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	_, err = order.ParseStatus("")
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	_, err = order.ParseStatus("Confirmed")
	assert.ErrorIs(t, err, order.ErrInvalidStatus)
}

func TestParseType(t *testing.T) {
	typ, err := order.ParseType("pickup")
	require.NoError(t, err)
	assert.Equal(t, order.TypePickup, typ)

	typ, err = order.ParseType("delivery")
	require.NoError(t, err)
	assert.Equal(t, order.TypeDelivery, typ)

	_, err = order.ParseType("drone")
	assert.ErrorIs(t, err, order.ErrInvalidType)
}

func TestQueryTerminalOnly(t *testing.T) {
	filter := order.QueryOrdersModel{
		CustomerIds: []int64{7},
		Statuses:    []order.Status{order.StatusPending},
	}

	narrowed := filter.TerminalOnly()

	assert.ElementsMatch(t,
		[]order.Status{order.StatusCompleted, order.StatusRejected, order.StatusCancelled},
		narrowed.Statuses,
	)
	assert.Equal(t, []int64{7}, narrowed.CustomerIds)
	// The original filter is untouched.
	assert.Equal(t, []order.Status{order.StatusPending}, filter.Statuses)
}
