package order_test

import (
	"testing"

	"ordering/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanAdvanceTo_ForwardProgress(t *testing.T) {
	t.Run("delivery track accepts strictly later statuses", func(t *testing.T) {
		track := []order.Status{
			order.StatusCreated,
			order.StatusAccepted,
			order.StatusInKitchen,
			order.StatusReady,
			order.StatusCourierRequested,
			order.StatusDriverEnRoute,
			order.StatusPickedUp,
			order.StatusDelivered,
		}

		for i, cur := range track[:len(track)-1] {
			for _, next := range track[i+1:] {
				assert.NoError(t, cur.CanAdvanceTo(next, order.FulfillmentDelivery),
					"%s -> %s must be allowed", cur, next)
			}
		}
	})

	t.Run("skipping intermediate statuses is allowed", func(t *testing.T) {
		// A provider may deliver only the terminal event.
		err := order.StatusCreated.CanAdvanceTo(order.StatusDelivered, order.FulfillmentDelivery)
		assert.NoError(t, err)
	})

	t.Run("pickup track ends at ready", func(t *testing.T) {
		err := order.StatusReady.CanAdvanceTo(order.StatusCourierRequested, order.FulfillmentPickup)
		require.Error(t, err)
		assert.ErrorIs(t, err, order.ErrStaleTransition)
	})
}

func TestStatus_CanAdvanceTo_StaleAndDuplicate(t *testing.T) {
	cases := []struct {
		name        string
		cur         order.Status
		next        order.Status
		fulfillment order.Fulfillment
	}{
		{"earlier status is stale", order.StatusReady, order.StatusInKitchen, order.FulfillmentDelivery},
		{"same status is a duplicate", order.StatusInKitchen, order.StatusInKitchen, order.FulfillmentDelivery},
		{"unknown is never applied", order.StatusAccepted, order.StatusUnknown, order.FulfillmentDelivery},
		{"courier status off pickup track", order.StatusInKitchen, order.StatusDriverEnRoute, order.FulfillmentPickup},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cur.CanAdvanceTo(tc.next, tc.fulfillment)
			require.Error(t, err)
			assert.ErrorIs(t, err, order.ErrStaleTransition)
		})
	}
}

func TestStatus_CanAdvanceTo_Exceptions(t *testing.T) {
	t.Run("exception statuses interrupt any non-terminal status", func(t *testing.T) {
		for _, cur := range []order.Status{
			order.StatusCreated, order.StatusAccepted, order.StatusInKitchen,
			order.StatusReady, order.StatusCourierRequested, order.StatusPickedUp,
		} {
			for _, exc := range []order.Status{
				order.StatusRejected, order.StatusCanceled, order.StatusFailed,
			} {
				assert.NoError(t, cur.CanAdvanceTo(exc, order.FulfillmentDelivery),
					"%s -> %s must be allowed", cur, exc)
			}
		}
	})

	t.Run("terminal statuses accept nothing", func(t *testing.T) {
		for _, cur := range []order.Status{
			order.StatusDelivered, order.StatusRejected, order.StatusCanceled, order.StatusFailed,
		} {
			err := cur.CanAdvanceTo(order.StatusCanceled, order.FulfillmentDelivery)
			require.Error(t, err, "from %s", cur)
			assert.ErrorIs(t, err, order.ErrTerminalStatus)
		}
	})
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, order.StatusDelivered.IsTerminal())
	assert.True(t, order.StatusRejected.IsTerminal())
	assert.True(t, order.StatusCanceled.IsTerminal())
	assert.True(t, order.StatusFailed.IsTerminal())

	// Ready ends the pickup forward track but still admits exceptions.
	assert.False(t, order.StatusReady.IsTerminal())
	assert.False(t, order.StatusCreated.IsTerminal())
}

func TestStatus_Validate(t *testing.T) {
	for _, s := range []order.Status{
		order.StatusCreated, order.StatusDelivered, order.StatusCanceled,
	} {
		assert.NoError(t, s.Validate())
	}

	assert.Error(t, order.StatusUnknown.Validate())
	assert.Error(t, order.Status("shipped").Validate())
}
