package courier_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ordering/internal/adapters/out/courier"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRestaurant = ports.RestaurantInfo{
	Name:    "Shahirizada Meat Market",
	Phone:   "+16305551234",
	Address: "840 N Route 59, Naperville, IL 60563",
}

func readyDeliveryOrder(t *testing.T) *order.Order {
	t.Helper()
	placed := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	o, err := order.NewOrder(
		kernel.NewUUID(),
		order.FulfillmentDelivery,
		order.Customer{Name: "Amina", Phone: "+16305550100"},
		&order.Address{Street: "12 Elm St", Instructions: "ring bell", DistanceTenthsKm: 34},
		[]order.CartLine{{SKU: "naan", Name: "Naan", UnitPriceCents: 300, Quantity: 2}},
		order.Totals{SubtotalCents: 600, TaxCents: 53, DeliveryFeeCents: 499, GrandTotalCents: 1152},
		placed,
	)
	require.NoError(t, err)
	for _, next := range []order.Status{order.StatusAccepted, order.StatusInKitchen, order.StatusReady} {
		require.NoError(t, o.ApplyStatus(next, placed.Add(10*time.Minute)))
	}
	return o
}

func newDoorDashAdapter(t *testing.T, apiURL string) *courier.DoorDashAdapter {
	t.Helper()
	adapter, err := courier.NewDoorDashAdapter(courier.DoorDashConfig{
		APIURL:      apiURL,
		AccessToken: "dd-token",
	})
	require.NoError(t, err)
	return adapter
}

func TestDoorDashAdapterRequestDelivery(t *testing.T) {
	o := readyDeliveryOrder(t)

	t.Run("dispatches with order id as delivery id", func(t *testing.T) {
		var captured map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/deliveries", r.URL.Path)
			assert.Equal(t, "Bearer dd-token", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			_, _ = w.Write([]byte(`{"external_delivery_id":"` + o.ID().String() +
				`","tracking_url":"https://doordash.com/track/x"}`))
		}))
		defer server.Close()

		job, err := newDoorDashAdapter(t, server.URL).RequestDelivery(t.Context(), o, testRestaurant)

		require.NoError(t, err)
		assert.Equal(t, o.ID().String(), job.JobID)
		assert.Equal(t, "https://doordash.com/track/x", job.TrackingURL)
		assert.Equal(t, o.ID().String(), captured["external_delivery_id"])
		assert.Equal(t, testRestaurant.Address, captured["pickup_address"])
		assert.Equal(t, "12 Elm St", captured["dropoff_address"])
		assert.Equal(t, float64(1152), captured["order_value"])
		assert.NotEmpty(t, captured["pickup_time"])
	})

	t.Run("provider failure propagates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"code":"validation_error"}`, http.StatusBadRequest)
		}))
		defer server.Close()

		_, err := newDoorDashAdapter(t, server.URL).RequestDelivery(t.Context(), o, testRestaurant)

		assert.Error(t, err)
	})

	t.Run("quote returns fee and eta", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/quotes", r.URL.Path)
			_, _ = w.Write([]byte(`{"external_delivery_id":"q1","fee":499,"estimated_pickup_time_minutes":12}`))
		}))
		defer server.Close()

		quote, err := newDoorDashAdapter(t, server.URL).QuoteDelivery(t.Context(), testRestaurant.Address, "12 Elm St")

		require.NoError(t, err)
		assert.Equal(t, int64(499), quote.FeeCents)
		assert.Equal(t, 12, quote.ETAMinutes)
	})

	t.Run("ready signal hits the ready endpoint", func(t *testing.T) {
		var path string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		ready := time.Now()
		err := newDoorDashAdapter(t, server.URL).UpdateOrder(t.Context(), "DD-1", ports.OrderPatch{ReadyAt: &ready})

		require.NoError(t, err)
		assert.Equal(t, "/deliveries/DD-1/ready", path)
	})
}

func TestDoorDashAdapterWebhook(t *testing.T) {
	adapter := newDoorDashAdapter(t, "https://openapi.doordash.com/drive/v2")

	tests := map[string]order.Status{
		"delivery_created":   order.StatusCourierRequested,
		"dasher_confirmed":   order.StatusDriverEnRoute,
		"dasher_picked_up":   order.StatusPickedUp,
		"delivery_delivered": order.StatusDelivered,
		"delivery_cancelled": order.StatusFailed,
		"dasher_location":    order.StatusUnknown,
	}
	for eventType, want := range tests {
		payload := []byte(`{"event_type":"` + eventType + `","external_delivery_id":"DD-1",` +
			`"dasher":{"name":"Ray","phone_number":"+13125550000"}}`)

		event, err := adapter.ParseWebhook(payload)

		require.NoError(t, err, eventType)
		assert.Equal(t, "DD-1", event.ExternalID, eventType)
		assert.Equal(t, want, event.MappedStatus, eventType)
	}

	_, err := adapter.ParseWebhook([]byte(`{"event_type"`))
	assert.ErrorIs(t, err, ports.ErrMalformedWebhook)
}

func newUberAdapter(t *testing.T, apiURL string) *courier.UberAdapter {
	t.Helper()
	adapter, err := courier.NewUberAdapter(courier.UberConfig{
		APIURL:      apiURL,
		CustomerID:  "cust-1",
		AccessToken: "uber-token",
	})
	require.NoError(t, err)
	return adapter
}

func TestUberAdapterRequestDelivery(t *testing.T) {
	o := readyDeliveryOrder(t)

	t.Run("dispatches with idempotency key", func(t *testing.T) {
		var captured map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/cust-1/deliveries", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			_, _ = w.Write([]byte(`{"id":"UBER-7","tracking_url":"https://uber.com/track/y"}`))
		}))
		defer server.Close()

		job, err := newUberAdapter(t, server.URL).RequestDelivery(t.Context(), o, testRestaurant)

		require.NoError(t, err)
		assert.Equal(t, "UBER-7", job.JobID)
		assert.Equal(t, o.ID().String(), captured["idempotency_key"])
		dropoff := captured["dropoff"].(map[string]any)
		assert.Equal(t, "12 Elm St", dropoff["address"])
		assert.Equal(t, "ring bell", dropoff["notes"])
	})

	t.Run("pickup window update patches the delivery", func(t *testing.T) {
		var method, path string
		var captured map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method, path = r.Method, r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		ready := time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)
		err := newUberAdapter(t, server.URL).UpdateOrder(t.Context(), "UBER-7", ports.OrderPatch{ReadyAt: &ready})

		require.NoError(t, err)
		assert.Equal(t, http.MethodPatch, method)
		assert.Equal(t, "/cust-1/deliveries/UBER-7", path)
		pickup := captured["pickup"].(map[string]any)
		assert.Equal(t, "2025-03-14T12:30:00Z", pickup["ready_dt"])
	})

	t.Run("no-op patch skips the call", func(t *testing.T) {
		err := newUberAdapter(t, "http://127.0.0.1:1").UpdateOrder(t.Context(), "UBER-7", ports.OrderPatch{})

		assert.NoError(t, err)
	})
}

func TestUberAdapterWebhook(t *testing.T) {
	adapter := newUberAdapter(t, "https://api.uber.com/v1/customers")

	tests := map[string]order.Status{
		"delivery.created":   order.StatusCourierRequested,
		"delivery.assigned":  order.StatusDriverEnRoute,
		"delivery.picked_up": order.StatusPickedUp,
		"delivery.delivered": order.StatusDelivered,
		"delivery.failed":    order.StatusFailed,
		"courier.moved":      order.StatusUnknown,
	}
	for eventType, want := range tests {
		payload := []byte(`{"event_type":"` + eventType + `","delivery_id":"UBER-7"}`)

		event, err := adapter.ParseWebhook(payload)

		require.NoError(t, err, eventType)
		assert.Equal(t, "UBER-7", event.ExternalID, eventType)
		assert.Equal(t, want, event.MappedStatus, eventType)
	}
}

func TestCourierRegistry(t *testing.T) {
	doordash := newDoorDashAdapter(t, "https://openapi.doordash.com/drive/v2")
	uber := newUberAdapter(t, "https://api.uber.com/v1/customers")

	registry, err := courier.NewRegistry(doordash, uber)
	require.NoError(t, err)

	adapter, err := registry.Get("uber")
	require.NoError(t, err)
	assert.Equal(t, "uber", adapter.Name())
	assert.Equal(t, []string{"doordash", "uber"}, registry.Names())

	_, err = registry.Get("grubhub")
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}
