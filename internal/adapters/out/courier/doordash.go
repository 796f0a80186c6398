package courier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
)

const DoorDashProviderName = "doordash"

type DoorDashConfig struct {
	APIURL      string
	AccessToken string
	Timeout     time.Duration
}

// DoorDashAdapter speaks the DoorDash Drive API. Drive keys every delivery
// by the caller-chosen external_delivery_id, which doubles as our
// idempotency key and the job id recorded on the order.
type DoorDashAdapter struct {
	cfg    DoorDashConfig
	client *http.Client
}

func NewDoorDashAdapter(cfg DoorDashConfig) (*DoorDashAdapter, error) {
	if cfg.APIURL == "" {
		return nil, errs.NewValueIsRequiredError("cfg.APIURL")
	}
	if cfg.AccessToken == "" {
		return nil, errs.NewValueIsRequiredError("cfg.AccessToken")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultProviderTimeout
	}
	return &DoorDashAdapter{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

func (a *DoorDashAdapter) Name() string { return DoorDashProviderName }

type doordashQuoteRequest struct {
	ExternalDeliveryID string `json:"external_delivery_id"`
	PickupAddress      string `json:"pickup_address"`
	DropoffAddress     string `json:"dropoff_address"`
}

type doordashQuoteResponse struct {
	ExternalDeliveryID         string `json:"external_delivery_id"`
	Fee                        int64  `json:"fee"`
	EstimatedPickupTimeMinutes int    `json:"estimated_pickup_time_minutes"`
}

func (a *DoorDashAdapter) QuoteDelivery(ctx context.Context, pickupAddress, dropoffAddress string) (ports.DeliveryQuote, error) {
	req := doordashQuoteRequest{
		ExternalDeliveryID: fmt.Sprintf("quote-%d", time.Now().UnixNano()),
		PickupAddress:      pickupAddress,
		DropoffAddress:     dropoffAddress,
	}

	var resp doordashQuoteResponse
	if err := doJSON(ctx, a.client, http.MethodPost, a.cfg.APIURL+"/quotes", a.headers(), req, &resp); err != nil {
		return ports.DeliveryQuote{}, fmt.Errorf("doordash quote: %w", err)
	}

	eta := resp.EstimatedPickupTimeMinutes
	if eta <= 0 {
		eta = 15
	}
	return ports.DeliveryQuote{FeeCents: resp.Fee, ETAMinutes: eta}, nil
}

type doordashDeliveryRequest struct {
	ExternalDeliveryID  string `json:"external_delivery_id"`
	PickupAddress       string `json:"pickup_address"`
	PickupBusinessName  string `json:"pickup_business_name"`
	PickupPhoneNumber   string `json:"pickup_phone_number"`
	PickupInstructions  string `json:"pickup_instructions,omitempty"`
	DropoffAddress      string `json:"dropoff_address"`
	DropoffBusinessName string `json:"dropoff_business_name"`
	DropoffPhoneNumber  string `json:"dropoff_phone_number"`
	DropoffInstructions string `json:"dropoff_instructions,omitempty"`
	OrderValue          int64  `json:"order_value"`
	PickupTime          string `json:"pickup_time,omitempty"`
}

type doordashDeliveryResponse struct {
	ExternalDeliveryID string `json:"external_delivery_id"`
	TrackingURL        string `json:"tracking_url"`
}

func (a *DoorDashAdapter) RequestDelivery(ctx context.Context, o *order.Order, restaurant ports.RestaurantInfo) (ports.CourierJob, error) {
	addr := o.DeliveryAddress()
	if addr == nil {
		return ports.CourierJob{}, errs.NewValueIsRequiredError("delivery address")
	}

	req := doordashDeliveryRequest{
		ExternalDeliveryID:  o.ID().String(),
		PickupAddress:       restaurant.Address,
		PickupBusinessName:  restaurant.Name,
		PickupPhoneNumber:   restaurant.Phone,
		PickupInstructions:  "Call upon arrival",
		DropoffAddress:      addr.Street,
		DropoffBusinessName: o.Customer().Name,
		DropoffPhoneNumber:  o.Customer().Phone,
		DropoffInstructions: addr.Instructions,
		OrderValue:          o.Totals().GrandTotalCents,
	}
	if ready, ok := o.StatusEnteredAt(order.StatusReady); ok {
		req.PickupTime = ready.UTC().Format(time.RFC3339)
	}

	var resp doordashDeliveryResponse
	if err := doJSON(ctx, a.client, http.MethodPost, a.cfg.APIURL+"/deliveries", a.headers(), req, &resp); err != nil {
		return ports.CourierJob{}, fmt.Errorf("doordash request delivery: %w", err)
	}
	if resp.ExternalDeliveryID == "" {
		return ports.CourierJob{}, fmt.Errorf("doordash request delivery: response carries no delivery id")
	}
	return ports.CourierJob{JobID: resp.ExternalDeliveryID, TrackingURL: resp.TrackingURL}, nil
}

// UpdateOrder signals the kitchen-ready moment to Drive so the dasher is not
// dispatched against a stale prep estimate.
func (a *DoorDashAdapter) UpdateOrder(ctx context.Context, jobID string, patch ports.OrderPatch) error {
	if patch.ReadyAt == nil {
		return nil
	}
	url := a.cfg.APIURL + "/deliveries/" + jobID + "/ready"
	if err := doJSON(ctx, a.client, http.MethodPost, url, a.headers(), nil, nil); err != nil {
		return fmt.Errorf("doordash ready signal for %s: %w", jobID, err)
	}
	return nil
}

type doordashWebhookPayload struct {
	EventType          string `json:"event_type"`
	ExternalDeliveryID string `json:"external_delivery_id"`
	Dasher             struct {
		Name        string `json:"name"`
		PhoneNumber string `json:"phone_number"`
	} `json:"dasher"`
}

func (a *DoorDashAdapter) ParseWebhook(payload []byte) (ports.WebhookEvent, error) {
	var raw doordashWebhookPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return ports.WebhookEvent{}, fmt.Errorf("parse doordash webhook: %w", ports.ErrMalformedWebhook)
	}

	event := ports.WebhookEvent{
		ProviderEventType: raw.EventType,
		ExternalID:        raw.ExternalDeliveryID,
	}
	event.MappedStatus = a.MapToOrderStatus(event)
	return event, nil
}

func (a *DoorDashAdapter) MapToOrderStatus(event ports.WebhookEvent) order.Status {
	switch event.ProviderEventType {
	case "delivery_created":
		return order.StatusCourierRequested
	case "dasher_confirmed":
		return order.StatusDriverEnRoute
	case "dasher_picked_up":
		return order.StatusPickedUp
	case "delivery_delivered":
		return order.StatusDelivered
	case "delivery_cancelled":
		return order.StatusFailed
	default:
		return order.StatusUnknown
	}
}

func (a *DoorDashAdapter) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + a.cfg.AccessToken,
	}
}
