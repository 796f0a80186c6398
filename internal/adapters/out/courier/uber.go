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

const UberProviderName = "uber"

type UberConfig struct {
	APIURL      string
	CustomerID  string
	AccessToken string
	Timeout     time.Duration
}

// UberAdapter speaks the Uber Direct API. Uber assigns its own delivery id,
// so idempotency rides on the idempotency_key field instead of the resource
// id.
type UberAdapter struct {
	cfg    UberConfig
	client *http.Client
}

func NewUberAdapter(cfg UberConfig) (*UberAdapter, error) {
	if cfg.APIURL == "" {
		return nil, errs.NewValueIsRequiredError("cfg.APIURL")
	}
	if cfg.CustomerID == "" {
		return nil, errs.NewValueIsRequiredError("cfg.CustomerID")
	}
	if cfg.AccessToken == "" {
		return nil, errs.NewValueIsRequiredError("cfg.AccessToken")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultProviderTimeout
	}
	return &UberAdapter{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

func (a *UberAdapter) Name() string { return UberProviderName }

type uberQuoteRequest struct {
	PickupAddress  string `json:"pickup_address"`
	DropoffAddress string `json:"dropoff_address"`
}

type uberQuoteResponse struct {
	ID        string `json:"id"`
	Fee       int64  `json:"fee"`
	PickupETA int    `json:"pickup_eta"`
}

func (a *UberAdapter) QuoteDelivery(ctx context.Context, pickupAddress, dropoffAddress string) (ports.DeliveryQuote, error) {
	req := uberQuoteRequest{PickupAddress: pickupAddress, DropoffAddress: dropoffAddress}

	url := a.customerURL("/delivery_quotes")
	var resp uberQuoteResponse
	if err := doJSON(ctx, a.client, http.MethodPost, url, a.headers(), req, &resp); err != nil {
		return ports.DeliveryQuote{}, fmt.Errorf("uber quote: %w", err)
	}

	eta := resp.PickupETA
	if eta <= 0 {
		eta = 15
	}
	return ports.DeliveryQuote{FeeCents: resp.Fee, ETAMinutes: eta}, nil
}

type uberWaypoint struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Notes       string `json:"notes,omitempty"`
}

type uberManifestItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
}

type uberDeliveryRequest struct {
	IdempotencyKey string             `json:"idempotency_key"`
	Pickup         uberWaypoint       `json:"pickup"`
	Dropoff        uberWaypoint       `json:"dropoff"`
	ManifestItems  []uberManifestItem `json:"manifest_items"`
}

type uberDeliveryResponse struct {
	ID          string `json:"id"`
	TrackingURL string `json:"tracking_url"`
}

func (a *UberAdapter) RequestDelivery(ctx context.Context, o *order.Order, restaurant ports.RestaurantInfo) (ports.CourierJob, error) {
	addr := o.DeliveryAddress()
	if addr == nil {
		return ports.CourierJob{}, errs.NewValueIsRequiredError("delivery address")
	}

	req := uberDeliveryRequest{
		IdempotencyKey: o.ID().String(),
		Pickup: uberWaypoint{
			Name:        restaurant.Name,
			PhoneNumber: restaurant.Phone,
			Address:     restaurant.Address,
			Notes:       "Restaurant pickup",
		},
		Dropoff: uberWaypoint{
			Name:        o.Customer().Name,
			PhoneNumber: o.Customer().Phone,
			Address:     addr.Street,
			Notes:       addr.Instructions,
		},
		ManifestItems: []uberManifestItem{{
			Name:     "Restaurant Order",
			Quantity: len(o.Items()),
			Size:     "medium",
		}},
	}

	url := a.customerURL("/deliveries")
	var resp uberDeliveryResponse
	if err := doJSON(ctx, a.client, http.MethodPost, url, a.headers(), req, &resp); err != nil {
		return ports.CourierJob{}, fmt.Errorf("uber request delivery: %w", err)
	}
	if resp.ID == "" {
		return ports.CourierJob{}, fmt.Errorf("uber request delivery: response carries no delivery id")
	}
	return ports.CourierJob{JobID: resp.ID, TrackingURL: resp.TrackingURL}, nil
}

type uberUpdateRequest struct {
	Pickup struct {
		ReadyDt string `json:"ready_dt"`
	} `json:"pickup"`
}

// UpdateOrder moves the pickup window when the kitchen's ready estimate
// shifts.
func (a *UberAdapter) UpdateOrder(ctx context.Context, jobID string, patch ports.OrderPatch) error {
	if patch.ReadyAt == nil {
		return nil
	}
	var req uberUpdateRequest
	req.Pickup.ReadyDt = patch.ReadyAt.UTC().Format(time.RFC3339)

	url := a.customerURL("/deliveries/" + jobID)
	if err := doJSON(ctx, a.client, http.MethodPatch, url, a.headers(), req, nil); err != nil {
		return fmt.Errorf("uber update delivery %s: %w", jobID, err)
	}
	return nil
}

type uberWebhookPayload struct {
	EventType  string `json:"event_type"`
	DeliveryID string `json:"delivery_id"`
	Courier    struct {
		Name        string `json:"name"`
		PhoneNumber string `json:"phone_number"`
	} `json:"courier"`
}

func (a *UberAdapter) ParseWebhook(payload []byte) (ports.WebhookEvent, error) {
	var raw uberWebhookPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return ports.WebhookEvent{}, fmt.Errorf("parse uber webhook: %w", ports.ErrMalformedWebhook)
	}

	event := ports.WebhookEvent{
		ProviderEventType: raw.EventType,
		ExternalID:        raw.DeliveryID,
	}
	event.MappedStatus = a.MapToOrderStatus(event)
	return event, nil
}

func (a *UberAdapter) MapToOrderStatus(event ports.WebhookEvent) order.Status {
	switch event.ProviderEventType {
	case "delivery.created":
		return order.StatusCourierRequested
	case "delivery.assigned":
		return order.StatusDriverEnRoute
	case "delivery.picked_up":
		return order.StatusPickedUp
	case "delivery.delivered":
		return order.StatusDelivered
	case "delivery.failed":
		return order.StatusFailed
	default:
		return order.StatusUnknown
	}
}

func (a *UberAdapter) customerURL(path string) string {
	return a.cfg.APIURL + "/" + a.cfg.CustomerID + path
}

func (a *UberAdapter) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + a.cfg.AccessToken,
	}
}
