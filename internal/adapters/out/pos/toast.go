package pos

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

const ToastProviderName = "toast"

type ToastConfig struct {
	APIURL       string
	APIKey       string
	RestaurantID string
	Timeout      time.Duration
}

// ToastAdapter speaks the Toast orders API. Toast reports order progress as
// coarse ORDER_* lifecycle events rather than a state field.
type ToastAdapter struct {
	cfg    ToastConfig
	client *http.Client
}

func NewToastAdapter(cfg ToastConfig) (*ToastAdapter, error) {
	if cfg.APIURL == "" {
		return nil, errs.NewValueIsRequiredError("cfg.APIURL")
	}
	if cfg.APIKey == "" {
		return nil, errs.NewValueIsRequiredError("cfg.APIKey")
	}
	if cfg.RestaurantID == "" {
		return nil, errs.NewValueIsRequiredError("cfg.RestaurantID")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultProviderTimeout
	}
	return &ToastAdapter{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

func (a *ToastAdapter) Name() string { return ToastProviderName }

type toastModifier struct {
	ModifierID string `json:"modifierId"`
}

type toastSelection struct {
	ItemID         string          `json:"itemId"`
	Quantity       int             `json:"quantity"`
	Modifiers      []toastModifier `json:"modifiers,omitempty"`
	SpecialRequest string          `json:"specialRequest,omitempty"`
	SelectionType  string          `json:"selectionType"`
	DisplayName    string          `json:"displayName"`
}

type toastCustomer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type toastCheck struct {
	DisplayNumber string           `json:"displayNumber"`
	ExternalID    string           `json:"externalId"`
	Customer      toastCustomer    `json:"customer"`
	Selections    []toastSelection `json:"selections"`
}

type toastDeliveryInfo struct {
	Address struct {
		Address1 string `json:"address1"`
		City     string `json:"city,omitempty"`
		Zip      string `json:"zip,omitempty"`
	} `json:"address"`
	DeliveryNotes string `json:"deliveryNotes,omitempty"`
}

type toastCreateOrderRequest struct {
	Checks       []toastCheck       `json:"checks"`
	DeliveryInfo *toastDeliveryInfo `json:"deliveryInfo,omitempty"`
}

type toastOrderResponse struct {
	GUID       string `json:"guid"`
	EntityType string `json:"entityType"`
	ExternalID string `json:"externalId"`
}

func (a *ToastAdapter) CreateOrder(ctx context.Context, o *order.Order) (string, error) {
	items := o.Items()
	selections := make([]toastSelection, 0, len(items))
	for _, item := range items {
		sel := toastSelection{
			ItemID:         item.SKU,
			Quantity:       item.Quantity,
			SpecialRequest: item.Note,
			SelectionType:  "NONE",
			DisplayName:    item.Name,
		}
		for _, m := range item.Modifiers {
			sel.Modifiers = append(sel.Modifiers, toastModifier{ModifierID: m.ID})
		}
		selections = append(selections, sel)
	}

	// externalId is Toast's dedupe handle: a resubmitted order with the
	// same id answers with the already-created check.
	req := toastCreateOrderRequest{
		Checks: []toastCheck{{
			DisplayNumber: o.ID().String(),
			ExternalID:    o.ID().String(),
			Customer: toastCustomer{
				Name:  o.Customer().Name,
				Phone: o.Customer().Phone,
				Email: o.Customer().Email,
			},
			Selections: selections,
		}},
	}
	if addr := o.DeliveryAddress(); addr != nil {
		info := &toastDeliveryInfo{DeliveryNotes: addr.Instructions}
		info.Address.Address1 = addr.Street
		info.Address.City = addr.City
		info.Address.Zip = addr.Zip
		req.DeliveryInfo = info
	}

	var resp toastOrderResponse
	if err := doJSON(ctx, a.client, http.MethodPost, a.cfg.APIURL+"/orders", a.headers(), req, &resp); err != nil {
		return "", fmt.Errorf("toast create order: %w", err)
	}
	if resp.GUID == "" {
		return "", fmt.Errorf("toast create order: response carries no guid")
	}
	return resp.GUID, nil
}

type toastUpdateOrderRequest struct {
	RequiredPrepTime string `json:"requiredPrepTime,omitempty"`
	Note             string `json:"note,omitempty"`
}

func (a *ToastAdapter) UpdateOrder(ctx context.Context, externalOrderID string, patch ports.OrderPatch) error {
	req := toastUpdateOrderRequest{Note: patch.Note}
	if patch.ReadyAt != nil {
		req.RequiredPrepTime = patch.ReadyAt.UTC().Format(time.RFC3339)
	}

	url := a.cfg.APIURL + "/orders/" + externalOrderID
	if err := doJSON(ctx, a.client, http.MethodPatch, url, a.headers(), req, nil); err != nil {
		return fmt.Errorf("toast update order %s: %w", externalOrderID, err)
	}
	return nil
}

type toastWebhookPayload struct {
	EventType      string `json:"eventType"`
	GUID           string `json:"guid"`
	RestaurantGUID string `json:"restaurantGuid"`
	CheckGUID      string `json:"checkGuid"`
	BusinessDate   string `json:"businessDate"`
}

func (a *ToastAdapter) ParseWebhook(payload []byte) (ports.WebhookEvent, error) {
	var raw toastWebhookPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return ports.WebhookEvent{}, fmt.Errorf("parse toast webhook: %w", ports.ErrMalformedWebhook)
	}

	event := ports.WebhookEvent{
		ProviderEventType: raw.EventType,
		ExternalID:        raw.GUID,
	}
	event.MappedStatus = a.MapToOrderStatus(event)
	return event, nil
}

func (a *ToastAdapter) MapToOrderStatus(event ports.WebhookEvent) order.Status {
	switch event.ProviderEventType {
	case "ORDER_CREATED":
		return order.StatusAccepted
	case "ORDER_MODIFIED":
		return order.StatusInKitchen
	case "ORDER_READY":
		return order.StatusReady
	case "ORDER_COMPLETED":
		return order.StatusDelivered
	default:
		return order.StatusUnknown
	}
}

func (a *ToastAdapter) headers() map[string]string {
	return map[string]string{
		"Authorization":                "Bearer " + a.cfg.APIKey,
		"Toast-Restaurant-External-ID": a.cfg.RestaurantID,
	}
}
