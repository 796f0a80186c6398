package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
)

const SquareProviderName = "square"

const squareAPIVersion = "2024-01-18"

type SquareConfig struct {
	APIURL      string
	AccessToken string
	LocationID  string
	Timeout     time.Duration
}

// SquareAdapter speaks the Square Orders API. Order status flows back
// through order_updated webhooks carrying the order state.
type SquareAdapter struct {
	cfg    SquareConfig
	client *http.Client
}

func NewSquareAdapter(cfg SquareConfig) (*SquareAdapter, error) {
	if cfg.APIURL == "" {
		return nil, errs.NewValueIsRequiredError("cfg.APIURL")
	}
	if cfg.AccessToken == "" {
		return nil, errs.NewValueIsRequiredError("cfg.AccessToken")
	}
	if cfg.LocationID == "" {
		return nil, errs.NewValueIsRequiredError("cfg.LocationID")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultProviderTimeout
	}
	return &SquareAdapter{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

func (a *SquareAdapter) Name() string { return SquareProviderName }

type squareModifier struct {
	CatalogObjectID string `json:"catalog_object_id"`
}

type squareLineItem struct {
	Quantity        string           `json:"quantity"`
	CatalogObjectID string           `json:"catalog_object_id"`
	Modifiers       []squareModifier `json:"modifiers,omitempty"`
	Note            string           `json:"note,omitempty"`
}

type squareRecipient struct {
	DisplayName  string `json:"display_name"`
	PhoneNumber  string `json:"phone_number"`
	EmailAddress string `json:"email_address,omitempty"`
}

type squarePickupDetails struct {
	Recipient    squareRecipient `json:"recipient"`
	ScheduleType string          `json:"schedule_type"`
}

type squareAddress struct {
	AddressLine1 string `json:"address_line_1"`
}

type squareDeliveryDetails struct {
	Recipient    squareRecipient `json:"recipient"`
	Address      squareAddress   `json:"address"`
	ScheduleType string          `json:"schedule_type"`
	Note         string          `json:"note,omitempty"`
}

type squareFulfillment struct {
	Type            string                 `json:"type"`
	State           string                 `json:"state"`
	PickupDetails   *squarePickupDetails   `json:"pickup_details,omitempty"`
	DeliveryDetails *squareDeliveryDetails `json:"delivery_details,omitempty"`
}

type squareOrderBody struct {
	LocationID   string              `json:"location_id"`
	LineItems    []squareLineItem    `json:"line_items"`
	Fulfillments []squareFulfillment `json:"fulfillments"`
}

type squareCreateOrderRequest struct {
	IdempotencyKey string          `json:"idempotency_key"`
	Order          squareOrderBody `json:"order"`
}

type squareOrderResponse struct {
	Order struct {
		ID string `json:"id"`
	} `json:"order"`
}

func (a *SquareAdapter) CreateOrder(ctx context.Context, o *order.Order) (string, error) {
	items := o.Items()
	lineItems := make([]squareLineItem, 0, len(items))
	for _, item := range items {
		li := squareLineItem{
			Quantity:        strconv.Itoa(item.Quantity),
			CatalogObjectID: item.SKU,
			Note:            item.Note,
		}
		for _, m := range item.Modifiers {
			li.Modifiers = append(li.Modifiers, squareModifier{CatalogObjectID: m.ID})
		}
		lineItems = append(lineItems, li)
	}

	fulfillment := squareFulfillment{State: "PROPOSED"}
	recipient := squareRecipient{
		DisplayName:  o.Customer().Name,
		PhoneNumber:  o.Customer().Phone,
		EmailAddress: o.Customer().Email,
	}
	if o.Fulfillment() == order.FulfillmentDelivery {
		fulfillment.Type = "DELIVERY"
		details := &squareDeliveryDetails{
			Recipient:    recipient,
			ScheduleType: "ASAP",
		}
		if addr := o.DeliveryAddress(); addr != nil {
			details.Address = squareAddress{AddressLine1: addr.Street}
			details.Note = addr.Instructions
		}
		fulfillment.DeliveryDetails = details
	} else {
		fulfillment.Type = "PICKUP"
		fulfillment.PickupDetails = &squarePickupDetails{
			Recipient:    recipient,
			ScheduleType: "ASAP",
		}
	}

	req := squareCreateOrderRequest{
		IdempotencyKey: o.ID().String(),
		Order: squareOrderBody{
			LocationID:   a.cfg.LocationID,
			LineItems:    lineItems,
			Fulfillments: []squareFulfillment{fulfillment},
		},
	}

	var resp squareOrderResponse
	if err := doJSON(ctx, a.client, http.MethodPost, a.cfg.APIURL+"/orders", a.headers(), req, &resp); err != nil {
		return "", fmt.Errorf("square create order: %w", err)
	}
	if resp.Order.ID == "" {
		return "", fmt.Errorf("square create order: response carries no order id")
	}
	return resp.Order.ID, nil
}

type squareUpdateOrderRequest struct {
	Order struct {
		Fulfillments []squareFulfillmentPatch `json:"fulfillments,omitempty"`
		Note         string                   `json:"note,omitempty"`
	} `json:"order"`
}

type squareFulfillmentPatch struct {
	PickupDetails *struct {
		PickupAt string `json:"pickup_at"`
	} `json:"pickup_details,omitempty"`
}

func (a *SquareAdapter) UpdateOrder(ctx context.Context, externalOrderID string, patch ports.OrderPatch) error {
	var req squareUpdateOrderRequest
	req.Order.Note = patch.Note
	if patch.ReadyAt != nil {
		fp := squareFulfillmentPatch{PickupDetails: &struct {
			PickupAt string `json:"pickup_at"`
		}{PickupAt: patch.ReadyAt.UTC().Format(time.RFC3339)}}
		req.Order.Fulfillments = append(req.Order.Fulfillments, fp)
	}

	url := a.cfg.APIURL + "/orders/" + externalOrderID
	if err := doJSON(ctx, a.client, http.MethodPut, url, a.headers(), req, nil); err != nil {
		return fmt.Errorf("square update order %s: %w", externalOrderID, err)
	}
	return nil
}

type squareWebhookPayload struct {
	Type string `json:"type"`
	Data struct {
		Type   string `json:"type"`
		ID     string `json:"id"`
		Object struct {
			OrderUpdated struct {
				State string `json:"state"`
			} `json:"order_updated"`
		} `json:"object"`
	} `json:"data"`
}

func (a *SquareAdapter) ParseWebhook(payload []byte) (ports.WebhookEvent, error) {
	var raw squareWebhookPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return ports.WebhookEvent{}, fmt.Errorf("parse square webhook: %w", ports.ErrMalformedWebhook)
	}

	eventType := raw.Data.Object.OrderUpdated.State
	if eventType == "" {
		eventType = raw.Type
	}
	event := ports.WebhookEvent{
		ProviderEventType: eventType,
		ExternalID:        raw.Data.ID,
	}
	event.MappedStatus = a.MapToOrderStatus(event)
	return event, nil
}

func (a *SquareAdapter) MapToOrderStatus(event ports.WebhookEvent) order.Status {
	switch event.ProviderEventType {
	case "OPEN":
		return order.StatusAccepted
	case "IN_PROGRESS":
		return order.StatusInKitchen
	case "COMPLETED":
		return order.StatusReady
	case "CANCELED":
		return order.StatusCanceled
	default:
		return order.StatusUnknown
	}
}

func (a *SquareAdapter) headers() map[string]string {
	return map[string]string{
		"Authorization":  "Bearer " + a.cfg.AccessToken,
		"Square-Version": squareAPIVersion,
	}
}
