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

const CloverProviderName = "clover"

type CloverConfig struct {
	APIURL      string
	AccessToken string
	MerchantID  string
	Timeout     time.Duration
}

// CloverAdapter speaks the Clover platform API. Clover scopes every order
// resource under the merchant and only ever reports create/update/delete of
// the order object, so its webhook vocabulary is the smallest of the three.
type CloverAdapter struct {
	cfg    CloverConfig
	client *http.Client
}

func NewCloverAdapter(cfg CloverConfig) (*CloverAdapter, error) {
	if cfg.APIURL == "" {
		return nil, errs.NewValueIsRequiredError("cfg.APIURL")
	}
	if cfg.AccessToken == "" {
		return nil, errs.NewValueIsRequiredError("cfg.AccessToken")
	}
	if cfg.MerchantID == "" {
		return nil, errs.NewValueIsRequiredError("cfg.MerchantID")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultProviderTimeout
	}
	return &CloverAdapter{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

func (a *CloverAdapter) Name() string { return CloverProviderName }

type cloverModification struct {
	Modifier struct {
		ID string `json:"id"`
	} `json:"modifier"`
}

type cloverLineItem struct {
	Item struct {
		ID string `json:"id"`
	} `json:"item"`
	UnitQty       int                  `json:"unitQty"`
	Modifications []cloverModification `json:"modifications,omitempty"`
	Note          string               `json:"note,omitempty"`
}

type cloverCustomer struct {
	Name         string `json:"name"`
	PhoneNumbers []struct {
		PhoneNumber string `json:"phoneNumber"`
	} `json:"phoneNumbers"`
	EmailAddresses []struct {
		EmailAddress string `json:"emailAddress"`
	} `json:"emailAddresses,omitempty"`
}

type cloverCreateOrderRequest struct {
	State     string `json:"state"`
	OrderType struct {
		ID string `json:"id"`
	} `json:"orderType"`
	ExternalReferenceID string           `json:"externalReferenceId"`
	Customers           []cloverCustomer `json:"customers"`
	LineItems           []cloverLineItem `json:"lineItems"`
	Note                string           `json:"note,omitempty"`
}

type cloverOrderResponse struct {
	ID string `json:"id"`
}

func (a *CloverAdapter) CreateOrder(ctx context.Context, o *order.Order) (string, error) {
	items := o.Items()
	lineItems := make([]cloverLineItem, 0, len(items))
	for _, item := range items {
		li := cloverLineItem{UnitQty: item.Quantity, Note: item.Note}
		li.Item.ID = item.SKU
		for _, m := range item.Modifiers {
			var mod cloverModification
			mod.Modifier.ID = m.ID
			li.Modifications = append(li.Modifications, mod)
		}
		lineItems = append(lineItems, li)
	}

	customer := cloverCustomer{Name: o.Customer().Name}
	customer.PhoneNumbers = append(customer.PhoneNumbers, struct {
		PhoneNumber string `json:"phoneNumber"`
	}{PhoneNumber: o.Customer().Phone})
	if email := o.Customer().Email; email != "" {
		customer.EmailAddresses = append(customer.EmailAddresses, struct {
			EmailAddress string `json:"emailAddress"`
		}{EmailAddress: email})
	}

	req := cloverCreateOrderRequest{
		State: "open",
		// externalReferenceId lets a retried submission resolve to the
		// order Clover already created.
		ExternalReferenceID: o.ID().String(),
		Customers:           []cloverCustomer{customer},
		LineItems:           lineItems,
	}
	if o.Fulfillment() == order.FulfillmentDelivery {
		req.OrderType.ID = "DELIVERY"
		if addr := o.DeliveryAddress(); addr != nil {
			req.Note = addr.Instructions
		}
	} else {
		req.OrderType.ID = "PICKUP"
	}

	url := fmt.Sprintf("%s/merchants/%s/orders", a.cfg.APIURL, a.cfg.MerchantID)
	var resp cloverOrderResponse
	if err := doJSON(ctx, a.client, http.MethodPost, url, a.headers(), req, &resp); err != nil {
		return "", fmt.Errorf("clover create order: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("clover create order: response carries no order id")
	}
	return resp.ID, nil
}

type cloverUpdateOrderRequest struct {
	Note string `json:"note,omitempty"`
}

func (a *CloverAdapter) UpdateOrder(ctx context.Context, externalOrderID string, patch ports.OrderPatch) error {
	req := cloverUpdateOrderRequest{Note: patch.Note}
	if patch.ReadyAt != nil {
		ready := "ready at " + patch.ReadyAt.UTC().Format(time.RFC3339)
		if req.Note != "" {
			req.Note += "; " + ready
		} else {
			req.Note = ready
		}
	}

	url := fmt.Sprintf("%s/merchants/%s/orders/%s", a.cfg.APIURL, a.cfg.MerchantID, externalOrderID)
	if err := doJSON(ctx, a.client, http.MethodPost, url, a.headers(), req, nil); err != nil {
		return fmt.Errorf("clover update order %s: %w", externalOrderID, err)
	}
	return nil
}

type cloverWebhookPayload struct {
	Type       string `json:"type"`
	ObjectID   string `json:"objectId"`
	MerchantID string `json:"merchantId"`
}

func (a *CloverAdapter) ParseWebhook(payload []byte) (ports.WebhookEvent, error) {
	var raw cloverWebhookPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return ports.WebhookEvent{}, fmt.Errorf("parse clover webhook: %w", ports.ErrMalformedWebhook)
	}

	event := ports.WebhookEvent{
		ProviderEventType: raw.Type,
		ExternalID:        raw.ObjectID,
	}
	event.MappedStatus = a.MapToOrderStatus(event)
	return event, nil
}

func (a *CloverAdapter) MapToOrderStatus(event ports.WebhookEvent) order.Status {
	switch event.ProviderEventType {
	case "ORDER_CREATED":
		return order.StatusAccepted
	case "ORDER_UPDATED":
		return order.StatusInKitchen
	case "ORDER_DELETED":
		return order.StatusCanceled
	default:
		return order.StatusUnknown
	}
}

func (a *CloverAdapter) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + a.cfg.AccessToken,
	}
}
