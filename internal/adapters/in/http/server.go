// Package http exposes the ordering API over echo: checkout, order views,
// a server-sent-events status stream and the provider webhook endpoints.
package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/application/usecases/queries"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/domain/services"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// OrderSubscriber hands out per-order snapshot streams for the SSE endpoint.
type OrderSubscriber interface {
	Subscribe(orderID string) (<-chan *order.Order, func())
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	placeOrderHandler          commands.PlaceOrderCommandHandler
	applyPosWebhookHandler     commands.ApplyPosWebhookCommandHandler
	applyCourierWebhookHandler commands.ApplyCourierWebhookCommandHandler

	getOrderHandler        queries.GetOrderQueryHandler
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler

	subscriber OrderSubscriber
}

// NewServer creates the HTTP server with the required command and query
// handlers.
func NewServer(
	placeOrderHandler commands.PlaceOrderCommandHandler,
	applyPosWebhookHandler commands.ApplyPosWebhookCommandHandler,
	applyCourierWebhookHandler commands.ApplyCourierWebhookCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler,
	subscriber OrderSubscriber,
) *Server {
	return &Server{
		placeOrderHandler:          placeOrderHandler,
		applyPosWebhookHandler:     applyPosWebhookHandler,
		applyCourierWebhookHandler: applyCourierWebhookHandler,
		getOrderHandler:            getOrderHandler,
		getActiveOrdersHandler:     getActiveOrdersHandler,
		subscriber:                 subscriber,
	}
}

// RegisterRoutes mounts every route on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/orders", s.PlaceOrder)
	api.GET("/orders/active", s.GetActiveOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/orders/:id/stream", s.StreamOrder)

	e.POST("/webhooks/pos/:provider", s.HandlePosWebhook)
	e.POST("/webhooks/courier/:provider", s.HandleCourierWebhook)
	e.GET("/health", s.Health)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// PlaceOrderRequest is the checkout payload.
type PlaceOrderRequest struct {
	Fulfillment     string           `json:"fulfillment"`
	Customer        order.Customer   `json:"customer"`
	DeliveryAddress *order.Address   `json:"delivery_address,omitempty"`
	Items           []order.CartLine `json:"items"`
	TipPercent      int              `json:"tip_percent,omitempty"`
	TipCents        *int64           `json:"tip_cents,omitempty"`
	DiscountCents   int64            `json:"discount_cents,omitempty"`
	PosProvider     string           `json:"pos_provider,omitempty"`
}

// PlaceOrder handles POST /api/v1/orders.
func (s *Server) PlaceOrder(ctx echo.Context) error {
	var req PlaceOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "invalid request body",
		})
	}

	tip := services.TipSpec{Percent: req.TipPercent}
	if req.TipCents != nil {
		tip.FixedCents = *req.TipCents
		tip.HasFixed = true
	}

	cmd, err := commands.NewPlaceOrderCommand(
		order.Fulfillment(req.Fulfillment),
		req.Customer,
		req.DeliveryAddress,
		req.Items,
		tip,
		services.DiscountSpec{AmountCents: req.DiscountCents},
		req.PosProvider,
	)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	o, err := s.placeOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "failed to place order",
		})
	}

	return ctx.JSON(http.StatusCreated, queries.NewOrderView(o))
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	query, httpErr := s.orderQueryFromParam(ctx.Param("id"))
	if httpErr != nil {
		return ctx.JSON(httpErr.Code, httpErr)
	}

	view, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, errorResponse{
				Code:    http.StatusNotFound,
				Message: "order not found",
			})
		}
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "failed to retrieve order",
		})
	}

	return ctx.JSON(http.StatusOK, view)
}

// GetActiveOrders handles GET /api/v1/orders/active.
func (s *Server) GetActiveOrders(ctx echo.Context) error {
	views, err := s.getActiveOrdersHandler.Handle(ctx.Request().Context(), queries.NewGetActiveOrdersQuery())
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "failed to retrieve active orders",
		})
	}

	return ctx.JSON(http.StatusOK, views)
}

// StreamOrder handles GET /api/v1/orders/:id/stream. It pushes the current
// snapshot immediately, then one event per accepted transition until the
// client disconnects. Clients that prefer polling use the plain GET.
func (s *Server) StreamOrder(ctx echo.Context) error {
	query, httpErr := s.orderQueryFromParam(ctx.Param("id"))
	if httpErr != nil {
		return ctx.JSON(httpErr.Code, httpErr)
	}

	view, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, errorResponse{
				Code:    http.StatusNotFound,
				Message: "order not found",
			})
		}
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "failed to retrieve order",
		})
	}

	snapshots, cancel := s.subscriber.Subscribe(view.ID)
	defer cancel()

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	if err := writeEvent(ctx, view); err != nil {
		return nil
	}

	for {
		select {
		case <-ctx.Request().Context().Done():
			return nil
		case o, ok := <-snapshots:
			if !ok {
				return nil
			}
			if err := writeEvent(ctx, queries.NewOrderView(o)); err != nil {
				return nil
			}
		}
	}
}

func writeEvent(ctx echo.Context, view queries.OrderView) error {
	resp := ctx.Response()
	if _, err := resp.Write([]byte("data: ")); err != nil {
		return err
	}
	if err := ctx.Echo().JSONSerializer.Serialize(ctx, view, ""); err != nil {
		return err
	}
	if _, err := resp.Write([]byte("\n\n")); err != nil {
		return err
	}
	resp.Flush()
	return nil
}

// HandlePosWebhook handles POST /webhooks/pos/:provider.
func (s *Server) HandlePosWebhook(ctx echo.Context) error {
	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "unreadable payload",
		})
	}

	cmd, err := commands.NewApplyPosWebhookCommand(ctx.Param("provider"), payload)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if err := s.applyPosWebhookHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return webhookError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleCourierWebhook handles POST /webhooks/courier/:provider.
func (s *Server) HandleCourierWebhook(ctx echo.Context) error {
	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "unreadable payload",
		})
	}

	cmd, err := commands.NewApplyCourierWebhookCommand(ctx.Param("provider"), payload)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if err := s.applyCourierWebhookHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return webhookError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) orderQueryFromParam(raw string) (queries.GetOrderQuery, *errorResponse) {
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return queries.GetOrderQuery{}, &errorResponse{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("invalid order id %q", raw),
		}
	}

	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return queries.GetOrderQuery{}, &errorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}
	return query, nil
}

// webhookError maps handler failures onto provider-facing status codes:
// unknown provider keys are 404, unparseable payloads 400, everything else
// 500. Unknown events and unknown order references never reach here; the
// handlers acknowledge them and leave the order untouched.
func webhookError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, errorResponse{
			Code:    http.StatusNotFound,
			Message: "unknown provider",
		})
	case errors.Is(err, ports.ErrMalformedWebhook):
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "malformed payload",
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "failed to process webhook",
		})
	}
}
