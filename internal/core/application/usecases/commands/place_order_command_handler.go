package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/domain/services"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
)

const (
	posSubmitAttempts = 3
	posSubmitTimeout  = 8 * time.Second
	posSubmitBackoff  = 5 * time.Second
)

// PlaceOrderCommandHandler prices the cart, persists the new order and
// submits it to the POS. The POS leg is best effort: placement succeeds even
// when every submission attempt fails, and the retry loop runs detached from
// the request.
type PlaceOrderCommandHandler struct {
	repo         ports.OrderRepository
	calculator   services.TotalsCalculator
	pos          PosProviderRegistry
	transitioner *Transitioner
	publisher    ports.OrderPublisher
	logger       *slog.Logger
}

func NewPlaceOrderCommandHandler(
	repo ports.OrderRepository,
	calculator services.TotalsCalculator,
	pos PosProviderRegistry,
	transitioner *Transitioner,
	publisher ports.OrderPublisher,
	logger *slog.Logger,
) (PlaceOrderCommandHandler, error) {
	if repo == nil {
		return PlaceOrderCommandHandler{}, errs.NewValueIsRequiredError("repo")
	}
	if pos == nil {
		return PlaceOrderCommandHandler{}, errs.NewValueIsRequiredError("pos")
	}
	if transitioner == nil {
		return PlaceOrderCommandHandler{}, errs.NewValueIsRequiredError("transitioner")
	}
	if publisher == nil {
		return PlaceOrderCommandHandler{}, errs.NewValueIsRequiredError("publisher")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return PlaceOrderCommandHandler{
		repo:         repo,
		calculator:   calculator,
		pos:          pos,
		transitioner: transitioner,
		publisher:    publisher,
		logger:       logger,
	}, nil
}

// Handle processes the checkout and returns the created order.
func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	distance := 0
	if addr := cmd.DeliveryAddress(); addr != nil {
		distance = addr.DistanceTenthsKm
	}

	totals, err := h.calculator.Calculate(cmd.Items(), cmd.Fulfillment(), distance, cmd.Tip(), cmd.Discount())
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(
		kernel.NewUUID(),
		cmd.Fulfillment(),
		cmd.Customer(),
		cmd.DeliveryAddress(),
		cmd.Items(),
		totals,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	if err := h.repo.Add(ctx, o); err != nil {
		return nil, err
	}
	h.publisher.Publish(o.Clone())

	if provider := cmd.PosProvider(); provider != "" {
		go h.submitToPos(o, provider)
	} else {
		h.logger.InfoContext(ctx, "order placed without POS, kitchen must be reached manually",
			"order_id", o.ID().String())
	}

	return o, nil
}

// submitToPos pushes the order to the kitchen system with bounded retries.
// It runs detached from the placing request, so it carries its own contexts.
func (h *PlaceOrderCommandHandler) submitToPos(o *order.Order, provider string) {
	adapter, err := h.pos.Get(provider)
	if err != nil {
		h.logger.Error("unknown pos provider, order proceeds unsubmitted",
			"order_id", o.ID().String(), "provider", provider)
		return
	}

	for attempt := 1; attempt <= posSubmitAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), posSubmitTimeout)
		externalID, err := adapter.CreateOrder(ctx, o)
		cancel()

		if err == nil {
			if err := h.transitioner.AttachPosReference(context.Background(), o.ID(), provider, externalID); err != nil {
				h.logger.Error("failed to record pos reference",
					"order_id", o.ID().String(), "provider", provider, "error", err)
			}
			return
		}

		if errors.Is(err, ports.ErrPosRejected) {
			h.logger.Warn("pos rejected the order, proceeding without kitchen integration",
				"order_id", o.ID().String(), "provider", provider, "error", err)
			return
		}

		h.logger.Warn("pos submission attempt failed",
			"order_id", o.ID().String(), "provider", provider, "attempt", attempt, "error", err)
		if attempt < posSubmitAttempts {
			time.Sleep(posSubmitBackoff * time.Duration(attempt*attempt))
		}
	}

	h.logger.Error("pos submission exhausted all attempts, order proceeds unsubmitted",
		"order_id", o.ID().String(), "provider", provider)
}
