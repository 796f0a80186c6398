package commands

import (
	"context"
	"errors"
	"log/slog"

	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
)

// ApplyCourierWebhookCommandHandler is the courier-side twin of the POS
// webhook handler: callbacks resolve through the recorded courier job id.
type ApplyCourierWebhookCommandHandler struct {
	repo         ports.OrderRepository
	couriers     CourierProviderRegistry
	transitioner *Transitioner
	logger       *slog.Logger
}

func NewApplyCourierWebhookCommandHandler(
	repo ports.OrderRepository,
	couriers CourierProviderRegistry,
	transitioner *Transitioner,
	logger *slog.Logger,
) (ApplyCourierWebhookCommandHandler, error) {
	if repo == nil {
		return ApplyCourierWebhookCommandHandler{}, errs.NewValueIsRequiredError("repo")
	}
	if couriers == nil {
		return ApplyCourierWebhookCommandHandler{}, errs.NewValueIsRequiredError("couriers")
	}
	if transitioner == nil {
		return ApplyCourierWebhookCommandHandler{}, errs.NewValueIsRequiredError("transitioner")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return ApplyCourierWebhookCommandHandler{
		repo:         repo,
		couriers:     couriers,
		transitioner: transitioner,
		logger:       logger,
	}, nil
}

// Handle processes one courier webhook; same acknowledgment contract as the
// POS handler.
func (h *ApplyCourierWebhookCommandHandler) Handle(ctx context.Context, cmd ApplyCourierWebhookCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	adapter, err := h.couriers.Get(cmd.Provider())
	if err != nil {
		return err
	}

	event, err := adapter.ParseWebhook(cmd.Payload())
	if err != nil {
		return err
	}

	if event.MappedStatus == order.StatusUnknown {
		h.logger.DebugContext(ctx, "ignoring unrecognized courier event",
			"provider", cmd.Provider(), "event_type", event.ProviderEventType)
		return nil
	}
	if event.ExternalID == "" {
		h.logger.WarnContext(ctx, "courier event carries no job id",
			"provider", cmd.Provider(), "event_type", event.ProviderEventType)
		return nil
	}

	o, err := h.repo.GetByCourierJobID(ctx, cmd.Provider(), event.ExternalID)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			h.logger.WarnContext(ctx, "courier event references unknown job",
				"provider", cmd.Provider(), "job_id", event.ExternalID)
			return nil
		}
		return err
	}

	return h.transitioner.ApplyStatus(ctx, o.ID(), event.MappedStatus)
}
