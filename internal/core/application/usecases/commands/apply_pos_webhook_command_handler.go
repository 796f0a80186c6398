package commands

import (
	"context"
	"errors"
	"log/slog"

	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
)

// ApplyPosWebhookCommandHandler normalizes a POS callback and applies the
// resulting status transition. Events that cannot be acted on (unknown
// types, unknown external ids, stale transitions) are swallowed: the
// provider gets its acknowledgment and the order is left untouched.
type ApplyPosWebhookCommandHandler struct {
	repo         ports.OrderRepository
	pos          PosProviderRegistry
	transitioner *Transitioner
	logger       *slog.Logger
}

func NewApplyPosWebhookCommandHandler(
	repo ports.OrderRepository,
	pos PosProviderRegistry,
	transitioner *Transitioner,
	logger *slog.Logger,
) (ApplyPosWebhookCommandHandler, error) {
	if repo == nil {
		return ApplyPosWebhookCommandHandler{}, errs.NewValueIsRequiredError("repo")
	}
	if pos == nil {
		return ApplyPosWebhookCommandHandler{}, errs.NewValueIsRequiredError("pos")
	}
	if transitioner == nil {
		return ApplyPosWebhookCommandHandler{}, errs.NewValueIsRequiredError("transitioner")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return ApplyPosWebhookCommandHandler{
		repo:         repo,
		pos:          pos,
		transitioner: transitioner,
		logger:       logger,
	}, nil
}

// Handle processes one POS webhook. An error return means the caller should
// refuse the callback (unknown provider, unparseable payload); every other
// outcome acknowledges it.
func (h *ApplyPosWebhookCommandHandler) Handle(ctx context.Context, cmd ApplyPosWebhookCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	adapter, err := h.pos.Get(cmd.Provider())
	if err != nil {
		return err
	}

	event, err := adapter.ParseWebhook(cmd.Payload())
	if err != nil {
		return err
	}

	if event.MappedStatus == order.StatusUnknown {
		h.logger.DebugContext(ctx, "ignoring unrecognized pos event",
			"provider", cmd.Provider(), "event_type", event.ProviderEventType)
		return nil
	}
	if event.ExternalID == "" {
		h.logger.WarnContext(ctx, "pos event carries no external id",
			"provider", cmd.Provider(), "event_type", event.ProviderEventType)
		return nil
	}

	o, err := h.repo.GetByPosOrderID(ctx, cmd.Provider(), event.ExternalID)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			h.logger.WarnContext(ctx, "pos event references unknown order",
				"provider", cmd.Provider(), "external_id", event.ExternalID)
			return nil
		}
		return err
	}

	return h.transitioner.ApplyStatus(ctx, o.ID(), event.MappedStatus)
}
