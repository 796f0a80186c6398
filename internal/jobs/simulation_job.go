package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// SimulationJob advances active orders by synthesizing provider webhook
// payloads and feeding them through the real webhook command handlers.
// Runs every 10 seconds when provider simulation is enabled, so development
// environments without POS or courier accounts see the full lifecycle at
// roughly one transition per tick.
//
// Payloads are built in each provider's own wire format; the adapters parse
// and map them exactly as they would a production callback.
type SimulationJob struct {
	repo            ports.OrderRepository
	posWebhooks     commands.ApplyPosWebhookCommandHandler
	courierWebhooks commands.ApplyCourierWebhookCommandHandler
	cron            *cron.Cron
	logger          *slog.Logger
}

// NewSimulationJob creates the simulation job over the webhook handlers.
func NewSimulationJob(
	repo ports.OrderRepository,
	posWebhooks commands.ApplyPosWebhookCommandHandler,
	courierWebhooks commands.ApplyCourierWebhookCommandHandler,
	logger *slog.Logger,
) *SimulationJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimulationJob{
		repo:            repo,
		posWebhooks:     posWebhooks,
		courierWebhooks: courierWebhooks,
		cron:            cron.New(cron.WithSeconds()),
		logger:          logger.With("component", "simulation_job"),
	}
}

// Start begins the simulation job to run every 10 seconds.
func (j *SimulationJob) Start() error {
	_, err := j.cron.AddFunc("*/10 * * * * *", func() {
		j.run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Simulation job started (running every 10 seconds)")
	return nil
}

// Stop stops the simulation job.
func (j *SimulationJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Simulation job stopped")
}

func (j *SimulationJob) run(ctx context.Context) {
	orders, err := j.repo.GetActive(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "failed to load active orders", "error", err)
		return
	}

	for _, o := range orders {
		j.advance(ctx, o)
	}
}

// advance emits at most one synthetic event for the order: a POS event while
// it is in the kitchen, a courier milestone once a job is recorded. Orders
// without a POS reference run in "POS not connected" mode and are left to
// staff, as are ready delivery orders still awaiting dispatch.
func (j *SimulationJob) advance(ctx context.Context, o *order.Order) {
	if next := nextKitchenStatus(o.Status()); next != "" {
		if o.PosOrderID() == "" {
			return
		}
		payload, ok := simulatedPosEvent(o.PosProvider(), o.PosOrderID(), next)
		if !ok {
			return
		}
		cmd, err := commands.NewApplyPosWebhookCommand(o.PosProvider(), payload)
		if err != nil {
			j.logger.ErrorContext(ctx, "failed to build simulated pos event",
				"order_id", o.ID().String(), "error", err)
			return
		}
		if err := j.posWebhooks.Handle(ctx, cmd); err != nil {
			j.logger.WarnContext(ctx, "simulated pos event was refused",
				"order_id", o.ID().String(), "provider", o.PosProvider(), "error", err)
		}
		return
	}

	if o.Fulfillment() != order.FulfillmentDelivery || o.CourierJobID() == "" {
		return
	}
	next := nextCourierStatus(o.Status())
	if next == "" {
		return
	}
	payload, ok := simulatedCourierEvent(o.CourierProvider(), o.CourierJobID(), next)
	if !ok {
		return
	}
	cmd, err := commands.NewApplyCourierWebhookCommand(o.CourierProvider(), payload)
	if err != nil {
		j.logger.ErrorContext(ctx, "failed to build simulated courier event",
			"order_id", o.ID().String(), "error", err)
		return
	}
	if err := j.courierWebhooks.Handle(ctx, cmd); err != nil {
		j.logger.WarnContext(ctx, "simulated courier event was refused",
			"order_id", o.ID().String(), "provider", o.CourierProvider(), "error", err)
	}
}

func nextKitchenStatus(s order.Status) order.Status {
	switch s {
	case order.StatusCreated:
		return order.StatusAccepted
	case order.StatusAccepted:
		return order.StatusInKitchen
	case order.StatusInKitchen:
		return order.StatusReady
	default:
		return ""
	}
}

func nextCourierStatus(s order.Status) order.Status {
	switch s {
	case order.StatusReady:
		return order.StatusCourierRequested
	case order.StatusCourierRequested:
		return order.StatusDriverEnRoute
	case order.StatusDriverEnRoute:
		return order.StatusPickedUp
	case order.StatusPickedUp:
		return order.StatusDelivered
	default:
		return ""
	}
}

// simulatedPosEvent renders the provider payload that would report the order
// entering next. Providers without an event for a given step report ok=false;
// clover, for example, has no ready callback, so simulated clover orders wait
// for staff to mark them ready.
func simulatedPosEvent(provider, externalID string, next order.Status) ([]byte, bool) {
	switch provider {
	case "square":
		states := map[order.Status]string{
			order.StatusAccepted:  "OPEN",
			order.StatusInKitchen: "IN_PROGRESS",
			order.StatusReady:     "COMPLETED",
		}
		state, ok := states[next]
		if !ok {
			return nil, false
		}
		return []byte(fmt.Sprintf(
			`{"type":"order.updated","data":{"type":"order_updated","id":%q,"object":{"order_updated":{"state":%q}}}}`,
			externalID, state)), true

	case "toast":
		events := map[order.Status]string{
			order.StatusAccepted:  "ORDER_CREATED",
			order.StatusInKitchen: "ORDER_MODIFIED",
			order.StatusReady:     "ORDER_READY",
		}
		event, ok := events[next]
		if !ok {
			return nil, false
		}
		return []byte(fmt.Sprintf(`{"eventType":%q,"guid":%q}`, event, externalID)), true

	case "clover":
		events := map[order.Status]string{
			order.StatusAccepted:  "ORDER_CREATED",
			order.StatusInKitchen: "ORDER_UPDATED",
		}
		event, ok := events[next]
		if !ok {
			return nil, false
		}
		return []byte(fmt.Sprintf(`{"type":%q,"objectId":%q}`, event, externalID)), true

	default:
		return nil, false
	}
}

// simulatedCourierEvent renders the provider payload for the next delivery
// milestone.
func simulatedCourierEvent(provider, jobID string, next order.Status) ([]byte, bool) {
	switch provider {
	case "doordash":
		events := map[order.Status]string{
			order.StatusCourierRequested: "delivery_created",
			order.StatusDriverEnRoute:    "dasher_confirmed",
			order.StatusPickedUp:         "dasher_picked_up",
			order.StatusDelivered:        "delivery_delivered",
		}
		event, ok := events[next]
		if !ok {
			return nil, false
		}
		return []byte(fmt.Sprintf(`{"event_type":%q,"external_delivery_id":%q}`, event, jobID)), true

	case "uber":
		events := map[order.Status]string{
			order.StatusCourierRequested: "delivery.created",
			order.StatusDriverEnRoute:    "delivery.assigned",
			order.StatusPickedUp:         "delivery.picked_up",
			order.StatusDelivered:        "delivery.delivered",
		}
		event, ok := events[next]
		if !ok {
			return nil, false
		}
		return []byte(fmt.Sprintf(`{"event_type":%q,"delivery_id":%q}`, event, jobID)), true

	default:
		return nil, false
	}
}
