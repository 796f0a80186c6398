package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
	"ordering/internal/pkg/locker"
)

// Transitioner applies status changes to order aggregates. It is the only
// place that mutates a persisted order: every mutation happens inside the
// per-order critical section (lock, read, evaluate, write, publish), so
// concurrent webhooks for one order serialize here.
type Transitioner struct {
	repo            ports.OrderRepository
	locker          *locker.KeyedMutex
	publisher       ports.OrderPublisher
	couriers        CourierProviderRegistry
	courierProvider string
	restaurant      ports.RestaurantInfo
	logger          *slog.Logger
}

func NewTransitioner(
	repo ports.OrderRepository,
	keyedMutex *locker.KeyedMutex,
	publisher ports.OrderPublisher,
	couriers CourierProviderRegistry,
	courierProvider string,
	restaurant ports.RestaurantInfo,
	logger *slog.Logger,
) (*Transitioner, error) {
	if repo == nil {
		return nil, errs.NewValueIsRequiredError("repo")
	}
	if keyedMutex == nil {
		return nil, errs.NewValueIsRequiredError("keyedMutex")
	}
	if publisher == nil {
		return nil, errs.NewValueIsRequiredError("publisher")
	}
	if couriers == nil {
		return nil, errs.NewValueIsRequiredError("couriers")
	}
	if courierProvider == "" {
		return nil, errs.NewValueIsRequiredError("courierProvider")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Transitioner{
		repo:            repo,
		locker:          keyedMutex,
		publisher:       publisher,
		couriers:        couriers,
		courierProvider: courierProvider,
		restaurant:      restaurant,
		logger:          logger,
	}, nil
}

// ApplyStatus advances one order to next under the per-order lock. Stale,
// duplicate and terminal-violating transitions are discarded silently: the
// caller acknowledged the webhook either way, and replaying it must stay
// harmless. A transition that lands a delivery order on ready triggers
// courier dispatch inside the same critical section.
func (t *Transitioner) ApplyStatus(ctx context.Context, orderID kernel.UUID, next order.Status) error {
	key := orderID.String()
	t.locker.Lock(key)
	defer t.locker.Unlock(key)

	o, err := t.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if err := o.ApplyStatus(next, time.Now().UTC()); err != nil {
		if errors.Is(err, order.ErrStaleTransition) || errors.Is(err, order.ErrTerminalStatus) {
			t.logger.DebugContext(ctx, "discarding out-of-order transition",
				"order_id", key, "current", o.Status(), "next", next)
			return nil
		}
		return err
	}

	if err := t.repo.Update(ctx, o); err != nil {
		return err
	}
	// Subscribers receive a frozen copy: the live aggregate may still be
	// mutated below while they read the snapshot.
	t.publisher.Publish(o.Clone())

	if o.NeedsCourierDispatch() {
		if err := t.dispatchLocked(ctx, o); err != nil {
			// Not fatal for the transition: the dispatch retry job
			// re-attempts while the order stays in ready.
			t.logger.WarnContext(ctx, "courier dispatch failed, will retry",
				"order_id", key, "error", err)
		}
	}
	return nil
}

// AttachPosReference records the external POS order id once the provider
// accepted the order. Safe to call from the submission retry loop: repeats
// with the same id are no-ops.
func (t *Transitioner) AttachPosReference(ctx context.Context, orderID kernel.UUID, provider, externalOrderID string) error {
	key := orderID.String()
	t.locker.Lock(key)
	defer t.locker.Unlock(key)

	o, err := t.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if err := o.AttachPos(provider, externalOrderID); err != nil {
		return err
	}
	if err := t.repo.Update(ctx, o); err != nil {
		return err
	}
	t.publisher.Publish(o.Clone())
	return nil
}

// DispatchCourier re-attempts courier dispatch for an order that reached
// ready without a recorded job. The check and the request share one critical
// section, so two concurrent attempts cannot both dispatch.
func (t *Transitioner) DispatchCourier(ctx context.Context, orderID kernel.UUID) error {
	key := orderID.String()
	t.locker.Lock(key)
	defer t.locker.Unlock(key)

	o, err := t.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.NeedsCourierDispatch() {
		return nil
	}
	return t.dispatchLocked(ctx, o)
}

func (t *Transitioner) dispatchLocked(ctx context.Context, o *order.Order) error {
	adapter, err := t.couriers.Get(t.courierProvider)
	if err != nil {
		return err
	}

	job, err := adapter.RequestDelivery(ctx, o, t.restaurant)
	if err != nil {
		return err
	}

	if err := o.AttachCourier(adapter.Name(), job.JobID, job.TrackingURL); err != nil {
		return err
	}
	if err := t.repo.Update(ctx, o); err != nil {
		return err
	}
	t.publisher.Publish(o.Clone())

	t.logger.InfoContext(ctx, "courier dispatched",
		"order_id", o.ID().String(), "provider", adapter.Name(), "job_id", job.JobID)
	return nil
}
