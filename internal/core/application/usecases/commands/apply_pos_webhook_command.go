package commands

import (
	"errors"

	"ordering/internal/pkg/guard"
)

var (
	ErrApplyPosWebhookCommandIsNotConstructed = errors.New(
		"ApplyPosWebhookCommand must be created via NewApplyPosWebhookCommand constructor",
	)
	ErrProviderIsRequired = errors.New("provider is required")
	ErrPayloadIsRequired  = errors.New("payload is required")
)

// ApplyPosWebhookCommand carries one raw POS callback: the provider key from
// the route and the untouched request body.
type ApplyPosWebhookCommand struct { //nolint:recvcheck //using for validation
	provider string
	payload  []byte

	guard guard.ConstructorGuard
}

func NewApplyPosWebhookCommand(provider string, payload []byte) (ApplyPosWebhookCommand, error) {
	cmd := ApplyPosWebhookCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setProvider(provider),
		cmd.setPayload(payload),
	); err != nil {
		return ApplyPosWebhookCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ApplyPosWebhookCommand) Validate() error {
	return c.guard.Validate(ErrApplyPosWebhookCommandIsNotConstructed)
}

// Provider returns the POS provider key from the webhook route.
func (c ApplyPosWebhookCommand) Provider() string {
	return c.provider
}

// Payload returns the raw webhook body.
func (c ApplyPosWebhookCommand) Payload() []byte {
	return c.payload
}

func (c *ApplyPosWebhookCommand) setProvider(provider string) error {
	if provider == "" {
		return ErrProviderIsRequired
	}

	c.provider = provider
	return nil
}

func (c *ApplyPosWebhookCommand) setPayload(payload []byte) error {
	if len(payload) == 0 {
		return ErrPayloadIsRequired
	}

	c.payload = payload
	return nil
}
