package commands

import (
	"errors"

	"ordering/internal/pkg/guard"
)

var ErrApplyCourierWebhookCommandIsNotConstructed = errors.New(
	"ApplyCourierWebhookCommand must be created via NewApplyCourierWebhookCommand constructor",
)

// ApplyCourierWebhookCommand carries one raw courier callback.
type ApplyCourierWebhookCommand struct { //nolint:recvcheck //using for validation
	provider string
	payload  []byte

	guard guard.ConstructorGuard
}

func NewApplyCourierWebhookCommand(provider string, payload []byte) (ApplyCourierWebhookCommand, error) {
	cmd := ApplyCourierWebhookCommand{
		guard: guard.NewConstructorGuard(),
	}

	if provider == "" {
		return ApplyCourierWebhookCommand{}, ErrProviderIsRequired
	}
	if len(payload) == 0 {
		return ApplyCourierWebhookCommand{}, ErrPayloadIsRequired
	}

	cmd.provider = provider
	cmd.payload = payload
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ApplyCourierWebhookCommand) Validate() error {
	return c.guard.Validate(ErrApplyCourierWebhookCommandIsNotConstructed)
}

// Provider returns the courier provider key from the webhook route.
func (c ApplyCourierWebhookCommand) Provider() string {
	return c.provider
}

// Payload returns the raw webhook body.
func (c ApplyCourierWebhookCommand) Payload() []byte {
	return c.payload
}
