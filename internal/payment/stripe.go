package payment

import (
	"context"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"

	"pledge/internal/platform/config"
	dErrors "pledge/pkg/domain-errors"
)

// StripeCharger tokenizes cards into Stripe customers. The secret key is
// injected here; nothing writes to stripe-go's package-level key.
type StripeCharger struct {
	api *client.API
}

func NewStripeCharger(cfg config.Stripe) *StripeCharger {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeCharger{api: api}
}

func (c *StripeCharger) Charge(ctx context.Context, token string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if err := params.SetSource(token); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "unusable card token")
	}

	customer, err := c.api.Customers.New(params)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUpstream, "payment processor rejected the charge")
	}
	return customer.ID, nil
}
