package payment

import "context"

// Charger converts a card token into a reusable customer reference at the
// payment processor. The reference is opaque to this system.
type Charger interface {
	Charge(ctx context.Context, token string) (customerRef string, err error)
}
