package payment

import (
	"context"
	"sync/atomic"

	dErrors "pledge/pkg/domain-errors"
)

// Fake issues synthetic customer references without contacting a processor.
// Wired in when no Stripe key is configured so the server runs standalone.
type Fake struct {
	// Err, when set, is returned from every Charge call.
	Err error

	calls atomic.Int64
}

func (f *Fake) Charge(_ context.Context, token string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if token == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "empty card token")
	}
	f.calls.Add(1)
	return "cus_fake_1234", nil
}

// Calls reports how many charges succeeded. Test helper.
func (f *Fake) Calls() int64 {
	return f.calls.Load()
}
