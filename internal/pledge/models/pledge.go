package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "pledge/pkg/domain-errors"
)

// Pledge is a single donor's committed contribution. It is created once,
// never mutated, and never deleted. Amounts are integer cents throughout;
// no floating point enters the money path.
type Pledge struct {
	ID               uuid.UUID
	DonationTime     time.Time
	FundraisingRound string

	Email      string
	Occupation string
	Employer   string
	Phone      string
	Target     string

	AmountCents int64

	// Customer is the opaque reference returned by the payment processor.
	// A non-empty value implies the charge succeeded before persistence.
	Customer string

	Note string
}

// Params carries the fields gathered from a submission. Shape is kept
// separate from persistence mechanics; stores receive an already-validated
// Pledge.
type Params struct {
	FundraisingRound string
	Email            string
	Occupation       string
	Employer         string
	Phone            string
	Target           string
	AmountCents      int64
	Customer         string
	Note             string
}

// New validates params and stamps identity and donation time. The timestamp
// is set here, exactly once.
func New(params Params, now time.Time) (*Pledge, error) {
	if err := Validate(params); err != nil {
		return nil, err
	}
	return &Pledge{
		ID:               uuid.New(),
		DonationTime:     now,
		FundraisingRound: params.FundraisingRound,
		Email:            params.Email,
		Occupation:       params.Occupation,
		Employer:         params.Employer,
		Phone:            params.Phone,
		Target:           params.Target,
		AmountCents:      params.AmountCents,
		Customer:         params.Customer,
		Note:             params.Note,
	}, nil
}

// Validate enforces the pledge invariants independent of any datastore.
func Validate(params Params) error {
	switch {
	case params.FundraisingRound == "":
		return dErrors.New(dErrors.CodeBadRequest, "fundraising round is required")
	case params.Email == "":
		return dErrors.New(dErrors.CodeBadRequest, "email is required")
	case params.Occupation == "":
		return dErrors.New(dErrors.CodeBadRequest, "occupation is required")
	case params.Employer == "":
		return dErrors.New(dErrors.CodeBadRequest, "employer is required")
	case params.Target == "":
		return dErrors.New(dErrors.CodeBadRequest, "target is required")
	case params.AmountCents <= 0:
		return dErrors.New(dErrors.CodeBadRequest, "amount must be a positive number of cents")
	case params.Customer == "":
		return dErrors.New(dErrors.CodeBadRequest, "customer reference is required")
	}
	return nil
}
