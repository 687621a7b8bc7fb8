package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fieldops-service/internal/model"
	"fieldops-service/internal/numbering"
	"fieldops-service/internal/repository"
)

// Options carries the pricing and numbering settings shared by all engines.
type Options struct {
	// DefaultHourlyRate prices time entries of employees without a team rate.
	DefaultHourlyRate decimal.Decimal
	// DefaultVatRate applies to quotes and invoices created without an explicit rate.
	DefaultVatRate decimal.Decimal
	// NumberingAttempts bounds retries after a document number collision.
	NumberingAttempts int
}

func DefaultOptions() Options {
	return Options{
		DefaultHourlyRate: decimal.NewFromInt(25),
		DefaultVatRate:    decimal.Zero,
		NumberingAttempts: 5,
	}
}

type engine struct {
	store   repository.Store
	numbers *numbering.Generator
	opts    Options
	log     zerolog.Logger
	now     func() time.Time
}

func newEngine(store repository.Store, numbers *numbering.Generator, opts Options, log zerolog.Logger) engine {
	return engine{
		store:   store,
		numbers: numbers,
		opts:    opts,
		log:     log,
		now:     time.Now,
	}
}

// numbered runs fn in a transaction and repeats it when the document number it
// issued collides with a concurrent writer.
func (e *engine) numbered(ctx context.Context, fn func(tx repository.Tx) error) error {
	return numbering.RetryOnCollision(ctx, e.log, e.opts.NumberingAttempts, func() error {
		return e.store.WithinTx(ctx, fn)
	})
}

func (e *engine) timestamp() *time.Time {
	now := e.now().UTC()
	return &now
}

// loadServiceRequest locks the request and hides requests of other companies.
func loadServiceRequest(ctx context.Context, tx repository.Tx, principal model.Principal, id uuid.UUID) (*model.ServiceRequest, error) {
	request, err := tx.ServiceRequests().GetForUpdate(ctx, id)
	if err != nil {
		return nil, translate(err, "service request", id)
	}
	if request.CompanyID != principal.CompanyID {
		return nil, notFound("service request", id)
	}
	return request, nil
}

func setServiceRequestStatus(ctx context.Context, tx repository.Tx, id uuid.UUID, status model.ServiceRequestStatus) error {
	return translate(tx.ServiceRequests().UpdateStatus(ctx, id, status), "service request", id)
}

func moneyString(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
