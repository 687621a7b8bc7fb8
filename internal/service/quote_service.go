package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fieldops-service/internal/model"
	"fieldops-service/internal/numbering"
	"fieldops-service/internal/pricing"
	"fieldops-service/internal/repository"
)

type QuoteService struct {
	engine
}

func NewQuoteService(store repository.Store, numbers *numbering.Generator, opts Options, log zerolog.Logger) *QuoteService {
	return &QuoteService{engine: newEngine(store, numbers, opts, log)}
}

type QuoteItemInput struct {
	ItemType    model.ItemType  `json:"item_type" validate:"required,enum"`
	Description string          `json:"description" validate:"required,max=255"`
	Unit        string          `json:"unit" validate:"max=32"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0,scale=3"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0,scale=4"`
}

type CreateQuoteInput struct {
	ServiceRequestID uuid.UUID            `json:"service_request_id" validate:"required"`
	Items            []QuoteItemInput     `json:"items" validate:"required,min=1,dive"`
	DiscountType     model.AdjustmentType `json:"discount_type" validate:"enum"`
	DiscountValue    decimal.Decimal      `json:"discount_value" validate:"gte=0,scale=2"`
	VatRate          *decimal.Decimal     `json:"vat_rate" validate:"omitempty,gte=0,lte=100,scale=2"`
	ValidUntil       time.Time            `json:"valid_until" validate:"required"`
	Notes            *string              `json:"notes"`
	Terms            *string              `json:"terms"`
}

// Create issues a DRAFT quote directly, without an estimate.
func (s *QuoteService) Create(ctx context.Context, principal model.Principal, input CreateQuoteInput) (*model.Quote, error) {
	if principal.IsTechnician() {
		return nil, ErrPermissionDenied
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !input.ValidUntil.After(s.now()) {
		return nil, invalidField("valid_until", "future")
	}

	vatRate := s.opts.DefaultVatRate
	if input.VatRate != nil {
		vatRate = *input.VatRate
	}

	var quote *model.Quote
	err := s.numbered(ctx, func(tx repository.Tx) error {
		request, err := loadServiceRequest(ctx, tx, principal, input.ServiceRequestID)
		if err != nil {
			return err
		}
		number, err := s.numbers.Next(ctx, tx.Counters(), principal.CompanyID, model.DocumentTypeQuote)
		if err != nil {
			return err
		}

		quote = &model.Quote{
			CompanyID:        principal.CompanyID,
			QuoteNo:          number,
			ServiceRequestID: request.ID,
			Status:           model.QuoteStatusDraft,
			DiscountType:     input.DiscountType,
			DiscountValue:    input.DiscountValue,
			VatRate:          vatRate,
			ValidUntil:       input.ValidUntil.UTC(),
			Notes:            input.Notes,
			Terms:            input.Terms,
			CreatedBy:        principal.UserID,
		}
		for i, in := range input.Items {
			quote.Items = append(quote.Items, model.QuoteItem{
				ItemType:    in.ItemType,
				Description: strings.TrimSpace(in.Description),
				Unit:        in.Unit,
				Quantity:    in.Quantity,
				UnitPrice:   in.UnitPrice,
				SortOrder:   i,
			})
		}
		pricing.ApplyQuote(quote)

		if err := tx.Quotes().Create(ctx, quote); err != nil {
			return err
		}
		return setServiceRequestStatus(ctx, tx, request.ID, model.ServiceRequestStatusQuotationInProgress)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *QuoteService) Send(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Quote, error) {
	return s.transition(ctx, principal, id, model.QuoteStatusSent, "sent", func(quote *model.Quote) error {
		quote.SentAt = s.timestamp()
		return nil
	})
}

// Accept records customer acceptance. A quote past its validity date can no
// longer be accepted even before the expiry sweep has marked it.
func (s *QuoteService) Accept(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Quote, error) {
	return s.transition(ctx, principal, id, model.QuoteStatusAccepted, "accepted", func(quote *model.Quote) error {
		now := s.now()
		if now.After(quote.ValidUntil) {
			return &PreconditionError{Rule: "quote " + quote.QuoteNo + " expired on " + quote.ValidUntil.Format(time.DateOnly)}
		}
		quote.AcceptedAt = s.timestamp()
		return nil
	})
}

type RejectQuoteInput struct {
	Reason *string `json:"reason"`
}

func (s *QuoteService) Reject(ctx context.Context, principal model.Principal, id uuid.UUID, input RejectQuoteInput) (*model.Quote, error) {
	return s.transition(ctx, principal, id, model.QuoteStatusRejected, "rejected", func(quote *model.Quote) error {
		quote.RejectedAt = s.timestamp()
		quote.RejectionReason = input.Reason
		return nil
	})
}

func (s *QuoteService) Cancel(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Quote, error) {
	return s.transition(ctx, principal, id, model.QuoteStatusCancelled, "cancelled", func(quote *model.Quote) error {
		quote.CancelledAt = s.timestamp()
		return nil
	})
}

func (s *QuoteService) transition(ctx context.Context, principal model.Principal, id uuid.UUID, next model.QuoteStatus, action string, apply func(quote *model.Quote) error) (*model.Quote, error) {
	var result *model.Quote
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		quote, err := loadQuote(ctx, tx, principal, id)
		if err != nil {
			return err
		}
		if !quote.Status.CanTransitionTo(next) {
			return transitionError("quote", quote.QuoteNo, action, quote.Status,
				sourcesOf(model.QuoteStatuses, next, model.QuoteStatus.CanTransitionTo))
		}
		quote.Status = next
		if err := apply(quote); err != nil {
			return err
		}
		if err := tx.Quotes().Update(ctx, quote); err != nil {
			return err
		}
		result = quote
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExpireOverdue marks every SENT quote whose validity ended before asOf as
// EXPIRED and returns how many were changed.
func (s *QuoteService) ExpireOverdue(ctx context.Context, asOf time.Time) (int, error) {
	expired := 0
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		expired = 0
		quotes, err := tx.Quotes().ListExpired(ctx, asOf)
		if err != nil {
			return err
		}
		at := asOf.UTC()
		for i := range quotes {
			quote := &quotes[i]
			if !quote.Status.CanTransitionTo(model.QuoteStatusExpired) {
				continue
			}
			quote.Status = model.QuoteStatusExpired
			quote.ExpiredAt = &at
			if err := tx.Quotes().Update(ctx, quote); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

func (s *QuoteService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Quote, error) {
	var quote *model.Quote
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		found, err := tx.Quotes().GetByID(ctx, id)
		if err != nil {
			return translate(err, "quote", id)
		}
		if found.CompanyID != principal.CompanyID {
			return notFound("quote", id)
		}
		quote = found
		return nil
	})
	return quote, err
}

func (s *QuoteService) List(ctx context.Context, principal model.Principal, filter repository.QuoteListFilter) ([]model.Quote, error) {
	filter.CompanyID = principal.CompanyID
	var quotes []model.Quote
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		quotes, err = tx.Quotes().List(ctx, filter)
		return err
	})
	return quotes, err
}

func loadQuote(ctx context.Context, tx repository.Tx, principal model.Principal, id uuid.UUID) (*model.Quote, error) {
	quote, err := tx.Quotes().GetForUpdate(ctx, id)
	if err != nil {
		return nil, translate(err, "quote", id)
	}
	if quote.CompanyID != principal.CompanyID {
		return nil, notFound("quote", id)
	}
	return quote, nil
}
