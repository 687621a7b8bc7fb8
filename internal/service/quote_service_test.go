package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops-service/internal/model"
)

func (f *fixture) sentQuote(t *testing.T, requestID uuid.UUID) *model.Quote {
	t.Helper()
	quote, err := f.quotes.Create(f.ctx, f.staff, CreateQuoteInput{
		ServiceRequestID: requestID,
		Items: []QuoteItemInput{
			{ItemType: model.ItemTypeMaterial, Description: "Radiator", Quantity: dec("1"), UnitPrice: dec("180")},
			{ItemType: model.ItemTypeLabor, Description: "Fitting", Quantity: dec("2"), UnitPrice: dec("35")},
		},
		ValidUntil: time.Now().Add(7 * 24 * time.Hour),
	})
	require.NoError(t, err)
	sent, err := f.quotes.Send(f.ctx, f.staff, quote.ID)
	require.NoError(t, err)
	return sent
}

func TestQuoteCreateTotals(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	vat := dec("10")

	quote, err := f.quotes.Create(f.ctx, f.staff, CreateQuoteInput{
		ServiceRequestID: request.ID,
		Items: []QuoteItemInput{
			{ItemType: model.ItemTypeMaterial, Description: "Radiator", Quantity: dec("1"), UnitPrice: dec("180")},
			{ItemType: model.ItemTypeLabor, Description: "Fitting", Quantity: dec("2"), UnitPrice: dec("35")},
		},
		DiscountType:  model.AdjustmentFixed,
		DiscountValue: dec("50"),
		VatRate:       &vat,
		ValidUntil:    time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("QUO-%d-0001", time.Now().Year()), quote.QuoteNo)
	assert.Equal(t, model.QuoteStatusDraft, quote.Status)
	assertAmount(t, "250", quote.Subtotal)
	assertAmount(t, "50", quote.DiscountAmount)
	assertAmount(t, "20", quote.VatAmount)
	assertAmount(t, "220", quote.Total)
	assert.Equal(t, model.ServiceRequestStatusQuotationInProgress, f.requestStatus(t, request.ID))
}

func TestQuoteCreateValidation(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")

	_, err := f.quotes.Create(f.ctx, f.staff, CreateQuoteInput{
		ServiceRequestID: request.ID,
		ValidUntil:       time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidInput, "at least one line")

	_, err = f.quotes.Create(f.ctx, f.staff, CreateQuoteInput{
		ServiceRequestID: request.ID,
		Items:            []QuoteItemInput{{ItemType: model.ItemTypeOther, Description: "Call-out", Quantity: dec("1"), UnitPrice: dec("40")}},
		ValidUntil:       time.Now().Add(-time.Minute),
	})
	assert.ErrorIs(t, err, ErrInvalidInput, "validity in the past")

	_, err = f.quotes.Create(f.ctx, f.tech, CreateQuoteInput{})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestQuoteLifecycle(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	quote := f.sentQuote(t, request.ID)
	assert.Equal(t, model.QuoteStatusSent, quote.Status)
	assert.NotNil(t, quote.SentAt)

	_, err := f.quotes.Send(f.ctx, f.staff, quote.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "already sent")

	accepted, err := f.quotes.Accept(f.ctx, f.staff, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QuoteStatusAccepted, accepted.Status)
	assert.NotNil(t, accepted.AcceptedAt)

	_, err = f.quotes.Reject(f.ctx, f.staff, quote.ID, RejectQuoteInput{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestQuoteRejectAndCancel(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")

	reason := "found cheaper"
	rejected, err := f.quotes.Reject(f.ctx, f.staff, f.sentQuote(t, request.ID).ID, RejectQuoteInput{Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, model.QuoteStatusRejected, rejected.Status)
	assert.Equal(t, reason, *rejected.RejectionReason)

	cancelled, err := f.quotes.Cancel(f.ctx, f.staff, f.sentQuote(t, request.ID).ID)
	require.NoError(t, err)
	assert.Equal(t, model.QuoteStatusCancelled, cancelled.Status)
}

func TestAcceptAfterValidityFails(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	quote := f.sentQuote(t, request.ID)

	f.quotes.now = fixedClock(quote.ValidUntil.Add(time.Minute))
	_, err := f.quotes.Accept(f.ctx, f.staff, quote.ID)
	require.ErrorIs(t, err, ErrPreconditionFailed)

	stored, err := f.quotes.Get(f.ctx, f.staff, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QuoteStatusSent, stored.Status)
}

func TestExpireOverdue(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")

	past := time.Now().Add(-10 * 24 * time.Hour)
	f.quotes.now = fixedClock(past)
	stale, err := f.quotes.Create(f.ctx, f.staff, CreateQuoteInput{
		ServiceRequestID: request.ID,
		Items:            []QuoteItemInput{{ItemType: model.ItemTypeOther, Description: "Call-out", Quantity: dec("1"), UnitPrice: dec("40")}},
		ValidUntil:       past.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = f.quotes.Send(f.ctx, f.staff, stale.ID)
	require.NoError(t, err)
	draft, err := f.quotes.Create(f.ctx, f.staff, CreateQuoteInput{
		ServiceRequestID: request.ID,
		Items:            []QuoteItemInput{{ItemType: model.ItemTypeOther, Description: "Call-out", Quantity: dec("1"), UnitPrice: dec("40")}},
		ValidUntil:       past.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	f.quotes.now = time.Now

	fresh := f.sentQuote(t, request.ID)

	expired, err := f.quotes.ExpireOverdue(f.ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	for id, want := range map[uuid.UUID]model.QuoteStatus{
		stale.ID: model.QuoteStatusExpired,
		draft.ID: model.QuoteStatusDraft,
		fresh.ID: model.QuoteStatusSent,
	} {
		stored, err := f.quotes.Get(f.ctx, f.staff, id)
		require.NoError(t, err)
		assert.Equal(t, want, stored.Status)
	}

	again, err := f.quotes.ExpireOverdue(f.ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, again)
}
