package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTransitionTableCoversEveryStatus(t *testing.T) {
	assert.Len(t, estimateTransitions, len(EstimateStatuses))
	for _, s := range EstimateStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, EstimateStatus("SUBMITTED").Valid())
}

func TestEstimateConvertedOnlyFromApproved(t *testing.T) {
	for _, from := range EstimateStatuses {
		allowed := from.CanTransitionTo(EstimateStatusConverted)
		assert.Equal(t, from == EstimateStatusApproved, allowed, from)
	}
}

func TestEstimateEditableStatuses(t *testing.T) {
	for _, s := range EstimateStatuses {
		want := s == EstimateStatusDraft || s == EstimateStatusRevisionRequested
		assert.Equal(t, want, s.IsEditable(), s)
	}
}

func TestWorkOrderTransitionTableCoversEveryStatus(t *testing.T) {
	assert.Len(t, workOrderTransitions, len(WorkOrderStatuses))
	for _, s := range WorkOrderStatuses {
		assert.True(t, s.Valid(), s)
		if s.IsTerminal() {
			assert.Empty(t, workOrderTransitions[s], s)
		}
	}
}

func TestWorkOrderRescheduleTargets(t *testing.T) {
	for _, from := range WorkOrderStatuses {
		blocked := from == WorkOrderStatusInProgress || from.IsTerminal()
		assert.Equal(t, !blocked, from.CanTransitionTo(WorkOrderStatusScheduled), from)
	}
}

func TestWorkOrderCancelTargets(t *testing.T) {
	for _, from := range WorkOrderStatuses {
		assert.Equal(t, !from.IsTerminal(), from.CanTransitionTo(WorkOrderStatusCancelled), from)
	}
}

func TestQuoteAndInvoiceTablesCoverEveryStatus(t *testing.T) {
	assert.Len(t, quoteTransitions, len(QuoteStatuses))
	assert.Len(t, invoiceTransitions, len(InvoiceStatuses))
	assert.True(t, QuoteStatusAccepted.CanTransitionTo(QuoteStatusConverted))
	assert.False(t, QuoteStatusSent.CanTransitionTo(QuoteStatusConverted))
	assert.False(t, InvoiceStatusPaid.CanTransitionTo(InvoiceStatusPartiallyPaid))
}

func TestDocumentTypePrefixes(t *testing.T) {
	tests := []struct {
		docType     DocumentType
		prefix      string
		usesCounter bool
	}{
		{DocumentTypeEstimate, "EST", false},
		{DocumentTypeQuote, "QUO", false},
		{DocumentTypeWorkOrder, "WO", false},
		{DocumentTypeInvoice, "INV", true},
		{DocumentTypeReceipt, "RCP", true},
		{DocumentTypePayment, "PAY", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.prefix, tt.docType.Prefix())
		assert.Equal(t, tt.usesCounter, tt.docType.UsesCounter())
	}
	assert.False(t, DocumentType("CREDIT_NOTE").Valid())
}
