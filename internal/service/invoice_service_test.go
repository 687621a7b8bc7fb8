package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops-service/internal/model"
)

func (f *fixture) issuedInvoice(t *testing.T) *model.Invoice {
	t.Helper()
	request := f.completedRequest(t, "50")
	vat := dec("10")
	invoice, err := f.invoices.Generate(f.ctx, f.staff, GenerateInvoiceInput{ServiceRequestID: request.ID, VatRate: &vat})
	require.NoError(t, err)
	return invoice
}

func TestGenerateInvoiceLines(t *testing.T) {
	f := newFixture(t)
	invoice := f.issuedInvoice(t)

	assert.Equal(t, model.InvoiceStatusIssued, invoice.Status)
	require.Len(t, invoice.Items, 2, "planned labor is not invoiced")
	assert.Equal(t, "Valve", invoice.Items[0].Description)
	assertAmount(t, "25", invoice.Items[0].TotalPrice)
	assert.Equal(t, model.ItemTypeService, invoice.Items[1].ItemType)
	assertAmount(t, "50", invoice.Items[1].TotalPrice)
	assertAmount(t, "75", invoice.Subtotal)
	assertAmount(t, "7.5", invoice.VatAmount)
	assertAmount(t, "82.5", invoice.Total)
	assertAmount(t, "82.5", invoice.BalanceDue)
	assertAmount(t, "0", invoice.PaidAmount)
	assert.Equal(t, model.ServiceRequestStatusInvoiced, f.requestStatus(t, invoice.ServiceRequestID))
}

func TestGenerateInvoiceIncludesAdditionalCost(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	workOrder := f.inProgressWorkOrder(t, request.ID)
	_, err := f.workOrders.Complete(f.ctx, f.tech, workOrder.ID, CompleteInput{
		WorkPerformed:  "Valve replaced, extra pipework",
		AdditionalCost: ptr(dec("30")),
	})
	require.NoError(t, err)

	invoice, err := f.invoices.Generate(f.ctx, f.staff, GenerateInvoiceInput{ServiceRequestID: request.ID})
	require.NoError(t, err)
	require.Len(t, invoice.Items, 2)
	assert.Equal(t, "Additional work "+workOrder.WorkOrderNo, invoice.Items[1].Description)
	assertAmount(t, "55", invoice.Total)
}

func TestGenerateInvoiceRequiresCompletedRequest(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "50")
	f.inProgressWorkOrder(t, request.ID)

	_, err := f.invoices.Generate(f.ctx, f.staff, GenerateInvoiceInput{ServiceRequestID: request.ID})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "status is IN_PROGRESS")
}

func TestGenerateInvoiceOncePerRequest(t *testing.T) {
	f := newFixture(t)
	invoice := f.issuedInvoice(t)

	_, err := f.invoices.Generate(f.ctx, f.staff, GenerateInvoiceInput{ServiceRequestID: invoice.ServiceRequestID})
	assert.ErrorIs(t, err, ErrInvalidTransition, "request is already INVOICED")
}

func TestInvoiceCounterFormat(t *testing.T) {
	f := newFixture(t)
	_, err := f.settings.ConfigureCounter(f.ctx, f.admin, ConfigureCounterInput{
		DocumentType: model.DocumentTypeInvoice,
		Format:       "INV-YYYY-NNNNN",
	})
	require.NoError(t, err)

	invoice := f.issuedInvoice(t)
	assert.Equal(t, fmt.Sprintf("INV-%d-00001", time.Now().Year()), invoice.InvoiceNo)

	next := f.issuedInvoice(t)
	assert.Equal(t, fmt.Sprintf("INV-%d-00002", time.Now().Year()), next.InvoiceNo)
}

func TestConfigureCounterRules(t *testing.T) {
	f := newFixture(t)

	_, err := f.settings.ConfigureCounter(f.ctx, f.manager, ConfigureCounterInput{DocumentType: model.DocumentTypeInvoice, Format: "INV-NNNN"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.settings.ConfigureCounter(f.ctx, f.admin, ConfigureCounterInput{DocumentType: model.DocumentTypeEstimate, Format: "EST-NNNN"})
	assert.ErrorIs(t, err, ErrInvalidInput, "estimates are numbered by scan")

	_, err = f.settings.ConfigureCounter(f.ctx, f.admin, ConfigureCounterInput{DocumentType: model.DocumentTypeReceipt, Format: "RCP-YYYY"})
	assert.ErrorIs(t, err, ErrInvalidInput, "no sequence run")
}

func TestRecordPaymentSettlesInvoice(t *testing.T) {
	f := newFixture(t)
	invoice := f.issuedInvoice(t)

	_, err := f.invoices.RecordPayment(f.ctx, f.staff, invoice.ID, RecordPaymentInput{
		Amount: dec("82.51"),
		Method: model.PaymentMethodCash,
	})
	require.ErrorIs(t, err, ErrPreconditionFailed, "more than the balance")

	result, err := f.invoices.RecordPayment(f.ctx, f.staff, invoice.ID, RecordPaymentInput{
		Amount: dec("82.5"),
		Method: model.PaymentMethodCard,
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, result.Invoice.Status)
	assertAmount(t, "0", result.Invoice.BalanceDue)
	assertAmount(t, "82.5", result.Invoice.PaidAmount)
	assert.NotNil(t, result.Invoice.PaidAt)
	assertAmount(t, "0", result.Receipt.BalanceAfter)
	assert.Equal(t, result.Payment.ID, result.Receipt.PaymentID)
	assert.Equal(t, model.ServiceRequestStatusPaid, f.requestStatus(t, invoice.ServiceRequestID))

	_, err = f.invoices.RecordPayment(f.ctx, f.staff, invoice.ID, RecordPaymentInput{
		Amount: dec("0.01"),
		Method: model.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition, "paid invoices take no more payments")
}

func TestRecordPartialPayments(t *testing.T) {
	f := newFixture(t)
	invoice := f.issuedInvoice(t)

	first, err := f.invoices.RecordPayment(f.ctx, f.staff, invoice.ID, RecordPaymentInput{Amount: dec("40"), Method: model.PaymentMethodBankTransfer})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPartiallyPaid, first.Invoice.Status)
	assertAmount(t, "42.5", first.Receipt.BalanceAfter)
	assert.Equal(t, model.ServiceRequestStatusInvoiced, f.requestStatus(t, invoice.ServiceRequestID))

	second, err := f.invoices.RecordPayment(f.ctx, f.staff, invoice.ID, RecordPaymentInput{Amount: dec("42.5"), Method: model.PaymentMethodCash})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, second.Invoice.Status)
	assert.NotEqual(t, first.Payment.PaymentNo, second.Payment.PaymentNo)
	assert.NotEqual(t, first.Receipt.ReceiptNo, second.Receipt.ReceiptNo)

	stored, err := f.invoices.Get(f.ctx, f.staff, invoice.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Payments, 2)

	receipt, owner, err := f.invoices.GetReceipt(f.ctx, f.staff, second.Receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, owner.ID)
	assertAmount(t, "42.5", receipt.Amount)
}

func TestRecordPaymentValidation(t *testing.T) {
	f := newFixture(t)
	invoice := f.issuedInvoice(t)

	_, err := f.invoices.RecordPayment(f.ctx, f.staff, invoice.ID, RecordPaymentInput{Amount: dec("10.005"), Method: model.PaymentMethodCash})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.invoices.RecordPayment(f.ctx, f.staff, invoice.ID, RecordPaymentInput{Amount: dec("0"), Method: model.PaymentMethodCash})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.invoices.RecordPayment(f.ctx, f.staff, invoice.ID, RecordPaymentInput{Amount: dec("10"), Method: "CHEQUE_BY_PIGEON"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.invoices.RecordPayment(f.ctx, f.tech, invoice.ID, RecordPaymentInput{Amount: dec("10"), Method: model.PaymentMethodCash})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	stored, err := f.invoices.Get(f.ctx, f.staff, invoice.ID)
	require.NoError(t, err)
	assertAmount(t, "0", stored.PaidAmount)
	assert.Empty(t, stored.Payments)
}

func TestCancelInvoiceAllowsReinvoicing(t *testing.T) {
	f := newFixture(t)
	invoice := f.issuedInvoice(t)

	_, err := f.invoices.Cancel(f.ctx, f.staff, invoice.ID)
	require.ErrorIs(t, err, ErrPermissionDenied)

	cancelled, err := f.invoices.Cancel(f.ctx, f.manager, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusCancelled, cancelled.Status)
	assert.Equal(t, model.ServiceRequestStatusCompleted, f.requestStatus(t, invoice.ServiceRequestID))

	reissued, err := f.invoices.Generate(f.ctx, f.staff, GenerateInvoiceInput{ServiceRequestID: invoice.ServiceRequestID})
	require.NoError(t, err)
	assert.NotEqual(t, invoice.ID, reissued.ID)
}

func TestCancelPartiallyPaidInvoiceFails(t *testing.T) {
	f := newFixture(t)
	invoice := f.issuedInvoice(t)
	_, err := f.invoices.RecordPayment(f.ctx, f.staff, invoice.ID, RecordPaymentInput{Amount: dec("10"), Method: model.PaymentMethodCash})
	require.NoError(t, err)

	_, err = f.invoices.Cancel(f.ctx, f.admin, invoice.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
