package document

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops-service/internal/model"
)

func sampleInvoice() *model.Invoice {
	notes := "Thank you for your business"
	paymentID := uuid.New()
	return &model.Invoice{
		ID:         uuid.New(),
		InvoiceNo:  "INV-2026-00001",
		Status:     model.InvoiceStatusPartiallyPaid,
		Subtotal:   decimal.RequireFromString("75"),
		VatRate:    decimal.RequireFromString("10"),
		VatAmount:  decimal.RequireFromString("7.5"),
		Total:      decimal.RequireFromString("82.5"),
		PaidAmount: decimal.RequireFromString("40"),
		BalanceDue: decimal.RequireFromString("42.5"),
		IssuedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Notes:      &notes,
		Items: []model.InvoiceItem{
			{Description: "Valve", Quantity: decimal.RequireFromString("2"), UnitPrice: decimal.RequireFromString("12.5"), TotalPrice: decimal.RequireFromString("25")},
			{Description: "Service charge", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("50"), TotalPrice: decimal.RequireFromString("50")},
		},
		Payments: []model.Payment{
			{ID: paymentID, PaymentNo: "PAY-2026-A1B2C3", Amount: decimal.RequireFromString("40"), Method: model.PaymentMethodCash},
		},
	}
}

func TestRenderInvoice(t *testing.T) {
	out, err := RenderInvoice(sampleInvoice())
	require.NoError(t, err)
	assert.True(t, len(out) > 100)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestRenderReceipt(t *testing.T) {
	invoice := sampleInvoice()
	receipt := &model.Receipt{
		ID:           uuid.New(),
		InvoiceID:    invoice.ID,
		PaymentID:    invoice.Payments[0].ID,
		ReceiptNo:    "RCP-2026-D4E5F6",
		Amount:       decimal.RequireFromString("40"),
		BalanceAfter: decimal.RequireFromString("42.5"),
		IssuedAt:     time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}

	out, err := RenderReceipt(receipt, invoice)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}
