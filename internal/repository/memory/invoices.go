package memory

import (
	"context"

	"github.com/google/uuid"

	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
)

type invoices struct {
	tx *tx
}

func (r *invoices) Create(ctx context.Context, invoice *model.Invoice) error {
	_ = invoice.BeforeCreate(nil)
	st := r.tx.st
	if _, exists := st.invoices[invoice.ID]; exists {
		return repository.ErrDuplicate
	}
	for _, other := range st.invoices {
		if other.ServiceRequestID == invoice.ServiceRequestID && other.Status != model.InvoiceStatusCancelled {
			return repository.ErrDuplicate
		}
		if other.CompanyID == invoice.CompanyID && other.InvoiceNo == invoice.InvoiceNo {
			return repository.ErrDuplicate
		}
	}

	stamp(&invoice.CreatedAt, &invoice.UpdatedAt, r.tx.now())
	items := make([]model.InvoiceItem, len(invoice.Items))
	for i := range invoice.Items {
		_ = invoice.Items[i].BeforeCreate(nil)
		invoice.Items[i].InvoiceID = invoice.ID
		items[i] = invoice.Items[i]
	}
	st.invoiceItems[invoice.ID] = items

	row := *invoice
	row.Items, row.Payments = nil, nil
	st.invoices[invoice.ID] = row
	return nil
}

func (r *invoices) GetByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	row, ok := r.tx.st.invoices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	row.Items = append([]model.InvoiceItem(nil), r.tx.st.invoiceItems[id]...)
	row.Payments = append([]model.Payment(nil), r.tx.st.payments[id]...)
	return &row, nil
}

func (r *invoices) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *invoices) GetByServiceRequest(ctx context.Context, serviceRequestID uuid.UUID) (*model.Invoice, error) {
	for id, row := range r.tx.st.invoices {
		if row.ServiceRequestID == serviceRequestID && row.Status != model.InvoiceStatusCancelled {
			return r.GetByID(ctx, id)
		}
	}
	return nil, repository.ErrNotFound
}

func (r *invoices) Update(ctx context.Context, invoice *model.Invoice) error {
	if _, ok := r.tx.st.invoices[invoice.ID]; !ok {
		return repository.ErrNotFound
	}
	invoice.UpdatedAt = r.tx.now()
	row := *invoice
	row.Items, row.Payments = nil, nil
	r.tx.st.invoices[invoice.ID] = row
	return nil
}

func (r *invoices) CreatePayment(ctx context.Context, payment *model.Payment) error {
	_ = payment.BeforeCreate(nil)
	for _, list := range r.tx.st.payments {
		for _, other := range list {
			if other.CompanyID == payment.CompanyID && other.PaymentNo == payment.PaymentNo {
				return repository.ErrDuplicate
			}
		}
	}
	stamp(&payment.CreatedAt, nil, r.tx.now())
	r.tx.st.payments[payment.InvoiceID] = append(r.tx.st.payments[payment.InvoiceID], *payment)
	return nil
}

func (r *invoices) CreateReceipt(ctx context.Context, receipt *model.Receipt) error {
	_ = receipt.BeforeCreate(nil)
	for _, other := range r.tx.st.receipts {
		if other.PaymentID == receipt.PaymentID {
			return repository.ErrDuplicate
		}
		if other.CompanyID == receipt.CompanyID && other.ReceiptNo == receipt.ReceiptNo {
			return repository.ErrDuplicate
		}
	}
	r.tx.st.receipts[receipt.ID] = *receipt
	return nil
}

func (r *invoices) GetReceipt(ctx context.Context, id uuid.UUID) (*model.Receipt, error) {
	receipt, ok := r.tx.st.receipts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &receipt, nil
}
