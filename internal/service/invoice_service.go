package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fieldops-service/internal/model"
	"fieldops-service/internal/numbering"
	"fieldops-service/internal/pricing"
	"fieldops-service/internal/repository"
)

type InvoiceService struct {
	engine
}

func NewInvoiceService(store repository.Store, numbers *numbering.Generator, opts Options, log zerolog.Logger) *InvoiceService {
	return &InvoiceService{engine: newEngine(store, numbers, opts, log)}
}

type GenerateInvoiceInput struct {
	ServiceRequestID uuid.UUID        `json:"service_request_id" validate:"required"`
	DueDate          *time.Time       `json:"due_date"`
	VatRate          *decimal.Decimal `json:"vat_rate" validate:"omitempty,gte=0,lte=100,scale=2"`
	Notes            *string          `json:"notes"`
}

// Generate issues the invoice of a COMPLETED service request. Lines are the
// non-labor items of its completed work orders, any additional cost recorded at
// completion and the request's service charge.
func (s *InvoiceService) Generate(ctx context.Context, principal model.Principal, input GenerateInvoiceInput) (*model.Invoice, error) {
	if principal.IsTechnician() {
		return nil, ErrPermissionDenied
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	vatRate := s.opts.DefaultVatRate
	if input.VatRate != nil {
		vatRate = *input.VatRate
	}

	var invoice *model.Invoice
	err := s.numbered(ctx, func(tx repository.Tx) error {
		request, err := loadServiceRequest(ctx, tx, principal, input.ServiceRequestID)
		if err != nil {
			return err
		}
		if request.Status != model.ServiceRequestStatusCompleted {
			return transitionError("service request", request.ID.String(), "invoiced", request.Status,
				[]model.ServiceRequestStatus{model.ServiceRequestStatusCompleted})
		}
		existing, err := tx.Invoices().GetByServiceRequest(ctx, request.ID)
		if err == nil {
			return fmt.Errorf("service request already has invoice %s: %w", existing.InvoiceNo, ErrConflict)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		lines, err := s.invoiceLines(ctx, tx, request)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return &PreconditionError{Rule: "service request has nothing to invoice"}
		}

		number, err := s.numbers.Next(ctx, tx.Counters(), principal.CompanyID, model.DocumentTypeInvoice)
		if err != nil {
			return err
		}
		invoice = &model.Invoice{
			CompanyID:        principal.CompanyID,
			InvoiceNo:        number,
			ServiceRequestID: request.ID,
			Status:           model.InvoiceStatusIssued,
			VatRate:          vatRate,
			PaidAmount:       decimal.Zero,
			IssuedAt:         *s.timestamp(),
			DueDate:          input.DueDate,
			Notes:            input.Notes,
			CreatedBy:        principal.UserID,
			Items:            lines,
		}
		pricing.ApplyInvoice(invoice)

		if err := tx.Invoices().Create(ctx, invoice); err != nil {
			return err
		}
		return setServiceRequestStatus(ctx, tx, request.ID, model.ServiceRequestStatusInvoiced)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("invoice_no", invoice.InvoiceNo).Str("total", moneyString(invoice.Total)).Msg("invoice issued")
	return invoice, nil
}

func (s *InvoiceService) invoiceLines(ctx context.Context, tx repository.Tx, request *model.ServiceRequest) ([]model.InvoiceItem, error) {
	workOrders, err := tx.WorkOrders().ListByServiceRequest(ctx, request.ID)
	if err != nil {
		return nil, err
	}
	var lines []model.InvoiceItem
	add := func(itemType model.ItemType, description string, quantity, unitPrice decimal.Decimal) {
		lines = append(lines, model.InvoiceItem{
			ItemType:    itemType,
			Description: description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			SortOrder:   len(lines),
		})
	}

	one := decimal.NewFromInt(1)
	for _, workOrder := range workOrders {
		if workOrder.Status != model.WorkOrderStatusCompleted {
			continue
		}
		for _, item := range workOrder.Items {
			if item.ItemType == model.ItemTypeLabor {
				continue
			}
			add(item.ItemType, item.Name, item.Quantity, item.UnitCost)
		}
		if workOrder.AdditionalCost.IsPositive() {
			add(model.ItemTypeOther, "Additional work "+workOrder.WorkOrderNo, one, workOrder.AdditionalCost)
		}
	}
	if request.ServiceCharge.IsPositive() {
		add(model.ItemTypeService, "Service charge", one, request.ServiceCharge)
	}
	return lines, nil
}

type RecordPaymentInput struct {
	Amount    decimal.Decimal     `json:"amount" validate:"gt=0,scale=2"`
	Method    model.PaymentMethod `json:"method" validate:"required,enum"`
	Reference *string             `json:"reference" validate:"omitempty,max=128"`
	PaidAt    *time.Time          `json:"paid_at"`
}

type PaymentResult struct {
	Invoice *model.Invoice `json:"invoice"`
	Payment *model.Payment `json:"payment"`
	Receipt *model.Receipt `json:"receipt"`
}

// RecordPayment applies a payment to an ISSUED or PARTIALLY_PAID invoice and
// issues its receipt. The amount may not exceed the balance due. Settling the
// balance marks the invoice and its service request PAID.
func (s *InvoiceService) RecordPayment(ctx context.Context, principal model.Principal, invoiceID uuid.UUID, input RecordPaymentInput) (*PaymentResult, error) {
	if principal.IsTechnician() {
		return nil, ErrPermissionDenied
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var result *PaymentResult
	err := s.numbered(ctx, func(tx repository.Tx) error {
		invoice, err := s.load(ctx, tx, principal, invoiceID)
		if err != nil {
			return err
		}
		if err := requireStatus("invoice", invoice.InvoiceNo, "paid", invoice.Status,
			model.InvoiceStatusIssued, model.InvoiceStatusPartiallyPaid); err != nil {
			return err
		}
		if input.Amount.GreaterThan(invoice.BalanceDue) {
			return &PreconditionError{Rule: fmt.Sprintf("payment of %s exceeds balance due %s on invoice %s",
				moneyString(input.Amount), moneyString(invoice.BalanceDue), invoice.InvoiceNo)}
		}

		now := s.timestamp()
		paidAt := *now
		if input.PaidAt != nil {
			paidAt = input.PaidAt.UTC()
		}
		paymentNo, err := s.numbers.Next(ctx, tx.Counters(), principal.CompanyID, model.DocumentTypePayment)
		if err != nil {
			return err
		}
		payment := &model.Payment{
			CompanyID:  principal.CompanyID,
			InvoiceID:  invoice.ID,
			PaymentNo:  paymentNo,
			Amount:     input.Amount,
			Method:     input.Method,
			Reference:  input.Reference,
			ReceivedBy: principal.UserID,
			PaidAt:     paidAt,
		}
		if err := tx.Invoices().CreatePayment(ctx, payment); err != nil {
			return err
		}

		invoice.PaidAmount = invoice.PaidAmount.Add(input.Amount)
		invoice.BalanceDue = invoice.Total.Sub(invoice.PaidAmount)
		next := model.InvoiceStatusPartiallyPaid
		if invoice.BalanceDue.IsZero() {
			next = model.InvoiceStatusPaid
			invoice.PaidAt = now
		}
		invoice.Status = next
		if err := tx.Invoices().Update(ctx, invoice); err != nil {
			return err
		}

		receiptNo, err := s.numbers.Next(ctx, tx.Counters(), principal.CompanyID, model.DocumentTypeReceipt)
		if err != nil {
			return err
		}
		receipt := &model.Receipt{
			CompanyID:    principal.CompanyID,
			InvoiceID:    invoice.ID,
			PaymentID:    payment.ID,
			ReceiptNo:    receiptNo,
			Amount:       payment.Amount,
			BalanceAfter: invoice.BalanceDue,
			IssuedAt:     *now,
		}
		if err := tx.Invoices().CreateReceipt(ctx, receipt); err != nil {
			return err
		}

		if next == model.InvoiceStatusPaid {
			if err := setServiceRequestStatus(ctx, tx, invoice.ServiceRequestID, model.ServiceRequestStatusPaid); err != nil {
				return err
			}
		}
		invoice.Payments = append(invoice.Payments, *payment)
		result = &PaymentResult{Invoice: invoice, Payment: payment, Receipt: receipt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice_no", result.Invoice.InvoiceNo).
		Str("amount", moneyString(result.Payment.Amount)).
		Str("status", string(result.Invoice.Status)).
		Msg("payment recorded")
	return result, nil
}

// Cancel voids an invoice that has received no payment. The service request
// returns to COMPLETED so that it can be invoiced again.
func (s *InvoiceService) Cancel(ctx context.Context, principal model.Principal, invoiceID uuid.UUID) (*model.Invoice, error) {
	if !principal.IsAdmin() && !principal.IsManager() {
		return nil, ErrPermissionDenied
	}
	var invoice *model.Invoice
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		found, err := s.load(ctx, tx, principal, invoiceID)
		if err != nil {
			return err
		}
		if !found.Status.CanTransitionTo(model.InvoiceStatusCancelled) || !found.PaidAmount.IsZero() {
			return transitionError("invoice", found.InvoiceNo, "cancelled", found.Status,
				[]model.InvoiceStatus{model.InvoiceStatusIssued})
		}
		found.Status = model.InvoiceStatusCancelled
		found.CancelledAt = s.timestamp()
		if err := tx.Invoices().Update(ctx, found); err != nil {
			return err
		}
		invoice = found
		return setServiceRequestStatus(ctx, tx, found.ServiceRequestID, model.ServiceRequestStatusCompleted)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Invoice, error) {
	var invoice *model.Invoice
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		found, err := tx.Invoices().GetByID(ctx, id)
		if err != nil {
			return translate(err, "invoice", id)
		}
		if found.CompanyID != principal.CompanyID {
			return notFound("invoice", id)
		}
		invoice = found
		return nil
	})
	return invoice, err
}

// GetReceipt returns a receipt together with the invoice it was issued against.
func (s *InvoiceService) GetReceipt(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Receipt, *model.Invoice, error) {
	var (
		receipt *model.Receipt
		invoice *model.Invoice
	)
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		found, err := tx.Invoices().GetReceipt(ctx, id)
		if err != nil {
			return translate(err, "receipt", id)
		}
		if found.CompanyID != principal.CompanyID {
			return notFound("receipt", id)
		}
		inv, err := tx.Invoices().GetByID(ctx, found.InvoiceID)
		if err != nil {
			return translate(err, "invoice", found.InvoiceID)
		}
		receipt, invoice = found, inv
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return receipt, invoice, nil
}

func (s *InvoiceService) load(ctx context.Context, tx repository.Tx, principal model.Principal, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := tx.Invoices().GetForUpdate(ctx, id)
	if err != nil {
		return nil, translate(err, "invoice", id)
	}
	if invoice.CompanyID != principal.CompanyID {
		return nil, notFound("invoice", id)
	}
	return invoice, nil
}
