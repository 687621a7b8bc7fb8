package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fieldops-service/internal/model"
)

type invoiceRepository struct {
	db *gorm.DB
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return translateError(r.db.WithContext(ctx).Omit("Payments").Create(invoice).Error)
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC") }).
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	if err := lockRow(ctx, r.db, model.Invoice{}.TableName(), id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *invoiceRepository) GetByServiceRequest(ctx context.Context, serviceRequestID uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Where("service_request_id = ? AND status <> ?", serviceRequestID, model.InvoiceStatusCancelled).
		First(&invoice).Error
	if err != nil {
		return nil, translateError(err)
	}
	return r.GetByID(ctx, invoice.ID)
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(invoice).Error)
}

func (r *invoiceRepository) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return translateError(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *invoiceRepository) CreateReceipt(ctx context.Context, receipt *model.Receipt) error {
	return translateError(r.db.WithContext(ctx).Create(receipt).Error)
}

func (r *invoiceRepository) GetReceipt(ctx context.Context, id uuid.UUID) (*model.Receipt, error) {
	var receipt model.Receipt
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&receipt).Error; err != nil {
		return nil, translateError(err)
	}
	return &receipt, nil
}
