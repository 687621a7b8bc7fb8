package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fieldops-service/internal/model"
)

type counterRepository struct {
	db *gorm.DB
}

type numberColumn struct {
	table  string
	column string
}

var numberColumns = map[model.DocumentType]numberColumn{
	model.DocumentTypeEstimate:  {"estimates", "estimate_no"},
	model.DocumentTypeQuote:     {"quotes", "quote_no"},
	model.DocumentTypeWorkOrder: {"work_orders", "work_order_no"},
	model.DocumentTypeInvoice:   {"invoices", "invoice_no"},
	model.DocumentTypeReceipt:   {"receipts", "receipt_no"},
	model.DocumentTypePayment:   {"payments", "payment_no"},
}

func (r *counterRepository) LatestNumber(ctx context.Context, companyID uuid.UUID, docType model.DocumentType, prefix string) (string, error) {
	target, ok := numberColumns[docType]
	if !ok {
		return "", fmt.Errorf("unknown document type %q", docType)
	}

	// Revision suffixes ("-R2") are excluded; longer sequences sort first.
	var numbers []string
	err := r.db.WithContext(ctx).
		Table(target.table).
		Where("company_id = ?", companyID).
		Where(target.column+" LIKE ?", prefix+"%").
		Where(target.column+" NOT LIKE ?", prefix+"%-%").
		Order("length("+target.column+") DESC").
		Order(target.column+" DESC").
		Limit(1).
		Pluck(target.column, &numbers).Error
	if err != nil {
		return "", translateError(err)
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

func (r *counterRepository) Increment(ctx context.Context, companyID uuid.UUID, docType model.DocumentType) (int64, string, error) {
	var row struct {
		LastValue int64
		Format    string
	}
	res := r.db.WithContext(ctx).Raw(
		`UPDATE document_counters
		SET last_value = last_value + 1, updated_at = NOW()
		WHERE company_id = ? AND document_type = ?
		RETURNING last_value, format`,
		companyID, docType,
	).Scan(&row)
	if res.Error != nil {
		return 0, "", translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, "", ErrNotFound
	}
	return row.LastValue, row.Format, nil
}

func (r *counterRepository) Configure(ctx context.Context, counter *model.DocumentCounter) error {
	return translateError(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "document_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"format", "updated_at"}),
		}).
		Create(counter).Error)
}
