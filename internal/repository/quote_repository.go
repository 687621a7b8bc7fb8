package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fieldops-service/internal/model"
)

type quoteRepository struct {
	db *gorm.DB
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return translateError(r.db.WithContext(ctx).Create(quote).Error)
}

func (r *quoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &quote, nil
}

func (r *quoteRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	if err := lockRow(ctx, r.db, model.Quote{}.TableName(), id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *quoteRepository) Update(ctx context.Context, quote *model.Quote) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(quote).Error)
}

func (r *quoteRepository) List(ctx context.Context, filter QuoteListFilter) ([]model.Quote, error) {
	var quotes []model.Quote
	query := r.db.WithContext(ctx).Model(&model.Quote{}).
		Where("company_id = ?", filter.CompanyID)

	if filter.ServiceRequestID != nil {
		query = query.Where("service_request_id = ?", *filter.ServiceRequestID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Order("created_at DESC").Find(&quotes).Error; err != nil {
		return nil, translateError(err)
	}
	return quotes, nil
}

// ListExpired locks the overdue SENT quotes it returns. Rows already locked by
// an accept, reject or cancel are skipped and left to that transaction.
func (r *quoteRepository) ListExpired(ctx context.Context, asOf time.Time) ([]model.Quote, error) {
	var quotes []model.Quote
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND valid_until < ?", model.QuoteStatusSent, asOf).
		Order("valid_until ASC").
		Find(&quotes).Error
	return quotes, translateError(err)
}
