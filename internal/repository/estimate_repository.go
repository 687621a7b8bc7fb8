package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fieldops-service/internal/model"
)

type estimateRepository struct {
	db *gorm.DB
}

func (r *estimateRepository) Create(ctx context.Context, estimate *model.Estimate) error {
	return translateError(r.db.WithContext(ctx).Create(estimate).Error)
}

func (r *estimateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	var estimate model.Estimate
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("LaborItems", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("id = ?", id).
		First(&estimate).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &estimate, nil
}

func (r *estimateRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	if err := lockRow(ctx, r.db, model.Estimate{}.TableName(), id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *estimateRepository) Update(ctx context.Context, estimate *model.Estimate) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(estimate).Error)
}

func (r *estimateRepository) ReplaceItems(ctx context.Context, estimateID uuid.UUID, items []model.EstimateItem, labor []model.EstimateLaborItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("estimate_id = ?", estimateID).Delete(&model.EstimateItem{}).Error; err != nil {
		return translateError(err)
	}
	if err := db.Where("estimate_id = ?", estimateID).Delete(&model.EstimateLaborItem{}).Error; err != nil {
		return translateError(err)
	}
	for i := range items {
		items[i].ID = uuid.Nil
		items[i].EstimateID = estimateID
	}
	for i := range labor {
		labor[i].ID = uuid.Nil
		labor[i].EstimateID = estimateID
	}
	if len(items) > 0 {
		if err := db.Create(&items).Error; err != nil {
			return translateError(err)
		}
	}
	if len(labor) > 0 {
		if err := db.Create(&labor).Error; err != nil {
			return translateError(err)
		}
	}
	return nil
}

func (r *estimateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Estimate{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *estimateRepository) ClearLatestVersion(ctx context.Context, familyID uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Model(&model.Estimate{}).
		Where("id = ? OR parent_estimate_id = ?", familyID, familyID).
		Update("is_latest_version", false).Error)
}

func (r *estimateRepository) List(ctx context.Context, filter EstimateListFilter) ([]model.Estimate, error) {
	var estimates []model.Estimate
	query := r.db.WithContext(ctx).Model(&model.Estimate{}).
		Where("company_id = ?", filter.CompanyID)

	if filter.ServiceRequestID != nil {
		query = query.Where("service_request_id = ?", *filter.ServiceRequestID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.LatestOnly {
		query = query.Where("is_latest_version = ?", true)
	}

	if err := query.Order("created_at DESC").Find(&estimates).Error; err != nil {
		return nil, translateError(err)
	}
	return estimates, nil
}

func (r *estimateRepository) AddActivity(ctx context.Context, activity *model.EstimateActivity) error {
	return translateError(r.db.WithContext(ctx).Create(activity).Error)
}

func (r *estimateRepository) ListActivities(ctx context.Context, estimateID uuid.UUID) ([]model.EstimateActivity, error) {
	var activities []model.EstimateActivity
	err := r.db.WithContext(ctx).
		Where("estimate_id = ?", estimateID).
		Order("created_at ASC").
		Find(&activities).Error
	return activities, translateError(err)
}
