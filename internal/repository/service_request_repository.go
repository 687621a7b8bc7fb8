package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldops-service/internal/model"
)

type serviceRequestRepository struct {
	db *gorm.DB
}

func (r *serviceRequestRepository) Create(ctx context.Context, request *model.ServiceRequest) error {
	return translateError(r.db.WithContext(ctx).Create(request).Error)
}

func (r *serviceRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var request model.ServiceRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		return nil, translateError(err)
	}
	return &request, nil
}

func (r *serviceRequestRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	if err := lockRow(ctx, r.db, model.ServiceRequest{}.TableName(), id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *serviceRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ServiceRequestStatus) error {
	res := r.db.WithContext(ctx).Model(&model.ServiceRequest{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *serviceRequestRepository) CreateSiteVisit(ctx context.Context, visit *model.SiteVisit) error {
	return translateError(r.db.WithContext(ctx).Create(visit).Error)
}

func (r *serviceRequestRepository) GetSiteVisit(ctx context.Context, id uuid.UUID) (*model.SiteVisit, error) {
	var visit model.SiteVisit
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&visit).Error; err != nil {
		return nil, translateError(err)
	}
	return &visit, nil
}
