package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fieldops-service/internal/model"
)

type workOrderRepository struct {
	db *gorm.DB
}

func (r *workOrderRepository) Create(ctx context.Context, workOrder *model.WorkOrder) error {
	return translateError(r.db.WithContext(ctx).Create(workOrder).Error)
}

func (r *workOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error) {
	var workOrder model.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Team").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Labor", func(db *gorm.DB) *gorm.DB { return db.Order("clock_in_at ASC") }).
		Preload("Checklist", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&workOrder).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &workOrder, nil
}

func (r *workOrderRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error) {
	if err := lockRow(ctx, r.db, model.WorkOrder{}.TableName(), id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *workOrderRepository) Update(ctx context.Context, workOrder *model.WorkOrder) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(workOrder).Error)
}

func (r *workOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.WorkOrder{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workOrderRepository) List(ctx context.Context, filter WorkOrderListFilter) ([]model.WorkOrder, error) {
	var workOrders []model.WorkOrder
	query := r.db.WithContext(ctx).Model(&model.WorkOrder{}).
		Where("work_orders.company_id = ?", filter.CompanyID)

	if filter.ServiceRequestID != nil {
		query = query.Where("work_orders.service_request_id = ?", *filter.ServiceRequestID)
	}
	if filter.Status != nil {
		query = query.Where("work_orders.status = ?", *filter.Status)
	}
	if filter.EmployeeID != nil {
		query = query.Joins("JOIN work_order_team wt ON wt.work_order_id = work_orders.id").
			Where("wt.employee_id = ?", *filter.EmployeeID)
	}

	if err := query.Order("work_orders.created_at DESC").Find(&workOrders).Error; err != nil {
		return nil, translateError(err)
	}
	return workOrders, nil
}

func (r *workOrderRepository) ListByServiceRequest(ctx context.Context, serviceRequestID uuid.UUID) ([]model.WorkOrder, error) {
	var workOrders []model.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("service_request_id = ?", serviceRequestID).
		Order("created_at ASC").
		Find(&workOrders).Error
	return workOrders, translateError(err)
}

func (r *workOrderRepository) ReplaceTeam(ctx context.Context, workOrderID uuid.UUID, members []model.WorkOrderTeam) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("work_order_id = ?", workOrderID).Delete(&model.WorkOrderTeam{}).Error; err != nil {
		return translateError(err)
	}
	if len(members) == 0 {
		return nil
	}
	for i := range members {
		members[i].ID = uuid.Nil
		members[i].WorkOrderID = workOrderID
	}
	return translateError(db.Create(&members).Error)
}

func (r *workOrderRepository) AddItem(ctx context.Context, item *model.WorkOrderItem) error {
	return translateError(r.db.WithContext(ctx).Create(item).Error)
}

func (r *workOrderRepository) ListItems(ctx context.Context, workOrderID uuid.UUID) ([]model.WorkOrderItem, error) {
	var items []model.WorkOrderItem
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&items).Error
	return items, translateError(err)
}

func (r *workOrderRepository) CreateLabor(ctx context.Context, entry *model.WorkOrderLabor) error {
	return translateError(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *workOrderRepository) UpdateLabor(ctx context.Context, entry *model.WorkOrderLabor) error {
	return translateError(r.db.WithContext(ctx).Save(entry).Error)
}

func (r *workOrderRepository) ListLabor(ctx context.Context, workOrderID uuid.UUID) ([]model.WorkOrderLabor, error) {
	var entries []model.WorkOrderLabor
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("clock_in_at ASC").
		Find(&entries).Error
	return entries, translateError(err)
}

func (r *workOrderRepository) FindOpenLabor(ctx context.Context, workOrderID, employeeID uuid.UUID) (*model.WorkOrderLabor, error) {
	var entry model.WorkOrderLabor
	err := r.db.WithContext(ctx).
		Where("work_order_id = ? AND employee_id = ? AND clock_out_at IS NULL", workOrderID, employeeID).
		Order("clock_in_at DESC").
		First(&entry).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &entry, nil
}

func (r *workOrderRepository) AddChecklistItem(ctx context.Context, item *model.WorkOrderChecklist) error {
	return translateError(r.db.WithContext(ctx).Create(item).Error)
}

func (r *workOrderRepository) GetChecklistItem(ctx context.Context, id uuid.UUID) (*model.WorkOrderChecklist, error) {
	var item model.WorkOrderChecklist
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

func (r *workOrderRepository) UpdateChecklistItem(ctx context.Context, item *model.WorkOrderChecklist) error {
	return translateError(r.db.WithContext(ctx).Save(item).Error)
}

func (r *workOrderRepository) AddPhoto(ctx context.Context, photo *model.WorkOrderPhoto) error {
	return translateError(r.db.WithContext(ctx).Create(photo).Error)
}

func (r *workOrderRepository) AddActivity(ctx context.Context, activity *model.WorkOrderActivity) error {
	return translateError(r.db.WithContext(ctx).Create(activity).Error)
}

func (r *workOrderRepository) ListActivities(ctx context.Context, workOrderID uuid.UUID) ([]model.WorkOrderActivity, error) {
	var activities []model.WorkOrderActivity
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&activities).Error
	return activities, translateError(err)
}
