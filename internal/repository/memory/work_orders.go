package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
)

type workOrders struct {
	tx *tx
}

func (r *workOrders) Create(ctx context.Context, workOrder *model.WorkOrder) error {
	_ = workOrder.BeforeCreate(nil)
	st := r.tx.st
	if _, exists := st.workOrders[workOrder.ID]; exists {
		return repository.ErrDuplicate
	}
	for _, other := range st.workOrders {
		if other.CompanyID == workOrder.CompanyID && other.WorkOrderNo == workOrder.WorkOrderNo {
			return repository.ErrDuplicate
		}
	}

	now := r.tx.now()
	stamp(&workOrder.CreatedAt, &workOrder.UpdatedAt, now)

	for i := range workOrder.Items {
		workOrder.Items[i].WorkOrderID = workOrder.ID
		if err := r.AddItem(ctx, &workOrder.Items[i]); err != nil {
			return err
		}
	}
	for i := range workOrder.Checklist {
		workOrder.Checklist[i].WorkOrderID = workOrder.ID
		if err := r.AddChecklistItem(ctx, &workOrder.Checklist[i]); err != nil {
			return err
		}
	}
	if len(workOrder.Team) > 0 {
		if err := r.ReplaceTeam(ctx, workOrder.ID, workOrder.Team); err != nil {
			return err
		}
	}

	st.workOrders[workOrder.ID] = stripWorkOrder(*workOrder)
	return nil
}

func stripWorkOrder(w model.WorkOrder) model.WorkOrder {
	w.Team, w.Items, w.Labor, w.Checklist, w.Photos = nil, nil, nil, nil, nil
	return w
}

func (r *workOrders) GetByID(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error) {
	st := r.tx.st
	row, ok := st.workOrders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	row.Team = append([]model.WorkOrderTeam(nil), st.workOrderTeam[id]...)
	row.Items = append([]model.WorkOrderItem(nil), st.workOrderItems[id]...)
	row.Labor = append([]model.WorkOrderLabor(nil), st.workOrderLabor[id]...)
	row.Checklist = append([]model.WorkOrderChecklist(nil), st.workOrderChecklist[id]...)
	row.Photos = append([]model.WorkOrderPhoto(nil), st.workOrderPhotos[id]...)
	sort.SliceStable(row.Checklist, func(i, j int) bool { return row.Checklist[i].SortOrder < row.Checklist[j].SortOrder })
	return &row, nil
}

func (r *workOrders) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *workOrders) Update(ctx context.Context, workOrder *model.WorkOrder) error {
	if _, ok := r.tx.st.workOrders[workOrder.ID]; !ok {
		return repository.ErrNotFound
	}
	workOrder.UpdatedAt = r.tx.now()
	r.tx.st.workOrders[workOrder.ID] = stripWorkOrder(*workOrder)
	return nil
}

func (r *workOrders) Delete(ctx context.Context, id uuid.UUID) error {
	st := r.tx.st
	if _, ok := st.workOrders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(st.workOrders, id)
	delete(st.workOrderTeam, id)
	delete(st.workOrderItems, id)
	delete(st.workOrderLabor, id)
	delete(st.workOrderChecklist, id)
	delete(st.workOrderPhotos, id)
	delete(st.workOrderActivity, id)
	return nil
}

func (r *workOrders) List(ctx context.Context, filter repository.WorkOrderListFilter) ([]model.WorkOrder, error) {
	var result []model.WorkOrder
	for id, row := range r.tx.st.workOrders {
		if row.CompanyID != filter.CompanyID {
			continue
		}
		if filter.ServiceRequestID != nil && row.ServiceRequestID != *filter.ServiceRequestID {
			continue
		}
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		if filter.EmployeeID != nil && !r.onTeam(id, *filter.EmployeeID) {
			continue
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *workOrders) onTeam(workOrderID, employeeID uuid.UUID) bool {
	for _, member := range r.tx.st.workOrderTeam[workOrderID] {
		if member.EmployeeID == employeeID {
			return true
		}
	}
	return false
}

func (r *workOrders) ListByServiceRequest(ctx context.Context, serviceRequestID uuid.UUID) ([]model.WorkOrder, error) {
	var result []model.WorkOrder
	for id, row := range r.tx.st.workOrders {
		if row.ServiceRequestID != serviceRequestID {
			continue
		}
		row.Items = append([]model.WorkOrderItem(nil), r.tx.st.workOrderItems[id]...)
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *workOrders) ReplaceTeam(ctx context.Context, workOrderID uuid.UUID, members []model.WorkOrderTeam) error {
	roster := make([]model.WorkOrderTeam, len(members))
	for i := range members {
		members[i].ID = uuid.Nil
		_ = members[i].BeforeCreate(nil)
		members[i].WorkOrderID = workOrderID
		roster[i] = members[i]
	}
	r.tx.st.workOrderTeam[workOrderID] = roster
	return nil
}

func (r *workOrders) AddItem(ctx context.Context, item *model.WorkOrderItem) error {
	_ = item.BeforeCreate(nil)
	stamp(&item.CreatedAt, nil, r.tx.now())
	r.tx.st.workOrderItems[item.WorkOrderID] = append(r.tx.st.workOrderItems[item.WorkOrderID], *item)
	return nil
}

func (r *workOrders) ListItems(ctx context.Context, workOrderID uuid.UUID) ([]model.WorkOrderItem, error) {
	return append([]model.WorkOrderItem(nil), r.tx.st.workOrderItems[workOrderID]...), nil
}

func (r *workOrders) CreateLabor(ctx context.Context, entry *model.WorkOrderLabor) error {
	_ = entry.BeforeCreate(nil)
	if entry.IsOpen() {
		for _, other := range r.tx.st.workOrderLabor[entry.WorkOrderID] {
			if other.EmployeeID == entry.EmployeeID && other.IsOpen() {
				return repository.ErrDuplicate
			}
		}
	}
	stamp(&entry.CreatedAt, &entry.UpdatedAt, r.tx.now())
	r.tx.st.workOrderLabor[entry.WorkOrderID] = append(r.tx.st.workOrderLabor[entry.WorkOrderID], *entry)
	return nil
}

func (r *workOrders) UpdateLabor(ctx context.Context, entry *model.WorkOrderLabor) error {
	entries := r.tx.st.workOrderLabor[entry.WorkOrderID]
	for i := range entries {
		if entries[i].ID == entry.ID {
			entry.UpdatedAt = r.tx.now()
			entries[i] = *entry
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *workOrders) ListLabor(ctx context.Context, workOrderID uuid.UUID) ([]model.WorkOrderLabor, error) {
	return append([]model.WorkOrderLabor(nil), r.tx.st.workOrderLabor[workOrderID]...), nil
}

func (r *workOrders) FindOpenLabor(ctx context.Context, workOrderID, employeeID uuid.UUID) (*model.WorkOrderLabor, error) {
	entries := r.tx.st.workOrderLabor[workOrderID]
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].EmployeeID == employeeID && entries[i].IsOpen() {
			entry := entries[i]
			return &entry, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *workOrders) AddChecklistItem(ctx context.Context, item *model.WorkOrderChecklist) error {
	_ = item.BeforeCreate(nil)
	r.tx.st.workOrderChecklist[item.WorkOrderID] = append(r.tx.st.workOrderChecklist[item.WorkOrderID], *item)
	return nil
}

func (r *workOrders) GetChecklistItem(ctx context.Context, id uuid.UUID) (*model.WorkOrderChecklist, error) {
	for _, items := range r.tx.st.workOrderChecklist {
		for _, item := range items {
			if item.ID == id {
				found := item
				return &found, nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (r *workOrders) UpdateChecklistItem(ctx context.Context, item *model.WorkOrderChecklist) error {
	items := r.tx.st.workOrderChecklist[item.WorkOrderID]
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = *item
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *workOrders) AddPhoto(ctx context.Context, photo *model.WorkOrderPhoto) error {
	_ = photo.BeforeCreate(nil)
	stamp(&photo.CreatedAt, nil, r.tx.now())
	r.tx.st.workOrderPhotos[photo.WorkOrderID] = append(r.tx.st.workOrderPhotos[photo.WorkOrderID], *photo)
	return nil
}

func (r *workOrders) AddActivity(ctx context.Context, activity *model.WorkOrderActivity) error {
	_ = activity.BeforeCreate(nil)
	stamp(&activity.CreatedAt, nil, r.tx.now())
	r.tx.st.workOrderActivity[activity.WorkOrderID] = append(r.tx.st.workOrderActivity[activity.WorkOrderID], *activity)
	return nil
}

func (r *workOrders) ListActivities(ctx context.Context, workOrderID uuid.UUID) ([]model.WorkOrderActivity, error) {
	return append([]model.WorkOrderActivity(nil), r.tx.st.workOrderActivity[workOrderID]...), nil
}
