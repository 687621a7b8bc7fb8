package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
)

type estimates struct {
	tx *tx
}

func (r *estimates) Create(ctx context.Context, estimate *model.Estimate) error {
	_ = estimate.BeforeCreate(nil)
	st := r.tx.st
	if _, exists := st.estimates[estimate.ID]; exists {
		return repository.ErrDuplicate
	}
	for _, other := range st.estimates {
		if other.CompanyID == estimate.CompanyID && other.EstimateNo == estimate.EstimateNo {
			return repository.ErrDuplicate
		}
	}

	stamp(&estimate.CreatedAt, &estimate.UpdatedAt, r.tx.now())
	if err := r.ReplaceItems(ctx, estimate.ID, estimate.Items, estimate.LaborItems); err != nil {
		return err
	}
	row := *estimate
	row.Items, row.LaborItems = nil, nil
	st.estimates[estimate.ID] = row
	return nil
}

func (r *estimates) GetByID(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	row, ok := r.tx.st.estimates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	row.Items = append([]model.EstimateItem(nil), r.tx.st.estimateItems[id]...)
	row.LaborItems = append([]model.EstimateLaborItem(nil), r.tx.st.estimateLabor[id]...)
	sort.SliceStable(row.Items, func(i, j int) bool { return row.Items[i].SortOrder < row.Items[j].SortOrder })
	sort.SliceStable(row.LaborItems, func(i, j int) bool { return row.LaborItems[i].SortOrder < row.LaborItems[j].SortOrder })
	return &row, nil
}

func (r *estimates) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	return r.GetByID(ctx, id)
}

func (r *estimates) Update(ctx context.Context, estimate *model.Estimate) error {
	if _, ok := r.tx.st.estimates[estimate.ID]; !ok {
		return repository.ErrNotFound
	}
	estimate.UpdatedAt = r.tx.now()
	row := *estimate
	row.Items, row.LaborItems = nil, nil
	r.tx.st.estimates[estimate.ID] = row
	return nil
}

func (r *estimates) ReplaceItems(ctx context.Context, estimateID uuid.UUID, items []model.EstimateItem, labor []model.EstimateLaborItem) error {
	newItems := make([]model.EstimateItem, len(items))
	for i := range items {
		items[i].ID = uuid.Nil
		_ = items[i].BeforeCreate(nil)
		items[i].EstimateID = estimateID
		newItems[i] = items[i]
	}
	newLabor := make([]model.EstimateLaborItem, len(labor))
	for i := range labor {
		labor[i].ID = uuid.Nil
		_ = labor[i].BeforeCreate(nil)
		labor[i].EstimateID = estimateID
		newLabor[i] = labor[i]
	}
	r.tx.st.estimateItems[estimateID] = newItems
	r.tx.st.estimateLabor[estimateID] = newLabor
	return nil
}

func (r *estimates) Delete(ctx context.Context, id uuid.UUID) error {
	st := r.tx.st
	if _, ok := st.estimates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(st.estimates, id)
	delete(st.estimateItems, id)
	delete(st.estimateLabor, id)
	delete(st.estimateActivities, id)
	return nil
}

func (r *estimates) ClearLatestVersion(ctx context.Context, familyID uuid.UUID) error {
	for id, row := range r.tx.st.estimates {
		if row.FamilyID() == familyID {
			row.IsLatestVersion = false
			r.tx.st.estimates[id] = row
		}
	}
	return nil
}

func (r *estimates) List(ctx context.Context, filter repository.EstimateListFilter) ([]model.Estimate, error) {
	var result []model.Estimate
	for _, row := range r.tx.st.estimates {
		if row.CompanyID != filter.CompanyID {
			continue
		}
		if filter.ServiceRequestID != nil && row.ServiceRequestID != *filter.ServiceRequestID {
			continue
		}
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		if filter.LatestOnly && !row.IsLatestVersion {
			continue
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *estimates) AddActivity(ctx context.Context, activity *model.EstimateActivity) error {
	_ = activity.BeforeCreate(nil)
	stamp(&activity.CreatedAt, nil, r.tx.now())
	r.tx.st.estimateActivities[activity.EstimateID] = append(r.tx.st.estimateActivities[activity.EstimateID], *activity)
	return nil
}

func (r *estimates) ListActivities(ctx context.Context, estimateID uuid.UUID) ([]model.EstimateActivity, error) {
	return append([]model.EstimateActivity(nil), r.tx.st.estimateActivities[estimateID]...), nil
}
