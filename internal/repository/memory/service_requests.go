package memory

import (
	"context"

	"github.com/google/uuid"

	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
)

type serviceRequests struct {
	tx *tx
}

func (r *serviceRequests) Create(ctx context.Context, request *model.ServiceRequest) error {
	_ = request.BeforeCreate(nil)
	if _, exists := r.tx.st.serviceRequests[request.ID]; exists {
		return repository.ErrDuplicate
	}
	if request.Status == "" {
		request.Status = model.ServiceRequestStatusNew
	}
	stamp(&request.CreatedAt, &request.UpdatedAt, r.tx.now())
	r.tx.st.serviceRequests[request.ID] = *request
	return nil
}

func (r *serviceRequests) GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	request, ok := r.tx.st.serviceRequests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &request, nil
}

func (r *serviceRequests) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *serviceRequests) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ServiceRequestStatus) error {
	request, ok := r.tx.st.serviceRequests[id]
	if !ok {
		return repository.ErrNotFound
	}
	request.Status = status
	request.UpdatedAt = r.tx.now()
	r.tx.st.serviceRequests[id] = request
	return nil
}

func (r *serviceRequests) CreateSiteVisit(ctx context.Context, visit *model.SiteVisit) error {
	_ = visit.BeforeCreate(nil)
	if _, exists := r.tx.st.siteVisits[visit.ID]; exists {
		return repository.ErrDuplicate
	}
	stamp(&visit.CreatedAt, nil, r.tx.now())
	r.tx.st.siteVisits[visit.ID] = *visit
	return nil
}

func (r *serviceRequests) GetSiteVisit(ctx context.Context, id uuid.UUID) (*model.SiteVisit, error) {
	visit, ok := r.tx.st.siteVisits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &visit, nil
}
