package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fieldops-service/internal/model"
	"fieldops-service/internal/numbering"
	"fieldops-service/internal/repository"
)

type ServiceRequestService struct {
	engine
}

func NewServiceRequestService(store repository.Store, numbers *numbering.Generator, opts Options, log zerolog.Logger) *ServiceRequestService {
	return &ServiceRequestService{engine: newEngine(store, numbers, opts, log)}
}

type CreateServiceRequestInput struct {
	CustomerName  string          `json:"customer_name" validate:"required,max=255"`
	CustomerPhone *string         `json:"customer_phone" validate:"omitempty,max=32"`
	Address       *string         `json:"address"`
	Description   string          `json:"description"`
	ServiceCharge decimal.Decimal `json:"service_charge" validate:"gte=0,scale=2"`
}

func (s *ServiceRequestService) Create(ctx context.Context, principal model.Principal, input CreateServiceRequestInput) (*model.ServiceRequest, error) {
	if principal.IsTechnician() {
		return nil, ErrPermissionDenied
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	request := &model.ServiceRequest{
		CompanyID:     principal.CompanyID,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerPhone: input.CustomerPhone,
		Address:       input.Address,
		Description:   input.Description,
		Status:        model.ServiceRequestStatusNew,
		ServiceCharge: input.ServiceCharge.Round(2),
		CreatedBy:     principal.UserID,
	}
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.ServiceRequests().Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *ServiceRequestService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.ServiceRequest, error) {
	var request *model.ServiceRequest
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		found, err := tx.ServiceRequests().GetByID(ctx, id)
		if err != nil {
			return translate(err, "service request", id)
		}
		if found.CompanyID != principal.CompanyID {
			return notFound("service request", id)
		}
		request = found
		return nil
	})
	return request, err
}

type RecordSiteVisitInput struct {
	VisitedAt *time.Time `json:"visited_at"`
	Notes     *string    `json:"notes"`
}

// RecordSiteVisit stores an inspection visit that estimates can reference.
func (s *ServiceRequestService) RecordSiteVisit(ctx context.Context, principal model.Principal, requestID uuid.UUID, input RecordSiteVisitInput) (*model.SiteVisit, error) {
	visit := &model.SiteVisit{
		CompanyID:        principal.CompanyID,
		ServiceRequestID: requestID,
		Notes:            input.Notes,
		VisitedAt:        s.timestamp(),
	}
	if input.VisitedAt != nil {
		at := input.VisitedAt.UTC()
		visit.VisitedAt = &at
	}

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if _, err := loadServiceRequest(ctx, tx, principal, requestID); err != nil {
			return err
		}
		return tx.ServiceRequests().CreateSiteVisit(ctx, visit)
	})
	if err != nil {
		return nil, err
	}
	return visit, nil
}
