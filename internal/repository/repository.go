package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"fieldops-service/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store runs units of work. Every write made through tx commits together when
// fn returns nil and is discarded otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes one repository per aggregate, all bound to the same transaction.
type Tx interface {
	ServiceRequests() ServiceRequestRepository
	Estimates() EstimateRepository
	Quotes() QuoteRepository
	WorkOrders() WorkOrderRepository
	Invoices() InvoiceRepository
	Counters() CounterRepository
}

type ServiceRequestRepository interface {
	Create(ctx context.Context, request *model.ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ServiceRequestStatus) error
	CreateSiteVisit(ctx context.Context, visit *model.SiteVisit) error
	GetSiteVisit(ctx context.Context, id uuid.UUID) (*model.SiteVisit, error)
}

type EstimateListFilter struct {
	CompanyID        uuid.UUID
	ServiceRequestID *uuid.UUID
	Status           *model.EstimateStatus
	LatestOnly       bool
}

type EstimateRepository interface {
	// Create inserts the estimate with its items and labor items.
	Create(ctx context.Context, estimate *model.Estimate) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Estimate, error)
	// GetForUpdate locks the estimate row until the transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Estimate, error)
	// Update writes scalar columns only; child collections are untouched.
	Update(ctx context.Context, estimate *model.Estimate) error
	// ReplaceItems deletes every item and labor item of the estimate and
	// inserts the given ones.
	ReplaceItems(ctx context.Context, estimateID uuid.UUID, items []model.EstimateItem, labor []model.EstimateLaborItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ClearLatestVersion unsets is_latest_version on every estimate of a family.
	ClearLatestVersion(ctx context.Context, familyID uuid.UUID) error
	List(ctx context.Context, filter EstimateListFilter) ([]model.Estimate, error)
	AddActivity(ctx context.Context, activity *model.EstimateActivity) error
	ListActivities(ctx context.Context, estimateID uuid.UUID) ([]model.EstimateActivity, error)
}

type QuoteListFilter struct {
	CompanyID        uuid.UUID
	ServiceRequestID *uuid.UUID
	Status           *model.QuoteStatus
}

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	Update(ctx context.Context, quote *model.Quote) error
	List(ctx context.Context, filter QuoteListFilter) ([]model.Quote, error)
	// ListExpired returns SENT quotes whose validity ended before asOf.
	ListExpired(ctx context.Context, asOf time.Time) ([]model.Quote, error)
}

type WorkOrderListFilter struct {
	CompanyID        uuid.UUID
	ServiceRequestID *uuid.UUID
	Status           *model.WorkOrderStatus
	EmployeeID       *uuid.UUID
}

type WorkOrderRepository interface {
	// Create inserts the work order with its items, checklist and team.
	Create(ctx context.Context, workOrder *model.WorkOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error)
	Update(ctx context.Context, workOrder *model.WorkOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter WorkOrderListFilter) ([]model.WorkOrder, error)
	ListByServiceRequest(ctx context.Context, serviceRequestID uuid.UUID) ([]model.WorkOrder, error)

	// ReplaceTeam deletes the whole roster and inserts members.
	ReplaceTeam(ctx context.Context, workOrderID uuid.UUID, members []model.WorkOrderTeam) error

	AddItem(ctx context.Context, item *model.WorkOrderItem) error
	ListItems(ctx context.Context, workOrderID uuid.UUID) ([]model.WorkOrderItem, error)

	CreateLabor(ctx context.Context, entry *model.WorkOrderLabor) error
	UpdateLabor(ctx context.Context, entry *model.WorkOrderLabor) error
	ListLabor(ctx context.Context, workOrderID uuid.UUID) ([]model.WorkOrderLabor, error)
	// FindOpenLabor returns ErrNotFound when the employee has no open entry.
	FindOpenLabor(ctx context.Context, workOrderID, employeeID uuid.UUID) (*model.WorkOrderLabor, error)

	AddChecklistItem(ctx context.Context, item *model.WorkOrderChecklist) error
	GetChecklistItem(ctx context.Context, id uuid.UUID) (*model.WorkOrderChecklist, error)
	UpdateChecklistItem(ctx context.Context, item *model.WorkOrderChecklist) error

	AddPhoto(ctx context.Context, photo *model.WorkOrderPhoto) error

	AddActivity(ctx context.Context, activity *model.WorkOrderActivity) error
	ListActivities(ctx context.Context, workOrderID uuid.UUID) ([]model.WorkOrderActivity, error)
}

type InvoiceRepository interface {
	// Create inserts the invoice with its items.
	Create(ctx context.Context, invoice *model.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	// GetByServiceRequest returns the invoice of the request that is not cancelled.
	GetByServiceRequest(ctx context.Context, serviceRequestID uuid.UUID) (*model.Invoice, error)
	Update(ctx context.Context, invoice *model.Invoice) error
	CreatePayment(ctx context.Context, payment *model.Payment) error
	CreateReceipt(ctx context.Context, receipt *model.Receipt) error
	GetReceipt(ctx context.Context, id uuid.UUID) (*model.Receipt, error)
}

type CounterRepository interface {
	// LatestNumber returns the highest document number of the given type that
	// starts with prefix, or "" when there is none.
	LatestNumber(ctx context.Context, companyID uuid.UUID, docType model.DocumentType, prefix string) (string, error)
	// Increment atomically bumps the company counter and returns the new value
	// with the counter format. It returns ErrNotFound when no counter is configured.
	Increment(ctx context.Context, companyID uuid.UUID, docType model.DocumentType) (int64, string, error)
	// Configure creates the counter or replaces its format, keeping the value.
	Configure(ctx context.Context, counter *model.DocumentCounter) error
}
