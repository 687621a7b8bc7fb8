package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ServiceRequestStatus string

const (
	ServiceRequestStatusNew                     ServiceRequestStatus = "NEW"
	ServiceRequestStatusEstimationInProgress    ServiceRequestStatus = "ESTIMATION_IN_PROGRESS"
	ServiceRequestStatusEstimatePendingApproval ServiceRequestStatus = "ESTIMATE_PENDING_APPROVAL"
	ServiceRequestStatusEstimateApproved        ServiceRequestStatus = "ESTIMATE_APPROVED"
	ServiceRequestStatusQuotationInProgress     ServiceRequestStatus = "QUOTATION_IN_PROGRESS"
	ServiceRequestStatusScheduled               ServiceRequestStatus = "SCHEDULED"
	ServiceRequestStatusInProgress              ServiceRequestStatus = "IN_PROGRESS"
	ServiceRequestStatusCompleted               ServiceRequestStatus = "COMPLETED"
	ServiceRequestStatusInvoiced                ServiceRequestStatus = "INVOICED"
	ServiceRequestStatusPaid                    ServiceRequestStatus = "PAID"
	ServiceRequestStatusCancelled               ServiceRequestStatus = "CANCELLED"
)

func (s ServiceRequestStatus) Valid() bool {
	switch s {
	case ServiceRequestStatusNew,
		ServiceRequestStatusEstimationInProgress,
		ServiceRequestStatusEstimatePendingApproval,
		ServiceRequestStatusEstimateApproved,
		ServiceRequestStatusQuotationInProgress,
		ServiceRequestStatusScheduled,
		ServiceRequestStatusInProgress,
		ServiceRequestStatusCompleted,
		ServiceRequestStatusInvoiced,
		ServiceRequestStatusPaid,
		ServiceRequestStatusCancelled:
		return true
	}
	return false
}

type ServiceRequest struct {
	ID            uuid.UUID            `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CompanyID     uuid.UUID            `gorm:"type:uuid;not null;index" json:"company_id"`
	CustomerName  string               `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone *string              `gorm:"type:varchar(32)" json:"customer_phone"`
	Address       *string              `gorm:"type:text" json:"address"`
	Description   string               `gorm:"type:text" json:"description"`
	Status        ServiceRequestStatus `gorm:"type:service_request_status;not null;default:NEW" json:"status"`
	ServiceCharge decimal.Decimal      `gorm:"type:numeric(14,2);not null;default:0" json:"service_charge"`
	CreatedBy     uuid.UUID            `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt     time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ServiceRequest) TableName() string {
	return "service_requests"
}

func (r *ServiceRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type SiteVisit struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CompanyID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_id"`
	ServiceRequestID uuid.UUID  `gorm:"type:uuid;not null;index" json:"service_request_id"`
	VisitedAt        *time.Time `json:"visited_at"`
	Notes            *string    `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (SiteVisit) TableName() string {
	return "site_visits"
}

func (v *SiteVisit) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
