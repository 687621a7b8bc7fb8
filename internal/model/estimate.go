package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EstimateStatus string

const (
	EstimateStatusDraft                  EstimateStatus = "DRAFT"
	EstimateStatusPendingManagerApproval EstimateStatus = "PENDING_MANAGER_APPROVAL"
	EstimateStatusRevisionRequested      EstimateStatus = "REVISION_REQUESTED"
	EstimateStatusApproved               EstimateStatus = "APPROVED"
	EstimateStatusRejected               EstimateStatus = "REJECTED"
	EstimateStatusConverted              EstimateStatus = "CONVERTED"
	EstimateStatusCancelled              EstimateStatus = "CANCELLED"
)

var EstimateStatuses = []EstimateStatus{
	EstimateStatusDraft,
	EstimateStatusPendingManagerApproval,
	EstimateStatusRevisionRequested,
	EstimateStatusApproved,
	EstimateStatusRejected,
	EstimateStatusConverted,
	EstimateStatusCancelled,
}

// CONVERTED is reachable from APPROVED only.
var estimateTransitions = transitions[EstimateStatus]{
	EstimateStatusDraft: {
		EstimateStatusPendingManagerApproval,
		EstimateStatusCancelled,
	},
	EstimateStatusPendingManagerApproval: {
		EstimateStatusApproved,
		EstimateStatusRejected,
		EstimateStatusRevisionRequested,
		EstimateStatusCancelled,
	},
	EstimateStatusRevisionRequested: {
		EstimateStatusPendingManagerApproval,
		EstimateStatusCancelled,
	},
	EstimateStatusApproved: {
		EstimateStatusConverted,
		EstimateStatusCancelled,
	},
	EstimateStatusRejected: {
		EstimateStatusCancelled,
	},
	EstimateStatusConverted: {},
	EstimateStatusCancelled: {},
}

func (s EstimateStatus) Valid() bool {
	_, ok := estimateTransitions[s]
	return ok
}

func (s EstimateStatus) CanTransitionTo(next EstimateStatus) bool {
	return estimateTransitions.allows(s, next)
}

func (s EstimateStatus) IsTerminal() bool {
	switch s {
	case EstimateStatusRejected, EstimateStatusConverted, EstimateStatusCancelled:
		return true
	}
	return false
}

// IsEditable reports whether items and pricing may still change.
func (s EstimateStatus) IsEditable() bool {
	return s == EstimateStatusDraft || s == EstimateStatusRevisionRequested
}

type Estimate struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CompanyID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	EstimateNo       string         `gorm:"type:varchar(40);not null" json:"estimate_no"`
	ServiceRequestID uuid.UUID      `gorm:"type:uuid;not null;index" json:"service_request_id"`
	SiteVisitID      *uuid.UUID     `gorm:"type:uuid" json:"site_visit_id"`
	ParentEstimateID *uuid.UUID     `gorm:"type:uuid;index" json:"parent_estimate_id"`
	Version          int            `gorm:"not null;default:1" json:"version"`
	IsLatestVersion  bool           `gorm:"not null;default:true" json:"is_latest_version"`
	Status           EstimateStatus `gorm:"type:estimate_status;not null;default:DRAFT" json:"status"`
	Title            string         `gorm:"type:varchar(255)" json:"title"`
	Notes            *string        `gorm:"type:text" json:"notes"`

	ProfitMarginType  AdjustmentType  `gorm:"type:varchar(16)" json:"profit_margin_type"`
	ProfitMarginValue decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"profit_margin_value"`
	DiscountType      AdjustmentType  `gorm:"type:varchar(16)" json:"discount_type"`
	DiscountValue     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"discount_value"`
	VatRate           decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"vat_rate"`

	MaterialCost   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"material_cost"`
	LaborCost      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"labor_cost"`
	EquipmentCost  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"equipment_cost"`
	OtherCost      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"other_cost"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"subtotal"`
	ProfitAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"profit_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"discount_amount"`
	TotalBeforeVat decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_before_vat"`
	VatAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"vat_amount"`
	Total          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total"`

	SubmittedBy        *uuid.UUID `gorm:"type:uuid" json:"submitted_by"`
	SubmittedAt        *time.Time `json:"submitted_at"`
	SubmissionNotes    *string    `gorm:"type:text" json:"submission_notes"`
	ReviewedBy         *uuid.UUID `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt         *time.Time `json:"reviewed_at"`
	ManagerNotes       *string    `gorm:"type:text" json:"manager_notes"`
	RejectionReason    *string    `gorm:"type:text" json:"rejection_reason"`
	RevisionReason     *string    `gorm:"type:text" json:"revision_reason"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CancellationReason *string    `gorm:"type:text" json:"cancellation_reason"`

	ConvertedQuoteID     *uuid.UUID `gorm:"type:uuid" json:"converted_quote_id"`
	ConvertedWorkOrderID *uuid.UUID `gorm:"type:uuid" json:"converted_work_order_id"`
	ConvertedAt          *time.Time `json:"converted_at"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Items      []EstimateItem      `gorm:"foreignKey:EstimateID" json:"items"`
	LaborItems []EstimateLaborItem `gorm:"foreignKey:EstimateID" json:"labor_items"`
}

func (Estimate) TableName() string {
	return "estimates"
}

func (e *Estimate) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// FamilyID is the id of the first version of the estimate.
func (e *Estimate) FamilyID() uuid.UUID {
	if e.ParentEstimateID != nil {
		return *e.ParentEstimateID
	}
	return e.ID
}

type EstimateItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EstimateID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"estimate_id"`
	ItemType     ItemType        `gorm:"type:varchar(16);not null" json:"item_type"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Description  *string         `gorm:"type:text" json:"description"`
	Unit         string          `gorm:"type:varchar(32)" json:"unit"`
	Quantity     decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	UnitCost     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_cost"`
	MarkupType   AdjustmentType  `gorm:"type:varchar(16)" json:"markup_type"`
	MarkupValue  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"markup_value"`
	TotalCost    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_cost"`
	MarkupAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"markup_amount"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_price"`
	SortOrder    int             `gorm:"not null;default:0" json:"sort_order"`
}

func (EstimateItem) TableName() string {
	return "estimate_items"
}

func (i *EstimateItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type EstimateLaborItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EstimateID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"estimate_id"`
	Description  string          `gorm:"type:varchar(255);not null" json:"description"`
	Role         *string         `gorm:"type:varchar(64)" json:"role"`
	Quantity     decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	Hours        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"hours"`
	HourlyRate   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"hourly_rate"`
	MarkupType   AdjustmentType  `gorm:"type:varchar(16)" json:"markup_type"`
	MarkupValue  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"markup_value"`
	TotalCost    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_cost"`
	MarkupAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"markup_amount"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_price"`
	SortOrder    int             `gorm:"not null;default:0" json:"sort_order"`
}

func (EstimateLaborItem) TableName() string {
	return "estimate_labor_items"
}

func (i *EstimateLaborItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type EstimateAction string

const (
	EstimateActionCreated           EstimateAction = "CREATED"
	EstimateActionUpdated           EstimateAction = "UPDATED"
	EstimateActionSubmitted         EstimateAction = "SUBMITTED"
	EstimateActionApproved          EstimateAction = "APPROVED"
	EstimateActionRejected          EstimateAction = "REJECTED"
	EstimateActionRevisionRequested EstimateAction = "REVISION_REQUESTED"
	EstimateActionConverted         EstimateAction = "CONVERTED"
	EstimateActionCancelled         EstimateAction = "CANCELLED"
	EstimateActionRevised           EstimateAction = "REVISED"
)

// EstimateActivity rows are append-only.
type EstimateActivity struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EstimateID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"estimate_id"`
	Action      EstimateAction    `gorm:"type:varchar(32);not null" json:"action"`
	Description string            `gorm:"type:text;not null" json:"description"`
	ActorID     uuid.UUID         `gorm:"type:uuid;not null" json:"actor_id"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (EstimateActivity) TableName() string {
	return "estimate_activities"
}

func (a *EstimateActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
