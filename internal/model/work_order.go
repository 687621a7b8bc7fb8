package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WorkOrderStatus string

const (
	WorkOrderStatusPending          WorkOrderStatus = "PENDING"
	WorkOrderStatusScheduled        WorkOrderStatus = "SCHEDULED"
	WorkOrderStatusConfirmed        WorkOrderStatus = "CONFIRMED"
	WorkOrderStatusEnRoute          WorkOrderStatus = "EN_ROUTE"
	WorkOrderStatusInProgress       WorkOrderStatus = "IN_PROGRESS"
	WorkOrderStatusOnHold           WorkOrderStatus = "ON_HOLD"
	WorkOrderStatusCompleted        WorkOrderStatus = "COMPLETED"
	WorkOrderStatusCancelled        WorkOrderStatus = "CANCELLED"
	WorkOrderStatusRequiresFollowUp WorkOrderStatus = "REQUIRES_FOLLOWUP"
)

var WorkOrderStatuses = []WorkOrderStatus{
	WorkOrderStatusPending,
	WorkOrderStatusScheduled,
	WorkOrderStatusConfirmed,
	WorkOrderStatusEnRoute,
	WorkOrderStatusInProgress,
	WorkOrderStatusOnHold,
	WorkOrderStatusCompleted,
	WorkOrderStatusCancelled,
	WorkOrderStatusRequiresFollowUp,
}

// SCHEDULED appears as a target of every status that may still be rescheduled.
var workOrderTransitions = transitions[WorkOrderStatus]{
	WorkOrderStatusPending: {
		WorkOrderStatusScheduled,
		WorkOrderStatusRequiresFollowUp,
		WorkOrderStatusCancelled,
	},
	WorkOrderStatusScheduled: {
		WorkOrderStatusScheduled,
		WorkOrderStatusConfirmed,
		WorkOrderStatusEnRoute,
		WorkOrderStatusInProgress,
		WorkOrderStatusRequiresFollowUp,
		WorkOrderStatusCancelled,
	},
	WorkOrderStatusConfirmed: {
		WorkOrderStatusScheduled,
		WorkOrderStatusEnRoute,
		WorkOrderStatusInProgress,
		WorkOrderStatusRequiresFollowUp,
		WorkOrderStatusCancelled,
	},
	WorkOrderStatusEnRoute: {
		WorkOrderStatusScheduled,
		WorkOrderStatusInProgress,
		WorkOrderStatusRequiresFollowUp,
		WorkOrderStatusCancelled,
	},
	WorkOrderStatusInProgress: {
		WorkOrderStatusCompleted,
		WorkOrderStatusOnHold,
		WorkOrderStatusRequiresFollowUp,
		WorkOrderStatusCancelled,
	},
	WorkOrderStatusOnHold: {
		WorkOrderStatusInProgress,
		WorkOrderStatusScheduled,
		WorkOrderStatusRequiresFollowUp,
		WorkOrderStatusCancelled,
	},
	WorkOrderStatusRequiresFollowUp: {
		WorkOrderStatusScheduled,
		WorkOrderStatusCancelled,
	},
	WorkOrderStatusCompleted: {},
	WorkOrderStatusCancelled: {},
}

func (s WorkOrderStatus) Valid() bool {
	_, ok := workOrderTransitions[s]
	return ok
}

func (s WorkOrderStatus) CanTransitionTo(next WorkOrderStatus) bool {
	return workOrderTransitions.allows(s, next)
}

func (s WorkOrderStatus) IsTerminal() bool {
	return s == WorkOrderStatusCompleted || s == WorkOrderStatusCancelled
}

// IsDeletable reports whether no field work has been recorded yet.
func (s WorkOrderStatus) IsDeletable() bool {
	return s == WorkOrderStatusPending || s == WorkOrderStatusScheduled
}

type WorkOrderPriority string

const (
	WorkOrderPriorityLow    WorkOrderPriority = "LOW"
	WorkOrderPriorityMedium WorkOrderPriority = "MEDIUM"
	WorkOrderPriorityHigh   WorkOrderPriority = "HIGH"
	WorkOrderPriorityUrgent WorkOrderPriority = "URGENT"
)

func (p WorkOrderPriority) Valid() bool {
	switch p {
	case WorkOrderPriorityLow, WorkOrderPriorityMedium, WorkOrderPriorityHigh, WorkOrderPriorityUrgent:
		return true
	}
	return false
}

type WorkOrder struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CompanyID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"company_id"`
	WorkOrderNo      string            `gorm:"type:varchar(40);not null" json:"work_order_no"`
	ServiceRequestID uuid.UUID         `gorm:"type:uuid;not null;index" json:"service_request_id"`
	QuoteID          *uuid.UUID        `gorm:"type:uuid" json:"quote_id"`
	EstimateID       *uuid.UUID        `gorm:"type:uuid" json:"estimate_id"`
	Status           WorkOrderStatus   `gorm:"type:work_order_status;not null;default:PENDING" json:"status"`
	Priority         WorkOrderPriority `gorm:"type:varchar(16);not null;default:MEDIUM" json:"priority"`
	Title            string            `gorm:"type:varchar(255);not null" json:"title"`
	Description      *string           `gorm:"type:text" json:"description"`

	ScheduledDate     *time.Time `gorm:"type:date" json:"scheduled_date"`
	ScheduledTime     *string    `gorm:"type:varchar(5)" json:"scheduled_time"`
	EstimatedDuration *int       `json:"estimated_duration"`
	ActualDuration    *int       `json:"actual_duration"`

	ConfirmedAt        *time.Time `json:"confirmed_at"`
	StartedAt          *time.Time `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CancellationReason *string    `gorm:"type:text" json:"cancellation_reason"`
	HoldReason         *string    `gorm:"type:text" json:"hold_reason"`
	TechnicianNotes    *string    `gorm:"type:text" json:"technician_notes"`

	MaterialCost   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"material_cost"`
	LaborCost      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"labor_cost"`
	AdditionalCost decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"additional_cost"`
	TotalCost      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_cost"`

	WorkPerformed       *string    `gorm:"type:text" json:"work_performed"`
	CustomerSignature   *string    `gorm:"type:text" json:"customer_signature"`
	TechnicianSignature *string    `gorm:"type:text" json:"technician_signature"`
	SignedAt            *time.Time `json:"signed_at"`
	CustomerFeedback    *string    `gorm:"type:text" json:"customer_feedback"`
	CustomerRating      *int       `json:"customer_rating"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Team      []WorkOrderTeam      `gorm:"foreignKey:WorkOrderID" json:"team"`
	Items     []WorkOrderItem      `gorm:"foreignKey:WorkOrderID" json:"items"`
	Labor     []WorkOrderLabor     `gorm:"foreignKey:WorkOrderID" json:"labor"`
	Checklist []WorkOrderChecklist `gorm:"foreignKey:WorkOrderID" json:"checklist"`
	Photos    []WorkOrderPhoto     `gorm:"foreignKey:WorkOrderID" json:"photos"`
}

func (WorkOrder) TableName() string {
	return "work_orders"
}

func (w *WorkOrder) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

type TeamRole string

const (
	TeamRoleLead       TeamRole = "LEAD"
	TeamRoleTechnician TeamRole = "TECHNICIAN"
	TeamRoleHelper     TeamRole = "HELPER"
)

func (r TeamRole) Valid() bool {
	switch r {
	case TeamRoleLead, TeamRoleTechnician, TeamRoleHelper:
		return true
	}
	return false
}

type WorkOrderTeam struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	WorkOrderID uuid.UUID           `gorm:"type:uuid;not null;index" json:"work_order_id"`
	EmployeeID  uuid.UUID           `gorm:"type:uuid;not null" json:"employee_id"`
	Role        TeamRole            `gorm:"type:varchar(16);not null" json:"role"`
	HourlyRate  decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"hourly_rate"`
	AssignedAt  time.Time           `gorm:"not null;default:now()" json:"assigned_at"`
}

func (WorkOrderTeam) TableName() string {
	return "work_order_team"
}

func (t *WorkOrderTeam) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.AssignedAt.IsZero() {
		t.AssignedAt = time.Now()
	}
	return nil
}

type WorkOrderItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	WorkOrderID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"work_order_id"`
	ItemType       ItemType        `gorm:"type:varchar(16);not null" json:"item_type"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Unit           string          `gorm:"type:varchar(32)" json:"unit"`
	Quantity       decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	UnitCost       decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_cost"`
	TotalCost      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_cost"`
	IsFromEstimate bool            `gorm:"not null;default:false" json:"is_from_estimate"`
	IsAdditional   bool            `gorm:"not null;default:false" json:"is_additional"`
	AddedBy        *uuid.UUID      `gorm:"type:uuid" json:"added_by"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (WorkOrderItem) TableName() string {
	return "work_order_items"
}

func (i *WorkOrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// WorkOrderLabor is a time entry. An entry without ClockOutAt is open.
type WorkOrderLabor struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	WorkOrderID   uuid.UUID           `gorm:"type:uuid;not null;index" json:"work_order_id"`
	EmployeeID    uuid.UUID           `gorm:"type:uuid;not null;index" json:"employee_id"`
	TravelStartAt *time.Time          `json:"travel_start_at"`
	ArrivedAt     *time.Time          `json:"arrived_at"`
	ClockInAt     time.Time           `gorm:"not null" json:"clock_in_at"`
	ClockOutAt    *time.Time          `json:"clock_out_at"`
	BreakMinutes  int                 `gorm:"not null;default:0" json:"break_minutes"`
	TotalMinutes  int                 `gorm:"not null;default:0" json:"total_minutes"`
	HourlyRate    decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"hourly_rate"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WorkOrderLabor) TableName() string {
	return "work_order_labor"
}

func (l *WorkOrderLabor) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l *WorkOrderLabor) IsOpen() bool {
	return l.ClockOutAt == nil
}

type WorkOrderChecklist struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	WorkOrderID uuid.UUID  `gorm:"type:uuid;not null;index" json:"work_order_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	IsRequired  bool       `gorm:"not null;default:false" json:"is_required"`
	IsCompleted bool       `gorm:"not null;default:false" json:"is_completed"`
	CompletedBy *uuid.UUID `gorm:"type:uuid" json:"completed_by"`
	CompletedAt *time.Time `json:"completed_at"`
	Notes       *string    `gorm:"type:text" json:"notes"`
	PhotoURL    *string    `gorm:"type:text" json:"photo_url"`
	SortOrder   int        `gorm:"not null;default:0" json:"sort_order"`
}

func (WorkOrderChecklist) TableName() string {
	return "work_order_checklist"
}

func (c *WorkOrderChecklist) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type PhotoType string

const (
	PhotoTypeBefore    PhotoType = "BEFORE"
	PhotoTypeDuring    PhotoType = "DURING"
	PhotoTypeAfter     PhotoType = "AFTER"
	PhotoTypeIssue     PhotoType = "ISSUE"
	PhotoTypeSignature PhotoType = "SIGNATURE"
	PhotoTypeOther     PhotoType = "OTHER"
)

func (t PhotoType) Valid() bool {
	switch t {
	case PhotoTypeBefore, PhotoTypeDuring, PhotoTypeAfter, PhotoTypeIssue, PhotoTypeSignature, PhotoTypeOther:
		return true
	}
	return false
}

type WorkOrderPhoto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	WorkOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"work_order_id"`
	PhotoType   PhotoType `gorm:"type:varchar(16);not null" json:"photo_type"`
	URL         string    `gorm:"type:text;not null" json:"url"`
	Caption     *string   `gorm:"type:text" json:"caption"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WorkOrderPhoto) TableName() string {
	return "work_order_photos"
}

func (p *WorkOrderPhoto) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type WorkOrderAction string

const (
	WorkOrderActionCreated          WorkOrderAction = "CREATED"
	WorkOrderActionUpdated          WorkOrderAction = "UPDATED"
	WorkOrderActionTeamAssigned     WorkOrderAction = "TEAM_ASSIGNED"
	WorkOrderActionScheduled        WorkOrderAction = "SCHEDULED"
	WorkOrderActionRescheduled      WorkOrderAction = "RESCHEDULED"
	WorkOrderActionConfirmed        WorkOrderAction = "CONFIRMED"
	WorkOrderActionEnRoute          WorkOrderAction = "EN_ROUTE"
	WorkOrderActionArrived          WorkOrderAction = "ARRIVED"
	WorkOrderActionStarted          WorkOrderAction = "STARTED"
	WorkOrderActionClockIn          WorkOrderAction = "CLOCK_IN"
	WorkOrderActionClockOut         WorkOrderAction = "CLOCK_OUT"
	WorkOrderActionChecklistAdded   WorkOrderAction = "CHECKLIST_ADDED"
	WorkOrderActionChecklistUpdated WorkOrderAction = "CHECKLIST_UPDATED"
	WorkOrderActionItemAdded        WorkOrderAction = "ITEM_ADDED"
	WorkOrderActionPhotoAdded       WorkOrderAction = "PHOTO_ADDED"
	WorkOrderActionCompleted        WorkOrderAction = "COMPLETED"
	WorkOrderActionPutOnHold        WorkOrderAction = "ON_HOLD"
	WorkOrderActionResumed          WorkOrderAction = "RESUMED"
	WorkOrderActionFollowUp         WorkOrderAction = "REQUIRES_FOLLOWUP"
	WorkOrderActionCancelled        WorkOrderAction = "CANCELLED"
)

// WorkOrderActivity rows are append-only.
type WorkOrderActivity struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	WorkOrderID uuid.UUID         `gorm:"type:uuid;not null;index" json:"work_order_id"`
	Action      WorkOrderAction   `gorm:"type:varchar(32);not null" json:"action"`
	Description string            `gorm:"type:text;not null" json:"description"`
	ActorID     uuid.UUID         `gorm:"type:uuid;not null" json:"actor_id"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (WorkOrderActivity) TableName() string {
	return "work_order_activities"
}

func (a *WorkOrderActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
