package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "DRAFT"
	QuoteStatusSent      QuoteStatus = "SENT"
	QuoteStatusAccepted  QuoteStatus = "ACCEPTED"
	QuoteStatusRejected  QuoteStatus = "REJECTED"
	QuoteStatusExpired   QuoteStatus = "EXPIRED"
	QuoteStatusConverted QuoteStatus = "CONVERTED"
	QuoteStatusCancelled QuoteStatus = "CANCELLED"
)

var QuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusSent,
	QuoteStatusAccepted,
	QuoteStatusRejected,
	QuoteStatusExpired,
	QuoteStatusConverted,
	QuoteStatusCancelled,
}

var quoteTransitions = transitions[QuoteStatus]{
	QuoteStatusDraft:     {QuoteStatusSent, QuoteStatusCancelled},
	QuoteStatusSent:      {QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired, QuoteStatusCancelled},
	QuoteStatusAccepted:  {QuoteStatusConverted},
	QuoteStatusRejected:  {},
	QuoteStatusExpired:   {},
	QuoteStatusConverted: {},
	QuoteStatusCancelled: {},
}

func (s QuoteStatus) Valid() bool {
	_, ok := quoteTransitions[s]
	return ok
}

func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	return quoteTransitions.allows(s, next)
}

type Quote struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CompanyID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	QuoteNo          string          `gorm:"type:varchar(40);not null" json:"quote_no"`
	ServiceRequestID uuid.UUID       `gorm:"type:uuid;not null;index" json:"service_request_id"`
	EstimateID       *uuid.UUID      `gorm:"type:uuid;index" json:"estimate_id"`
	Status           QuoteStatus     `gorm:"type:quote_status;not null;default:DRAFT" json:"status"`
	Subtotal         decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"subtotal"`
	DiscountType     AdjustmentType  `gorm:"type:varchar(16)" json:"discount_type"`
	DiscountValue    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"discount_value"`
	DiscountAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"discount_amount"`
	VatRate          decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"vat_rate"`
	VatAmount        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"vat_amount"`
	Total            decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total"`
	ValidUntil       time.Time       `gorm:"not null;index" json:"valid_until"`
	Notes            *string         `gorm:"type:text" json:"notes"`
	Terms            *string         `gorm:"type:text" json:"terms"`
	SentAt           *time.Time      `json:"sent_at"`
	AcceptedAt       *time.Time      `json:"accepted_at"`
	RejectedAt       *time.Time      `json:"rejected_at"`
	RejectionReason  *string         `gorm:"type:text" json:"rejection_reason"`
	ExpiredAt        *time.Time      `json:"expired_at"`
	CancelledAt      *time.Time      `json:"cancelled_at"`
	WorkOrderID      *uuid.UUID      `gorm:"type:uuid" json:"work_order_id"`
	CreatedBy        uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID" json:"items"`
}

func (Quote) TableName() string {
	return "quotes"
}

func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type QuoteItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	QuoteID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"quote_id"`
	ItemType    ItemType        `gorm:"type:varchar(16);not null" json:"item_type"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Unit        string          `gorm:"type:varchar(32)" json:"unit"`
	Quantity    decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_price"`
	SortOrder   int             `gorm:"not null;default:0" json:"sort_order"`
}

func (QuoteItem) TableName() string {
	return "quote_items"
}

func (i *QuoteItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
