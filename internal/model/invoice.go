package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusIssued,
	InvoiceStatusPartiallyPaid,
	InvoiceStatusPaid,
	InvoiceStatusCancelled,
}

var invoiceTransitions = transitions[InvoiceStatus]{
	InvoiceStatusIssued:        {InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPartiallyPaid: {InvoiceStatusPartiallyPaid, InvoiceStatusPaid},
	InvoiceStatusPaid:          {},
	InvoiceStatusCancelled:     {},
}

func (s InvoiceStatus) Valid() bool {
	_, ok := invoiceTransitions[s]
	return ok
}

func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	return invoiceTransitions.allows(s, next)
}

type Invoice struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CompanyID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	InvoiceNo        string          `gorm:"type:varchar(40);not null" json:"invoice_no"`
	ServiceRequestID uuid.UUID       `gorm:"type:uuid;not null;index" json:"service_request_id"`
	Status           InvoiceStatus   `gorm:"type:invoice_status;not null;default:ISSUED" json:"status"`
	Subtotal         decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"subtotal"`
	VatRate          decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"vat_rate"`
	VatAmount        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"vat_amount"`
	Total            decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total"`
	PaidAmount       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"paid_amount"`
	BalanceDue       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"balance_due"`
	IssuedAt         time.Time       `gorm:"not null" json:"issued_at"`
	DueDate          *time.Time      `gorm:"type:date" json:"due_date"`
	PaidAt           *time.Time      `json:"paid_at"`
	CancelledAt      *time.Time      `json:"cancelled_at"`
	Notes            *string         `gorm:"type:text" json:"notes"`
	CreatedBy        uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments"`
}

func (Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ItemType    ItemType        `gorm:"type:varchar(16);not null" json:"item_type"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_price"`
	SortOrder   int             `gorm:"not null;default:0" json:"sort_order"`
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodCheque, PaymentMethodOther:
		return true
	}
	return false
}

type Payment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CompanyID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	PaymentNo  string          `gorm:"type:varchar(40);not null" json:"payment_no"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Method     PaymentMethod   `gorm:"type:varchar(16);not null" json:"method"`
	Reference  *string         `gorm:"type:varchar(128)" json:"reference"`
	ReceivedBy uuid.UUID       `gorm:"type:uuid;not null" json:"received_by"`
	PaidAt     time.Time       `gorm:"not null" json:"paid_at"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Receipt struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CompanyID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	InvoiceID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	PaymentID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"payment_id"`
	ReceiptNo    string          `gorm:"type:varchar(40);not null" json:"receipt_no"`
	Amount       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"balance_after"`
	IssuedAt     time.Time       `gorm:"not null" json:"issued_at"`
}

func (Receipt) TableName() string {
	return "receipts"
}

func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
