package model

import (
	"time"

	"github.com/google/uuid"
)

type DocumentType string

const (
	DocumentTypeEstimate  DocumentType = "ESTIMATE"
	DocumentTypeQuote     DocumentType = "QUOTE"
	DocumentTypeWorkOrder DocumentType = "WORK_ORDER"
	DocumentTypeInvoice   DocumentType = "INVOICE"
	DocumentTypeReceipt   DocumentType = "RECEIPT"
	DocumentTypePayment   DocumentType = "PAYMENT"
)

func (t DocumentType) Valid() bool {
	return t.Prefix() != ""
}

func (t DocumentType) Prefix() string {
	switch t {
	case DocumentTypeEstimate:
		return "EST"
	case DocumentTypeQuote:
		return "QUO"
	case DocumentTypeWorkOrder:
		return "WO"
	case DocumentTypeInvoice:
		return "INV"
	case DocumentTypeReceipt:
		return "RCP"
	case DocumentTypePayment:
		return "PAY"
	}
	return ""
}

// UsesCounter reports whether numbers come from a configured company counter
// rather than from scanning existing documents.
func (t DocumentType) UsesCounter() bool {
	switch t {
	case DocumentTypeInvoice, DocumentTypeReceipt, DocumentTypePayment:
		return true
	}
	return false
}

type DocumentCounter struct {
	CompanyID    uuid.UUID    `gorm:"type:uuid;primaryKey" json:"company_id"`
	DocumentType DocumentType `gorm:"type:varchar(16);primaryKey" json:"document_type"`
	Format       string       `gorm:"type:varchar(64);not null" json:"format"`
	LastValue    int64        `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DocumentCounter) TableName() string {
	return "document_counters"
}
