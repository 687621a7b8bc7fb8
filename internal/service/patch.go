package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fieldops-service/internal/model"
)

// EstimatePatch carries a partial estimate update. Nil fields are left alone;
// a non-nil Items or LaborItems replaces that whole collection.
type EstimatePatch struct {
	Title             *string               `json:"title" validate:"omitempty,max=255"`
	Notes             *string               `json:"notes"`
	SiteVisitID       *uuid.UUID            `json:"site_visit_id"`
	ProfitMarginType  *model.AdjustmentType `json:"profit_margin_type" validate:"omitempty,enum"`
	ProfitMarginValue *decimal.Decimal      `json:"profit_margin_value" validate:"omitempty,gte=0,scale=2"`
	DiscountType      *model.AdjustmentType `json:"discount_type" validate:"omitempty,enum"`
	DiscountValue     *decimal.Decimal      `json:"discount_value" validate:"omitempty,gte=0,scale=2"`
	VatRate           *decimal.Decimal      `json:"vat_rate" validate:"omitempty,gte=0,lte=100,scale=2"`
	Items             *[]EstimateItemInput  `json:"items" validate:"omitempty,dive"`
	LaborItems        *[]EstimateLaborInput `json:"labor_items" validate:"omitempty,dive"`
}

func (p EstimatePatch) replacesItems() bool {
	return p.Items != nil || p.LaborItems != nil
}

func (p EstimatePatch) apply(e *model.Estimate) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Notes != nil {
		e.Notes = p.Notes
	}
	if p.SiteVisitID != nil {
		e.SiteVisitID = p.SiteVisitID
	}
	if p.ProfitMarginType != nil {
		e.ProfitMarginType = *p.ProfitMarginType
	}
	if p.ProfitMarginValue != nil {
		e.ProfitMarginValue = *p.ProfitMarginValue
	}
	if p.DiscountType != nil {
		e.DiscountType = *p.DiscountType
	}
	if p.DiscountValue != nil {
		e.DiscountValue = *p.DiscountValue
	}
	if p.VatRate != nil {
		e.VatRate = *p.VatRate
	}
	if p.Items != nil {
		e.Items = estimateItems(*p.Items)
	}
	if p.LaborItems != nil {
		e.LaborItems = estimateLaborItems(*p.LaborItems)
	}
}

// WorkOrderPatch carries a partial update of descriptive work order fields.
// Scheduling and status have dedicated operations.
type WorkOrderPatch struct {
	Title             *string                  `json:"title" validate:"omitempty,min=1,max=255"`
	Description       *string                  `json:"description"`
	Priority          *model.WorkOrderPriority `json:"priority" validate:"omitempty,enum"`
	EstimatedDuration *int                     `json:"estimated_duration" validate:"omitempty,gte=0"`
	TechnicianNotes   *string                  `json:"technician_notes"`
}

func (p WorkOrderPatch) apply(w *model.WorkOrder) {
	if p.Title != nil {
		w.Title = *p.Title
	}
	if p.Description != nil {
		w.Description = p.Description
	}
	if p.Priority != nil {
		w.Priority = *p.Priority
	}
	if p.EstimatedDuration != nil {
		w.EstimatedDuration = p.EstimatedDuration
	}
	if p.TechnicianNotes != nil {
		w.TechnicianNotes = p.TechnicianNotes
	}
}
