package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fieldops-service/internal/model"
	"fieldops-service/internal/numbering"
	"fieldops-service/internal/pricing"
	"fieldops-service/internal/repository"
)

type EstimateService struct {
	engine
}

func NewEstimateService(store repository.Store, numbers *numbering.Generator, opts Options, log zerolog.Logger) *EstimateService {
	return &EstimateService{engine: newEngine(store, numbers, opts, log)}
}

type EstimateItemInput struct {
	ItemType    model.ItemType       `json:"item_type" validate:"required,oneof=MATERIAL EQUIPMENT OTHER"`
	Name        string               `json:"name" validate:"required,max=255"`
	Description *string              `json:"description"`
	Unit        string               `json:"unit" validate:"max=32"`
	Quantity    decimal.Decimal      `json:"quantity" validate:"gt=0,scale=3"`
	UnitCost    decimal.Decimal      `json:"unit_cost" validate:"gte=0,scale=2"`
	MarkupType  model.AdjustmentType `json:"markup_type" validate:"enum"`
	MarkupValue decimal.Decimal      `json:"markup_value" validate:"gte=0,scale=2"`
}

type EstimateLaborInput struct {
	Description string               `json:"description" validate:"required,max=255"`
	Role        *string              `json:"role" validate:"omitempty,max=64"`
	Quantity    decimal.Decimal      `json:"quantity" validate:"gt=0,scale=3"`
	Hours       decimal.Decimal      `json:"hours" validate:"gt=0,scale=2"`
	HourlyRate  decimal.Decimal      `json:"hourly_rate" validate:"gte=0,scale=2"`
	MarkupType  model.AdjustmentType `json:"markup_type" validate:"enum"`
	MarkupValue decimal.Decimal      `json:"markup_value" validate:"gte=0,scale=2"`
}

type PricingInput struct {
	ProfitMarginType  model.AdjustmentType `json:"profit_margin_type" validate:"enum"`
	ProfitMarginValue decimal.Decimal      `json:"profit_margin_value" validate:"gte=0,scale=2"`
	DiscountType      model.AdjustmentType `json:"discount_type" validate:"enum"`
	DiscountValue     decimal.Decimal      `json:"discount_value" validate:"gte=0,scale=2"`
	VatRate           decimal.Decimal      `json:"vat_rate" validate:"gte=0,lte=100,scale=2"`
}

type CreateEstimateInput struct {
	ServiceRequestID uuid.UUID            `json:"service_request_id" validate:"required"`
	SiteVisitID      *uuid.UUID           `json:"site_visit_id"`
	Title            string               `json:"title" validate:"max=255"`
	Notes            *string              `json:"notes"`
	Items            []EstimateItemInput  `json:"items" validate:"dive"`
	LaborItems       []EstimateLaborInput `json:"labor_items" validate:"dive"`
	Pricing          PricingInput         `json:"pricing"`
}

func estimateItems(inputs []EstimateItemInput) []model.EstimateItem {
	items := make([]model.EstimateItem, len(inputs))
	for i, in := range inputs {
		items[i] = model.EstimateItem{
			ItemType:    in.ItemType,
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			Unit:        in.Unit,
			Quantity:    in.Quantity,
			UnitCost:    in.UnitCost,
			MarkupType:  in.MarkupType,
			MarkupValue: in.MarkupValue,
			SortOrder:   i,
		}
	}
	return items
}

func estimateLaborItems(inputs []EstimateLaborInput) []model.EstimateLaborItem {
	items := make([]model.EstimateLaborItem, len(inputs))
	for i, in := range inputs {
		items[i] = model.EstimateLaborItem{
			Description: strings.TrimSpace(in.Description),
			Role:        in.Role,
			Quantity:    in.Quantity,
			Hours:       in.Hours,
			HourlyRate:  in.HourlyRate,
			MarkupType:  in.MarkupType,
			MarkupValue: in.MarkupValue,
			SortOrder:   i,
		}
	}
	return items
}

func (s *EstimateService) Create(ctx context.Context, principal model.Principal, input CreateEstimateInput) (*model.Estimate, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var created *model.Estimate
	err := s.numbered(ctx, func(tx repository.Tx) error {
		request, err := loadServiceRequest(ctx, tx, principal, input.ServiceRequestID)
		if err != nil {
			return err
		}
		if err := s.checkSiteVisit(ctx, tx, principal, request.ID, input.SiteVisitID); err != nil {
			return err
		}

		number, err := s.numbers.Next(ctx, tx.Counters(), principal.CompanyID, model.DocumentTypeEstimate)
		if err != nil {
			return err
		}

		estimate := &model.Estimate{
			CompanyID:         principal.CompanyID,
			EstimateNo:        number,
			ServiceRequestID:  request.ID,
			SiteVisitID:       input.SiteVisitID,
			Version:           1,
			IsLatestVersion:   true,
			Status:            model.EstimateStatusDraft,
			Title:             input.Title,
			Notes:             input.Notes,
			ProfitMarginType:  input.Pricing.ProfitMarginType,
			ProfitMarginValue: input.Pricing.ProfitMarginValue,
			DiscountType:      input.Pricing.DiscountType,
			DiscountValue:     input.Pricing.DiscountValue,
			VatRate:           input.Pricing.VatRate,
			CreatedBy:         principal.UserID,
			Items:             estimateItems(input.Items),
			LaborItems:        estimateLaborItems(input.LaborItems),
		}
		if estimate.Title == "" {
			estimate.Title = "Estimate for " + request.CustomerName
		}
		pricing.ApplyEstimate(estimate)

		if err := tx.Estimates().Create(ctx, estimate); err != nil {
			return err
		}
		if err := s.record(ctx, tx, estimate, principal, model.EstimateActionCreated,
			fmt.Sprintf("Estimate %s created", estimate.EstimateNo),
			map[string]interface{}{"total": moneyString(estimate.Total)}); err != nil {
			return err
		}
		if err := setServiceRequestStatus(ctx, tx, request.ID, model.ServiceRequestStatusEstimationInProgress); err != nil {
			return err
		}
		created = estimate
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("estimate_no", created.EstimateNo).Str("company_id", created.CompanyID.String()).Msg("estimate created")
	return created, nil
}

func (s *EstimateService) checkSiteVisit(ctx context.Context, tx repository.Tx, principal model.Principal, requestID uuid.UUID, visitID *uuid.UUID) error {
	if visitID == nil {
		return nil
	}
	visit, err := tx.ServiceRequests().GetSiteVisit(ctx, *visitID)
	if err != nil {
		return translate(err, "site visit", *visitID)
	}
	if visit.CompanyID != principal.CompanyID {
		return notFound("site visit", *visitID)
	}
	if visit.ServiceRequestID != requestID {
		return invalidField("site_visit_id", "same_service_request")
	}
	return nil
}

// Update applies patch to an editable estimate and recomputes every total.
func (s *EstimateService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, patch EstimatePatch) (*model.Estimate, error) {
	if err := validateInput(patch); err != nil {
		return nil, err
	}

	var updated *model.Estimate
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		estimate, err := s.load(ctx, tx, principal, id)
		if err != nil {
			return err
		}
		if !estimate.Status.IsEditable() {
			return transitionError("estimate", estimate.EstimateNo, "edited", estimate.Status,
				[]model.EstimateStatus{model.EstimateStatusDraft, model.EstimateStatusRevisionRequested})
		}
		if err := s.checkSiteVisit(ctx, tx, principal, estimate.ServiceRequestID, patch.SiteVisitID); err != nil {
			return err
		}

		patch.apply(estimate)
		pricing.ApplyEstimate(estimate)

		if err := tx.Estimates().Update(ctx, estimate); err != nil {
			return err
		}
		if patch.replacesItems() {
			if err := tx.Estimates().ReplaceItems(ctx, estimate.ID, estimate.Items, estimate.LaborItems); err != nil {
				return err
			}
		}
		if err := s.record(ctx, tx, estimate, principal, model.EstimateActionUpdated,
			fmt.Sprintf("Estimate %s updated", estimate.EstimateNo),
			map[string]interface{}{
				"items_replaced": patch.replacesItems(),
				"total":          moneyString(estimate.Total),
			}); err != nil {
			return err
		}
		updated = estimate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type SubmitEstimateInput struct {
	Notes *string `json:"notes"`
}

func (s *EstimateService) SubmitForApproval(ctx context.Context, principal model.Principal, id uuid.UUID, input SubmitEstimateInput) (*model.Estimate, error) {
	return s.transition(ctx, principal, id, model.EstimateStatusPendingManagerApproval, "submitted",
		func(tx repository.Tx, estimate *model.Estimate) error {
			if len(estimate.Items) == 0 && len(estimate.LaborItems) == 0 {
				return &PreconditionError{Rule: fmt.Sprintf("estimate %s has no items", estimate.EstimateNo)}
			}
			estimate.SubmittedBy = &principal.UserID
			estimate.SubmittedAt = s.timestamp()
			estimate.SubmissionNotes = input.Notes
			if err := s.record(ctx, tx, estimate, principal, model.EstimateActionSubmitted,
				fmt.Sprintf("Estimate %s submitted for approval", estimate.EstimateNo), nil); err != nil {
				return err
			}
			return setServiceRequestStatus(ctx, tx, estimate.ServiceRequestID, model.ServiceRequestStatusEstimatePendingApproval)
		})
}

type ReviewEstimateInput struct {
	Notes *string `json:"notes"`
}

func (s *EstimateService) Approve(ctx context.Context, principal model.Principal, id uuid.UUID, input ReviewEstimateInput) (*model.Estimate, error) {
	if !principal.CanReviewEstimates() {
		return nil, ErrPermissionDenied
	}
	return s.transition(ctx, principal, id, model.EstimateStatusApproved, "approved",
		func(tx repository.Tx, estimate *model.Estimate) error {
			estimate.ReviewedBy = &principal.UserID
			estimate.ReviewedAt = s.timestamp()
			estimate.ManagerNotes = input.Notes
			if err := s.record(ctx, tx, estimate, principal, model.EstimateActionApproved,
				fmt.Sprintf("Estimate %s approved", estimate.EstimateNo),
				map[string]interface{}{"total": moneyString(estimate.Total)}); err != nil {
				return err
			}
			return setServiceRequestStatus(ctx, tx, estimate.ServiceRequestID, model.ServiceRequestStatusEstimateApproved)
		})
}

type RejectEstimateInput struct {
	Reason string  `json:"reason" validate:"required"`
	Notes  *string `json:"notes"`
}

func (s *EstimateService) Reject(ctx context.Context, principal model.Principal, id uuid.UUID, input RejectEstimateInput) (*model.Estimate, error) {
	if !principal.CanReviewEstimates() {
		return nil, ErrPermissionDenied
	}
	input.Reason = strings.TrimSpace(input.Reason)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.transition(ctx, principal, id, model.EstimateStatusRejected, "rejected",
		func(tx repository.Tx, estimate *model.Estimate) error {
			estimate.ReviewedBy = &principal.UserID
			estimate.ReviewedAt = s.timestamp()
			estimate.RejectionReason = &input.Reason
			estimate.ManagerNotes = input.Notes
			return s.record(ctx, tx, estimate, principal, model.EstimateActionRejected,
				fmt.Sprintf("Estimate %s rejected", estimate.EstimateNo),
				map[string]interface{}{"reason": input.Reason})
		})
}

func (s *EstimateService) RequestRevision(ctx context.Context, principal model.Principal, id uuid.UUID, input RejectEstimateInput) (*model.Estimate, error) {
	if !principal.CanReviewEstimates() {
		return nil, ErrPermissionDenied
	}
	input.Reason = strings.TrimSpace(input.Reason)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.transition(ctx, principal, id, model.EstimateStatusRevisionRequested, "sent back for revision",
		func(tx repository.Tx, estimate *model.Estimate) error {
			estimate.ReviewedBy = &principal.UserID
			estimate.ReviewedAt = s.timestamp()
			estimate.RevisionReason = &input.Reason
			estimate.ManagerNotes = input.Notes
			if err := s.record(ctx, tx, estimate, principal, model.EstimateActionRevisionRequested,
				fmt.Sprintf("Revision requested for estimate %s", estimate.EstimateNo),
				map[string]interface{}{"reason": input.Reason}); err != nil {
				return err
			}
			return setServiceRequestStatus(ctx, tx, estimate.ServiceRequestID, model.ServiceRequestStatusEstimationInProgress)
		})
}

type CancelInput struct {
	Reason *string `json:"reason"`
}

func (s *EstimateService) Cancel(ctx context.Context, principal model.Principal, id uuid.UUID, input CancelInput) (*model.Estimate, error) {
	return s.transition(ctx, principal, id, model.EstimateStatusCancelled, "cancelled",
		func(tx repository.Tx, estimate *model.Estimate) error {
			estimate.CancelledAt = s.timestamp()
			estimate.CancellationReason = input.Reason
			return s.record(ctx, tx, estimate, principal, model.EstimateActionCancelled,
				fmt.Sprintf("Estimate %s cancelled", estimate.EstimateNo),
				map[string]interface{}{"reason": stringValue(input.Reason)})
		})
}

// transition moves an estimate to next when the status table allows it, runs
// apply and persists the estimate, all in one transaction.
func (s *EstimateService) transition(ctx context.Context, principal model.Principal, id uuid.UUID, next model.EstimateStatus, action string, apply func(tx repository.Tx, estimate *model.Estimate) error) (*model.Estimate, error) {
	var result *model.Estimate
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		estimate, err := s.load(ctx, tx, principal, id)
		if err != nil {
			return err
		}
		if !estimate.Status.CanTransitionTo(next) {
			return transitionError("estimate", estimate.EstimateNo, action, estimate.Status,
				sourcesOf(model.EstimateStatuses, next, model.EstimateStatus.CanTransitionTo))
		}
		estimate.Status = next
		if err := apply(tx, estimate); err != nil {
			return err
		}
		if err := tx.Estimates().Update(ctx, estimate); err != nil {
			return err
		}
		result = estimate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type ConvertToQuoteInput struct {
	ValidUntil    time.Time            `json:"valid_until" validate:"required"`
	DiscountType  model.AdjustmentType `json:"discount_type" validate:"enum"`
	DiscountValue decimal.Decimal      `json:"discount_value" validate:"gte=0,scale=2"`
	Notes         *string              `json:"notes"`
	Terms         *string              `json:"terms"`
}

// ConvertToQuote turns an approved estimate into a DRAFT quote priced at the
// estimate's selling prices. Material lines keep their quantity; each labor
// line becomes one unit at its total price.
func (s *EstimateService) ConvertToQuote(ctx context.Context, principal model.Principal, id uuid.UUID, input ConvertToQuoteInput) (*model.Quote, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !input.ValidUntil.After(s.now()) {
		return nil, invalidField("valid_until", "future")
	}

	var quote *model.Quote
	err := s.numbered(ctx, func(tx repository.Tx) error {
		estimate, err := s.load(ctx, tx, principal, id)
		if err != nil {
			return err
		}
		if !estimate.Status.CanTransitionTo(model.EstimateStatusConverted) {
			return transitionError("estimate", estimate.EstimateNo, "converted", estimate.Status,
				[]model.EstimateStatus{model.EstimateStatusApproved})
		}

		number, err := s.numbers.Next(ctx, tx.Counters(), principal.CompanyID, model.DocumentTypeQuote)
		if err != nil {
			return err
		}
		quote = &model.Quote{
			CompanyID:        principal.CompanyID,
			QuoteNo:          number,
			ServiceRequestID: estimate.ServiceRequestID,
			EstimateID:       &estimate.ID,
			Status:           model.QuoteStatusDraft,
			DiscountType:     input.DiscountType,
			DiscountValue:    input.DiscountValue,
			VatRate:          estimate.VatRate,
			ValidUntil:       input.ValidUntil.UTC(),
			Notes:            input.Notes,
			Terms:            input.Terms,
			CreatedBy:        principal.UserID,
			Items:            quoteLinesFromEstimate(estimate),
		}
		pricing.ApplyQuote(quote)
		if err := tx.Quotes().Create(ctx, quote); err != nil {
			return err
		}

		estimate.Status = model.EstimateStatusConverted
		estimate.ConvertedQuoteID = &quote.ID
		estimate.ConvertedAt = s.timestamp()
		if err := tx.Estimates().Update(ctx, estimate); err != nil {
			return err
		}
		if err := s.record(ctx, tx, estimate, principal, model.EstimateActionConverted,
			fmt.Sprintf("Estimate %s converted to quote %s", estimate.EstimateNo, quote.QuoteNo),
			map[string]interface{}{"quote_id": quote.ID.String(), "quote_no": quote.QuoteNo}); err != nil {
			return err
		}
		return setServiceRequestStatus(ctx, tx, estimate.ServiceRequestID, model.ServiceRequestStatusQuotationInProgress)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// quoteUnitPriceScale matches quote_items.unit_price.
const quoteUnitPriceScale = 4

func quoteLinesFromEstimate(estimate *model.Estimate) []model.QuoteItem {
	lines := make([]model.QuoteItem, 0, len(estimate.Items)+len(estimate.LaborItems))
	for _, item := range estimate.Items {
		line := model.QuoteItem{
			ItemType:    item.ItemType,
			Description: item.Name,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			UnitPrice:   item.TotalPrice.DivRound(item.Quantity, quoteUnitPriceScale),
			SortOrder:   len(lines),
		}
		// A unit price that does not multiply back to the exact line total
		// becomes a single lump-sum line so the customer price is unchanged.
		if !line.Quantity.Mul(line.UnitPrice).Equal(item.TotalPrice) {
			line.Unit = ""
			line.Quantity = decimal.NewFromInt(1)
			line.UnitPrice = item.TotalPrice
		}
		lines = append(lines, line)
	}
	for _, labor := range estimate.LaborItems {
		lines = append(lines, model.QuoteItem{
			ItemType:    model.ItemTypeLabor,
			Description: labor.Description,
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   labor.TotalPrice,
			SortOrder:   len(lines),
		})
	}
	return lines
}

// Delete removes a DRAFT estimate. When the estimate was a revision, the
// highest remaining version of its family becomes the latest again.
func (s *EstimateService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	return s.store.WithinTx(ctx, func(tx repository.Tx) error {
		estimate, err := s.load(ctx, tx, principal, id)
		if err != nil {
			return err
		}
		if err := requireStatus("estimate", estimate.EstimateNo, "deleted", estimate.Status, model.EstimateStatusDraft); err != nil {
			return err
		}
		if err := tx.Estimates().Delete(ctx, estimate.ID); err != nil {
			return translate(err, "estimate", id)
		}
		if estimate.ParentEstimateID == nil || !estimate.IsLatestVersion {
			return nil
		}
		return s.restoreLatest(ctx, tx, estimate)
	})
}

func (s *EstimateService) restoreLatest(ctx context.Context, tx repository.Tx, deleted *model.Estimate) error {
	family := deleted.FamilyID()
	siblings, err := tx.Estimates().List(ctx, repository.EstimateListFilter{
		CompanyID:        deleted.CompanyID,
		ServiceRequestID: &deleted.ServiceRequestID,
	})
	if err != nil {
		return err
	}
	var latest *model.Estimate
	for i := range siblings {
		candidate := &siblings[i]
		if candidate.FamilyID() != family || candidate.ID == deleted.ID {
			continue
		}
		if latest == nil || candidate.Version > latest.Version {
			latest = candidate
		}
	}
	if latest == nil {
		return nil
	}
	latest.IsLatestVersion = true
	return tx.Estimates().Update(ctx, latest)
}

// CreateRevision copies a rejected estimate into a new DRAFT version of the
// same family. Earlier versions stop being the latest.
func (s *EstimateService) CreateRevision(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Estimate, error) {
	var revision *model.Estimate
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		source, err := s.load(ctx, tx, principal, id)
		if err != nil {
			return err
		}
		if err := requireStatus("estimate", source.EstimateNo, "revised", source.Status, model.EstimateStatusRejected); err != nil {
			return err
		}
		if !source.IsLatestVersion {
			return fmt.Errorf("estimate %s is not the latest version: %w", source.EstimateNo, ErrConflict)
		}

		rootNo := source.EstimateNo
		if source.ParentEstimateID != nil {
			root, err := tx.Estimates().GetByID(ctx, *source.ParentEstimateID)
			if err != nil {
				return translate(err, "estimate", *source.ParentEstimateID)
			}
			rootNo = root.EstimateNo
		}

		family := source.FamilyID()
		revision = &model.Estimate{
			CompanyID:         source.CompanyID,
			EstimateNo:        fmt.Sprintf("%s-R%d", rootNo, source.Version+1),
			ServiceRequestID:  source.ServiceRequestID,
			SiteVisitID:       source.SiteVisitID,
			ParentEstimateID:  &family,
			Version:           source.Version + 1,
			IsLatestVersion:   true,
			Status:            model.EstimateStatusDraft,
			Title:             source.Title,
			Notes:             source.Notes,
			ProfitMarginType:  source.ProfitMarginType,
			ProfitMarginValue: source.ProfitMarginValue,
			DiscountType:      source.DiscountType,
			DiscountValue:     source.DiscountValue,
			VatRate:           source.VatRate,
			CreatedBy:         principal.UserID,
		}
		for _, item := range source.Items {
			item.ID, item.EstimateID = uuid.Nil, uuid.Nil
			revision.Items = append(revision.Items, item)
		}
		for _, labor := range source.LaborItems {
			labor.ID, labor.EstimateID = uuid.Nil, uuid.Nil
			revision.LaborItems = append(revision.LaborItems, labor)
		}
		pricing.ApplyEstimate(revision)

		if err := tx.Estimates().ClearLatestVersion(ctx, family); err != nil {
			return err
		}
		if err := tx.Estimates().Create(ctx, revision); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("revision %s already exists: %w", revision.EstimateNo, ErrConflict)
			}
			return err
		}
		if err := s.record(ctx, tx, source, principal, model.EstimateActionRevised,
			fmt.Sprintf("Estimate %s revised as %s", source.EstimateNo, revision.EstimateNo),
			map[string]interface{}{"revision_id": revision.ID.String()}); err != nil {
			return err
		}
		if err := s.record(ctx, tx, revision, principal, model.EstimateActionCreated,
			fmt.Sprintf("Estimate %s created from %s", revision.EstimateNo, source.EstimateNo),
			map[string]interface{}{"version": revision.Version}); err != nil {
			return err
		}
		return setServiceRequestStatus(ctx, tx, revision.ServiceRequestID, model.ServiceRequestStatusEstimationInProgress)
	})
	if err != nil {
		return nil, err
	}
	return revision, nil
}

func (s *EstimateService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Estimate, error) {
	var estimate *model.Estimate
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		found, err := tx.Estimates().GetByID(ctx, id)
		if err != nil {
			return translate(err, "estimate", id)
		}
		if found.CompanyID != principal.CompanyID {
			return notFound("estimate", id)
		}
		estimate = found
		return nil
	})
	return estimate, err
}

func (s *EstimateService) List(ctx context.Context, principal model.Principal, filter repository.EstimateListFilter) ([]model.Estimate, error) {
	filter.CompanyID = principal.CompanyID
	var estimates []model.Estimate
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		estimates, err = tx.Estimates().List(ctx, filter)
		return err
	})
	return estimates, err
}

func (s *EstimateService) Activities(ctx context.Context, principal model.Principal, id uuid.UUID) ([]model.EstimateActivity, error) {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return nil, err
	}
	var activities []model.EstimateActivity
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		activities, err = tx.Estimates().ListActivities(ctx, id)
		return err
	})
	return activities, err
}

// load locks the estimate and hides estimates of other companies.
func (s *EstimateService) load(ctx context.Context, tx repository.Tx, principal model.Principal, id uuid.UUID) (*model.Estimate, error) {
	estimate, err := tx.Estimates().GetForUpdate(ctx, id)
	if err != nil {
		return nil, translate(err, "estimate", id)
	}
	if estimate.CompanyID != principal.CompanyID {
		return nil, notFound("estimate", id)
	}
	return estimate, nil
}

func (s *EstimateService) record(ctx context.Context, tx repository.Tx, estimate *model.Estimate, principal model.Principal, action model.EstimateAction, description string, metadata map[string]interface{}) error {
	return tx.Estimates().AddActivity(ctx, &model.EstimateActivity{
		EstimateID:  estimate.ID,
		Action:      action,
		Description: description,
		ActorID:     principal.UserID,
		Metadata:    metadata,
	})
}
