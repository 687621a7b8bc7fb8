package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
)

func TestEstimateCreateComputesScenarioTotals(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")

	estimate := f.scenarioEstimate(t, request.ID)

	assert.Equal(t, fmt.Sprintf("EST-%d-0001", time.Now().Year()), estimate.EstimateNo)
	assert.Equal(t, model.EstimateStatusDraft, estimate.Status)
	assert.Equal(t, 1, estimate.Version)
	assert.True(t, estimate.IsLatestVersion)
	assertAmount(t, "22", estimate.Items[0].TotalPrice)
	assertAmount(t, "60", estimate.LaborItems[0].TotalPrice)
	assertAmount(t, "82", estimate.Subtotal)
	assertAmount(t, "8.2", estimate.ProfitAmount)
	assertAmount(t, "90.2", estimate.TotalBeforeVat)
	assertAmount(t, "9.02", estimate.VatAmount)
	assertAmount(t, "99.22", estimate.Total)
	assert.Equal(t, model.ServiceRequestStatusEstimationInProgress, f.requestStatus(t, request.ID))

	activities, err := f.estimates.Activities(f.ctx, f.staff, estimate.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, model.EstimateActionCreated, activities[0].Action)
}

func TestEstimateNumbersIncrementPerCompany(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")

	first := f.scenarioEstimate(t, request.ID)
	second := f.scenarioEstimate(t, request.ID)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("EST-%d-0001", year), first.EstimateNo)
	assert.Equal(t, fmt.Sprintf("EST-%d-0002", year), second.EstimateNo)
}

func TestEstimateCreateUnknownServiceRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.estimates.Create(f.ctx, f.staff, CreateEstimateInput{ServiceRequestID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEstimateUpdateReplacesItemsAndRecalculates(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	estimate := f.scenarioEstimate(t, request.ID)

	title := "Boiler repair"
	items := []EstimateItemInput{{
		ItemType: model.ItemTypeEquipment,
		Name:     "Pump hire",
		Quantity: dec("1"),
		UnitCost: dec("50"),
	}}
	updated, err := f.estimates.Update(f.ctx, f.staff, estimate.ID, EstimatePatch{Title: &title, Items: &items})
	require.NoError(t, err)

	assert.Equal(t, "Boiler repair", updated.Title)
	require.Len(t, updated.Items, 1)
	require.Len(t, updated.LaborItems, 1, "labor is kept when not supplied")
	assertAmount(t, "50", updated.EquipmentCost)
	assertAmount(t, "0", updated.MaterialCost)
	assertAmount(t, "110", updated.Subtotal)
	assertAmount(t, "11", updated.ProfitAmount)
	assertAmount(t, "12.1", updated.VatAmount)
	assertAmount(t, "133.1", updated.Total)

	stored, err := f.estimates.Get(f.ctx, f.staff, estimate.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Pump hire", stored.Items[0].Name)
	assertAmount(t, "133.1", stored.Total)
}

func TestEstimateUpdateRefusedOnceSubmitted(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	estimate := f.scenarioEstimate(t, request.ID)
	_, err := f.estimates.SubmitForApproval(f.ctx, f.staff, estimate.ID, SubmitEstimateInput{})
	require.NoError(t, err)

	title := "Too late"
	_, err = f.estimates.Update(f.ctx, f.staff, estimate.ID, EstimatePatch{Title: &title})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "status is PENDING_MANAGER_APPROVAL")
	assert.Contains(t, err.Error(), "DRAFT or REVISION_REQUESTED")
}

func TestEstimateSubmitRequiresItems(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	estimate, err := f.estimates.Create(f.ctx, f.staff, CreateEstimateInput{ServiceRequestID: request.ID})
	require.NoError(t, err)

	_, err = f.estimates.SubmitForApproval(f.ctx, f.staff, estimate.ID, SubmitEstimateInput{})
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	stored, err := f.estimates.Get(f.ctx, f.staff, estimate.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstimateStatusDraft, stored.Status)
}

func TestEstimateApprovalFlow(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	estimate := f.scenarioEstimate(t, request.ID)

	_, err := f.estimates.Approve(f.ctx, f.manager, estimate.ID, ReviewEstimateInput{})
	require.ErrorIs(t, err, ErrInvalidTransition, "draft cannot be approved")

	submitted, err := f.estimates.SubmitForApproval(f.ctx, f.staff, estimate.ID, SubmitEstimateInput{})
	require.NoError(t, err)
	assert.Equal(t, model.EstimateStatusPendingManagerApproval, submitted.Status)
	assert.Equal(t, f.staff.UserID, *submitted.SubmittedBy)
	assert.Equal(t, model.ServiceRequestStatusEstimatePendingApproval, f.requestStatus(t, request.ID))

	_, err = f.estimates.Approve(f.ctx, f.staff, estimate.ID, ReviewEstimateInput{})
	require.ErrorIs(t, err, ErrPermissionDenied)

	notes := "ok to quote"
	approved, err := f.estimates.Approve(f.ctx, f.manager, estimate.ID, ReviewEstimateInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, model.EstimateStatusApproved, approved.Status)
	assert.Equal(t, f.manager.UserID, *approved.ReviewedBy)
	assert.Equal(t, "ok to quote", *approved.ManagerNotes)
	assert.Equal(t, model.ServiceRequestStatusEstimateApproved, f.requestStatus(t, request.ID))

	activities, err := f.estimates.Activities(f.ctx, f.staff, estimate.ID)
	require.NoError(t, err)
	actions := make([]model.EstimateAction, len(activities))
	for i, a := range activities {
		actions[i] = a.Action
	}
	assert.Equal(t, []model.EstimateAction{
		model.EstimateActionCreated,
		model.EstimateActionSubmitted,
		model.EstimateActionApproved,
	}, actions)
}

func TestEstimateRevisionRequestedCanBeResubmitted(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	estimate := f.scenarioEstimate(t, request.ID)
	_, err := f.estimates.SubmitForApproval(f.ctx, f.staff, estimate.ID, SubmitEstimateInput{})
	require.NoError(t, err)

	_, err = f.estimates.RequestRevision(f.ctx, f.manager, estimate.ID, RejectEstimateInput{Reason: "  "})
	require.ErrorIs(t, err, ErrInvalidInput)

	sentBack, err := f.estimates.RequestRevision(f.ctx, f.manager, estimate.ID, RejectEstimateInput{Reason: "add pipe insulation"})
	require.NoError(t, err)
	assert.Equal(t, model.EstimateStatusRevisionRequested, sentBack.Status)
	assert.Equal(t, "add pipe insulation", *sentBack.RevisionReason)

	vat := dec("20")
	_, err = f.estimates.Update(f.ctx, f.staff, estimate.ID, EstimatePatch{VatRate: &vat})
	require.NoError(t, err)

	resubmitted, err := f.estimates.SubmitForApproval(f.ctx, f.staff, estimate.ID, SubmitEstimateInput{})
	require.NoError(t, err)
	assert.Equal(t, model.EstimateStatusPendingManagerApproval, resubmitted.Status)
	assertAmount(t, "18.04", resubmitted.VatAmount)
}

func TestEstimateConvertsOnlyFromApproved(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	input := ConvertToQuoteInput{ValidUntil: time.Now().Add(30 * 24 * time.Hour)}

	draft := f.scenarioEstimate(t, request.ID)

	pending := f.scenarioEstimate(t, request.ID)
	_, err := f.estimates.SubmitForApproval(f.ctx, f.staff, pending.ID, SubmitEstimateInput{})
	require.NoError(t, err)

	rejected := f.scenarioEstimate(t, request.ID)
	_, err = f.estimates.SubmitForApproval(f.ctx, f.staff, rejected.ID, SubmitEstimateInput{})
	require.NoError(t, err)
	_, err = f.estimates.Reject(f.ctx, f.manager, rejected.ID, RejectEstimateInput{Reason: "too expensive"})
	require.NoError(t, err)

	for _, estimate := range []*model.Estimate{draft, pending, rejected} {
		before, err := f.estimates.Get(f.ctx, f.staff, estimate.ID)
		require.NoError(t, err)

		_, err = f.estimates.ConvertToQuote(f.ctx, f.staff, estimate.ID, input)
		require.ErrorIs(t, err, ErrInvalidTransition, before.Status)
		assert.Contains(t, err.Error(), "must be APPROVED")

		after, err := f.estimates.Get(f.ctx, f.staff, estimate.ID)
		require.NoError(t, err)
		assert.Equal(t, before.Status, after.Status)
		assert.Nil(t, after.ConvertedQuoteID)
	}

	quotes, err := f.quotes.List(f.ctx, f.staff, repository.QuoteListFilter{})
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestConvertToQuoteCarriesEveryLine(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	estimate, err := f.estimates.Create(f.ctx, f.staff, CreateEstimateInput{
		ServiceRequestID: request.ID,
		Items: []EstimateItemInput{
			{ItemType: model.ItemTypeMaterial, Name: "Fitting", Quantity: dec("3"), UnitCost: dec("3.33"),
				MarkupType: model.AdjustmentPercentage, MarkupValue: dec("10")},
			{ItemType: model.ItemTypeEquipment, Name: "Ladder", Quantity: dec("1"), UnitCost: dec("15"),
				MarkupType: model.AdjustmentFixed, MarkupValue: dec("5")},
		},
		LaborItems: []EstimateLaborInput{
			{Description: "Fit", Quantity: dec("2"), Hours: dec("1.5"), HourlyRate: dec("30")},
		},
		Pricing: PricingInput{VatRate: dec("5")},
	})
	require.NoError(t, err)
	_, err = f.estimates.SubmitForApproval(f.ctx, f.staff, estimate.ID, SubmitEstimateInput{})
	require.NoError(t, err)
	_, err = f.estimates.Approve(f.ctx, f.manager, estimate.ID, ReviewEstimateInput{})
	require.NoError(t, err)

	quote, err := f.estimates.ConvertToQuote(f.ctx, f.staff, estimate.ID, ConvertToQuoteInput{
		ValidUntil: time.Now().Add(14 * 24 * time.Hour),
	})
	require.NoError(t, err)

	require.Len(t, quote.Items, 3)
	sum := decimal.Zero
	for _, line := range quote.Items {
		sum = sum.Add(line.Quantity.Mul(line.UnitPrice))
	}
	assert.True(t, sum.Round(2).Equal(quote.Subtotal), "subtotal %s, lines %s", quote.Subtotal, sum)
	assert.Equal(t, model.ItemTypeLabor, quote.Items[2].ItemType)
	assertAmount(t, "90", quote.Items[2].TotalPrice)
	assert.Equal(t, model.QuoteStatusDraft, quote.Status)
	assert.Equal(t, estimate.ID, *quote.EstimateID)
	assertAmount(t, "5", quote.VatRate)

	converted, err := f.estimates.Get(f.ctx, f.staff, estimate.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstimateStatusConverted, converted.Status)
	assert.Equal(t, quote.ID, *converted.ConvertedQuoteID)
	assert.Equal(t, model.ServiceRequestStatusQuotationInProgress, f.requestStatus(t, request.ID))

	_, err = f.estimates.ConvertToQuote(f.ctx, f.staff, estimate.ID, ConvertToQuoteInput{
		ValidUntil: time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidTransition, "an estimate converts once")
}

func TestConvertToQuoteKeepsLineTotalsForLargeQuantities(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	estimate, err := f.estimates.Create(f.ctx, f.staff, CreateEstimateInput{
		ServiceRequestID: request.ID,
		Items: []EstimateItemInput{
			{ItemType: model.ItemTypeMaterial, Name: "Screws", Unit: "pcs", Quantity: dec("3000"), UnitCost: dec("0.01"),
				MarkupType: model.AdjustmentPercentage, MarkupValue: dec("3.33")},
			{ItemType: model.ItemTypeMaterial, Name: "Copper pipe", Unit: "m", Quantity: dec("2"), UnitCost: dec("10"),
				MarkupType: model.AdjustmentPercentage, MarkupValue: dec("10")},
		},
	})
	require.NoError(t, err)
	assertAmount(t, "31", estimate.Items[0].TotalPrice)
	assertAmount(t, "53", estimate.Subtotal)

	_, err = f.estimates.SubmitForApproval(f.ctx, f.staff, estimate.ID, SubmitEstimateInput{})
	require.NoError(t, err)
	_, err = f.estimates.Approve(f.ctx, f.manager, estimate.ID, ReviewEstimateInput{})
	require.NoError(t, err)

	quote, err := f.estimates.ConvertToQuote(f.ctx, f.staff, estimate.ID, ConvertToQuoteInput{
		ValidUntil: time.Now().Add(14 * 24 * time.Hour),
	})
	require.NoError(t, err)

	require.Len(t, quote.Items, 2)
	lump := quote.Items[0]
	assertAmount(t, "1", lump.Quantity)
	assertAmount(t, "31", lump.UnitPrice)
	assertAmount(t, "31", lump.TotalPrice)
	assert.Equal(t, "Screws", lump.Description)

	exact := quote.Items[1]
	assertAmount(t, "2", exact.Quantity)
	assertAmount(t, "11", exact.UnitPrice)
	assert.Equal(t, "m", exact.Unit)

	assertAmount(t, "53", quote.Subtotal)
	assert.True(t, estimate.Subtotal.Equal(quote.Subtotal), "estimate %s, quote %s", estimate.Subtotal, quote.Subtotal)
}

func TestConvertToQuoteRejectsPastValidity(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	estimate := f.approvedEstimate(t, request.ID)

	_, err := f.estimates.ConvertToQuote(f.ctx, f.staff, estimate.ID, ConvertToQuoteInput{
		ValidUntil: time.Now().Add(-time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEstimateRevisionStartsNewVersion(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	original := f.scenarioEstimate(t, request.ID)
	_, err := f.estimates.SubmitForApproval(f.ctx, f.staff, original.ID, SubmitEstimateInput{})
	require.NoError(t, err)

	_, err = f.estimates.CreateRevision(f.ctx, f.staff, original.ID)
	require.ErrorIs(t, err, ErrInvalidTransition, "only rejected estimates are revised")

	_, err = f.estimates.Reject(f.ctx, f.manager, original.ID, RejectEstimateInput{Reason: "wrong pipe size"})
	require.NoError(t, err)

	revision, err := f.estimates.CreateRevision(f.ctx, f.staff, original.ID)
	require.NoError(t, err)
	assert.Equal(t, original.EstimateNo+"-R2", revision.EstimateNo)
	assert.Equal(t, 2, revision.Version)
	assert.Equal(t, original.ID, *revision.ParentEstimateID)
	assert.Equal(t, model.EstimateStatusDraft, revision.Status)
	assertAmount(t, "99.22", revision.Total)
	require.Len(t, revision.Items, 1)
	assert.NotEqual(t, original.Items[0].ID, revision.Items[0].ID)

	latest, err := f.estimates.List(f.ctx, f.staff, repository.EstimateListFilter{LatestOnly: true})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, revision.ID, latest[0].ID)

	_, err = f.estimates.CreateRevision(f.ctx, f.staff, original.ID)
	assert.ErrorIs(t, err, ErrConflict, "superseded versions cannot be revised again")

	next, err := f.estimates.Create(f.ctx, f.staff, CreateEstimateInput{ServiceRequestID: request.ID})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("EST-%d-0002", time.Now().Year()), next.EstimateNo, "revision numbers do not advance the sequence")
}

func TestDeleteRevisionRestoresPreviousVersion(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	original := f.scenarioEstimate(t, request.ID)
	_, err := f.estimates.SubmitForApproval(f.ctx, f.staff, original.ID, SubmitEstimateInput{})
	require.NoError(t, err)
	_, err = f.estimates.Reject(f.ctx, f.manager, original.ID, RejectEstimateInput{Reason: "no"})
	require.NoError(t, err)
	revision, err := f.estimates.CreateRevision(f.ctx, f.staff, original.ID)
	require.NoError(t, err)

	require.NoError(t, f.estimates.Delete(f.ctx, f.staff, revision.ID))

	restored, err := f.estimates.Get(f.ctx, f.staff, original.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsLatestVersion)

	err = f.estimates.Delete(f.ctx, f.staff, original.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "only drafts are deleted")
}

func TestEstimateCancel(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	estimate := f.scenarioEstimate(t, request.ID)

	reason := "customer withdrew"
	cancelled, err := f.estimates.Cancel(f.ctx, f.staff, estimate.ID, CancelInput{Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, model.EstimateStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = f.estimates.Cancel(f.ctx, f.staff, estimate.ID, CancelInput{})
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "CANCELLED", terr.Current)
	assert.NotContains(t, terr.Allowed, "CONVERTED")
}

func TestEstimateHiddenFromOtherCompanies(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")
	estimate := f.scenarioEstimate(t, request.ID)

	outsider := model.Principal{UserID: uuid.New(), CompanyID: uuid.New(), Role: model.UserRoleAdmin}
	_, err := f.estimates.Get(f.ctx, outsider, estimate.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.estimates.Cancel(f.ctx, outsider, estimate.ID, CancelInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}
