package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops-service/internal/model"
	"fieldops-service/internal/numbering"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/repository/memory"
)

type fixture struct {
	ctx   context.Context
	store repository.Store

	requests   *ServiceRequestService
	estimates  *EstimateService
	quotes     *QuoteService
	workOrders *WorkOrderService
	invoices   *InvoiceService
	settings   *SettingsService

	admin   model.Principal
	manager model.Principal
	staff   model.Principal
	tech    model.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, memory.New())
}

func newFixtureWithStore(t *testing.T, store repository.Store) *fixture {
	t.Helper()
	numbers := numbering.NewGenerator()
	opts := DefaultOptions()
	log := zerolog.Nop()

	company := uuid.New()
	employee := uuid.New()
	return &fixture{
		ctx:        context.Background(),
		store:      store,
		requests:   NewServiceRequestService(store, numbers, opts, log),
		estimates:  NewEstimateService(store, numbers, opts, log),
		quotes:     NewQuoteService(store, numbers, opts, log),
		workOrders: NewWorkOrderService(store, numbers, opts, log),
		invoices:   NewInvoiceService(store, numbers, opts, log),
		settings:   NewSettingsService(store, numbers, opts, log),
		admin:      model.Principal{UserID: uuid.New(), CompanyID: company, Role: model.UserRoleAdmin},
		manager:    model.Principal{UserID: uuid.New(), CompanyID: company, Role: model.UserRoleManager},
		staff:      model.Principal{UserID: uuid.New(), CompanyID: company, Role: model.UserRoleStaff},
		tech:       model.Principal{UserID: uuid.New(), CompanyID: company, Role: model.UserRoleTechnician, EmployeeID: &employee},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func (f *fixture) serviceRequest(t *testing.T, charge string) *model.ServiceRequest {
	t.Helper()
	request, err := f.requests.Create(f.ctx, f.staff, CreateServiceRequestInput{
		CustomerName:  "Jane Customer",
		Description:   "Leaking boiler",
		ServiceCharge: dec(charge),
	})
	require.NoError(t, err)
	return request
}

func (f *fixture) requestStatus(t *testing.T, id uuid.UUID) model.ServiceRequestStatus {
	t.Helper()
	request, err := f.requests.Get(f.ctx, f.staff, id)
	require.NoError(t, err)
	return request.Status
}

// scenarioEstimate creates the reference estimate: one material line of 2 × 10
// with a 10% markup, one labor line of 3 h at 20, 10% profit and 10% VAT.
func (f *fixture) scenarioEstimate(t *testing.T, requestID uuid.UUID) *model.Estimate {
	t.Helper()
	estimate, err := f.estimates.Create(f.ctx, f.staff, CreateEstimateInput{
		ServiceRequestID: requestID,
		Items: []EstimateItemInput{{
			ItemType:    model.ItemTypeMaterial,
			Name:        "Copper pipe",
			Unit:        "m",
			Quantity:    dec("2"),
			UnitCost:    dec("10"),
			MarkupType:  model.AdjustmentPercentage,
			MarkupValue: dec("10"),
		}},
		LaborItems: []EstimateLaborInput{{
			Description: "Install",
			Quantity:    dec("1"),
			Hours:       dec("3"),
			HourlyRate:  dec("20"),
		}},
		Pricing: PricingInput{
			ProfitMarginType:  model.AdjustmentPercentage,
			ProfitMarginValue: dec("10"),
			VatRate:           dec("10"),
		},
	})
	require.NoError(t, err)
	return estimate
}

func (f *fixture) approvedEstimate(t *testing.T, requestID uuid.UUID) *model.Estimate {
	t.Helper()
	estimate := f.scenarioEstimate(t, requestID)
	_, err := f.estimates.SubmitForApproval(f.ctx, f.staff, estimate.ID, SubmitEstimateInput{})
	require.NoError(t, err)
	approved, err := f.estimates.Approve(f.ctx, f.manager, estimate.ID, ReviewEstimateInput{})
	require.NoError(t, err)
	return approved
}

// inProgressWorkOrder creates a scheduled work order with the technician on
// the team and starts it.
func (f *fixture) inProgressWorkOrder(t *testing.T, requestID uuid.UUID, checklist ...ChecklistItemInput) *model.WorkOrder {
	t.Helper()
	rate := dec("40")
	workOrder, err := f.workOrders.Create(f.ctx, f.staff, CreateWorkOrderInput{
		ServiceRequestID: requestID,
		Items: []WorkOrderItemInput{
			{ItemType: model.ItemTypeMaterial, Name: "Valve", Quantity: dec("2"), UnitCost: dec("12.5")},
			{ItemType: model.ItemTypeLabor, Name: "Planned labor", Quantity: dec("1"), UnitCost: dec("100")},
		},
		WorkOrderDetails: WorkOrderDetails{
			Title:     "Replace valve",
			Checklist: checklist,
			Team:      []TeamMemberInput{{EmployeeID: *f.tech.EmployeeID, Role: model.TeamRoleLead, HourlyRate: &rate}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, model.WorkOrderStatusScheduled, workOrder.Status)

	started, err := f.workOrders.StartWork(f.ctx, f.tech, workOrder.ID)
	require.NoError(t, err)
	return started
}

func (f *fixture) completedRequest(t *testing.T, charge string) *model.ServiceRequest {
	t.Helper()
	request := f.serviceRequest(t, charge)
	workOrder := f.inProgressWorkOrder(t, request.ID)
	_, err := f.workOrders.Complete(f.ctx, f.tech, workOrder.ID, CompleteInput{WorkPerformed: "Valve replaced"})
	require.NoError(t, err)
	require.Equal(t, model.ServiceRequestStatusCompleted, f.requestStatus(t, request.ID))
	return request
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestTranslateRepositoryErrors(t *testing.T) {
	id := uuid.New()
	assert.ErrorIs(t, translate(repository.ErrNotFound, "estimate", id), ErrNotFound)
	assert.ErrorIs(t, translate(repository.ErrDuplicate, "estimate", id), ErrConflict)
	assert.NoError(t, translate(nil, "estimate", id))
}

func TestTransitionErrorNamesStatuses(t *testing.T) {
	err := transitionError("estimate", "EST-2026-0001", "approved", model.EstimateStatusDraft,
		[]model.EstimateStatus{model.EstimateStatusPendingManagerApproval})

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.EqualError(t, err, "estimate EST-2026-0001 cannot be approved: status is DRAFT (must be PENDING_MANAGER_APPROVAL)")
}

func TestValidateInputReportsJSONFieldNames(t *testing.T) {
	err := validateInput(CreateEstimateInput{
		ServiceRequestID: uuid.New(),
		Items: []EstimateItemInput{{
			ItemType: model.ItemTypeLabor,
			Name:     "Pipe",
			Quantity: dec("0"),
			UnitCost: dec("-1"),
		}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"items[0].item_type", "items[0].quantity", "items[0].unit_cost"}, fields)
}

func TestValidateInputRejectsExcessScale(t *testing.T) {
	err := validateInput(CreateEstimateInput{
		ServiceRequestID: uuid.New(),
		Items: []EstimateItemInput{{
			ItemType: model.ItemTypeMaterial,
			Name:     "Washer",
			Quantity: dec("3000.0005"),
			UnitCost: dec("0.000333"),
		}},
		LaborItems: []EstimateLaborInput{{
			Description: "Fit",
			Quantity:    dec("1"),
			Hours:       dec("1.255"),
			HourlyRate:  dec("30"),
		}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	rules := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		rules[f.Field] = f.Rule
	}
	assert.Equal(t, map[string]string{
		"items[0].quantity":    "scale=3",
		"items[0].unit_cost":   "scale=2",
		"labor_items[0].hours": "scale=2",
	}, rules)

	assert.NoError(t, validateInput(CreateEstimateInput{
		ServiceRequestID: uuid.New(),
		Items: []EstimateItemInput{{
			ItemType: model.ItemTypeMaterial,
			Name:     "Washer",
			Quantity: dec("2.500"),
			UnitCost: dec("0.10"),
		}},
	}), "trailing zeros fit the column")

	vat := dec("7.125")
	assert.ErrorIs(t, validateInput(EstimatePatch{VatRate: &vat}), ErrInvalidInput)
	assert.ErrorIs(t, validateInput(CreateQuoteInput{
		ServiceRequestID: uuid.New(),
		Items:            []QuoteItemInput{{ItemType: model.ItemTypeOther, Description: "Call-out", Quantity: dec("1"), UnitPrice: dec("0.12345")}},
		ValidUntil:       time.Now().Add(time.Hour),
	}), ErrInvalidInput)
}

func TestNewValidatorRegistersCustomRules(t *testing.T) {
	assert.NotPanics(t, func() { newValidator() })
}

func TestValidateInputAcceptsEmptyAdjustment(t *testing.T) {
	none := model.AdjustmentType("")
	bogus := model.AdjustmentType("BOGUS")

	assert.NoError(t, validateInput(EstimatePatch{DiscountType: &none}))
	assert.ErrorIs(t, validateInput(EstimatePatch{DiscountType: &bogus}), ErrInvalidInput)
}

func TestRecordSiteVisitHidesOtherCompanies(t *testing.T) {
	f := newFixture(t)
	request := f.serviceRequest(t, "0")

	visit, err := f.requests.RecordSiteVisit(f.ctx, f.staff, request.ID, RecordSiteVisitInput{})
	require.NoError(t, err)
	assert.Equal(t, request.ID, visit.ServiceRequestID)
	assert.NotNil(t, visit.VisitedAt)

	outsider := model.Principal{UserID: uuid.New(), CompanyID: uuid.New(), Role: model.UserRoleAdmin}
	_, err = f.requests.RecordSiteVisit(f.ctx, outsider, request.ID, RecordSiteVisitInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}
