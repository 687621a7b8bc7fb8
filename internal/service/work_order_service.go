package service

import (
	"context"
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

type WorkOrderService struct {
	engine
}

func NewWorkOrderService(store repository.Store, numbers *numbering.Generator, opts Options, log zerolog.Logger) *WorkOrderService {
	return &WorkOrderService{engine: newEngine(store, numbers, opts, log)}
}

type WorkOrderItemInput struct {
	ItemType model.ItemType  `json:"item_type" validate:"required,oneof=MATERIAL EQUIPMENT OTHER LABOR"`
	Name     string          `json:"name" validate:"required,max=255"`
	Unit     string          `json:"unit" validate:"max=32"`
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0,scale=3"`
	UnitCost decimal.Decimal `json:"unit_cost" validate:"gte=0,scale=4"`
}

type ChecklistItemInput struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	IsRequired  bool    `json:"is_required"`
}

type TeamMemberInput struct {
	EmployeeID uuid.UUID        `json:"employee_id" validate:"required"`
	Role       model.TeamRole   `json:"role" validate:"required,enum"`
	HourlyRate *decimal.Decimal `json:"hourly_rate" validate:"omitempty,gte=0,scale=2"`
}

// WorkOrderDetails holds the fields shared by every way of creating a work order.
type WorkOrderDetails struct {
	Title             string                  `json:"title" validate:"max=255"`
	Description       *string                 `json:"description"`
	Priority          model.WorkOrderPriority `json:"priority" validate:"omitempty,enum"`
	ScheduledDate     *time.Time              `json:"scheduled_date"`
	ScheduledTime     *string                 `json:"scheduled_time" validate:"omitempty,datetime=15:04"`
	EstimatedDuration *int                    `json:"estimated_duration" validate:"omitempty,gte=0"`
	Checklist         []ChecklistItemInput    `json:"checklist" validate:"dive"`
	Team              []TeamMemberInput       `json:"team" validate:"dive"`
}

type CreateWorkOrderInput struct {
	ServiceRequestID uuid.UUID            `json:"service_request_id" validate:"required"`
	Items            []WorkOrderItemInput `json:"items" validate:"dive"`
	WorkOrderDetails
}

type CreateFromQuoteInput struct {
	QuoteID uuid.UUID `json:"quote_id" validate:"required"`
	WorkOrderDetails
}

type CreateFromEstimateInput struct {
	EstimateID uuid.UUID `json:"estimate_id" validate:"required"`
	WorkOrderDetails
}

// Create opens a work order for a service request with freely entered items.
func (s *WorkOrderService) Create(ctx context.Context, principal model.Principal, input CreateWorkOrderInput) (*model.WorkOrder, error) {
	if principal.IsTechnician() {
		return nil, ErrPermissionDenied
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := uniqueTeam(input.Team); err != nil {
		return nil, err
	}

	var created *model.WorkOrder
	err := s.numbered(ctx, func(tx repository.Tx) error {
		request, err := loadServiceRequest(ctx, tx, principal, input.ServiceRequestID)
		if err != nil {
			return err
		}
		workOrder := s.newWorkOrder(principal, request, input.WorkOrderDetails)
		for _, in := range input.Items {
			workOrder.Items = append(workOrder.Items, workOrderItem(in, false, nil))
		}
		created, err = s.insert(ctx, tx, principal, workOrder, fmt.Sprintf("Work order created for %s", request.CustomerName))
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateFromQuote opens a work order from an ACCEPTED quote. Quote lines become
// planned items and the quote is marked CONVERTED.
func (s *WorkOrderService) CreateFromQuote(ctx context.Context, principal model.Principal, input CreateFromQuoteInput) (*model.WorkOrder, error) {
	if principal.IsTechnician() {
		return nil, ErrPermissionDenied
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := uniqueTeam(input.Team); err != nil {
		return nil, err
	}

	var created *model.WorkOrder
	err := s.numbered(ctx, func(tx repository.Tx) error {
		quote, err := loadQuote(ctx, tx, principal, input.QuoteID)
		if err != nil {
			return err
		}
		if !quote.Status.CanTransitionTo(model.QuoteStatusConverted) {
			return transitionError("quote", quote.QuoteNo, "converted", quote.Status,
				[]model.QuoteStatus{model.QuoteStatusAccepted})
		}
		request, err := loadServiceRequest(ctx, tx, principal, quote.ServiceRequestID)
		if err != nil {
			return err
		}

		workOrder := s.newWorkOrder(principal, request, input.WorkOrderDetails)
		workOrder.QuoteID = &quote.ID
		workOrder.EstimateID = quote.EstimateID
		for _, line := range quote.Items {
			workOrder.Items = append(workOrder.Items, model.WorkOrderItem{
				ItemType:       line.ItemType,
				Name:           line.Description,
				Unit:           line.Unit,
				Quantity:       line.Quantity,
				UnitCost:       line.UnitPrice,
				TotalCost:      line.TotalPrice,
				IsFromEstimate: true,
			})
		}
		created, err = s.insert(ctx, tx, principal, workOrder, fmt.Sprintf("Work order created from quote %s", quote.QuoteNo))
		if err != nil {
			return err
		}

		quote.Status = model.QuoteStatusConverted
		quote.WorkOrderID = &created.ID
		return tx.Quotes().Update(ctx, quote)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateFromEstimate opens a work order straight from an APPROVED estimate.
// Estimate labor lines are carried as planned LABOR items.
func (s *WorkOrderService) CreateFromEstimate(ctx context.Context, principal model.Principal, input CreateFromEstimateInput) (*model.WorkOrder, error) {
	if principal.IsTechnician() {
		return nil, ErrPermissionDenied
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := uniqueTeam(input.Team); err != nil {
		return nil, err
	}

	var created *model.WorkOrder
	err := s.numbered(ctx, func(tx repository.Tx) error {
		estimate, err := tx.Estimates().GetForUpdate(ctx, input.EstimateID)
		if err != nil {
			return translate(err, "estimate", input.EstimateID)
		}
		if estimate.CompanyID != principal.CompanyID {
			return notFound("estimate", input.EstimateID)
		}
		if !estimate.Status.CanTransitionTo(model.EstimateStatusConverted) {
			return transitionError("estimate", estimate.EstimateNo, "converted", estimate.Status,
				[]model.EstimateStatus{model.EstimateStatusApproved})
		}
		request, err := loadServiceRequest(ctx, tx, principal, estimate.ServiceRequestID)
		if err != nil {
			return err
		}

		workOrder := s.newWorkOrder(principal, request, input.WorkOrderDetails)
		workOrder.EstimateID = &estimate.ID
		for _, item := range estimate.Items {
			workOrder.Items = append(workOrder.Items, model.WorkOrderItem{
				ItemType:       item.ItemType,
				Name:           item.Name,
				Unit:           item.Unit,
				Quantity:       item.Quantity,
				UnitCost:       item.UnitCost,
				TotalCost:      item.TotalCost,
				IsFromEstimate: true,
			})
		}
		for _, labor := range estimate.LaborItems {
			hours := labor.Quantity.Mul(labor.Hours)
			workOrder.Items = append(workOrder.Items, model.WorkOrderItem{
				ItemType:       model.ItemTypeLabor,
				Name:           labor.Description,
				Unit:           "hour",
				Quantity:       hours,
				UnitCost:       labor.HourlyRate,
				TotalCost:      labor.TotalCost,
				IsFromEstimate: true,
			})
		}
		created, err = s.insert(ctx, tx, principal, workOrder, fmt.Sprintf("Work order created from estimate %s", estimate.EstimateNo))
		if err != nil {
			return err
		}

		estimate.Status = model.EstimateStatusConverted
		estimate.ConvertedWorkOrderID = &created.ID
		estimate.ConvertedAt = s.timestamp()
		if err := tx.Estimates().Update(ctx, estimate); err != nil {
			return err
		}
		return tx.Estimates().AddActivity(ctx, &model.EstimateActivity{
			EstimateID:  estimate.ID,
			Action:      model.EstimateActionConverted,
			Description: fmt.Sprintf("Estimate %s converted to work order %s", estimate.EstimateNo, created.WorkOrderNo),
			ActorID:     principal.UserID,
			Metadata:    map[string]interface{}{"work_order_id": created.ID.String(), "work_order_no": created.WorkOrderNo},
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *WorkOrderService) newWorkOrder(principal model.Principal, request *model.ServiceRequest, details WorkOrderDetails) *model.WorkOrder {
	workOrder := &model.WorkOrder{
		CompanyID:         principal.CompanyID,
		ServiceRequestID:  request.ID,
		Status:            model.WorkOrderStatusPending,
		Priority:          details.Priority,
		Title:             strings.TrimSpace(details.Title),
		Description:       details.Description,
		ScheduledDate:     details.ScheduledDate,
		ScheduledTime:     details.ScheduledTime,
		EstimatedDuration: details.EstimatedDuration,
		CreatedBy:         principal.UserID,
	}
	if workOrder.Priority == "" {
		workOrder.Priority = model.WorkOrderPriorityMedium
	}
	if workOrder.Title == "" {
		workOrder.Title = "Work order for " + request.CustomerName
	}
	for i, in := range details.Checklist {
		workOrder.Checklist = append(workOrder.Checklist, model.WorkOrderChecklist{
			Title:       strings.TrimSpace(in.Title),
			Description: in.Description,
			IsRequired:  in.IsRequired,
			SortOrder:   i,
		})
	}
	if len(details.Team) > 0 {
		workOrder.Team = teamMembers(details.Team)
		workOrder.Status = model.WorkOrderStatusScheduled
	}
	return workOrder
}

// insert numbers and stores a new work order and moves its service request to SCHEDULED.
func (s *WorkOrderService) insert(ctx context.Context, tx repository.Tx, principal model.Principal, workOrder *model.WorkOrder, description string) (*model.WorkOrder, error) {
	number, err := s.numbers.Next(ctx, tx.Counters(), principal.CompanyID, model.DocumentTypeWorkOrder)
	if err != nil {
		return nil, err
	}
	workOrder.WorkOrderNo = number
	s.applyCosts(workOrder, workOrder.Items, nil)

	if err := tx.WorkOrders().Create(ctx, workOrder); err != nil {
		return nil, err
	}
	if err := s.record(ctx, tx, workOrder, principal, model.WorkOrderActionCreated, description,
		map[string]interface{}{"work_order_no": workOrder.WorkOrderNo, "items": len(workOrder.Items)}); err != nil {
		return nil, err
	}
	if err := setServiceRequestStatus(ctx, tx, workOrder.ServiceRequestID, model.ServiceRequestStatusScheduled); err != nil {
		return nil, err
	}
	s.log.Info().Str("work_order_no", workOrder.WorkOrderNo).Str("company_id", workOrder.CompanyID.String()).Msg("work order created")
	return workOrder, nil
}

func workOrderItem(in WorkOrderItemInput, additional bool, addedBy *uuid.UUID) model.WorkOrderItem {
	return model.WorkOrderItem{
		ItemType:     in.ItemType,
		Name:         strings.TrimSpace(in.Name),
		Unit:         in.Unit,
		Quantity:     in.Quantity,
		UnitCost:     in.UnitCost,
		TotalCost:    pricing.Round(in.Quantity.Mul(in.UnitCost)),
		IsAdditional: additional,
		AddedBy:      addedBy,
	}
}

func teamMembers(inputs []TeamMemberInput) []model.WorkOrderTeam {
	members := make([]model.WorkOrderTeam, len(inputs))
	for i, in := range inputs {
		members[i] = model.WorkOrderTeam{
			EmployeeID: in.EmployeeID,
			Role:       in.Role,
		}
		if in.HourlyRate != nil {
			members[i].HourlyRate = decimal.NewNullDecimal(*in.HourlyRate)
		}
	}
	return members
}

func uniqueTeam(inputs []TeamMemberInput) error {
	seen := make(map[uuid.UUID]struct{}, len(inputs))
	for i, in := range inputs {
		if _, dup := seen[in.EmployeeID]; dup {
			return invalidField(fmt.Sprintf("team[%d].employee_id", i), "unique")
		}
		seen[in.EmployeeID] = struct{}{}
	}
	return nil
}

func (s *WorkOrderService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, patch WorkOrderPatch) (*model.WorkOrder, error) {
	if err := validateInput(patch); err != nil {
		return nil, err
	}
	return s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if workOrder.Status.IsTerminal() {
			return s.refuseTerminal(workOrder, "edited")
		}
		patch.apply(workOrder)
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionUpdated,
			fmt.Sprintf("Work order %s updated", workOrder.WorkOrderNo), nil)
	})
}

type AssignTeamInput struct {
	Members []TeamMemberInput `json:"members" validate:"required,min=1,dive"`
}

// AssignTeam replaces the whole roster. A PENDING work order becomes SCHEDULED.
func (s *WorkOrderService) AssignTeam(ctx context.Context, principal model.Principal, id uuid.UUID, input AssignTeamInput) (*model.WorkOrder, error) {
	if principal.IsTechnician() {
		return nil, ErrPermissionDenied
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := uniqueTeam(input.Members); err != nil {
		return nil, err
	}
	return s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if workOrder.Status.IsTerminal() {
			return s.refuseTerminal(workOrder, "assigned")
		}
		members := teamMembers(input.Members)
		if err := tx.WorkOrders().ReplaceTeam(ctx, workOrder.ID, members); err != nil {
			return err
		}
		workOrder.Team = members
		if workOrder.Status == model.WorkOrderStatusPending {
			workOrder.Status = model.WorkOrderStatusScheduled
		}
		employees := make([]string, len(members))
		for i, m := range members {
			employees[i] = m.EmployeeID.String()
		}
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionTeamAssigned,
			fmt.Sprintf("Team of %d assigned to work order %s", len(members), workOrder.WorkOrderNo),
			map[string]interface{}{"employee_ids": employees})
	})
}

type ScheduleInput struct {
	ScheduledDate     time.Time `json:"scheduled_date" validate:"required"`
	ScheduledTime     *string   `json:"scheduled_time" validate:"omitempty,datetime=15:04"`
	EstimatedDuration *int      `json:"estimated_duration" validate:"omitempty,gte=0"`
	Reason            *string   `json:"reason"`
}

func (s *WorkOrderService) Schedule(ctx context.Context, principal model.Principal, id uuid.UUID, input ScheduleInput) (*model.WorkOrder, error) {
	return s.schedule(ctx, principal, id, input, model.WorkOrderActionScheduled, "scheduled")
}

// Reschedule moves the visit and drops any earlier customer confirmation.
func (s *WorkOrderService) Reschedule(ctx context.Context, principal model.Principal, id uuid.UUID, input ScheduleInput) (*model.WorkOrder, error) {
	return s.schedule(ctx, principal, id, input, model.WorkOrderActionRescheduled, "rescheduled")
}

func (s *WorkOrderService) schedule(ctx context.Context, principal model.Principal, id uuid.UUID, input ScheduleInput, action model.WorkOrderAction, verb string) (*model.WorkOrder, error) {
	if principal.IsTechnician() {
		return nil, ErrPermissionDenied
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if err := s.advance(workOrder, model.WorkOrderStatusScheduled, verb); err != nil {
			return err
		}
		metadata := map[string]interface{}{"scheduled_date": input.ScheduledDate.Format(time.DateOnly)}
		if workOrder.ScheduledDate != nil {
			metadata["previous_date"] = workOrder.ScheduledDate.Format(time.DateOnly)
		}
		if input.Reason != nil {
			metadata["reason"] = *input.Reason
		}

		date := input.ScheduledDate.UTC()
		workOrder.ScheduledDate = &date
		workOrder.ScheduledTime = input.ScheduledTime
		if input.EstimatedDuration != nil {
			workOrder.EstimatedDuration = input.EstimatedDuration
		}
		if action == model.WorkOrderActionRescheduled {
			workOrder.ConfirmedAt = nil
		}
		return s.record(ctx, tx, workOrder, principal, action,
			fmt.Sprintf("Work order %s %s for %s", workOrder.WorkOrderNo, verb, date.Format(time.DateOnly)), metadata)
	})
}

func (s *WorkOrderService) Confirm(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.WorkOrder, error) {
	return s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if err := s.advance(workOrder, model.WorkOrderStatusConfirmed, "confirmed"); err != nil {
			return err
		}
		workOrder.ConfirmedAt = s.timestamp()
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionConfirmed,
			fmt.Sprintf("Work order %s confirmed", workOrder.WorkOrderNo), nil)
	})
}

func (s *WorkOrderService) Cancel(ctx context.Context, principal model.Principal, id uuid.UUID, input CancelInput) (*model.WorkOrder, error) {
	if principal.IsTechnician() {
		return nil, ErrPermissionDenied
	}
	return s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if err := s.advance(workOrder, model.WorkOrderStatusCancelled, "cancelled"); err != nil {
			return err
		}
		workOrder.CancelledAt = s.timestamp()
		workOrder.CancellationReason = input.Reason
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionCancelled,
			fmt.Sprintf("Work order %s cancelled", workOrder.WorkOrderNo),
			map[string]interface{}{"reason": stringValue(input.Reason)})
	})
}

// Delete removes a work order on which no field work has been recorded.
func (s *WorkOrderService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if principal.IsTechnician() {
		return ErrPermissionDenied
	}
	return s.store.WithinTx(ctx, func(tx repository.Tx) error {
		workOrder, err := s.load(ctx, tx, principal, id)
		if err != nil {
			return err
		}
		if !workOrder.Status.IsDeletable() {
			return transitionError("work order", workOrder.WorkOrderNo, "deleted", workOrder.Status,
				[]model.WorkOrderStatus{model.WorkOrderStatusPending, model.WorkOrderStatusScheduled})
		}
		if err := tx.WorkOrders().Delete(ctx, workOrder.ID); err != nil {
			return translate(err, "work order", id)
		}
		s.log.Info().Str("work_order_no", workOrder.WorkOrderNo).Str("user_id", principal.UserID.String()).Msg("work order deleted")
		return nil
	})
}

func (s *WorkOrderService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.WorkOrder, error) {
	var workOrder *model.WorkOrder
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		found, err := tx.WorkOrders().GetByID(ctx, id)
		if err != nil {
			return translate(err, "work order", id)
		}
		if !canSee(principal, found) {
			return notFound("work order", id)
		}
		workOrder = found
		return nil
	})
	return workOrder, err
}

// List returns the company's work orders. Technicians only see the ones they
// are assigned to.
func (s *WorkOrderService) List(ctx context.Context, principal model.Principal, filter repository.WorkOrderListFilter) ([]model.WorkOrder, error) {
	filter.CompanyID = principal.CompanyID
	if principal.IsTechnician() {
		if principal.EmployeeID == nil {
			return nil, ErrPermissionDenied
		}
		filter.EmployeeID = principal.EmployeeID
	}
	var workOrders []model.WorkOrder
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		workOrders, err = tx.WorkOrders().List(ctx, filter)
		return err
	})
	return workOrders, err
}

func (s *WorkOrderService) Activities(ctx context.Context, principal model.Principal, id uuid.UUID) ([]model.WorkOrderActivity, error) {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return nil, err
	}
	var activities []model.WorkOrderActivity
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		activities, err = tx.WorkOrders().ListActivities(ctx, id)
		return err
	})
	return activities, err
}

func canSee(principal model.Principal, workOrder *model.WorkOrder) bool {
	if workOrder.CompanyID != principal.CompanyID {
		return false
	}
	if !principal.IsTechnician() {
		return true
	}
	if principal.EmployeeID == nil {
		return false
	}
	for _, member := range workOrder.Team {
		if member.EmployeeID == *principal.EmployeeID {
			return true
		}
	}
	return false
}

// mutate loads and locks a work order, runs apply and saves the result in one
// transaction.
func (s *WorkOrderService) mutate(ctx context.Context, principal model.Principal, id uuid.UUID, apply func(tx repository.Tx, workOrder *model.WorkOrder) error) (*model.WorkOrder, error) {
	var result *model.WorkOrder
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		workOrder, err := s.load(ctx, tx, principal, id)
		if err != nil {
			return err
		}
		if err := apply(tx, workOrder); err != nil {
			return err
		}
		if err := tx.WorkOrders().Update(ctx, workOrder); err != nil {
			return err
		}
		result = workOrder
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *WorkOrderService) load(ctx context.Context, tx repository.Tx, principal model.Principal, id uuid.UUID) (*model.WorkOrder, error) {
	workOrder, err := tx.WorkOrders().GetForUpdate(ctx, id)
	if err != nil {
		return nil, translate(err, "work order", id)
	}
	if !canSee(principal, workOrder) {
		return nil, notFound("work order", id)
	}
	return workOrder, nil
}

// advance sets next when the status table allows it.
func (s *WorkOrderService) advance(workOrder *model.WorkOrder, next model.WorkOrderStatus, action string) error {
	if !workOrder.Status.CanTransitionTo(next) {
		return transitionError("work order", workOrder.WorkOrderNo, action, workOrder.Status,
			sourcesOf(model.WorkOrderStatuses, next, model.WorkOrderStatus.CanTransitionTo))
	}
	workOrder.Status = next
	return nil
}

func (s *WorkOrderService) refuseTerminal(workOrder *model.WorkOrder, action string) error {
	var open []model.WorkOrderStatus
	for _, status := range model.WorkOrderStatuses {
		if !status.IsTerminal() {
			open = append(open, status)
		}
	}
	return transitionError("work order", workOrder.WorkOrderNo, action, workOrder.Status, open)
}

// applyCosts recomputes the cost fields from items and time entries.
func (s *WorkOrderService) applyCosts(workOrder *model.WorkOrder, items []model.WorkOrderItem, labor []model.WorkOrderLabor) {
	costs := pricing.WorkOrder(items, labor, workOrder.AdditionalCost, s.opts.DefaultHourlyRate)
	workOrder.MaterialCost = costs.MaterialCost
	workOrder.LaborCost = costs.LaborCost
	workOrder.TotalCost = costs.TotalCost
}

func (s *WorkOrderService) recomputeCosts(ctx context.Context, tx repository.Tx, workOrder *model.WorkOrder) error {
	items, err := tx.WorkOrders().ListItems(ctx, workOrder.ID)
	if err != nil {
		return err
	}
	labor, err := tx.WorkOrders().ListLabor(ctx, workOrder.ID)
	if err != nil {
		return err
	}
	s.applyCosts(workOrder, items, labor)
	return nil
}

func (s *WorkOrderService) record(ctx context.Context, tx repository.Tx, workOrder *model.WorkOrder, principal model.Principal, action model.WorkOrderAction, description string, metadata map[string]interface{}) error {
	return tx.WorkOrders().AddActivity(ctx, &model.WorkOrderActivity{
		WorkOrderID: workOrder.ID,
		Action:      action,
		Description: description,
		ActorID:     principal.UserID,
		Metadata:    metadata,
	})
}
