package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fieldops-service/internal/model"
	"fieldops-service/internal/pricing"
	"fieldops-service/internal/repository"
)

type TimeEntryInput struct {
	// EmployeeID defaults to the caller's own employee record.
	EmployeeID   *uuid.UUID `json:"employee_id"`
	BreakMinutes int        `json:"break_minutes" validate:"gte=0"`
}

// resolveEmployee picks the employee a time entry is for. Technicians may only
// record their own time.
func resolveEmployee(principal model.Principal, requested *uuid.UUID) (uuid.UUID, error) {
	if requested == nil {
		if principal.EmployeeID == nil {
			return uuid.Nil, invalidField("employee_id", "required")
		}
		return *principal.EmployeeID, nil
	}
	if principal.IsTechnician() && (principal.EmployeeID == nil || *principal.EmployeeID != *requested) {
		return uuid.Nil, ErrPermissionDenied
	}
	return *requested, nil
}

// rateFor returns the roster rate of the employee or the configured default.
func (s *WorkOrderService) rateFor(workOrder *model.WorkOrder, employeeID uuid.UUID) decimal.NullDecimal {
	for _, member := range workOrder.Team {
		if member.EmployeeID == employeeID && member.HourlyRate.Valid {
			return member.HourlyRate
		}
	}
	return decimal.NewNullDecimal(s.opts.DefaultHourlyRate)
}

func alreadyClockedIn(employeeID uuid.UUID, workOrder *model.WorkOrder) error {
	return &PreconditionError{Rule: fmt.Sprintf("employee %s is already clocked in on work order %s", employeeID, workOrder.WorkOrderNo)}
}

func notClockedIn(employeeID uuid.UUID, workOrder *model.WorkOrder) error {
	return &PreconditionError{Rule: fmt.Sprintf("employee %s is not clocked in on work order %s", employeeID, workOrder.WorkOrderNo)}
}

// StartEnRoute records that an employee is travelling to the site. The first
// traveller moves the work order to EN_ROUTE.
func (s *WorkOrderService) StartEnRoute(ctx context.Context, principal model.Principal, id uuid.UUID, input TimeEntryInput) (*model.WorkOrder, error) {
	employeeID, err := resolveEmployee(principal, input.EmployeeID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if workOrder.Status != model.WorkOrderStatusEnRoute {
			if err := s.advance(workOrder, model.WorkOrderStatusEnRoute, "started en route"); err != nil {
				return err
			}
		}

		now := s.timestamp()
		entry, err := tx.WorkOrders().FindOpenLabor(ctx, workOrder.ID, employeeID)
		switch {
		case err == nil:
			entry.TravelStartAt = now
			err = tx.WorkOrders().UpdateLabor(ctx, entry)
		case errors.Is(err, repository.ErrNotFound):
			err = tx.WorkOrders().CreateLabor(ctx, &model.WorkOrderLabor{
				WorkOrderID:   workOrder.ID,
				EmployeeID:    employeeID,
				TravelStartAt: now,
				ClockInAt:     *now,
				HourlyRate:    s.rateFor(workOrder, employeeID),
			})
			if errors.Is(err, repository.ErrDuplicate) {
				err = alreadyClockedIn(employeeID, workOrder)
			}
		}
		if err != nil {
			return err
		}
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionEnRoute,
			fmt.Sprintf("Employee en route to work order %s", workOrder.WorkOrderNo),
			map[string]interface{}{"employee_id": employeeID.String()})
	})
}

func (s *WorkOrderService) ArriveAtSite(ctx context.Context, principal model.Principal, id uuid.UUID, input TimeEntryInput) (*model.WorkOrder, error) {
	employeeID, err := resolveEmployee(principal, input.EmployeeID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if workOrder.Status.IsTerminal() {
			return s.refuseTerminal(workOrder, "arrived at")
		}
		entry, err := tx.WorkOrders().FindOpenLabor(ctx, workOrder.ID, employeeID)
		if errors.Is(err, repository.ErrNotFound) {
			return notClockedIn(employeeID, workOrder)
		}
		if err != nil {
			return err
		}
		entry.ArrivedAt = s.timestamp()
		if err := tx.WorkOrders().UpdateLabor(ctx, entry); err != nil {
			return err
		}
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionArrived,
			fmt.Sprintf("Employee arrived at site for work order %s", workOrder.WorkOrderNo),
			map[string]interface{}{"employee_id": employeeID.String()})
	})
}

func (s *WorkOrderService) StartWork(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.WorkOrder, error) {
	return s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if err := requireStatus("work order", workOrder.WorkOrderNo, "started", workOrder.Status,
			model.WorkOrderStatusScheduled, model.WorkOrderStatusConfirmed, model.WorkOrderStatusEnRoute); err != nil {
			return err
		}
		workOrder.Status = model.WorkOrderStatusInProgress
		if workOrder.StartedAt == nil {
			workOrder.StartedAt = s.timestamp()
		}
		if err := s.record(ctx, tx, workOrder, principal, model.WorkOrderActionStarted,
			fmt.Sprintf("Work started on work order %s", workOrder.WorkOrderNo), nil); err != nil {
			return err
		}
		return setServiceRequestStatus(ctx, tx, workOrder.ServiceRequestID, model.ServiceRequestStatusInProgress)
	})
}

// ClockIn opens a time entry. An employee holds at most one open entry per
// work order.
func (s *WorkOrderService) ClockIn(ctx context.Context, principal model.Principal, id uuid.UUID, input TimeEntryInput) (*model.WorkOrderLabor, error) {
	employeeID, err := resolveEmployee(principal, input.EmployeeID)
	if err != nil {
		return nil, err
	}
	var entry *model.WorkOrderLabor
	_, err = s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if workOrder.Status.IsTerminal() {
			return s.refuseTerminal(workOrder, "clocked into")
		}
		_, err := tx.WorkOrders().FindOpenLabor(ctx, workOrder.ID, employeeID)
		if err == nil {
			return alreadyClockedIn(employeeID, workOrder)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		entry = &model.WorkOrderLabor{
			WorkOrderID: workOrder.ID,
			EmployeeID:  employeeID,
			ClockInAt:   *s.timestamp(),
			HourlyRate:  s.rateFor(workOrder, employeeID),
		}
		if err := tx.WorkOrders().CreateLabor(ctx, entry); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return alreadyClockedIn(employeeID, workOrder)
			}
			return err
		}
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionClockIn,
			fmt.Sprintf("Employee clocked in on work order %s", workOrder.WorkOrderNo),
			map[string]interface{}{"employee_id": employeeID.String()})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ClockOut closes the employee's open time entry and reprices the work order.
func (s *WorkOrderService) ClockOut(ctx context.Context, principal model.Principal, id uuid.UUID, input TimeEntryInput) (*model.WorkOrderLabor, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	employeeID, err := resolveEmployee(principal, input.EmployeeID)
	if err != nil {
		return nil, err
	}
	var entry *model.WorkOrderLabor
	_, err = s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		open, err := tx.WorkOrders().FindOpenLabor(ctx, workOrder.ID, employeeID)
		if errors.Is(err, repository.ErrNotFound) {
			return notClockedIn(employeeID, workOrder)
		}
		if err != nil {
			return err
		}
		s.closeEntry(open, input.BreakMinutes)
		if err := tx.WorkOrders().UpdateLabor(ctx, open); err != nil {
			return err
		}
		if err := s.recomputeCosts(ctx, tx, workOrder); err != nil {
			return err
		}
		entry = open
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionClockOut,
			fmt.Sprintf("Employee clocked out of work order %s", workOrder.WorkOrderNo),
			map[string]interface{}{
				"employee_id":   employeeID.String(),
				"total_minutes": open.TotalMinutes,
				"labor_cost":    moneyString(workOrder.LaborCost),
			})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *WorkOrderService) closeEntry(entry *model.WorkOrderLabor, breakMinutes int) {
	out := s.timestamp()
	entry.ClockOutAt = out
	entry.BreakMinutes = breakMinutes
	entry.TotalMinutes = pricing.LaborMinutes(entry.ClockInAt, *out, breakMinutes)
}

func (s *WorkOrderService) AddChecklistItem(ctx context.Context, principal model.Principal, id uuid.UUID, input ChecklistItemInput) (*model.WorkOrderChecklist, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	var item *model.WorkOrderChecklist
	_, err := s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if workOrder.Status.IsTerminal() {
			return s.refuseTerminal(workOrder, "changed")
		}
		item = &model.WorkOrderChecklist{
			WorkOrderID: workOrder.ID,
			Title:       strings.TrimSpace(input.Title),
			Description: input.Description,
			IsRequired:  input.IsRequired,
			SortOrder:   len(workOrder.Checklist),
		}
		if err := tx.WorkOrders().AddChecklistItem(ctx, item); err != nil {
			return err
		}
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionChecklistAdded,
			fmt.Sprintf("Checklist item %q added", item.Title), nil)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

type ChecklistUpdateInput struct {
	IsCompleted *bool   `json:"is_completed"`
	Notes       *string `json:"notes"`
	PhotoURL    *string `json:"photo_url" validate:"omitempty,url"`
}

// UpdateChecklistItem ticks or unticks an item. Completion stamps who and when.
func (s *WorkOrderService) UpdateChecklistItem(ctx context.Context, principal model.Principal, id, itemID uuid.UUID, input ChecklistUpdateInput) (*model.WorkOrderChecklist, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	var item *model.WorkOrderChecklist
	_, err := s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if workOrder.Status.IsTerminal() {
			return s.refuseTerminal(workOrder, "changed")
		}
		found, err := tx.WorkOrders().GetChecklistItem(ctx, itemID)
		if err != nil {
			return translate(err, "checklist item", itemID)
		}
		if found.WorkOrderID != workOrder.ID {
			return notFound("checklist item", itemID)
		}

		if input.IsCompleted != nil {
			found.IsCompleted = *input.IsCompleted
			if found.IsCompleted {
				found.CompletedBy = &principal.UserID
				found.CompletedAt = s.timestamp()
			} else {
				found.CompletedBy = nil
				found.CompletedAt = nil
			}
		}
		if input.Notes != nil {
			found.Notes = input.Notes
		}
		if input.PhotoURL != nil {
			found.PhotoURL = input.PhotoURL
		}
		if err := tx.WorkOrders().UpdateChecklistItem(ctx, found); err != nil {
			return err
		}
		item = found
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionChecklistUpdated,
			fmt.Sprintf("Checklist item %q updated", found.Title),
			map[string]interface{}{"checklist_id": found.ID.String(), "is_completed": found.IsCompleted})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// AddItem records consumed material. Items added after work started are
// flagged as additional.
func (s *WorkOrderService) AddItem(ctx context.Context, principal model.Principal, id uuid.UUID, input WorkOrderItemInput) (*model.WorkOrderItem, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	var item model.WorkOrderItem
	_, err := s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if workOrder.Status.IsTerminal() {
			return s.refuseTerminal(workOrder, "changed")
		}
		item = workOrderItem(input, workOrder.StartedAt != nil, &principal.UserID)
		item.WorkOrderID = workOrder.ID
		if err := tx.WorkOrders().AddItem(ctx, &item); err != nil {
			return err
		}
		if err := s.recomputeCosts(ctx, tx, workOrder); err != nil {
			return err
		}
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionItemAdded,
			fmt.Sprintf("Item %q added to work order %s", item.Name, workOrder.WorkOrderNo),
			map[string]interface{}{"total_cost": moneyString(item.TotalCost), "is_additional": item.IsAdditional})
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type PhotoInput struct {
	PhotoType model.PhotoType `json:"photo_type" validate:"required,enum"`
	URL       string          `json:"url" validate:"required,url"`
	Caption   *string         `json:"caption"`
}

func (s *WorkOrderService) AddPhoto(ctx context.Context, principal model.Principal, id uuid.UUID, input PhotoInput) (*model.WorkOrderPhoto, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	var photo *model.WorkOrderPhoto
	_, err := s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if workOrder.Status == model.WorkOrderStatusCancelled {
			return s.refuseTerminal(workOrder, "photographed")
		}
		photo = &model.WorkOrderPhoto{
			WorkOrderID: workOrder.ID,
			PhotoType:   input.PhotoType,
			URL:         input.URL,
			Caption:     input.Caption,
			UploadedBy:  principal.UserID,
		}
		if err := tx.WorkOrders().AddPhoto(ctx, photo); err != nil {
			return err
		}
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionPhotoAdded,
			fmt.Sprintf("%s photo added", input.PhotoType), nil)
	})
	if err != nil {
		return nil, err
	}
	return photo, nil
}

type CompleteInput struct {
	WorkPerformed       string           `json:"work_performed" validate:"required"`
	CustomerSignature   *string          `json:"customer_signature"`
	TechnicianSignature *string          `json:"technician_signature"`
	AdditionalCost      *decimal.Decimal `json:"additional_cost" validate:"omitempty,gte=0,scale=2"`
	CustomerFeedback    *string          `json:"customer_feedback"`
	CustomerRating      *int             `json:"customer_rating" validate:"omitempty,min=1,max=5"`
}

// Complete closes an IN_PROGRESS work order. Every required checklist item must
// be done; otherwise nothing changes and the error names the open items. Open
// time entries are clocked out at completion.
func (s *WorkOrderService) Complete(ctx context.Context, principal model.Principal, id uuid.UUID, input CompleteInput) (*model.WorkOrder, error) {
	input.WorkPerformed = strings.TrimSpace(input.WorkPerformed)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if err := requireStatus("work order", workOrder.WorkOrderNo, "completed", workOrder.Status,
			model.WorkOrderStatusInProgress); err != nil {
			return err
		}
		var missing []string
		for _, item := range workOrder.Checklist {
			if item.IsRequired && !item.IsCompleted {
				missing = append(missing, item.Title)
			}
		}
		if len(missing) > 0 {
			return &PreconditionError{Rule: "required checklist items are not completed", Missing: missing}
		}

		for i := range workOrder.Labor {
			entry := &workOrder.Labor[i]
			if !entry.IsOpen() {
				continue
			}
			s.closeEntry(entry, 0)
			if err := tx.WorkOrders().UpdateLabor(ctx, entry); err != nil {
				return err
			}
		}

		now := s.timestamp()
		workOrder.Status = model.WorkOrderStatusCompleted
		workOrder.CompletedAt = now
		workOrder.WorkPerformed = &input.WorkPerformed
		workOrder.CustomerSignature = input.CustomerSignature
		workOrder.TechnicianSignature = input.TechnicianSignature
		workOrder.CustomerFeedback = input.CustomerFeedback
		workOrder.CustomerRating = input.CustomerRating
		if input.CustomerSignature != nil && *input.CustomerSignature != "" {
			workOrder.SignedAt = now
		}
		if input.AdditionalCost != nil {
			workOrder.AdditionalCost = pricing.Round(*input.AdditionalCost)
		}
		if workOrder.StartedAt != nil {
			minutes := int(now.Sub(*workOrder.StartedAt) / time.Minute)
			workOrder.ActualDuration = &minutes
		}
		if err := s.recomputeCosts(ctx, tx, workOrder); err != nil {
			return err
		}

		if err := s.record(ctx, tx, workOrder, principal, model.WorkOrderActionCompleted,
			fmt.Sprintf("Work order %s completed", workOrder.WorkOrderNo),
			map[string]interface{}{"total_cost": moneyString(workOrder.TotalCost)}); err != nil {
			return err
		}
		return setServiceRequestStatus(ctx, tx, workOrder.ServiceRequestID, model.ServiceRequestStatusCompleted)
	})
}

type ReasonInput struct {
	Reason string `json:"reason" validate:"required"`
}

func (s *WorkOrderService) PutOnHold(ctx context.Context, principal model.Principal, id uuid.UUID, input ReasonInput) (*model.WorkOrder, error) {
	input.Reason = strings.TrimSpace(input.Reason)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if err := requireStatus("work order", workOrder.WorkOrderNo, "put on hold", workOrder.Status,
			model.WorkOrderStatusInProgress); err != nil {
			return err
		}
		workOrder.Status = model.WorkOrderStatusOnHold
		workOrder.HoldReason = &input.Reason
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionPutOnHold,
			fmt.Sprintf("Work order %s put on hold", workOrder.WorkOrderNo),
			map[string]interface{}{"reason": input.Reason})
	})
}

func (s *WorkOrderService) ResumeFromHold(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.WorkOrder, error) {
	return s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if err := requireStatus("work order", workOrder.WorkOrderNo, "resumed", workOrder.Status,
			model.WorkOrderStatusOnHold); err != nil {
			return err
		}
		workOrder.Status = model.WorkOrderStatusInProgress
		workOrder.HoldReason = nil
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionResumed,
			fmt.Sprintf("Work order %s resumed", workOrder.WorkOrderNo), nil)
	})
}

// RequireFollowUp flags a work order that needs another visit.
func (s *WorkOrderService) RequireFollowUp(ctx context.Context, principal model.Principal, id uuid.UUID, input ReasonInput) (*model.WorkOrder, error) {
	input.Reason = strings.TrimSpace(input.Reason)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.mutate(ctx, principal, id, func(tx repository.Tx, workOrder *model.WorkOrder) error {
		if err := s.advance(workOrder, model.WorkOrderStatusRequiresFollowUp, "flagged for follow-up"); err != nil {
			return err
		}
		workOrder.TechnicianNotes = &input.Reason
		return s.record(ctx, tx, workOrder, principal, model.WorkOrderActionFollowUp,
			fmt.Sprintf("Work order %s requires follow-up", workOrder.WorkOrderNo),
			map[string]interface{}{"reason": input.Reason})
	})
}
