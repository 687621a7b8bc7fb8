package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldops-service/internal/http/middleware"
	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/service"
)

func (h *Handler) createWorkOrder(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req service.CreateWorkOrderInput
	if !bindJSON(c, &req) {
		return
	}

	workOrder, err := h.workOrderService.Create(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(workOrder))
}

func (h *Handler) createWorkOrderFromQuote(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req service.CreateFromQuoteInput
	if !bindJSON(c, &req) {
		return
	}

	workOrder, err := h.workOrderService.CreateFromQuote(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(workOrder))
}

func (h *Handler) createWorkOrderFromEstimate(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req service.CreateFromEstimateInput
	if !bindJSON(c, &req) {
		return
	}

	workOrder, err := h.workOrderService.CreateFromEstimate(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(workOrder))
}

func (h *Handler) listWorkOrders(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	filter := repository.WorkOrderListFilter{}

	requestID, ok := queryUUID(c, "service_request_id")
	if !ok {
		return
	}
	filter.ServiceRequestID = requestID

	employeeID, ok := queryUUID(c, "employee_id")
	if !ok {
		return
	}
	filter.EmployeeID = employeeID

	if status := queryStatus(c); status != "" {
		s := model.WorkOrderStatus(status)
		filter.Status = &s
	}

	workOrders, err := h.workOrderService.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrders))
}

func (h *Handler) getWorkOrder(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	workOrder, err := h.workOrderService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) updateWorkOrder(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.WorkOrderPatch
	if !bindJSON(c, &req) {
		return
	}

	workOrder, err := h.workOrderService.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) deleteWorkOrder(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	if err := h.workOrderService.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "work order deleted"}))
}

func (h *Handler) assignTeam(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.AssignTeamInput
	if !bindJSON(c, &req) {
		return
	}

	workOrder, err := h.workOrderService.AssignTeam(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) scheduleWorkOrder(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.ScheduleInput
	if !bindJSON(c, &req) {
		return
	}

	workOrder, err := h.workOrderService.Schedule(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) rescheduleWorkOrder(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.ScheduleInput
	if !bindJSON(c, &req) {
		return
	}

	workOrder, err := h.workOrderService.Reschedule(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) confirmWorkOrder(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	workOrder, err := h.workOrderService.Confirm(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) startEnRoute(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.TimeEntryInput
	if !bindJSON(c, &req) {
		return
	}

	workOrder, err := h.workOrderService.StartEnRoute(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) arriveAtSite(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.TimeEntryInput
	if !bindJSON(c, &req) {
		return
	}

	workOrder, err := h.workOrderService.ArriveAtSite(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) startWork(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	workOrder, err := h.workOrderService.StartWork(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) clockIn(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.TimeEntryInput
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.workOrderService.ClockIn(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(entry))
}

func (h *Handler) clockOut(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.TimeEntryInput
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.workOrderService.ClockOut(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(entry))
}

func (h *Handler) addWorkOrderItem(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.WorkOrderItemInput
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.workOrderService.AddItem(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(item))
}

func (h *Handler) addWorkOrderPhoto(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.PhotoInput
	if !bindJSON(c, &req) {
		return
	}

	photo, err := h.workOrderService.AddPhoto(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(photo))
}

func (h *Handler) addChecklistItem(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.ChecklistItemInput
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.workOrderService.AddChecklistItem(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(item))
}

func (h *Handler) updateChecklistItem(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	itemID, err := uuid.Parse(strings.TrimSpace(c.Param("checklistId")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid checklist item id"))
		return
	}

	var req service.ChecklistUpdateInput
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.workOrderService.UpdateChecklistItem(c.Request.Context(), principal, id, itemID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(item))
}

func (h *Handler) completeWorkOrder(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.CompleteInput
	if !bindJSON(c, &req) {
		return
	}

	workOrder, err := h.workOrderService.Complete(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) holdWorkOrder(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.ReasonInput
	if !bindJSON(c, &req) {
		return
	}

	workOrder, err := h.workOrderService.PutOnHold(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) resumeWorkOrder(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	workOrder, err := h.workOrderService.ResumeFromHold(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) requireFollowUp(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.ReasonInput
	if !bindJSON(c, &req) {
		return
	}

	workOrder, err := h.workOrderService.RequireFollowUp(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) cancelWorkOrder(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.CancelInput
	if !bindJSON(c, &req) {
		return
	}

	workOrder, err := h.workOrderService.Cancel(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(workOrder))
}

func (h *Handler) listWorkOrderActivities(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	activities, err := h.workOrderService.Activities(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(activities))
}
