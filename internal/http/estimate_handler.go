package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldops-service/internal/http/middleware"
	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/service"
)

func (h *Handler) createEstimate(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req service.CreateEstimateInput
	if !bindJSON(c, &req) {
		return
	}

	estimate, err := h.estimateService.Create(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(estimate))
}

func (h *Handler) listEstimates(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	filter := repository.EstimateListFilter{LatestOnly: c.Query("all_versions") != "true"}

	requestID, ok := queryUUID(c, "service_request_id")
	if !ok {
		return
	}
	filter.ServiceRequestID = requestID

	if status := queryStatus(c); status != "" {
		s := model.EstimateStatus(status)
		filter.Status = &s
	}

	estimates, err := h.estimateService.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(estimates))
}

func (h *Handler) getEstimate(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	estimate, err := h.estimateService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(estimate))
}

func (h *Handler) updateEstimate(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.EstimatePatch
	if !bindJSON(c, &req) {
		return
	}

	estimate, err := h.estimateService.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(estimate))
}

func (h *Handler) deleteEstimate(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	if err := h.estimateService.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "estimate deleted"}))
}

func (h *Handler) submitEstimate(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.SubmitEstimateInput
	if !bindJSON(c, &req) {
		return
	}

	estimate, err := h.estimateService.SubmitForApproval(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(estimate))
}

func (h *Handler) approveEstimate(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.ReviewEstimateInput
	if !bindJSON(c, &req) {
		return
	}

	estimate, err := h.estimateService.Approve(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(estimate))
}

func (h *Handler) rejectEstimate(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.RejectEstimateInput
	if !bindJSON(c, &req) {
		return
	}

	estimate, err := h.estimateService.Reject(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(estimate))
}

func (h *Handler) requestEstimateRevision(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.RejectEstimateInput
	if !bindJSON(c, &req) {
		return
	}

	estimate, err := h.estimateService.RequestRevision(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(estimate))
}

func (h *Handler) convertEstimateToQuote(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.ConvertToQuoteInput
	if !bindJSON(c, &req) {
		return
	}

	quote, err := h.estimateService.ConvertToQuote(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(quote))
}

func (h *Handler) cancelEstimate(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.CancelInput
	if !bindJSON(c, &req) {
		return
	}

	estimate, err := h.estimateService.Cancel(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(estimate))
}

func (h *Handler) createEstimateRevision(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	revision, err := h.estimateService.CreateRevision(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(revision))
}

func (h *Handler) listEstimateActivities(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	activities, err := h.estimateService.Activities(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(activities))
}
