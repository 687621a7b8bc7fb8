package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fieldops-service/internal/http/middleware"
	"fieldops-service/internal/model"
	"fieldops-service/internal/service"
)

type Handler struct {
	requestService   *service.ServiceRequestService
	estimateService  *service.EstimateService
	quoteService     *service.QuoteService
	workOrderService *service.WorkOrderService
	invoiceService   *service.InvoiceService
	settingsService  *service.SettingsService
	log              zerolog.Logger
}

type Services struct {
	Requests   *service.ServiceRequestService
	Estimates  *service.EstimateService
	Quotes     *service.QuoteService
	WorkOrders *service.WorkOrderService
	Invoices   *service.InvoiceService
	Settings   *service.SettingsService
}

func NewHandler(services Services, log zerolog.Logger) *Handler {
	return &Handler{
		requestService:   services.Requests,
		estimateService:  services.Estimates,
		quoteService:     services.Quotes,
		workOrderService: services.WorkOrders,
		invoiceService:   services.Invoices,
		settingsService:  services.Settings,
		log:              log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := r.Group("/")
	protected.Use(authMiddleware)

	requests := protected.Group("/service-requests")
	{
		requests.POST("", h.createServiceRequest)
		requests.GET("/:id", h.getServiceRequest)
		requests.POST("/:id/site-visits", h.recordSiteVisit)
	}

	estimates := protected.Group("/estimates")
	{
		estimates.POST("", h.createEstimate)
		estimates.GET("", h.listEstimates)
		estimates.GET("/:id", h.getEstimate)
		estimates.PATCH("/:id", h.updateEstimate)
		estimates.DELETE("/:id", h.deleteEstimate)
		estimates.POST("/:id/submit", h.submitEstimate)
		estimates.POST("/:id/approve", h.approveEstimate)
		estimates.POST("/:id/reject", h.rejectEstimate)
		estimates.POST("/:id/request-revision", h.requestEstimateRevision)
		estimates.POST("/:id/convert-to-quote", h.convertEstimateToQuote)
		estimates.POST("/:id/cancel", h.cancelEstimate)
		estimates.POST("/:id/revisions", h.createEstimateRevision)
		estimates.GET("/:id/activities", h.listEstimateActivities)
	}

	quotes := protected.Group("/quotes")
	{
		quotes.POST("", h.createQuote)
		quotes.GET("", h.listQuotes)
		quotes.GET("/:id", h.getQuote)
		quotes.POST("/:id/send", h.sendQuote)
		quotes.POST("/:id/accept", h.acceptQuote)
		quotes.POST("/:id/reject", h.rejectQuote)
		quotes.POST("/:id/cancel", h.cancelQuote)
	}

	workOrders := protected.Group("/work-orders")
	{
		workOrders.POST("", h.createWorkOrder)
		workOrders.POST("/from-quote", h.createWorkOrderFromQuote)
		workOrders.POST("/from-estimate", h.createWorkOrderFromEstimate)
		workOrders.GET("", h.listWorkOrders)
		workOrders.GET("/:id", h.getWorkOrder)
		workOrders.PATCH("/:id", h.updateWorkOrder)
		workOrders.DELETE("/:id", h.deleteWorkOrder)
		workOrders.PUT("/:id/team", h.assignTeam)
		workOrders.POST("/:id/schedule", h.scheduleWorkOrder)
		workOrders.POST("/:id/reschedule", h.rescheduleWorkOrder)
		workOrders.POST("/:id/confirm", h.confirmWorkOrder)
		workOrders.POST("/:id/en-route", h.startEnRoute)
		workOrders.POST("/:id/arrive", h.arriveAtSite)
		workOrders.POST("/:id/start", h.startWork)
		workOrders.POST("/:id/clock-in", h.clockIn)
		workOrders.POST("/:id/clock-out", h.clockOut)
		workOrders.POST("/:id/items", h.addWorkOrderItem)
		workOrders.POST("/:id/photos", h.addWorkOrderPhoto)
		workOrders.POST("/:id/checklist", h.addChecklistItem)
		workOrders.PUT("/:id/checklist/:checklistId", h.updateChecklistItem)
		workOrders.POST("/:id/complete", h.completeWorkOrder)
		workOrders.POST("/:id/hold", h.holdWorkOrder)
		workOrders.POST("/:id/resume", h.resumeWorkOrder)
		workOrders.POST("/:id/follow-up", h.requireFollowUp)
		workOrders.POST("/:id/cancel", h.cancelWorkOrder)
		workOrders.GET("/:id/activities", h.listWorkOrderActivities)
	}

	invoices := protected.Group("/invoices")
	{
		invoices.POST("", h.generateInvoice)
		invoices.GET("/:id", h.getInvoice)
		invoices.GET("/:id/pdf", h.invoicePDF)
		invoices.POST("/:id/payments", h.recordPayment)
		invoices.POST("/:id/cancel", h.cancelInvoice)
	}

	protected.GET("/receipts/:id/pdf", h.receiptPDF)
	protected.PUT("/settings/numbering/:documentType", h.configureCounter)
}

func (h *Handler) createServiceRequest(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req service.CreateServiceRequestInput
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.requestService.Create(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(request))
}

func (h *Handler) getServiceRequest(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(request))
}

func (h *Handler) recordSiteVisit(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.RecordSiteVisitInput
	if !bindJSON(c, &req) {
		return
	}

	visit, err := h.requestService.RecordSiteVisit(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(visit))
}

func (h *Handler) configureCounter(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req service.ConfigureCounterInput
	if !bindJSON(c, &req) {
		return
	}
	req.DocumentType = model.DocumentType(strings.ToUpper(strings.TrimSpace(c.Param("documentType"))))

	counter, err := h.settingsService.ConfigureCounter(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(counter))
}

// principalAndID resolves the caller and a UUID path parameter, writing the
// error response itself when either is missing.
func principalAndID(c *gin.Context, param string) (model.Principal, uuid.UUID, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return model.Principal{}, uuid.Nil, false
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param(param)))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+param))
		return model.Principal{}, uuid.Nil, false
	}

	return principal, id, true
}

// bindJSON decodes the request body into dst. An empty body leaves dst at its
// zero value so that actions with optional input can be posted bare.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return false
	}
	return true
}

func queryUUID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+key))
		return nil, false
	}
	return &id, true
}

func queryStatus(c *gin.Context) string {
	return strings.ToUpper(strings.TrimSpace(c.Query("status")))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var (
		validationErr   *service.ValidationError
		transitionErr   *service.TransitionError
		preconditionErr *service.PreconditionError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": validationErr.Fields})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":          err.Error(),
			"current_status": transitionErr.Current,
			"allowed":        transitionErr.Allowed,
		})
	case errors.As(err, &preconditionErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "missing": preconditionErr.Missing})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrPreconditionFailed):
		c.JSON(http.StatusUnprocessableEntity, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
