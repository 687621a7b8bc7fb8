package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldops-service/internal/http/middleware"
	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/service"
)

func (h *Handler) createQuote(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req service.CreateQuoteInput
	if !bindJSON(c, &req) {
		return
	}

	quote, err := h.quoteService.Create(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(quote))
}

func (h *Handler) listQuotes(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	filter := repository.QuoteListFilter{}

	requestID, ok := queryUUID(c, "service_request_id")
	if !ok {
		return
	}
	filter.ServiceRequestID = requestID

	if status := queryStatus(c); status != "" {
		s := model.QuoteStatus(status)
		filter.Status = &s
	}

	quotes, err := h.quoteService.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(quotes))
}

func (h *Handler) getQuote(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	quote, err := h.quoteService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(quote))
}

type quoteAction func(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Quote, error)

func (h *Handler) quoteTransition(action quoteAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, id, ok := principalAndID(c, "id")
		if !ok {
			return
		}

		quote, err := action(c.Request.Context(), principal, id)
		if err != nil {
			h.handleError(c, err)
			return
		}

		c.JSON(http.StatusOK, successResponse(quote))
	}
}

func (h *Handler) sendQuote(c *gin.Context) {
	h.quoteTransition(h.quoteService.Send)(c)
}

func (h *Handler) acceptQuote(c *gin.Context) {
	h.quoteTransition(h.quoteService.Accept)(c)
}

func (h *Handler) cancelQuote(c *gin.Context) {
	h.quoteTransition(h.quoteService.Cancel)(c)
}

func (h *Handler) rejectQuote(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.RejectQuoteInput
	if !bindJSON(c, &req) {
		return
	}

	quote, err := h.quoteService.Reject(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(quote))
}
