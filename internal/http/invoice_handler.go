package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldops-service/internal/document"
	"fieldops-service/internal/http/middleware"
	"fieldops-service/internal/service"
)

const pdfContentType = "application/pdf"

func (h *Handler) generateInvoice(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req service.GenerateInvoiceInput
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Generate(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(invoice))
}

func (h *Handler) getInvoice(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(invoice))
}

func (h *Handler) recordPayment(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	var req service.RecordPaymentInput
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.invoiceService.RecordPayment(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(result))
}

func (h *Handler) cancelInvoice(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Cancel(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(invoice))
}

func (h *Handler) invoicePDF(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	body, err := document.RenderInvoice(invoice)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+invoice.InvoiceNo+`.pdf"`)
	c.Data(http.StatusOK, pdfContentType, body)
}

func (h *Handler) receiptPDF(c *gin.Context) {
	principal, id, ok := principalAndID(c, "id")
	if !ok {
		return
	}

	receipt, invoice, err := h.invoiceService.GetReceipt(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	body, err := document.RenderReceipt(receipt, invoice)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+receipt.ReceiptNo+`.pdf"`)
	c.Data(http.StatusOK, pdfContentType, body)
}
