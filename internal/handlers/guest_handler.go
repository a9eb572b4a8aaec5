package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/hostel-api/internal/services"
)

type GuestHandler struct {
	guestService       *services.GuestService
	transactionService *services.TransactionService
	paymentService     *services.PaymentService
	statementService   *services.StatementService
}

func NewGuestHandler(guests *services.GuestService, transactions *services.TransactionService, payments *services.PaymentService, statements *services.StatementService) *GuestHandler {
	return &GuestHandler{
		guestService:       guests,
		transactionService: transactions,
		paymentService:     payments,
		statementService:   statements,
	}
}

// @Summary List Guests
// @Description Get a paginated list of guests
// @Tags Guests
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search query string false "Name, email, phone or document number"
// @Param sort query string false "field-direction, e.g. name-asc"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /guests [get]
func (h *GuestHandler) Index(c *gin.Context) {
	query := listQuery(c, 20)
	guests, total, err := h.guestService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guests":     guests,
		"pagination": pagination(query, total),
	})
}

// @Summary Show Guest
// @Tags Guests
// @Produce json
// @Param guest_id path string true "Guest ID"
// @Success 200 {object} models.Guest
// @Security BearerAuth
// @Router /guests/{guest_id} [get]
func (h *GuestHandler) Show(c *gin.Context) {
	id, ok := uuidParam(c, "guest_id")
	if !ok {
		return
	}

	guest, err := h.guestService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, guest)
}

// @Summary Create Guest
// @Tags Guests
// @Accept json
// @Produce json
// @Param request body services.GuestInput true "Guest"
// @Success 201 {object} models.Guest
// @Security BearerAuth
// @Router /guests [post]
func (h *GuestHandler) Create(c *gin.Context) {
	var input services.GuestInput
	if err := BindNestedOrFlat(c, "guest", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	guest, err := h.guestService.Create(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, guest)
}

// @Summary Update Guest
// @Tags Guests
// @Accept json
// @Produce json
// @Param guest_id path string true "Guest ID"
// @Param request body services.GuestInput true "Guest"
// @Success 200 {object} models.Guest
// @Security BearerAuth
// @Router /guests/{guest_id} [put]
func (h *GuestHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "guest_id")
	if !ok {
		return
	}

	var input services.GuestInput
	if err := BindNestedOrFlat(c, "guest", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	guest, err := h.guestService.Update(c.Request.Context(), id, input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, guest)
}

// @Summary Delete Guest
// @Description Deletes a guest with no charges or payments on record
// @Tags Guests
// @Param guest_id path string true "Guest ID"
// @Success 204
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /guests/{guest_id} [delete]
func (h *GuestHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "guest_id")
	if !ok {
		return
	}

	if err := h.guestService.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Guest Ledger
// @Description Every charge, payment and balance for one guest
// @Tags Guests
// @Produce json
// @Param guest_id path string true "Guest ID"
// @Success 200 {object} models.GuestLedger
// @Security BearerAuth
// @Router /guests/{guest_id}/ledger [get]
func (h *GuestHandler) Ledger(c *gin.Context) {
	id, ok := uuidParam(c, "guest_id")
	if !ok {
		return
	}

	ledger, err := h.transactionService.GuestLedger(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ledger)
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"150.00"`
}

// @Summary Record Payment
// @Description Applies a lump-sum payment to the guest's unpaid charges, beds first, then bar, then extras
// @Tags Payments
// @Accept json
// @Produce json
// @Param guest_id path string true "Guest ID"
// @Param request body RecordPaymentRequest true "Payment"
// @Success 201 {object} services.PaymentResult
// @Failure 409 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /guests/{guest_id}/payments [post]
func (h *GuestHandler) RecordPayment(c *gin.Context) {
	id, ok := uuidParam(c, "guest_id")
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a decimal number"})
		return
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), id, req.Amount, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// @Summary List Guest Payments
// @Tags Payments
// @Produce json
// @Param guest_id path string true "Guest ID"
// @Success 200 {array} models.Payment
// @Security BearerAuth
// @Router /guests/{guest_id}/payments [get]
func (h *GuestHandler) Payments(c *gin.Context) {
	id, ok := uuidParam(c, "guest_id")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// @Summary Guest Statement
// @Description Printable account statement, as HTML or PDF
// @Tags Guests
// @Produce html
// @Produce application/pdf
// @Param guest_id path string true "Guest ID"
// @Param format query string false "html or pdf" default(html)
// @Success 200 {file} file "statement"
// @Security BearerAuth
// @Router /guests/{guest_id}/statement [get]
func (h *GuestHandler) Statement(c *gin.Context) {
	id, ok := uuidParam(c, "guest_id")
	if !ok {
		return
	}

	switch c.DefaultQuery("format", "html") {
	case "html":
		page, err := h.statementService.RenderHTML(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	case "pdf":
		buf, filename, err := h.statementService.RenderPDF(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format (html, pdf)"})
	}
}
