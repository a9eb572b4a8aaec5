package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/hostel-api/internal/services"
)

// ChargeHandler serves bed assignments, bar charges and extra services
type ChargeHandler struct {
	chargeService *services.ChargeService
}

func NewChargeHandler(chargeService *services.ChargeService) *ChargeHandler {
	return &ChargeHandler{chargeService: chargeService}
}

type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required" example:"paid"`
}

func bindPaymentStatus(c *gin.Context) (string, bool) {
	var req PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_status is required"})
		return "", false
	}
	return req.PaymentStatus, true
}

// @Summary Create Assignment
// @Description Assigns a guest to a bed. Price defaults to the bed's nightly price times the number of nights.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param request body services.CreateAssignmentInput true "Assignment"
// @Success 201 {object} models.Assignment
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /assignments [post]
func (h *ChargeHandler) CreateAssignment(c *gin.Context) {
	var input services.CreateAssignmentInput
	if err := BindNestedOrFlat(c, "assignment", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	assignment, err := h.chargeService.CreateAssignment(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// @Summary Check Out
// @Description Closes a stay and flags the bed for cleaning
// @Tags Assignments
// @Param assignment_id path string true "Assignment ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /assignments/{assignment_id}/checkout [post]
func (h *ChargeHandler) Checkout(c *gin.Context) {
	id, ok := uuidParam(c, "assignment_id")
	if !ok {
		return
	}
	if err := h.chargeService.CheckoutAssignment(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "checked out"})
}

// @Summary Delete Assignment
// @Tags Assignments
// @Param assignment_id path string true "Assignment ID"
// @Success 204
// @Security BearerAuth
// @Router /assignments/{assignment_id} [delete]
func (h *ChargeHandler) DeleteAssignment(c *gin.Context) {
	id, ok := uuidParam(c, "assignment_id")
	if !ok {
		return
	}
	if err := h.chargeService.DeleteAssignment(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Set Assignment Payment Status
// @Description Marks a bed charge paid or not_paid by hand
// @Tags Assignments
// @Accept json
// @Produce json
// @Param assignment_id path string true "Assignment ID"
// @Param request body PaymentStatusRequest true "Status"
// @Success 200 {object} models.Assignment
// @Security BearerAuth
// @Router /assignments/{assignment_id}/payment-status [put]
func (h *ChargeHandler) SetAssignmentPaymentStatus(c *gin.Context) {
	id, ok := uuidParam(c, "assignment_id")
	if !ok {
		return
	}
	status, ok := bindPaymentStatus(c)
	if !ok {
		return
	}

	assignment, err := h.chargeService.SetAssignmentPaymentStatus(c.Request.Context(), id, status, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// @Summary Create Bar Charge
// @Tags Bar
// @Accept json
// @Produce json
// @Param request body services.CreateBarChargeInput true "Bar charge"
// @Success 201 {object} models.BarCharge
// @Security BearerAuth
// @Router /bar-charges [post]
func (h *ChargeHandler) CreateBarCharge(c *gin.Context) {
	var input services.CreateBarChargeInput
	if err := BindNestedOrFlat(c, "bar_charge", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	charge, err := h.chargeService.CreateBarCharge(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, charge)
}

// @Summary Delete Bar Charge
// @Tags Bar
// @Param charge_id path string true "Bar charge ID"
// @Success 204
// @Security BearerAuth
// @Router /bar-charges/{charge_id} [delete]
func (h *ChargeHandler) DeleteBarCharge(c *gin.Context) {
	id, ok := uuidParam(c, "charge_id")
	if !ok {
		return
	}
	if err := h.chargeService.DeleteBarCharge(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Set Bar Charge Payment Status
// @Tags Bar
// @Accept json
// @Produce json
// @Param charge_id path string true "Bar charge ID"
// @Param request body PaymentStatusRequest true "Status"
// @Success 200 {object} models.BarCharge
// @Security BearerAuth
// @Router /bar-charges/{charge_id}/payment-status [put]
func (h *ChargeHandler) SetBarChargePaymentStatus(c *gin.Context) {
	id, ok := uuidParam(c, "charge_id")
	if !ok {
		return
	}
	status, ok := bindPaymentStatus(c)
	if !ok {
		return
	}

	charge, err := h.chargeService.SetBarChargePaymentStatus(c.Request.Context(), id, status, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, charge)
}

// @Summary Create Extra Charge
// @Tags Extras
// @Accept json
// @Produce json
// @Param request body services.CreateExtraChargeInput true "Extra service"
// @Success 201 {object} models.ExtraCharge
// @Security BearerAuth
// @Router /extra-charges [post]
func (h *ChargeHandler) CreateExtraCharge(c *gin.Context) {
	var input services.CreateExtraChargeInput
	if err := BindNestedOrFlat(c, "extra_charge", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	charge, err := h.chargeService.CreateExtraCharge(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, charge)
}

// @Summary Delete Extra Charge
// @Tags Extras
// @Param charge_id path string true "Extra charge ID"
// @Success 204
// @Security BearerAuth
// @Router /extra-charges/{charge_id} [delete]
func (h *ChargeHandler) DeleteExtraCharge(c *gin.Context) {
	id, ok := uuidParam(c, "charge_id")
	if !ok {
		return
	}
	if err := h.chargeService.DeleteExtraCharge(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Set Extra Charge Payment Status
// @Tags Extras
// @Accept json
// @Produce json
// @Param charge_id path string true "Extra charge ID"
// @Param request body PaymentStatusRequest true "Status"
// @Success 200 {object} models.ExtraCharge
// @Security BearerAuth
// @Router /extra-charges/{charge_id}/payment-status [put]
func (h *ChargeHandler) SetExtraChargePaymentStatus(c *gin.Context) {
	id, ok := uuidParam(c, "charge_id")
	if !ok {
		return
	}
	status, ok := bindPaymentStatus(c)
	if !ok {
		return
	}

	charge, err := h.chargeService.SetExtraChargePaymentStatus(c.Request.Context(), id, status, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, charge)
}
