package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/hostel-api/internal/services"
)

type ExpenseHandler struct {
	expenseService *services.ExpenseService
	loc            *time.Location
}

func NewExpenseHandler(expenseService *services.ExpenseService, loc *time.Location) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, loc: loc}
}

// @Summary List Expenses
// @Tags Expenses
// @Produce json
// @Param period query string false "day, week, month or all" default(all)
// @Param date query string false "Reference day (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /expenses [get]
func (h *ExpenseHandler) Index(c *gin.Context) {
	period, ref, ok := periodQuery(c, h.loc)
	if !ok {
		return
	}

	expenses, err := h.expenseService.List(c.Request.Context(), period, ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses, "period": period})
}

// @Summary Create Expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Param request body services.CreateExpenseInput true "Expense"
// @Success 201 {object} models.Expense
// @Security BearerAuth
// @Router /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var input services.CreateExpenseInput
	if err := BindNestedOrFlat(c, "expense", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	expense, err := h.expenseService.Create(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// @Summary Delete Expense
// @Tags Expenses
// @Param expense_id path string true "Expense ID"
// @Success 204
// @Security BearerAuth
// @Router /expenses/{expense_id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "expense_id")
	if !ok {
		return
	}
	if err := h.expenseService.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Upload Receipt
// @Description Attach a PDF, JPEG or PNG receipt to an expense
// @Tags Expenses
// @Accept multipart/form-data
// @Produce json
// @Param expense_id path string true "Expense ID"
// @Param receipt formData file true "Receipt file"
// @Success 200 {object} models.Expense
// @Security BearerAuth
// @Router /expenses/{expense_id}/receipt [post]
func (h *ExpenseHandler) UploadReceipt(c *gin.Context) {
	id, ok := uuidParam(c, "expense_id")
	if !ok {
		return
	}

	header, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read receipt file"})
		return
	}
	defer file.Close()

	expense, err := h.expenseService.UploadReceipt(c.Request.Context(), id, file,
		header.Filename, header.Header.Get("Content-Type"), header.Size, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// @Summary Download Receipt
// @Tags Expenses
// @Produce application/octet-stream
// @Param expense_id path string true "Expense ID"
// @Success 200 {file} file "receipt"
// @Security BearerAuth
// @Router /expenses/{expense_id}/receipt [get]
func (h *ExpenseHandler) DownloadReceipt(c *gin.Context) {
	id, ok := uuidParam(c, "expense_id")
	if !ok {
		return
	}

	f, err := h.expenseService.OpenReceipt(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		respondError(c, &services.StorageError{Op: "stat receipt", Err: err})
		return
	}

	name := filepath.Base(f.Name())
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, f, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%s", name),
	})
}
