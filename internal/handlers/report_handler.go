package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/hostel-api/internal/services"
)

// ReportHandler serves the transaction stream and the numbers built on it
type ReportHandler struct {
	transactionService *services.TransactionService
	financialService   *services.FinancialService
	exportService      *services.ExportService
	loc                *time.Location
}

func NewReportHandler(transactions *services.TransactionService, financial *services.FinancialService, export *services.ExportService, loc *time.Location) *ReportHandler {
	return &ReportHandler{
		transactionService: transactions,
		financialService:   financial,
		exportService:      export,
		loc:                loc,
	}
}

// @Summary List Transactions
// @Description Bed, bar, extra and expense records for a period, newest first, with a financial summary
// @Tags Reports
// @Produce json
// @Param period query string false "day, week, month or all" default(all)
// @Param date query string false "Reference day (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /transactions [get]
func (h *ReportHandler) Transactions(c *gin.Context) {
	period, ref, ok := periodQuery(c, h.loc)
	if !ok {
		return
	}

	txs, err := h.transactionService.GetTransactions(c.Request.Context(), period, ref)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": txs,
		"summary":      h.financialService.Summarize(txs),
		"period":       period,
	})
}

// @Summary Financial Summary
// @Description Income, expenses, profit and unpaid totals for a period
// @Tags Reports
// @Produce json
// @Param period query string false "day, week, month or all" default(all)
// @Param date query string false "Reference day (YYYY-MM-DD)"
// @Success 200 {object} services.FinancialSummary
// @Security BearerAuth
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	period, ref, ok := periodQuery(c, h.loc)
	if !ok {
		return
	}

	txs, err := h.transactionService.GetTransactions(c.Request.Context(), period, ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.financialService.Summarize(txs))
}

// @Summary Dashboard
// @Description Revenue for a period together with bed occupancy
// @Tags Reports
// @Produce json
// @Param period query string false "day, week, month or all" default(all)
// @Param date query string false "Reference day (YYYY-MM-DD)"
// @Success 200 {object} services.Dashboard
// @Security BearerAuth
// @Router /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	period, ref, ok := periodQuery(c, h.loc)
	if !ok {
		return
	}

	dashboard, err := h.financialService.Dashboard(c.Request.Context(), period, ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// @Summary Export Transactions
// @Description Download the transactions of a period as CSV, XLSX or PDF
// @Tags Reports
// @Produce application/octet-stream
// @Param format query string true "csv, xlsx or pdf"
// @Param period query string false "day, week, month or all" default(all)
// @Param date query string false "Reference day (YYYY-MM-DD)"
// @Success 200 {file} file "export"
// @Security BearerAuth
// @Router /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	period, ref, ok := periodQuery(c, h.loc)
	if !ok {
		return
	}

	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)

	ctx := c.Request.Context()
	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		data, filename, err = h.exportService.TransactionsCSV(ctx, period, ref)
		contentType = "text/csv"
	case "xlsx":
		data, filename, err = h.exportService.TransactionsXLSX(ctx, period, ref)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		data, filename, err = h.exportService.TransactionsPDF(ctx, period, ref)
		contentType = "application/pdf"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format (csv, xlsx, pdf)"})
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, data)
}
