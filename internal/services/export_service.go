package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportService renders the transaction report of a period as CSV, XLSX or PDF
type ExportService struct {
	transactions *TransactionService
	financial    *FinancialService
}

func NewExportService(transactions *TransactionService, financial *FinancialService) *ExportService {
	return &ExportService{transactions: transactions, financial: financial}
}

// transactionReport is the data every export format renders
type transactionReport struct {
	Title        string
	GeneratedAt  time.Time
	Transactions []models.Transaction
	Summary      FinancialSummary
}

var transactionHeader = []string{"Date", "Type", "Guest", "Description", "Amount", "Status"}

func (s *ExportService) load(ctx context.Context, period Period, ref time.Time) (*transactionReport, error) {
	txs, err := s.transactions.GetTransactions(ctx, period, ref)
	if err != nil {
		return nil, err
	}
	return &transactionReport{
		Title:        fmt.Sprintf("Transactions (%s)", period),
		GeneratedAt:  time.Now(),
		Transactions: txs,
		Summary:      s.financial.Summarize(txs),
	}, nil
}

func reportFilename(period Period, ext string, at time.Time) string {
	return fmt.Sprintf("transactions_%s_%s.%s", period, at.Format("2006-01-02"), ext)
}

// summaryRows are the totals appended under every export
func summaryRows(sum FinancialSummary) [][2]string {
	return [][2]string{
		{"Income", sum.IncomeFormatted},
		{"Bed income", sum.BedIncomeFormatted},
		{"Bar income", sum.BarIncomeFormatted},
		{"Extra income", sum.ExtraIncomeFormatted},
		{"Expenses", sum.ExpensesFormatted},
		{"Profit", sum.ProfitFormatted},
		{"Profit margin", sum.ProfitMargin.StringFixed(2) + "%"},
		{"Unpaid", sum.UnpaidFormatted},
	}
}

// TransactionsCSV exports the period's transactions followed by the summary
func (s *ExportService) TransactionsCSV(ctx context.Context, period Period, ref time.Time) ([]byte, string, error) {
	report, err := s.load(ctx, period, ref)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write(transactionHeader)
	for _, t := range report.Transactions {
		_ = writer.Write([]string{
			t.Date.Format(time.RFC3339),
			t.Type,
			t.GuestName,
			t.Description,
			t.Amount.StringFixed(2),
			t.PaymentStatus,
		})
	}

	_ = writer.Write([]string{""})
	for _, row := range summaryRows(report.Summary) {
		_ = writer.Write([]string{row[0], row[1]})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), reportFilename(period, "csv", report.GeneratedAt), nil
}

// TransactionsXLSX exports the period's transactions to a workbook with a
// Transactions sheet and a Summary sheet
func (s *ExportService) TransactionsXLSX(ctx context.Context, period Period, ref time.Time) ([]byte, string, error) {
	report, err := s.load(ctx, period, ref)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Transactions"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, h := range transactionHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	_ = f.SetCellStyle(sheet, "A1", "F1", headerStyle)

	for i, t := range report.Transactions {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), t.Date.Format("2006-01-02 15:04"))
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), t.Type)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), t.GuestName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), t.Description)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), t.Amount.InexactFloat64())
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), t.PaymentStatus)
	}
	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "C", "D", 28)

	summary := "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, "", err
	}
	_ = f.SetCellValue(summary, "A1", report.Title)
	_ = f.SetCellStyle(summary, "A1", "A1", headerStyle)
	for i, r := range summaryRows(report.Summary) {
		_ = f.SetCellValue(summary, fmt.Sprintf("A%d", i+3), r[0])
		_ = f.SetCellValue(summary, fmt.Sprintf("B%d", i+3), r[1])
	}
	_ = f.SetColWidth(summary, "A", "B", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), reportFilename(period, "xlsx", report.GeneratedAt), nil
}

// TransactionsPDF exports the period's transactions as a landscape table
func (s *ExportService) TransactionsPDF(ctx context.Context, period Period, ref time.Time) ([]byte, string, error) {
	report, err := s.load(ctx, period, ref)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, report.Title)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, "Generated "+report.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	widths := []float64{35, 30, 50, 100, 30, 30}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(224, 224, 224)
	for i, h := range transactionHeader {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, t := range report.Transactions {
		pdf.CellFormat(widths[0], 6, t.Date.Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, t.Type, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(truncate(t.GuestName, 30)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, tr(truncate(t.Description, 60)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, t.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, t.PaymentStatus, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, r := range summaryRows(report.Summary) {
		pdf.Cell(50, 6, r[0]+":")
		pdf.Cell(40, 6, tr(r[1]))
		pdf.Ln(6)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), reportFilename(period, "pdf", report.GeneratedAt), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
