package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/hostel-api/internal/config"
	"github.com/sjperalta/hostel-api/internal/models"
)

//go:embed templates/guest_statement.html
var statementFS embed.FS

// StatementService renders a guest's ledger as an HTML page and converts it to PDF
type StatementService struct {
	transactions *TransactionService
	formatter    *MoneyFormatter
	loc          *time.Location
	tmpl         *template.Template
}

// NewStatementService parses the embedded statement template
func NewStatementService(transactions *TransactionService, formatter *MoneyFormatter, cfg *config.Config) *StatementService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	s := &StatementService{transactions: transactions, formatter: formatter, loc: loc}
	s.tmpl = template.Must(template.New("guest_statement.html").Funcs(template.FuncMap{
		"money":   formatter.Format,
		"fmtDate": func(t time.Time) string { return t.In(loc).Format("02/01/2006") },
	}).ParseFS(statementFS, "templates/guest_statement.html"))
	return s
}

type statementData struct {
	Guest           models.Guest
	Date            string
	Stay            *models.CurrentStay
	Lines           []models.ChargeLine
	TotalCharges    decimal.Decimal
	TotalPaid       decimal.Decimal
	BalanceDue      decimal.Decimal
	UnappliedCredit decimal.Decimal
}

// RenderHTML renders the statement page for a guest
func (s *StatementService) RenderHTML(ctx context.Context, guestID uuid.UUID) ([]byte, error) {
	ledger, err := s.transactions.GuestLedger(ctx, guestID)
	if err != nil {
		return nil, err
	}

	data := statementData{
		Guest:           ledger.Guest,
		Date:            time.Now().In(s.loc).Format("02/01/2006"),
		Stay:            ledger.CurrentAssignment,
		Lines:           ledger.AllTransactions,
		TotalCharges:    ledger.TotalCharges,
		TotalPaid:       ledger.TotalPaid,
		BalanceDue:      ledger.BalanceDue,
		UnappliedCredit: ledger.UnappliedCredit,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute statement template: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF converts the statement page to PDF with wkhtmltopdf
func (s *StatementService) RenderPDF(ctx context.Context, guestID uuid.UUID) (*bytes.Buffer, string, error) {
	html, err := s.RenderHTML(ctx, guestID)
	if err != nil {
		return nil, "", err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, "", &StorageError{Op: "create pdf generator", Err: err}
	}
	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.EnableLocalFileAccess.Set(false)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, "", fmt.Errorf("failed to create pdf: %w", err)
	}

	filename := fmt.Sprintf("statement_%s_%s.pdf", guestID.String()[:8], time.Now().In(s.loc).Format("2006-01-02"))
	return pdfg.Buffer(), filename, nil
}
