package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/hostel-api/internal/config"
	"github.com/sjperalta/hostel-api/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var hundred = decimal.NewFromInt(100)

// FinancialSummary aggregates a transaction stream into income, expenses and profit
type FinancialSummary struct {
	Income       decimal.Decimal `json:"income"`
	BedIncome    decimal.Decimal `json:"bedIncome"`
	BarIncome    decimal.Decimal `json:"barIncome"`
	ExtraIncome  decimal.Decimal `json:"extraIncome"`
	Expenses     decimal.Decimal `json:"expenses"`
	Profit       decimal.Decimal `json:"profit"`
	Unpaid       decimal.Decimal `json:"unpaid"`
	ProfitMargin decimal.Decimal `json:"profitMargin"`

	IncomeFormatted      string `json:"incomeFormatted"`
	BedIncomeFormatted   string `json:"bedIncomeFormatted"`
	BarIncomeFormatted   string `json:"barIncomeFormatted"`
	ExtraIncomeFormatted string `json:"extraIncomeFormatted"`
	ExpensesFormatted    string `json:"expensesFormatted"`
	ProfitFormatted      string `json:"profitFormatted"`
	UnpaidFormatted      string `json:"unpaidFormatted"`
}

// CalculateFinancialData summarizes transactions in a single pass. Expenses
// are outflows; paid charges are income; anything else is unpaid.
func CalculateFinancialData(transactions []models.Transaction) FinancialSummary {
	s := FinancialSummary{
		Income:       decimal.Zero,
		BedIncome:    decimal.Zero,
		BarIncome:    decimal.Zero,
		ExtraIncome:  decimal.Zero,
		Expenses:     decimal.Zero,
		Unpaid:       decimal.Zero,
		ProfitMargin: decimal.Zero,
	}

	for i := range transactions {
		t := &transactions[i]
		switch {
		case t.IsExpense():
			s.Expenses = s.Expenses.Add(t.Amount)
		case t.PaymentStatus == models.PaymentStatusPaid:
			s.Income = s.Income.Add(t.Amount)
			switch t.Type {
			case models.TransactionTypeBed:
				s.BedIncome = s.BedIncome.Add(t.Amount)
			case models.TransactionTypeBar:
				s.BarIncome = s.BarIncome.Add(t.Amount)
			case models.TransactionTypeExtra:
				s.ExtraIncome = s.ExtraIncome.Add(t.Amount)
			}
		default:
			s.Unpaid = s.Unpaid.Add(t.Amount)
		}
	}

	s.Profit = s.Income.Sub(s.Expenses)
	if s.Income.IsPositive() {
		s.ProfitMargin = s.Profit.Div(s.Income).Mul(hundred).Round(2)
	}
	return s
}

// MoneyFormatter renders amounts in the configured locale with a currency symbol
type MoneyFormatter struct {
	printer *message.Printer
	symbol  string
}

// NewMoneyFormatter builds a formatter for a BCP 47 locale tag. Unknown tags fall back to English.
func NewMoneyFormatter(locale, symbol string) *MoneyFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &MoneyFormatter{printer: message.NewPrinter(tag), symbol: symbol}
}

// Format renders d with two decimals, e.g. "$1,250.00" or "-$40.00"
func (f *MoneyFormatter) Format(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + f.symbol + f.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// Apply fills in the formatted fields of s
func (f *MoneyFormatter) Apply(s *FinancialSummary) {
	s.IncomeFormatted = f.Format(s.Income)
	s.BedIncomeFormatted = f.Format(s.BedIncome)
	s.BarIncomeFormatted = f.Format(s.BarIncome)
	s.ExtraIncomeFormatted = f.Format(s.ExtraIncome)
	s.ExpensesFormatted = f.Format(s.Expenses)
	s.ProfitFormatted = f.Format(s.Profit)
	s.UnpaidFormatted = f.Format(s.Unpaid)
}

// FinancialService produces period summaries and the dashboard
type FinancialService struct {
	transactions *TransactionService
	beds         *BedService
	formatter    *MoneyFormatter
}

// NewFinancialService creates a new financial service
func NewFinancialService(transactions *TransactionService, beds *BedService, cfg *config.Config) *FinancialService {
	return &FinancialService{
		transactions: transactions,
		beds:         beds,
		formatter:    NewMoneyFormatter(cfg.Locale, cfg.CurrencySymbol),
	}
}

// Summarize is CalculateFinancialData with formatted currency strings
func (s *FinancialService) Summarize(transactions []models.Transaction) FinancialSummary {
	summary := CalculateFinancialData(transactions)
	s.formatter.Apply(&summary)
	return summary
}

// Formatter exposes the configured money formatter
func (s *FinancialService) Formatter() *MoneyFormatter {
	return s.formatter
}

// Dashboard is the combined revenue and occupancy view
type Dashboard struct {
	Period           Period               `json:"period"`
	Range            *models.DateRange    `json:"range"`
	Summary          FinancialSummary     `json:"summary"`
	NetRevenue       decimal.Decimal      `json:"netRevenue"`
	BedStats         models.BedStats      `json:"bedStats"`
	TransactionCount int                  `json:"transactionCount"`
	Recent           []models.Transaction `json:"recentTransactions"`
}

const dashboardRecentLimit = 10

// Dashboard summarizes the period around ref and attaches bed occupancy
func (s *FinancialService) Dashboard(ctx context.Context, period Period, ref time.Time) (*Dashboard, error) {
	txs, err := s.transactions.GetTransactions(ctx, period, ref)
	if err != nil {
		return nil, err
	}

	stats, err := s.beds.GetBedStats(ctx)
	if err != nil {
		return nil, err
	}

	dateRange, _ := period.Range(ref, s.transactions.cfg.Location)
	summary := s.Summarize(txs)

	recent := txs
	if len(recent) > dashboardRecentLimit {
		recent = recent[:dashboardRecentLimit]
	}

	return &Dashboard{
		Period:           period,
		Range:            dateRange,
		Summary:          summary,
		NetRevenue:       summary.Income.Sub(summary.Expenses),
		BedStats:         *stats,
		TransactionCount: len(txs),
		Recent:           recent,
	}, nil
}
