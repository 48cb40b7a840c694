package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/interfaces"
	"ledgerbot/events"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// LedgerDateLayout is the layout new ledger rows are written with
const LedgerDateLayout = "2006-01-02 15:04:05"

// ErrNoValidRecords is returned when none of the parsed records can be stored
var ErrNoValidRecords = errors.New("no valid records to store")

// ledgerService implements bookkeeping on top of a ledger repository
type ledgerService struct {
	ledgerRepo     interfaces.LedgerRepository
	eventPublisher interfaces.EventPublisher
	monthlyBudget  decimal.Decimal
	location       *time.Location
	now            func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	ledgerRepo interfaces.LedgerRepository,
	eventPublisher interfaces.EventPublisher,
	monthlyBudget decimal.Decimal,
	location *time.Location,
) interfaces.LedgerService {
	if location == nil {
		location = time.UTC
	}
	return &ledgerService{
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
		monthlyBudget:  monthlyBudget,
		location:       location,
		now:            time.Now,
	}
}

// Record normalizes parsed records and appends them for accountID. Records without a
// positive amount are dropped.
func (s *ledgerService) Record(ctx context.Context, accountID string, records []*entities.ParsedRecord) ([]*entities.LedgerRow, error) {
	if accountID == "" {
		return nil, errors.New("account id is required")
	}

	now := s.now().In(s.location)
	rows := make([]*entities.LedgerRow, 0, len(records))
	for _, record := range records {
		row := s.toRow(accountID, record, now)
		if row == nil {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrNoValidRecords
	}

	var err error
	if len(rows) == 1 {
		err = s.ledgerRepo.Append(ctx, rows[0])
	} else {
		err = s.ledgerRepo.AppendBatch(ctx, rows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger rows: %w", err)
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}

	log.WithFields(log.Fields{
		"accountID": accountID,
		"count":     len(rows),
		"total":     total.String(),
	}).Info("Recorded ledger rows")

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(events.LedgerRecordedEvent{
			AccountID:   accountID,
			RecordCount: len(rows),
			Total:       total.String(),
		}); err != nil {
			log.WithError(err).Warn("Failed to publish ledger recorded event")
		}
	}

	return rows, nil
}

func (s *ledgerService) toRow(accountID string, record *entities.ParsedRecord, now time.Time) *entities.LedgerRow {
	if record == nil || !record.Amount.IsPositive() {
		return nil
	}

	date := strings.TrimSpace(record.Date)
	if _, err := ParseLedgerDate(date, s.location); err != nil {
		date = now.Format(LedgerDateLayout)
	}

	category := strings.TrimSpace(record.Category)
	if category == "" {
		category = entities.DefaultCategory
	}

	invoice := strings.ToUpper(strings.TrimSpace(record.InvoiceNumber))
	invoice = strings.ReplaceAll(invoice, "-", "")
	if len(invoice) == 10 && isLetterPrefix(invoice[:2]) {
		invoice = invoice[2:]
	}
	if !entities.IsInvoiceNumber(invoice) {
		invoice = ""
	}

	return &entities.LedgerRow{
		Date:          date,
		Category:      category,
		Amount:        record.Amount,
		Note:          strings.TrimSpace(record.Note),
		AccountID:     accountID,
		InvoiceNumber: invoice,
	}
}

// isLetterPrefix reports whether s is the two letter track of a printed invoice, e.g. "AB"
func isLetterPrefix(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// Summary builds the monthly report for accountIDs. An empty month means the current month.
func (s *ledgerService) Summary(ctx context.Context, accountIDs []string, month string, family bool) (*entities.LedgerSummary, error) {
	if len(accountIDs) == 0 {
		return nil, errors.New("at least one account id is required")
	}
	if month == "" {
		month = s.now().In(s.location).Format("2006-01")
	}

	rows, err := s.ledgerRepo.ListByAccountsAndMonth(ctx, accountIDs, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w for %s", entities.ErrNoRecords, month)
	}

	title := fmt.Sprintf("%s 個人報表", month)
	if family {
		title = fmt.Sprintf("%s 家庭合併報表", month)
	}

	summary := &entities.LedgerSummary{
		Title:  title,
		Month:  month,
		Family: family,
		Total:  decimal.Zero,
		Budget: s.monthlyBudget,
	}

	categoryIndex := make(map[string]int)
	for _, row := range rows {
		category := row.Category
		if category == "" {
			category = entities.DefaultCategory
		}

		summary.Total = summary.Total.Add(row.Amount)
		summary.Count++

		if idx, ok := categoryIndex[category]; ok {
			summary.CategoryTotals[idx].Total = summary.CategoryTotals[idx].Total.Add(row.Amount)
		} else {
			categoryIndex[category] = len(summary.CategoryTotals)
			summary.CategoryTotals = append(summary.CategoryTotals, entities.CategoryTotal{
				Category: category,
				Total:    row.Amount,
			})
		}

		summary.Items = append(summary.Items, entities.LedgerSummaryItem{
			Date:     row.Date,
			Category: category,
			Amount:   row.Amount,
			Note:     row.Note,
		})
	}

	return summary, nil
}
