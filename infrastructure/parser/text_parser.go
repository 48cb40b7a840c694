package parser

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"ledgerbot/domain/entities"

	"github.com/shopspring/decimal"
)

// ErrNoRecord is returned when a message does not describe a transaction
var ErrNoRecord = errors.New("no ledger record found in content")

// ErrMediaUnsupported is returned by parsers that only read text
var ErrMediaUnsupported = errors.New("media content is not supported by this parser")

var (
	// an invoice number, optionally printed with its two letter track, e.g. "AB-12345678"
	invoicePattern = regexp.MustCompile(`(?i)\b(?:[a-z]{2}-?)?(\d{8})\b`)
	amountPattern  = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// TextParser reads short messages such as "早餐 100", "150 交通費" or "午餐 150 今天很熱 12345678"
type TextParser struct {
	now func() time.Time
}

// NewTextParser creates a text parser stamping records with the current time in loc
func NewTextParser(loc *time.Location) *TextParser {
	if loc == nil {
		loc = time.UTC
	}
	return &TextParser{
		now: func() time.Time { return time.Now().In(loc) },
	}
}

// Parse extracts one record. The first number that is not an invoice number is the amount,
// the first remaining word the category and the rest the note.
func (p *TextParser) Parse(ctx context.Context, input entities.ParseInput) ([]*entities.ParsedRecord, error) {
	if input.HasMedia() {
		return nil, ErrMediaUnsupported
	}

	text := strings.TrimSpace(input.Text)
	invoice := ""
	if m := invoicePattern.FindStringSubmatchIndex(text); m != nil {
		invoice = text[m[2]:m[3]]
		text = text[:m[0]] + " " + text[m[1]:]
	}

	loc := amountPattern.FindStringIndex(text)
	if loc == nil {
		return nil, ErrNoRecord
	}
	amount, err := decimal.NewFromString(text[loc[0]:loc[1]])
	if err != nil || !amount.IsPositive() {
		return nil, ErrNoRecord
	}

	words := strings.Fields(text[:loc[0]] + " " + text[loc[1]:])
	category := entities.DefaultCategory
	note := ""
	if len(words) > 0 {
		category = words[0]
	}
	if len(words) > 1 {
		note = strings.Join(words[1:], " ")
	}

	return []*entities.ParsedRecord{{
		Date:          p.now().Format("2006-01-02 15:04:05"),
		Category:      category,
		Amount:        amount,
		Note:          note,
		InvoiceNumber: invoice,
	}}, nil
}
