package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is used when a record arrives without a category
const DefaultCategory = "未分類"

// LedgerRow is one recorded transaction. Column order in tabular stores is
// (date, category, amount, note, account_id, invoice_number).
type LedgerRow struct {
	ID            int64           `db:"id"`
	Date          string          `db:"entry_date"`
	Category      string          `db:"category"`
	Amount        decimal.Decimal `db:"amount"`
	Note          string          `db:"note"`
	AccountID     string          `db:"account_id"`
	InvoiceNumber string          `db:"invoice_number"`
	CreatedAt     time.Time       `db:"created_at"`
}

// HasInvoiceNumber reports whether the row carries a well formed invoice number
func (r *LedgerRow) HasInvoiceNumber() bool {
	return IsInvoiceNumber(r.InvoiceNumber)
}

// IsReconcilable reports whether the row can take part in a reconciliation sweep
func (r *LedgerRow) IsReconcilable() bool {
	return r.HasInvoiceNumber() && r.AccountID != ""
}

// ParsedRecord is a candidate transaction extracted by a content parser
type ParsedRecord struct {
	Date          string          `json:"date"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note"`
	InvoiceNumber string          `json:"invoice_number"`
}

// ParseInput is what the chat layer hands to a content parser
type ParseInput struct {
	Text     string
	Data     []byte
	MIMEType string
}

// HasMedia reports whether the input carries binary content
func (p ParseInput) HasMedia() bool {
	return len(p.Data) > 0 && p.MIMEType != ""
}
