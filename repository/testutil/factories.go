package testutil

import (
	"ledgerbot/domain/entities"

	"github.com/shopspring/decimal"
)

// CreateTestLedgerRow creates a ledger row with default values
func CreateTestLedgerRow(accountID, date string, amount int64) *entities.LedgerRow {
	return &entities.LedgerRow{
		Date:      date,
		Category:  "餐飲",
		Amount:    decimal.NewFromInt(amount),
		Note:      "test",
		AccountID: accountID,
	}
}

// CreateTestLedgerRowWithInvoice creates a ledger row carrying an invoice number
func CreateTestLedgerRowWithInvoice(accountID, date, invoiceNumber string) *entities.LedgerRow {
	row := CreateTestLedgerRow(accountID, date, 100)
	row.InvoiceNumber = invoiceNumber
	return row
}
