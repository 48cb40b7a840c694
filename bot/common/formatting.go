package common

import (
	"fmt"
	"strings"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/interfaces"
	"ledgerbot/domain/utils"

	"github.com/shopspring/decimal"
)

// maxPreviewRows limits the rows echoed back after a batch is recorded
const maxPreviewRows = 5

// FormatRecorded confirms stored ledger rows
func FormatRecorded(rows []*entities.LedgerRow) string {
	if len(rows) == 1 {
		row := rows[0]
		var b strings.Builder
		b.WriteString("✅ 記帳成功\n")
		fmt.Fprintf(&b, "類別：%s\n金額：%s 元\n日期：%s", row.Category, utils.FormatAmount(row.Amount), row.Date)
		if row.Note != "" {
			fmt.Fprintf(&b, "\n備註：%s", row.Note)
		}
		if row.InvoiceNumber != "" {
			fmt.Fprintf(&b, "\n發票：%s (開獎後會自動對獎)", row.InvoiceNumber)
		}
		return b.String()
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ 已記錄 %d 筆，共 %s 元", len(rows), utils.FormatAmount(total))
	for i, row := range rows {
		if i == maxPreviewRows {
			fmt.Fprintf(&b, "\n… 以及另外 %d 筆", len(rows)-maxPreviewRows)
			break
		}
		fmt.Fprintf(&b, "\n• %s %s元", row.Category, utils.FormatAmount(row.Amount))
	}
	return b.String()
}

// FormatMatch renders a manual prize check
func FormatMatch(invoiceNumber string, result *entities.MatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "發票號碼：%s\n", invoiceNumber)
	if result.Period != nil {
		fmt.Fprintf(&b, "期別：%s\n", result.Period.Label())
	}
	b.WriteString(result.Message)
	if result.Won {
		fmt.Fprintf(&b, "\n獎金：%s", utils.FormatPrizeAmount(result.PrizeAmount))
	}
	return b.String()
}

// FormatSweep renders the outcome of a manual reconciliation
func FormatSweep(result *interfaces.SweepResult) string {
	return fmt.Sprintf("🧾 對獎完成\n掃描：%d 筆\n可對獎：%d 筆\n中獎：%d 筆\n已通知：%d 筆\n先前已通知：%d 筆\n失敗：%d 筆",
		result.Scanned, result.Eligible, result.Winners, result.Notified, result.AlreadyNotified, result.Failed)
}
