package summary

import (
	"fmt"
	"strings"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/utils"
)

// maxItems limits the transactions listed in a text summary
const maxItems = 10

// FormatText renders summary as a chat message
func FormatText(summary *entities.LedgerSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 %s：\n━━━━━━━━━━\n", summary.Title)
	fmt.Fprintf(&b, "預算：%s\n", utils.FormatAmount(summary.Budget))
	fmt.Fprintf(&b, "總支出：%s 元\n", utils.FormatAmount(summary.Total))
	fmt.Fprintf(&b, "剩餘：%s 元\n", utils.FormatAmount(summary.Remaining()))
	fmt.Fprintf(&b, "筆數：%d 筆\n", summary.Count)

	if len(summary.CategoryTotals) > 0 {
		b.WriteString("\n類別明細：\n")
		for _, c := range summary.CategoryTotals {
			fmt.Fprintf(&b, "• %s: %s元\n", c.Category, utils.FormatAmount(c.Total))
		}
	}

	if len(summary.Items) > 0 {
		b.WriteString("\n最近消費：\n")
		items := summary.Items
		if len(items) > maxItems {
			items = items[len(items)-maxItems:]
		}
		for _, item := range items {
			line := fmt.Sprintf("• %s %s %s元", item.Date, item.Category, utils.FormatAmount(item.Amount))
			if item.Note != "" {
				line += " (" + item.Note + ")"
			}
			b.WriteString(line + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
