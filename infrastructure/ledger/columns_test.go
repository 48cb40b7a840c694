package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectColumns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     []string
		wantHeader bool
		want       map[Column]int
	}{
		{
			name:       "english header",
			header:     []string{"Date", "Category", "Amount", "Note", "User ID", "Invoice Number"},
			wantHeader: true,
			want: map[Column]int{
				ColumnDate: 0, ColumnCategory: 1, ColumnAmount: 2,
				ColumnNote: 3, ColumnAccountID: 4, ColumnInvoiceNumber: 5,
			},
		},
		{
			name:       "localized header in another order",
			header:     []string{"使用者ID", "日期", "金額", "類別", "發票號碼", "備註"},
			wantHeader: true,
			want: map[Column]int{
				ColumnAccountID: 0, ColumnDate: 1, ColumnAmount: 2,
				ColumnCategory: 3, ColumnInvoiceNumber: 4, ColumnNote: 5,
			},
		},
		{
			name:       "snake case and missing invoice column",
			header:     []string{"date", "category", "amount", "note", "user_id"},
			wantHeader: true,
			want: map[Column]int{
				ColumnDate: 0, ColumnAccountID: 4, ColumnInvoiceNumber: 5,
			},
		},
		{
			name:       "data row falls back to positions",
			header:     []string{"2025-08-01 12:00:00", "早餐", "80", "", "U123"},
			wantHeader: false,
			want: map[Column]int{
				ColumnDate: 0, ColumnCategory: 1, ColumnAmount: 2,
				ColumnNote: 3, ColumnAccountID: 4, ColumnInvoiceNumber: 5,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := DetectColumns(tt.header)
			assert.Equal(t, tt.wantHeader, m.HasHeader)
			for column, index := range tt.want {
				assert.Equal(t, index, m.Index(column), "column %d", column)
			}
		})
	}
}

func TestColumnMap_Cell(t *testing.T) {
	t.Parallel()

	m := DetectColumns([]string{"日期", "類別", "金額"})
	row := []string{" 2025-08-01 ", "午餐", "120"}

	assert.Equal(t, "2025-08-01", m.Cell(row, ColumnDate))
	assert.Equal(t, "120", m.Cell(row, ColumnAmount))
	assert.Equal(t, "", m.Cell(row, ColumnInvoiceNumber), "short rows read as empty")
	assert.Equal(t, 6, m.Width())
}
