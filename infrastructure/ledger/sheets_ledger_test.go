package ledger

import (
	"context"
	"errors"
	"testing"

	"ledgerbot/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeValuesClient keeps sheet values in memory
type fakeValuesClient struct {
	values    [][]interface{}
	appended  [][]interface{}
	readErr   error
	appendErr error
}

func (f *fakeValuesClient) ReadValues(ctx context.Context) ([][]interface{}, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.values, nil
}

func (f *fakeValuesClient) AppendValues(ctx context.Context, rows [][]interface{}) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, rows...)
	f.values = append(f.values, rows...)
	return nil
}

func row(cells ...interface{}) []interface{} {
	return cells
}

func TestSheetsLedger_ListRows(t *testing.T) {
	t.Parallel()

	client := &fakeValuesClient{values: [][]interface{}{
		row("日期", "類別", "金額", "備註", "使用者ID", "發票號碼"),
		row("2025-08-01 12:00:00", "午餐", "120", "便當", "U1", "11112222"),
		row(),
		row("2025-08-02", "", "1,200", "", "U2", "AB-1234-5678"),
		row("2025/07/30", "交通", 45.5, "", "U1"),
	}}
	ledger := &SheetsLedger{client: client}

	rows, err := ledger.ListRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3, "blank rows are ignored")

	assert.Equal(t, int64(2), rows[0].ID)
	assert.Equal(t, "午餐", rows[0].Category)
	assert.True(t, decimal.NewFromInt(120).Equal(rows[0].Amount))
	assert.Equal(t, "11112222", rows[0].InvoiceNumber)
	assert.True(t, rows[0].IsReconcilable())

	assert.Equal(t, int64(4), rows[1].ID)
	assert.Equal(t, entities.DefaultCategory, rows[1].Category)
	assert.True(t, decimal.NewFromInt(1200).Equal(rows[1].Amount))
	assert.False(t, rows[1].IsReconcilable(), "prefixed numbers are not 8 digits")

	assert.Equal(t, "", rows[2].InvoiceNumber)
	assert.True(t, decimal.RequireFromString("45.5").Equal(rows[2].Amount))
}

func TestSheetsLedger_ListRowsWithoutHeader(t *testing.T) {
	t.Parallel()

	client := &fakeValuesClient{values: [][]interface{}{
		row("2025-08-01", "早餐", "80", "", "U1", "12345678"),
		row("2025-08-02", "晚餐", "200", "", "U1"),
	}}
	ledger := &SheetsLedger{client: client}

	rows, err := ledger.ListRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, "12345678", rows[0].InvoiceNumber)
	assert.Equal(t, "U1", rows[1].AccountID)
}

func TestSheetsLedger_ListByAccountsAndMonth(t *testing.T) {
	t.Parallel()

	client := &fakeValuesClient{values: [][]interface{}{
		row("Date", "Category", "Amount", "Note", "User ID"),
		row("2025-08-01", "早餐", "80", "", "U1"),
		row("2025-08-03", "晚餐", "abc", "", "U1"),
		row("2025-08-04", "午餐", "150", "", "U2"),
		row("2025-08-05", "宵夜", "60", "", "U3"),
		row("2025-07-31", "早餐", "70", "", "U1"),
	}}
	ledger := &SheetsLedger{client: client}

	rows, err := ledger.ListByAccountsAndMonth(context.Background(), []string{"U1", "U2"}, "2025-08")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "早餐", rows[0].Category)
	assert.Equal(t, "午餐", rows[1].Category)
}

func TestSheetsLedger_AppendBatch(t *testing.T) {
	t.Parallel()

	t.Run("empty sheet gets header", func(t *testing.T) {
		t.Parallel()

		client := &fakeValuesClient{}
		ledger := &SheetsLedger{client: client}

		err := ledger.Append(context.Background(), &entities.LedgerRow{
			Date:          "2025-08-01 12:00:00",
			Category:      "午餐",
			Amount:        decimal.NewFromInt(120),
			AccountID:     "U1",
			InvoiceNumber: "01234567",
		})
		require.NoError(t, err)
		require.Len(t, client.appended, 2)
		assert.Equal(t, "Date", client.appended[0][0])
		assert.Equal(t, row("2025-08-01 12:00:00", "午餐", 120.0, "", "U1", "01234567"), client.appended[1])
	})

	t.Run("follows existing header order", func(t *testing.T) {
		t.Parallel()

		client := &fakeValuesClient{values: [][]interface{}{
			row("使用者ID", "日期", "金額", "類別"),
		}}
		ledger := &SheetsLedger{client: client}

		err := ledger.AppendBatch(context.Background(), []*entities.LedgerRow{
			{Date: "2025-08-01", Category: "早餐", Amount: decimal.NewFromInt(80), AccountID: "U1"},
			{Date: "2025-08-02", Category: "晚餐", Amount: decimal.NewFromInt(200), AccountID: "U1", Note: "火鍋"},
		})
		require.NoError(t, err)
		require.Len(t, client.appended, 2)
		assert.Equal(t, row("U1", "2025-08-01", 80.0, "早餐", "", ""), client.appended[0])
		assert.Equal(t, "火鍋", client.appended[1][4])

		rows, err := ledger.ListRows(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "火鍋", rows[1].Note)
	})

	t.Run("errors are wrapped", func(t *testing.T) {
		t.Parallel()

		client := &fakeValuesClient{values: [][]interface{}{row("Date")}, appendErr: errors.New("quota exceeded")}
		ledger := &SheetsLedger{client: client}

		err := ledger.Append(context.Background(), &entities.LedgerRow{Date: "2025-08-01", Amount: decimal.NewFromInt(1)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to append ledger rows")
	})
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"120", "120"},
		{"1,200", "1200"},
		{"NT$ 80", "80"},
		{"45.5", "45.5"},
		{"350元", "350"},
		{"", "0"},
		{"n/a", "0"},
	}

	for _, tt := range tests {
		assert.True(t, decimal.RequireFromString(tt.want).Equal(parseAmount(tt.input)), tt.input)
	}
}
