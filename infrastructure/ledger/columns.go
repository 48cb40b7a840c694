package ledger

import "strings"

// Column identifies a ledger field stored in a sheet
type Column int

const (
	ColumnDate Column = iota
	ColumnCategory
	ColumnAmount
	ColumnNote
	ColumnAccountID
	ColumnInvoiceNumber

	columnCount
)

// DefaultHeader is written to an empty sheet and defines the positional fallback order
var DefaultHeader = []string{"Date", "Category", "Amount", "Note", "User ID", "Invoice Number"}

// headerAliases lists the header spellings accepted for every column, compared case-insensitively
// with spaces and underscores removed
var headerAliases = map[Column][]string{
	ColumnDate:          {"date", "日期", "時間"},
	ColumnCategory:      {"category", "類別", "項目"},
	ColumnAmount:        {"amount", "金額", "消費"},
	ColumnNote:          {"note", "備註", "說明"},
	ColumnAccountID:     {"userid", "accountid", "使用者id", "帳號"},
	ColumnInvoiceNumber: {"invoicenumber", "invoice", "發票號碼", "發票"},
}

// ColumnMap maps ledger fields to zero-based cell indexes
type ColumnMap struct {
	index     [columnCount]int
	HasHeader bool
}

// PositionalColumns returns the mapping used when a sheet has no recognizable header
func PositionalColumns() ColumnMap {
	var m ColumnMap
	for c := Column(0); c < columnCount; c++ {
		m.index[c] = int(c)
	}
	return m
}

// DetectColumns builds a mapping from the first row of a sheet. When no cell matches a known
// header the row is treated as data and the positional order applies. Columns missing from a
// recognized header are placed after its last cell.
func DetectColumns(firstRow []string) ColumnMap {
	m := PositionalColumns()
	found := [columnCount]bool{}

	for i, cell := range firstRow {
		key := normalizeHeader(cell)
		if key == "" {
			continue
		}
		for c, aliases := range headerAliases {
			if found[c] {
				continue
			}
			for _, alias := range aliases {
				if key == alias {
					m.index[c] = i
					found[c] = true
					m.HasHeader = true
					break
				}
			}
		}
	}

	if m.HasHeader {
		next := len(firstRow)
		for c := Column(0); c < columnCount; c++ {
			if !found[c] {
				m.index[c] = next
				next++
			}
		}
	}

	return m
}

// Index returns the cell index of column c
func (m ColumnMap) Index(c Column) int {
	return m.index[c]
}

// Cell returns the trimmed value of column c in row, or "" when the row is too short
func (m ColumnMap) Cell(row []string, c Column) string {
	i := m.index[c]
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Width returns the number of cells needed to hold every mapped column
func (m ColumnMap) Width() int {
	width := 0
	for _, i := range m.index {
		if i+1 > width {
			width = i + 1
		}
	}
	return width
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}
