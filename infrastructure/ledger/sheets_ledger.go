package ledger

import (
	"context"
	"fmt"
	"strings"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// valuesClient is the slice of the Sheets API the ledger needs
type valuesClient interface {
	ReadValues(ctx context.Context) ([][]interface{}, error)
	AppendValues(ctx context.Context, rows [][]interface{}) error
}

// sheetsValuesClient reads and appends the first sheet of a spreadsheet
type sheetsValuesClient struct {
	service       *sheets.Service
	spreadsheetID string
	sheetTitle    string
}

// NewSheetsService authenticates with a service account credentials file
func NewSheetsService(ctx context.Context, credentialsFile string) (*sheets.Service, error) {
	service, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return service, nil
}

func newSheetsValuesClient(ctx context.Context, service *sheets.Service, spreadsheetID string) (*sheetsValuesClient, error) {
	spreadsheet, err := service.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", spreadsheetID, err)
	}
	if len(spreadsheet.Sheets) == 0 || spreadsheet.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", spreadsheetID)
	}

	return &sheetsValuesClient{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetTitle:    spreadsheet.Sheets[0].Properties.Title,
	}, nil
}

func (c *sheetsValuesClient) sheetRange() string {
	return fmt.Sprintf("'%s'", strings.ReplaceAll(c.sheetTitle, "'", "''"))
}

func (c *sheetsValuesClient) ReadValues(ctx context.Context) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetRange()).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (c *sheetsValuesClient) AppendValues(ctx context.Context, rows [][]interface{}) error {
	_, err := c.service.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetRange(), &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// SheetsLedger stores ledger rows in the first sheet of a Google spreadsheet
type SheetsLedger struct {
	client valuesClient
}

// NewSheetsLedger opens spreadsheetID with service
func NewSheetsLedger(ctx context.Context, service *sheets.Service, spreadsheetID string) (interfaces.LedgerRepository, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	client, err := newSheetsValuesClient(ctx, service, spreadsheetID)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"spreadsheetID": spreadsheetID,
		"sheet":         client.sheetTitle,
	}).Info("Opened ledger spreadsheet")

	return &SheetsLedger{client: client}, nil
}

// readSheet returns the column mapping and the data rows, each paired with its sheet row number
func (l *SheetsLedger) readSheet(ctx context.Context) (ColumnMap, [][]string, int, error) {
	values, err := l.client.ReadValues(ctx)
	if err != nil {
		return ColumnMap{}, nil, 0, fmt.Errorf("failed to read ledger sheet: %w", err)
	}

	rows := make([][]string, len(values))
	for i, value := range values {
		rows[i] = cellsToStrings(value)
	}
	if len(rows) == 0 {
		return PositionalColumns(), nil, 1, nil
	}

	columns := DetectColumns(rows[0])
	if columns.HasHeader {
		return columns, rows[1:], 2, nil
	}
	return columns, rows, 1, nil
}

// ListRows returns every data row in sheet order. The row ID is the sheet row number.
func (l *SheetsLedger) ListRows(ctx context.Context) ([]*entities.LedgerRow, error) {
	columns, rows, firstRow, err := l.readSheet(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*entities.LedgerRow, 0, len(rows))
	for i, cells := range rows {
		if isBlank(cells) {
			continue
		}
		result = append(result, toLedgerRow(columns, cells, int64(firstRow+i)))
	}
	return result, nil
}

// ListByAccountsAndMonth returns rows of accountIDs dated in month (YYYY-MM). Rows whose amount
// cannot be read are left out.
func (l *SheetsLedger) ListByAccountsAndMonth(ctx context.Context, accountIDs []string, month string) ([]*entities.LedgerRow, error) {
	rows, err := l.ListRows(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		wanted[id] = true
	}

	var result []*entities.LedgerRow
	skipped := 0
	for _, row := range rows {
		if !wanted[row.AccountID] || !strings.HasPrefix(row.Date, month) {
			continue
		}
		if row.Amount.IsZero() {
			skipped++
			continue
		}
		result = append(result, row)
	}

	if skipped > 0 {
		log.WithFields(log.Fields{
			"month":   month,
			"skipped": skipped,
		}).Warn("Skipped ledger rows without a readable amount")
	}

	return result, nil
}

// Append adds a single row
func (l *SheetsLedger) Append(ctx context.Context, row *entities.LedgerRow) error {
	return l.AppendBatch(ctx, []*entities.LedgerRow{row})
}

// AppendBatch adds rows in one API call, laid out after the sheet's header. An empty sheet
// gets the default header first.
func (l *SheetsLedger) AppendBatch(ctx context.Context, rows []*entities.LedgerRow) error {
	if len(rows) == 0 {
		return nil
	}

	values, err := l.client.ReadValues(ctx)
	if err != nil {
		return fmt.Errorf("failed to read ledger sheet: %w", err)
	}

	var columns ColumnMap
	payload := make([][]interface{}, 0, len(rows)+1)
	if len(values) == 0 {
		columns = DetectColumns(DefaultHeader)
		header := make([]interface{}, len(DefaultHeader))
		for i, h := range DefaultHeader {
			header[i] = h
		}
		payload = append(payload, header)
	} else {
		columns = DetectColumns(cellsToStrings(values[0]))
	}

	for _, row := range rows {
		payload = append(payload, fromLedgerRow(columns, row))
	}

	if err := l.client.AppendValues(ctx, payload); err != nil {
		return fmt.Errorf("failed to append ledger rows: %w", err)
	}
	return nil
}

func toLedgerRow(columns ColumnMap, cells []string, id int64) *entities.LedgerRow {
	category := columns.Cell(cells, ColumnCategory)
	if category == "" {
		category = entities.DefaultCategory
	}

	invoice := strings.ReplaceAll(columns.Cell(cells, ColumnInvoiceNumber), "-", "")

	return &entities.LedgerRow{
		ID:            id,
		Date:          columns.Cell(cells, ColumnDate),
		Category:      category,
		Amount:        parseAmount(columns.Cell(cells, ColumnAmount)),
		Note:          columns.Cell(cells, ColumnNote),
		AccountID:     columns.Cell(cells, ColumnAccountID),
		InvoiceNumber: invoice,
	}
}

func fromLedgerRow(columns ColumnMap, row *entities.LedgerRow) []interface{} {
	cells := make([]interface{}, columns.Width())
	for i := range cells {
		cells[i] = ""
	}
	cells[columns.Index(ColumnDate)] = row.Date
	cells[columns.Index(ColumnCategory)] = row.Category
	cells[columns.Index(ColumnAmount)] = row.Amount.InexactFloat64()
	cells[columns.Index(ColumnNote)] = row.Note
	cells[columns.Index(ColumnAccountID)] = row.AccountID
	cells[columns.Index(ColumnInvoiceNumber)] = row.InvoiceNumber
	return cells
}

// parseAmount reads formatted sheet amounts such as "1,200" or "NT$ 80"; unreadable cells are zero
func parseAmount(s string) decimal.Decimal {
	s = strings.NewReplacer(",", "", "NT$", "", "$", "", "元", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

func cellsToStrings(values []interface{}) []string {
	cells := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		cells[i] = fmt.Sprint(v)
	}
	return cells
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
