package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWinningSet_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *WinningSet {
		return &WinningSet{
			Period:            Period{RepublicYear: 114, StartMonth: 7},
			Special:           "12345678",
			Grand:             "87654321",
			FirstPrizeNumbers: []string{"11112222", "33334444", "55556666"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*WinningSet)
		wantErr bool
	}{
		{"valid", func(*WinningSet) {}, false},
		{"missing period", func(w *WinningSet) { w.Period = Period{} }, true},
		{"short special", func(w *WinningSet) { w.Special = "1234567" }, true},
		{"grand with letters", func(w *WinningSet) { w.Grand = "8765432X" }, true},
		{"no first prize", func(w *WinningSet) { w.FirstPrizeNumbers = nil }, true},
		{"bad first prize", func(w *WinningSet) { w.FirstPrizeNumbers = []string{"11112222", "333"} }, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := valid()
			tt.mutate(w)
			err := w.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateInvoiceNumber(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateInvoiceNumber("00000000"))
	for _, bad := range []string{"", "1234567", "123456789", "1234 678", "１２３４５６７８"} {
		err := ValidateInvoiceNumber(bad)
		assert.True(t, errors.Is(err, ErrMalformedInvoiceNumber), bad)
	}
}

func TestFetchError(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: timeout")
	err := error(NewNetworkError(cause))
	assert.True(t, IsFetchErrorKind(err, FetchErrorNetwork))
	assert.False(t, IsFetchErrorKind(err, FetchErrorParse))
	assert.ErrorIs(t, err, cause)

	parseErr := NewParseError("missing table %d", 2)
	assert.True(t, IsFetchErrorKind(parseErr, FetchErrorParse))
	assert.Contains(t, parseErr.Error(), "missing table 2")
}

func TestLedgerRow_IsReconcilable(t *testing.T) {
	t.Parallel()

	assert.True(t, (&LedgerRow{InvoiceNumber: "12345678", AccountID: "1"}).IsReconcilable())
	assert.False(t, (&LedgerRow{InvoiceNumber: "12345678"}).IsReconcilable())
	assert.False(t, (&LedgerRow{InvoiceNumber: "123456", AccountID: "1"}).IsReconcilable())
}
