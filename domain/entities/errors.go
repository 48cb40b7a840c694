package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInvoiceNumber is returned when an invoice number is not exactly 8 digits
	ErrMalformedInvoiceNumber = errors.New("malformed invoice number")

	// ErrEmptyCache is returned when no winning numbers could be loaded
	ErrEmptyCache = errors.New("winning number cache is empty")

	// ErrNoRecords is returned when a ledger summary has nothing to report
	ErrNoRecords = errors.New("no ledger records")
)

// FetchErrorKind distinguishes transport failures from page structure failures
type FetchErrorKind string

const (
	FetchErrorNetwork FetchErrorKind = "network"
	FetchErrorParse   FetchErrorKind = "parse"
)

// FetchError is returned by announcement fetchers
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("announcement %s error: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps a transport failure
func NewNetworkError(err error) *FetchError {
	return &FetchError{Kind: FetchErrorNetwork, Err: err}
}

// NewParseError wraps a page structure failure
func NewParseError(format string, args ...any) *FetchError {
	return &FetchError{Kind: FetchErrorParse, Err: fmt.Errorf(format, args...)}
}

// IsFetchErrorKind reports whether err is a FetchError of the given kind
func IsFetchErrorKind(err error, kind FetchErrorKind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}
