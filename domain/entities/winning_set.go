package entities

import (
	"fmt"
	"time"
)

// InvoiceNumberLength is the number of digits on a uniform invoice
const InvoiceNumberLength = 8

// WinningSet holds the published results of one lottery period.
// A set is never mutated after it has been cached.
type WinningSet struct {
	Period            Period    `json:"period"`
	Special           string    `json:"special"`
	Grand             string    `json:"grand"`
	FirstPrizeNumbers []string  `json:"first_prize_numbers"`
	FetchedAt         time.Time `json:"fetched_at"`
}

// Validate checks every number is 8 digits and at least one first prize number exists
func (w *WinningSet) Validate() error {
	if w.Period.IsZero() {
		return fmt.Errorf("winning set has no period")
	}
	if !IsInvoiceNumber(w.Special) {
		return fmt.Errorf("period %s: special prize %q is not an 8-digit number", w.Period, w.Special)
	}
	if !IsInvoiceNumber(w.Grand) {
		return fmt.Errorf("period %s: grand prize %q is not an 8-digit number", w.Period, w.Grand)
	}
	if len(w.FirstPrizeNumbers) == 0 {
		return fmt.Errorf("period %s: no first prize numbers", w.Period)
	}
	for _, n := range w.FirstPrizeNumbers {
		if !IsInvoiceNumber(n) {
			return fmt.Errorf("period %s: first prize %q is not an 8-digit number", w.Period, n)
		}
	}
	return nil
}

// IsInvoiceNumber reports whether s is exactly 8 ASCII digits
func IsInvoiceNumber(s string) bool {
	if len(s) != InvoiceNumberLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidateInvoiceNumber returns ErrMalformedInvoiceNumber unless s is exactly 8 digits
func ValidateInvoiceNumber(s string) error {
	if !IsInvoiceNumber(s) {
		return fmt.Errorf("%w: %q", ErrMalformedInvoiceNumber, s)
	}
	return nil
}
