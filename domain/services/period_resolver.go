package services

import (
	"fmt"
	"strings"
	"time"

	"ledgerbot/domain/entities"
)

// ledgerDateLayouts are the date formats found in ledger rows, most specific first
var ledgerDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"2006/1/2",
	time.RFC3339,
}

// ResolvePeriod maps a civil date onto the lottery period that contains it
func ResolvePeriod(t time.Time) entities.Period {
	month := int(t.Month())
	if month%2 == 0 {
		month--
	}
	return entities.Period{
		RepublicYear: t.Year() - 1911,
		StartMonth:   month,
	}
}

// ParseLedgerDate parses a ledger date string in loc
func ParseLedgerDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range ledgerDateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// ResolveLedgerPeriod resolves the period of a ledger date string
func ResolveLedgerPeriod(value string, loc *time.Location) (entities.Period, error) {
	t, err := ParseLedgerDate(value, loc)
	if err != nil {
		return entities.Period{}, err
	}
	return ResolvePeriod(t), nil
}
