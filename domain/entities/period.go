package entities

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// republicEraOffset is the difference between the Gregorian year and the Minguo (ROC) year
const republicEraOffset = 1911

// Period identifies one bimonthly lottery cycle: an odd start month and the even month after it
type Period struct {
	RepublicYear int `json:"republic_year"`
	StartMonth   int `json:"start_month"`
}

var periodLabelPattern = regexp.MustCompile(`(\d{2,3})\s*年\s*(\d{1,2})\s*[-~－～]\s*(\d{1,2})\s*月`)

// NewPeriod normalizes any month of a republic year onto the period that contains it
func NewPeriod(republicYear, month int) (Period, error) {
	if republicYear <= 0 {
		return Period{}, fmt.Errorf("invalid republic year %d", republicYear)
	}
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("invalid month %d", month)
	}
	if month%2 == 0 {
		month--
	}
	return Period{RepublicYear: republicYear, StartMonth: month}, nil
}

// EndMonth returns the even month that closes the period
func (p Period) EndMonth() int {
	return p.StartMonth + 1
}

// GregorianYear returns the civil calendar year of the period
func (p Period) GregorianYear() int {
	return p.RepublicYear + republicEraOffset
}

// IsZero reports whether the period is unset
func (p Period) IsZero() bool {
	return p.RepublicYear == 0 && p.StartMonth == 0
}

// Before reports whether p is an earlier period than other
func (p Period) Before(other Period) bool {
	if p.RepublicYear != other.RepublicYear {
		return p.RepublicYear < other.RepublicYear
	}
	return p.StartMonth < other.StartMonth
}

// Key returns a compact sortable key, e.g. 11407
func (p Period) Key() int {
	return p.RepublicYear*100 + p.StartMonth
}

// Label renders the period the way the announcement page prints it, e.g. "114年07-08月"
func (p Period) Label() string {
	return fmt.Sprintf("%d年%02d-%02d月", p.RepublicYear, p.StartMonth, p.EndMonth())
}

// String implements fmt.Stringer
func (p Period) String() string {
	return p.Label()
}

// Contains reports whether the civil date t falls inside the period
func (p Period) Contains(t time.Time) bool {
	return t.Year()-republicEraOffset == p.RepublicYear &&
		(int(t.Month()) == p.StartMonth || int(t.Month()) == p.EndMonth())
}

// ParsePeriodLabel parses a heading such as "114年 07-08月" into a Period.
// The heading must name an odd start month followed by the next month.
func ParsePeriodLabel(label string) (Period, error) {
	m := periodLabelPattern.FindStringSubmatch(label)
	if m == nil {
		return Period{}, fmt.Errorf("unrecognized period label %q", label)
	}

	year, _ := strconv.Atoi(m[1])
	start, _ := strconv.Atoi(m[2])
	end, _ := strconv.Atoi(m[3])

	if start%2 == 0 || end != start+1 {
		return Period{}, fmt.Errorf("period label %q does not span an odd month and the following month", label)
	}

	return NewPeriod(year, start)
}
