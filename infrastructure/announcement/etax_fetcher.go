package announcement

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ledgerbot/domain/entities"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultURL is the public winning number page of the Ministry of Finance
	DefaultURL = "https://invoice.etax.nat.gov.tw/"
	// DefaultTimeout bounds a single fetch
	DefaultTimeout = 20 * time.Second

	// maxPeriods is the number of period blocks read from the page (current and previous)
	maxPeriods = 2

	periodSelector = "h2.etw-period"
	tableSelector  = "table.etw-table-bg"
	numberSelector = "span.etw-color-red"
	bigSelector    = "p.etw-tbiggest"

	rowSpecial = 1
	rowGrand   = 2
	rowFirst   = 3
)

// EtaxFetcher scrapes winning numbers from the e-Tax announcement page
type EtaxFetcher struct {
	url    string
	client *http.Client
	now    func() time.Time
}

// NewEtaxFetcher creates a fetcher for url. A nil client gets one with DefaultTimeout.
func NewEtaxFetcher(url string, client *http.Client) *EtaxFetcher {
	if url == "" {
		url = DefaultURL
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &EtaxFetcher{
		url:    url,
		client: client,
		now:    time.Now,
	}
}

// Fetch downloads the page and parses at most the two most recent periods in page order
func (f *EtaxFetcher) Fetch(ctx context.Context) ([]*entities.WinningSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, entities.NewNetworkError(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("User-Agent", "ledgerbot/1.0 (+invoice reconciliation)")
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, entities.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, entities.NewNetworkError(fmt.Errorf("unexpected status %d from %s", resp.StatusCode, f.url))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, entities.NewNetworkError(fmt.Errorf("failed to read announcement page: %w", err))
	}

	sets, err := ParseDocument(doc, f.now())
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"url":      f.url,
		"periods":  len(sets),
		"duration": time.Since(start),
	}).Debug("Fetched announcement page")

	return sets, nil
}

// ParseDocument extracts winning sets from a parsed announcement page
func ParseDocument(doc *goquery.Document, fetchedAt time.Time) ([]*entities.WinningSet, error) {
	headings := doc.Find(periodSelector)
	tables := doc.Find(tableSelector)

	if headings.Length() == 0 {
		return nil, entities.NewParseError("no period headings (%s) found", periodSelector)
	}
	if tables.Length() == 0 {
		return nil, entities.NewParseError("no prize tables (%s) found", tableSelector)
	}

	count := min(headings.Length(), tables.Length(), maxPeriods)
	sets := make([]*entities.WinningSet, 0, count)
	for i := 0; i < count; i++ {
		heading := strings.TrimSpace(headings.Eq(i).Text())
		period, err := entities.ParsePeriodLabel(heading)
		if err != nil {
			return nil, entities.NewParseError("period heading %d: %v", i+1, err)
		}

		set, err := parseTable(tables.Eq(i), period)
		if err != nil {
			return nil, err
		}
		set.FetchedAt = fetchedAt
		sets = append(sets, set)
	}

	return sets, nil
}

func parseTable(table *goquery.Selection, period entities.Period) (*entities.WinningSet, error) {
	rows := table.Find("tr")
	if rows.Length() <= rowFirst {
		return nil, entities.NewParseError("period %s: prize table has %d rows", period.Label(), rows.Length())
	}

	special, ok := exactNumber(rows.Eq(rowSpecial))
	if !ok {
		return nil, entities.NewParseError("period %s: special prize not found", period.Label())
	}
	grand, ok := exactNumber(rows.Eq(rowGrand))
	if !ok {
		return nil, entities.NewParseError("period %s: grand prize not found", period.Label())
	}

	firsts := firstPrizeNumbers(rows.Eq(rowFirst))
	if len(firsts) == 0 {
		return nil, entities.NewParseError("period %s: first prize numbers not found", period.Label())
	}

	return &entities.WinningSet{
		Period:            period,
		Special:           special,
		Grand:             grand,
		FirstPrizeNumbers: firsts,
	}, nil
}

// exactNumber reads the single 8-digit number of a special or grand prize row
func exactNumber(row *goquery.Selection) (string, bool) {
	if n := digitsOf(row.Find(numberSelector).First().Text()); entities.IsInvoiceNumber(n) {
		return n, true
	}

	var found string
	row.Find(bigSelector + ", td").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if n := digitsOf(s.Text()); entities.IsInvoiceNumber(n) {
			found = n
			return false
		}
		return true
	})
	return found, found != ""
}

// firstPrizeNumbers reads every first prize number of the row in page order.
// The page splits each number into styled spans inside one paragraph.
func firstPrizeNumbers(row *goquery.Selection) []string {
	var numbers []string
	row.Find(bigSelector).Each(func(_ int, s *goquery.Selection) {
		if n := digitsOf(s.Text()); entities.IsInvoiceNumber(n) {
			numbers = append(numbers, n)
		}
	})
	if len(numbers) > 0 {
		return numbers
	}

	for _, field := range strings.Fields(row.Text()) {
		if entities.IsInvoiceNumber(field) {
			numbers = append(numbers, field)
		}
	}
	return numbers
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
