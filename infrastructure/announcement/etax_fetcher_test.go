package announcement

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/services"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveFixture(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/announcement.html")
	require.NoError(t, err)
	return string(data)
}

func TestEtaxFetcher_Fetch(t *testing.T) {
	t.Parallel()

	server := serveFixture(t, http.StatusOK, loadFixture(t))
	fetcher := NewEtaxFetcher(server.URL, server.Client())

	sets, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, sets, 2, "only the current and previous periods are read")

	current := sets[0]
	assert.Equal(t, entities.Period{RepublicYear: 114, StartMonth: 7}, current.Period)
	assert.Equal(t, "12345678", current.Special)
	assert.Equal(t, "87654321", current.Grand)
	assert.Equal(t, []string{"11112222", "33334444", "55556666"}, current.FirstPrizeNumbers)
	assert.False(t, current.FetchedAt.IsZero())
	assert.NoError(t, current.Validate())

	previous := sets[1]
	assert.Equal(t, entities.Period{RepublicYear: 114, StartMonth: 5}, previous.Period)
	assert.Equal(t, "24681357", previous.Special)
	assert.Equal(t, "13572468", previous.Grand)
	assert.Equal(t, []string{"90112233", "44556677", "00998877"}, previous.FirstPrizeNumbers)
}

func TestEtaxFetcher_PeriodsAgreeWithResolver(t *testing.T) {
	t.Parallel()

	server := serveFixture(t, http.StatusOK, loadFixture(t))
	sets, err := NewEtaxFetcher(server.URL, server.Client()).Fetch(context.Background())
	require.NoError(t, err)

	july := services.ResolvePeriod(time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC))
	may := services.ResolvePeriod(time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, july, sets[0].Period)
	assert.Equal(t, may, sets[1].Period)
}

func TestEtaxFetcher_NetworkErrors(t *testing.T) {
	t.Parallel()

	t.Run("non 2xx status", func(t *testing.T) {
		t.Parallel()

		server := serveFixture(t, http.StatusServiceUnavailable, "maintenance")
		_, err := NewEtaxFetcher(server.URL, server.Client()).Fetch(context.Background())
		require.Error(t, err)
		assert.True(t, entities.IsFetchErrorKind(err, entities.FetchErrorNetwork))
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(server.Close)

		client := server.Client()
		client.Timeout = 50 * time.Millisecond
		_, err := NewEtaxFetcher(server.URL, client).Fetch(context.Background())
		require.Error(t, err)
		assert.True(t, entities.IsFetchErrorKind(err, entities.FetchErrorNetwork))
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		server := serveFixture(t, http.StatusOK, "")
		url := server.URL
		server.Close()

		_, err := NewEtaxFetcher(url, &http.Client{Timeout: time.Second}).Fetch(context.Background())
		require.Error(t, err)
		assert.True(t, entities.IsFetchErrorKind(err, entities.FetchErrorNetwork))
	})
}

func TestParseDocument_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
	}{
		{
			name: "no headings",
			html: `<table class="etw-table-bg"><tr></tr></table>`,
		},
		{
			name: "no tables",
			html: `<h2 class="etw-period">114年 07-08月</h2>`,
		},
		{
			name: "unparseable heading",
			html: `<h2 class="etw-period">本期</h2><table class="etw-table-bg"><tr></tr></table>`,
		},
		{
			name: "missing grand prize",
			html: `<h2 class="etw-period">114年 07-08月</h2>
				<table class="etw-table-bg">
					<tr><th>獎別</th></tr>
					<tr><td><span class="etw-color-red">12345678</span></td></tr>
					<tr><td>即將公布</td></tr>
					<tr><td>11112222</td></tr>
				</table>`,
		},
		{
			name: "missing first prize",
			html: `<h2 class="etw-period">114年 07-08月</h2>
				<table class="etw-table-bg">
					<tr><th>獎別</th></tr>
					<tr><td><span class="etw-color-red">12345678</span></td></tr>
					<tr><td><span class="etw-color-red">87654321</span></td></tr>
					<tr><td>即將公布</td></tr>
				</table>`,
		},
		{
			name: "truncated table",
			html: `<h2 class="etw-period">114年 07-08月</h2>
				<table class="etw-table-bg"><tr><th>獎別</th></tr></table>`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			require.NoError(t, err)

			_, err = ParseDocument(doc, time.Now())
			require.Error(t, err)
			assert.True(t, entities.IsFetchErrorKind(err, entities.FetchErrorParse), err.Error())
		})
	}
}

func TestParseDocument_SinglePeriod(t *testing.T) {
	t.Parallel()

	html := `<h2 class="etw-period">113年11~12月</h2>
		<table class="etw-table-bg">
			<tr><th>獎別</th></tr>
			<tr><td>特別獎</td><td>12345678</td></tr>
			<tr><td>特獎</td><td>87654321</td></tr>
			<tr><td>頭獎</td><td>11112222 33334444</td></tr>
		</table>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	sets, err := ParseDocument(doc, time.Now())
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, entities.Period{RepublicYear: 113, StartMonth: 11}, sets[0].Period)
	assert.Equal(t, "12345678", sets[0].Special)
	assert.Equal(t, []string{"11112222", "33334444"}, sets[0].FirstPrizeNumbers)
}
