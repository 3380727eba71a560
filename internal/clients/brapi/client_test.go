package brapi

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ativotrack/internal/clients/clientdata"
	"ativotrack/internal/database"
)

const quoteJSON = `{
	"results": [{
		"symbol": "PETR4",
		"shortName": "PETROBRAS PN",
		"currency": "BRL",
		"regularMarketPrice": 38.52,
		"historicalDataPrice": [
			{"date": 1755648000, "open": 38.0, "high": 38.9, "low": 37.8, "close": 38.5, "volume": 1000},
			{"date": 1755734400, "open": 38.5, "high": 38.7, "low": 38.1, "close": 38.52, "volume": 1200}
		],
		"dividendsData": {
			"cashDividends": [
				{"label": "JCP", "rate": 0.35, "paymentDate": "2026-09-01", "exDate": "2026-08-15"}
			]
		}
	}]
}`

func newCacheRepo(t *testing.T) *clientdata.Repository {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	return clientdata.NewRepository(db.Conn(), zerolog.Nop())
}

func TestGetQuoteParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/PETR4", r.URL.Path)
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "true", r.URL.Query().Get("dividends"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(quoteJSON))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", nil, zerolog.Nop())

	resp, err := client.GetQuote([]string{"PETR4"}, QuoteOptions{Range: "1y", Dividends: true})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	result := resp.Results[0]
	assert.Equal(t, "PETR4", result.Symbol)
	assert.Equal(t, 38.52, result.RegularMarketPrice)
	require.Len(t, result.HistoricalDataPrice, 2)
	assert.Equal(t, 38.5, result.HistoricalDataPrice[0].Close)
	require.NotNil(t, result.DividendsData)
	require.Len(t, result.DividendsData.CashDividends, 1)
	assert.Equal(t, "JCP", result.DividendsData.CashDividends[0].Label)
}

func TestGetQuoteTokenSentAsQueryParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(quoteJSON))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", nil, zerolog.Nop())

	_, err := client.GetQuote([]string{"PETR4"}, QuoteOptions{})
	require.NoError(t, err)
}

func TestGetQuoteServedFromCache(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(quoteJSON))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", newCacheRepo(t), zerolog.Nop())

	_, err := client.GetQuote([]string{"PETR4"}, QuoteOptions{})
	require.NoError(t, err)

	// Second identical request within the TTL never reaches the provider
	resp, err := client.GetQuote([]string{"PETR4"}, QuoteOptions{})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(1), requests.Load())
}

func TestGetQuoteStaleFallbackOnProviderError(t *testing.T) {
	var failing atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(quoteJSON))
	}))
	defer server.Close()

	cacheRepo := newCacheRepo(t)
	client := NewClient(server.URL, "", cacheRepo, zerolog.Nop())

	first, err := client.GetQuote([]string{"PETR4"}, QuoteOptions{})
	require.NoError(t, err)

	// Re-store the entry already expired, then break the provider: the
	// stale copy is still served.
	require.NoError(t, cacheRepo.Store("brapi", "PETR4?", first, -time.Minute))
	failing.Store(true)

	resp, err := client.GetQuote([]string{"PETR4"}, QuoteOptions{})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "PETR4", resp.Results[0].Symbol)
}

func TestGetQuoteErrorWithoutCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", nil, zerolog.Nop())

	_, err := client.GetQuote([]string{"PETR4"}, QuoteOptions{})
	assert.ErrorContains(t, err, "status 502")

	_, err = client.GetQuote(nil, QuoteOptions{})
	assert.Error(t, err)
}
