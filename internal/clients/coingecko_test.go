package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/valutatrade/valutahub/internal/domain"
)

func TestCoinGeckoFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/simple/price", r.URL.Path)
		require.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		require.Contains(t, r.URL.Query().Get("ids"), "bitcoin")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin":{"usd":59337.21},"ethereum":{"usd":2500.0}}`))
	}))
	defer srv.Close()

	c := &CoinGecko{http: resty.New().SetBaseURL(srv.URL), base: "USD"}

	result, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, result.StatusCode)
	require.Len(t, result.Observations, 2)

	byPair := make(map[string]decimal.Decimal)
	for _, obs := range result.Observations {
		byPair[obs.Pair.String()] = obs.Rate
	}
	require.True(t, byPair["BTC_USD"].Equal(decimal.RequireFromString("59337.21")))
	require.True(t, byPair["ETH_USD"].Equal(decimal.NewFromInt(2500)))
}

func TestCoinGeckoFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := &CoinGecko{http: resty.New().SetBaseURL(srv.URL), base: "USD"}

	_, err := c.Fetch(context.Background())
	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, coinGeckoName, provErr.Provider)
	require.Equal(t, http.StatusTooManyRequests, provErr.StatusCode)
}

func TestCoinGeckoSkipsUnknownAndNonPositive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin":{"usd":0},"dogecoin":{"usd":0.1},"ethereum":{"usd":2500.0}}`))
	}))
	defer srv.Close()

	c := &CoinGecko{http: resty.New().SetBaseURL(srv.URL), base: "USD"}

	result, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Observations, 1)
	require.Equal(t, "ETH_USD", result.Observations[0].Pair.String())
}
