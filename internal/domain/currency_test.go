package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCode(t *testing.T) {
	code, err := NormalizeCode(" btc ")
	require.NoError(t, err)
	require.Equal(t, "BTC", code)

	_, err = NormalizeCode("")
	var invalid *InvalidCurrencyCodeError
	require.ErrorAs(t, err, &invalid)

	_, err = NormalizeCode("B")
	require.ErrorAs(t, err, &invalid)

	_, err = NormalizeCode("TOOLONG")
	require.ErrorAs(t, err, &invalid)

	_, err = NormalizeCode("BT C")
	require.ErrorAs(t, err, &invalid)
}

func TestLookupCurrency(t *testing.T) {
	btc, err := LookupCurrency("btc")
	require.NoError(t, err)
	require.Equal(t, "BTC", btc.Code)
	require.Equal(t, Crypto, btc.Kind)
	require.EqualValues(t, 8, btc.Precision)

	usd, err := LookupCurrency("USD")
	require.NoError(t, err)
	require.Equal(t, Fiat, usd.Kind)
	require.EqualValues(t, 2, usd.Precision)

	_, err = LookupCurrency("XYZ")
	var notFound *CurrencyNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "XYZ", notFound.Code)
}

func TestCurrenciesByKind(t *testing.T) {
	cryptos := Currencies(Crypto)
	require.NotEmpty(t, cryptos)
	for _, c := range cryptos {
		require.Equal(t, Crypto, c.Kind)
	}

	all := Currencies()
	require.Greater(t, len(all), len(cryptos))

	// sorted by code
	for i := 1; i < len(all); i++ {
		require.Less(t, all[i-1].Code, all[i].Code)
	}
}
