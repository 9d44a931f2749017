package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestWalletDepositWithdraw(t *testing.T) {
	w := make(Wallet)
	require.True(t, w.Balance("USD").IsZero())

	require.NoError(t, w.Deposit("USD", decimal.NewFromInt(1500)))
	require.True(t, w.Balance("USD").Equal(decimal.NewFromInt(1500)))

	require.NoError(t, w.Withdraw("USD", decimal.NewFromInt(500)))
	require.True(t, w.Balance("USD").Equal(decimal.NewFromInt(1000)))
}

func TestWalletWithdrawInsufficient(t *testing.T) {
	w := Wallet{"USD": decimal.NewFromInt(100)}

	err := w.Withdraw("USD", decimal.NewFromInt(101))
	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, "USD", insufficient.Currency)

	// balance untouched after the refused debit
	require.True(t, w.Balance("USD").Equal(decimal.NewFromInt(100)))
}

func TestWalletRejectsNonPositiveAmounts(t *testing.T) {
	w := make(Wallet)

	var invalid *InvalidTradeError
	require.ErrorAs(t, w.Deposit("USD", decimal.Zero), &invalid)
	require.ErrorAs(t, w.Withdraw("USD", decimal.NewFromInt(-5)), &invalid)
}

func TestWalletCloneIsIndependent(t *testing.T) {
	w := Wallet{"BTC": decimal.NewFromFloat(0.5)}
	clone := w.Clone()

	require.NoError(t, clone.Deposit("BTC", decimal.NewFromFloat(0.5)))
	require.True(t, w.Balance("BTC").Equal(decimal.NewFromFloat(0.5)))
	require.True(t, clone.Balance("BTC").Equal(decimal.NewFromInt(1)))
}

func TestPairParse(t *testing.T) {
	pair, err := ParsePair("BTC_USD")
	require.NoError(t, err)
	require.Equal(t, Pair{From: "BTC", To: "USD"}, pair)
	require.Equal(t, "USD_BTC", pair.Inverse().String())

	_, err = ParsePair("BTCUSD")
	require.Error(t, err)
	_, err = ParsePair("_USD")
	require.Error(t, err)
}
