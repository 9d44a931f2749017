package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutahub/internal/domain"
)

type tradeFlags struct {
	currency string
	amount   string
}

func (t *tradeFlags) set(f *flag.FlagSet) {
	f.StringVar(&t.currency, "currency", "", "currency code, e.g. BTC")
	f.StringVar(&t.amount, "amount", "", "amount of the currency")
}

func (t *tradeFlags) intent(side domain.Side) (domain.TradeIntent, error) {
	if t.currency == "" || t.amount == "" {
		return domain.TradeIntent{}, fmt.Errorf("%s requires --currency and --amount", side.String())
	}
	amount, err := decimal.NewFromString(t.amount)
	if err != nil {
		return domain.TradeIntent{}, fmt.Errorf("invalid --amount %q", t.amount)
	}
	return domain.TradeIntent{Currency: t.currency, Amount: amount, Side: side}, nil
}

func runTrade(app *App, side domain.Side, flags tradeFlags) subcommands.ExitStatus {
	intent, err := flags.intent(side)
	if err != nil {
		return failUsage(err.Error())
	}

	user, err := app.currentUser()
	if err != nil {
		return fail(err)
	}

	result, err := app.Engine.Execute(user.ID, intent)
	if err != nil {
		return fail(err)
	}

	verb := "bought"
	costWord := "cost"
	if side == domain.Sell {
		verb = "sold"
		costWord = "proceeds"
	}

	fmt.Printf("%s %s %s at %s %s/%s\n",
		verb, result.Amount.String(), result.Currency,
		result.Rate.StringFixed(2), result.Base, result.Currency)
	fmt.Printf("  %s: %s -> %s\n", result.Currency, result.OldBalance.String(), result.NewBalance.String())
	fmt.Printf("  %s balance: %s\n", result.Base, result.BaseBalance.String())
	fmt.Printf("  %s: %s %s\n", costWord, result.Cost.String(), result.Base)
	return subcommands.ExitSuccess
}

type buyCmd struct {
	app   *App
	flags tradeFlags
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy a currency against the base currency" }
func (*buyCmd) Usage() string {
	return `valutahub buy --currency BTC --amount 0.05

  Debits the base-currency wallet and credits the bought currency.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) { c.flags.set(f) }

func (c *buyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runTrade(c.app, domain.Buy, c.flags)
}

type sellCmd struct {
	app   *App
	flags tradeFlags
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell a currency into the base currency" }
func (*sellCmd) Usage() string {
	return `valutahub sell --currency BTC --amount 0.05

  Debits the sold currency and credits the base-currency wallet.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) { c.flags.set(f) }

func (c *sellCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runTrade(c.app, domain.Sell, c.flags)
}
