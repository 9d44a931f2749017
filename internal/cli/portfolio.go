package cli

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/subcommands"
)

type showPortfolioCmd struct {
	app  *App
	base string
}

func (*showPortfolioCmd) Name() string     { return "show-portfolio" }
func (*showPortfolioCmd) Synopsis() string { return "show wallet balances valued in a base currency" }
func (*showPortfolioCmd) Usage() string {
	return `valutahub show-portfolio [--base CCY]

  Lists every wallet with its value in the base currency (default USD),
  priced from the local rate cache.
`
}

func (c *showPortfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.base, "base", "", "valuation currency (defaults to the configured base)")
}

func (c *showPortfolioCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, err := c.app.currentUser()
	if err != nil {
		return fail(err)
	}

	base := c.base
	if base == "" {
		base = c.app.Config.BaseCurrency
	}

	lines, total, err := c.app.Engine.Value(user.ID, base)
	if err != nil {
		return fail(err)
	}
	if len(lines) == 0 {
		fmt.Println("no wallets yet, buy something first")
		return subcommands.ExitSuccess
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].Currency < lines[j].Currency })

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CURRENCY", "BALANCE", fmt.Sprintf("VALUE (%s)", base))
	for _, l := range lines {
		value := "rate unavailable"
		if l.RateKnown {
			value = l.ValueBase.StringFixed(2)
		}
		t.Row(l.Currency, l.Balance.String(), value)
	}

	fmt.Printf("portfolio of %q (base %s):\n", user.Username, base)
	fmt.Println(t)
	fmt.Printf("total: %s %s\n", total.StringFixed(2), base)
	return subcommands.ExitSuccess
}
