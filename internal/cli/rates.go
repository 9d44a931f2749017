package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutahub/internal/domain"
)

var decimalOne = decimal.NewFromInt(1)

type getRateCmd struct {
	app  *App
	from string
	to   string
}

func (*getRateCmd) Name() string     { return "get-rate" }
func (*getRateCmd) Synopsis() string { return "show the cached rate for a currency pair" }
func (*getRateCmd) Usage() string {
	return `valutahub get-rate --from BTC --to USD

  Fails when the cached rate is older than the configured TTL; run
  update-rates to refresh.
`
}

func (c *getRateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "source currency")
	f.StringVar(&c.to, "to", "", "target currency")
}

func (c *getRateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" {
		return failUsage("get-rate requires --from and --to")
	}

	from, err := domain.LookupCurrency(c.from)
	if err != nil {
		return fail(err)
	}
	to, err := domain.LookupCurrency(c.to)
	if err != nil {
		return fail(err)
	}

	rp, err := c.app.Rates.GetRate(domain.Pair{From: from.Code, To: to.Code}, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "run update-rates to fetch fresh rates")
		return subcommands.ExitFailure
	}

	fmt.Printf("rate %s -> %s: %s (source %s, updated %s)\n",
		rp.Pair.From, rp.Pair.To, rp.Rate.StringFixed(8),
		rp.Source, rp.UpdatedAt.Local().Format(time.DateTime))
	if !rp.Rate.IsZero() {
		inverse := decimalOne.Div(rp.Rate)
		fmt.Printf("rate %s -> %s: %s\n", rp.Pair.To, rp.Pair.From, inverse.StringFixed(8))
	}
	return subcommands.ExitSuccess
}

type updateRatesCmd struct {
	app    *App
	source string
}

func (*updateRatesCmd) Name() string     { return "update-rates" }
func (*updateRatesCmd) Synopsis() string { return "refresh the rate cache from external providers" }
func (*updateRatesCmd) Usage() string {
	return `valutahub update-rates [--source coingecko|exchangerate]

  Fetches current rates, appends each observation to the history journal
  and overwrites the cache. A partially failed refresh still succeeds.
`
}

func (c *updateRatesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "source", "", "restrict to one source: coingecko or exchangerate")
}

func (c *updateRatesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var scope domain.RefreshScope
	switch c.source {
	case "":
		scope = domain.ScopeAll
	case "coingecko":
		scope = domain.ScopeCryptoOnly
	case "exchangerate":
		scope = domain.ScopeFiatOnly
	default:
		return failUsage(fmt.Sprintf("unknown --source %q, expected coingecko or exchangerate", c.source))
	}

	report, err := c.app.Rates.Refresh(ctx, scope)
	if err != nil {
		return fail(err)
	}

	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "warning: %v\n", f)
	}
	fmt.Printf("update done: %d rates refreshed, last refresh %s\n",
		len(report.Updated), report.LastRefresh.Local().Format(time.DateTime))
	return subcommands.ExitSuccess
}

type showRatesCmd struct {
	app      *App
	currency string
	top      int
}

func (*showRatesCmd) Name() string     { return "show-rates" }
func (*showRatesCmd) Synopsis() string { return "list cached rates" }
func (*showRatesCmd) Usage() string {
	return `valutahub show-rates [--top N] [--currency C]

  Lists the local rate cache. --currency filters pairs containing the
  currency; --top keeps the N highest-priced crypto pairs.
`
}

func (c *showRatesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "filter pairs containing this currency")
	f.IntVar(&c.top, "top", 0, "show only the N highest-priced crypto pairs")
}

func (c *showRatesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	pairs := c.app.Cache.All()
	if len(pairs) == 0 {
		return fail(fmt.Errorf("rate cache is empty, run update-rates first"))
	}

	if c.currency != "" {
		code, err := domain.NormalizeCode(c.currency)
		if err != nil {
			return fail(err)
		}
		filtered := pairs[:0]
		for _, rp := range pairs {
			if rp.Pair.From == code || rp.Pair.To == code {
				filtered = append(filtered, rp)
			}
		}
		if len(filtered) == 0 {
			return fail(fmt.Errorf("no cached rate involves %s", code))
		}
		pairs = filtered
	}

	if c.top > 0 {
		crypto := make([]domain.RatePair, 0, len(pairs))
		for _, rp := range pairs {
			if cur, err := domain.LookupCurrency(rp.Pair.From); err == nil && cur.Kind == domain.Crypto {
				crypto = append(crypto, rp)
			}
		}
		if len(crypto) > 0 {
			sort.Slice(crypto, func(i, j int) bool { return crypto[i].Rate.GreaterThan(crypto[j].Rate) })
			if len(crypto) > c.top {
				crypto = crypto[:c.top]
			}
			pairs = crypto
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Pair.String() < pairs[j].Pair.String() })

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PAIR", "RATE", "SOURCE", "UPDATED")
	for _, rp := range pairs {
		t.Row(rp.Pair.String(), rp.Rate.StringFixed(2), rp.Source,
			rp.UpdatedAt.Local().Format(time.DateTime))
	}

	last := c.app.Cache.LastRefresh()
	fmt.Printf("rates from cache (last refresh %s):\n", last.Local().Format(time.DateTime))
	fmt.Println(t)
	return subcommands.ExitSuccess
}
