// Command valutahub manages virtual fiat and crypto holdings against a
// locally cached exchange-rate table.
//
// Usage:
//
//	valutahub register --username alice --password secret
//	valutahub login --username alice --password secret
//	valutahub update-rates
//	valutahub buy --currency BTC --amount 0.05
//	valutahub show-portfolio --base USD
//
// The fiat rate provider needs the EXCHANGERATE_API_KEY environment
// variable (a .env file next to the binary is honored).
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/valutatrade/valutahub/config"
	"github.com/valutatrade/valutahub/internal/cli"
	"github.com/valutatrade/valutahub/internal/logging"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to yaml config")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	cli.Register(commander, app)

	os.Exit(int(commander.Execute(context.Background())))
}
