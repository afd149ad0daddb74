package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "sonicbot",
		Usage:   "Sonic assistant service CLI",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Description: `A command-line client for the sonicbot service.

Query wallet balances, token prices, liquidity pools, and chain stats, or
drive the agent wallet, against a running sonicbot server.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "Base URL of the sonicbot server",
				Value:   "http://localhost:8080",
				EnvVars: []string{"SONICBOT_SERVER_URL"},
			},
			&cli.StringFlag{
				Name:  "jq",
				Usage: "Filter JSON output through a jq expression",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "wallet",
				Usage: "Wallet queries",
				Subcommands: []*cli.Command{
					walletBalanceCommand(),
					walletAgentCommand(),
				},
			},
			sendCommand(),
			priceCommand(),
			detailsCommand(),
			poolCommand(),
			poolsCommand(),
			statsCommand(),
			faucetCommand(),
			chatCommand(),
			{
				Name:  "server",
				Usage: "Server utility commands",
				Subcommands: []*cli.Command{
					healthCommand(),
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
