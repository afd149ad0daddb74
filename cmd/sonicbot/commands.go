package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sonic-agent/sonicbot/client"
)

const requestTimeout = 60 * time.Second

func apiClient(c *cli.Context) *client.Client {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return client.NewClient(c.String("server"), nil, logger)
}

func walletBalanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "balance",
		Usage:     "Show the balance of a wallet",
		ArgsUsage: "<address>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}
			ctx, cancel := timeoutCtx(c)
			defer cancel()

			balance, err := apiClient(c).WalletBalance(ctx, c.Args().Get(0))
			if err != nil {
				return err
			}
			return printJSON(c, balance)
		},
	}
}

func walletAgentCommand() *cli.Command {
	return &cli.Command{
		Name:  "agent",
		Usage: "Show the service's own wallet",
		Action: func(c *cli.Context) error {
			ctx, cancel := timeoutCtx(c)
			defer cancel()

			info, err := apiClient(c).AgentWallet(ctx)
			if err != nil {
				return err
			}
			return printJSON(c, info)
		},
	}
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Send SOL from the agent wallet",
		ArgsUsage: "<amount> <recipient>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force-mainnet",
				Usage: "Allow the transfer even when the wallet targets mainnet",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("amount and recipient are required")
			}
			amount, err := strconv.ParseFloat(c.Args().Get(0), 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", c.Args().Get(0), err)
			}

			ctx, cancel := timeoutCtx(c)
			defer cancel()

			receipt, err := apiClient(c).Transfer(ctx, c.Args().Get(1), amount, c.Bool("force-mainnet"))
			if err != nil {
				return err
			}
			return printJSON(c, receipt)
		},
	}
}

func priceCommand() *cli.Command {
	return &cli.Command{
		Name:      "price",
		Usage:     "Show token prices",
		ArgsUsage: "<mint> [mint...]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("at least one mint address is required")
			}
			ctx, cancel := timeoutCtx(c)
			defer cancel()

			prices, err := apiClient(c).TokenPrices(ctx, c.Args().Slice())
			if err != nil {
				return err
			}
			return printJSON(c, prices)
		},
	}
}

func detailsCommand() *cli.Command {
	return &cli.Command{
		Name:      "details",
		Usage:     "Show token metadata",
		ArgsUsage: "<mint>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("mint address is required")
			}
			ctx, cancel := timeoutCtx(c)
			defer cancel()

			details, err := apiClient(c).TokenDetails(ctx, c.Args().Get(0))
			if err != nil {
				return err
			}
			return printJSON(c, details)
		},
	}
}

func poolCommand() *cli.Command {
	return &cli.Command{
		Name:      "pool",
		Usage:     "Show one liquidity pool",
		ArgsUsage: "<pool id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("pool id is required")
			}
			ctx, cancel := timeoutCtx(c)
			defer cancel()

			pool, err := apiClient(c).Pool(ctx, c.Args().Get(0))
			if err != nil {
				return err
			}
			return printJSON(c, pool)
		},
	}
}

func poolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "pools",
		Usage: "List liquidity pools",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Value: 1},
			&cli.IntFlag{Name: "page-size", Value: 10},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := timeoutCtx(c)
			defer cancel()

			page, err := apiClient(c).Pools(ctx, c.Int("page"), c.Int("page-size"))
			if err != nil {
				return err
			}
			return printJSON(c, page)
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show chain-wide TVL and volume",
		Action: func(c *cli.Context) error {
			ctx, cancel := timeoutCtx(c)
			defer cancel()

			stats, err := apiClient(c).Stats(ctx)
			if err != nil {
				return err
			}
			return printJSON(c, stats)
		},
	}
}

func faucetCommand() *cli.Command {
	return &cli.Command{
		Name:      "faucet",
		Usage:     "Request test tokens for an address",
		ArgsUsage: "<address>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("address is required")
			}
			ctx, cancel := timeoutCtx(c)
			defer cancel()

			res, err := apiClient(c).Faucet(ctx, c.Args().Get(0))
			if err != nil {
				return err
			}
			return printJSON(c, res)
		},
	}
}

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Send a chat message and stream the reply",
		ArgsUsage: "<message>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("message is required")
			}
			message := strings.Join(c.Args().Slice(), " ")

			ctx, cancel := timeoutCtx(c)
			defer cancel()

			_, err := apiClient(c).Chat(ctx, []client.Message{
				{Role: "user", Content: message},
			}, func(chunk string) {
				fmt.Print(chunk)
			})
			fmt.Println()
			return err
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check server health",
		Action: func(c *cli.Context) error {
			ctx, cancel := timeoutCtx(c)
			defer cancel()

			if err := apiClient(c).Health(ctx); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "OK")
			return nil
		},
	}
}

func timeoutCtx(c *cli.Context) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(c.Context, requestTimeout)
}
