package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

const runtimeKey = "runtime"

func newApp() *cli.App {
	return &cli.App{
		Name:  "solrpc",
		Usage: "talk to a Solana JSON-RPC node",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file to load before reading the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve Prometheus metrics on this address, e.g. :9090",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := LoadConfig(c.String("env-file"))
			if err != nil {
				return err
			}
			if addr := c.String("metrics-addr"); addr != "" {
				cfg.MetricsAddr = addr
			}

			c.App.Metadata = map[string]any{runtimeKey: newRuntime(cfg)}
			return nil
		},
		After: func(c *cli.Context) error {
			if rt, ok := c.App.Metadata[runtimeKey].(*runtime); ok {
				return rt.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			healthCommand,
			accountCommand,
			blockhashCommand,
			transferCommand,
			historyCommand,
		},
	}
}

func runtimeFrom(c *cli.Context) *runtime {
	return c.App.Metadata[runtimeKey].(*runtime)
}
