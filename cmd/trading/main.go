package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-meanrev/internal/version"
	"github.com/urfave/cli/v3"
)

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "Path to the YAML configuration `FILE`",
		Value:    "config.yaml",
		Required: false,
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "argo-meanrev",
		Usage:   "Mean-reversion trading bot for perpetual futures",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the strategy loop until interrupted",
				Flags:  []cli.Flag{configFlag()},
				Action: runAction,
			},
			{
				Name:  "cycle",
				Usage: "Run a single cycle over all markets and print the report",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Log and journal actions without sending them",
					},
				},
				Action: cycleAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the configuration file",
				Action: schemaAction,
			},
			{
				Name:   "providers",
				Usage:  "List the supported exchange and feed providers",
				Action: providersAction,
			},
			{
				Name:  "version",
				Usage: "Print the engine version",
				Action: func(_ context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

					return err
				},
			},
			{
				Name:  "journal",
				Usage: "Print the actions journaled by a run",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Data output `DIR` the engine wrote sessions to",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "run",
						Usage: "Run `DIR` to read; defaults to the latest run under --data",
					},
					&cli.StringFlag{
						Name:  "symbol",
						Usage: "Only show actions for this market",
					},
					&cli.StringFlag{
						Name:  "cycle",
						Usage: "Only show actions of this cycle id",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show actions with this status (submitted, rejected, skipped, dry_run)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of actions to print (0 for all)",
						Value: 0,
					},
				},
				Action: journalAction,
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		stop()
		log.Fatal(err)
	}
}
