package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/rxtech-lab/argo-meanrev/internal/config"
	"github.com/rxtech-lab/argo-meanrev/internal/trading/engine/engine_v1/session"
	"github.com/rxtech-lab/argo-meanrev/internal/trading/engine/engine_v1/writers"
	tradingprovider "github.com/rxtech-lab/argo-meanrev/internal/trading/provider"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func journalAction(_ context.Context, cmd *cli.Command) error {
	runPath := cmd.String("run")
	if runPath == "" {
		latest, err := session.LatestRunPath(cmd.String("data"))
		if err != nil {
			return err
		}

		runPath = latest
	}

	limit := cmd.Int("limit")
	if limit < 0 {
		limit = 0
	}

	records, err := writers.ReadActions(filepath.Join(runPath, session.ActionsFileName), types.ActionFilter{
		Symbol:  cmd.String("symbol"),
		CycleID: cmd.String("cycle"),
		Status:  types.ActionStatus(cmd.String("status")),
		Limit:   uint64(limit),
	})
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	fmt.Fprintf(w, "Run: %s\n", runPath)

	return printActions(w, records)
}

func printActions(w io.Writer, records []types.ActionRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tCYCLE\tSYMBOL\tSEQ\tKIND\tREASON\tSIDE\tTYPE\tSIZE\tPRICE\tORDER\tSTATUS\tERROR")

	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp.UTC().Format(time.RFC3339), r.CycleID, r.Symbol, r.Sequence, r.Kind, r.Reason,
			r.Side, r.OrderType, r.Size, r.Price, r.OrderID, r.Status, r.Error)
	}

	fmt.Fprintf(tw, "%d action(s)\n", len(records))

	return tw.Flush()
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, schema)

	return err
}

func providersAction(_ context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	fmt.Fprintln(w, "Exchanges:")

	for _, name := range tradingprovider.GetSupportedProviders() {
		info, err := tradingprovider.GetProviderInfo(name)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "  %-26s %s\n", info.Name, info.Description)
	}

	fmt.Fprintln(w, "Feeds:")

	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		auth := ""
		if info.RequiresAuth {
			auth = " (requires API key)"
		}

		fmt.Fprintf(w, "  %-26s %s%s\n", info.Name, info.Description, auth)
	}

	return nil
}
