package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/fundwatch/internal/app"
)

var pipelineCommands = []subcommands.Command{
	&fetchCmd{},
	&processCmd{},
	&validateCmd{},
	&updateCmd{},
}

// openApp initializes the application or reports why it could not.
func openApp() (*app.App, bool) {
	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		return nil, false
	}
	return a, true
}

type fetchCmd struct {
	infoOnly bool
	force    bool
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "download holdings, market data and holdings info" }
func (*fetchCmd) Usage() string {
	return `fundwatch fetch [-info-only] [-force]

  Acquires the latest holdings file, downloads daily closes and volumes for
  the fund, its benchmarks and every holding, and refreshes holdings info.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.infoOnly, "info-only", false, "only refresh holdings info for the newest holdings file")
	f.BoolVar(&c.force, "force", false, "refetch holdings info even when it is recent")
}

func (c *fetchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := openApp()
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.infoOnly {
		h, err := a.HoldingsService.Load(ctx)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to load holdings")
			return subcommands.ExitFailure
		}
		info, err := a.FetchService.FetchHoldingsInfo(ctx, h.Tickers(), c.force)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Holdings info fetch failed")
			return subcommands.ExitFailure
		}
		fmt.Printf("holdings info: %d rows\n", len(info))
		return subcommands.ExitSuccess
	}

	summary, err := a.FetchService.Run(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Fetch failed")
		return subcommands.ExitFailure
	}

	fmt.Printf("holdings file: %s\n", summary.HoldingsFile)
	fmt.Printf("tickers:       %d requested, %d fetched in %d rounds\n", summary.Requested, len(summary.Fetched), summary.Rounds)
	printList("failed", summary.Failed)
	printList("skipped", summary.Skipped)
	printList("stale", summary.StaleLatest)
	fmt.Printf("holdings info: %d rows, %d errors\n", summary.InfoRows, summary.InfoErrors)
	return subcommands.ExitSuccess
}

type processCmd struct{}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "compute returns, risk, volume and attribution tables" }
func (*processCmd) Usage() string {
	return `fundwatch process

  Reads the fetched closes, volumes and holdings and writes the processed
  tables.
`
}
func (*processCmd) SetFlags(*flag.FlagSet) {}

func (*processCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := openApp()
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	summary, err := a.PipelineService.Process(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Processing failed")
		return subcommands.ExitFailure
	}

	fmt.Printf("as of:   %s\n", summary.AsOf.Format("2006-01-02"))
	fmt.Printf("tickers: %d (%d holdings)\n", summary.Tickers, summary.Holdings)
	printList("written", summary.TablesWritten)
	for _, key := range []string{"sector_no_group", "sector_no_weight", "country_no_group", "country_no_weight"} {
		if n := summary.Excluded[key]; n > 0 {
			fmt.Printf("excluded %s: %d\n", key, n)
		}
	}
	for _, by := range []string{"sector", "country"} {
		groups := summary.GroupDTD[by]
		names := make([]string, 0, len(groups))
		for name := range groups {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s DTD %-24s %+.4f\n", by, name, groups[name])
		}
	}
	return subcommands.ExitSuccess
}

type validateCmd struct {
	strict bool
}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "report gaps in closes and industry mapping problems" }
func (*validateCmd) Usage() string {
	return `fundwatch validate [-strict]

  Lists tickers with missing closes after their first trading day and
  tickers whose type and configured industry disagree.
`
}

func (c *validateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.strict, "strict", false, "exit with failure when any problem is found")
}

func (c *validateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := openApp()
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	report, err := a.PipelineService.Validate(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Validation failed")
		return subcommands.ExitFailure
	}

	for _, g := range report.Gaps {
		fmt.Printf("gap      %-10s %d missing, longest run %d from %s to %s\n",
			g.Ticker, len(g.MissingDates), g.LongestRun,
			g.RunStart.Format("2006-01-02"), g.RunEnd.Format("2006-01-02"))
	}
	for _, p := range report.Mapping {
		fmt.Printf("mapping  %-10s %s: %s\n", p.Ticker, p.Type, p.Issue)
	}
	if len(report.Gaps) == 0 && len(report.Mapping) == 0 {
		fmt.Println("no problems found")
		return subcommands.ExitSuccess
	}
	if c.strict {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type updateCmd struct{}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "fetch, process and sync in one run" }
func (*updateCmd) Usage() string {
	return `fundwatch update

  Runs fetch, process and sync in sequence and records the run manifest.
`
}
func (*updateCmd) SetFlags(*flag.FlagSet) {}

func (*updateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := openApp()
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	manifest, err := a.Update(ctx)
	if err != nil {
		return subcommands.ExitFailure
	}
	fmt.Printf("run %s: %d fetched, %d failed, %d tables\n",
		manifest.ID, len(manifest.FetchedTickers), len(manifest.FailedTickers), len(manifest.TablesWritten))
	return subcommands.ExitSuccess
}

func printList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%-14s %s\n", label+":", strings.Join(items, ", "))
}
