package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
)

var mirrorCommands = []subcommands.Command{
	&syncCmd{},
	&restoreCmd{},
	&statusCmd{},
}

type syncCmd struct{}

func (*syncCmd) Name() string           { return "sync" }
func (*syncCmd) Synopsis() string       { return "convert source and processed CSVs to the JSON mirror" }
func (*syncCmd) Usage() string          { return "fundwatch sync\n" }
func (*syncCmd) SetFlags(*flag.FlagSet) {}

func (*syncCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := openApp()
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	written, err := a.MirrorService.Sync(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Sync failed")
		return subcommands.ExitFailure
	}
	for _, name := range written {
		fmt.Println(name)
	}
	return subcommands.ExitSuccess
}

type restoreCmd struct{}

func (*restoreCmd) Name() string           { return "restore" }
func (*restoreCmd) Synopsis() string       { return "rebuild the CSVs from the JSON mirror" }
func (*restoreCmd) Usage() string          { return "fundwatch restore\n" }
func (*restoreCmd) SetFlags(*flag.FlagSet) {}

func (*restoreCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := openApp()
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	written, err := a.MirrorService.Restore(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Restore failed")
		return subcommands.ExitFailure
	}
	for _, name := range written {
		fmt.Println(name)
	}
	return subcommands.ExitSuccess
}

type statusCmd struct{}

func (*statusCmd) Name() string           { return "status" }
func (*statusCmd) Synopsis() string       { return "show the JSON mirror files and the last run" }
func (*statusCmd) Usage() string          { return "fundwatch status\n" }
func (*statusCmd) SetFlags(*flag.FlagSet) {}

func (*statusCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := openApp()
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tUPDATED\tSIZE")
	for _, st := range a.MirrorService.Status() {
		if !st.Exists {
			fmt.Fprintf(tw, "%s\tmissing\t-\n", st.Name)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", st.Name, st.LastModified.Format("2006-01-02 15:04:05"), st.Size)
	}
	tw.Flush()

	if manifest, err := a.ReadManifest(); err == nil {
		fmt.Printf("\nlast run %s finished %s", manifest.ID, manifest.FinishedAt.Format("2006-01-02 15:04:05"))
		if manifest.Error != "" {
			fmt.Printf(" with error: %s", manifest.Error)
		}
		fmt.Println()
	}
	return subcommands.ExitSuccess
}
