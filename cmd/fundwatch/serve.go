package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/server"
)

type serveCmd struct {
	updateOnStart bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the JSON mirror and run scheduled updates" }
func (*serveCmd) Usage() string {
	return `fundwatch serve [-update-on-start]

  Starts the read-only HTTP API and, when [schedule] is enabled, runs
  update on the configured cron schedule.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.updateOnStart, "update-on-start", false, "run an update as soon as the server starts")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := openApp()
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	common.PrintBanner(a.Config, a.Logger)

	if err := a.StartScheduler(); err != nil {
		a.Logger.Warn().Err(err).Msg("Scheduler not started")
		return subcommands.ExitFailure
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdown := make(chan struct{}, 1)
	go func() {
		select {
		case <-shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()

	if c.updateOnStart {
		go func() {
			if _, err := a.Update(ctx); err != nil {
				a.Logger.Warn().Err(err).Msg("Startup update failed")
			}
		}()
	}

	a.Logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)).
		Msg("Server ready")

	status := subcommands.ExitSuccess
	if err := server.NewServer(a, shutdown).Run(ctx, 10*time.Second); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server failed")
		status = subcommands.ExitFailure
	}

	common.PrintShutdownBanner(a.Logger)
	return status
}

type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "print build information" }
func (*versionCmd) Usage() string          { return "fundwatch version\n" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}

func (*versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	common.LoadVersionFile()
	fmt.Fprintln(os.Stdout, "fundwatch", common.CurrentVersion())
	return subcommands.ExitSuccess
}
