package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

var configPath = flag.String("config", "", "path to fundwatch.toml (default: $FUNDWATCH_CONFIG, next to the binary, then config/fundwatch.toml)")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range pipelineCommands {
		commander.Register(c, "pipeline")
	}
	for _, c := range mirrorCommands {
		commander.Register(c, "json mirror")
	}
	commander.Register(&serveCmd{}, "server")
	commander.Register(&versionCmd{}, "")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
