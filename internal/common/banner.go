package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger arbor.ILogger) {
	build := CurrentVersion()
	serviceURL := fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
	schedule := "disabled"
	if config.Schedule.Enabled {
		schedule = config.Schedule.Cron
	}

	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 60
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)
	fmt.Fprintf(os.Stderr, "%s  FUNDWATCH  Fund Performance Monitor%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)

	kvPad := 16
	kvLines := [][2]string{
		{"Version", build.Version},
		{"Build", build.Build},
		{"Commit", build.Commit},
		{"Environment", config.Environment},
		{"Fund", config.Fund.ReferenceTicker},
		{"Service URL", serviceURL},
		{"Data Dir", config.Storage.DataDir},
		{"Schedule", schedule},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(os.Stderr, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)

	logger.Info().
		Str("version", build.Version).
		Str("environment", config.Environment).
		Str("fund", config.Fund.ReferenceTicker).
		Str("service_url", serviceURL).
		Msg("Application started")
}

// PrintShutdownBanner displays the application shutdown banner to stderr.
func PrintShutdownBanner(logger arbor.ILogger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 42) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  FUNDWATCH  SHUTTING DOWN%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}
