package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/slicktrace/internal/adapters/ingest"
	service "github.com/okian/slicktrace/internal/app"
	"github.com/okian/slicktrace/internal/batch"
	"github.com/okian/slicktrace/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	var (
		spills     = fs.String("spills", "", "GeoJSON FeatureCollection of spill polygons")
		tracks     = fs.String("tracks", "", "AIS positions, CSV or a JSON array of records")
		format     = fs.String("format", "", "Track format: csv or json (default: detect)")
		window     = fs.Int("window", 0, "Causal time window in hours (default from config)")
		out        = fs.String("out", ".", "Output directory")
		configPath = fs.String("config", "", "Optional YAML config file")
		logLevel   = fs.String("log-level", "info", "Log level: debug, info, warn, error")
		help       = fs.Bool("help", false, "Show help")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		batch.ShowHelp()
		return 0
	}

	if err := batch.SetupLogging(*logLevel, false); err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *configPath != "" {
		_ = os.Setenv(config.EnvConfigFile, *configPath)
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	tracksFormat, err := ingest.ParseFormat(*format)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		return 2
	}

	stats, err := batch.Run(ctx, &batch.Config{
		SpillsPath:   *spills,
		TracksPath:   *tracks,
		TracksFormat: tracksFormat,
		WindowHours:  *window,
		OutDir:       *out,
	}, service.FromConfig(cfg)...)
	if err != nil {
		os.Stderr.WriteString("analysis failed: " + err.Error() + "\n")
		return 1
	}

	batch.PrintStats(os.Stdout, stats)
	return 0
}
