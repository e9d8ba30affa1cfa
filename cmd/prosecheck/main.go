// Package main is the entry point for the prosecheck CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/prosecheck/internal/app"
	"github.com/dshills/prosecheck/internal/assist"
	"github.com/dshills/prosecheck/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	configPath  string
	logLevel    string
	watch       bool
	snapshotDir string
	files       []string
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading configuration: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	logOut := io.Writer(os.Stderr)
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening log file: %v\n", err)
			return 1
		}
		defer f.Close()
		logOut = f
	}
	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(cfg.Logging.Level),
		Output: logOut,
		Prefix: "prosecheck",
	})

	appOpts := []app.AppOption{app.WithAppLogger(logger)}
	if opts.snapshotDir != "" {
		saver, err := app.NewDirSaver(opts.snapshotDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		appOpts = append(appOpts, app.WithSnapshotSaver(saver))
	}

	application, err := app.New(cfg, appOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	if opts.watch && opts.configPath != "" {
		if err := application.WatchConfig(opts.configPath); err != nil {
			logger.Warn("config watch unavailable: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(opts.files) == 0 {
		return checkStdin(ctx, application)
	}

	exit := 0
	for _, path := range opts.files {
		suggestions, err := application.CheckFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			exit = 1
			continue
		}
		printSuggestions(path, suggestions)
		if opts.snapshotDir != "" {
			if err := application.Service().Save(ctx, filepath.Base(path)); err != nil {
				fmt.Fprintf(os.Stderr, "Error: saving snapshot for %s: %v\n", path, err)
				exit = 1
			}
		}
		if len(suggestions) > 0 {
			exit = 1
		}
	}
	return exit
}

func checkStdin(ctx context.Context, application *app.Application) int {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading stdin: %v\n", err)
		return 1
	}
	suggestions, err := application.CheckText(ctx, string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	printSuggestions("<stdin>", suggestions)
	if len(suggestions) > 0 {
		return 1
	}
	return 0
}

func printSuggestions(source string, suggestions []assist.Suggestion) {
	for _, sug := range suggestions {
		line := fmt.Sprintf("%s:%d-%d [%s] %q -> %q", source, sug.Start, sug.End, sug.Kind, sug.Text, sug.Replacement)
		if sug.Description != "" {
			line += " (" + sug.Description + ")"
		}
		fmt.Println(line)
	}
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.watch, "watch", false, "Reload configuration when the file changes")
	flag.StringVar(&opts.snapshotDir, "snapshots", "", "Directory for analysis snapshots")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Prosecheck - incremental writing suggestion engine\n\n")
		fmt.Fprintf(os.Stderr, "Usage: prosecheck [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  prosecheck draft.txt              Check a file\n")
		fmt.Fprintf(os.Stderr, "  prosecheck -c check.toml ch1.md   Check with a config file\n")
		fmt.Fprintf(os.Stderr, "  cat draft.txt | prosecheck        Check stdin\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Prosecheck %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.logLevel != "" {
		switch opts.logLevel {
		case "debug", "info", "warn", "error":
		default:
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
			os.Exit(1)
		}
	}

	opts.files = flag.Args()
	return opts
}
