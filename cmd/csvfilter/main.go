package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/csvfilter/internal/application"
	"github.com/JonMunkholm/csvfilter/internal/core"
	"github.com/JonMunkholm/csvfilter/internal/logging"
	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Optional .env for LOG_LEVEL / LOG_FORMAT; existing env vars win.
	_ = godotenv.Load()

	in := flag.String("in", "", "Comma-separated input files or glob patterns (** supported)")
	selections := flag.String("selections", "", "YAML file with filter presets (default: no filters)")
	out := flag.String("out", "out", "Output directory")
	formats := flag.String("formats", "csv", "Comma-separated export formats: csv, json, xlsx, parquet")
	maxSize := flag.Int64("max-size", 100<<20, "Maximum decompressed input size in bytes")
	logLevel := flag.String("log-level", envOr("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", envOr("LOG_FORMAT", "text"), "Log format: text or json")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `csvfilter filters CSV exports and writes the results to disk.

Usage:
  csvfilter -in 'exports/**/*.csv' -selections presets.yaml -out out/ -formats csv,json
  csvfilter -out out/ users.csv users-2024.csv.gz

Flags:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	// Logs go to stderr; stdout lists the written files.
	logging.SetupWriter(os.Stderr, *logLevel, *logFormat)

	patterns := append(splitList(*in), flag.Args()...)
	if len(patterns) == 0 {
		fmt.Fprintln(os.Stderr, "Error: -in or at least one input argument is required")
		flag.Usage()
		return 2
	}

	fmts, err := parseFormats(*formats)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}

	presets, err := application.LoadPresets(*selections)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}

	inputs, err := application.ExpandInputs(patterns)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := application.RunBatch(ctx, application.BatchOptions{
		Inputs:      inputs,
		Presets:     presets,
		OutDir:      *out,
		Formats:     fmts,
		MaxFileSize: *maxSize,
	})
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", r.Input, core.FormatUserError(r.Err))
			continue
		}
		for _, path := range r.Outputs {
			fmt.Printf("%s\t%d/%d rows\n", path, r.Rows, r.SourceRows)
		}
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

func parseFormats(list string) ([]core.Format, error) {
	var fmts []core.Format
	for _, name := range splitList(list) {
		f, err := core.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		fmts = append(fmts, f)
	}
	if len(fmts) == 0 {
		return nil, errors.New("-formats must name at least one format")
	}
	return fmts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
