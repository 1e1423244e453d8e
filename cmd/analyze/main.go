// Command analyze runs the full analysis pipeline over ERP export
// files and writes the report as JSON, without starting the server.
//
//	analyze -as-of 2025-06-30 -out report.json sales.csv inventory.xlsx
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"erpinsight/internal/config"
	"erpinsight/internal/infrastructure"
	"erpinsight/internal/orchestrator"
	"erpinsight/internal/tabular"
)

func main() {
	asOfFlag := flag.String("as-of", "", "analysis reference date (YYYY-MM-DD, default today)")
	out := flag.String("out", "", "output file path (default stdout)")
	timeout := flag.Duration("timeout", 5*time.Minute, "run timeout")
	level := flag.String("log-level", "warn", "log level: debug | info | warn | error")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: analyze [flags] <file.csv|file.xlsx> ...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{
		Level:  *level,
		Format: "json",
	})
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	asOf := time.Now().UTC()
	if *asOfFlag != "" {
		asOf, err = time.Parse("2006-01-02", *asOfFlag)
		if err != nil {
			logger.Error("invalid -as-of date", "value", *asOfFlag, "error", err)
			os.Exit(2)
		}
	}

	var (
		tables []*tabular.Table
		names  []string
	)
	for _, path := range flag.Args() {
		table, err := tabular.ReadFile(path)
		if err != nil {
			logger.Error("failed to read file", "path", path, "error", err)
			os.Exit(1)
		}
		tables = append(tables, table)
		names = append(names, filepath.Base(path))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	orch := orchestrator.New(logger, nil, nil)
	report, err := orch.Run(ctx, tables, orchestrator.Options{
		DataSource: strings.Join(names, ", "),
		AsOf:       asOf,
	})
	if err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error("failed to encode report", "error", err)
		os.Exit(1)
	}
	encoded = append(encoded, '\n')

	if *out == "" {
		_, _ = os.Stdout.Write(encoded)
		return
	}
	if err := os.WriteFile(*out, encoded, 0o644); err != nil {
		logger.Error("failed to write report", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("report written", "path", *out, "domains", report.EnabledDomains)
}
