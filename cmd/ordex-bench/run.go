package main

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/ordex"
	"github.com/hupe1980/ordex/internal/workload"
)

func workloadFlags(cmd *cobra.Command, cfg *workload.Config) {
	f := cmd.Flags()
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed.")
	f.IntVar(&cfg.Ops, "ops", cfg.Ops, "Number of writes across all writers.")
	f.IntVar(&cfg.Queries, "queries", cfg.Queries, "Number of queries across all readers.")
	f.IntVar(&cfg.Keys, "keys", cfg.Keys, "Size of the id universe.")
	f.IntVar(&cfg.Buckets, "buckets", cfg.Buckets, "Number of buckets (top-level keys).")
	f.Float64Var(&cfg.Zipf, "zipf", cfg.Zipf, "Zipf exponent for ids. Values <= 1 sample uniformly.")
	f.Float64Var(&cfg.Remove, "remove", cfg.Remove, "Fraction of writes that remove.")
	f.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "Query page size.")
	f.IntVar(&cfg.Writers, "writers", cfg.Writers, "Number of writer goroutines.")
	f.IntVar(&cfg.Readers, "readers", cfg.Readers, "Number of reader goroutines.")
	f.IntVar(&cfg.Preload, "preload", cfg.Preload, "Entries bulk loaded before the run.")
	f.IntVar(&cfg.OpsPerSec, "rate", cfg.OpsPerSec, "Operations per second across all workers. 0 is unlimited.")
	f.Int64Var(&cfg.MaxEntries, "max-entries", cfg.MaxEntries, "Entry budget. 0 is unlimited.")
	f.BoolVar(&cfg.InPlace, "in-place", cfg.InPlace, "Mutate nodes in place while no reader is active.")
}

func loggerFor(cmd *cobra.Command) (*ordex.Logger, error) {
	name, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return ordex.NewTextLogger(level), nil
}

func runCommand() *cobra.Command {
	cfg := workload.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs a concurrent read/write workload and reports throughput.",
	}
	workloadFlags(cmd, &cfg)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFor(cmd)
		if err != nil {
			return err
		}

		metrics := &ordex.BasicMetricsCollector{}
		ix, err := workload.NewIndex(cfg, logger, metrics)
		if err != nil {
			return fmt.Errorf("error creating index: %w", err)
		}

		logger.Info("starting run",
			"ops", cfg.Ops,
			"queries", cfg.Queries,
			"writers", cfg.Writers,
			"readers", cfg.Readers,
		)

		report, err := workload.Run(cmd.Context(), cfg, ix)
		if err != nil {
			return fmt.Errorf("error running workload: %w", err)
		}

		printReport(cmd.OutOrStdout(), report, metrics.GetStats())
		return nil
	}

	return cmd
}

func printReport(w io.Writer, r workload.Report, m ordex.BasicMetricsStats) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	fmt.Fprintf(w, "duration     %s\n", r.Duration)
	fmt.Fprintf(w, "throughput   %s ops/s\n", humanize.CommafWithDigits(r.OpsPerSec(), 0))
	fmt.Fprintf(w, "preloaded    %s\n", humanize.Comma(int64(r.Preloaded)))
	fmt.Fprintf(w, "puts         %s (avg %s)\n", humanize.Comma(r.Puts), nanos(m.PutAvgNanos))
	fmt.Fprintf(w, "removes      %s (%s absent)\n", humanize.Comma(r.Removes), humanize.Comma(m.RemoveNoops))
	fmt.Fprintf(w, "queries      %s (avg %s, %s results)\n", humanize.Comma(r.Queries), nanos(m.QueryAvgNanos), humanize.Comma(r.Results))
	fmt.Fprintf(w, "entries      %s in %s keys\n", humanize.Comma(int64(r.Stats.Entries)), humanize.Comma(int64(r.Stats.Keys)))
	fmt.Fprintf(w, "height       %d (root level %d)\n", r.Stats.Height, r.Stats.Level)
	fmt.Fprintf(w, "heap         %s (%s GCs)\n", humanize.Bytes(mem.HeapAlloc), humanize.Comma(int64(mem.NumGC)))
}

func nanos(n int64) string {
	return humanize.SIWithDigits(float64(n)*1e-9, 2, "s")
}
