package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/ordex/internal/workload"
)

func verifyCommand() *cobra.Command {
	cfg := workload.DefaultConfig()
	cfg.Ops = 20_000
	cfg.Queries = 2_000
	cfg.Keys = 4096
	cfg.Buckets = 64
	cfg.Preload = 1000
	cfg.VerifyEvery = 500

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Runs a workload and checks the index invariants while it runs.",
	}
	workloadFlags(cmd, &cfg)
	cmd.Flags().IntVar(&cfg.VerifyEvery, "verify-every", cfg.VerifyEvery, "Verify after every n writes per writer.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFor(cmd)
		if err != nil {
			return err
		}

		ix, err := workload.NewIndex(cfg, logger, nil)
		if err != nil {
			return fmt.Errorf("error creating index: %w", err)
		}

		report, err := workload.Run(cmd.Context(), cfg, ix)
		if err != nil {
			return fmt.Errorf("error running workload: %w", err)
		}
		if err := workload.VerifyDeep(ix); err != nil {
			return fmt.Errorf("final verification failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "ok: %s checks, %s entries, height %d\n",
			humanize.Comma(report.Verified+1),
			humanize.Comma(int64(report.Stats.Entries)),
			report.Stats.Height,
		)
		return nil
	}

	return cmd
}
