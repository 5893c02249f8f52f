package cmd

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/quarry-search/quarry/internal/output"
	"github.com/quarry-search/quarry/internal/pipeline"
	"github.com/quarry-search/quarry/internal/telemetry"
)

func newIndexCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Ingest all configured sources into the index",
		Long: `Ingest every configured source into the local index.

Sources run one after another; the first failing source aborts the run.
Documents committed before a failure stay in the index.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(cfg.Sources) == 0 {
				out.Warning("No sources configured; nothing to index")
				return nil
			}

			eng, err := openEngine(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			sources, err := buildSources(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			runs, err := telemetry.Open(cfg.RunHistoryPath())
			if err != nil {
				slog.Warn("run_history_unavailable", slog.String("error", err.Error()))
				runs = nil
			}
			defer func() { _ = runs.Close() }()

			size := cfg.Indexing.BatchSize
			if batchSize > 0 {
				size = batchSize
			}

			driver := pipeline.New(eng, sources,
				pipeline.WithBatchSize(size),
				pipeline.WithRunHistory(runs),
				pipeline.WithLockFile(cfg.LockPath()),
				pipeline.WithLogger(slog.Default()))

			stats, err := driver.Run(cmd.Context())
			if err != nil {
				return err
			}

			out.Successf("Indexed %d documents from %d sources in %s (%d batches)",
				stats.Documents, stats.Sources, stats.Duration.Round(time.Millisecond), stats.Batches)
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Override the configured batch size")

	return cmd
}
