package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/quarry-search/quarry/internal/output"
	"github.com/quarry-search/quarry/internal/telemetry"
)

func newStatsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics and recent ingestion runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			eng, err := openEngine(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			count, err := eng.Count()
			if err != nil {
				return err
			}
			out.Statusf("📊", "Index at %s holds %d documents", cfg.IndexPath(), count)

			runs, err := telemetry.Open(cfg.RunHistoryPath())
			if err != nil {
				return nil
			}
			defer func() { _ = runs.Close() }()

			recent, err := runs.RecentRuns(limit)
			if err != nil || len(recent) == 0 {
				return nil
			}

			out.Newline()
			out.Status("", "Recent ingestion runs:")
			for _, run := range recent {
				icon := "✅"
				if run.Status == telemetry.StatusFailed {
					icon = "❌"
				}
				out.Statusf("", "%s %s  %s: %d documents in %d batches (%s)",
					icon, run.StartedAt.Local().Format("2006-01-02 15:04"),
					run.Source, run.Documents, run.Batches, run.Duration.Round(time.Millisecond))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "How many recent runs to show")

	return cmd
}
