package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/output"
	"github.com/quarry-search/quarry/internal/stream"
)

func newSearchCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index",
		Long: `Search the index for documents matching the query.

Examples:
  quarry search "channel buffering"
  quarry search "error handling" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			eng, err := openEngine(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			results, err := stream.Collect(eng.Search(cmd.Context(), query))
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			default:
				formatText(output.New(cmd.OutOrStdout()), query, results)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

// formatText outputs results in human-readable form.
func formatText(out *output.Writer, query string, results []model.FoundItem) {
	if len(results) == 0 {
		out.Status("", fmt.Sprintf("No results found for %q", query))
		return
	}

	out.Statusf("🔍", "Found %d results for %q:", len(results), query)
	out.Newline()

	for i, r := range results {
		out.Statusf("", "%d. %s (score: %.2f)", i+1, r.Title, r.Score)
		out.Status("", fmt.Sprintf("   %s", r.Link))
		if r.Snippet != "" {
			out.Status("", "   "+r.Snippet)
		}
		out.Newline()
	}
}
