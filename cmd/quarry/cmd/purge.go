package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quarry-search/quarry/internal/engine"
	"github.com/quarry-search/quarry/internal/output"
)

func newPurgeCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete the index",
		Long:  `Delete the on-disk index. The next 'quarry index' run rebuilds it from scratch.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if !force {
				out.Statusf("⚠️ ", "This deletes the index at %s. Continue? [y/N]", cfg.IndexPath())
				reader := bufio.NewReader(cmd.InOrStdin())
				answer, _ := reader.ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					out.Status("", "Aborted")
					return nil
				}
			}

			eng, err := engine.NewBleve(cfg.IndexPath(), nil)
			if err != nil {
				return fmt.Errorf("opening index: %w", err)
			}
			if err := eng.Purge(); err != nil {
				return err
			}

			out.Success("Index deleted")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")

	return cmd
}
