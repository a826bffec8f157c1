package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-engine/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently generated articles",
	Long: `History reads the delivery ledger and prints recent runs: request ID,
topic, backend mode, whether the fallback was used, and the storage key
each article was persisted under.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := resolveConfig()
		if cfg.History.Path == "" {
			return fmt.Errorf("history ledger is not configured (history_path)")
		}

		s, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer s.Close()

		if export, _ := cmd.Flags().GetBool("export"); export {
			return s.ExportYAML(cmd.Context(), cmd.OutOrStdout())
		}

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := s.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
			return nil
		}
		for _, e := range entries {
			backend := e.Backend
			if e.FallbackUsed {
				backend += " (fallback)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s  %5d words  %q → %s\n",
				e.CreatedAt.Format("2006-01-02 15:04"), backend, e.WordCount, e.Topic, e.StorageKey)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().Bool("export", false, "dump the full ledger as YAML")

	rootCmd.AddCommand(historyCmd)
}
