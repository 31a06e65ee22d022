package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"imagedetective/database"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var runID string
	var limit int
	var showReports bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored verdicts and run statistics",
		Example: `  imagedetective history --limit 20
  imagedetective history --run 7f0c... --reports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			out := cmd.OutOrStdout()

			if _, err := os.Stat(cfg.Database); os.IsNotExist(err) {
				return fmt.Errorf("database does not exist: %s. Run batch first", cfg.Database)
			}

			db, err := database.OpenDatabase(cfg.Database)
			if err != nil {
				return fmt.Errorf("error opening database: %w", err)
			}
			defer db.Close()

			rows, err := database.ListVerdicts(db, runID, limit)
			if err != nil {
				return err
			}
			for _, row := range rows {
				status := "REJECTED"
				if row.IsMatch {
					status = "MATCH to " + row.MatchedTarget
				}
				fmt.Fprintf(out, "%s  %-36s  %-30s %d/%d -> %s\n",
					row.CreatedAt, row.RunID, row.Candidate, row.Total, row.MaxPossible, status)
				if showReports && row.Report != "" {
					fmt.Fprintf(out, "%s\n\n", row.Report)
				}
			}

			stats, err := database.GetRunStats(db, runID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nSummary:\n")
			fmt.Fprintf(out, "- Runs: %d\n", stats.Runs)
			fmt.Fprintf(out, "- Candidates: %d\n", stats.Candidates)
			fmt.Fprintf(out, "- Matches: %d\n", stats.Matches)
			fmt.Fprintf(out, "- Rejected: %d\n", stats.Rejected)
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Only show this run")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of verdicts to list (0 for all)")
	cmd.Flags().BoolVar(&showReports, "reports", false, "Print the full report of each verdict")
	return cmd
}
