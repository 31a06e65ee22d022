package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"imagedetective/config"
	"imagedetective/logging"
	"imagedetective/scanner"
)

func newBatchCmd(opts *options) *cobra.Command {
	var resultsFile string
	var summaryFile string
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "batch [FOLDER...]",
		Short: "Match every image of one or more candidate folders",
		Long: `Match every allow-listed image of the given folders (or of the configured
candidates folders) against the registered originals. Reports are written to
the results file in folder order, a YAML summary is optionally written, and
the verdicts are appended to the history database.`,
		Example: `  imagedetective batch ./crops ./recolored --targets ./originals
  imagedetective batch --profile extended --results results_v2.txt --summary run.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			folders := args
			if len(folders) == 0 {
				folders = cfg.Candidates
			}
			if len(folders) == 0 {
				return fmt.Errorf("no candidate folders given and none configured")
			}
			if cmd.Flags().Changed("results") {
				cfg.ResultsFile = resultsFile
			}
			if cmd.Flags().Changed("summary") {
				cfg.SummaryFile = summaryFile
			}

			eng, reg, err := buildEngine(ctx, cfg, false, out)
			if err != nil {
				return err
			}
			defer reg.Close()

			paths, stats, err := scanner.CollectCandidates(folders, cfg.Extensions)
			if err != nil {
				return err
			}
			scanner.PrintStartupInfo(out, stats, eng.Profile().Name)

			start := time.Now()
			results, err := scanner.MatchPaths(ctx, eng, paths, scanner.MatchOptions{
				MaxWorkers: cfg.Workers,
				Progress:   out,
				DebugMode:  cfg.Debug,
			})
			if err != nil {
				return err
			}

			run := scanner.Run{
				ID:        uuid.New().String(),
				Profile:   eng.Profile().Name,
				StartedAt: start,
				Elapsed:   time.Since(start),
				Results:   results,
			}

			if cfg.ResultsFile != "" {
				if err := scanner.WriteResults(cfg.ResultsFile, results); err != nil {
					return err
				}
				fmt.Fprintf(out, "Results written to %s\n", cfg.ResultsFile)
			}
			if cfg.SummaryFile != "" {
				if err := scanner.WriteSummary(cfg.SummaryFile, run); err != nil {
					return err
				}
				fmt.Fprintf(out, "Summary written to %s\n", cfg.SummaryFile)
			}

			if noHistory {
				return nil
			}
			return recordRun(cfg, run, out)
		},
	}

	cmd.Flags().StringVar(&resultsFile, "results", "", "Results file (overrides results_file)")
	cmd.Flags().StringVar(&summaryFile, "summary", "", "YAML summary file (overrides summary_file)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not save verdicts to the history database")
	return cmd
}

// recordRun appends a run to the history database when one is configured
func recordRun(cfg config.Config, run scanner.Run, out io.Writer) error {
	db, err := openHistory(cfg)
	if err != nil || db == nil {
		return err
	}
	defer db.Close()

	if err := scanner.StoreRun(db, run); err != nil {
		return err
	}
	logging.LogInfo("run %s stored in %s", run.ID, cfg.Database)
	fmt.Fprintf(out, "Run %s recorded in %s\n", run.ID, cfg.Database)
	return nil
}
