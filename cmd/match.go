package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"imagedetective/scanner"
)

func newMatchCmd(opts *options) *cobra.Command {
	var resultsFile string
	var record bool
	var stored bool

	cmd := &cobra.Command{
		Use:   "match IMAGE...",
		Short: "Match candidate images against the registered originals",
		Example: `  imagedetective match crop.jpg --targets ./originals
  imagedetective match a.jpg b.png --profile extended --results results.txt
  imagedetective match crop.jpg --stored --database ./detective.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			eng, reg, err := buildEngine(ctx, cfg, stored, out)
			if err != nil {
				return err
			}
			defer reg.Close()

			start := time.Now()
			results, err := scanner.MatchPaths(ctx, eng, args, scanner.MatchOptions{
				MaxWorkers: 1,
				DebugMode:  cfg.Debug,
			})
			if err != nil {
				return err
			}

			for _, r := range results {
				if r.Error != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", r.Error)
					continue
				}
				fmt.Fprintln(out, r.Report)
				fmt.Fprintln(out)
			}

			if resultsFile != "" {
				if err := scanner.WriteResults(resultsFile, results); err != nil {
					return err
				}
				fmt.Fprintf(out, "Results written to %s\n", resultsFile)
			}

			if record {
				run := scanner.Run{
					ID:        uuid.New().String(),
					Profile:   eng.Profile().Name,
					StartedAt: start,
					Elapsed:   time.Since(start),
					Results:   results,
				}
				return recordRun(cfg, run, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&resultsFile, "results", "", "Also write the reports to this file")
	cmd.Flags().BoolVar(&stored, "stored", false, "Use the target signatures saved by the targets command")
	cmd.Flags().BoolVar(&record, "record", false, "Save the verdicts to the history database")
	return cmd
}
