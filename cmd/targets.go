package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"imagedetective/database"
	"imagedetective/logging"
)

func newTargetsCmd(opts *options) *cobra.Command {
	var store bool

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Register the original images and show their signatures",
		Long: `Register every allow-listed image of the targets folder, print what was
registered and, unless --store=false, replace the signatures saved in the
database with this set.`,
		Example: `  imagedetective targets --targets ./originals
  imagedetective targets --targets ./originals --database ./detective.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			out := cmd.OutOrStdout()

			reg, err := buildRegistry(cmd.Context(), cfg, out)
			if err != nil {
				return err
			}
			defer reg.Close()

			for _, rec := range reg.Records() {
				sig := rec.Signature
				line := fmt.Sprintf("%-30s %-5s", rec.ID, sig.ColorMode)
				if sig.Width.Valid && sig.Height.Valid {
					line += fmt.Sprintf(" %dx%d", sig.Width.Value, sig.Height.Value)
				}
				if sig.Format.Valid {
					line += " " + sig.Format.Value
				}
				if sig.Camera != "" {
					line += " [" + sig.Camera + "]"
				}
				fmt.Fprintln(out, line)
			}

			if !store {
				return nil
			}
			db, err := openHistory(cfg)
			if err != nil || db == nil {
				return err
			}
			defer db.Close()

			if err := database.ReplaceTargets(db, reg.Records()); err != nil {
				return logging.NewOperationError("store targets", cfg.Database, err)
			}
			fmt.Fprintf(out, "\nStored %d target signatures in %s\n", reg.Len(), cfg.Database)
			return nil
		},
	}

	cmd.Flags().BoolVar(&store, "store", true, "Save target signatures to the database")
	return cmd
}
