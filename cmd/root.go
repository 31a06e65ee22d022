package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"imagedetective/config"
	"imagedetective/logging"
	"imagedetective/utils"
)

func init() {
	// finalizers also run when a command fails
	cobra.OnFinalize(logging.CloseLogger)
}

// options are the persistent flags shared by every command
type options struct {
	configPath string
	profile    string
	targets    string
	database   string
	logFile    string
	extensions string
	workers    int
	debug      bool

	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "imagedetective",
		Short: "Identify which original image a modified image was derived from",
		Long: `imagedetective registers a folder of original images and decides, for any
candidate image, whether it was derived from one of them by cropping,
recompression, resizing or recoloring.

Several independent rules (metadata, color distribution, template matching
and, in the extended profile, edge structure) score the candidate against
every original. The best total is corroborated with bonuses and compared
with the profile's threshold.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "detective.yaml", "Path to the YAML configuration file")
	flags.StringVar(&opts.profile, "profile", "", "Scoring profile (base or extended)")
	flags.StringVar(&opts.targets, "targets", "", "Folder of original images to register")
	flags.StringVar(&opts.database, "database", "", "Path to the history database")
	flags.StringVar(&opts.logFile, "logfile", "", "Write a structured log to this file")
	flags.StringVar(&opts.extensions, "extensions", "", "Comma separated extension allow-list (default .jpg,.jpeg,.png)")
	flags.IntVar(&opts.workers, "workers", 0, "Number of concurrent workers")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newTargetsCmd(opts))
	cmd.AddCommand(newMatchCmd(opts))
	cmd.AddCommand(newBatchCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))

	return cmd
}

// load resolves the configuration: file, then environment, then flags
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.Profile = o.profile
	}
	if flags.Changed("targets") {
		cfg.Targets = o.targets
	}
	if flags.Changed("database") {
		cfg.Database = o.database
	}
	if flags.Changed("extensions") {
		cfg.Extensions = utils.SplitList(o.extensions)
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if flags.Changed("logfile") {
		cfg.LogFile = o.logFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	if cfg.Debug || flags.Changed("logfile") {
		if err := logging.SetupLogger(cfg.LogFile, cfg.Debug); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to setup logging: %v\n", err)
		} else if cfg.Debug {
			fmt.Fprintf(cmd.ErrOrStderr(), "Debug mode enabled. Logging to: %s\n", cfg.LogFile)
		}
	}
	return nil
}
