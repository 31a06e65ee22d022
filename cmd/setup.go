package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"imagedetective/config"
	"imagedetective/database"
	"imagedetective/engine"
	"imagedetective/imageprocessor"
	"imagedetective/logging"
	"imagedetective/registry"
	"imagedetective/types"
)

// buildRegistry registers the configured targets folder, printing one line
// per target
func buildRegistry(ctx context.Context, cfg config.Config, out io.Writer) (*registry.Registry, error) {
	fmt.Fprintf(out, "Registering targets from %s\n", cfg.Targets)

	reg, err := registry.Build(ctx, cfg.Targets, registry.Options{
		Extensions: cfg.Extensions,
		Workers:    cfg.Workers,
		Signature:  imageprocessor.SignatureOptions{ExiftoolFallback: cfg.ExiftoolFallback},
		OnRegistered: func(rec types.TargetRecord) {
			if rec.Signature.ByteSize.Valid {
				fmt.Fprintf(out, "  Registered: %s (%d bytes)\n", rec.ID, rec.Signature.ByteSize.Value)
			} else {
				fmt.Fprintf(out, "  Registered: %s\n", rec.ID)
			}
		},
	})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "Total targets: %d\n\n", reg.Len())
	return reg, nil
}

// storedRegistry rebuilds the registry from the signatures saved by the
// targets command. Pixels are reloaded from the stored paths.
func storedRegistry(cfg config.Config, out io.Writer) (*registry.Registry, error) {
	db, err := openHistory(cfg)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("no database configured")
	}
	defer db.Close()

	records, err := database.ListTargets(db)
	if err != nil {
		return nil, logging.NewOperationError("load stored targets", cfg.Database, err)
	}
	reg, err := registry.FromRecords(records)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Total targets: %d (stored in %s)\n\n", reg.Len(), cfg.Database)
	return reg, nil
}

// buildEngine registers the targets, or loads the stored ones, and prepares
// an engine for the configured profile. The caller closes the registry.
func buildEngine(ctx context.Context, cfg config.Config, stored bool, out io.Writer) (*engine.Engine, *registry.Registry, error) {
	profile, err := cfg.ResolveProfile()
	if err != nil {
		return nil, nil, err
	}

	var reg *registry.Registry
	if stored {
		reg, err = storedRegistry(cfg, out)
	} else {
		reg, err = buildRegistry(ctx, cfg, out)
	}
	if err != nil {
		return nil, nil, err
	}

	eng, err := engine.New(profile, reg, engine.Options{
		Workers:   cfg.Workers,
		Signature: imageprocessor.SignatureOptions{ExiftoolFallback: cfg.ExiftoolFallback},
	})
	if err != nil {
		reg.Close()
		return nil, nil, err
	}
	return eng, reg, nil
}

// openHistory opens the history database, or returns nil when none is configured
func openHistory(cfg config.Config) (*sql.DB, error) {
	if cfg.Database == "" {
		return nil, nil
	}
	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("error initializing database %s: %w", cfg.Database, err)
	}
	return db, nil
}
