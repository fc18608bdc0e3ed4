package main

import (
	"fmt"

	"repairpos/internal/config"
	"repairpos/internal/infra"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Driver string
	DSN    string

	// openDB is replaced in tests.
	openDB func(driver, dsn string) (*gorm.DB, error)
}

// NewRootCommand creates the root command. --driver and --dsn override
// DATABASE_DRIVER and DATABASE_URL.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{openDB: infra.NewDatabase})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "shopctl",
		Short:         "Operate the repair shop database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (postgres|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "database connection string")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewStockCommand(opts))

	return cmd
}

// database resolves the connection from flags, falling back to config.
func (o *RootOptions) database() (*gorm.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	driver, dsn := cfg.DatabaseDriver, cfg.DatabaseURL
	if o.Driver != "" {
		driver = o.Driver
	}
	if o.DSN != "" {
		dsn = o.DSN
	}
	db, err := o.openDB(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	return db, cfg, nil
}
