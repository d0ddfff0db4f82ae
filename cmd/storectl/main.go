// Command storectl runs operator tasks against the storefront database.
package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/infrastructure/database"
	"storefront/internal/infrastructure/logger"
)

type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "storectl",
		Short:         "Operate the storefront database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			l, err := logger.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			a.cfg, a.logger = cfg, l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", os.Getenv("CONFIG_FILE"), "path to a YAML config file")

	root.AddCommand(
		newMigrateCmd(a),
		newSeedCmd(a),
		newCartsCmd(a),
		newTokenCmd(a),
	)
	return root
}

// openDB opens the configured database. SQLite files are migrated on open so
// that commands work against a fresh file.
func (a *app) openDB() (*sqlx.DB, error) {
	db, err := database.Open(a.cfg.Database)
	if err != nil {
		return nil, err
	}
	if a.cfg.Database.Driver == database.DriverSQLite {
		if err := database.MigrateUp(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
