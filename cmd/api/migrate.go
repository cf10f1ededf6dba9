package main

import (
	"github.com/justsurfingit/hireflow/internal/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		db, err := database.Open(cfg.Database, log)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("schema migrated", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
