package cmd

import (
	"fmt"
	"strings"

	"dataharvester/core/config"
	"dataharvester/core/database"
	"dataharvester/core/logger"
	"dataharvester/feature/compartimento/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the target schema has every table and column the sync writes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = logg.Sync() }()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection required: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		missing, err := database.MissingColumns(db, models.Schema())
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
		if len(missing) > 0 {
			logg.Error("Schema is incomplete", zap.Strings("missing", missing))
			return fmt.Errorf("missing schema objects: %s", strings.Join(missing, ", "))
		}

		logg.Info("Schema check passed", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)
}
