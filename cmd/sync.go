package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dataharvester/core/config"
	"dataharvester/core/database"
	"dataharvester/core/logger"
	"dataharvester/core/source"
	"dataharvester/core/storage"
	"dataharvester/feature/compartimento"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch every room from Cobalto and upsert it into the database",
	Long: `Fetches the full room listing, resolves or creates the campus, unidade and predio
of each room, and upserts the rooms in a single transaction. Any storage error rolls
the whole run back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Cobalto.Validate(); err != nil {
			return err
		}
		if !cfg.Database.IsValidDriver() {
			return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
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

		client, err := source.NewClient(cfg.Cobalto, logg)
		if err != nil {
			return fmt.Errorf("failed to create cobalto client: %w", err)
		}

		opts := compartimento.Options{DryRun: dryRun}
		if cfg.Storage.Enabled {
			store, err := storage.NewClient(cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to create storage client: %w", err)
			}
			opts.Archiver = compartimento.NewArchiver(store, cfg.Storage.Bucket, cfg.Storage.Prefix)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		startTime := time.Now()
		logg.Info("Starting sync", zap.String("url", cfg.Cobalto.URL), zap.Bool("dry_run", dryRun))

		summary, err := compartimento.NewPipeline(client, db, logg, opts).Run(ctx)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		if jsonOutput {
			data, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Println("\n=== Sync Summary ===")
		fmt.Printf("Run ID: %s\n", summary.RunID)
		fmt.Printf("Rows Fetched: %d\n", summary.RowsFetched)
		fmt.Printf("Compartimentos Processed: %d\n", summary.CompartimentosProcessed)
		fmt.Printf("Campus Cached: %d\n", summary.CampusCached)
		fmt.Printf("Unidade Cached: %d\n", summary.UnidadeCached)
		fmt.Printf("Predio Cached: %d\n", summary.PredioCached)
		fmt.Printf("Skipped: %d\n", summary.Skipped)
		fmt.Printf("Duplicates: %d\n", summary.Duplicates)
		fmt.Printf("Failed: %d\n", summary.Failed)
		if summary.ArchiveObject != "" {
			fmt.Printf("Archived Payload: %s\n", summary.ArchiveObject)
		}
		if summary.DryRun {
			fmt.Println("Dry run: nothing was committed")
		}
		fmt.Printf("Execution Time: %s\n", time.Since(startTime).String())

		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "Run the whole sync and roll it back at the end")
	syncCmd.Flags().Bool("json", false, "Print the run summary as JSON")
	RootCmd.AddCommand(syncCmd)
}
