package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Simplici0/shiftprint/internal/config"
	"github.com/Simplici0/shiftprint/internal/db"
	"github.com/Simplici0/shiftprint/internal/migrations"
	"github.com/Simplici0/shiftprint/internal/notify"
	"github.com/Simplici0/shiftprint/internal/pricing"
	"github.com/Simplici0/shiftprint/internal/seed"
	"github.com/Simplici0/shiftprint/internal/storage"
	"github.com/Simplici0/shiftprint/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "shiftprint",
		Short:        "Shiftprint storefront backend",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().StringP("config", "C", "", "Path to a TOML, YAML, or JSON configuration file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations",
			RunE:  runMigrate,
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert default materials and print settings",
			RunE:  runSeed,
		},
		newEstimateCmd(),
	)
	return root
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func seedConfig(cfg config.Config) (seed.Config, error) {
	mode, err := pricing.ParseMarkupMode(cfg.MarkupMode)
	if err != nil {
		return seed.Config{}, err
	}
	return seed.Config{MarkupMode: mode}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(ctx, database); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	seedCfg, err := seedConfig(cfg)
	if err != nil {
		log.Fatalf("invalid markup mode: %v", err)
	}
	stats, err := seed.Run(ctx, database, seedCfg)
	if err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}
	log.Printf("seed: %d inserts, %d updates", stats.Inserts, stats.Updates)

	files, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open file storage: %v", err)
	}

	st := store.New(database)
	srv := newServer(cfg, st, files)
	if cfg.TelegramEnabled() {
		bot, err := notify.NewBot(cfg.TelegramToken)
		if err != nil {
			// The shop keeps taking orders without operator notifications.
			log.Printf("warning: telegram disabled: %v", err)
		} else {
			srv.notifier = notify.NewNotifier(bot, cfg.TelegramChatID)
			srv.operator = notify.NewOperator(st, bot, cfg.TelegramChatID)
		}
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Print("server stopped")
	return nil
}

func openStorage(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.StorageBackend == config.StorageS3 {
		return storage.NewS3(ctx, cfg.AWSProfile, cfg.S3Bucket, cfg.S3Prefix)
	}
	return storage.NewLocal(cfg.UploadDir, uploadsURLPrefix)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		return err
	}
	version, err := migrations.Version(ctx, database)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Database %s is at version %d", cfg.DBPath, version)
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	seedCfg, err := seedConfig(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		return err
	}
	stats, err := seed.Run(ctx, database, seedCfg)
	if err != nil {
		return err
	}
	if stats.Inserts == 0 && stats.Updates == 0 {
		pterm.Info.Printfln("Nothing to seed, database %s is up to date", cfg.DBPath)
		return nil
	}
	pterm.Success.Printfln("Seeded %s: %d inserts, %d updates", cfg.DBPath, stats.Inserts, stats.Updates)
	return nil
}
