// Package cli provides the quickshelf command line.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"quickshelf/internal/app"
	"quickshelf/internal/config"
	"quickshelf/internal/database"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. Running the root command without a
// subcommand serves the API.
func NewRootCommand() *cobra.Command {
	v := config.NewViper()

	loadConfig := func() (*config.Config, error) {
		return config.Load(v)
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the product API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return migrate(cmd.Context(), cfg)
		},
	}

	rootCmd := &cobra.Command{
		Use:           "quickshelf",
		Short:         "QuickShelf product inventory service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	rootCmd.PersistentFlags().String("config", "", "path to a config file (overrides CONFIG_FILE)")
	rootCmd.PersistentFlags().String("port", "", "listen address, e.g. :8080 (overrides APP_PORT)")
	_ = v.BindPFlag("CONFIG_FILE", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("APP_PORT", rootCmd.PersistentFlags().Lookup("port"))

	rootCmd.AddCommand(serveCmd, migrateCmd)
	return rootCmd
}

// Execute runs the command line with the process arguments.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- a.Listen()
	}()

	select {
	case err := <-listenErr:
		a.Shutdown()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	if err := a.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
	return nil
}

func migrate(ctx context.Context, cfg *config.Config) error {
	if cfg.Database.Driver == config.DriverMemory {
		log.Println("In-memory store has no schema to migrate")
		return nil
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Printf("Migrated %s database", cfg.Database.Driver)
	return nil
}
