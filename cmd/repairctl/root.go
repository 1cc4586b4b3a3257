package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"repairflow/internal/config"
	"repairflow/internal/content"
	"repairflow/internal/infrastructure/logger"
	"repairflow/internal/infrastructure/mysql"
)

var (
	verbose    bool
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "repairctl",
	Short: "Content tooling for the repair order wizard",
	Long: `repairctl seeds wizard content into the configured backend and walks
the step graph the way the wizard would for a given set of answers.

Configuration is read from the same environment variables as the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("CONFIG_FILE"), "Optional YAML config file")

	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newWalkCmd())
}

// contentModule builds the content module for the configured backend. The
// returned cleanup closes the database connection when one was opened.
func contentModule(ctx context.Context) (*content.Module, *zap.Logger, func(), error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	cliLogger, err := logger.NewCLI(verbose)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create logger: %w", err)
	}

	cleanup := func() { _ = cliLogger.Sync() }

	var db *sql.DB
	if cfg.Content.Backend == config.ContentBackendMySQL {
		db, err = mysql.NewConnection(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect database: %w", err)
		}
		cleanup = func() {
			_ = db.Close()
			_ = cliLogger.Sync()
		}
	}

	module, err := content.NewModule(cfg, db, cliLogger)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	cliLogger.Debug("content backend ready", zap.String("backend", cfg.Content.Backend))
	return module, cliLogger, cleanup, nil
}
