package command

// root.go defines the root command of anilogCLI and the shared wiring of
// the subcommands that talk to the database directly.

import (
	"fmt"
	"log/slog"
	"os"

	"anilog/database"
	"anilog/internal/config"
	"anilog/internal/logging"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	apiURL  string // API server URL for remote commands
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "anilogCLI",
	Short: "anilogCLI - AniLog operations tool",
	Long: `anilogCLI runs maintenance tasks against an AniLog deployment:
- apply migrations and load sample data
- grant or revoke the admin role
- print community statistics
- purge expired refresh tokens and rebuild the top-rated ranking
- query a running API server

Database commands read the same environment as the API server (DATABASE_URL, JWT_SECRET, ...).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// env is what database commands share.
type env struct {
	cfg    *config.Config
	db     *gorm.DB
	logger *slog.Logger
}

func (e *env) Close() {
	if err := database.Close(e.db); err != nil {
		e.logger.Warn("close database", "error", err)
	}
}

func openEnv() (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := logging.NewWithWriter(os.Stderr, level, "text")

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, logger: logger}, nil
}
