package main

import (
	"fmt"
	"os"

	"github.com/jwulff/finvoice/internal/config"
	"github.com/jwulff/finvoice/internal/conversation"
	"github.com/jwulff/finvoice/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "0.1.0"

var (
	// Global flags
	verbose     bool
	envFile     string
	seed        uint64
	catalogPath string
	dbPath      string
	mic         string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:     "finvoice",
	Short:   "Terminal financial assistant with typed and voice chat",
	Version: version,
	Long: `finvoice is a terminal financial assistant.

Type a question or press ctrl+r to ask by voice. Replies arrive in the chat
transcript with insight cards, and every exchange is archived locally.

Run without arguments to start the interactive interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogPath, cfg.LogLevel, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Optional .env file to load")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Reply selection seed (0 picks one from the clock)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "YAML reply catalog overriding the built-in one")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Exchange archive path")
	rootCmd.PersistentFlags().StringVar(&mic, "mic", "", "Microphone backend: simulated or daemon")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of exchanges to print")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and lets explicitly set flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		c.Seed = seed
	}
	if flags.Changed("catalog") {
		c.CatalogPath = catalogPath
	}
	if flags.Changed("db") {
		c.DBPath = dbPath
	}
	if flags.Changed("mic") {
		c.Mic = mic
	}
	return c, c.Validate()
}

// loadCatalog returns the configured catalog, or the built-in one.
func loadCatalog() (conversation.Catalog, error) {
	if cfg.CatalogPath == "" {
		return conversation.DefaultCatalog(), nil
	}
	c, err := conversation.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return conversation.Catalog{}, fmt.Errorf("catalog: %w", err)
	}
	logger.Info("catalog loaded", zap.String("path", cfg.CatalogPath))
	return c, nil
}
