package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/econsult/sentidash/internal/config"
	"github.com/econsult/sentidash/internal/logging"
)

var (
	cfgFile   string
	serverURL string
	verbose   bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sentidash",
	Short: "Client for the E-Consultation sentiment dashboard",
	Long: `sentidash talks to an E-Consultation sentiment dashboard server.
Submit comments for classification, ingest the preprocessed data set,
clear or export the comment store, and watch the live counters from an
interactive terminal dashboard.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the command tree.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.sentidash/config.hcl)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "dashboard server URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(config.Options{Path: cfgFile})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serverURL != "" {
		c.Server = serverURL
		if err := c.Validate(); err != nil {
			return err
		}
	}
	cfg = c

	l, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Verbose: verbose})
	if err != nil {
		return err
	}
	logger = l
	logger.Debug("configuration loaded",
		zap.String("server", cfg.Server),
		zap.String("source", cfg.Source),
		zap.Duration("timeout", cfg.Timeout))
	return nil
}
