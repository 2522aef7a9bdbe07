// Command sys2dsl is the CLI front end for the symbolic/HDC reasoning
// engine: it loads a session from on-disk config, runs DSL programs,
// and answers one-shot ask/prove queries.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sys2dsl/engine/internal/config"
	"github.com/sys2dsl/engine/internal/logging"
	"github.com/sys2dsl/engine/pkg/registry"
	"github.com/sys2dsl/engine/pkg/session"
)

var (
	configPath  string
	verbose     bool
	closedWorld bool
	holographic bool

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sys2dsl",
	Short: "Sys2DSL symbolic reasoning engine with hyperdimensional acceleration",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		if verbose {
			cfg.Logging.Level = "debug"
		}
		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "sys2dsl.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&closedWorld, "closed-world", false, "enable negation-as-failure for this invocation")
	rootCmd.PersistentFlags().BoolVar(&holographic, "holographic", false, "enable the holographic fast path for this invocation")

	rootCmd.AddCommand(runCmd, askCmd, proveCmd, replCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newSession builds a session.Session from the loaded config and CLI
// flags, shared by every subcommand.
func newSession() *session.Session {
	dims := registry.Empty()
	if cfg.DimensionsFile != "" {
		loaded, err := registry.LoadDimensionRegistry(cfg.DimensionsFile)
		if err != nil {
			logger.Warn("dimension registry load failed, starting empty", zap.Error(err))
		} else {
			dims = loaded
		}
	}
	s := session.New(session.Config{
		Dimension: cfg.Dimension,
		Dims:      dims,
		CacheTTL:  orDefault(cfg.CacheTTL),
		Logger:    logger,
	})
	s.SetClosedWorld(cfg.ClosedWorld || closedWorld)
	s.SetHolographic(cfg.Holographic || holographic)
	return s
}

func orDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}
