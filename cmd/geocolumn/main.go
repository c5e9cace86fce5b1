// Package main provides the CLI entry point for geocolumn.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nao1215/geocolumn/internal/config"
	"github.com/nao1215/geocolumn/internal/logging"
)

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	seqURL     string

	cfg     *config.Config
	logger  *slog.Logger
	cleanup func()

	// setupLogging builds the logger; tests replace it
	setupLogging func(logging.Options) (*slog.Logger, func())
}

func newGlobalOptions() *globalOptions {
	return &globalOptions{setupLogging: logging.Setup}
}

func main() {
	// .env only supplies defaults; real environment variables win
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, newGlobalOptions(), os.Args[1:])
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run executes the command line args and flushes the logger afterwards,
// whether the command succeeded or not.
func run(ctx context.Context, g *globalOptions, args []string) error {
	defer g.close()

	cmd := newRootCmd(g)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(g *globalOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "geocolumn",
		Short: "Locate administrative code, category and coordinates in locality tables",
		Long: `geocolumn reads a locality table (dBase, CSV, TSV, LTSV, Excel or Parquet,
optionally compressed) and picks the administrative code, category, longitude and
latitude fields by known position, then by field name, and otherwise lists the
fields so that they can be chosen by hand.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&g.logFormat, "log-format", "", "Log format: text or json")
	flags.StringVar(&g.seqURL, "seq-url", "", "Seq server URL to ship logs to")

	rootCmd.AddCommand(newResolveCmd(g), newSerpCmd(g))
	return rootCmd
}

// setup loads the configuration and installs the logger.
func (g *globalOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = g.logFormat
	}
	if flags.Changed("seq-url") {
		cfg.Logging.SeqURL = g.seqURL
	}

	logger, cleanup := g.setupLogging(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		SeqURL: cfg.Logging.SeqURL,
		Output: cmd.ErrOrStderr(),
	})
	g.cfg = cfg
	g.logger = logging.WithRun(logger, uuid.NewString()).With("command", cmd.Name())
	g.cleanup = cleanup
	return nil
}

// close flushes the logger once.
func (g *globalOptions) close() {
	if g.cleanup != nil {
		g.cleanup()
		g.cleanup = nil
	}
}

// fail logs err and returns it wrapped for cobra.
func (g *globalOptions) fail(what string, err error) error {
	g.logger.Error(what+" failed", "error", err)
	return fmt.Errorf("%s failed: %w", what, err)
}
