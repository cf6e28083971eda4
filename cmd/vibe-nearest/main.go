// Package main provides the vibe-nearest command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-nearest/internal/proximity"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".vibe-nearest"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "vibe-nearest",
		Short: "Overlap and nearest-feature search over binned genomic tables",
		Long: `vibe-nearest finds genomic features overlapping or nearest to a region.

Features live in DuckDB tables indexed with UCSC bins. Regions are given as
chrom:start-end[:strand] with 0-based, half-open coordinates.`,
		Version:      fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ~/.vibe-nearest.yaml)")
	pf.String("db", "", "DuckDB database path")
	pf.StringSlice("table", nil, "Feature table(s) to search")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.Int("workers", 0, "Parallel search workers (0 = all CPUs)")
	pf.StringP("format", "f", "tab", "Output format: tab, bed")

	for _, key := range []string{"db", "table", "verbose", "workers", "format"} {
		_ = viper.BindPFlag(key, pf.Lookup(key))
	}

	cmd.AddCommand(newBinsCmd())
	for _, op := range []proximity.Op{proximity.OpOverlap, proximity.OpNearest, proximity.OpUpstream, proximity.OpDownstream} {
		cmd.AddCommand(newSearchCmd(op))
	}
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig reads the config file and environment. A missing config file is
// not an error.
func initConfig(cfgFile string) error {
	viper.SetDefault("search.max_iterations", 32)
	viper.SetDefault("search.initial_step", 350)

	viper.SetEnvPrefix("VIBE_NEAREST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// defaultConfigPath returns ~/.vibe-nearest.yaml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

// newLogger builds the CLI logger. Debug output goes to stderr when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}
