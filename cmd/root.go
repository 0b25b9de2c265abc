package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/config"
	"github.com/jsphweid/basstile/library"
	"github.com/jsphweid/basstile/logging"
)

var (
	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "basstile",
	Short: "Bass lines tiled from recorded fragments",
	Long: `basstile covers a chord progression with short recorded bass fragments,
synthesizing new ones where the library has nothing that fits.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the CLI. Bad user input exits with 2, anything else with 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, chord.ErrMalformed) {
		return 2
	}
	return 1
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .basstile.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().String("library", "", "fragment library file")
	rootCmd.PersistentFlags().Int64("seed", 0, "random seed, 0 seeds from the clock")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("library_path", rootCmd.PersistentFlags().Lookup("library"))
	_ = viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".basstile")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// Setup loads configuration and the logger. Commands do this on their own;
// tests driving the package directly call it first.
func Setup() error {
	return setup(nil, nil)
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	l, err := logging.New(c.LogLevel, c.LogFormat)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// openLibrary loads the library file and, when enabled, everything published
// to DynamoDB. A missing file gives an empty library.
func openLibrary(ctx context.Context, c config.Config) (*library.MemoryStore, error) {
	store, err := library.Load(c.LibraryPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("no library file, starting empty", zap.String("path", c.LibraryPath))
		store = library.NewMemoryStore()
	case err != nil:
		return nil, err
	}

	if c.Dynamo.Enabled {
		d, err := library.DialDynamo(c.Dynamo.Endpoint, c.Dynamo.Region, c.Dynamo.Table)
		if err != nil {
			return nil, err
		}
		n, err := d.LoadInto(ctx, store)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded fragments from DynamoDB", zap.String("table", c.Dynamo.Table), zap.Int("added", n))
	}
	return store, nil
}
