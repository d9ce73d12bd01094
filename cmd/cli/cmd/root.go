package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hashlife/pkg/config"
	"github.com/hashlife/pkg/host"
	"github.com/hashlife/pkg/telemetry"
	"github.com/hashlife/pkg/utils"
)

var (
	// global flags
	verbose    bool
	configPath string

	logger utils.Logger
	cfg    *config.Config
	hostcb host.Callbacks

	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hashlife",
	Short: "A multi-state hashlife cellular-automaton engine",
	Long: `hashlife evolves two-dimensional cellular automata using the
memoized-quadtree (hashlife) algorithm, supporting up to 256 cell states.

Rule families: Generations (e.g. 12/34/3), the von Neumann automata
(JvN29, Nobili32, Hutton32), and table/tree rules loaded from .rule,
.table and .tree files. Patterns are read and written in the native
macrocell format.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		utils.SetGlobalLogger(logger)

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		hostcb = &host.Default{
			Logger:   logger,
			UserDir:  cfg.Rules.UserDir,
			RulesDir: cfg.Rules.SystemDir,
		}

		telemetryShutdown, err = telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("failed to initialize telemetry: %v", err)
			telemetryShutdown = nil
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			return telemetryShutdown(context.Background())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	binName := BinName()
	rootCmd.Example = `  # Run a pattern 1000 generations and write the result
  ` + binName + ` run -i glider.mc -n 1000 -o out.mc

  # Show rule, population and bounding box of a pattern
  ` + binName + ` info -i breeder.mc

  # Convert macrocell files to gzipped macrocell
  ` + binName + ` convert --gzip a.mc b.mc

  # Archive a pattern and list the archive
  ` + binName + ` archive save -i glider.mc --name glider
  ` + binName + ` archive list`
}

// GetLogger returns the configured logger
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}
