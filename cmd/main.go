package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/GPUOpen-Tools/GPU-Reshape/pkg"
	"github.com/GPUOpen-Tools/GPU-Reshape/pkg/config"
)

var (
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tool",
	Short: "Build tools for GPU Reshape",
	Long: `This command bundles several tools that are used to build and ship GPU Reshape.
This includes packaging the build output, keeping license headers up to date, ...`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, err := cmd.Flags().GetString("config-file")
		if err != nil {
			return err
		}

		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level, err = cmd.Flags().GetString("log-level")
			if err != nil {
				return err
			}
		}

		if cmd.Flags().Changed("json-log") {
			cfg.Log.JSON, err = cmd.Flags().GetBool("json-log")
			if err != nil {
				return err
			}
		}

		level, err := config.ParseLogLevel(cfg.Log.Level)
		if err != nil {
			return err
		}

		logger = newLogger(cfg, level)
		return nil
	},
}

func newLogger(cfg *config.Config, level zerolog.Level) zerolog.Logger {
	trace := cfg.Log.Trace
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		return eris.ToString(err, trace)
	}

	if cfg.Log.JSON {
		return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}

	// progress bars stay on stderr
	writer := NewConsoleWriter(os.Stdout, os.Getenv("NO_COLOR") == "", wd)
	writer.verbose = trace
	return zerolog.New(writer).Level(level)
}

// commandContext returns the command's context with the configured logger attached
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return pkg.WithLogger(ctx, &logger)
}

func init() {
	rootCmd.PersistentFlags().String("config-file", config.DefaultFile, "TOML file with tool settings")
	rootCmd.PersistentFlags().String("log-level", "info", "minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-log", false, "write JSON log events instead of console lines")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	cobra.CheckErr(err)
}
