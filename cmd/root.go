// Package cmd wires the modaudio command line interface.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/modaudio/cmd/clips"
	"github.com/tphakala/modaudio/cmd/packs"
	"github.com/tphakala/modaudio/cmd/simulate"
	"github.com/tphakala/modaudio/cmd/validate"
	"github.com/tphakala/modaudio/cmd/watch"
	"github.com/tphakala/modaudio/internal/conf"
	"github.com/tphakala/modaudio/internal/errors"
	"github.com/tphakala/modaudio/internal/logger"
)

// rootFlags holds persistent flag values that are not part of Settings
type rootFlags struct {
	roots []string
}

// centralLogger is closed after the command finishes
var centralLogger *logger.CentralLogger

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "modaudio",
		Short:         "Audio pack routing engine tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, settings, flags)

	clipsCmd := clips.Command()

	subcommands := []*cobra.Command{
		validate.Command(settings),
		simulate.Command(settings),
		watch.Command(settings),
		packs.Command(settings),
		clipsCmd,
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Listing built-in clip names needs no packs or logging setup
		if cmd.Name() == clipsCmd.Name() {
			return nil
		}
		return initialize(settings, flags)
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if centralLogger == nil {
			return nil
		}
		return centralLogger.Close()
	}

	return rootCmd
}

// initialize applies flag overrides, resolves pack roots and sets up logging
func initialize(settings *conf.Settings, flags *rootFlags) error {
	if len(flags.roots) > 0 {
		settings.Packs.Roots = settings.Packs.Roots[:0]
		for i, path := range flags.roots {
			label, dir, found := strings.Cut(path, "=")
			if !found {
				label, dir = fmt.Sprintf("root%d", i+1), path
			}
			settings.Packs.Roots = append(settings.Packs.Roots, conf.PackRoot{Label: label, Path: dir})
		}
	}

	if err := conf.ValidateSettings(settings); err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("error resolving working directory: %w", err)
	}
	settings.ResolveRootPaths(cwd)

	if settings.Debug {
		settings.Logging.DefaultLevel = string(logger.LogLevelDebug)
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = string(logger.LogLevelDebug)
		}
	}

	cl, err := logger.NewCentralLogger(&settings.Logging.LoggingConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(cl)
	centralLogger = cl

	errLog := cl.Module("errors")
	errors.AddErrorHook(func(ee *errors.EnhancedError) {
		errLog.Debug("Error reported",
			logger.String("component", ee.GetComponent()),
			logger.String("category", string(ee.Category)),
			logger.Error(ee.Err))
	})

	return nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings, flags *rootFlags) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", settings.Debug, "Enable debug output")
	rootCmd.PersistentFlags().StringSliceVarP(&flags.roots, "root", "r", nil,
		"Pack root directory, optionally as label=path. Replaces the configured roots")
	rootCmd.PersistentFlags().Int64Var(&settings.Engine.Seed, "seed", settings.Engine.Seed, "Random seed for weighted selection, 0 for a random seed")
	rootCmd.PersistentFlags().BoolVar(&settings.Logging.PackLoading, "log-packs", settings.Logging.PackLoading, "Log every loaded pack and clip")
}

// configPathFromEnv returns the config file named by MODAUDIO_CONFIG, if any
func configPathFromEnv() string {
	path := os.Getenv(conf.EnvPrefix + "_CONFIG")
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}

// Execute loads settings and runs the root command
func Execute() error {
	settings, err := conf.Load(configPathFromEnv())
	if err != nil {
		return err
	}
	return RootCommand(settings).Execute()
}
