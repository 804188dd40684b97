// Package validate implements the validate command that loads every pack and
// reports problems without starting the engine.
package validate

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tphakala/modaudio/internal/audiopack"
	"github.com/tphakala/modaudio/internal/conf"
	"github.com/tphakala/modaudio/internal/errors"
	"github.com/tphakala/modaudio/internal/logger"
)

type options struct {
	preload bool
	strict  bool
}

// Command creates the validate command
func Command(settings *conf.Settings) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load audio packs and report problems",
		Long:  "Scan the pack roots, parse every pack configuration and report warnings. With --preload every in-memory clip is decoded too.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), settings, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.preload, "preload", false, "Decode every in-memory clip")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when any warning is reported")

	return cmd
}

func run(ctx context.Context, out io.Writer, settings *conf.Settings, opts *options) error {
	log := logger.Global().Module("validate")
	loader := audiopack.NewLoader(audiopack.ConfigFromSettings(settings), log)
	packs := loader.LoadAll(settings.Packs.Roots)
	defer func() {
		for _, pack := range packs {
			if err := pack.Close(); err != nil {
				log.Warn("Failed to close audio pack", logger.String("pack_id", pack.ID), logger.Error(err))
			}
		}
	}()

	fmt.Fprintf(out, "%-40s %-7s %-8s %6s %6s\n", "PACK", "KIND", "ENABLED", "ROUTES", "CLIPS")
	for _, pack := range packs {
		stats := pack.Stats()
		fmt.Fprintf(out, "%-40s %-7s %-8t %6d %6d\n",
			pack.ID, pack.Kind, settings.IsPackEnabled(pack.ID), len(pack.Routes), stats.Ready+stats.Pending)
	}

	warnings := loader.Warnings()
	if len(warnings) > 0 {
		fmt.Fprintf(out, "\n%d warning(s):\n", len(warnings))
		for _, w := range warnings {
			fmt.Fprintf(out, "  %s\n", w)
		}
	}

	if opts.preload {
		result, err := audiopack.Preload(ctx, packs, runtime.GOMAXPROCS(0), log)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nPreloaded %d clip(s), %d failed\n", result.Loaded, result.Failed)
		if result.Failed > 0 {
			return errors.Newf("%d clip(s) failed to decode", result.Failed).
				Component("validate").
				Category(errors.CategoryClipLoad).
				Build()
		}
	}

	if len(packs) == 0 {
		return errors.Newf("no audio packs found in %d root(s)", len(settings.Packs.Roots)).
			Component("validate").
			Category(errors.CategoryNotFound).
			Build()
	}
	if opts.strict && len(warnings) > 0 {
		return errors.Newf("%d warning(s) reported", len(warnings)).
			Component("validate").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}
