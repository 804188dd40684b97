// Package simulate implements the simulate command that plays a clip through
// the routing engine on a simulated host and reports what was heard.
package simulate

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/modaudio/internal/audioclip"
	"github.com/tphakala/modaudio/internal/audiopack"
	"github.com/tphakala/modaudio/internal/conf"
	"github.com/tphakala/modaudio/internal/errors"
	"github.com/tphakala/modaudio/internal/logger"
	"github.com/tphakala/modaudio/internal/observability"
	"github.com/tphakala/modaudio/internal/routing"
	"github.com/tphakala/modaudio/internal/simhost"
)

type options struct {
	clip      string
	source    string
	hierarchy []string
	plays     int
	length    time.Duration
	frame     time.Duration
	metrics   bool
}

// Command creates the simulate command
func Command(settings *conf.Settings) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a clip through the routing engine",
		Long:  "Load the audio packs, play the given clip on a simulated source repeatedly and print which replacement and overlay clips were heard.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.plays < 1 {
				return fmt.Errorf("plays must be at least 1, got %d", opts.plays)
			}
			return run(cmd.OutOrStdout(), settings, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.clip, "clip", "c", "", "Original clip name to play (required)")
	cmd.Flags().StringVar(&opts.source, "source", "source", "Name of the simulated source")
	cmd.Flags().StringSliceVar(&opts.hierarchy, "hierarchy", nil, "Object hierarchy names used by route filters")
	cmd.Flags().IntVarP(&opts.plays, "plays", "n", 100, "Number of plays")
	cmd.Flags().DurationVar(&opts.length, "length", time.Second, "Length of the original clip")
	cmd.Flags().DurationVar(&opts.frame, "frame", 20*time.Millisecond, "Simulated time between plays")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print engine metrics after the run")
	_ = cmd.MarkFlagRequired("clip")

	return cmd
}

func run(out io.Writer, settings *conf.Settings, opts *options) error {
	log := logger.Global().Module("simulate")

	telemetry, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	host := simhost.New(log)
	engine := routing.New(routing.ConfigFromSettings(settings), host,
		audiopack.NewLoader(audiopack.ConfigFromSettings(settings), log),
		routing.WithMetrics(telemetry.Routing))
	host.Attach(engine)
	defer func() {
		if err := engine.Close(); err != nil {
			log.Warn("Failed to close audio packs", logger.Error(err))
		}
	}()

	reload := engine.Reload(true)
	if reload.Packs == 0 {
		return errors.Newf("no audio packs found in %d root(s)", len(settings.Packs.Roots)).
			Component("simulate").
			Category(errors.CategoryNotFound).
			Build()
	}

	original := audioclip.NewSilentClip(opts.clip, opts.length, settings.Engine.SilentClipSampleRate)
	src := host.NewSource(opts.source, original, opts.hierarchy...)
	report := host.Simulate(src, opts.plays, opts.frame)

	fmt.Fprintf(out, "Played %q %d time(s) on %q with %d pack(s), %d restart(s)\n\n",
		opts.clip, report.Plays, opts.source, reload.Packs, report.Restarts)
	printCounts(out, "CLIP HEARD", report.Clips, report.Plays)
	if len(report.OneShots) > 0 {
		fmt.Fprintln(out)
		printCounts(out, "OVERLAY", report.OneShots, report.Plays)
	}

	if opts.metrics {
		snapshot, err := telemetry.Snapshot()
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		for _, key := range slices.Sorted(maps.Keys(snapshot)) {
			if !strings.HasPrefix(key, "modaudio_") || snapshot[key] == 0 {
				continue
			}
			fmt.Fprintf(out, "%-70s %g\n", key, snapshot[key])
		}
	}

	return nil
}

// printCounts prints counts sorted by frequency, then name
func printCounts(out io.Writer, title string, counts map[string]int, total int) {
	names := slices.SortedFunc(maps.Keys(counts), func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return strings.Compare(a, b)
	})

	fmt.Fprintf(out, "%-40s %8s %8s\n", title, "COUNT", "SHARE")
	for _, name := range names {
		fmt.Fprintf(out, "%-40s %8d %7.1f%%\n", name, counts[name], 100*float64(counts[name])/float64(total))
	}
}
