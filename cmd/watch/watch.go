// Package watch implements the watch command that keeps an engine running and
// reloads audio packs when their files change.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/modaudio/internal/audiopack"
	"github.com/tphakala/modaudio/internal/conf"
	"github.com/tphakala/modaudio/internal/logger"
	"github.com/tphakala/modaudio/internal/observability"
	"github.com/tphakala/modaudio/internal/observability/metrics"
	"github.com/tphakala/modaudio/internal/packwatch"
	"github.com/tphakala/modaudio/internal/routing"
	"github.com/tphakala/modaudio/internal/simhost"
)

type options struct {
	tick      time.Duration
	statusLog time.Duration
}

// Command creates the watch command
func Command(settings *conf.Settings) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the engine and hot-reload packs on change",
		Long:  "Load the audio packs and keep the engine running. Changes below the pack roots trigger a hard reload; SIGHUP requests one manually.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, settings, opts)
		},
	}

	cmd.Flags().DurationVar(&settings.Packs.WatchDebounce, "debounce", settings.Packs.WatchDebounce, "Quiet period before a watch-triggered reload")
	cmd.Flags().DurationVar(&opts.tick, "tick", 50*time.Millisecond, "Engine update interval")
	cmd.Flags().DurationVar(&opts.statusLog, "status-interval", time.Minute, "Interval between status log lines, 0 to disable")

	return cmd
}

func run(ctx context.Context, settings *conf.Settings, opts *options) error {
	if opts.tick <= 0 {
		return fmt.Errorf("tick must be positive, got %s", opts.tick)
	}
	log := logger.Global().Module("watch")

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

	engine.Reload(true)

	roots := make([]string, 0, len(settings.Packs.Roots))
	for _, root := range settings.Packs.Roots {
		roots = append(roots, root.Path)
	}
	watcher := packwatch.New(roots, settings.Packs.WatchDebounce, engine, packwatch.WithLogger(log))
	if err := watcher.Start(); err != nil {
		return err
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			log.Warn("Failed to stop pack watcher", logger.Error(err))
		}
	}()

	hup := make(chan os.Signal, 1)
	if sigs := reloadSignals(); len(sigs) > 0 {
		signal.Notify(hup, sigs...)
		defer signal.Stop(hup)
	}

	ticker := time.NewTicker(opts.tick)
	defer ticker.Stop()

	var status <-chan time.Time
	if opts.statusLog > 0 {
		statusTicker := time.NewTicker(opts.statusLog)
		defer statusTicker.Stop()
		status = statusTicker.C
	}

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down",
				logger.Int64("watch_reloads", watcher.Triggered()))
			return nil
		case <-hup:
			log.Info("SIGHUP received, requesting hard reload")
			engine.RequestReload(true)
		case now := <-ticker.C:
			// Update runs inside Advance on this goroutine only
			host.Advance(now.Sub(last))
			last = now
		case <-status:
			stats := engine.Stats()
			snapshot, err := telemetry.Snapshot()
			if err != nil {
				log.Warn("Failed to gather metrics", logger.Error(err))
				continue
			}
			log.Info("Engine status",
				logger.Int("packs", len(engine.Packs())),
				logger.Int("tracked", stats.Tracked),
				logger.Int("one_shots", stats.OneShots),
				logger.Float64("hard_reloads", snapshot["modaudio_reloads_total{kind="+metrics.ReloadHard+"}"]))
		}
	}
}
