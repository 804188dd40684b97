package audiopack

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tphakala/modaudio/internal/logger"
)

// PreloadResult counts the outcome of a preload pass
type PreloadResult struct {
	Loaded int
	Failed int
}

// Preload materializes every in-memory clip of every enabled pack so first
// playback does not wait on disk. Failures are logged and counted; they do not
// stop the pass. concurrency bounds the number of packs decoded at once.
func Preload(ctx context.Context, packs []*Pack, concurrency int, log logger.Logger) (PreloadResult, error) {
	if log == nil {
		log = GetLogger()
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var loaded, failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, pack := range packs {
		if !pack.Enabled() {
			continue
		}
		g.Go(func() error {
			for _, name := range pack.PendingInMemory() {
				if err := ctx.Err(); err != nil {
					return err
				}
				if _, _, err := pack.TryGetReadyClip(name); err != nil {
					failed.Add(1)
					log.Warn("Failed to preload clip",
						logger.String("pack_id", pack.ID),
						logger.String("clip", name),
						logger.Error(err))
					continue
				}
				loaded.Add(1)
			}
			return nil
		})
	}

	err := g.Wait()
	return PreloadResult{Loaded: int(loaded.Load()), Failed: int(failed.Load())}, err
}
