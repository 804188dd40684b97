// Package packwatch watches pack root directories and requests a hard reload
// of the routing engine when pack files change.
package packwatch

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/tphakala/modaudio/internal/audioclip"
	"github.com/tphakala/modaudio/internal/audiopack"
	"github.com/tphakala/modaudio/internal/errors"
	"github.com/tphakala/modaudio/internal/logger"
)

// DefaultMinReloadInterval is the shortest time between two watch-triggered reloads
const DefaultMinReloadInterval = 2 * time.Second

// Reloader receives reload requests. routing.Engine implements it.
type Reloader interface {
	RequestReload(hard bool)
}

// Option configures a Watcher
type Option func(*Watcher)

// WithLogger sets the watcher logger
func WithLogger(log logger.Logger) Option {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// WithLimiter replaces the limiter that bounds reload frequency
func WithLimiter(limiter *rate.Limiter) Option {
	return func(w *Watcher) {
		if limiter != nil {
			w.limiter = limiter
		}
	}
}

// Watcher turns file system changes under the pack roots into debounced,
// rate limited hard reload requests
type Watcher struct {
	roots    []string
	debounce time.Duration
	reloader Reloader
	limiter  *rate.Limiter
	log      logger.Logger

	fsw      *fsnotify.Watcher
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once

	triggered atomic.Int64
}

// New creates a watcher for roots. Nothing is watched until Start.
func New(roots []string, debounce time.Duration, reloader Reloader, opts ...Option) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		roots:    roots,
		debounce: debounce,
		reloader: reloader,
		limiter:  rate.NewLimiter(rate.Every(DefaultMinReloadInterval), 1),
		log:      GetLogger(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start adds every directory below the roots to the watch list and starts
// the event loop. Missing roots are skipped with a warning.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New(err).
			Component("packwatch").
			Category(errors.CategoryResource).
			Context("operation", "create_watcher").
			Build()
	}
	w.fsw = fsw

	watched := 0
	for _, root := range w.roots {
		n, err := w.addTree(root)
		if err != nil {
			w.log.Warn("Cannot watch pack root",
				logger.String("root", root),
				logger.Error(err))
			continue
		}
		watched += n
	}

	w.log.Info("Watching audio pack folders",
		logger.Int("roots", len(w.roots)),
		logger.Int("directories", watched),
		logger.Duration("debounce", w.debounce))

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop ends the event loop and releases the file system watcher. It is safe
// to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.cancel()
		w.wg.Wait()
		if w.fsw != nil {
			err = w.fsw.Close()
		}
	})
	return err
}

// Triggered returns the number of reload requests issued
func (w *Watcher) Triggered() int64 {
	return w.triggered.Load()
}

// addTree watches dir and every directory below it
func (w *Watcher) addTree(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.handleEvent(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("File watcher error", logger.Error(err))

		case <-timer.C:
			reservation := w.limiter.Reserve()
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				w.log.Debug("Reload rate limited", logger.Duration("retry_in", delay))
				timer.Reset(delay)
				continue
			}
			w.triggered.Add(1)
			w.log.Info("Audio pack files changed, requesting reload")
			w.reloader.RequestReload(true)
		}
	}
}

// handleEvent starts watching new directories and reports whether the event
// concerns pack content
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if n, err := w.addTree(event.Name); err == nil && n > 0 {
			w.log.Debug("Watching new directory", logger.String("path", event.Name))
			return true
		}
	}

	// A removed directory can take a whole pack with it
	if (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) && filepath.Ext(event.Name) == "" {
		return true
	}

	if !isPackFile(event.Name) {
		return false
	}
	w.log.Debug("Pack file changed",
		logger.String("path", event.Name),
		logger.String("op", event.Op.String()))
	return true
}

// isPackFile reports whether a change to path can alter the loaded packs
func isPackFile(path string) bool {
	switch filepath.Base(path) {
	case audiopack.ConfigFileName, audiopack.LegacyRoutesFileName:
		return true
	}
	return audioclip.IsSupported(path)
}
