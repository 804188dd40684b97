package audiopack

import (
	"slices"
	"time"

	"github.com/tphakala/modaudio/internal/audioclip"
	"github.com/tphakala/modaudio/internal/errors"
)

// ClipLoadMode selects how a registered clip is materialized
type ClipLoadMode int

const (
	// LoadIntoMemory decodes the whole file on first use
	LoadIntoMemory ClipLoadMode = iota
	// OpenAsStream opens the file and reads frames on demand
	OpenAsStream
)

// String returns the metric and log label of the mode
func (m ClipLoadMode) String() string {
	if m == OpenAsStream {
		return "stream"
	}
	return "memory"
}

// ClipObserver is notified after each clip materialization attempt
type ClipObserver interface {
	ObserveClipMaterialization(mode ClipLoadMode, duration time.Duration, err error)
}

type pendingClip struct {
	path   string
	volume float64
	mode   ClipLoadMode
}

// RegisterClip records a deferred loader for name. It returns false when a clip
// with that name is already registered; the first registration wins.
func (p *Pack) RegisterClip(name, path string, volume float64, mode ClipLoadMode) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasClipLocked(name) {
		return false
	}
	p.pending[name] = pendingClip{path: path, volume: volume, mode: mode}
	p.order = append(p.order, name)
	return true
}

// AddReadyClip stores an already materialized clip under its name
func (p *Pack) AddReadyClip(clip *audioclip.Clip) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasClipLocked(clip.Name()) {
		return false
	}
	p.ready[clip.Name()] = clip
	p.order = append(p.order, clip.Name())
	return true
}

// HasClip reports whether name is registered, ready or pending
func (p *Pack) HasClip(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasClipLocked(name)
}

func (p *Pack) hasClipLocked(name string) bool {
	if _, ok := p.ready[name]; ok {
		return true
	}
	_, ok := p.pending[name]
	return ok
}

// ClipNames returns registered clip names in registration order
func (p *Pack) ClipNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.order)
}

// ClipMode returns the load mode of a pending clip. Ready clips report their
// materialized form.
func (p *Pack) ClipMode(name string) (ClipLoadMode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pending, ok := p.pending[name]; ok {
		return pending.mode, true
	}
	if clip, ok := p.ready[name]; ok {
		if clip.IsStream() {
			return OpenAsStream, true
		}
		return LoadIntoMemory, true
	}
	return 0, false
}

// TryGetReadyClip returns the clip named name, materializing it on first use.
// A deferred loader runs at most once: it is removed before it is invoked, so
// a failed clip reports not found on later calls.
func (p *Pack) TryGetReadyClip(name string) (*audioclip.Clip, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if clip, ok := p.ready[name]; ok {
		return clip, true, nil
	}

	pending, ok := p.pending[name]
	if !ok {
		return nil, false, nil
	}
	delete(p.pending, name)

	clip, err := p.materializeLocked(name, pending)
	if err != nil {
		p.order = slices.DeleteFunc(p.order, func(n string) bool { return n == name })
		return nil, false, err
	}
	return clip, true, nil
}

func (p *Pack) materializeLocked(name string, pending pendingClip) (*audioclip.Clip, error) {
	if p.closed {
		return nil, errors.Newf("pack %s is closed", p.ID).
			Component(componentAudioPack).
			Category(errors.CategoryState).
			Context("clip", name).
			Build()
	}

	start := time.Now()
	var (
		clip *audioclip.Clip
		err  error
	)
	switch pending.mode {
	case OpenAsStream:
		clip, err = audioclip.Open(name, pending.path, pending.volume)
	default:
		clip, err = audioclip.Decode(name, pending.path, pending.volume)
	}

	if p.observer != nil {
		p.observer.ObserveClipMaterialization(pending.mode, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	p.ready[name] = clip
	if clip.IsStream() {
		p.openStreams = append(p.openStreams, clip.Stream())
	}
	return clip, nil
}

// PendingInMemory returns the names of clips that will be decoded into memory
// and have not been materialized yet
func (p *Pack) PendingInMemory() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var names []string
	for _, name := range p.order {
		if pending, ok := p.pending[name]; ok && pending.mode == LoadIntoMemory {
			names = append(names, name)
		}
	}
	return names
}

// Stats summarizes the clip store
type Stats struct {
	Ready       int
	Pending     int
	OpenStreams int
}

// Stats returns the current clip store counts
func (p *Pack) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Ready: len(p.ready), Pending: len(p.pending), OpenStreams: len(p.openStreams)}
}

// Close disposes every open stream. Clips materialized afterwards fail.
func (p *Pack) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for _, stream := range p.openStreams {
		if err := stream.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.openStreams = nil
	for name, clip := range p.ready {
		if clip.IsStream() {
			delete(p.ready, name)
		}
	}
	p.closed = true

	return errors.Join(errs...)
}
