// Package audiopack discovers audio packs on disk, parses their routing
// configuration and owns the clips each pack provides.
package audiopack

import (
	"sync"
	"sync/atomic"

	"github.com/tphakala/modaudio/internal/audioclip"
)

// PackKind describes how a pack was discovered
type PackKind string

const (
	KindConfig PackKind = "config" // modaudio.config.json
	KindLegacy PackKind = "legacy" // __routes.txt
	KindAuto   PackKind = "auto"   // audio files named after built-in clips
)

// Pack is one loaded audio pack. Routes and metadata are fixed after loading;
// clips are materialized lazily.
type Pack struct {
	ID          string
	DisplayName string
	Kind        PackKind
	Dir         string // absolute pack directory
	ConfigPath  string // config or routes file the pack was created from
	Settings    PackSettings
	Routes      []*Route

	enabled  atomic.Bool
	observer ClipObserver

	mu          sync.Mutex
	order       []string
	ready       map[string]*audioclip.Clip
	pending     map[string]pendingClip
	openStreams []*audioclip.Stream
	closed      bool
}

// NewPack creates an empty, enabled pack
func NewPack(id, displayName, dir string) *Pack {
	p := &Pack{
		ID:          id,
		DisplayName: displayName,
		Dir:         dir,
		Settings:    DefaultPackSettings(),
		ready:       make(map[string]*audioclip.Clip),
		pending:     make(map[string]pendingClip),
	}
	p.enabled.Store(true)
	return p
}

// Enabled reports whether the pack takes part in routing
func (p *Pack) Enabled() bool {
	return p.enabled.Load()
}

// SetEnabled toggles the pack and reports whether the state changed
func (p *Pack) SetEnabled(enabled bool) bool {
	return p.enabled.Swap(enabled) != enabled
}

// SetObserver installs an observer notified of clip materializations
func (p *Pack) SetObserver(observer ClipObserver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observer = observer
}

// HasRouteFor reports whether any route lists original as an original clip
func (p *Pack) HasRouteFor(original string) bool {
	for _, route := range p.Routes {
		if route.MatchesClip(original) {
			return true
		}
	}
	return false
}
