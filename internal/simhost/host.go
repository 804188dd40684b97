// Package simhost is an in-memory audio host that drives the routing engine
// without a game. Sources play for their clip's duration and stop on their own.
package simhost

import (
	"maps"
	"slices"
	"time"

	"github.com/tphakala/modaudio/internal/audioclip"
	"github.com/tphakala/modaudio/internal/logger"
	"github.com/tphakala/modaudio/internal/routing"
)

// Host owns simulated sources. It is not safe for concurrent use.
type Host struct {
	engine  *routing.Engine
	log     logger.Logger
	nextID  routing.SourceID
	sources map[routing.SourceID]*Source

	spawned   int
	destroyed int
	recent    []*Source
}

// New creates an empty host. Attach an engine before playing sources.
func New(log logger.Logger) *Host {
	if log == nil {
		log = GetLogger()
	}
	return &Host{
		log:     log,
		sources: make(map[routing.SourceID]*Source),
	}
}

// Attach connects the engine that receives play and stop notifications
func (h *Host) Attach(engine *routing.Engine) {
	h.engine = engine
}

// NewSource creates a persistent source and registers it with the engine
func (h *Host) NewSource(name string, clip *audioclip.Clip, hierarchy ...string) *Source {
	s := h.newSource(name, clip, hierarchy)
	if h.engine != nil {
		h.engine.Register(s)
	}
	return s
}

func (h *Host) newSource(name string, clip *audioclip.Clip, hierarchy []string) *Source {
	h.nextID++
	s := &Source{
		id:        h.nextID,
		name:      name,
		hierarchy: slices.Clone(hierarchy),
		clip:      clip,
		volume:    1,
		pitch:     1,
		host:      h,
	}
	h.sources[s.id] = s
	return s
}

// SpawnOneShot implements routing.Host
func (h *Host) SpawnOneShot(template routing.Source) routing.Source {
	s := h.newSource(template.Name(), template.Clip(), template.HierarchyNames())
	s.oneShot = true
	s.volume = template.Volume()
	s.pitch = template.Pitch()
	h.spawned++
	h.recent = append(h.recent, s)
	h.log.Trace("One-shot spawned",
		logger.Int64("id", int64(s.id)),
		logger.String("template", template.Name()))
	return s
}

// Destroy implements routing.Host
func (h *Host) Destroy(src routing.Source) {
	if _, ok := h.sources[src.ID()]; !ok {
		return
	}
	delete(h.sources, src.ID())
	h.destroyed++
	h.log.Trace("One-shot destroyed", logger.Int64("id", int64(src.ID())))
}

// DestroySource removes a persistent source and tells the engine to forget it
func (h *Host) DestroySource(s *Source) {
	delete(h.sources, s.id)
	if h.engine != nil {
		h.engine.Forget(s.id)
	}
}

// Advance moves simulated time forward by d, ends sources whose clip ran out
// and runs one engine update.
func (h *Host) Advance(d time.Duration) {
	for _, s := range h.sources {
		if !s.playing {
			continue
		}
		s.remaining -= d
		if s.remaining <= 0 {
			s.playing = false
			s.remaining = 0
		}
	}
	if h.engine != nil {
		h.engine.Update()
	}
}

// Sources returns the live sources ordered by id
func (h *Host) Sources() []*Source {
	ids := slices.Sorted(maps.Keys(h.sources))
	out := make([]*Source, 0, len(ids))
	for _, id := range ids {
		out = append(out, h.sources[id])
	}
	return out
}

// Stats describes one-shot churn
type Stats struct {
	Live      int
	Spawned   int
	Destroyed int
}

// Stats returns source counts
func (h *Host) Stats() Stats {
	return Stats{Live: len(h.sources), Spawned: h.spawned, Destroyed: h.destroyed}
}
