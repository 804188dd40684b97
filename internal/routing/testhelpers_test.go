package routing

import (
	"bytes"
	"io"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/modaudio/internal/audioclip"
	"github.com/tphakala/modaudio/internal/audiopack"
	"github.com/tphakala/modaudio/internal/conf"
	"github.com/tphakala/modaudio/internal/logger"
)

// fakeSource is a host object whose Play and Stop go through the engine the
// way a host integration would
type fakeSource struct {
	id        SourceID
	name      string
	hierarchy []string
	clip      *audioclip.Clip
	volume    float64
	pitch     float64
	playing   bool
	plays     int
	stops     int
	engine    *Engine
	panicOn   string
}

func (s *fakeSource) ID() SourceID { return s.id }
func (s *fakeSource) Name() string { return s.name }
func (s *fakeSource) HierarchyNames() []string {
	if s.panicOn == "hierarchy" {
		panic("hierarchy unavailable")
	}
	return s.hierarchy
}
func (s *fakeSource) Clip() *audioclip.Clip     { return s.clip }
func (s *fakeSource) SetClip(c *audioclip.Clip) { s.clip = c }
func (s *fakeSource) SetVolume(v float64)       { s.volume = v }
func (s *fakeSource) Pitch() float64            { return s.pitch }
func (s *fakeSource) SetPitch(p float64)        { s.pitch = p }
func (s *fakeSource) IsPlaying() bool           { return s.playing }

func (s *fakeSource) Volume() float64 {
	if s.panicOn == "volume" {
		panic("volume unavailable")
	}
	return s.volume
}

func (s *fakeSource) Play() {
	if s.engine != nil && s.engine.NotifyPlay(s) {
		return
	}
	s.plays++
	s.playing = true
}

func (s *fakeSource) Stop() {
	if s.engine != nil {
		s.engine.NotifyStop(s, false)
	}
	s.stops++
	s.playing = false
}

// fakeHost spawns fakeSources and records destroyed ones
type fakeHost struct {
	nextID    SourceID
	engine    *Engine
	spawned   []*fakeSource
	destroyed []SourceID
}

func (h *fakeHost) SpawnOneShot(template Source) Source {
	h.nextID++
	s := &fakeSource{
		id:        1000 + h.nextID,
		name:      template.Name() + " (one-shot)",
		hierarchy: template.HierarchyNames(),
		clip:      template.Clip(),
		volume:    template.Volume(),
		pitch:     template.Pitch(),
		engine:    h.engine,
	}
	h.spawned = append(h.spawned, s)
	return s
}

func (h *fakeHost) Destroy(src Source) {
	h.destroyed = append(h.destroyed, src.ID())
}

// fakeLoader builds a fresh pack set on every call
type fakeLoader struct {
	build func() []*audiopack.Pack
	calls int
}

func (l *fakeLoader) LoadAll([]conf.PackRoot) []*audiopack.Pack {
	l.calls++
	return l.build()
}

func testLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelDebug, time.UTC)
}

func testClip(name string) *audioclip.Clip {
	return audioclip.NewClip(name, 44100, 1, make([]float32, 441))
}

// newTestPack returns a pack holding ready clips named clips
func newTestPack(id string, clips []string, routes ...*audiopack.Route) *audiopack.Pack {
	p := audiopack.NewPack(id, id, "")
	for _, name := range clips {
		p.AddReadyClip(testClip(name))
	}
	p.Routes = routes
	return p
}

// replaceRoute routes original to the given replacement names with unit weights
func replaceRoute(original string, replacements ...string) *audiopack.Route {
	r := audiopack.NewRoute(original)
	for _, name := range replacements {
		r.ReplacementClips = append(r.ReplacementClips, audiopack.NewClipSelection(name, 1))
	}
	return r
}

type testEnv struct {
	engine *Engine
	host   *fakeHost
	loader *fakeLoader
	nextID SourceID
}

func newTestEnv(t *testing.T, build func() []*audiopack.Pack, opts ...Option) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, DefaultConfig(), build, opts...)
}

func newTestEnvWithConfig(t *testing.T, cfg Config, build func() []*audiopack.Pack, opts ...Option) *testEnv {
	t.Helper()
	host := &fakeHost{}
	loader := &fakeLoader{build: build}
	opts = append([]Option{
		WithLogger(testLogger()),
		WithRand(rand.New(rand.NewPCG(42, 7))),
	}, opts...)

	e := New(cfg, host, loader, opts...)
	host.engine = e
	e.Reload(true)
	t.Cleanup(func() { require.NoError(t, e.Close()) })

	return &testEnv{engine: e, host: host, loader: loader}
}

// source registers a stopped source playing clip at unit volume and pitch
func (env *testEnv) source(name string, clip *audioclip.Clip) *fakeSource {
	env.nextID++
	s := &fakeSource{
		id:     env.nextID,
		name:   name,
		clip:   clip,
		volume: 1,
		pitch:  1,
		engine: env.engine,
	}
	env.engine.Register(s)
	return s
}

func (env *testEnv) state(s Source) *trackedState {
	return env.engine.states[s.ID()]
}

func bufferLogger(buf *bytes.Buffer) logger.Logger {
	return logger.NewSlogLogger(buf, logger.LogLevelDebug, time.UTC)
}
