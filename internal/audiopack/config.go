package audiopack

import (
	"encoding/json"
	"io"
	"slices"
)

// File names recognised inside pack directories
const (
	ConfigFileName       = "modaudio.config.json"
	LegacyRoutesFileName = "__routes.txt"
)

// PackConfig is the on-disk JSON description of an audio pack
type PackConfig struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"display_name"`
	Settings    PackSettings `json:"settings"`
	CustomClips []CustomClip `json:"custom_clips"`
	Routes      []*Route     `json:"routes"`
}

// PackSettings holds per-pack behaviour switches
type PackSettings struct {
	AutoloadReplacementClips bool `json:"autoload_replacement_clips"`
}

// CustomClip declares a clip file shipped with the pack
type CustomClip struct {
	Name                string  `json:"name"`
	Path                string  `json:"path"`
	Volume              float64 `json:"volume"`
	IgnoreClipExtension bool    `json:"ignore_clip_extension"`
}

// ClipSelection is one weighted choice in a route's replacement or overlay list
type ClipSelection struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Volume float64 `json:"volume"`
	Pitch  float64 `json:"pitch"`
}

// Route maps original clip names to weighted replacement and overlay choices
type Route struct {
	OriginalClips              []string        `json:"original_clips"`
	ReplacementClips           []ClipSelection `json:"replacement_clips"`
	OverlayClips               []ClipSelection `json:"overlay_clips"`
	FilterBySources            []string        `json:"filter_by_sources"`
	FilterByObject             []string        `json:"filter_by_object"`
	ReplacementWeight          float64         `json:"replacement_weight"`
	Volume                     float64         `json:"volume"`
	Pitch                      float64         `json:"pitch"`
	RelativeReplacementEffects bool            `json:"relative_replacement_effects"`
	RelativeOverlayEffects     bool            `json:"relative_overlay_effects"`
	LinkOverlayAndReplacement  bool            `json:"link_overlay_and_replacement"`
	OverlaysIgnoreRestarts     bool            `json:"overlays_ignore_restarts"`

	originals map[string]struct{}
}

// DefaultPackSettings returns the settings applied when a field is absent
func DefaultPackSettings() PackSettings {
	return PackSettings{AutoloadReplacementClips: true}
}

// NewRoute returns a route with default field values
func NewRoute(originalClips ...string) *Route {
	r := &Route{
		OriginalClips:              originalClips,
		ReplacementWeight:          1,
		Volume:                     1,
		Pitch:                      1,
		RelativeReplacementEffects: true,
		RelativeOverlayEffects:     false,
		LinkOverlayAndReplacement:  true,
	}
	r.index()
	return r
}

// NewClipSelection returns a selection of name with unit volume and pitch
func NewClipSelection(name string, weight float64) ClipSelection {
	return ClipSelection{Name: name, Weight: weight, Volume: 1, Pitch: 1}
}

// UnmarshalJSON applies defaults for fields missing from the document
func (s *PackSettings) UnmarshalJSON(data []byte) error {
	type raw PackSettings
	r := raw(DefaultPackSettings())
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*s = PackSettings(r)
	return nil
}

// UnmarshalJSON applies defaults for fields missing from the document
func (c *CustomClip) UnmarshalJSON(data []byte) error {
	type raw CustomClip
	r := raw{Volume: 1}
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*c = CustomClip(r)
	return nil
}

// UnmarshalJSON applies defaults for fields missing from the document
func (c *ClipSelection) UnmarshalJSON(data []byte) error {
	type raw ClipSelection
	r := raw{Weight: 1, Volume: 1, Pitch: 1}
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*c = ClipSelection(r)
	return nil
}

// UnmarshalJSON applies defaults for fields missing from the document
func (r *Route) UnmarshalJSON(data []byte) error {
	type raw Route
	def := NewRoute()
	decoded := raw{
		ReplacementWeight:          def.ReplacementWeight,
		Volume:                     def.Volume,
		Pitch:                      def.Pitch,
		RelativeReplacementEffects: def.RelativeReplacementEffects,
		RelativeOverlayEffects:     def.RelativeOverlayEffects,
		LinkOverlayAndReplacement:  def.LinkOverlayAndReplacement,
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*r = Route(decoded)
	r.index()
	return nil
}

// index rebuilds the original clip lookup set
func (r *Route) index() {
	r.originals = make(map[string]struct{}, len(r.OriginalClips))
	for _, name := range r.OriginalClips {
		r.originals[name] = struct{}{}
	}
}

// MatchesClip reports whether the route applies to a clip named name
func (r *Route) MatchesClip(name string) bool {
	if r.originals == nil {
		r.index()
	}
	_, ok := r.originals[name]
	return ok
}

// MatchesFilters reports whether the source and object hierarchy pass the route filters.
// Empty filters match everything; hierarchy matches when any name is listed.
func (r *Route) MatchesFilters(sourceName string, hierarchy []string) bool {
	if len(r.FilterBySources) > 0 && !slices.Contains(r.FilterBySources, sourceName) {
		return false
	}
	if len(r.FilterByObject) > 0 {
		if !slices.ContainsFunc(hierarchy, func(name string) bool {
			return slices.Contains(r.FilterByObject, name)
		}) {
			return false
		}
	}
	return true
}

// HasOverlays reports whether the route defines overlay clips
func (r *Route) HasOverlays() bool {
	return len(r.OverlayClips) > 0
}

// ParseConfig decodes a pack configuration document
func ParseConfig(r io.Reader) (*PackConfig, error) {
	cfg := &PackConfig{Settings: DefaultPackSettings()}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
