package audiopack

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tphakala/modaudio/internal/audioclip"
	"github.com/tphakala/modaudio/internal/conf"
	"github.com/tphakala/modaudio/internal/errors"
	"github.com/tphakala/modaudio/internal/logger"
)

// autoPackDir is the root subdirectory that may hold an implicit auto-route pack
const autoPackDir = "audio"

// Config holds loader limits
type Config struct {
	MinWeight            float64
	MaxWeight            float64
	DefaultWeight        float64
	StreamThresholdBytes int64
	LogPackLoading       bool
	Observer             ClipObserver
}

// ConfigFromSettings builds a loader config from application settings
func ConfigFromSettings(settings *conf.Settings) Config {
	return Config{
		MinWeight:            settings.Engine.MinWeight,
		MaxWeight:            settings.Engine.MaxWeight,
		DefaultWeight:        settings.Engine.DefaultWeight,
		StreamThresholdBytes: settings.Engine.StreamThresholdBytes,
		LogPackLoading:       settings.Logging.PackLoading,
	}
}

// Warning is a non-fatal problem found while loading packs
type Warning struct {
	Path    string
	Message string
	Err     error
}

// String formats the warning for display
func (w Warning) String() string {
	if w.Err != nil {
		return fmt.Sprintf("%s: %s: %v", w.Path, w.Message, w.Err)
	}
	return fmt.Sprintf("%s: %s", w.Path, w.Message)
}

// Loader discovers and builds packs from pack roots
type Loader struct {
	cfg      Config
	log      logger.Logger
	warnings []Warning
}

// NewLoader creates a loader. A nil log uses the package logger.
func NewLoader(cfg Config, log logger.Logger) *Loader {
	if log == nil {
		log = GetLogger()
	}
	return &Loader{cfg: cfg, log: log}
}

// Warnings returns the warnings recorded by the last LoadAll call
func (l *Loader) Warnings() []Warning {
	return slices.Clone(l.warnings)
}

func (l *Loader) warn(path, message string, err error, fields ...logger.Field) {
	l.warnings = append(l.warnings, Warning{Path: path, Message: message, Err: err})
	fields = append(fields, logger.String("path", path))
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	l.log.Warn(message, fields...)
}

func (l *Loader) logLoaded(msg string, fields ...logger.Field) {
	if l.cfg.LogPackLoading {
		l.log.Info(msg, fields...)
		return
	}
	l.log.Debug(msg, fields...)
}

// LoadAll scans every root breadth-first and returns the packs found, in
// discovery order. Packs with invalid or duplicate IDs are dropped.
func (l *Loader) LoadAll(roots []conf.PackRoot) []*Pack {
	l.warnings = nil
	var packs []*Pack
	seen := make(map[string]struct{})

	for _, root := range roots {
		packs = l.loadRoot(root, packs, seen)
	}
	return packs
}

func (l *Loader) loadRoot(root conf.PackRoot, packs []*Pack, seen map[string]struct{}) []*Pack {
	absRoot, err := filepath.Abs(root.Path)
	if err != nil {
		l.warn(root.Path, "Cannot resolve pack root", err)
		return packs
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		l.warn(absRoot, "Pack root is not a readable directory", err)
		return packs
	}

	queue := []string{absRoot}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			l.warn(dir, "Cannot read directory", err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				queue = append(queue, filepath.Join(dir, entry.Name()))
			}
		}

		pack, err := l.loadDir(root, absRoot, dir, entries)
		if err != nil {
			l.warn(dir, "Skipping audio pack", err)
			continue
		}
		if pack == nil {
			continue
		}

		if err := validateID(pack.ID); err != nil {
			l.warn(pack.ConfigPath, "Refusing to load pack with invalid ID", err, logger.String("pack_id", pack.ID))
			pack.Close()
			continue
		}
		if _, dup := seen[pack.ID]; dup {
			err := errors.Newf("an audio pack with ID %q already exists", pack.ID).
				Component(componentAudioPack).
				Category(errors.CategoryConflict).
				Context("pack_id", pack.ID).
				Build()
			l.warn(pack.ConfigPath, "Refusing to load duplicate pack", err, logger.String("pack_id", pack.ID))
			pack.Close()
			continue
		}

		seen[pack.ID] = struct{}{}
		pack.SetObserver(l.cfg.Observer)
		packs = append(packs, pack)

		l.logLoaded("Loaded audio pack",
			logger.String("pack_id", pack.ID),
			logger.String("display_name", pack.DisplayName),
			logger.String("kind", string(pack.Kind)),
			logger.Int("routes", len(pack.Routes)),
			logger.Int("clips", len(pack.ClipNames())))
	}

	return packs
}

// loadDir builds the pack a directory declares, or returns nil when it declares none
func (l *Loader) loadDir(root conf.PackRoot, absRoot, dir string, entries []fs.DirEntry) (*Pack, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	if fileExists(configPath) {
		return l.loadConfigPack(root, absRoot, dir, configPath)
	}

	routesPath := filepath.Join(dir, LegacyRoutesFileName)
	if fileExists(routesPath) {
		return l.loadLegacyPack(root, absRoot, dir, routesPath, KindLegacy)
	}

	if (dir == absRoot || dir == filepath.Join(absRoot, autoPackDir)) && hasKnownClipFiles(entries) {
		return l.loadLegacyPack(root, absRoot, dir, routesPath, KindAuto)
	}

	return nil, nil
}

func (l *Loader) loadConfigPack(root conf.PackRoot, absRoot, dir, configPath string) (*Pack, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, newPackError(err, errors.CategoryConfiguration, configPath)
	}
	defer file.Close()

	cfg, err := ParseConfig(file)
	if err != nil {
		return nil, newPackError(err, errors.CategoryConfiguration, configPath)
	}

	id := strings.TrimSpace(cfg.ID)
	if id == "" {
		id = deriveID(root, absRoot, configPath)
	}
	displayName := strings.TrimSpace(cfg.DisplayName)
	if displayName == "" {
		displayName = deriveDisplayName(absRoot, dir)
	}

	pack := NewPack(id, displayName, dir)
	pack.Kind = KindConfig
	pack.ConfigPath = configPath
	pack.Settings = cfg.Settings

	for _, clip := range cfg.CustomClips {
		l.registerCustomClip(pack, clip)
	}

	pack.Routes = l.finalizeRoutes(pack, cfg.Routes)

	if pack.Settings.AutoloadReplacementClips {
		l.autoloadKnownClips(pack, false)
	}

	return pack, nil
}

func (l *Loader) loadLegacyPack(root conf.PackRoot, absRoot, dir, routesPath string, kind PackKind) (*Pack, error) {
	cfg := &PackConfig{Settings: DefaultPackSettings()}

	if kind == KindLegacy {
		file, err := os.Open(routesPath)
		if err != nil {
			return nil, newPackError(err, errors.CategoryConfiguration, routesPath)
		}
		defer file.Close()

		cfg, err = ParseLegacyRoutes(file, l.cfg.DefaultWeight, l.log.With(logger.String("path", routesPath)))
		if err != nil {
			return nil, newPackError(err, errors.CategoryConfiguration, routesPath)
		}
	}

	pack := NewPack(deriveID(root, absRoot, routesPath), deriveDisplayName(absRoot, dir), dir)
	pack.Kind = kind
	pack.ConfigPath = routesPath
	pack.Settings = cfg.Settings
	pack.Routes = l.finalizeRoutes(pack, cfg.Routes)

	l.autoloadKnownClips(pack, true)

	return pack, nil
}

// registerCustomClip resolves and registers one declared clip
func (l *Loader) registerCustomClip(pack *Pack, clip CustomClip) {
	name := strings.TrimSpace(clip.Name)
	if name == "" {
		l.warn(pack.ConfigPath, "Custom clip has no name", newPackError(
			fmt.Errorf("custom clip with path %q has no name", clip.Path),
			errors.CategoryConfiguration, pack.ConfigPath))
		return
	}

	if pack.HasClip(name) {
		l.warn(pack.ConfigPath, "Refusing to load clip, a clip with that name was already loaded",
			errors.Newf("duplicate clip %q", name).
				Component(componentAudioPack).
				Category(errors.CategoryConflict).
				Build(),
			logger.String("clip", name))
		return
	}

	path, err := resolveClipPath(pack.Dir, clip.Path, clip.IgnoreClipExtension)
	if err != nil {
		l.warn(pack.ConfigPath, "Refusing to load clip", err, logger.String("clip", name))
		return
	}

	if err := l.registerFile(pack, name, path, clip.Volume); err != nil {
		l.warn(path, "Refusing to load clip", err, logger.String("clip", name))
	}
}

// registerFile picks the load mode for a file and records its deferred loader
func (l *Loader) registerFile(pack *Pack, name, path string, volume float64) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.New(err).
			Component(componentAudioPack).
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	if info.IsDir() {
		return errors.Newf("clip path %q is a directory", path).
			Component(componentAudioPack).
			Category(errors.CategoryFileIO).
			Build()
	}

	if !audioclip.IsSupported(path) {
		return errors.Newf("unsupported audio file extension %q", filepath.Ext(path)).
			Component(componentAudioPack).
			Category(errors.CategoryUnsupported).
			FileContext(path, info.Size()).
			Build()
	}

	mode := LoadIntoMemory
	if info.Size() >= l.cfg.StreamThresholdBytes {
		if !audioclip.IsStreamable(path) {
			return errors.Newf("file of %d bytes is at or above the streaming threshold of %d bytes but %q cannot be streamed, use one of %s",
				info.Size(), l.cfg.StreamThresholdBytes, filepath.Ext(path), strings.Join(audioclip.StreamExtensions, ", ")).
				Component(componentAudioPack).
				Category(errors.CategoryUnsupported).
				FileContext(path, info.Size()).
				Build()
		}
		mode = OpenAsStream
	}

	if !pack.RegisterClip(name, path, volume, mode) {
		return errors.Newf("clip %q is already registered", name).
			Component(componentAudioPack).
			Category(errors.CategoryConflict).
			Build()
	}

	l.logLoaded("Registered clip",
		logger.String("pack_id", pack.ID),
		logger.String("clip", name),
		logger.String("mode", mode.String()),
		logger.Int64("size", info.Size()))
	return nil
}

// autoloadKnownClips registers audio files in the pack directory. Files named
// after built-in clips also get an implicit name to name route unless an
// explicit route already covers that clip. When all is set every audio file
// is registered, which legacy packs rely on for their replacement clips.
func (l *Loader) autoloadKnownClips(pack *Pack, all bool) {
	entries, err := os.ReadDir(pack.Dir)
	if err != nil {
		l.warn(pack.Dir, "Cannot read pack directory", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !audioclip.IsSupported(entry.Name()) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		known := IsKnownClip(name)
		if !known && !all {
			continue
		}

		path := filepath.Join(pack.Dir, entry.Name())
		if pack.HasClip(name) {
			if all {
				l.warn(path, "Audio file was not loaded, a clip with that name was already loaded", nil,
					logger.String("clip", name))
			}
		} else if err := l.registerFile(pack, name, path, 1); err != nil {
			l.warn(path, "Refusing to load clip", err, logger.String("clip", name))
			continue
		}

		if known && !pack.HasRouteFor(name) {
			route := NewRoute(name)
			route.ReplacementWeight = l.cfg.DefaultWeight
			route.ReplacementClips = []ClipSelection{NewClipSelection(name, l.cfg.DefaultWeight)}
			pack.Routes = append(pack.Routes, route)
		}
	}
}

// finalizeRoutes drops invalid routes and clamps weights
func (l *Loader) finalizeRoutes(pack *Pack, routes []*Route) []*Route {
	kept := make([]*Route, 0, len(routes))
	for i, route := range routes {
		if route == nil || len(route.OriginalClips) == 0 {
			l.warn(pack.ConfigPath, "Dropping route without original clips",
				newPackError(fmt.Errorf("routes[%d] has no original_clips", i), errors.CategoryConfiguration, pack.ConfigPath))
			continue
		}

		route.ReplacementWeight = l.clampWeight(pack, fmt.Sprintf("routes[%d].replacement_weight", i), route.ReplacementWeight)
		for j := range route.ReplacementClips {
			sel := &route.ReplacementClips[j]
			sel.Weight = l.clampWeight(pack, fmt.Sprintf("routes[%d].replacement_clips[%d] (%s)", i, j, sel.Name), sel.Weight)
		}
		for j := range route.OverlayClips {
			sel := &route.OverlayClips[j]
			sel.Weight = l.clampWeight(pack, fmt.Sprintf("routes[%d].overlay_clips[%d] (%s)", i, j, sel.Name), sel.Weight)
		}

		for _, original := range route.OriginalClips {
			if !IsKnownClip(original) && !audioclip.IsEventClipName(original) {
				l.logLoaded("Route original is not a built-in clip or event name",
					logger.String("pack_id", pack.ID),
					logger.String("clip", original))
			}
		}

		route.index()
		kept = append(kept, route)
	}
	return kept
}

func (l *Loader) clampWeight(pack *Pack, field string, weight float64) float64 {
	clamped := weight
	switch {
	case math.IsNaN(weight):
		clamped = l.cfg.DefaultWeight
	case weight < l.cfg.MinWeight:
		clamped = l.cfg.MinWeight
	case weight > l.cfg.MaxWeight:
		clamped = l.cfg.MaxWeight
	}

	if clamped != weight || math.IsNaN(weight) {
		l.warn(pack.ConfigPath, "Weight out of range was clamped", nil,
			logger.String("pack_id", pack.ID),
			logger.String("field", field),
			logger.Float64("weight", weight),
			logger.Float64("clamped", clamped))
	}
	return clamped
}

// resolveClipPath joins rel onto the pack directory and rejects paths outside it
func resolveClipPath(packDir, rel string, ignoreExtension bool) (string, error) {
	path := filepath.Clean(filepath.Join(packDir, rel))
	if !isWithin(packDir, path) {
		return "", errors.Newf("clip path %q is outside of the audio pack", rel).
			Component(componentAudioPack).
			Category(errors.CategoryValidation).
			Context("pack_dir", packDir).
			Build()
	}

	if ignoreExtension && !fileExists(path) {
		for _, ext := range audioclip.SupportedExtensions {
			if candidate := path + ext; fileExists(candidate) {
				return candidate, nil
			}
		}
	}
	return path, nil
}

func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// deriveID builds a location based ID: <root label>://<path relative to the root>
func deriveID(root conf.PackRoot, absRoot, file string) string {
	rel, err := filepath.Rel(absRoot, file)
	if err != nil {
		rel = file
	}
	return root.Label + "://" + filepath.ToSlash(rel)
}

// deriveDisplayName returns the first path segment of dir under the root,
// or the root directory name for a pack at the root itself
func deriveDisplayName(absRoot, dir string) string {
	rel, err := filepath.Rel(absRoot, dir)
	if err != nil || rel == "." {
		return filepath.Base(absRoot)
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first
}

// validateID rejects backslashes and parent directory segments
func validateID(id string) error {
	if strings.Contains(id, `\`) {
		return errors.Newf("pack ID %q contains a backslash", id).
			Component(componentAudioPack).
			Category(errors.CategoryValidation).
			Build()
	}
	if slices.Contains(strings.Split(id, "/"), "..") {
		return errors.Newf("pack ID %q contains a parent directory segment", id).
			Component(componentAudioPack).
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

func hasKnownClipFiles(entries []fs.DirEntry) bool {
	for _, entry := range entries {
		if entry.IsDir() || !audioclip.IsSupported(entry.Name()) {
			continue
		}
		if IsKnownClip(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
