package audiopack

import (
	"bufio"
	_ "embed"
	"slices"
	"strings"
	"sync"
)

//go:embed known_clips.txt
var knownClipsData string

var (
	knownClipsOnce sync.Once
	knownClipSet   map[string]struct{}
	knownClipList  []string
)

func loadKnownClips() {
	knownClipSet = make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(knownClipsData))
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		if _, exists := knownClipSet[name]; exists {
			continue
		}
		knownClipSet[name] = struct{}{}
		knownClipList = append(knownClipList, name)
	}
	slices.Sort(knownClipList)
}

// IsKnownClip reports whether name is one of the host's built-in clip names
func IsKnownClip(name string) bool {
	knownClipsOnce.Do(loadKnownClips)
	_, ok := knownClipSet[name]
	return ok
}

// KnownClips returns the sorted list of built-in clip names
func KnownClips() []string {
	knownClipsOnce.Do(loadKnownClips)
	return slices.Clone(knownClipList)
}
