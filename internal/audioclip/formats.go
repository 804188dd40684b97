package audioclip

import (
	"path/filepath"
	"slices"
	"strings"
)

// LoadExtensions lists the file extensions that can be decoded into memory
var LoadExtensions = []string{".wav", ".flac", ".mp3", ".ogg"}

// StreamExtensions lists the file extensions that can be streamed from disk
var StreamExtensions = []string{".wav", ".ogg", ".mp3"}

// SupportedExtensions is the union of load and stream extensions
var SupportedExtensions = func() []string {
	exts := slices.Clone(LoadExtensions)
	for _, ext := range StreamExtensions {
		if !slices.Contains(exts, ext) {
			exts = append(exts, ext)
		}
	}
	return exts
}()

// normalizedExt returns the lower-cased extension of path including the dot
func normalizedExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsLoadable reports whether path has an extension that can be decoded into memory
func IsLoadable(path string) bool {
	return slices.Contains(LoadExtensions, normalizedExt(path))
}

// IsStreamable reports whether path has an extension that can be streamed
func IsStreamable(path string) bool {
	return slices.Contains(StreamExtensions, normalizedExt(path))
}

// IsSupported reports whether path has any supported audio extension
func IsSupported(path string) bool {
	return slices.Contains(SupportedExtensions, normalizedExt(path))
}

// getAudioDivisor returns the divisor that scales integer PCM of bitDepth to [-1, 1)
func getAudioDivisor(bitDepth int) (float32, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, newUnsupportedError("bit-depth", bitDepth)
	}
}
