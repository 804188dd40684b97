package simulate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/modaudio/internal/conf"
	"github.com/tphakala/modaudio/internal/errors"
)

func writeWAV(t *testing.T, path string, frames int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	encoder := wav.NewEncoder(file, 44100, 16, 1, 1)
	require.NoError(t, encoder.Write(&audio.IntBuffer{
		Data:           make([]int, frames),
		Format:         &audio.Format{SampleRate: 44100, NumChannels: 1},
		SourceBitDepth: 16,
	}))
	require.NoError(t, encoder.Close())
}

func testSettings(root string) *conf.Settings {
	settings := conf.DefaultSettings()
	settings.Packs.Roots = []conf.PackRoot{{Label: "test", Path: root}}
	settings.Engine.Seed = 1
	return settings
}

func TestRunReportsReplacementClip(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "pack")
	writeWAV(t, filepath.Join(dir, "hit_alt.wav"), 100)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "__routes.txt"), []byte("hit = hit_alt\n"), 0o600))

	var out bytes.Buffer
	err := run(&out, testSettings(root), &options{
		clip:    "hit",
		source:  "player",
		plays:   10,
		length:  time.Second,
		frame:   10 * time.Millisecond,
		metrics: true,
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), `Played "hit" 10 time(s) on "player" with 1 pack(s)`)
	assert.Contains(t, out.String(), "hit_alt")
	assert.Contains(t, out.String(), "modaudio_plays_total{outcome=replaced}")
}

func TestRunWithoutPacksFails(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, testSettings(t.TempDir()), &options{clip: "hit", plays: 1, length: time.Second})

	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
}

func TestPrintCountsOrdersByFrequency(t *testing.T) {
	var out bytes.Buffer
	printCounts(&out, "CLIP", map[string]int{"b": 1, "a": 3, "c": 1}, 5)

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)
	assert.True(t, bytes.HasPrefix(lines[1], []byte("a ")))
	assert.True(t, bytes.HasPrefix(lines[2], []byte("b ")))
	assert.True(t, bytes.HasPrefix(lines[3], []byte("c ")))
	assert.Contains(t, string(lines[1]), "60.0%")
}
