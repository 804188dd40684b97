package packwatch

import (
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"

	"github.com/tphakala/modaudio/internal/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingReloader struct {
	hard atomic.Int64
	soft atomic.Int64
}

func (r *countingReloader) RequestReload(hard bool) {
	if hard {
		r.hard.Add(1)
		return
	}
	r.soft.Add(1)
}

func startWatcher(t *testing.T, root string, opts ...Option) (*Watcher, *countingReloader) {
	t.Helper()
	reloader := &countingReloader{}
	opts = append([]Option{
		WithLogger(logger.NewSlogLogger(io.Discard, logger.LogLevelDebug, time.UTC)),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
	}, opts...)
	w := New([]string{root}, 30*time.Millisecond, reloader, opts...)
	require.NoError(t, w.Start())
	t.Cleanup(func() { assert.NoError(t, w.Stop()) })
	return w, reloader
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPackFileChangeRequestsHardReload(t *testing.T) {
	root := t.TempDir()
	w, reloader := startWatcher(t, root)

	writeFile(t, filepath.Join(root, "modaudio.config.json"), `{"routes": []}`)

	require.Eventually(t, func() bool { return reloader.hard.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, reloader.soft.Load())
	assert.Equal(t, int64(1), w.Triggered())
}

func TestBurstIsDebounced(t *testing.T) {
	root := t.TempDir()
	_, reloader := startWatcher(t, root)

	for i := range 5 {
		writeFile(t, filepath.Join(root, "__routes.txt"), "hit = alt"+string(rune('0'+i)))
	}

	require.Eventually(t, func() bool { return reloader.hard.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int64(1), reloader.hard.Load())
}

func TestUnrelatedFilesAreIgnored(t *testing.T) {
	root := t.TempDir()
	_, reloader := startWatcher(t, root)

	writeFile(t, filepath.Join(root, "README.md"), "notes")
	writeFile(t, filepath.Join(root, "cover.png"), "png")

	assert.Never(t, func() bool { return reloader.hard.Load() > 0 }, 200*time.Millisecond, 20*time.Millisecond)
}

func TestNewDirectoriesAreWatched(t *testing.T) {
	root := t.TempDir()
	_, reloader := startWatcher(t, root)

	sub := filepath.Join(root, "newpack")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.Eventually(t, func() bool { return reloader.hard.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	writeFile(t, filepath.Join(sub, "hit.wav"), "RIFF")
	require.Eventually(t, func() bool { return reloader.hard.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestReloadsAreRateLimited(t *testing.T) {
	root := t.TempDir()
	_, reloader := startWatcher(t, root, WithLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)))

	writeFile(t, filepath.Join(root, "a.wav"), "RIFF")
	require.Eventually(t, func() bool { return reloader.hard.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	writeFile(t, filepath.Join(root, "b.wav"), "RIFF")
	assert.Never(t, func() bool { return reloader.hard.Load() > 1 }, 200*time.Millisecond, 20*time.Millisecond)
}

func TestStopIsIdempotent(t *testing.T) {
	w := New([]string{t.TempDir()}, 10*time.Millisecond, &countingReloader{},
		WithLogger(logger.NewSlogLogger(io.Discard, logger.LogLevelInfo, time.UTC)))
	require.NoError(t, w.Start())

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestMissingRootIsSkipped(t *testing.T) {
	w := New([]string{filepath.Join(t.TempDir(), "missing")}, 10*time.Millisecond, &countingReloader{},
		WithLogger(logger.NewSlogLogger(io.Discard, logger.LogLevelInfo, time.UTC)))
	require.NoError(t, w.Start())
	assert.NoError(t, w.Stop())
}

func TestIsPackFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "/p/modaudio.config.json", want: true},
		{path: "/p/__routes.txt", want: true},
		{path: "/p/hit.wav", want: true},
		{path: "/p/music.OGG", want: true},
		{path: "/p/voice.flac", want: true},
		{path: "/p/notes.txt", want: false},
		{path: "/p/cover.png", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isPackFile(tt.path))
		})
	}
}
