package audiopack

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/modaudio/internal/conf"
	"github.com/tphakala/modaudio/internal/logger"
)

func testConfig() Config {
	return Config{
		MinWeight:            conf.DefaultMinWeight,
		MaxWeight:            conf.DefaultMaxWeight,
		DefaultWeight:        conf.DefaultRouteWeight,
		StreamThresholdBytes: conf.DefaultStreamThresholdBytes,
	}
}

func testLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelDebug, time.UTC)
}

func bufferLogger(buf *bytes.Buffer) logger.Logger {
	return logger.NewSlogLogger(buf, logger.LogLevelDebug, time.UTC)
}

// writeWAV writes a short mono 16-bit WAV file
func writeWAV(t *testing.T, path string, frames int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	data := make([]int, frames)
	for i := range data {
		data[i] = 8192
	}
	encoder := wav.NewEncoder(file, 44100, 16, 1, 1)
	require.NoError(t, encoder.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: 44100, NumChannels: 1},
		SourceBitDepth: 16,
	}))
	require.NoError(t, encoder.Close())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func writeBytes(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
}

func findPack(packs []*Pack, id string) *Pack {
	for _, p := range packs {
		if p.ID == id {
			return p
		}
	}
	return nil
}
