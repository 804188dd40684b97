package audioclip

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/modaudio/internal/errors"
)

// writeTestWAV writes a 16-bit PCM WAV file holding samples
func writeTestWAV(t *testing.T, path string, sampleRate, channels int, samples []int) {
	t.Helper()

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	encoder := wav.NewEncoder(file, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Data:           samples,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: channels},
		SourceBitDepth: 16,
	}
	require.NoError(t, encoder.Write(buf))
	require.NoError(t, encoder.Close())
}

func constantSamples(n, value int) []int {
	samples := make([]int, n)
	for i := range samples {
		samples[i] = value
	}
	return samples
}

func TestDecodeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hit.wav")
	writeTestWAV(t, path, 22050, 2, constantSamples(2000, 16384))

	clip, err := Decode("hit", path, 0.5)
	require.NoError(t, err)

	assert.Equal(t, "hit", clip.Name())
	assert.Equal(t, 22050, clip.SampleRate())
	assert.Equal(t, 2, clip.Channels())
	assert.Equal(t, 1000, clip.Frames())
	require.Len(t, clip.Samples(), 2000)
	assert.InDelta(t, 0.25, clip.Samples()[0], 1e-6)
	assert.InDelta(t, 0.25, clip.Samples()[1999], 1e-6)
}

func TestDecodeRejectsUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hit.aiff")
	require.NoError(t, os.WriteFile(path, []byte("FORM"), 0o600))

	_, err := Decode("hit", path, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = Open("hit", filepath.Join(dir, "hit.flac"), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestDecodeInvalidWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a riff file"), 0o600))

	_, err := Decode("broken", path, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestOpenStreamWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.wav")
	writeTestWAV(t, path, 44100, 1, constantSamples(10000, 16384))

	clip, err := Open("theme", path, 2)
	require.NoError(t, err)
	stream := clip.Stream()
	require.NotNil(t, stream)
	defer stream.Close()

	assert.True(t, clip.IsStream())
	assert.Nil(t, clip.Samples())
	assert.Equal(t, 44100, clip.SampleRate())
	assert.Equal(t, 1, clip.Channels())
	assert.Equal(t, 10000, clip.Frames())

	dst := make([]float32, 4096)
	n, err := stream.Read(dst)
	require.NoError(t, err)
	assert.Equal(t, 4096, n)
	assert.InDelta(t, 1.0, dst[0], 1e-3)
	assert.Equal(t, 4096, stream.Position())

	require.NoError(t, stream.Seek(9000))
	total := 0
	for {
		n, err := stream.Read(dst)
		total += n
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, 1000, total)

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())
	assert.True(t, stream.Closed())
	_, err = stream.Read(dst)
	assert.Error(t, err)
}

func TestAppendPCMFrame(t *testing.T) {
	tests := []struct {
		name   string
		bits   int
		frame  []byte
		expect []float32
	}{
		{"16 bit", 16, []byte{0x00, 0x40, 0x00, 0xC0}, []float32{0.5, -0.5}},
		{"24 bit sign extension", 24, []byte{0x00, 0x00, 0x40, 0x00, 0x00, 0xC0}, []float32{0.5, -0.5}},
		{"32 bit", 32, []byte{0x00, 0x00, 0x00, 0x40}, []float32{0.5}},
		{"trailing partial sample dropped", 16, []byte{0x00, 0x40, 0x01}, []float32{0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			divisor, err := getAudioDivisor(tt.bits)
			require.NoError(t, err)

			got := appendPCMFrame(nil, tt.frame, tt.bits, divisor)
			require.Len(t, got, len(tt.expect))
			for i := range got {
				assert.InDelta(t, tt.expect[i], got[i], 1e-6)
			}
		})
	}
}

func TestGetAudioDivisorRejectsUnknownDepth(t *testing.T) {
	_, err := getAudioDivisor(12)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))
}
