package audioclip

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag, the only encoding go-audio decodes to integers
const wavFormatPCM = 1

func decodeWAV(name, path string, volume float64) (*Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, newDecodeError(err, path, "open")
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()

	if !decoder.IsValidFile() {
		return nil, newDecodeError(fmt.Errorf("invalid WAV file format"), path, "read-wav-header")
	}

	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, newUnsupportedError("wav-audio-format", decoder.WavAudioFormat)
	}

	if decoder.NumChans != 1 && decoder.NumChans != 2 {
		return nil, newUnsupportedError("channel-count", decoder.NumChans)
	}

	divisor, err := getAudioDivisor(int(decoder.BitDepth))
	if err != nil {
		return nil, err
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, newDecodeError(err, path, "read-wav-pcm")
	}

	samples := make([]float32, len(buf.Data))
	for i, sample := range buf.Data {
		samples[i] = float32(sample) / divisor
	}
	scaleSamples(samples, volume)

	return NewClip(name, int(decoder.SampleRate), int(decoder.NumChans), samples), nil
}
