package audioclip

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/tphakala/flac"
)

func decodeFLAC(name, path string, volume float64) (*Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, newDecodeError(err, path, "open")
	}
	defer file.Close()

	decoder, err := flac.NewDecoder(file)
	if err != nil {
		return nil, newDecodeError(err, path, "read-flac-header")
	}

	if decoder.NChannels != 1 && decoder.NChannels != 2 {
		return nil, newUnsupportedError("channel-count", decoder.NChannels)
	}

	divisor, err := getAudioDivisor(decoder.BitsPerSample)
	if err != nil {
		return nil, err
	}

	samples := make([]float32, 0, int(decoder.TotalSamples)*decoder.NChannels)
	for {
		frame, err := decoder.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, newDecodeError(err, path, "read-flac-frame")
		}
		samples = appendPCMFrame(samples, frame, decoder.BitsPerSample, divisor)
	}
	scaleSamples(samples, volume)

	return NewClip(name, decoder.SampleRate, decoder.NChannels, samples), nil
}

// appendPCMFrame converts interleaved little-endian signed PCM bytes to float32
func appendPCMFrame(dst []float32, frame []byte, bitsPerSample int, divisor float32) []float32 {
	bytesPerSample := bitsPerSample / 8
	for i := 0; i+bytesPerSample <= len(frame); i += bytesPerSample {
		var sample int32
		switch bitsPerSample {
		case 16:
			sample = int32(int16(binary.LittleEndian.Uint16(frame[i:])))
		case 24:
			sample = int32(frame[i]) | int32(frame[i+1])<<8 | int32(int8(frame[i+2]))<<16
		case 32:
			sample = int32(binary.LittleEndian.Uint32(frame[i:]))
		}
		dst = append(dst, float32(sample)/divisor)
	}
	return dst
}
