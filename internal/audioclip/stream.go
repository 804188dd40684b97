package audioclip

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// streamChunkFrames is the number of frames pulled from a decoder per call
const streamChunkFrames = 4096

// Stream reads frames of a clip on demand from an open file
type Stream struct {
	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	volume   float32
	buf      [][2]float64
	closed   bool
}

// OpenStream opens path with the beep decoder matching its extension
func OpenStream(path string, volume float64) (*Stream, error) {
	streamer, format, err := openBeep(path)
	if err != nil {
		return nil, err
	}

	if format.NumChannels != 1 && format.NumChannels != 2 {
		streamer.Close()
		return nil, newUnsupportedError("channel-count", format.NumChannels)
	}

	return &Stream{
		streamer: streamer,
		format:   format,
		volume:   float32(volume),
	}, nil
}

// openBeep opens and decodes path. The returned streamer owns the file.
func openBeep(path string) (beep.StreamSeekCloser, beep.Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, newDecodeError(err, path, "open")
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch normalizedExt(path) {
	case ".wav":
		streamer, format, err = wav.Decode(file)
	case ".mp3":
		streamer, format, err = mp3.Decode(file)
	case ".ogg":
		streamer, format, err = vorbis.Decode(file)
	default:
		file.Close()
		return nil, beep.Format{}, newUnsupportedError("stream-extension", normalizedExt(path))
	}
	if err != nil {
		file.Close()
		return nil, beep.Format{}, newDecodeError(err, path, "open-stream")
	}

	return streamer, format, nil
}

// SampleRate returns frames per second
func (s *Stream) SampleRate() int { return int(s.format.SampleRate) }

// Channels returns the number of interleaved channels produced by Read
func (s *Stream) Channels() int { return s.format.NumChannels }

// Len returns the stream length in frames
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamer.Len()
}

// Position returns the current frame position
func (s *Stream) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamer.Position()
}

// Seek moves the read position to frame
func (s *Stream) Seek(frame int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return newDecodeError(fmt.Errorf("stream is closed"), "", "seek")
	}
	if err := s.streamer.Seek(frame); err != nil {
		return newDecodeError(err, "", "seek")
	}
	return nil
}

// Read fills dst with interleaved samples and returns the number of frames read.
// It returns io.EOF once the stream is exhausted.
func (s *Stream) Read(dst []float32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, newDecodeError(fmt.Errorf("stream is closed"), "", "read")
	}

	channels := s.format.NumChannels
	frames := len(dst) / channels
	if frames == 0 {
		return 0, nil
	}
	if cap(s.buf) < frames {
		s.buf = make([][2]float64, frames)
	}
	buf := s.buf[:frames]

	n, ok := s.streamer.Stream(buf)
	for i := range n {
		for ch := range channels {
			dst[i*channels+ch] = float32(buf[i][ch]) * s.volume
		}
	}

	if !ok {
		if err := s.streamer.Err(); err != nil {
			return n, newDecodeError(err, "", "read")
		}
		return n, io.EOF
	}
	return n, nil
}

// Close releases the decoder and file. It is safe to call more than once.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.streamer.Close()
}

// Closed reports whether Close has been called
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// decodeBeep drains a beep decoder into an in-memory clip
func decodeBeep(name, path string, volume float64) (*Clip, error) {
	stream, err := OpenStream(path, volume)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	channels := stream.Channels()
	samples := make([]float32, 0, max(stream.Len(), 0)*channels)
	chunk := make([]float32, streamChunkFrames*channels)
	for {
		n, err := stream.Read(chunk)
		samples = append(samples, chunk[:n*channels]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
	}

	return NewClip(name, stream.SampleRate(), channels, samples), nil
}
