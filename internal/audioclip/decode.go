package audioclip

// Decode reads the whole audio file at path into memory as a clip named name.
// Samples are multiplied by volume.
func Decode(name, path string, volume float64) (*Clip, error) {
	switch normalizedExt(path) {
	case ".wav":
		return decodeWAV(name, path, volume)
	case ".flac":
		return decodeFLAC(name, path, volume)
	case ".mp3", ".ogg":
		return decodeBeep(name, path, volume)
	default:
		return nil, newUnsupportedError("load-extension", normalizedExt(path))
	}
}

// Open opens the audio file at path as a streamed clip named name.
// Samples are multiplied by volume as they are read. The caller owns the
// returned clip's stream and must close it.
func Open(name, path string, volume float64) (*Clip, error) {
	if !IsStreamable(path) {
		return nil, newUnsupportedError("stream-extension", normalizedExt(path))
	}

	stream, err := OpenStream(path, volume)
	if err != nil {
		return nil, err
	}
	return NewStreamClip(name, stream), nil
}
