package audioclip

import (
	"github.com/tphakala/modaudio/internal/errors"
)

const componentAudioClip = "audioclip"

var (
	// ErrUnsupported matches errors for file formats, bit depths or channel layouts that cannot be decoded
	ErrUnsupported = errors.New(nil).Component(componentAudioClip).Category(errors.CategoryUnsupported).Build()

	// ErrDecode matches errors raised while decoding or streaming a clip
	ErrDecode = errors.New(nil).Component(componentAudioClip).Category(errors.CategoryClipLoad).Build()
)

func newUnsupportedError(what string, value any) error {
	return errors.Newf("unsupported %s: %v", what, value).
		Component(componentAudioClip).
		Category(errors.CategoryUnsupported).
		Context(what, value).
		Build()
}

func newDecodeError(err error, path, operation string) error {
	return errors.New(err).
		Component(componentAudioClip).
		Category(errors.CategoryClipLoad).
		Context("operation", operation).
		FileContext(path, 0).
		Build()
}
