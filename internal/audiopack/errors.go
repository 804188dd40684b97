package audiopack

import (
	"github.com/tphakala/modaudio/internal/audioclip"
	"github.com/tphakala/modaudio/internal/errors"
)

const componentAudioPack = "audiopack"

// Sentinel errors. Match with errors.Is; matching compares categories.
var (
	// ErrConfig marks a malformed or unreadable pack configuration
	ErrConfig = errors.New(nil).Component(componentAudioPack).Category(errors.CategoryConfiguration).Build()

	// ErrDuplicateID marks a pack or clip that collides with one already loaded
	ErrDuplicateID = errors.New(nil).Component(componentAudioPack).Category(errors.CategoryConflict).Build()

	// ErrPathViolation marks a clip path that escapes its pack directory
	ErrPathViolation = errors.New(nil).Component(componentAudioPack).Category(errors.CategoryValidation).Build()

	// ErrUnsupportedFormat marks a file whose extension or size cannot be loaded
	ErrUnsupportedFormat = audioclip.ErrUnsupported

	// ErrClipLoad marks a clip that failed to decode or open
	ErrClipLoad = audioclip.ErrDecode
)

func newPackError(err error, category errors.ErrorCategory, packPath string) *errors.EnhancedError {
	return errors.New(err).
		Component(componentAudioPack).
		Category(category).
		Context("pack_path", packPath).
		Build()
}
