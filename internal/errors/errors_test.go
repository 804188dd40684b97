package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaults(t *testing.T) {
	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
}

func TestCategoryDetection(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected ErrorCategory
	}{
		{"missing file", fmt.Errorf("open foo.wav: no such file or directory"), CategoryFileIO},
		{"invalid data", fmt.Errorf("invalid WAV header"), CategoryValidation},
		{"categorized", New(fmt.Errorf("x")).Category(CategoryClipLoad).Build(), CategoryClipLoad},
		{"plain", fmt.Errorf("boom"), CategoryGeneric},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ee := New(tc.err).Build()
			assert.Equal(t, tc.expected, ee.Category)
		})
	}
}

func TestSentinelMatchesByCategory(t *testing.T) {
	sentinel := New(nil).Component("audiopack").Category(CategoryConflict).Build()

	err := Newf("pack %s already loaded", "a").
		Component("audiopack").
		Category(CategoryConflict).
		Context("pack_id", "a").
		Build()

	assert.ErrorIs(t, err, sentinel)
	assert.True(t, IsCategory(err, CategoryConflict))
	assert.False(t, IsCategory(err, CategoryNotFound))

	wrapped := fmt.Errorf("loading: %w", err)
	assert.ErrorIs(t, wrapped, sentinel)
	assert.Equal(t, "a", err.GetContext()["pack_id"])
}

func TestErrorHooks(t *testing.T) {
	t.Cleanup(ClearErrorHooks)

	var seen []ErrorCategory
	AddErrorHook(func(ee *EnhancedError) {
		seen = append(seen, ee.Category)
	})

	// Nil-cause sentinels are not reported
	New(nil).Category(CategoryRouting).Build()
	New(fmt.Errorf("oops")).Category(CategoryRouting).Build()

	require.Len(t, seen, 1)
	assert.Equal(t, CategoryRouting, seen[0])
}

func TestFileContext(t *testing.T) {
	ee := New(fmt.Errorf("too big")).FileContext("/packs/a/music.FLAC", 5*1024*1024).Build()

	ctx := ee.GetContext()
	assert.Equal(t, "flac", ctx["file_extension"])
	assert.Equal(t, "medium", ctx["file_size_category"])
}
