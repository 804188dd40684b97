package validate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/modaudio/internal/conf"
	"github.com/tphakala/modaudio/internal/errors"
)

func testSettings(root string) *conf.Settings {
	settings := conf.DefaultSettings()
	settings.Packs.Roots = []conf.PackRoot{{Label: "test", Path: root}}
	return settings
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, root string)
		opts     options
		category errors.ErrorCategory
		output   string
	}{
		{
			name:     "no packs",
			setup:    func(t *testing.T, root string) {},
			category: errors.CategoryNotFound,
		},
		{
			name: "legacy pack with a missing clip",
			setup: func(t *testing.T, root string) {
				writeFile(t, filepath.Join(root, "old", "__routes.txt"), "hit = missing_clip\n")
			},
			output: "test://old/__routes.txt",
		},
		{
			name: "strict mode fails on warnings",
			setup: func(t *testing.T, root string) {
				writeFile(t, filepath.Join(root, "broken", "modaudio.config.json"), "{not json")
				writeFile(t, filepath.Join(root, "old", "__routes.txt"), "hit = missing_clip\n")
			},
			opts:     options{strict: true},
			category: errors.CategoryValidation,
			output:   "warning(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tt.setup(t, root)

			var out bytes.Buffer
			err := run(context.Background(), &out, testSettings(root), &tt.opts)
			if tt.category != "" {
				require.Error(t, err)
				assert.True(t, errors.IsCategory(err, tt.category), "got %v", err)
			} else {
				require.NoError(t, err)
			}
			if tt.output != "" {
				assert.Contains(t, out.String(), tt.output)
			}
		})
	}
}
