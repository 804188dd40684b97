package clips

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipsFilter(t *testing.T) {
	cmd := Command()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--filter", "WOLF"})

	require.NoError(t, cmd.Execute())

	lines := strings.Fields(out.String())
	require.NotEmpty(t, lines)
	assert.Contains(t, lines, "_wolfHowl")
	for _, name := range lines {
		assert.Contains(t, strings.ToLower(name), "wolf")
	}
}
