package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/modaudio/internal/observability/metrics"
)

func TestMetricsSnapshot(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	require.NotNil(t, m.Routing)

	m.Routing.RecordPlay(metrics.OutcomeReplaced)
	m.Routing.RecordReplacement("local://a/modaudio.config.json")
	m.Routing.RecordReload(metrics.ReloadSoft, 0.01)
	m.Routing.UpdateTrackedSources(2)

	snap, err := m.Snapshot()
	require.NoError(t, err)

	assert.InDelta(t, 1.0, snap["modaudio_plays_total{outcome=replaced}"], 1e-9)
	assert.InDelta(t, 1.0, snap["modaudio_replacements_total{pack=local://a/modaudio.config.json}"], 1e-9)
	assert.InDelta(t, 1.0, snap["modaudio_reload_duration_seconds{kind=soft}"], 1e-9)
	assert.InDelta(t, 2.0, snap["modaudio_tracked_sources"], 1e-9)
}

func TestFormatLabels(t *testing.T) {
	assert.Empty(t, formatLabels(nil))
}
