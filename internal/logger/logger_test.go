package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/modaudio/internal/logger"
)

func TestLogLevels(t *testing.T) {
	testCases := []struct {
		name          string
		level         logger.LogLevel
		logFunc       func(l logger.Logger, msg string)
		shouldContain bool
	}{
		{"debug at debug level", logger.LogLevelDebug, func(l logger.Logger, m string) { l.Debug(m) }, true},
		{"debug at info level", logger.LogLevelInfo, func(l logger.Logger, m string) { l.Debug(m) }, false},
		{"trace at debug level", logger.LogLevelDebug, func(l logger.Logger, m string) { l.Trace(m) }, false},
		{"trace at trace level", logger.LogLevelTrace, func(l logger.Logger, m string) { l.Trace(m) }, true},
		{"warn at info level", logger.LogLevelInfo, func(l logger.Logger, m string) { l.Warn(m) }, true},
		{"info at error level", logger.LogLevelError, func(l logger.Logger, m string) { l.Info(m) }, false},
		{"explicit warn at warn level", logger.LogLevelWarn, func(l logger.Logger, m string) { l.Log(logger.LogLevelWarn, m) }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			l := logger.NewSlogLogger(buf, tc.level, time.UTC)

			tc.logFunc(l, "level probe")

			assert.Equal(t, tc.shouldContain, strings.Contains(buf.String(), "level probe"))
		})
	}
}

func TestModuleAndFields(t *testing.T) {
	buf := &bytes.Buffer{}
	base := logger.NewSlogLogger(buf, logger.LogLevelDebug, time.UTC)

	l := base.Module("routing").Module("overlay").With(logger.String("pack_id", "alpha"))
	l.Info("Overlay spawned",
		logger.Float64("volume", 0.123456),
		logger.Int("count", 2),
		logger.Bool("relative", true),
		logger.Error(errors.New("boom")),
		logger.Duration("elapsed", 1500*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "module=routing.overlay")
	assert.Contains(t, out, "pack_id=alpha")
	assert.Contains(t, out, "volume=0.123")
	assert.Contains(t, out, "count=2")
	assert.Contains(t, out, "relative=true")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "elapsed=1.5s")
	assert.NotContains(t, out, "time=")
}

func TestWithDoesNotLeakIntoParent(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := logger.NewSlogLogger(buf, logger.LogLevelInfo, time.UTC).Module("audiopack")
	_ = parent.With(logger.String("clip", "hit"))

	parent.Info("plain")
	assert.NotContains(t, buf.String(), "clip=hit")
}

func TestCentralLoggerFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "modaudio.log")

	cl, err := logger.NewCentralLogger(&logger.LoggingConfig{
		DefaultLevel: "debug",
		Timezone:     "UTC",
		Console:      &logger.ConsoleOutput{Enabled: false},
		FileOutput:   &logger.FileOutput{Enabled: true, Path: logPath, Level: "debug"},
		ModuleLevels: map[string]string{"quiet": "error"},
	})
	require.NoError(t, err)

	cl.Module("audiopack").Info("Loaded audio pack", logger.String("pack_id", "alpha"))
	cl.Module("quiet").Info("should be filtered")
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "Loaded audio pack", record["msg"])
	assert.Equal(t, "audiopack", record["module"])
	assert.Equal(t, "alpha", record["pack_id"])
}

func TestCentralLoggerRejectsBadTimezone(t *testing.T) {
	_, err := logger.NewCentralLogger(&logger.LoggingConfig{Timezone: "Not/AZone"})
	assert.Error(t, err)

	_, err = logger.NewCentralLogger(nil)
	assert.Error(t, err)
}
