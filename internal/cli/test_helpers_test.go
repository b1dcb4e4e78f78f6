package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/spindle/internal/config"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestEngine wires an engine over a temp drive. logContent, when
// non-empty, becomes the drive's playback log.
func newTestEngine(t *testing.T, logContent string) *engine {
	t.Helper()

	drive := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(drive, ".rockbox"), 0755))
	if logContent != "" {
		logPath := filepath.Join(drive, ".rockbox", "playback.log")
		require.NoError(t, os.WriteFile(logPath, []byte(logContent), 0644))
	}

	cfg := config.DefaultConfig()
	cfg.Device.Drive = drive
	cfg.State.Dir = t.TempDir()

	e, err := newEngineWith(cfg, &GlobalFlags{})
	require.NoError(t, err)
	return e
}
