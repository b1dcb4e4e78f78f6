package cli

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/spindle/internal/metrics"
)

func generateFixtureLog() string {
	juneLastYear := time.Date(2023, time.June, 15, 12, 0, 0, 0, time.UTC).Unix()
	juneThisYear := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC).Unix()

	trackA := "/<HDD0>/Music/Low/Trust/02 Canada.mp3"
	trackB := "/<HDD0>/Music/Ida/Heart Like a River/03 Laurel Blues.mp3"

	log := ""
	for i := int64(0); i < 3; i++ {
		log += fmt.Sprintf("%d:180000:200000:%s\n", juneLastYear+i*3600, trackA)
	}
	for i := int64(0); i < 2; i++ {
		log += fmt.Sprintf("%d:180000:200000:%s\n", juneThisYear+i*3600, trackB)
	}
	return log
}

func TestGenerateWritesPlaylistsAndMetrics(t *testing.T) {
	e := newTestEngine(t, generateFixtureLog())
	now := time.Date(2024, time.June, 20, 12, 0, 0, 0, time.Local)

	cmd := &GenerateCommand{globals: &GlobalFlags{}, version: "1.0.0"}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(e, now, rand.New(rand.NewSource(1))))
	})

	dir := e.layout.PlaylistDir()
	for _, file := range []string{
		"(Dynamic) On Repeat.m3u8",
		"(Dynamic) Time Travel 2023.m3u8",
		"(Dynamic) Time Travel 2024.m3u8",
		"(Dynamic) Flashback - June.m3u8",
	} {
		_, err := os.Stat(filepath.Join(dir, file))
		assert.NoError(t, err, file)
	}

	// Disabled by default, must not appear.
	_, err := os.Stat(filepath.Join(dir, "(Dynamic) Forgotten Favorites.m3u8"))
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(e.layout.MetricsPath())
	require.NoError(t, err)
	var snapshot []metrics.Track
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Len(t, snapshot, 2)

	assert.Contains(t, out, "On Repeat")
	assert.Contains(t, out, "Metrics snapshot")
}

func TestGenerateJSON(t *testing.T) {
	e := newTestEngine(t, generateFixtureLog())
	now := time.Date(2024, time.June, 20, 12, 0, 0, 0, time.Local)

	cmd := &GenerateCommand{globals: &GlobalFlags{JSON: true}, version: "1.0.0"}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(e, now, rand.New(rand.NewSource(1))))
	})

	var got generateJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 5, got.Events)
	assert.NotEmpty(t, got.Playlists)
	assert.Equal(t, e.layout.MetricsPath(), got.Metrics)
}

func TestGenerateMetricsDisabled(t *testing.T) {
	e := newTestEngine(t, generateFixtureLog())
	e.cfg.Metrics.Enabled = false
	now := time.Date(2024, time.June, 20, 12, 0, 0, 0, time.Local)

	cmd := &GenerateCommand{globals: &GlobalFlags{}, version: "1.0.0"}
	captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(e, now, rand.New(rand.NewSource(1))))
	})

	_, err := os.Stat(e.layout.MetricsPath())
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateMissingLogIsError(t *testing.T) {
	e := newTestEngine(t, "")

	cmd := &GenerateCommand{globals: &GlobalFlags{}, version: "1.0.0"}
	err := cmd.executeWith(e, time.Now(), rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}
