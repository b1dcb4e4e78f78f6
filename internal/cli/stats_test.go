package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsHuman(t *testing.T) {
	e := newTestEngine(t, statusLog)

	cmd := &StatsCommand{Window: "all", globals: &GlobalFlags{}, version: "1.0.0"}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(e, time.Now()))
	})

	assert.Contains(t, out, "Listening Stats (all)")
	assert.Contains(t, out, "Low")
	assert.Contains(t, out, "Ida")
}

func TestStatsJSON(t *testing.T) {
	e := newTestEngine(t, statusLog)

	cmd := &StatsCommand{Window: "all", globals: &GlobalFlags{JSON: true}, version: "1.0.0"}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(e, time.Now()))
	})

	var got statsJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.ValidPlays)
	assert.NotEmpty(t, got.TopArtists)
}

func TestStatsUnknownWindow(t *testing.T) {
	e := newTestEngine(t, statusLog)

	cmd := &StatsCommand{Window: "fortnight", globals: &GlobalFlags{}, version: "1.0.0"}
	err := cmd.executeWith(e, time.Now())
	assert.Error(t, err)
}

func TestStatsWindowFiltersOutOldPlays(t *testing.T) {
	e := newTestEngine(t, statusLog)

	// All fixture plays are from 2023; a 2026 clock leaves the week empty.
	now := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	cmd := &StatsCommand{Window: "week", globals: &GlobalFlags{JSON: true}, version: "1.0.0"}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(e, now))
	})

	var got statsJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Zero(t, got.ValidPlays)
}
