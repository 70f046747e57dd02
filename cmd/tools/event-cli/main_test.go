package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/horde-survivors/internal/eventbus"
)

func TestParseStringList(t *testing.T) {
	assert.Nil(t, parseStringList(""))
	assert.Equal(t, []string{"MobKilled", "LevelUp"}, parseStringList(" MobKilled, ,LevelUp "))
}

func TestParseSinceTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseSinceTime("30m", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-30*time.Minute), got)

	got, err = parseSinceTime("2024-04-30T10:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 30, 10, 0, 0, 0, time.UTC), got)

	got, err = parseSinceTime("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	_, err = parseSinceTime("yesterday", now)
	assert.Error(t, err)
}

func TestMatches(t *testing.T) {
	ev := &eventbus.Envelope{EventType: eventbus.TypeMobKilled, CorrelationID: "run-1"}
	assert.True(t, matches(ev, eventbus.Filter{}, ""))
	assert.True(t, matches(ev, eventbus.Filter{Types: []string{eventbus.TypeLevelUp, eventbus.TypeMobKilled}}, "run-1"))
	assert.False(t, matches(ev, eventbus.Filter{}, "run-2"))
	assert.False(t, matches(ev, eventbus.Filter{Types: []string{eventbus.TypeLevelUp}}, ""))
}

func TestFormatEvent(t *testing.T) {
	ev := &eventbus.Envelope{
		Timestamp:     time.Date(2024, 5, 1, 8, 30, 15, 0, time.UTC),
		Source:        "survivor",
		EventType:     eventbus.TypeLevelUp,
		CorrelationID: "run-7",
		Payload:       json.RawMessage(`{"level":2}`),
	}
	assert.Equal(t, `[08:30:15] survivor [LevelUp] run=run-7 {"level":2}`, formatEvent(ev))
}

func TestFormatStats_Sorted(t *testing.T) {
	lines := formatStats(map[string]int{"WaveCleared": 2, "LevelUp": 5})
	assert.Equal(t, []string{"  LevelUp: 5 events", "  WaveCleared: 2 events"}, lines)
}
