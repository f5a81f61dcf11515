package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionChangeJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    PositionChange
		expected string
	}{
		{name: "new entry", value: NewEntry(), expected: `"new"`},
		{name: "moved up", value: Moved(3), expected: `3`},
		{name: "moved down", value: Moved(-2), expected: `-2`},
		{name: "unchanged", value: Moved(0), expected: `0`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(data))

			var decoded PositionChange
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tc.value, decoded)
		})
	}
}

func TestPositionChangeJSONRejectsUnknownMarker(t *testing.T) {
	var decoded PositionChange
	assert.Error(t, json.Unmarshal([]byte(`"stale"`), &decoded))
}

func TestPositionChangeInsideContributor(t *testing.T) {
	contributor := RankedContributor{
		CurrentRank:    2,
		PreviousRank:   4,
		PositionChange: Moved(2),
		Streak:         3,
	}

	data, err := json.Marshal(contributor)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"position_change":2`)

	contributor.PositionChange = NewEntry()
	data, err = json.Marshal(contributor)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"position_change":"new"`)
}
