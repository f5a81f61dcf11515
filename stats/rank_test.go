package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AlexCSalinas/r-UofM-Ranked/models"
)

func activityEntry(username string, activity int) RankedEntry {
	return RankedEntry{
		Username: username,
		Stats:    models.RankedContributor{TotalActivity: activity},
	}
}

func TestRankOrdersDescending(t *testing.T) {
	entries := []RankedEntry{
		activityEntry("low", 1),
		activityEntry("high", 10),
		activityEntry("mid", 5),
	}

	ranked := Rank(entries, 10, ModeActivity)

	assert.Equal(t, []string{"high", "mid", "low"}, usernames(ranked))
}

func TestRankTruncatesToLimit(t *testing.T) {
	entries := []RankedEntry{
		activityEntry("a", 3),
		activityEntry("b", 2),
		activityEntry("c", 1),
	}

	assert.Len(t, Rank(entries, 2, ModeActivity), 2)
	assert.Len(t, Rank(entries, 5, ModeActivity), 3)
	assert.Len(t, Rank(nil, 5, ModeActivity), 0)
}

func TestRankIsStableOnTies(t *testing.T) {
	entries := []RankedEntry{
		activityEntry("first", 5),
		activityEntry("second", 5),
		activityEntry("third", 5),
		activityEntry("winner", 9),
	}

	ranked := Rank(entries, 10, ModeActivity)

	// tied entries keep their input order
	assert.Equal(t, []string{"winner", "first", "second", "third"}, usernames(ranked))
}

func TestRankEngagementMode(t *testing.T) {
	entries := []RankedEntry{
		{Username: "a", Stats: models.RankedContributor{EngagementScore: 1.5}},
		{Username: "b", Stats: models.RankedContributor{EngagementScore: 60}},
	}

	ranked := Rank(entries, 10, ModeEngagement)

	assert.Equal(t, []string{"b", "a"}, usernames(ranked))
}

func TestEntriesAreDeterministic(t *testing.T) {
	scored := map[string]models.RankedContributor{
		"charlie": {TotalActivity: 1},
		"alice":   {TotalActivity: 1},
		"bob":     {TotalActivity: 1},
	}

	for trial := 0; trial < 5; trial++ {
		assert.Equal(t, []string{"alice", "bob", "charlie"}, usernames(Entries(scored)))
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	entries := []RankedEntry{
		activityEntry("low", 1),
		activityEntry("high", 10),
	}

	Rank(entries, 10, ModeActivity)

	assert.Equal(t, "low", entries[0].Username)
}

func usernames(entries []RankedEntry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Username)
	}
	return names
}
