package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexCSalinas/r-UofM-Ranked/models"
)

func historySnapshot(dateKey string, contributor models.RankedContributor) models.Snapshot {
	return models.Snapshot{
		DateKey:   dateKey,
		Subreddit: "uofm",
		Contributors: map[string]models.RankedContributor{
			"alice": contributor,
		},
	}
}

func TestBuildUserHistory(t *testing.T) {
	snapshots := []models.Snapshot{
		historySnapshot("2025-03-03", models.RankedContributor{
			TotalActivity: 6, CurrentRank: 2, PostCount: 2, CommentCount: 4,
		}),
		historySnapshot("2025-03-02", models.RankedContributor{
			TotalActivity: 4, CurrentRank: 5, PostCount: 1, CommentCount: 3,
		}),
		historySnapshot("2025-03-01", models.RankedContributor{
			TotalActivity: 2, CurrentRank: 8, PostCount: 1, CommentCount: 1,
		}),
	}

	history := buildUserHistory("alice", snapshots)

	require.Len(t, history.History, 3)
	assert.Equal(t, "2025-03-03", history.History[0].Date)
	assert.Equal(t, 3, history.Streak)
	assert.Equal(t, 4.0, history.AvgActivity)
	assert.Equal(t, 5.0, history.AvgRank)
	assert.Equal(t, 2, history.BestRank)
	assert.Equal(t, 0.5, history.PostToCommentRatio)
}

func TestBuildUserHistoryNoData(t *testing.T) {
	history := buildUserHistory("ghost", nil)

	assert.Empty(t, history.History)
	assert.Zero(t, history.Streak)
	assert.Zero(t, history.AvgActivity)
	assert.Zero(t, history.AvgRank)
	assert.Zero(t, history.BestRank, "best rank is 0 when there is no history")
	assert.Zero(t, history.PostToCommentRatio)
}

func TestBuildUserHistoryZeroComments(t *testing.T) {
	snapshots := []models.Snapshot{
		historySnapshot("2025-03-01", models.RankedContributor{
			TotalActivity: 3, CurrentRank: 1, PostCount: 3, CommentCount: 0,
		}),
	}

	history := buildUserHistory("alice", snapshots)

	// denominator clamps to 1 so the ratio never divides by zero
	assert.Equal(t, 3.0, history.PostToCommentRatio)
}

func TestEmptySnapshotResponse(t *testing.T) {
	response := emptySnapshotResponse("uofm")

	assert.Equal(t, "uofm", response.Subreddit)
	assert.NotNil(t, response.Contributors)
	assert.NotNil(t, response.Activity)
	assert.NotNil(t, response.RisingStars)
	assert.Empty(t, response.Contributors)
}
