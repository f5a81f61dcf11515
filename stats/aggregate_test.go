package stats

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexCSalinas/r-UofM-Ranked/models"
)

func TestAggregateSkipsDeletedAuthors(t *testing.T) {
	aggregator := NewAggregator(20)

	submissions := []models.Submission{
		{Author: "", Score: 100, CreatedUTC: 1700000000},
		{Author: "alice", Score: 10, CreatedUTC: 1700000100},
	}
	comments := [][]models.Comment{
		{
			{Author: "", Score: 50, CreatedUTC: 1700000200},
			{Author: "bob", Score: 5, CreatedUTC: 1700000300},
		},
	}

	contributors := aggregator.Aggregate(submissions, comments)

	assert.Len(t, contributors, 2)
	assert.Contains(t, contributors, "alice")
	assert.Contains(t, contributors, "bob")
	assert.NotContains(t, contributors, "")
}

func TestAggregateCounts(t *testing.T) {
	aggregator := NewAggregator(20)

	submissions := []models.Submission{
		{Author: "alice", Score: 10, CreatedUTC: 1700000000, Awards: []models.Award{{Count: 2}, {Count: 1}}},
		{Author: "alice", Score: -3, CreatedUTC: 1700000100},
	}
	comments := [][]models.Comment{
		{
			{Author: "alice", Score: 7, CreatedUTC: 1700000050},
			{Author: "bob", Score: -2, CreatedUTC: 1700000060, Awards: []models.Award{{Count: 1}}},
		},
	}

	contributors := aggregator.Aggregate(submissions, comments)

	alice := contributors["alice"]
	require.NotNil(t, alice)
	assert.Equal(t, 2, alice.PostCount)
	assert.Equal(t, 1, alice.CommentCount)
	assert.Equal(t, 7, alice.PostKarma)
	assert.Equal(t, 7, alice.CommentKarma)
	assert.Equal(t, 3, alice.AwardsReceived)

	bob := contributors["bob"]
	require.NotNil(t, bob)
	assert.Equal(t, 0, bob.PostCount)
	assert.Equal(t, 1, bob.CommentCount)
	assert.Equal(t, -2, bob.CommentKarma)
	assert.Equal(t, 1, bob.AwardsReceived)
}

func TestAggregateIsAdditiveOverDuplicates(t *testing.T) {
	aggregator := NewAggregator(20)

	submission := models.Submission{ID: "abc", Author: "alice", Score: 10, CreatedUTC: 1700000000}
	contributors := aggregator.Aggregate([]models.Submission{submission, submission}, nil)

	// dedup is the fetch layer's job; the same record supplied twice counts twice
	assert.Equal(t, 2, contributors["alice"].PostCount)
	assert.Equal(t, 20, contributors["alice"].PostKarma)
}

func TestAggregateCommentCap(t *testing.T) {
	aggregator := NewAggregator(2)

	comments := []models.Comment{
		{Author: "a", Score: 1, CreatedUTC: 1},
		{Author: "b", Score: 1, CreatedUTC: 2},
		{Author: "c", Score: 1, CreatedUTC: 3},
	}

	contributors := aggregator.Aggregate(nil, [][]models.Comment{comments})

	assert.Len(t, contributors, 2)
	assert.NotContains(t, contributors, "c")
}

func TestAggregateLastActiveOrderIndependent(t *testing.T) {
	timestamps := []float64{1700000300, 1700000100, 1700000500, 1700000200, 1700000400}

	submissions := make([]models.Submission, 0, len(timestamps))
	for i, ts := range timestamps {
		submissions = append(submissions, models.Submission{
			ID:         string(rune('a' + i)),
			Author:     "alice",
			Score:      1,
			CreatedUTC: ts,
		})
	}

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]models.Submission, len(submissions))
		copy(shuffled, submissions)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		contributors := NewAggregator(20).Aggregate(shuffled, nil)
		assert.Equal(t, float64(1700000500), contributors["alice"].LastActive,
			"last_active must be the max timestamp regardless of input order")
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	contributors := NewAggregator(20).Aggregate(nil, nil)
	assert.NotNil(t, contributors)
	assert.Empty(t, contributors)
}
