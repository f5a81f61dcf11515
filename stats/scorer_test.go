package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AlexCSalinas/r-UofM-Ranked/models"
)

func TestScoreEngagementFormula(t *testing.T) {
	contributors := map[string]*models.ContributorStats{
		"alice": {
			PostCount:      2,
			PostKarma:      30,
			CommentKarma:   5,
			AwardsReceived: 1,
			LastActive:     1700000000,
		},
	}

	scored := ScoreEngagement(contributors, DefaultWeights)

	// 30*1.5 + 5*1.0 + 1*10 = 60
	alice := scored["alice"]
	assert.Equal(t, 60.0, alice.EngagementScore)
	assert.Equal(t, 35, alice.TotalKarma)
	assert.Equal(t, 2, alice.TotalActivity)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, alice.LastActive)
}

func TestScoreEngagementCustomWeights(t *testing.T) {
	contributors := map[string]*models.ContributorStats{
		"alice": {PostKarma: 10, CommentKarma: 10, AwardsReceived: 2},
	}

	scored := ScoreEngagement(contributors, ScoreWeights{PostKarma: 2, CommentKarma: 0.5, AwardBonus: 1})

	assert.Equal(t, 27.0, scored["alice"].EngagementScore)
}

func TestScoreActivity(t *testing.T) {
	contributors := map[string]*models.ContributorStats{
		"alice": {PostCount: 3, CommentCount: 4, PostKarma: 100, LastActive: 1700000000},
		"bob":   {CommentCount: 1},
	}

	scored := ScoreActivity(contributors)

	assert.Equal(t, 7, scored["alice"].TotalActivity)
	assert.Equal(t, 1, scored["bob"].TotalActivity)
	// activity mode carries no weighted score
	assert.Zero(t, scored["alice"].EngagementScore)
}

func TestScoreEmptyInput(t *testing.T) {
	assert.Empty(t, ScoreEngagement(map[string]*models.ContributorStats{}, DefaultWeights))
	assert.Empty(t, ScoreActivity(nil))
}

func TestFormatEpochDate(t *testing.T) {
	assert.Equal(t, "", formatEpochDate(0))
	assert.NotEmpty(t, formatEpochDate(1700000000))
}
