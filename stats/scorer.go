package stats

import (
	"time"

	"github.com/AlexCSalinas/r-UofM-Ranked/models"
)

const dateLayout = "2006-01-02"

// ScoreWeights holds the engagement scoring constants. The defaults are
// empirical rather than principled, so they stay configurable.
type ScoreWeights struct {
	PostKarma    float64
	CommentKarma float64
	AwardBonus   float64
}

// DefaultWeights are the weights used when none are configured.
var DefaultWeights = ScoreWeights{
	PostKarma:    1.5,
	CommentKarma: 1.0,
	AwardBonus:   10.0,
}

// ScoreEngagement derives the long-window engagement view of each
// accumulator: weighted score, total karma, and a calendar-date last-active.
// An empty accumulator mapping yields an empty result.
func ScoreEngagement(contributors map[string]*models.ContributorStats, weights ScoreWeights) map[string]models.RankedContributor {
	scored := make(map[string]models.RankedContributor, len(contributors))

	for username, stats := range contributors {
		scored[username] = models.RankedContributor{
			PostCount:      stats.PostCount,
			CommentCount:   stats.CommentCount,
			PostKarma:      stats.PostKarma,
			CommentKarma:   stats.CommentKarma,
			TotalKarma:     stats.PostKarma + stats.CommentKarma,
			AwardsReceived: stats.AwardsReceived,
			EngagementScore: float64(stats.PostKarma)*weights.PostKarma +
				float64(stats.CommentKarma)*weights.CommentKarma +
				float64(stats.AwardsReceived)*weights.AwardBonus,
			TotalActivity: stats.PostCount + stats.CommentCount,
			LastActive:    formatEpochDate(stats.LastActive),
		}
	}

	return scored
}

// ScoreActivity derives the short-window view: raw post+comment activity
// instead of a weighted score. An empty mapping yields an empty result.
func ScoreActivity(contributors map[string]*models.ContributorStats) map[string]models.RankedContributor {
	scored := make(map[string]models.RankedContributor, len(contributors))

	for username, stats := range contributors {
		scored[username] = models.RankedContributor{
			PostCount:      stats.PostCount,
			CommentCount:   stats.CommentCount,
			PostKarma:      stats.PostKarma,
			CommentKarma:   stats.CommentKarma,
			TotalKarma:     stats.PostKarma + stats.CommentKarma,
			AwardsReceived: stats.AwardsReceived,
			TotalActivity:  stats.PostCount + stats.CommentCount,
			LastActive:     formatEpochDate(stats.LastActive),
		}
	}

	return scored
}

// formatEpochDate renders epoch seconds as "YYYY-MM-DD". The layout is
// lexicographically date-ordered, so the strings compare correctly as dates.
func formatEpochDate(epoch float64) string {
	if epoch == 0 {
		return ""
	}
	return time.Unix(int64(epoch), 0).Format(dateLayout)
}
