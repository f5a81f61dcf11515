package stats

import (
	"sort"

	"github.com/AlexCSalinas/r-UofM-Ranked/models"
)

const (
	// Rising-star thresholds: newly ranked near the top, a big climb, or a
	// long run of consecutive appearances.
	risingNewRankCeiling  = 15
	risingClimbThreshold  = 5
	risingStreakThreshold = 5
	risingStarLimit       = 5
)

// Diff assigns rank-history fields to the current ranking by comparing it
// against the most recent prior snapshot. previous is nil on the first run
// for a subreddit (cold start): everyone is "new" with streak 1.
//
// Previous ranks are re-derived by re-sorting the prior snapshot's stored
// contributors with the same ranking key, not assumed pre-sorted. Streaks
// read the prior snapshot's stored streak value and add one; an absence
// resets the streak to 1 on the next appearance. Days with no run at all
// are not detected, so a streak can outlive the calendar days it covers.
func Diff(current []RankedEntry, previous *models.Snapshot, mode Mode) map[string]models.RankedContributor {
	contributors := make(map[string]models.RankedContributor, len(current))

	if previous == nil || len(previous.Contributors) == 0 {
		for i, entry := range current {
			stats := entry.Stats
			stats.CurrentRank = i + 1
			stats.PreviousRank = 0
			stats.PositionChange = models.NewEntry()
			stats.Streak = 1
			contributors[entry.Username] = stats
		}
		return contributors
	}

	prevEntries := Rank(Entries(previous.Contributors), 0, mode)
	prevRanks := make(map[string]int, len(prevEntries))
	for i, entry := range prevEntries {
		prevRanks[entry.Username] = i + 1
	}

	for i, entry := range current {
		stats := entry.Stats
		stats.CurrentRank = i + 1

		prevRank, seen := prevRanks[entry.Username]
		if !seen {
			stats.PreviousRank = 0
			stats.PositionChange = models.NewEntry()
			stats.Streak = 1
		} else {
			stats.PreviousRank = prevRank
			stats.PositionChange = models.Moved(prevRank - stats.CurrentRank)
			stats.Streak = previous.Contributors[entry.Username].Streak + 1
			if stats.Streak < 1 {
				stats.Streak = 1
			}
		}

		contributors[entry.Username] = stats
	}

	return contributors
}

// RisingStars picks out notable contributors from a diffed snapshot:
// new entries ranked 15 or better, climbs of at least 5 places, or streaks
// of at least 5 runs. Results are ordered by current rank, at most 5.
func RisingStars(contributors map[string]models.RankedContributor) []models.RisingStar {
	stars := make([]models.RisingStar, 0)

	for username, stats := range contributors {
		if !qualifiesAsRisingStar(stats) {
			continue
		}
		stars = append(stars, models.RisingStar{
			Username:       username,
			CurrentRank:    stats.CurrentRank,
			PositionChange: stats.PositionChange,
			Streak:         stats.Streak,
			TotalActivity:  stats.TotalActivity,
		})
	}

	sort.Slice(stars, func(i, j int) bool {
		return stars[i].CurrentRank < stars[j].CurrentRank
	})

	if len(stars) > risingStarLimit {
		stars = stars[:risingStarLimit]
	}
	return stars
}

func qualifiesAsRisingStar(stats models.RankedContributor) bool {
	if stats.PositionChange.New && stats.CurrentRank <= risingNewRankCeiling {
		return true
	}
	if !stats.PositionChange.New && stats.PositionChange.Delta >= risingClimbThreshold {
		return true
	}
	return stats.Streak >= risingStreakThreshold
}
