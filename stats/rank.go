package stats

import (
	"sort"

	"github.com/AlexCSalinas/r-UofM-Ranked/models"
)

// Mode selects which field orders the ranking.
type Mode int

const (
	// ModeEngagement ranks by the weighted engagement score (long windows).
	ModeEngagement Mode = iota
	// ModeActivity ranks by raw post+comment activity (short windows).
	ModeActivity
)

// RankedEntry pairs a username with its scored stats in ranked order.
type RankedEntry struct {
	Username string
	Stats    models.RankedContributor
}

// Entries converts a scored mapping into a deterministic entry slice,
// ordered by username. Map iteration order is random in Go, so ranking
// needs a fixed input order for ties to resolve the same way every run.
func Entries(scored map[string]models.RankedContributor) []RankedEntry {
	usernames := make([]string, 0, len(scored))
	for username := range scored {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	entries := make([]RankedEntry, 0, len(scored))
	for _, username := range usernames {
		entries = append(entries, RankedEntry{Username: username, Stats: scored[username]})
	}
	return entries
}

// Rank stably sorts entries descending by the mode's key and truncates to
// limit. Ties keep their input order. The result length is
// min(limit, len(entries)); limit <= 0 means no truncation.
func Rank(entries []RankedEntry, limit int, mode Mode) []RankedEntry {
	ranked := make([]RankedEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		return rankKey(ranked[i].Stats, mode) > rankKey(ranked[j].Stats, mode)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func rankKey(stats models.RankedContributor, mode Mode) float64 {
	if mode == ModeActivity {
		return float64(stats.TotalActivity)
	}
	return stats.EngagementScore
}
