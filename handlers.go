package main

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/AlexCSalinas/r-UofM-Ranked/db"
	"github.com/AlexCSalinas/r-UofM-Ranked/models"
	"github.com/AlexCSalinas/r-UofM-Ranked/stats"
)

const maxHistoryDays = 7

// server bundles the stores the read API serves from.
type server struct {
	snapshots *db.SnapshotStore
	archive   *db.ContributorDB
	log       *logrus.Logger
}

// getSnapshot serves the latest daily snapshot for a subreddit. Store
// failures and missing data both degrade to a well-typed empty view; the
// serving layer never errors here.
func (s *server) getSnapshot(c echo.Context) error {
	subreddit := c.Param("subreddit")

	snapshot, err := s.snapshots.FindLatest(c.Request().Context(), subreddit)
	if err != nil {
		s.log.WithError(err).WithField("subreddit", subreddit).Error("Failed to load latest snapshot")
	}
	if err != nil || snapshot == nil {
		return c.JSON(http.StatusOK, emptySnapshotResponse(subreddit))
	}

	return c.JSON(http.StatusOK, models.SnapshotResponse{
		Subreddit:    snapshot.Subreddit,
		Contributors: snapshot.Contributors,
		Activity:     snapshot.Activity,
		RisingStars:  stats.RisingStars(snapshot.Contributors),
		LastUpdated:  snapshot.Date.Format(time.RFC3339),
	})
}

// getUserHistory serves a user's last week of ranked appearances. Unlike
// the other read endpoints this one surfaces store failures, since an empty
// history and a broken store look very different to the user.
func (s *server) getUserHistory(c echo.Context) error {
	subreddit := c.Param("subreddit")
	username := c.Param("username")

	snapshots, err := s.snapshots.FindRecentContaining(c.Request().Context(), subreddit, username, maxHistoryDays)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"subreddit": subreddit,
			"username":  username,
		}).Error("Failed to load user history")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, buildUserHistory(username, snapshots))
}

// getTopContributors serves the long-window engagement leaderboard from
// the SQLite archive; an empty list on store failure.
func (s *server) getTopContributors(c echo.Context) error {
	subreddit := c.Param("subreddit")

	contributors, err := s.archive.TopContributors(subreddit, 10)
	if err != nil {
		s.log.WithError(err).WithField("subreddit", subreddit).Error("Failed to load engagement leaderboard")
		contributors = make([]models.ArchivedContributor, 0)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"subreddit":    subreddit,
		"contributors": contributors,
	})
}

func emptySnapshotResponse(subreddit string) models.SnapshotResponse {
	return models.SnapshotResponse{
		Subreddit:    subreddit,
		Contributors: make(map[string]models.RankedContributor),
		Activity:     make([]models.HourActivity, 0),
		RisingStars:  make([]models.RisingStar, 0),
	}
}

// buildUserHistory folds the user's snapshots (most recent first) into the
// history view: per-day rows plus averages, best rank, and the
// post-to-comment ratio over the window.
func buildUserHistory(username string, snapshots []models.Snapshot) models.UserHistory {
	history := make([]models.UserHistoryDay, 0, len(snapshots))
	totalActivity := 0
	totalRank := 0
	totalPosts := 0
	totalComments := 0
	bestRank := 0

	for _, snapshot := range snapshots {
		contributor, exists := snapshot.Contributors[username]
		if !exists {
			continue
		}

		history = append(history, models.UserHistoryDay{
			Date:         snapshot.DateKey,
			Activity:     contributor.TotalActivity,
			Rank:         contributor.CurrentRank,
			PostCount:    contributor.PostCount,
			CommentCount: contributor.CommentCount,
		})

		totalActivity += contributor.TotalActivity
		totalRank += contributor.CurrentRank
		totalPosts += contributor.PostCount
		totalComments += contributor.CommentCount

		if bestRank == 0 || contributor.CurrentRank < bestRank {
			bestRank = contributor.CurrentRank
		}
	}

	result := models.UserHistory{
		Username: username,
		History:  history,
		Streak:   len(history),
		BestRank: bestRank,
	}

	if len(history) > 0 {
		result.AvgActivity = float64(totalActivity) / float64(len(history))
		result.AvgRank = float64(totalRank) / float64(len(history))
	}

	denominator := totalComments
	if denominator < 1 {
		denominator = 1
	}
	result.PostToCommentRatio = float64(totalPosts) / float64(denominator)

	return result
}
