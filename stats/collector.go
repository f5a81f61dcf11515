package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AlexCSalinas/r-UofM-Ranked/metrics"
	"github.com/AlexCSalinas/r-UofM-Ranked/models"
)

const (
	activityWindowDays = 7

	recentSubmissionLimit    = 500 // newest submissions scanned for the activity ranking
	recentCommentSubmissions = 200 // how many of those get their comments folded
	topSubmissionLimit       = 200 // top submissions scanned for histogram/engagement
	topCommentSubmissions    = 100 // how many of those get their comments folded

	histogramWindow  = "week"
	engagementWindow = "month"
)

// Fetcher yields bounded, time-filtered event listings from Reddit.
type Fetcher interface {
	FetchTopSubmissions(subreddit, window string, limit int) ([]models.Submission, error)
	FetchRecentSubmissions(subreddit string, limit int) ([]models.Submission, error)
	FetchComments(submission models.Submission, limit int) ([]models.Comment, error)
}

// SnapshotStore persists and recalls daily snapshots.
type SnapshotStore interface {
	FindLatest(ctx context.Context, subreddit string) (*models.Snapshot, error)
	Upsert(ctx context.Context, dateKey string, snapshot *models.Snapshot) error
}

// LeaderboardArchive persists the long-window engagement leaderboard.
type LeaderboardArchive interface {
	SaveContributors(subreddit string, contributors []models.ArchivedContributor) error
}

// CollectorOptions tunes the collection runs.
type CollectorOptions struct {
	Subreddits      []string
	Interval        time.Duration
	TopLimit        int
	EngagementLimit int
	CommentCap      int
	Weights         ScoreWeights
}

// Collector runs the fetch → aggregate → score → rank → diff → persist
// pipeline on a timer, one run per subreddit per tick. A run is synchronous
// and run-to-completion; nothing outside the run touches its accumulators.
type Collector struct {
	fetcher    Fetcher
	snapshots  SnapshotStore
	archive    LeaderboardArchive
	aggregator *Aggregator
	opts       CollectorOptions
	log        *logrus.Logger
}

// NewCollector creates a new collector
func NewCollector(fetcher Fetcher, snapshots SnapshotStore, archive LeaderboardArchive, opts CollectorOptions, log *logrus.Logger) *Collector {
	if opts.TopLimit <= 0 {
		opts.TopLimit = 20
	}
	if opts.EngagementLimit <= 0 {
		opts.EngagementLimit = 10
	}
	if opts.Weights == (ScoreWeights{}) {
		opts.Weights = DefaultWeights
	}

	return &Collector{
		fetcher:    fetcher,
		snapshots:  snapshots,
		archive:    archive,
		aggregator: NewAggregator(opts.CommentCap),
		opts:       opts,
		log:        log,
	}
}

// Start runs collection immediately and then on every tick until the
// context is cancelled.
func (c *Collector) Start(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	c.collectAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.collectAll(ctx)
		}
	}
}

// collectAll runs one collection cycle for every configured subreddit.
// Failures are per-subreddit: one subreddit failing does not stop the rest.
func (c *Collector) collectAll(ctx context.Context) {
	for _, subreddit := range c.opts.Subreddits {
		if ctx.Err() != nil {
			return
		}
		if err := c.CollectSubreddit(ctx, subreddit); err != nil {
			metrics.CollectionErrors.WithLabelValues(subreddit).Inc()
			c.log.WithError(err).WithField("subreddit", subreddit).Error("Collection run failed")
		}
	}
}

// CollectSubreddit performs one full collection run for one subreddit.
func (c *Collector) CollectSubreddit(ctx context.Context, subreddit string) error {
	start := time.Now()
	metrics.CollectionRuns.WithLabelValues(subreddit).Inc()

	c.log.WithField("subreddit", subreddit).Info("Starting collection run")

	submissions, commentLists := c.fetchActivityEvents(subreddit)
	contributors := c.aggregator.Aggregate(submissions, commentLists)
	ranked := Rank(Entries(ScoreActivity(contributors)), c.opts.TopLimit, ModeActivity)

	// The histogram has its own fetch; if it fails the ranking above still
	// gets persisted with a zero-filled histogram, and vice versa.
	histogram := c.buildActivityHistogram(subreddit)

	previous, err := c.snapshots.FindLatest(ctx, subreddit)
	if err != nil {
		return fmt.Errorf("failed to load previous snapshot: %w", err)
	}

	now := time.Now()
	snapshot := &models.Snapshot{
		Date:         now.UTC(),
		DateKey:      now.Format(dateLayout),
		Subreddit:    subreddit,
		Contributors: Diff(ranked, previous, ModeActivity),
		Activity:     histogram,
	}

	if err := c.snapshots.Upsert(ctx, snapshot.DateKey, snapshot); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	metrics.SnapshotWrites.Inc()

	if err := c.archiveEngagementLeaderboard(subreddit); err != nil {
		return err
	}

	metrics.ObserveCollectionDuration(start)

	c.log.WithFields(logrus.Fields{
		"subreddit":    subreddit,
		"date_key":     snapshot.DateKey,
		"contributors": len(snapshot.Contributors),
		"duration":     time.Since(start).String(),
	}).Info("Collection run complete")

	return nil
}

// fetchActivityEvents gathers the short-window event set: newest
// submissions inside the activity window plus the comment lists of the
// most recent of them. A fetch failure degrades that step to empty.
func (c *Collector) fetchActivityEvents(subreddit string) ([]models.Submission, [][]models.Comment) {
	cutoff := time.Now().AddDate(0, 0, -activityWindowDays)

	fetched, err := c.fetcher.FetchRecentSubmissions(subreddit, recentSubmissionLimit)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("recent_submissions").Inc()
		c.log.WithError(err).WithField("subreddit", subreddit).Error("Failed to fetch recent submissions")
		return nil, nil
	}

	submissions := make([]models.Submission, 0, len(fetched))
	for _, submission := range fetched {
		if submission.CreatedAt.Before(cutoff) {
			continue
		}
		submissions = append(submissions, submission)
	}

	commentLists := make([][]models.Comment, 0, recentCommentSubmissions)
	for i, submission := range submissions {
		if i >= recentCommentSubmissions {
			break
		}

		comments, err := c.fetcher.FetchComments(submission, c.aggregator.commentCap)
		if err != nil {
			metrics.FetchErrors.WithLabelValues("comments").Inc()
			c.log.WithError(err).WithFields(logrus.Fields{
				"subreddit":     subreddit,
				"submission_id": submission.ID,
			}).Warn("Failed to fetch comments, skipping submission")
			continue
		}

		inWindow := make([]models.Comment, 0, len(comments))
		for _, comment := range comments {
			if comment.CreatedAt.Before(cutoff) {
				continue
			}
			inWindow = append(inWindow, comment)
		}
		commentLists = append(commentLists, inWindow)
	}

	return submissions, commentLists
}

// buildActivityHistogram buckets the past week's top submissions and their
// comments by hour of day. On fetch failure the histogram comes back
// zero-filled rather than failing the run.
func (c *Collector) buildActivityHistogram(subreddit string) []models.HourActivity {
	submissions, err := c.fetcher.FetchTopSubmissions(subreddit, histogramWindow, topSubmissionLimit)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("top_submissions").Inc()
		c.log.WithError(err).WithField("subreddit", subreddit).Error("Failed to fetch submissions for histogram")
		return BuildHistogram(nil, nil)
	}

	commentLists := make([][]models.Comment, 0, topCommentSubmissions)
	for i, submission := range submissions {
		if i >= topCommentSubmissions {
			break
		}

		comments, err := c.fetcher.FetchComments(submission, c.aggregator.commentCap)
		if err != nil {
			metrics.FetchErrors.WithLabelValues("comments").Inc()
			c.log.WithError(err).WithFields(logrus.Fields{
				"subreddit":     subreddit,
				"submission_id": submission.ID,
			}).Warn("Failed to fetch comments for histogram, skipping submission")
			continue
		}
		commentLists = append(commentLists, comments)
	}

	return BuildHistogram(submissions, commentLists)
}

// archiveEngagementLeaderboard recomputes the long-window engagement
// leaderboard and upserts it into the SQLite archive. Fetch failures leave
// the previous leaderboard in place; a failed write propagates.
func (c *Collector) archiveEngagementLeaderboard(subreddit string) error {
	submissions, err := c.fetcher.FetchTopSubmissions(subreddit, engagementWindow, topSubmissionLimit)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("top_submissions").Inc()
		c.log.WithError(err).WithField("subreddit", subreddit).Error("Failed to fetch submissions for engagement leaderboard")
		return nil
	}

	commentLists := make([][]models.Comment, 0, topCommentSubmissions)
	for i, submission := range submissions {
		if i >= topCommentSubmissions {
			break
		}

		comments, err := c.fetcher.FetchComments(submission, c.aggregator.commentCap)
		if err != nil {
			metrics.FetchErrors.WithLabelValues("comments").Inc()
			c.log.WithError(err).WithFields(logrus.Fields{
				"subreddit":     subreddit,
				"submission_id": submission.ID,
			}).Warn("Failed to fetch comments for engagement leaderboard, skipping submission")
			continue
		}
		commentLists = append(commentLists, comments)
	}

	contributors := c.aggregator.Aggregate(submissions, commentLists)
	ranked := Rank(Entries(ScoreEngagement(contributors, c.opts.Weights)), c.opts.EngagementLimit, ModeEngagement)

	archived := make([]models.ArchivedContributor, 0, len(ranked))
	for _, entry := range ranked {
		archived = append(archived, models.ArchivedContributor{
			Username:        entry.Username,
			PostCount:       entry.Stats.PostCount,
			CommentCount:    entry.Stats.CommentCount,
			TotalKarma:      entry.Stats.TotalKarma,
			AwardsReceived:  entry.Stats.AwardsReceived,
			EngagementScore: entry.Stats.EngagementScore,
			LastActive:      entry.Stats.LastActive,
		})
	}

	if err := c.archive.SaveContributors(subreddit, archived); err != nil {
		return fmt.Errorf("failed to archive engagement leaderboard: %w", err)
	}

	return nil
}
