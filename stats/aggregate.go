package stats

import (
	"github.com/AlexCSalinas/r-UofM-Ranked/models"
)

const defaultCommentCap = 20

// Aggregator folds raw submission and comment records into per-user
// accumulators. It is purely additive: duplicate records supplied by the
// fetch layer are counted again, and deduplication is the fetcher's job.
type Aggregator struct {
	commentCap int
}

// NewAggregator creates an aggregator. commentCap bounds how many comments
// of each submission's comment list are folded; <=0 selects the default.
func NewAggregator(commentCap int) *Aggregator {
	if commentCap <= 0 {
		commentCap = defaultCommentCap
	}
	return &Aggregator{commentCap: commentCap}
}

// Aggregate builds the per-author accumulator mapping for one collection
// run. commentLists holds each submission's comment list; lists are folded
// up to the configured cap. Events without an author (deleted accounts)
// contribute nothing.
func (a *Aggregator) Aggregate(submissions []models.Submission, commentLists [][]models.Comment) map[string]*models.ContributorStats {
	contributors := make(map[string]*models.ContributorStats)

	for _, submission := range submissions {
		a.addSubmission(contributors, submission)
	}

	for _, comments := range commentLists {
		capped := comments
		if len(capped) > a.commentCap {
			capped = capped[:a.commentCap]
		}
		for _, comment := range capped {
			a.addComment(contributors, comment)
		}
	}

	return contributors
}

func (a *Aggregator) addSubmission(contributors map[string]*models.ContributorStats, submission models.Submission) {
	if submission.Author == "" {
		return
	}

	stats, exists := contributors[submission.Author]
	if !exists {
		stats = &models.ContributorStats{}
		contributors[submission.Author] = stats
	}

	stats.PostCount++
	stats.PostKarma += submission.Score
	stats.AwardsReceived += awardTotal(submission.Awards)
	touchLastActive(stats, submission.CreatedUTC)
}

func (a *Aggregator) addComment(contributors map[string]*models.ContributorStats, comment models.Comment) {
	if comment.Author == "" {
		return
	}

	stats, exists := contributors[comment.Author]
	if !exists {
		stats = &models.ContributorStats{}
		contributors[comment.Author] = stats
	}

	stats.CommentCount++
	stats.CommentKarma += comment.Score
	stats.AwardsReceived += awardTotal(comment.Awards)
	touchLastActive(stats, comment.CreatedUTC)
}

// touchLastActive keeps the maximum timestamp seen, so the result is the
// same regardless of the order records arrive in.
func touchLastActive(stats *models.ContributorStats, createdUTC float64) {
	if createdUTC > stats.LastActive {
		stats.LastActive = createdUTC
	}
}

func awardTotal(awards []models.Award) int {
	total := 0
	for _, award := range awards {
		total += award.Count
	}
	return total
}
