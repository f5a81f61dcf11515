package models

import (
	"time"
)

// Award represents a single award type attached to a submission or comment.
// Count is the number of times that award was given.
type Award struct {
	Count int `json:"count" bson:"count"`
}

// Submission represents a Reddit submission (post)
type Submission struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"` // empty when the account was deleted/removed
	Subreddit   string    `json:"subreddit"`
	Score       int       `json:"score"`
	CreatedUTC  float64   `json:"created_utc"`
	CreatedAt   time.Time `json:"created_at"`
	NumComments int       `json:"num_comments"`
	Permalink   string    `json:"permalink"`
	Awards      []Award   `json:"awards,omitempty"`
}

// Comment represents a Reddit comment on a submission
type Comment struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"` // empty when the account was deleted/removed
	Score      int       `json:"score"`
	CreatedUTC float64   `json:"created_utc"`
	CreatedAt  time.Time `json:"created_at"`
	Awards     []Award   `json:"awards,omitempty"`
}

// ContributorStats accumulates one user's activity over a single collection
// run. Counts and award sums never go negative; karma can.
type ContributorStats struct {
	PostCount      int
	CommentCount   int
	PostKarma      int
	CommentKarma   int
	AwardsReceived int
	LastActive     float64 // epoch seconds of the most recent event seen
}

// RankedContributor is the scored, read-only view of a contributor as it is
// ranked and persisted. EngagementScore is filled in engagement mode,
// TotalActivity in activity mode.
type RankedContributor struct {
	PostCount       int            `json:"post_count" bson:"post_count"`
	CommentCount    int            `json:"comment_count" bson:"comment_count"`
	PostKarma       int            `json:"post_karma" bson:"post_karma"`
	CommentKarma    int            `json:"comment_karma" bson:"comment_karma"`
	TotalKarma      int            `json:"total_karma" bson:"total_karma"`
	AwardsReceived  int            `json:"awards_received" bson:"awards_received"`
	EngagementScore float64        `json:"engagement_score,omitempty" bson:"engagement_score,omitempty"`
	TotalActivity   int            `json:"total_activity" bson:"total_activity"`
	LastActive      string         `json:"last_active" bson:"last_active"` // "YYYY-MM-DD"
	CurrentRank     int            `json:"current_rank" bson:"current_rank"`
	PreviousRank    int            `json:"previous_rank" bson:"previous_rank"`
	PositionChange  PositionChange `json:"position_change" bson:"position_change"`
	Streak          int            `json:"streak" bson:"streak"`
}

// HourActivity is one histogram bucket. Hour is a two-digit label "00".."23".
type HourActivity struct {
	Hour  string `json:"hour" bson:"hour"`
	Count int    `json:"count" bson:"count"`
}

// Snapshot is one day's collection result for a subreddit. DateKey is the
// calendar-day upsert key, so a second run on the same day overwrites the
// first rather than appending.
type Snapshot struct {
	Date         time.Time                    `json:"date" bson:"date"`
	DateKey      string                       `json:"date_key" bson:"date_key"` // "YYYY-MM-DD"
	Subreddit    string                       `json:"subreddit" bson:"subreddit"`
	Contributors map[string]RankedContributor `json:"contributors" bson:"contributors"`
	Activity     []HourActivity               `json:"activity_data" bson:"activity_data"`
}

// RisingStar is a contributor flagged as notable in the current snapshot:
// newly ranked near the top, climbing fast, or on a long streak.
type RisingStar struct {
	Username       string         `json:"username"`
	CurrentRank    int            `json:"current_rank"`
	PositionChange PositionChange `json:"position_change"`
	Streak         int            `json:"streak"`
	TotalActivity  int            `json:"total_activity"`
}

// SnapshotResponse is the read-API view of the latest snapshot.
type SnapshotResponse struct {
	Subreddit    string                       `json:"subreddit"`
	Contributors map[string]RankedContributor `json:"contributors"`
	Activity     []HourActivity               `json:"activity_data"`
	RisingStars  []RisingStar                 `json:"rising_stars"`
	LastUpdated  string                       `json:"last_updated"`
}

// UserHistoryDay is one day of a user's ranked history.
type UserHistoryDay struct {
	Date         string `json:"date"`
	Activity     int    `json:"activity"`
	Rank         int    `json:"rank"`
	PostCount    int    `json:"post_count"`
	CommentCount int    `json:"comment_count"`
}

// UserHistory is the read-API view of a user's recent ranked appearances.
type UserHistory struct {
	Username           string           `json:"username"`
	History            []UserHistoryDay `json:"history"`
	Streak             int              `json:"streak"`
	AvgActivity        float64          `json:"avg_activity"`
	AvgRank            float64          `json:"avg_rank"`
	BestRank           int              `json:"best_rank"`
	PostToCommentRatio float64          `json:"post_to_comment_ratio"`
}

// ArchivedContributor is a row in the long-window engagement leaderboard
// kept in SQLite.
type ArchivedContributor struct {
	Username        string  `json:"username"`
	PostCount       int     `json:"post_count"`
	CommentCount    int     `json:"comment_count"`
	TotalKarma      int     `json:"total_karma"`
	AwardsReceived  int     `json:"awards_received"`
	EngagementScore float64 `json:"engagement_score"`
	LastActive      string  `json:"last_active"`
	LastUpdated     string  `json:"last_updated"`
}
