package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/AlexCSalinas/r-UofM-Ranked/models"
)

// ContributorDB keeps the long-window engagement leaderboard in SQLite.
// Each collection run upserts the current top contributors per subreddit;
// the read API serves the leaderboard straight from here.
type ContributorDB struct {
	db    *sql.DB
	mutex sync.RWMutex
	log   *logrus.Logger
}

// NewContributorDB opens (and if needed initializes) the SQLite database.
func NewContributorDB(dbPath string, log *logrus.Logger) (*ContributorDB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &ContributorDB{
		db:  db,
		log: log,
	}

	if err := database.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return database, nil
}

// Close closes the database connection
func (d *ContributorDB) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.db.Close()
}

// initTables creates the necessary tables if they don't exist
func (d *ContributorDB) initTables() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	// note: in an ideal world, this would be a migration that we could just run once per environment (ie dev, staging, prod)
	query := `
	CREATE TABLE IF NOT EXISTS contributors (
		subreddit TEXT NOT NULL,
		username TEXT NOT NULL,
		post_count INTEGER NOT NULL,
		comment_count INTEGER NOT NULL,
		total_karma INTEGER NOT NULL,
		awards_received INTEGER NOT NULL,
		engagement_score REAL NOT NULL,
		last_active TEXT,
		last_updated TIMESTAMP NOT NULL,
		PRIMARY KEY (subreddit, username)
	);
	CREATE INDEX IF NOT EXISTS idx_contributors_score ON contributors(subreddit, engagement_score DESC);
	`

	_, err := d.db.Exec(query)
	return err
}

// SaveContributors upserts the engagement leaderboard for a subreddit in a
// single transaction.
func (d *ContributorDB) SaveContributors(subreddit string, contributors []models.ArchivedContributor) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO contributors (
		subreddit, username, post_count, comment_count,
		total_karma, awards_received, engagement_score, last_active, last_updated
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC().Format(time.RFC3339)
	for _, contributor := range contributors {
		_, err := tx.Exec(
			query,
			subreddit, contributor.Username, contributor.PostCount, contributor.CommentCount,
			contributor.TotalKarma, contributor.AwardsReceived, contributor.EngagementScore,
			contributor.LastActive, now,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save contributor %s: %w", contributor.Username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit contributors: %w", err)
	}

	d.log.WithFields(logrus.Fields{
		"subreddit": subreddit,
		"count":     len(contributors),
	}).Debug("Saved engagement leaderboard")

	return nil
}

// TopContributors returns the top N archived contributors by engagement
// score for a subreddit.
func (d *ContributorDB) TopContributors(subreddit string, limit int) ([]models.ArchivedContributor, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	query := `
	SELECT username, post_count, comment_count, total_karma,
		awards_received, engagement_score, last_active, last_updated
	FROM contributors
	WHERE subreddit = ?
	ORDER BY engagement_score DESC
	LIMIT ?
	`

	rows, err := d.db.Query(query, subreddit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top contributors: %w", err)
	}
	defer rows.Close()

	contributors := make([]models.ArchivedContributor, 0, limit)
	for rows.Next() {
		var contributor models.ArchivedContributor
		var lastActive sql.NullString

		err := rows.Scan(
			&contributor.Username, &contributor.PostCount, &contributor.CommentCount,
			&contributor.TotalKarma, &contributor.AwardsReceived, &contributor.EngagementScore,
			&lastActive, &contributor.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contributor: %w", err)
		}

		contributor.LastActive = lastActive.String
		contributors = append(contributors, contributor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return contributors, nil
}
