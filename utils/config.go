package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig
	Reddit     RedditConfig
	Mongo      MongoConfig
	Database   DatabaseConfig
	Server     ServerConfig
	Collection CollectionConfig
	Scoring    ScoringConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name    string
	Version string
}

// RedditConfig holds Reddit API configuration
type RedditConfig struct {
	ClientID             string
	ClientSecret         string
	UserAgent            string
	Subreddits           []string
	MaxRequestsPerMinute int // value is per minute, multiply by 10 for 10-minute rate
}

// MongoConfig holds snapshot store configuration
type MongoConfig struct {
	URI      string
	Database string
}

// DatabaseConfig holds SQLite leaderboard archive configuration
type DatabaseConfig struct {
	Path string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
}

// CollectionConfig holds collection run tuning
type CollectionConfig struct {
	IntervalSeconds int // seconds between collection runs
	TopLimit        int // contributors kept per daily snapshot
	EngagementLimit int // contributors kept in the engagement leaderboard
	CommentCap      int // comments folded per submission
}

// ScoringConfig holds the engagement score weights. The defaults come from
// the observed community behavior, not from any principled model, so they
// stay tunable.
type ScoringConfig struct {
	PostKarmaWeight    float64
	CommentKarmaWeight float64
	AwardWeight        float64
}

// LoadConfig loads configuration from .env file
func LoadConfig(envPath string, log *logrus.Logger) (*Config, error) {
	if envPath == "" {
		envPath = ".env"
	}

	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	subredditsStr := getEnv("REDDIT_SUBREDDITS", "uofm")
	subreddits := parseSubreddits(subredditsStr)

	// Create config object
	config := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "r/UofM Ranked"),
			Version: getEnv("APP_VERSION", "1.0.0"),
		},
		Reddit: RedditConfig{
			ClientID:             getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret:         getEnv("REDDIT_CLIENT_SECRET", ""),
			UserAgent:            getEnv("REDDIT_USER_AGENT", ""),
			Subreddits:           subreddits,
			MaxRequestsPerMinute: getEnvAsInt("REDDIT_MAX_REQUESTS_PER_MINUTE", 100),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGODB_URI", ""),
			Database: getEnv("MONGODB_DATABASE", "reddit_analytics"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./reddit.db"),
		},
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Collection: CollectionConfig{
			IntervalSeconds: getEnvAsInt("COLLECTION_INTERVAL", 3600),
			TopLimit:        getEnvAsInt("TOP_CONTRIBUTOR_LIMIT", 20),
			EngagementLimit: getEnvAsInt("ENGAGEMENT_LEADERBOARD_LIMIT", 10),
			CommentCap:      getEnvAsInt("COMMENTS_PER_SUBMISSION", 20),
		},
		Scoring: ScoringConfig{
			PostKarmaWeight:    getEnvAsFloat("POST_KARMA_WEIGHT", 1.5),
			CommentKarmaWeight: getEnvAsFloat("COMMENT_KARMA_WEIGHT", 1.0),
			AwardWeight:        getEnvAsFloat("AWARD_WEIGHT", 10.0),
		},
	}

	// validation
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	log.WithField("file", envPath).Info("Config loaded successfully")
	return config, nil
}

// parseSubreddits parses a comma-separated list of subreddits
func parseSubreddits(subredditsStr string) []string {
	parts := strings.Split(subredditsStr, ",")

	subreddits := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			subreddits = append(subreddits, trimmed)
		}
	}

	// if no subreddits, default to "uofm"
	// TODO: probably should error here instead?
	if len(subreddits) == 0 {
		subreddits = append(subreddits, "uofm")
	}

	return subreddits
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	// Check Reddit API credentials
	if config.Reddit.ClientID == "" {
		return fmt.Errorf("REDDIT_CLIENT_ID environment variable is required")
	}
	if config.Reddit.ClientSecret == "" {
		return fmt.Errorf("REDDIT_CLIENT_SECRET environment variable is required")
	}

	// User-Agent required per API documentation;  it has strict requirements.  see example.env
	if config.Reddit.UserAgent == "" {
		return fmt.Errorf("REDDIT_USER_AGENT environment variable is required")
	}
	if len(config.Reddit.Subreddits) == 0 {
		return fmt.Errorf("REDDIT_SUBREDDITS environment variable is required")
	}
	if config.Mongo.URI == "" {
		return fmt.Errorf("MONGODB_URI environment variable is required")
	}
	if config.Collection.IntervalSeconds < 1 {
		return fmt.Errorf("COLLECTION_INTERVAL must be positive")
	}
	if config.Collection.TopLimit < 1 {
		return fmt.Errorf("TOP_CONTRIBUTOR_LIMIT must be positive")
	}

	// if we are storing the db in a nested directory, create the directory
	dbDir := filepath.Dir(config.Database.Path)
	if dbDir != "." && dbDir != "" {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	return nil
}
