package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AlexCSalinas/r-UofM-Ranked/models"
)

const (
	baseURL     = "https://oauth.reddit.com"
	authURL     = "https://www.reddit.com/api/v1/access_token"
	pageLimit   = 100 // max number of items per listing request
	deletedUser = "[deleted]"
)

// FetchError marks an upstream failure, as opposed to a legitimately empty
// listing. Callers degrade the affected aggregation step instead of failing
// the whole run.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RedditAPI represents a Reddit API client
type RedditAPI struct {
	clientID            string
	clientSecret        string
	userAgent           string
	httpClient          *http.Client
	accessToken         string
	tokenExpiry         time.Time
	mutex               sync.RWMutex
	log                 *logrus.Logger
	rateLimiter         *TokenBucket
	maxRequestsPerMin   int
	rateRemainingCached int
	rateResetCached     int
	rateUsedCached      int
	rateHeadersMutex    sync.RWMutex
}

// redditThing wraps one listing child; Kind is "t3" for submissions and
// "t1" for comments.
type redditThing struct {
	Kind string `json:"kind"`
	Data struct {
		ID           string  `json:"id"`
		Name         string  `json:"name"`
		Title        string  `json:"title"`
		Author       string  `json:"author"`
		Subreddit    string  `json:"subreddit"`
		Score        int     `json:"score"`
		CreatedUTC   float64 `json:"created_utc"`
		NumComments  int     `json:"num_comments"`
		Permalink    string  `json:"permalink"`
		AllAwardings []struct {
			Count int `json:"count"`
		} `json:"all_awardings"`
	} `json:"data"`
}

// redditListing represents one page of a Reddit listing response
type redditListing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string        `json:"after"`
		Before   string        `json:"before"`
		Children []redditThing `json:"children"`
	} `json:"data"`
}

// NewRedditAPI creates a new Reddit API client
func NewRedditAPI(clientID, clientSecret, userAgent string, maxRequestsPerMinute int, log *logrus.Logger) *RedditAPI {
	// default to 100 requests per minute (real Reddit limit)
	if maxRequestsPerMinute <= 0 {
		maxRequestsPerMinute = 100
	}

	// our 10 minute allocation
	totalAllocation := maxRequestsPerMinute * 10

	standardRate := float64(totalAllocation) / 600.0
	targetRate := standardRate * 0.95

	// Create a token bucket rate limiter:
	// - capacity: 1 (no burst capacity when set to 1)
	// - fillRate: 95% of Reddit's rate (1000 requests per 600 seconds)
	// - waitTimeout: max 30 seconds wait for a token
	rateLimiter := NewTokenBucket(
		1, // no burst
		targetRate,
		30*time.Second,
	)

	return &RedditAPI{
		clientID:            clientID,
		clientSecret:        clientSecret,
		userAgent:           userAgent,
		httpClient:          &http.Client{Timeout: 30 * time.Second},
		log:                 log,
		rateLimiter:         rateLimiter,
		maxRequestsPerMin:   maxRequestsPerMinute,
		rateRemainingCached: 0,
		rateResetCached:     600,
		rateUsedCached:      0,
	}
}

// GetRateLimitStatus returns the current rate limit status (remaining requests, reset time in seconds, and used requests)
func (r *RedditAPI) GetRateLimitStatus() (int, int, int) {
	r.rateHeadersMutex.RLock()
	defer r.rateHeadersMutex.RUnlock()
	return r.rateRemainingCached, r.rateResetCached, r.rateUsedCached
}

// authenticate authenticates with the Reddit API
func (r *RedditAPI) authenticate() error {
	// first check if we already have a valid token without holding the lock for long
	r.mutex.RLock()
	token := r.accessToken
	expiry := r.tokenExpiry
	r.mutex.RUnlock()

	if token != "" && time.Now().Before(expiry) {
		return nil
	}

	r.log.Info("Authenticating with Reddit API")

	// wait for rate limiting
	if !r.rateLimiter.TakeWithTimeout() {
		return fmt.Errorf("rate limit exceeded during authentication attempt")
	}

	data := url.Values{}

	r.log.Debug("Using application-only auth with client credentials")
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequest("POST", authURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}

	req.SetBasicAuth(r.clientID, r.clientSecret)
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute auth request: %w", err)
	}
	defer resp.Body.Close()

	r.updateRateLimits(resp)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("auth request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var authResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}

	r.mutex.Lock()
	r.accessToken = authResp.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(authResp.ExpiresIn) * time.Second)
	r.mutex.Unlock()

	r.log.Info("Successfully authenticated with Reddit API")
	return nil
}

// FetchTopSubmissions fetches up to limit top submissions for a time window
// ("day", "week", "month", "year", "all"), following pagination as needed.
func (r *RedditAPI) FetchTopSubmissions(subreddit, window string, limit int) ([]models.Submission, error) {
	path := fmt.Sprintf("/r/%s/top.json?t=%s", subreddit, url.QueryEscape(window))
	submissions, err := r.fetchSubmissionListing(path, subreddit, limit)
	if err != nil {
		return nil, &FetchError{Op: fmt.Sprintf("top submissions r/%s (%s)", subreddit, window), Err: err}
	}
	return submissions, nil
}

// FetchRecentSubmissions fetches up to limit newest submissions, following
// pagination as needed.
func (r *RedditAPI) FetchRecentSubmissions(subreddit string, limit int) ([]models.Submission, error) {
	path := fmt.Sprintf("/r/%s/new.json", subreddit)
	submissions, err := r.fetchSubmissionListing(path, subreddit, limit)
	if err != nil {
		return nil, &FetchError{Op: fmt.Sprintf("recent submissions r/%s", subreddit), Err: err}
	}
	return submissions, nil
}

// fetchSubmissionListing pages through a listing endpoint until limit items
// are collected or the listing runs out.
func (r *RedditAPI) fetchSubmissionListing(path, subreddit string, limit int) ([]models.Submission, error) {
	if limit <= 0 {
		limit = pageLimit
	}

	submissions := make([]models.Submission, 0, limit)
	after := ""

	for len(submissions) < limit {
		pageSize := limit - len(submissions)
		if pageSize > pageLimit {
			pageSize = pageLimit
		}

		separator := "?"
		if strings.Contains(path, "?") {
			separator = "&"
		}

		endpoint := fmt.Sprintf("%s%s%slimit=%d", baseURL, path, separator, pageSize)
		if after != "" {
			endpoint += "&after=" + after
		}

		var listing redditListing
		if err := r.getJSON(endpoint, &listing); err != nil {
			return nil, err
		}

		for _, thing := range listing.Data.Children {
			submissions = append(submissions, submissionFromThing(thing))
		}

		r.log.WithFields(logrus.Fields{
			"subreddit":  subreddit,
			"page_count": len(listing.Data.Children),
			"total":      len(submissions),
			"next_after": listing.Data.After,
		}).Debug("Fetched submission listing page")

		// an empty after token means the listing is exhausted
		if listing.Data.After == "" || len(listing.Data.Children) == 0 {
			break
		}
		after = listing.Data.After
	}

	return submissions, nil
}

// FetchComments fetches up to limit top-level-ish comments for a submission.
// The comments endpoint returns two listings: the submission itself and its
// comment tree.
func (r *RedditAPI) FetchComments(submission models.Submission, limit int) ([]models.Comment, error) {
	if limit <= 0 {
		limit = pageLimit
	}

	endpoint := fmt.Sprintf("%s/r/%s/comments/%s.json?limit=%d&depth=1",
		baseURL, submission.Subreddit, submission.ID, limit)

	var pages []redditListing
	if err := r.getJSON(endpoint, &pages); err != nil {
		return nil, &FetchError{Op: fmt.Sprintf("comments for %s", submission.ID), Err: err}
	}

	comments := parseComments(pages, limit)

	r.log.WithFields(logrus.Fields{
		"submission_id": submission.ID,
		"count":         len(comments),
	}).Debug("Fetched comments for submission")

	return comments, nil
}

// parseComments extracts comment records from a comments-endpoint response.
// Non-comment children ("more" stubs etc.) are skipped.
func parseComments(pages []redditListing, limit int) []models.Comment {
	if len(pages) < 2 {
		return nil
	}

	comments := make([]models.Comment, 0, limit)
	for _, thing := range pages[1].Data.Children {
		if thing.Kind != "t1" {
			continue
		}

		awards := make([]models.Award, 0, len(thing.Data.AllAwardings))
		for _, awarding := range thing.Data.AllAwardings {
			awards = append(awards, models.Award{Count: awarding.Count})
		}

		comments = append(comments, models.Comment{
			ID:         thing.Data.ID,
			Author:     normalizeAuthor(thing.Data.Author),
			Score:      thing.Data.Score,
			CreatedUTC: thing.Data.CreatedUTC,
			CreatedAt:  time.Unix(int64(thing.Data.CreatedUTC), 0),
			Awards:     awards,
		})
		if len(comments) >= limit {
			break
		}
	}

	return comments
}

// getJSON performs an authenticated, rate-limited GET and decodes the body.
func (r *RedditAPI) getJSON(endpoint string, target interface{}) error {
	if err := r.authenticate(); err != nil {
		return err
	}

	if !r.rateLimiter.TakeWithTimeout() {
		r.log.Warn("Rate limit exceeded, waiting before retrying")
		// wait 1 second and retry recursively!! :)
		// TODO: we could use exponential backoff here, but not going to worry about it for now
		time.Sleep(time.Second)
		return r.getJSON(endpoint, target)
	}

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	r.mutex.RLock()
	token := r.accessToken
	r.mutex.RUnlock()

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	r.updateRateLimits(resp)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.log.WithFields(logrus.Fields{
			"endpoint":      endpoint,
			"response_body": string(body),
			"status_code":   resp.StatusCode,
		}).Error("Reddit API error response")
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// submissionFromThing maps one listing child to a submission record,
// validating author presence at the boundary.
func submissionFromThing(thing redditThing) models.Submission {
	awards := make([]models.Award, 0, len(thing.Data.AllAwardings))
	for _, awarding := range thing.Data.AllAwardings {
		awards = append(awards, models.Award{Count: awarding.Count})
	}

	return models.Submission{
		ID:          thing.Data.ID,
		Title:       thing.Data.Title,
		Author:      normalizeAuthor(thing.Data.Author),
		Subreddit:   thing.Data.Subreddit,
		Score:       thing.Data.Score,
		CreatedUTC:  thing.Data.CreatedUTC,
		CreatedAt:   time.Unix(int64(thing.Data.CreatedUTC), 0),
		NumComments: thing.Data.NumComments,
		Permalink:   thing.Data.Permalink,
		Awards:      awards,
	}
}

// normalizeAuthor maps Reddit's deleted-account marker to an empty author,
// which the aggregator skips.
func normalizeAuthor(author string) string {
	if author == deletedUser {
		return ""
	}
	return author
}

// updateRateLimits updates the rate limiter based on response headers
// TODO: this isn't actually adapting based off of the header responses;  this is simply used for debuggng atm
func (r *RedditAPI) updateRateLimits(resp *http.Response) {
	// X-Ratelimit-Used: Approximate number of requests used in this period
	// X-Ratelimit-Remaining: Approximate number of requests left to use (bugged - always 0)
	// X-Ratelimit-Reset: Approximate number of seconds to end of period (counts down from ~600 seconds)
	used := getHeaderAsInt(resp.Header, "X-Ratelimit-Used")
	remaining := getHeaderAsInt(resp.Header, "X-Ratelimit-Remaining") // always 0, appears bugged
	reset := getHeaderAsInt(resp.Header, "X-Ratelimit-Reset")

	// skip if we didn't get valid headers for some reason
	if reset == 0 && used == 0 {
		return
	}

	// reddit allocates 1000 requests per 600 seconds (10 minutes); this indicates the total allocation of 1k
	totalAllocation := 1000.0

	r.rateHeadersMutex.Lock()
	r.rateRemainingCached = remaining // bugged - always 0; update anyways in case reddit fixes it
	r.rateResetCached = reset
	r.rateUsedCached = used
	r.rateHeadersMutex.Unlock()

	r.rateLimiter.Update(used, reset, r.maxRequestsPerMin)

	r.log.WithFields(logrus.Fields{
		"used":          used,
		"reset_sec":     reset,
		"new_fill_rate": r.rateLimiter.fillRate,
		"usage_pct":     float64(used) / totalAllocation * 100,
	}).Debug("Updated rate limiter based on Reddit headers")
}

func getHeaderAsInt(header http.Header, name string) int {
	value := header.Get(name)
	if value == "" {
		return 0
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}

	return intValue
}
