package api

import (
	"sync"
	"time"
)

// TokenBucket implements a rate limiter using the token bucket algorithm
type TokenBucket struct {
	mutex       sync.Mutex
	capacity    int           // maximum tokens the bucket can hold
	tokens      float64       // current number of tokens
	fillRate    float64       // rate at which tokens are added (tokens per second)
	lastRefill  time.Time     // time of last token refill
	waitTimeout time.Duration // max time to wait for a token
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, fillRate float64, waitTimeout time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:    capacity,
		tokens:      1, // lets start with just 1 token to avoid initial burst
		fillRate:    fillRate,
		lastRefill:  time.Now(),
		waitTimeout: waitTimeout,
	}
}

// Take attempts to take a token from the bucket
// Returns true if successful, false if timed out
func (tb *TokenBucket) Take() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	// Refill tokens based on time elapsed
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	// Add tokens based on elapsed time and fill rate
	newTokens := elapsed * tb.fillRate
	if newTokens > 0 {
		tb.tokens = tb.tokens + newTokens
		if tb.tokens > float64(tb.capacity) {
			tb.tokens = float64(tb.capacity)
		}
	}

	// If we have at least one token, take it and return true
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	// No tokens available
	return false
}

// TakeWithTimeout attempts to take a token from the bucket, waiting up to waitTimeout
func (tb *TokenBucket) TakeWithTimeout() bool {
	if tb.Take() {
		return true
	}

	// calculate the time to wait for the next token
	tb.mutex.Lock()
	tokensNeeded := 1 - tb.tokens
	timeToWait := time.Duration(tokensNeeded / tb.fillRate * float64(time.Second))
	if timeToWait > tb.waitTimeout {
		timeToWait = tb.waitTimeout
	}
	tb.mutex.Unlock()

	// wait for next token and then grab it
	time.Sleep(timeToWait)
	return tb.Take()
}

// Update updates the rate limiter parameters based on Reddit API headers
func (tb *TokenBucket) Update(used int, reset int, maxRequests int) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	// Reddit allocates 1000 requests per rolling 10-minute period (600 seconds)
	// reset_sec counts down from ~600 to 0
	// remaining is broken/bugged (always 0)
	// used counts up from 0 to 1000

	// use the full allocation period and total requests for calculation
	totalAllocationPeriod := 600
	totalAllocation := 1000

	// calculate the rate based on the entire allocation
	// lets use 95% of the full rate for safety buffer
	fullRate := float64(totalAllocation) / float64(totalAllocationPeriod)
	targetRate := fullRate * 0.95

	// set fill rate based on allocation
	tb.fillRate = targetRate
}
