package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestGetHeaderAsInt(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string][]string
		key      string
		expected int
	}{
		{
			name: "Valid integer header",
			headers: map[string][]string{
				"X-Ratelimit-Remaining": {"42"},
			},
			key:      "X-Ratelimit-Remaining",
			expected: 42,
		},
		{
			name: "Empty header value",
			headers: map[string][]string{
				"X-Ratelimit-Remaining": {""},
			},
			key:      "X-Ratelimit-Remaining",
			expected: 0,
		},
		{
			name: "Missing header",
			headers: map[string][]string{
				"X-Ratelimit-Used": {"10"},
			},
			key:      "X-Ratelimit-Remaining",
			expected: 0,
		},
		{
			name: "Non-integer header value",
			headers: map[string][]string{
				"X-Ratelimit-Remaining": {"not-a-number"},
			},
			key:      "X-Ratelimit-Remaining",
			expected: 0,
		},
		{
			name: "Multiple values for same header (should use first)",
			headers: map[string][]string{
				"X-Ratelimit-Remaining": {"100", "200"},
			},
			key:      "X-Ratelimit-Remaining",
			expected: 100,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			header := http.Header(tc.headers)
			result := getHeaderAsInt(header, tc.key)
			if result != tc.expected {
				t.Errorf("getHeaderAsInt(%v, %q) = %d; want %d",
					header, tc.key, result, tc.expected)
			}
		})
	}
}

func TestTokenBucketUpdate(t *testing.T) {
	tb := NewTokenBucket(10, 1.0, time.Second)

	tb.Update(200, 400, 1000) // 200 used, 400 seconds left in period, 1000 requests allowed

	// we expect .95 of the full rate
	expectedRate := (1000.0 / 600.0) * 0.95

	if tb.fillRate != expectedRate {
		t.Errorf("Update() fillRate = %f; want %f", tb.fillRate, expectedRate)
	}
}

func TestNormalizeAuthor(t *testing.T) {
	if got := normalizeAuthor("[deleted]"); got != "" {
		t.Errorf("normalizeAuthor([deleted]) = %q; want empty", got)
	}
	if got := normalizeAuthor("alice"); got != "alice" {
		t.Errorf("normalizeAuthor(alice) = %q; want alice", got)
	}
}

const commentsResponse = `[
	{"kind": "Listing", "data": {"children": [
		{"kind": "t3", "data": {"id": "p1", "author": "op", "score": 100, "created_utc": 1700000000}}
	]}},
	{"kind": "Listing", "data": {"children": [
		{"kind": "t1", "data": {"id": "c1", "author": "alice", "score": 5, "created_utc": 1700000100, "all_awardings": [{"count": 2}]}},
		{"kind": "t1", "data": {"id": "c2", "author": "[deleted]", "score": 1, "created_utc": 1700000200}},
		{"kind": "more", "data": {"id": "m1"}},
		{"kind": "t1", "data": {"id": "c3", "author": "bob", "score": -1, "created_utc": 1700000300}}
	]}}
]`

func TestParseComments(t *testing.T) {
	var pages []redditListing
	if err := json.Unmarshal([]byte(commentsResponse), &pages); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}

	comments := parseComments(pages, 20)

	if len(comments) != 3 {
		t.Fatalf("parseComments returned %d comments; want 3", len(comments))
	}

	if comments[0].ID != "c1" || comments[0].Author != "alice" || comments[0].Score != 5 {
		t.Errorf("unexpected first comment: %+v", comments[0])
	}
	if len(comments[0].Awards) != 1 || comments[0].Awards[0].Count != 2 {
		t.Errorf("awards not parsed: %+v", comments[0].Awards)
	}

	// deleted authors are normalized to empty at the boundary
	if comments[1].Author != "" {
		t.Errorf("deleted author not normalized: %q", comments[1].Author)
	}
}

func TestParseCommentsCap(t *testing.T) {
	var pages []redditListing
	if err := json.Unmarshal([]byte(commentsResponse), &pages); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}

	comments := parseComments(pages, 1)
	if len(comments) != 1 {
		t.Errorf("parseComments cap=1 returned %d comments; want 1", len(comments))
	}
}

func TestParseCommentsMalformedResponse(t *testing.T) {
	// a response without the second listing yields no comments instead of panicking
	if got := parseComments(nil, 10); got != nil {
		t.Errorf("parseComments(nil) = %v; want nil", got)
	}
	if got := parseComments([]redditListing{{}}, 10); got != nil {
		t.Errorf("parseComments(single page) = %v; want nil", got)
	}
}
