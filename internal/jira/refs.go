package jira

import (
	"fmt"
	"strings"
	"time"
)

// BrowseURL returns the human-readable URL for an issue key.
func BrowseURL(baseURL, key string) string {
	return strings.TrimSuffix(baseURL, "/") + "/browse/" + key
}

// IsBrowseURL reports whether ref looks like an issue browse URL,
// optionally restricted to the given service base URL.
func IsBrowseURL(ref, baseURL string) bool {
	if !strings.Contains(ref, "/browse/") {
		return false
	}
	if baseURL != "" && !strings.HasPrefix(ref, strings.TrimSuffix(baseURL, "/")) {
		return false
	}
	return true
}

// KeyFromBrowseURL extracts the issue key from a browse URL, e.g.
// "https://tracker.example.com/browse/PROJ-123" yields "PROJ-123".
func KeyFromBrowseURL(ref string) string {
	idx := strings.LastIndex(ref, "/browse/")
	if idx == -1 {
		return ""
	}
	return ref[idx+len("/browse/"):]
}

// ProjectKeyOf returns the project component of an issue key
// ("PROJ-123" yields "PROJ").
func ProjectKeyOf(issueKey string) string {
	if idx := strings.LastIndex(issueKey, "-"); idx > 0 {
		return issueKey[:idx]
	}
	return ""
}

// timestampFormats covers the service's historical timestamp encodings:
// ISO 8601 with and without milliseconds, numeric and Z timezones.
var timestampFormats = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseTimestamp parses a timestamp string from any API response.
func ParseTimestamp(ts string) (time.Time, error) {
	if ts == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, ts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %s", ts)
}
