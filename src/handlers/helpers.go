package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// parseDate accepts the two date shapes clients send: RFC3339 timestamps and
// plain YYYY-MM-DD dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// queryInt reads an integer query parameter, falling back when absent.
// A present but malformed value is an error.
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", key)
	}
	return value, nil
}

// queryCurrency reads a currency query parameter with a default. The value is
// uppercased so callers validate the normalized code.
func queryCurrency(r *http.Request, key, fallback string) string {
	if value := strings.TrimSpace(r.URL.Query().Get(key)); value != "" {
		return strings.ToUpper(value)
	}
	return fallback
}
