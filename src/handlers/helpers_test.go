package handlers

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDateAcceptsBothShapes(t *testing.T) {
	cases := []struct {
		input string
		want  time.Time
	}{
		{"2025-06-15", time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)},
		{"2025-06-15T10:30:00Z", time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := parseDate(tc.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.input, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("%q: got %v, want %v", tc.input, got, tc.want)
		}
	}

	if _, err := parseDate("15/06/2025"); err == nil {
		t.Error("expected an error for an unsupported date shape")
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/dividends/upcoming?days=45", nil)
	if got, err := queryInt(r, "days", 30); err != nil || got != 45 {
		t.Errorf("got %d/%v, want 45", got, err)
	}
	if got, err := queryInt(r, "missing", 30); err != nil || got != 30 {
		t.Errorf("fallback: got %d/%v, want 30", got, err)
	}

	bad := httptest.NewRequest("GET", "/api/dividends/upcoming?days=soon", nil)
	if _, err := queryInt(bad, "days", 30); err == nil {
		t.Error("expected an error for a malformed integer")
	}
}

func TestQueryCurrency(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/dividends/income/monthly?currency=HKD", nil)
	if got := queryCurrency(r, "currency", "USD"); got != "HKD" {
		t.Errorf("got %q, want HKD", got)
	}
	if got := queryCurrency(r, "absent", "USD"); got != "USD" {
		t.Errorf("fallback: got %q, want USD", got)
	}

	// Lowercase and padded codes normalize to the canonical form.
	lower := httptest.NewRequest("GET", "/api/dividends/income/monthly?currency=hkd", nil)
	if got := queryCurrency(lower, "currency", "USD"); got != "HKD" {
		t.Errorf("lowercase: got %q, want HKD", got)
	}
	padded := httptest.NewRequest("GET", "/api/exchange-rates/current?from=%20usd%20", nil)
	if got := queryCurrency(padded, "from", "HKD"); got != "USD" {
		t.Errorf("padded: got %q, want USD", got)
	}
}
