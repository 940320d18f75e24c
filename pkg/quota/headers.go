package quota

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Headers holds the rate-limit signals parsed from one provider response.
// Fields that were absent or failed to parse are nil, never zeroed: a missing
// header must not be mistaken for an exhausted quota.
type Headers struct {
	// Tier is the explicitly named tier, if the provider sent one.
	Tier *Tier

	// Limit is the quota ceiling for the current window.
	Limit *int64

	// Remaining is the number of calls left in the current window.
	Remaining *int64

	// Reset is when the provider's window resets.
	Reset *time.Time
}

// LimitWindows is the result of parsing the provider's combined limit policy
// header ("<n>;w=<window-seconds>", comma-separated). A window of 1 second
// describes the burst bound, a window of 60 seconds the per-minute bound.
// Zero means the bound was not present.
type LimitWindows struct {
	Burst     int
	PerMinute int
}

// ParseHeaders extracts rate-limit signals from response headers. Both the
// RFC form (RateLimit-*) and the legacy form (X-RateLimit-*) are accepted,
// case-insensitively, with the RFC form taking precedence. ParseHeaders never
// fails; unparseable fields are simply omitted.
func ParseHeaders(h http.Header) Headers {
	var parsed Headers

	if raw := headerValue(h, "RateLimit-Tier", "X-RateLimit-Tier"); raw != "" {
		tier := ParseTier(raw)
		parsed.Tier = &tier
	}

	if raw := headerValue(h, "RateLimit-Limit", "X-RateLimit-Limit"); raw != "" {
		if v, ok := parseLimitValue(raw); ok {
			parsed.Limit = &v
		}
	}

	if raw := headerValue(h, "RateLimit-Remaining", "X-RateLimit-Remaining"); raw != "" {
		if v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			parsed.Remaining = &v
		}
	}

	if raw := headerValue(h, "RateLimit-Reset", "X-RateLimit-Reset"); raw != "" {
		if t, ok := parseReset(raw, time.Now()); ok {
			parsed.Reset = &t
		}
	}

	return parsed
}

// ParseLimitWindows parses the combined limit policy header value, e.g.
// "1;w=1, 150;w=60". Malformed items are skipped; a bare numeric value
// without a window annotation is treated as the per-minute bound.
func ParseLimitWindows(value string) LimitWindows {
	var windows LimitWindows

	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		parts := strings.Split(item, ";")
		n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil || n <= 0 {
			continue
		}

		windowSeconds := 60
		for _, param := range parts[1:] {
			param = strings.TrimSpace(param)
			if after, ok := strings.CutPrefix(param, "w="); ok {
				if w, err := strconv.Atoi(after); err == nil {
					windowSeconds = w
				}
			}
		}

		switch windowSeconds {
		case 1:
			windows.Burst = n
		case 60:
			windows.PerMinute = n
		}
	}

	return windows
}

// headerValue returns the first non-empty value among the given header names.
func headerValue(h http.Header, names ...string) string {
	for _, name := range names {
		if v := h.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// parseLimitValue extracts the numeric quota from a limit header. The header
// may be a bare number or the combined policy form; in the combined form the
// per-minute figure is the quota of interest, falling back to the first
// numeric item.
func parseLimitValue(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)

	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, true
	}

	windows := ParseLimitWindows(raw)
	if windows.PerMinute > 0 {
		return int64(windows.PerMinute), true
	}

	// Fall back to the first parseable number in the list.
	for _, item := range strings.Split(raw, ",") {
		numeric := strings.TrimSpace(strings.Split(item, ";")[0])
		if v, err := strconv.ParseInt(numeric, 10, 64); err == nil {
			return v, true
		}
	}

	return 0, false
}

// parseReset interprets a reset header as either delta-seconds or an epoch
// timestamp. Values beyond a year's worth of seconds are taken as epochs.
func parseReset(raw string, now time.Time) (time.Time, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v < 0 {
		return time.Time{}, false
	}

	const epochThreshold = 365 * 24 * 60 * 60
	if v > epochThreshold {
		return time.Unix(v, 0), true
	}
	return now.Add(time.Duration(v) * time.Second), true
}
