package exec

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"
)

// maxErrorBodyBytes bounds how much of a 429 body is read while hunting for
// a wait hint.
const maxErrorBodyBytes = 64 * 1024

var numberPattern = regexp.MustCompile(`\d+`)

// errorBody is the provider's JSON error envelope. Only the detail text is
// of interest: when the Retry-After header is missing, the mandated wait is
// buried in the final error's detail string.
type errorBody struct {
	Errors []struct {
		Detail string `json:"detail"`
	} `json:"errors"`
}

// retryAfterFromResponse extracts the provider-mandated wait from a 429
// response. The Retry-After header is authoritative; failing that, the JSON
// error body's last detail text is scanned for its last number, and the raw
// text body is the last resort. The response body may be consumed.
func retryAfterFromResponse(resp *http.Response) (time.Duration, bool) {
	if d, ok := parseRetryAfterHeader(resp.Header.Get("Retry-After")); ok {
		return d, true
	}

	if resp.Body == nil {
		return 0, false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil || len(body) == 0 {
		return 0, false
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		detail := parsed.Errors[len(parsed.Errors)-1].Detail
		if seconds, ok := lastNumber(detail); ok {
			return time.Duration(seconds) * time.Second, true
		}
	}

	if seconds, ok := lastNumber(string(body)); ok {
		return time.Duration(seconds) * time.Second, true
	}

	return 0, false
}

// parseRetryAfterHeader parses a Retry-After value in either delay-seconds
// or HTTP-date form.
func parseRetryAfterHeader(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}

	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d, true
		}
		return 0, true
	}

	return 0, false
}

// lastNumber returns the last integer found in the text.
func lastNumber(text string) (int, bool) {
	matches := numberPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(matches[len(matches)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}
