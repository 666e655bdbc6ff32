package github

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kaws-dev/gitplug/internal/errors"
)

// ErrNotFound indicates that the requested repository, reference or file does not exist.
var ErrNotFound = fmt.Errorf("%w: not found", errors.ErrUpstream)

// RateLimitError indicates the hosting service's API rate limit was hit.
type RateLimitError struct {
	StatusCode int
	Status     string
	Remaining  *int
}

func (e *RateLimitError) Error() string {
	remainingText := "unknown"
	if e.Remaining != nil {
		remainingText = strconv.Itoa(*e.Remaining)
	}
	return fmt.Sprintf("hosting api rate limit exceeded (%s, remaining=%s)", e.Status, remainingText)
}

// Unwrap allows errors.Is(err, errors.ErrRateLimited) to match.
func (e *RateLimitError) Unwrap() error {
	return errors.ErrRateLimited
}

// IsRateLimitError reports whether err represents a rate-limit condition.
func IsRateLimitError(err error) bool {
	var rl *RateLimitError
	return stdErrors.As(err, &rl)
}

// statusError converts a non-2xx response into an error.
func statusError(resp *http.Response, target string) error {
	if rateLimitErr := rateLimitErrorFromResponse(resp); rateLimitErr != nil {
		return rateLimitErr
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, target)
	}
	return fmt.Errorf("%w: %s returned %s", errors.ErrUpstream, target, resp.Status)
}

func rateLimitErrorFromResponse(resp *http.Response) *RateLimitError {
	if resp == nil {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	// Unauthenticated exhaustion is reported as 403 and confirmed by the rate-limit headers.
	if resp.StatusCode == http.StatusForbidden {
		remainingStr := strings.TrimSpace(resp.Header.Get("X-RateLimit-Remaining"))
		if remainingStr == "" {
			return nil
		}
		remaining, err := strconv.Atoi(remainingStr)
		if err != nil {
			return nil
		}
		if remaining == 0 {
			return &RateLimitError{StatusCode: resp.StatusCode, Status: resp.Status, Remaining: &remaining}
		}
	}
	return nil
}
