package github

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Throttling policy: rate-limit and abuse-limit responses are retried
// transparently with the provider-suggested delay, at most
// maxThrottleRetries times. Exhausting the bound surfaces as a hard request
// failure to the caller.
const (
	maxThrottleRetries = 5
	minRetryWait       = 1 * time.Second
	maxRetryWait       = 60 * time.Second
)

func newThrottledHTTPClient() *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = maxThrottleRetries
	rc.RetryWaitMin = minRetryWait
	rc.RetryWaitMax = maxRetryWait
	rc.CheckRetry = throttleRetryPolicy
	rc.Backoff = throttleBackoff
	rc.Logger = nil
	return rc.StandardClient()
}

// throttleRetryPolicy retries only throttling responses. Transport errors
// and other HTTP statuses are returned to the caller unchanged so that the
// error message stays pattern-matchable upstream.
func throttleRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil || resp == nil {
		return false, err
	}
	return isThrottled(resp), nil
}

// throttleBackoff honors the provider-suggested delay (Retry-After or the
// rate-limit reset timestamp) and falls back to exponential backoff.
func throttleBackoff(minWait, maxWait time.Duration, attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil {
				return clampWait(time.Duration(secs)*time.Second, minWait, maxWait)
			}
		}
		if s := resp.Header.Get("X-Ratelimit-Reset"); s != "" {
			if reset, err := strconv.ParseInt(s, 10, 64); err == nil {
				return clampWait(time.Until(time.Unix(reset, 0)), minWait, maxWait)
			}
		}
	}
	return retryablehttp.DefaultBackoff(minWait, maxWait, attempt, resp)
}

func isThrottled(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	// GitHub reports both primary rate limits and abuse limits as 403 with
	// either a Retry-After header or an exhausted rate-limit counter.
	if resp.StatusCode == http.StatusForbidden {
		if resp.Header.Get("Retry-After") != "" {
			return true
		}
		if resp.Header.Get("X-Ratelimit-Remaining") == "0" {
			return true
		}
	}
	return false
}

func clampWait(d, minWait, maxWait time.Duration) time.Duration {
	if d < minWait {
		return minWait
	}
	if d > maxWait {
		return maxWait
	}
	return d
}
