package remote

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Retry defaults.
const (
	DefaultTimeout     = 15 * time.Second
	DefaultMaxAttempts = 3
	DefaultBaseBackoff = 250 * time.Millisecond
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sleeper waits between attempts. It returns early with the context error
// when ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RetryOptions tunes the retrying transport. Zero values take defaults.
type RetryOptions struct {
	Timeout      time.Duration
	MaxAttempts  int
	BaseBackoff  time.Duration
	RetryOnCodes map[int]struct{}
	Sleeper      Sleeper
}

// RetryClient retries GET requests on transient transport errors and on
// 429/5xx responses with exponential backoff, honouring Retry-After.
type RetryClient struct {
	doer        Doer
	timeout     time.Duration
	maxAttempts int
	baseBackoff time.Duration
	retryCodes  map[int]struct{}
	sleeper     Sleeper
}

func NewRetryClient(doer Doer, options RetryOptions) *RetryClient {
	resolved := resolveRetryOptions(options)
	if doer == nil {
		doer = &http.Client{Timeout: resolved.Timeout}
	}
	return &RetryClient{
		doer:        doer,
		timeout:     resolved.Timeout,
		maxAttempts: resolved.MaxAttempts,
		baseBackoff: resolved.BaseBackoff,
		retryCodes:  resolved.RetryOnCodes,
		sleeper:     resolved.Sleeper,
	}
}

// Do sends req until it succeeds, fails permanently, or attempts run out.
// Requests must not carry a body.
func (c *RetryClient) Do(req *http.Request) (*http.Response, error) {
	if c == nil {
		return nil, errors.New("remote: retry client is nil")
	}
	if req == nil {
		return nil, errors.New("remote: request is nil")
	}

	ctx := req.Context()
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		attemptReq, cancel := withRequestTimeout(req.Clone(ctx), c.timeout)

		resp, err := c.doer.Do(attemptReq)
		if err != nil {
			cancel()
			if !shouldRetryError(err) || attempt == c.maxAttempts {
				return nil, err
			}
			if err := c.sleeper.Sleep(ctx, backoffForAttempt(c.baseBackoff, attempt)); err != nil {
				return nil, err
			}
			continue
		}

		if !c.shouldRetryStatus(resp.StatusCode) || attempt == c.maxAttempts {
			if resp.Body != nil {
				resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
			} else {
				cancel()
			}
			return resp, nil
		}

		backoff := backoffForAttempt(c.baseBackoff, attempt)
		if retryAfter := parseRetryAfter(resp.Header.Get("Retry-After")); retryAfter > backoff {
			backoff = retryAfter
		}
		drainAndClose(resp.Body)
		cancel()
		if err := c.sleeper.Sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}
	return nil, errors.New("remote: request retries exhausted")
}

func (c *RetryClient) shouldRetryStatus(statusCode int) bool {
	_, ok := c.retryCodes[statusCode]
	return ok
}

func resolveRetryOptions(options RetryOptions) RetryOptions {
	resolved := options
	if resolved.Timeout <= 0 {
		resolved.Timeout = DefaultTimeout
	}
	if resolved.MaxAttempts <= 0 {
		resolved.MaxAttempts = DefaultMaxAttempts
	}
	if resolved.BaseBackoff <= 0 {
		resolved.BaseBackoff = DefaultBaseBackoff
	}
	if len(resolved.RetryOnCodes) == 0 {
		resolved.RetryOnCodes = map[int]struct{}{
			http.StatusTooManyRequests:     {},
			http.StatusInternalServerError: {},
			http.StatusBadGateway:          {},
			http.StatusServiceUnavailable:  {},
			http.StatusGatewayTimeout:      {},
		}
	}
	if resolved.Sleeper == nil {
		resolved.Sleeper = timerSleeper{}
	}
	return resolved
}

func withRequestTimeout(req *http.Request, timeout time.Duration) (*http.Request, context.CancelFunc) {
	if timeout <= 0 {
		return req, func() {}
	}
	ctx, cancel := context.WithTimeout(req.Context(), timeout)
	return req.WithContext(ctx), cancel
}

func shouldRetryError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func backoffForAttempt(base time.Duration, attempt int) time.Duration {
	if base <= 0 || attempt <= 0 {
		return 0
	}
	return time.Duration(1<<(attempt-1)) * base
}

func parseRetryAfter(value string) time.Duration {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(trimmed); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(trimmed); err == nil {
		if delta := time.Until(when); delta > 0 {
			return delta
		}
	}
	return 0
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	return c.ReadCloser.Close()
}
