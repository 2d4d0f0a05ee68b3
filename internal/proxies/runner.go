package proxies

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/adriankh/reposage/internal/core"
)

const defaultBackoff = 2 * time.Second

// Request describes one HTTP-shaped call to a remote service.
type Request struct {
	Service string // endpoint name for errors and logs
	URL     string
	Headers map[string]string
	Body    any
	// Validate, if set, inspects a 2xx body; a non-nil return is treated
	// like a transient failure and retried.
	Validate func(body []byte) error
}

// Runner wraps outbound calls to rate-limited, unreliable remote services
// with a shared token bucket, bounded retries and backoff. It also keeps a
// best-effort cache of warmed-up hosts so the TLS handshake for a hot path
// can be paid before the request that needs it.
type Runner struct {
	client      *http.Client
	limiter     *rate.Limiter
	maxAttempts int

	warmMu sync.Mutex
	warm   map[string]struct{}
}

// NewRunner builds a runner allowing requestsPerSecond calls shared across
// all concurrent callers, with maxAttempts tries per request.
func NewRunner(requestsPerSecond, maxAttempts int) *Runner {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 3
	}
	if maxAttempts <= 0 {
		maxAttempts = 4
	}
	return &Runner{
		client:      &http.Client{Timeout: 60 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		maxAttempts: maxAttempts,
	}
}

// Do executes the request, retrying on timeouts, 429/5xx statuses and
// empty or invalid bodies. On exhaustion it returns a RemoteServiceError
// that the caller must treat as task failure.
func (r *Runner) Do(ctx context.Context, req Request) ([]byte, error) {
	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", req.Service, err)
	}

	var lastErr error
	var lastStatus int

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, status, err := r.post(ctx, req, data)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr, lastStatus = err, status
		log.Printf("%s: attempt %d/%d failed (status=%d): %v",
			req.Service, attempt, r.maxAttempts, status, err)

		if attempt < r.maxAttempts {
			wait := retryAfter(err, defaultBackoff)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, &core.RemoteServiceError{Service: req.Service, Status: lastStatus, Err: lastErr}
}

func (r *Runner) post(ctx context.Context, req Request, data []byte) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, resp.StatusCode, &statusError{
			status:     resp.StatusCode,
			retryAfter: resp.Header.Get("Retry-After"),
			body:       body,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, resp.StatusCode, core.ErrEmptyResponse
	}
	if req.Validate != nil {
		if err := req.Validate(body); err != nil {
			return nil, resp.StatusCode, err
		}
	}
	return body, resp.StatusCode, nil
}

// WarmUp issues a cheap HEAD request once per host to establish the TLS
// handshake ahead of the request it is optimizing. Best effort: failures are
// logged and never propagated.
func (r *Runner) WarmUp(ctx context.Context, rawURL string, headers map[string]string) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return
	}

	r.warmMu.Lock()
	if r.warm == nil {
		r.warm = make(map[string]struct{})
	}
	if _, ok := r.warm[u.Host]; ok {
		r.warmMu.Unlock()
		log.Printf("skipping warmup for host: %s", u.Host)
		return
	}
	r.warmMu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		log.Printf("warmup for host %s failed: %v", u.Host, err)
		return
	}
	resp.Body.Close()

	r.warmMu.Lock()
	r.warm[u.Host] = struct{}{}
	r.warmMu.Unlock()
	log.Printf("warmed up host: %s", u.Host)
}

type statusError struct {
	status     int
	retryAfter string
	body       []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, truncate(e.body, 200))
}

// retryAfter picks the backoff for the next attempt, preferring the
// server-provided Retry-After hint over the fixed default.
func retryAfter(err error, fallback time.Duration) time.Duration {
	if se, ok := err.(*statusError); ok && se.retryAfter != "" {
		if secs, perr := strconv.Atoi(se.retryAfter); perr == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
