package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"route-planner-service/internal/platform/obs"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 4
	defaultBackoff     = 200 * time.Millisecond
)

// client is the HTTP plumbing shared by the providers: rate limiting,
// fixed headers, retry with exponential backoff and JSON decoding.
type client struct {
	provider    string
	session     *http.Client
	limiter     *rate.Limiter
	header      http.Header
	maxAttempts int
	backoff     time.Duration
}

func newClient(provider string, limiter *rate.Limiter, header http.Header) *client {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Accept", "application/json")

	return &client{
		provider:    provider,
		session:     &http.Client{Timeout: defaultTimeout},
		limiter:     limiter,
		header:      header,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
}

func (c *client) newRequest(ctx context.Context, endpoint string, query url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.URL.RawQuery = query.Encode()
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

func (c *client) do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	resp, err := c.session.Do(req)
	if err != nil {
		obs.GeocodeRequests.WithLabelValues(c.provider, "error").Inc()
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactURL(urlErr.URL)
		}
		return nil, err
	}
	obs.GeocodeRequests.WithLabelValues(c.provider, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) with exponential backoff while respecting context cancellation.
func (c *client) doWithRetry(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	backoff := c.backoff
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := c.newRequest(ctx, endpoint, query)
		if err != nil {
			return nil, err
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) || attempt == c.maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// getJSON performs a GET with retries and decodes the body into out.
func (c *client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	resp, err := c.doWithRetry(ctx, endpoint, query)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// secretParams are query parameters that carry credentials.
var secretParams = []string{"key", "api_key"}

// redactURL masks credential parameters so request URLs can appear in errors and logs.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// normalize collapses whitespace so equivalent addresses share cache keys.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
