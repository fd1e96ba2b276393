package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/mrirakib04/sks-web/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const maxErrorBody = 512

type Options struct {
	BaseURL        string
	Timeout        time.Duration
	ReadRetries    int
	ReadRetryDelay time.Duration
	// Requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int
	Breaker   circuitbreaker.Config
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client talks to the storefront backend. Reads are retried with a constant
// delay and collapsed when identical reads are in flight; writes are sent
// exactly once. Cookies set by the backend are kept in a jar, which is how
// the session token travels.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	jar        http.CookieJar
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	sfg        singleflight.Group
	retries    int
	retryDelay time.Duration
	log        *slog.Logger
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", opts.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "backend")

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	breakerCfg := opts.Breaker
	if breakerCfg.Name == "" {
		breakerCfg = circuitbreaker.DefaultConfig("backend")
	}
	breakerCfg.IsSuccessful = func(err error) bool {
		if err == nil || errors.Is(err, context.Canceled) {
			return true
		}
		var se *StatusError
		return errors.As(err, &se) && se.IsClientError()
	}

	return &Client{
		baseURL: base,
		http: &http.Client{
			Jar:       jar,
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		jar:        jar,
		limiter:    limiter,
		breaker:    circuitbreaker.New[[]byte](breakerCfg, log),
		retries:    max(opts.ReadRetries, 0),
		retryDelay: opts.ReadRetryDelay,
		log:        log,
	}, nil
}

func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// ClearCookies drops every cookie held for the backend.
func (c *Client) ClearCookies() {
	expired := c.jar.Cookies(c.baseURL)
	for _, ck := range expired {
		ck.MaxAge = -1
		ck.Path = "/"
	}
	c.jar.SetCookies(c.baseURL, expired)
}

// get fetches path and decodes the JSON answer into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	body, err := c.read(ctx, path)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// read runs one retried GET per path no matter how many callers want it.
// The shared call is detached from any single caller's cancellation and
// bounded by the HTTP client timeout; each caller stops waiting when its own
// ctx ends.
func (c *Client) read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	shared := context.WithoutCancel(ctx)
	ch := c.sfg.DoChan(path, func() (interface{}, error) {
		return backoff.Retry(shared, func() ([]byte, error) {
			body, err := c.do(shared, http.MethodGet, path, nil)
			if err != nil && !retryable(err) {
				return nil, backoff.Permanent(err)
			}
			if err != nil {
				c.log.Debug("backend read failed, retrying", "path", path, "error", err)
			}
			return body, err
		},
			backoff.WithBackOff(backoff.NewConstantBackOff(c.retryDelay)),
			backoff.WithMaxTries(uint(c.retries+1)),
		)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("GET %s: %w", path, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Debug("backend read shared", "path", path)
		}
		return res.Val.([]byte), nil
	}
}

// send performs a single write. Writes are never retried.
func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
	}

	body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(body, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, payload)
	})
	if circuitbreaker.IsOpen(err) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrUnavailable) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}

func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

// escape makes a single path segment safe to append to a route.
func escape(segment string) string {
	return url.PathEscape(segment)
}
