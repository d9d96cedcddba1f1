package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"hwrouter/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

// DefaultBaseURL is the factory address of the device's web management UI.
const DefaultBaseURL = "http://192.168.3.1"

// Options configures a Session.
type Options struct {
	// BaseURL is the device management address, e.g. "http://192.168.3.1".
	BaseURL string

	// TimeoutSeconds bounds each request/response exchange.
	TimeoutSeconds int64
}

// Session is an HTTP session against one device. It persists cookies
// across requests, which the device relies on to associate the CSRF
// tokens and login nonces of a handshake with one browser session.
//
// A Session must not be shared by concurrent login attempts: the device
// binds handshake state to the session cookie, so interleaved attempts
// would poison each other's tokens.
type Session struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
	logger  *log.Logger

	mu      sync.Mutex
	cookies map[string]string
	closed  bool
}

// NewSession creates an HTTP session for the given device address.
func NewSession(opts Options, logger *log.Logger) (*Session, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("base URL must start with http:// or https://: %q", baseURL)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := time.Duration(opts.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &Session{
		baseURL: baseURL,
		timeout: timeout,
		cookies: make(map[string]string),
		logger:  logger,
		client: &fasthttp.Client{
			MaxConnsPerHost:               4,
			MaxIdleConnDuration:           10 * time.Second,
			ReadTimeout:                   timeout,
			WriteTimeout:                  timeout,
			DisableHeaderNamesNormalizing: true,
		},
	}

	logger.Debug("msg", "HTTP session created",
		"component", "transport",
		"base_url", baseURL,
		"timeout", timeout.String())
	return s, nil
}

// Get issues a GET for path relative to the base URL and returns the
// status code and raw body.
func (s *Session) Get(ctx context.Context, path string) (int, []byte, error) {
	return s.do(ctx, fasthttp.MethodGet, path, nil)
}

// PostJSON marshals body as JSON and POSTs it to path relative to the
// base URL, returning the status code and raw response body.
func (s *Session) PostJSON(ctx context.Context, path string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return s.do(ctx, fasthttp.MethodPost, path, payload)
}

// Close releases the session's connections and forgets its cookies.
// Any in-flight exchange fails once its socket is torn down.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cookies = make(map[string]string)
	s.mu.Unlock()

	s.client.CloseIdleConnections()
	s.logger.Debug("msg", "HTTP session closed",
		"component", "transport",
		"base_url", s.baseURL)
}

func (s *Session) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, nil, fmt.Errorf("session is closed")
	}
	cookies := make(map[string]string, len(s.cookies))
	for k, v := range s.cookies {
		cookies[k] = v
	}
	s.mu.Unlock()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	req.SetRequestURI(s.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("User-Agent", fmt.Sprintf("hwrouter/%s", version.Short()))
	for name, value := range cookies {
		req.Header.SetCookie(name, value)
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	// fasthttp has no context-aware Do; honor an earlier ctx deadline
	// by shrinking the exchange timeout.
	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	err := s.client.DoTimeout(req, resp, timeout)

	statusCode := resp.StatusCode()
	var responseBody []byte
	if len(resp.Body()) > 0 {
		responseBody = make([]byte, len(resp.Body()))
		copy(responseBody, resp.Body())
	}
	if err == nil {
		s.storeCookies(resp)
	}

	// Release immediately, not deferred
	fasthttp.ReleaseRequest(req)
	fasthttp.ReleaseResponse(resp)

	if err != nil {
		s.logger.Warn("msg", "HTTP request failed",
			"component", "transport",
			"method", method,
			"path", path,
			"error", err)
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	s.logger.Debug("msg", "HTTP exchange complete",
		"component", "transport",
		"method", method,
		"path", path,
		"status_code", statusCode,
		"body_bytes", len(responseBody))
	return statusCode, responseBody, nil
}

// storeCookies merges Set-Cookie headers from a response into the jar.
// The device session cookie carries no domain restrictions we need to
// honor; every cookie goes back on every request to the same base URL.
func (s *Session) storeCookies(resp *fasthttp.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp.Header.VisitAllCookie(func(key, value []byte) {
		c := fasthttp.AcquireCookie()
		if err := c.ParseBytes(value); err == nil {
			s.cookies[string(c.Key())] = string(c.Value())
		}
		fasthttp.ReleaseCookie(c)
	})
}
