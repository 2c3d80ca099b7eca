package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is where the development API listens.
const DefaultBaseURL = "https://localhost:7044/api"

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// APIError is a non-2xx response from the cinema API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap lets [errors.Is] match [shared.ErrAPIRequest] and the status sentinel.
func (e *APIError) Unwrap() []error {
	errs := []error{shared.ErrAPIRequest}
	switch e.Status {
	case http.StatusUnauthorized:
		errs = append(errs, shared.ErrNotAuthenticated)
	case http.StatusForbidden:
		errs = append(errs, shared.ErrForbidden)
	case http.StatusNotFound:
		errs = append(errs, shared.ErrNotFound)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		errs = append(errs, shared.ErrServiceUnavailable)
	}
	return errs
}

// CinemaService implements [Cinema] over HTTP.
type CinemaService struct {
	baseURL    string
	base       *http.Client
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	token      string
}

// NewCinemaService creates a client for the API at baseURL.
//
// A nil client defaults to [http.DefaultClient]; a nil limiter disables rate limiting.
func NewCinemaService(baseURL string, client *http.Client, limiter *rate.Limiter) *CinemaService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &CinemaService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		base:       client,
		httpClient: client,
		limiter:    limiter,
		logger:     log.New(io.Discard),
	}
}

// NewCinemaServiceFromConfig builds a client, its transport and its limiter from cfg.
func NewCinemaServiceFromConfig(cfg shared.APIConfig) *CinemaService {
	return NewCinemaService(cfg.BaseURL, NewHTTPClient(cfg), NewLimiter(cfg.RateLimit))
}

// NewHTTPClient returns an [http.Client] with the configured timeout.
//
// InsecureSkipVerify accepts the self-signed certificate of a local development API.
func NewHTTPClient(cfg shared.APIConfig) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{Timeout: cfg.Timeout(), Transport: transport}
}

// NewLimiter allows rps requests per second with a burst of the same size.
// Non-positive rates return nil (unlimited).
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// SetLogger sets the logger used for request tracing.
func (c *CinemaService) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// BaseURL returns the API root.
func (c *CinemaService) BaseURL() string { return c.baseURL }

// Token returns the bearer token, if any.
func (c *CinemaService) Token() string { return c.token }

// WithToken returns a copy of c whose requests carry token as a bearer credential.
//
// The copy shares the limiter; an empty token yields an anonymous client.
func (c *CinemaService) WithToken(token string) Cinema {
	return c.Authorized(token)
}

// Authorized is [CinemaService.WithToken] with a concrete return type.
func (c *CinemaService) Authorized(token string) *CinemaService {
	clone := *c
	clone.token = token
	clone.httpClient = c.base

	if token != "" {
		base := c.base.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		clone.httpClient = &http.Client{
			Timeout:       c.base.Timeout,
			CheckRedirect: c.base.CheckRedirect,
			Jar:           c.base.Jar,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
				Base:   base,
			},
		}
	}
	return &clone
}

func (c *CinemaService) requireToken() error {
	if c.token == "" {
		return fmt.Errorf("%w: log in first", shared.ErrNotAuthenticated)
	}
	return nil
}

// request describes one API call.
type request struct {
	method   string
	endpoint string
	query    url.Values
	body     any
	result   any
	auth     bool
	fallback string
}

func (c *CinemaService) doRequest(ctx context.Context, r request) error {
	if r.auth {
		if err := c.requireToken(); err != nil {
			return err
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	apiURL := c.baseURL + r.endpoint
	if len(r.query) > 0 {
		apiURL += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, apiURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrServiceUnavailable, r.fallback, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request", "method", r.method, "endpoint", r.endpoint, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data, r.fallback)}
	}

	if r.result == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, r.result); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrUnexpectedResponse, r.fallback, err)
	}
	return nil
}

// errorBody covers the error shapes the API produces.
type errorBody struct {
	Title       string
	FieldErrors map[string][]string
	Message     string
	ListMessage string
	ListErrors  []string
}

func (b *errorBody) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	str := func(key string) string {
		var s string
		if v, ok := raw[key]; ok {
			_ = json.Unmarshal(v, &s)
		}
		return s
	}

	b.Title = str("title")
	b.Message = str("message")
	b.ListMessage = str("Message")

	if v, ok := raw["errors"]; ok {
		var fields map[string][]string
		if err := json.Unmarshal(v, &fields); err == nil {
			b.FieldErrors = fields
		} else {
			var list []string
			if err := json.Unmarshal(v, &list); err == nil {
				b.ListErrors = list
			}
		}
	}
	if v, ok := raw["Errors"]; ok {
		var list []string
		if err := json.Unmarshal(v, &list); err == nil {
			b.ListErrors = list
		}
	}
	return nil
}

// errorMessage extracts the most specific message from an error body, falling back to fallback.
func errorMessage(body []byte, fallback string) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return fallback
	}

	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		var s string
		if json.Unmarshal(body, &s) == nil && s != "" {
			return s
		}
		if body[0] == '{' || body[0] == '[' || body[0] == '<' {
			return fallback
		}
		return shared.Truncate(string(body), 300)
	}

	switch {
	case len(e.FieldErrors) > 0:
		title := e.Title
		if title == "" {
			title = fallback
		}
		return title + ": " + strings.Join(flattenFieldErrors(e.FieldErrors), ", ")
	case e.ListMessage != "" || len(e.ListErrors) > 0:
		msg := e.ListMessage
		if msg == "" {
			msg = fallback
		}
		if len(e.ListErrors) == 0 {
			return msg
		}
		return msg + "\n" + strings.Join(e.ListErrors, ", ")
	case e.Message != "":
		return e.Message
	case e.Title != "":
		return e.Title
	default:
		return fallback
	}
}

// flattenFieldErrors lists validation messages in field-name order.
func flattenFieldErrors(fields map[string][]string) []string {
	var msgs []string
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		msgs = append(msgs, fields[k]...)
	}
	return msgs
}

// IsStatus reports whether err is an [*APIError] with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
