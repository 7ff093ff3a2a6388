// Package apiclient is the JSON-over-HTTP client shared by every HNR service
// wrapper. One Client is bound to one service base URL.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Backland-Labs/hnrflow/internal/logger"
)

// DefaultTimeout is the fixed per-request timeout
const DefaultTimeout = 10 * time.Second

// Client issues single-attempt JSON requests against one base URL
type Client struct {
	name    string
	baseURL string
	http    *resty.Client
	log     *logger.Logger
}

// Option configures a Client
type Option func(*options)

type options struct {
	name      string
	timeout   time.Duration
	transport http.RoundTripper
	log       *logger.Logger
}

// WithName labels the client in logs
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTransport sets the underlying round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithLogger sets the logger used for request logging
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a client for baseURL, which must be an absolute http(s) origin
func New(baseURL string, opts ...Option) (*Client, error) {
	if err := validateBaseURL(baseURL); err != nil {
		return nil, err
	}

	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetLogger()
	}
	if o.name == "" {
		o.name = baseURL
	}

	baseURL = strings.TrimRight(baseURL, "/")
	log := o.log.WithField("service", o.name)

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(o.timeout).
		SetTransport(logger.NewTransport(o.transport, log)).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0).
		SetLogger(log)

	return &Client{
		name:    o.name,
		baseURL: baseURL,
		http:    httpClient,
		log:     log,
	}, nil
}

// Name returns the service label
func (c *Client) Name() string {
	return c.name
}

// BaseURL returns the origin requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call sends one request. path must start with "/" and may carry a query
// string. body is sent as JSON only when non-empty; headers are merged over
// the default Content-Type: application/json.
//
// A non-2xx status yields a Result with IsError set and a nil error. The error
// return is reserved for requests that got no HTTP response (*TransportError)
// and for 2xx bodies that are not JSON.
func (c *Client) Call(ctx context.Context, method, path string, body interface{}, headers map[string]string) (*Result, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path must start with /, got: %q", path)
	}

	req := c.http.R().SetContext(ctx)
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	if !isEmptyBody(body) {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.SetBody(payload)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, &TransportError{Method: method, URL: c.baseURL + path, Err: err}
	}

	if !resp.IsSuccess() {
		result := newErrorResult(resp.StatusCode(), resp.Body())
		c.log.WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
			"status": result.Status,
		}).Debugf("Request returned error result: %s", result.ErrorMessage())
		return result, nil
	}

	result, err := newSuccessResult(resp.StatusCode(), resp.Body())
	if err != nil {
		return nil, fmt.Errorf("%s %s%s: %w", method, c.baseURL, path, err)
	}
	return result, nil
}

// Get is shorthand for Call with GET and no body
func (c *Client) Get(ctx context.Context, path string) (*Result, error) {
	return c.Call(ctx, http.MethodGet, path, nil, nil)
}

// Post is shorthand for Call with POST
func (c *Client) Post(ctx context.Context, path string, body interface{}, headers map[string]string) (*Result, error) {
	return c.Call(ctx, http.MethodPost, path, body, headers)
}

// Delete is shorthand for Call with DELETE and no body
func (c *Client) Delete(ctx context.Context, path string, headers map[string]string) (*Result, error) {
	return c.Call(ctx, http.MethodDelete, path, nil, headers)
}

// BearerAuth returns an Authorization header map for token
func BearerAuth(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// isEmptyBody mirrors "send a body only if it has content"
func isEmptyBody(body interface{}) bool {
	if body == nil {
		return true
	}
	v := reflect.ValueOf(body)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return true
		}
		return isEmptyBody(v.Elem().Interface())
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return v.Len() == 0
	}
	return false
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https, got: %s", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL must have a host, got: %s", raw)
	}
	return nil
}
