// Package gateway is the outbound API client for the POS backend.
//
// Every call goes through one seam that:
//
//   - attaches the x-username identity header when an operator profile is
//     cached (absence is fine, the server decides authorization);
//   - propagates the operation id and, for mutating verbs, an idempotency key;
//   - normalizes the {success, message, data} envelope and transport
//     failures into a single *Error taxonomy (error.go).
//
// There is no retry policy: one attempt per call. Retrying is an operator
// decision (re-scan, press refresh), never the transport's.
//
// Usage:
//
//	gw := gateway.New(config.APIBaseURL(), identity.Cached{})
//
//	var product Product
//	err := gw.Call(ctx, http.MethodGet, "/products/barcode/"+code, nil, &product)
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukaanlabs/dukaan/config"
	"github.com/dukaanlabs/dukaan/pkg/identity"
	"github.com/dukaanlabs/dukaan/pkg/metrics"
	"github.com/dukaanlabs/dukaan/pkg/opid"
)

// IdentityHeader carries the cached operator username on every request.
const IdentityHeader = "x-username"

// IdempotencyHeader lets the backend dedupe replayed mutations.
const IdempotencyHeader = "Idempotency-Key"

// defaultTransport is the connection-pooled transport used in production.
// Tests replace DefaultClient.Transport to intercept calls.
var defaultTransport = &gohttp.Transport{
	MaxIdleConns:        50,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is the shared HTTP client behind every outbound request.
// The testkit swaps DefaultClient.Transport to run without a network:
//
//	gateway.DefaultClient.Transport = backend
//	defer gateway.ResetTransport()
var DefaultClient = &gohttp.Client{Transport: defaultTransport}

// ResetTransport restores the production transport on DefaultClient.
func ResetTransport() {
	DefaultClient.Transport = defaultTransport
}

// Envelope is the uniform response shape of the POS backend.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Result is the degraded-read shape for BI panels: never an error, always
// renderable.
type Result struct {
	Success bool
	Message string
	Kind    Kind // set when Success is false
	Data    json.RawMessage
}

// Client dispatches requests against one backend base URL.
type Client struct {
	base     string
	identity identity.Source
	timeout  time.Duration
}

// Option tweaks a Client.
type Option func(*Client)

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New builds a Client for baseURL, consulting src for the identity header.
func New(baseURL string, src identity.Source, opts ...Option) *Client {
	c := &Client{
		base:     strings.TrimRight(baseURL, "/"),
		identity: src,
		timeout:  config.GatewayTimeout(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Fluent request builder ───────────────────────────────────────────────────

// Request is a fluent builder for one backend call.
type Request struct {
	client  *Client
	method  string
	path    string
	query   url.Values
	headers map[string]string
	body    interface{}
	timeout time.Duration
	ctx     context.Context
}

// Get starts a GET request for path (joined onto the base URL).
func (c *Client) Get(path string) *Request { return c.newRequest(gohttp.MethodGet, path) }

// Post starts a POST request.
func (c *Client) Post(path string) *Request { return c.newRequest(gohttp.MethodPost, path) }

// Put starts a PUT request.
func (c *Client) Put(path string) *Request { return c.newRequest(gohttp.MethodPut, path) }

// Delete starts a DELETE request.
func (c *Client) Delete(path string) *Request { return c.newRequest(gohttp.MethodDelete, path) }

func (c *Client) newRequest(method, path string) *Request {
	return &Request{
		client:  c,
		method:  method,
		path:    path,
		query:   url.Values{},
		headers: map[string]string{"Content-Type": "application/json", "Accept": "application/json"},
		timeout: c.timeout,
		ctx:     context.Background(),
	}
}

// Query adds a query-string parameter.
func (r *Request) Query(key, value string) *Request {
	r.query.Set(key, value)
	return r
}

// Header sets a single request header.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Body sets the request body, marshalled to JSON.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	return r
}

// Timeout overrides the per-attempt timeout for this request only.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// WithContext sets the context (cancellation, op id propagation).
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// Send executes the request once and returns the raw response.
// Transport failures come back as *Error with KindUnreachable.
func (r *Request) Send() (*Response, error) {
	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, &Error{Kind: KindDecode, Message: fmt.Sprintf("encode request: %v", err)}
		}
		body = bytes.NewReader(data)
	}

	target := r.client.base + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Message: fmt.Sprintf("build request: %v", err)}
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if p, ok := r.client.identity.Profile(); ok {
		req.Header.Set(IdentityHeader, p.Username)
	}
	if id := opid.FromCtx(r.ctx); id != "" {
		req.Header.Set(opid.Header, id)
	}
	if mutating(r.method) {
		req.Header.Set(IdempotencyHeader, uuid.NewString())
	}

	start := time.Now()
	resp, err := DefaultClient.Do(req)
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(r.method, r.path, "error").Inc()
		return nil, &Error{Kind: KindUnreachable, Message: unreachableMessage}
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(r.method, r.path, "error").Inc()
		return nil, &Error{Kind: KindUnreachable, Message: unreachableMessage}
	}

	status := strconv.Itoa(resp.StatusCode)
	metrics.GatewayRequests.WithLabelValues(r.method, r.path, status).Inc()
	metrics.GatewayDuration.WithLabelValues(r.method, r.path).Observe(time.Since(start).Seconds())

	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Raw: raw}, nil
}

func mutating(method string) bool {
	switch method {
	case gohttp.MethodPost, gohttp.MethodPut, gohttp.MethodPatch, gohttp.MethodDelete:
		return true
	}
	return false
}

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps the raw HTTP response.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("gateway: decode JSON: %w", err)
	}
	return nil
}

// ── Envelope-aware helpers ───────────────────────────────────────────────────

// Call executes method path with body, unwraps the API envelope, and
// unmarshals envelope.data into dest (when dest is non-nil).
// Every failure is a *Error; success means the server confirmed the action.
func (c *Client) Call(ctx context.Context, method, path string, body, dest interface{}) error {
	req := c.newRequest(method, path).WithContext(ctx)
	if body != nil {
		req.Body(body)
	}

	resp, err := req.Send()
	if err != nil {
		return err
	}

	var env Envelope
	if jsonErr := json.Unmarshal(resp.Raw, &env); jsonErr != nil {
		// Not an API envelope at all. A bare 404 page means the route,
		// or the whole backend, is not deployed.
		if resp.StatusCode == gohttp.StatusNotFound {
			return &Error{Kind: KindRouteMissing, StatusCode: resp.StatusCode,
				Message: "route not found - backend may not be deployed"}
		}
		if !resp.OK() {
			return &Error{Kind: KindRejected, StatusCode: resp.StatusCode,
				Message: gohttp.StatusText(resp.StatusCode)}
		}
		return &Error{Kind: KindDecode, StatusCode: resp.StatusCode,
			Message: "unexpected response from server"}
	}

	if !env.Success || !resp.OK() {
		msg := env.Message
		if msg == "" {
			msg = gohttp.StatusText(resp.StatusCode)
		}
		kind := KindRejected
		if resp.StatusCode == gohttp.StatusNotFound {
			kind = KindNotFound
		}
		return &Error{Kind: kind, StatusCode: resp.StatusCode, Message: msg}
	}

	if dest != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			return &Error{Kind: KindDecode, StatusCode: resp.StatusCode,
				Message: fmt.Sprintf("decode response data: %v", err)}
		}
	}
	return nil
}

// Read performs a GET and folds every outcome into a Result so analytics
// panels can always render something instead of crashing.
func (c *Client) Read(ctx context.Context, path string, query url.Values) Result {
	req := c.Get(path).WithContext(ctx)
	for key, vals := range query {
		for _, v := range vals {
			req.Query(key, v)
		}
	}

	resp, err := req.Send()
	if err != nil {
		return Result{Success: false, Kind: KindOf(err), Message: Message(err)}
	}

	var env Envelope
	if jsonErr := json.Unmarshal(resp.Raw, &env); jsonErr != nil {
		if resp.StatusCode == gohttp.StatusNotFound {
			return Result{Success: false, Kind: KindRouteMissing,
				Message: "route not found - backend may not be deployed"}
		}
		return Result{Success: false, Kind: KindDecode, Message: "unexpected response from server"}
	}

	if !env.Success || !resp.OK() {
		msg := env.Message
		if msg == "" {
			msg = gohttp.StatusText(resp.StatusCode)
		}
		return Result{Success: false, Kind: KindRejected, Message: msg, Data: env.Data}
	}

	return Result{Success: true, Message: env.Message, Data: env.Data}
}
