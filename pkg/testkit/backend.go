// Package testkit fakes the POS backend for tests. A Backend is an
// http.RoundTripper scripted with envelope responses; installed on the
// gateway's shared client it lets whole flows run without a network:
//
//	backend := testkit.NewBackend(
//	    testkit.Route{Method: "POST", Path: "/bills", Data: map[string]any{"_id": "bill-1"}},
//	)
//	defer backend.Install()()
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukaanlabs/dukaan/pkg/gateway"
)

// Route scripts one backend response. Path is a prefix match against the
// request path; an empty Method matches any verb. Routes are tried in order.
type Route struct {
	Method  string
	Path    string
	Status  int    // 0 means 200
	Fail    bool   // envelope success=false
	Message string // envelope message
	Data    interface{}
	RawBody string // overrides the envelope entirely (e.g. a bare 404 page)
}

type routeEntry struct {
	route Route
	calls int
}

// Backend is the scripted transport. Unmatched requests get a bare 404,
// which the gateway reads as route-missing.
type Backend struct {
	mu     sync.Mutex
	routes []routeEntry
}

// NewBackend scripts a Backend with the given routes.
func NewBackend(routes ...Route) *Backend {
	b := &Backend{}
	for _, r := range routes {
		b.routes = append(b.routes, routeEntry{route: r})
	}
	return b
}

// Install points the gateway's shared client at this backend and returns
// the restore function:
//
//	defer backend.Install()()
func (b *Backend) Install() func() {
	gateway.DefaultClient.Transport = b
	return gateway.ResetTransport
}

// RoundTrip matches the request against the scripted routes.
func (b *Backend) RoundTrip(req *http.Request) (*http.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.routes {
		e := &b.routes[i]
		if e.route.Method != "" && e.route.Method != req.Method {
			continue
		}
		if !strings.HasPrefix(req.URL.Path, e.route.Path) {
			continue
		}
		e.calls++
		return buildResponse(req, e.route)
	}

	return &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       io.NopCloser(strings.NewReader("<html>404 page not found</html>")),
		Request:    req,
	}, nil
}

// Calls reports how many requests matched the route at index i, in
// scripting order.
func (b *Backend) Calls(i int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.routes) {
		return 0
	}
	return b.routes[i].calls
}

// AssertAllCalled fails the test when any scripted route was never hit.
func (b *Backend) AssertAllCalled(t testing.TB) {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.routes {
		assert.Positivef(t, e.calls,
			"scripted route %s %s was never called", e.route.Method, e.route.Path)
	}
}

func buildResponse(req *http.Request, r Route) (*http.Response, error) {
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}

	var body []byte
	if r.RawBody != "" {
		body = []byte(r.RawBody)
	} else {
		env := map[string]interface{}{
			"success": !r.Fail,
			"message": r.Message,
		}
		if r.Data != nil {
			env["data"] = r.Data
		}
		var err error
		body, err = json.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("testkit: encode scripted response: %w", err)
		}
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Request:    req,
	}, nil
}

// Unreachable is a RoundTripper that fails every request at the transport
// level, simulating a backend that is down.
type Unreachable struct{}

func (Unreachable) RoundTrip(req *http.Request) (*http.Response, error) {
	return nil, fmt.Errorf("testkit: connection refused (%s)", req.URL.Host)
}
