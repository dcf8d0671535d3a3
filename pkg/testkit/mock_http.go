package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockTransport is an http.RoundTripper that answers requests from the
// scenario's mock steps. Steps are tried in order and may match repeatedly.
//
//	mt := testkit.NewMockTransport(s)
//	catalogHTTP.DefaultClient.Transport = mt
//	defer catalogHTTP.ResetTransport()
type MockTransport struct {
	mu      sync.Mutex
	steps   []mockEntry
	require bool
	seen    []*http.Request
}

type mockEntry struct {
	step  MockStep
	calls int
}

func NewMockTransport(s *Scenario) *MockTransport {
	mt := &MockTransport{require: s.IsMockRequired}
	for _, step := range s.MockSteps {
		mt.steps = append(mt.steps, mockEntry{step: step})
	}
	return mt
}

func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.seen = append(mt.seen, req)

	for i := range mt.steps {
		e := &mt.steps[i]
		if e.step.Method != "" && !strings.EqualFold(e.step.Method, req.Method) {
			continue
		}
		if !strings.HasPrefix(req.URL.String(), e.step.MatchURL) {
			continue
		}
		e.calls++
		return buildResponse(req, e.step.ReturnData), nil
	}

	if mt.require {
		return nil, fmt.Errorf("testkit: unexpected outgoing %s %s, no matching mock step", req.Method, req.URL)
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"error":"no mock configured"}`)),
		Request:    req,
	}, nil
}

// Requests returns the outgoing requests seen so far. Bodies are not
// replayable.
func (mt *MockTransport) Requests() []*http.Request {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]*http.Request(nil), mt.seen...)
}

// AssertAllCalled lists the steps that never matched a request.
func (mt *MockTransport) AssertAllCalled() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var errs []error
	for _, e := range mt.steps {
		if e.calls == 0 {
			errs = append(errs, fmt.Errorf("testkit: mock step %s %q was never called", e.step.Method, e.step.MatchURL))
		}
	}
	return errs
}

func buildResponse(req *http.Request, rd MockReturnData) *http.Response {
	code := rd.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(rd.Body)),
		Request:    req,
	}
}
