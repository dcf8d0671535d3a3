package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogHTTP "github.com/livraria-escolar/catalog/pkg/http"
)

// Run executes the scenario file at path against handler.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", path, err)
	}
	t.Run(s.Name, func(t *testing.T) {
		Exec(t, handler, s)
	})
}

// RunDir runs every scenario in dir as a subtest, in file-name order.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	scenarios, err := LoadAllFromDir(dir)
	if err != nil {
		t.Fatalf("%v", err)
	}
	for _, s := range scenarios {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			Exec(t, handler, s)
		})
	}
}

// Exec fires s against handler with the mock transport installed on the
// shared pkg/http client, then asserts status, body and mock usage. It
// returns the recorder for further checks.
func Exec(t *testing.T, handler http.Handler, s *Scenario) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := s.RequestPayload()
	if err != nil {
		t.Fatalf("[%s] read request body: %v", s.Name, err)
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	mt := NewMockTransport(s)
	catalogHTTP.DefaultClient.Transport = mt
	defer catalogHTTP.ResetTransport()

	req := httptest.NewRequest(s.RequestMethod, s.RequestURL, body)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)

	expected, err := s.ExpectedBody()
	if err != nil {
		t.Errorf("[%s] read expected body: %v", s.Name, err)
	} else {
		AssertJSONBody(t, s, expected, rec.Body.Bytes())
	}

	AssertMocksAllCalled(t, s, mt)
	return rec
}
