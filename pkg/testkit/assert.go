package testkit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the response code.
func AssertStatusCode(t *testing.T, s *Scenario, got int) {
	t.Helper()
	assert.Equal(t, s.ExpectedCode, got, "[%s] HTTP status code mismatch", s.Name)
}

// AssertJSONBody compares expected and actual as decoded JSON, so key order
// and whitespace never matter. Keys named in s.IgnoreFields are removed
// from both sides first.
func AssertJSONBody(t *testing.T, s *Scenario, expected, actual []byte) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	var exp, act interface{}
	require.NoError(t, json.Unmarshal(expected, &exp), "[%s] expected body is not valid JSON", s.Name)
	if !assert.NoError(t, json.Unmarshal(actual, &act), "[%s] actual body is not valid JSON\nbody: %s", s.Name, actual) {
		return
	}

	if len(s.IgnoreFields) > 0 {
		ignore := make(map[string]bool, len(s.IgnoreFields))
		for _, f := range s.IgnoreFields {
			ignore[f] = true
		}
		exp = strip(exp, ignore)
		act = strip(act, ignore)
	}

	assert.Equal(t, exp, act, "[%s] response body mismatch", s.Name)
}

// AssertMocksAllCalled fails for every mock step that never matched.
func AssertMocksAllCalled(t *testing.T, s *Scenario, mt *MockTransport) {
	t.Helper()
	for _, err := range mt.AssertAllCalled() {
		assert.NoError(t, err, "[%s]", s.Name)
	}
}

func strip(v interface{}, ignore map[string]bool) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		for k, child := range x {
			if ignore[k] {
				delete(x, k)
				continue
			}
			x[k] = strip(child, ignore)
		}
	case []interface{}:
		for i, child := range x {
			x[i] = strip(child, ignore)
		}
	}
	return v
}
