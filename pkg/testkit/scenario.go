// Package testkit runs JSON-described HTTP scenarios against a handler.
//
// A scenario file names the request to fire, the status to expect and,
// optionally, the response body to compare against. Outgoing calls made
// through pkg/http during the request can be answered by mock steps.
//
//	testdata/
//	  create_product.json       scenario
//	  create_product_req.json   request body
//	  create_product_res.json   expected response body
//
//	func TestProductAPI(t *testing.T) {
//	    testkit.RunDir(t, handler, "testdata")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scenario is one API test case.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestFileName string            `json:"requestFileName"` // relative to the scenario file
	RequestBody     json.RawMessage   `json:"requestBody"`     // inline alternative to requestFileName
	Headers         map[string]string `json:"headers"`

	ExpectedCode     int             `json:"expectedCode"`
	ResponseFileName string          `json:"responseFileName"`
	ResponseBody     json.RawMessage `json:"responseBody"`

	// IgnoreFields are object keys dropped from both bodies before
	// comparison, at any depth. Use it for server-issued ids.
	IgnoreFields []string `json:"ignoreFields"`

	// IsMockRequired fails any outgoing call that has no matching step.
	IsMockRequired bool       `json:"isMockRequired"`
	MockSteps      []MockStep `json:"mockSteps"`

	dir string
}

// MockStep answers outgoing HTTP calls whose method and URL match.
type MockStep struct {
	Method     string         `json:"method"`   // empty matches any method
	MatchURL   string         `json:"matchUrl"` // prefix, empty matches any URL
	ReturnData MockReturnData `json:"returnData"`
}

// MockReturnData is the synthetic response for a step.
type MockReturnData struct {
	StatusCode int             `json:"statusCode"` // defaults to 200
	Body       json.RawMessage `json:"body"`
}

// LoadScenario reads and checks a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestFileName != "" && len(s.RequestBody) > 0 {
		return fmt.Errorf("requestFileName and requestBody are mutually exclusive")
	}
	if s.ResponseFileName != "" && len(s.ResponseBody) > 0 {
		return fmt.Errorf("responseFileName and responseBody are mutually exclusive")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	s.RequestMethod = strings.ToUpper(s.RequestMethod)
	return nil
}

// RequestPayload returns the request body, or nil when there is none.
func (s *Scenario) RequestPayload() ([]byte, error) {
	if len(s.RequestBody) > 0 {
		return s.RequestBody, nil
	}
	return s.readRelative(s.RequestFileName)
}

// ExpectedBody returns the expected response body, or nil when the
// scenario does not assert one.
func (s *Scenario) ExpectedBody() ([]byte, error) {
	if len(s.ResponseBody) > 0 {
		return s.ResponseBody, nil
	}
	return s.readRelative(s.ResponseFileName)
}

func (s *Scenario) readRelative(name string) ([]byte, error) {
	if name == "" {
		return nil, nil
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(s.dir, name)
	}
	return os.ReadFile(name)
}

// LoadAllFromDir loads every *.json file directly under dir that parses as
// a scenario. Body fixtures, which have no name, are skipped.
func LoadAllFromDir(dir string) ([]*Scenario, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	var scenarios []*Scenario
	for _, path := range entries {
		if isFixture(path) {
			continue
		}
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("testkit: no scenario files found in %q", dir)
	}
	return scenarios, nil
}

func isFixture(path string) bool {
	base := strings.TrimSuffix(filepath.Base(path), ".json")
	return strings.HasSuffix(base, "_req") || strings.HasSuffix(base, "_res")
}
