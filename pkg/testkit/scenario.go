// Package testkit provides a JSON-scenario-driven HTTP testing harness.
//
// Each scenario describes:
//   - The HTTP request to fire (method, URL, headers)
//   - Expected HTTP status code
//   - Expected response headers (exact match, "" asserts absence)
//   - Expected response body, inline or from a file (byte-for-byte)
//
// Scenario files live next to your *_test.go files:
//
//	testdata/
//	  scenarios.json          ← array of scenarios
//	  home_page.json          ← or one scenario per file
//	  public/home/index.html  ← expected body fixture
//
// Example _test.go:
//
//	func TestHTTP(t *testing.T) {
//	    handler := kernel.NewHTTPKernel(cfg, disks, nil).Handler()
//	    testkit.RunFile(t, handler, "testdata/scenarios.json")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ─── Schema ───────────────────────────────────────────────────────────────────

// Scenario describes a single HTTP test case.
type Scenario struct {
	// Meta
	Name        string `json:"name"`
	Description string `json:"description"`

	// Request
	RequestMethod string            `json:"requestMethod"` // defaults to GET
	RequestURL    string            `json:"requestUrl"`    // e.g. /audio/fx/click.wav
	Headers       map[string]string `json:"headers"`       // extra request headers

	// Response assertions
	ExpectedCode     int               `json:"expectedCode"`
	ExpectedHeaders  map[string]string `json:"expectedHeaders"`
	ExpectedBody     *string           `json:"expectedBody"`     // nil skips the body check
	ResponseFileName string            `json:"responseFileName"` // expected body file, relative to the scenario

	// resolved at load time: not in JSON
	dir string
}

// ─── Loading ──────────────────────────────────────────────────────────────────

// LoadScenario reads and validates a scenario from a JSON file.
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

// LoadScenarioArray reads and validates an array of scenarios from one file.
func LoadScenarioArray(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve scenario array path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read scenario array %q: %w", abs, err)
	}

	var scenarios []*Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("testkit: parse scenario array %q: %w", abs, err)
	}

	dir := filepath.Dir(abs)
	for i, s := range scenarios {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: invalid scenario array item %d in %q: %w", i, abs, err)
		}
		s.dir = dir
	}
	return scenarios, nil
}

// validate performs basic sanity checks on the loaded scenario.
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
	if s.ExpectedBody != nil && s.ResponseFileName != "" {
		return fmt.Errorf("expectedBody and responseFileName are mutually exclusive")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	return nil
}

// ResponseBodyPath returns the absolute path to the expected response file.
// Returns "" when ResponseFileName is not set.
func (s *Scenario) ResponseBodyPath() string {
	if s.ResponseFileName == "" {
		return ""
	}
	if filepath.IsAbs(s.ResponseFileName) {
		return s.ResponseFileName
	}
	return filepath.Join(s.dir, s.ResponseFileName)
}
