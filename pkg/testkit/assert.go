package testkit

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertStatusCode checks the response code with testify.
func AssertStatusCode(t *testing.T, scenario *Scenario, got int) {
	t.Helper()
	assert.Equal(t, scenario.ExpectedCode, got,
		"[%s] HTTP status code mismatch", scenario.Name)
}

// AssertHeaders compares each expected header exactly. An empty expected
// value asserts the header is absent.
func AssertHeaders(t *testing.T, scenario *Scenario, got http.Header) {
	t.Helper()

	for key, want := range scenario.ExpectedHeaders {
		if want == "" {
			assert.Empty(t, got.Values(key),
				"[%s] header %s should be absent", scenario.Name, key)
			continue
		}
		assert.Equal(t, want, got.Get(key),
			"[%s] header %s mismatch", scenario.Name, key)
	}
}

// AssertBody compares the body byte-for-byte. Bodies are shown as strings
// so testify's diff stays readable.
func AssertBody(t *testing.T, scenario *Scenario, expected, actual []byte) {
	t.Helper()
	assert.Equal(t, string(expected), string(actual),
		"[%s] response body mismatch", scenario.Name)
}
