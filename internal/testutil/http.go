package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPTestCase represents a test case for HTTP handler testing.
type HTTPTestCase struct {
	Name           string
	Method         string
	Path           string
	Body           interface{}
	Headers        map[string]string
	ExpectedStatus int
	ExpectedCode   string
	Setup          func(t *testing.T)
	Validate       func(t *testing.T, w *httptest.ResponseRecorder)
}

// RunHTTPTestCases runs a slice of HTTP test cases against a router.
func RunHTTPTestCases(t *testing.T, engine *gin.Engine, cases []HTTPTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			RunHTTPTestCase(t, engine, tc)
		})
	}
}

// RunHTTPTestCase runs a single HTTP test case through the full router so
// middleware and path parameters apply.
func RunHTTPTestCase(t *testing.T, engine *gin.Engine, tc HTTPTestCase) {
	t.Helper()

	if tc.Setup != nil {
		tc.Setup(t)
	}

	method := tc.Method
	if method == "" {
		method = http.MethodGet
	}
	w := PerformRequest(t, engine, method, tc.Path, tc.Body, tc.Headers)

	if tc.ExpectedStatus != 0 {
		assert.Equal(t, tc.ExpectedStatus, w.Code, "Unexpected status code: %s", w.Body.String())
	}
	if tc.ExpectedCode != "" {
		AssertErrorCode(t, w, tc.ExpectedCode)
	}
	if tc.Validate != nil {
		tc.Validate(t, w)
	}
}

// PerformRequest sends a JSON request through the engine and records the response.
func PerformRequest(t *testing.T, engine *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = ToJSONReader(t, body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// JSONBody parses the response body as JSON.
func JSONBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var result map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err, "Failed to parse JSON response")
	return result
}

// JSONBodyAs parses the response body into the provided type.
func JSONBodyAs[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var result T
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err, "Failed to parse JSON response")
	return result
}

// AssertSuccess asserts the response is a successful API envelope.
func AssertSuccess(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	resp := JSONBody(t, w)
	assert.Equal(t, true, resp["success"], "Expected success to be true: %s", w.Body.String())
	assert.Nil(t, resp["error"], "Expected no error")
	return resp
}

// AssertErrorCode asserts the response is an error envelope with the given code.
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) {
	t.Helper()

	resp := JSONBody(t, w)
	assert.Equal(t, false, resp["success"], "Expected success to be false")

	errMap, ok := resp["error"].(map[string]interface{})
	require.True(t, ok, "Expected error object in response")
	assert.Equal(t, expectedCode, errMap["code"], "Unexpected error code")
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v interface{}) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
