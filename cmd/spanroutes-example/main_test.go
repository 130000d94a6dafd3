package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/illuscio-dev/spanroutes-go/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func createHandler(test *testing.T, yaml string) http.Handler {
	cfg, err := config.Parse([]byte(yaml))
	require.NoError(test, err)

	handler, err := newHandler(cfg, zap.NewNop(), prometheus.NewRegistry())
	require.NoError(test, err)
	return handler
}

func serve(
	handler http.Handler, method string, path string, accept string, body string,
) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if accept != "" {
		request.Header.Set("Accept", accept)
	}
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

const demoConfig = `
negotiators:
  - name: json
  - name: yaml
  - name: xml
`

func TestDemoListFoo(test *testing.T) {
	handler := createHandler(test, demoConfig)

	recorder := serve(handler, http.MethodGet, "/foo", "", "")
	assert.Equal(test, http.StatusOK, recorder.Code)
	assert.Equal(test, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"))
	assert.JSONEq(
		test,
		`[{"name": "Foo#1"}, {"name": "Foo#2", "extra_information": "Something more éèêàùß!"}, {"name": "Foo#3"}]`,
		recorder.Body.String(),
	)

	recorder = serve(handler, http.MethodGet, "/foo", "application/yaml", "")
	assert.Equal(test, http.StatusOK, recorder.Code)
	assert.Equal(test, "application/yaml; charset=utf-8", recorder.Header().Get("Content-Type"))
	assert.Contains(test, recorder.Body.String(), "Foo#1")
}

func TestDemoListFooPaged(test *testing.T) {
	handler := createHandler(test, demoConfig)

	recorder := serve(handler, http.MethodGet, "/foo?paging-offset=1&paging-limit=1", "", "")
	assert.Equal(test, http.StatusOK, recorder.Code)
	assert.JSONEq(
		test,
		`[{"name": "Foo#2", "extra_information": "Something more éèêàùß!"}]`,
		recorder.Body.String(),
	)
	assert.Equal(test, "3", recorder.Header().Get("paging-total-items"))
	assert.Equal(test, "1", recorder.Header().Get("paging-current-page"))
	assert.Contains(test, recorder.Header().Get("paging-next"), "paging-offset=2")
	assert.Contains(test, recorder.Header().Get("paging-previous"), "paging-offset=0")

	recorder = serve(handler, http.MethodGet, "/foo?paging-limit=-1", "", "")
	assert.Equal(test, http.StatusBadRequest, recorder.Code)
	assert.Equal(test, "QueryParamError", recorder.Header().Get("error-name"))
}

func TestDemoCreateAndDelete(test *testing.T) {
	handler := createHandler(test, demoConfig)

	recorder := serve(handler, http.MethodPost, "/foo/10", "", `{"name": "Ten"}`)
	assert.Equal(test, http.StatusCreated, recorder.Code)

	recorder = serve(handler, http.MethodPost, "/foo", "", `{"name": "Eleven"}`)
	assert.Equal(test, http.StatusCreated, recorder.Code)

	recorder = serve(handler, http.MethodGet, "/foo", "", "")
	assert.Contains(test, recorder.Body.String(), `"Ten"`)
	assert.Contains(test, recorder.Body.String(), `"Eleven"`)

	recorder = serve(handler, http.MethodDelete, "/foo/10", "", "")
	assert.Equal(test, http.StatusOK, recorder.Code)

	recorder = serve(handler, http.MethodDelete, "/foo/10", "", "")
	assert.Equal(test, http.StatusNotFound, recorder.Code)
	assert.Equal(test, "PathParamError", recorder.Header().Get("error-name"))
}

func TestDemoMetrics(test *testing.T) {
	handler := createHandler(test, demoConfig)

	serve(handler, http.MethodGet, "/foo", "", "")
	serve(handler, http.MethodGet, "/foo", "application/Nonsense", "")

	recorder := serve(handler, http.MethodGet, "/metrics", "", "")
	assert.Equal(test, http.StatusOK, recorder.Code)
	assert.Contains(test, recorder.Body.String(), "spanroutes_negotiation_total")
	assert.Contains(test, recorder.Body.String(), `result="not_acceptable"`)
}

func TestLoadConfig(test *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(test, err)
	assert.Equal(test, config.DefaultAddress, cfg.Server.Address)

	path := filepath.Join(test.TempDir(), "config.yaml")
	require.NoError(test, os.WriteFile(path, []byte("server: {address: \":9999\"}\n"), 0o600))

	cfg, err = loadConfig(path)
	require.NoError(test, err)
	assert.Equal(test, ":9999", cfg.Server.Address)
}
