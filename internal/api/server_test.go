package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaTriXy/babysitter-sub001/internal/catalog"
	"github.com/MaTriXy/babysitter-sub001/internal/engine"
)

func newTestServer() *Server {
	return NewServer(catalog.Registry(), engine.StubDispatcher{})
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echoContentType, "application/json")
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

const echoContentType = "Content-Type"

func TestListProcesses(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodGet, "/api/v1/processes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []processSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out)
	for _, p := range out {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Inputs)
	}
}

func TestGetProcessMatchesSlashedIDs(t *testing.T) {
	srv := newTestServer()

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/processes/development/connection-pool", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out processSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "development/connection-pool", out.ID)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/processes/development/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLaunchUnknownProcess(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodPost, "/api/v1/runs",
		`{"process": "nope", "inputs": {}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func launchRun(t *testing.T, srv *Server, body string) runState {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/runs", body)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var state runState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.NotEmpty(t, state.ID)
	require.Equal(t, "running", state.Status)
	return state
}

func getRun(t *testing.T, srv *Server, id string) runState {
	t.Helper()
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/runs/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var state runState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	return state
}

func pendingBreakpoints(t *testing.T, srv *Server) []engine.PendingBreakpoint {
	t.Helper()
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/breakpoints", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out []engine.PendingBreakpoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRunCompletesAfterBreakpointApproval(t *testing.T) {
	srv := newTestServer()
	state := launchRun(t, srv, `{"process": "scaffolding/golden-path-templates", "inputs": {"platformName": "paved-road"}}`)

	var pending []engine.PendingBreakpoint
	require.Eventually(t, func() bool {
		pending = pendingBreakpoints(t, srv)
		return len(pending) > 0
	}, 5*time.Second, 10*time.Millisecond, "run should park at its checkpoint")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/breakpoints/"+pending[0].ID, `{"approved": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		return getRun(t, srv, state.ID).Status == "completed"
	}, 5*time.Second, 10*time.Millisecond)

	final := getRun(t, srv, state.ID)
	require.NotNil(t, final.Result)
	assert.True(t, final.Result.Success)
	assert.Equal(t, "scaffolding/golden-path-templates", final.Result.Metadata.ProcessID)
}

func TestRunFailsAfterBreakpointRejection(t *testing.T) {
	srv := newTestServer()
	state := launchRun(t, srv, `{"process": "scaffolding/golden-path-templates", "inputs": {"platformName": "paved-road"}}`)

	var pending []engine.PendingBreakpoint
	require.Eventually(t, func() bool {
		pending = pendingBreakpoints(t, srv)
		return len(pending) > 0
	}, 5*time.Second, 10*time.Millisecond)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/breakpoints/"+pending[0].ID, `{"approved": false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		return getRun(t, srv, state.ID).Status == "failed"
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, getRun(t, srv, state.ID).Error, "rejected")
}

func TestResolveUnknownBreakpoint(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodPost, "/api/v1/breakpoints/no-such-id", `{"approved": true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUnknownRun(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodGet, "/api/v1/runs/no-such-id", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
