package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climatestudio/internal/config"
	"climatestudio/internal/launcher"
	"climatestudio/internal/models"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	docsDir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(docsDir, name), []byte("content of "+name), 0o644))
	}

	cfg := config.LoadConfig()
	sess := launcher.NewSession(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	srv := httptest.NewServer(NewRouter(sess, docsDir, 2))
	t.Cleanup(srv.Close)
	return srv, docsDir
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)
	assert.Contains(t, string(body), "studio-launcher")
}

func TestReadyEndpointNotReady(t *testing.T) {
	srv, _ := newTestServer(t)

	// No children have been started for this session.
	resp, body := get(t, srv.URL+"/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "not ready")
}

func TestSessionEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/api/session")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info models.SessionInfo
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, "localhost:30011", info.ServerAddr)
	assert.Equal(t, "localhost:4173", info.ClientAddr)
	assert.Empty(t, info.Processes)
}

func TestLogsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/api/logs?limit=5")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var events []models.Event
	require.NoError(t, json.Unmarshal(body, &events))
	assert.Empty(t, events)
}

func TestDocumentsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/api/documents")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var groups []models.DocumentGroup
	require.NoError(t, json.Unmarshal(body, &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"a.txt", "b.txt"}, groups[0].Files)
	assert.Equal(t, []string{"c.txt"}, groups[1].Files)
}

func TestDocumentContentEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/api/documents/a.txt")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "content of a.txt", string(body))

	resp, _ = get(t, srv.URL+"/api/documents/absent.txt")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
