package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dekarrin/fgrammar/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, useCache bool) (*Server, string) {
	t.Helper()
	cfg := Config{TokenSecret: []byte("test-secret")}
	if useCache {
		db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		cfg.Cache = db
	}
	srv := New(cfg)
	tok, err := srv.IssueToken("tester", time.Minute)
	require.NoError(t, err)
	return srv, tok
}

func doBuildRequest(t *testing.T, srv *Server, tok string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/grammars", bytes.NewReader(raw))
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func Test_handleBuildGrammar_success(t *testing.T) {
	srv, tok := newTestServer(t, false)
	w := doBuildRequest(t, srv, tok, map[string]interface{}{
		"grammar": map[string][][]string{
			"<start>": {{"hello"}},
		},
		"start": "<start>",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp buildResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.BuildID)
	assert.Contains(t, resp.Source, "package generated")
	assert.False(t, resp.Cached)
}

func Test_handleBuildGrammar_missingAuthRejected(t *testing.T) {
	srv, _ := newTestServer(t, false)
	raw, _ := json.Marshal(map[string]interface{}{
		"grammar": map[string][][]string{"<start>": {{"x"}}},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/grammars", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func Test_handleBuildGrammar_wrongSecretRejected(t *testing.T) {
	srv, _ := newTestServer(t, false)
	other := New(Config{TokenSecret: []byte("different-secret")})
	tok, err := other.IssueToken("tester", time.Minute)
	require.NoError(t, err)

	w := doBuildRequest(t, srv, tok, map[string]interface{}{
		"grammar": map[string][][]string{"<start>": {{"x"}}},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func Test_handleBuildGrammar_malformedBodyRejected(t *testing.T) {
	srv, tok := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodPost, "/v1/grammars", bytes.NewReader([]byte("not json")))
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_handleBuildGrammar_buildFailureReportsUnprocessable(t *testing.T) {
	srv, tok := newTestServer(t, false)
	w := doBuildRequest(t, srv, tok, map[string]interface{}{
		"grammar": map[string][][]string{
			"<start>": {{"<missing>"}},
		},
		"start": "<start>",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func Test_handleBuildGrammar_secondRequestIsCached(t *testing.T) {
	srv, tok := newTestServer(t, true)
	body := map[string]interface{}{
		"grammar": map[string][][]string{"<start>": {{"hi"}}},
		"start":   "<start>",
	}

	w1 := doBuildRequest(t, srv, tok, body)
	require.Equal(t, http.StatusOK, w1.Code)
	var r1 buildResponse
	require.NoError(t, json.Unmarshal(w1.Body.Bytes(), &r1))
	assert.False(t, r1.Cached)

	w2 := doBuildRequest(t, srv, tok, body)
	require.Equal(t, http.StatusOK, w2.Code)
	var r2 buildResponse
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &r2))
	assert.True(t, r2.Cached)
	assert.Equal(t, r1.Source, r2.Source)
}
