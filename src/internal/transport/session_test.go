package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func newTestSession(t *testing.T, baseURL string) *Session {
	t.Helper()
	s, err := NewSession(Options{BaseURL: baseURL, TimeoutSeconds: 5}, newTestLogger())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSessionRejectsBadBaseURL(t *testing.T) {
	testCases := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"PlainHTTP", "http://192.168.3.1", false},
		{"HTTPS", "https://router.lan", false},
		{"TrailingSlash", "http://192.168.3.1/", false},
		{"NoScheme", "192.168.3.1", true},
		{"FTP", "ftp://192.168.3.1", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewSession(Options{BaseURL: tc.baseURL}, newTestLogger())
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			s.Close()
		})
	}
}

func TestSessionDefaultsToFactoryAddress(t *testing.T) {
	s, err := NewSession(Options{}, newTestLogger())
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, DefaultBaseURL, s.baseURL)
}

func TestSessionGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/html/index.html", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>login</html>"))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL)
	status, body, err := s.Get(context.Background(), "/html/index.html")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "<html>login</html>", string(body))
}

func TestSessionPostJSON(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var p payload
		require.NoError(t, json.Unmarshal(raw, &p))
		assert.Equal(t, payload{Name: "test", Count: 3}, p)

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL)
	status, body, err := s.PostJSON(context.Background(), "/api/test", payload{Name: "test", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `{}`, string(body))
}

func TestSessionPersistsCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/first":
			http.SetCookie(w, &http.Cookie{Name: "SessionID_R3", Value: "abc123", Path: "/"})
			w.WriteHeader(http.StatusOK)
		case "/second":
			c, err := r.Cookie("SessionID_R3")
			if err != nil || c.Value != "abc123" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL)

	status, _, err := s.Get(context.Background(), "/first")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	status, _, err = s.Get(context.Background(), "/second")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status, "session cookie was not replayed")
}

func TestSessionClosedRejectsRequests(t *testing.T) {
	s, err := NewSession(Options{BaseURL: "http://127.0.0.1:1"}, newTestLogger())
	require.NoError(t, err)
	s.Close()

	_, _, err = s.Get(context.Background(), "/")
	assert.Error(t, err)

	// Close is idempotent.
	s.Close()
}

func TestSessionHonorsCanceledContext(t *testing.T) {
	s := newTestSession(t, "http://127.0.0.1:1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Get(ctx, "/")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
