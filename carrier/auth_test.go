package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, calls *int, token string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		var req tokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "client_credentials", req.GrantType)
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: token, ExpiresIn: 3600})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTokenFetchAndCache(t *testing.T) {
	calls := 0
	srv := newTokenServer(t, &calls, "token-abc")
	cache := filepath.Join(t.TempDir(), "token.json")
	p := NewTokenProvider(srv.URL, "key", "secret", cache, srv.Client())

	token, err := p.Token(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "token-abc", token)
	assert.Equal(t, 1, calls)

	// second call must come from the on-disk cache
	token, err = p.Token(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "token-abc", token)
	assert.Equal(t, 1, calls)
}

func TestTokenForceRefresh(t *testing.T) {
	calls := 0
	srv := newTokenServer(t, &calls, "token-abc")
	cache := filepath.Join(t.TempDir(), "token.json")
	p := NewTokenProvider(srv.URL, "key", "secret", cache, srv.Client())

	_, err := p.Token(context.Background(), false)
	require.NoError(t, err)
	_, err = p.Token(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestTokenExpiredCacheRefreshes(t *testing.T) {
	calls := 0
	srv := newTokenServer(t, &calls, "token-new")
	cache := filepath.Join(t.TempDir(), "token.json")
	p := NewTokenProvider(srv.URL, "key", "secret", cache, srv.Client())
	p.now = func() time.Time { return time.Unix(1000, 0) }

	_, err := p.Token(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	// jump past the cached expiry
	p.now = func() time.Time { return time.Unix(1000+3600, 0) }
	token, err := p.Token(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "token-new", token)
	assert.Equal(t, 2, calls)
}

func TestTokenFailureIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad credentials"}`))
	}))
	t.Cleanup(srv.Close)
	p := NewTokenProvider(srv.URL, "key", "wrong", "", srv.Client())

	_, err := p.Token(context.Background(), false)
	require.Error(t, err)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Error(), "401")
}

func TestTokenMissingInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	p := NewTokenProvider(srv.URL, "key", "secret", "", srv.Client())

	_, err := p.Token(context.Background(), false)
	require.Error(t, err)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}
