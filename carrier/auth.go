package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// TokenProvider fetches and caches the bearer token for the carrier API.
// The cache lives on disk so repeated cron runs reuse a live token.
type TokenProvider struct {
	TokenURL  string
	APIKey    string
	APISecret string
	CachePath string
	HTTP      *http.Client

	now func() time.Time
}

func NewTokenProvider(tokenURL, apiKey, apiSecret, cachePath string, hc *http.Client) *TokenProvider {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &TokenProvider{
		TokenURL:  tokenURL,
		APIKey:    apiKey,
		APISecret: apiSecret,
		CachePath: cachePath,
		HTTP:      hc,
		now:       time.Now,
	}
}

type cachedToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expires_at"`
}

type tokenRequest struct {
	GrantType    string `json:"grantType"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// Token returns a valid bearer token, refreshing through the oauth endpoint
// when the cache is missing or expired. Any failure is an *AuthError.
func (p *TokenProvider) Token(ctx context.Context, forceRefresh bool) (string, error) {
	if !forceRefresh {
		if cached := p.readCache(); cached != nil && cached.ExpiresAt > p.now().Unix() {
			return cached.AccessToken, nil
		}
	}
	return p.fetch(ctx)
}

func (p *TokenProvider) readCache() *cachedToken {
	if p.CachePath == "" {
		return nil
	}
	data, err := os.ReadFile(p.CachePath)
	if err != nil {
		return nil
	}
	var cached cachedToken
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil
	}
	return &cached
}

func (p *TokenProvider) writeCache(token string, expiresIn int64) {
	if p.CachePath == "" {
		return
	}
	if expiresIn < 15 {
		expiresIn = 15
	}
	// stored a few seconds early to avoid clock skew
	cached := cachedToken{AccessToken: token, ExpiresAt: p.now().Unix() + expiresIn - 15}
	data, _ := json.Marshal(cached)
	_ = os.MkdirAll(filepath.Dir(p.CachePath), 0o755)
	_ = os.WriteFile(p.CachePath, data, 0o600)
}

func (p *TokenProvider) fetch(ctx context.Context) (string, error) {
	body, _ := json.Marshal(tokenRequest{
		GrantType:    "client_credentials",
		ClientID:     p.APIKey,
		ClientSecret: p.APISecret,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.TokenURL, bytes.NewReader(body))
	if err != nil {
		return "", NewAuthError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.HTTP.Do(req)
	if err != nil {
		return "", NewAuthError(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewAuthError(err)
	}
	if resp.StatusCode != http.StatusOK {
		authErr := NewAuthError(errors.New("unexpected status"))
		authErr.Wrap(map[string]interface{}{"Status": resp.StatusCode, "Body": string(data)})
		return "", authErr
	}
	var out tokenResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", NewAuthError(err)
	}
	if out.AccessToken == "" {
		return "", NewAuthError(errors.New("token missing in response"))
	}
	p.writeCache(out.AccessToken, out.ExpiresIn)
	return out.AccessToken, nil
}
