package mpesa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// TokenSource caches the Daraja OAuth token until shortly before it expires.
// The mutex is held across the refresh so that concurrent payment initiations
// trigger a single authentication round-trip instead of one each.
type TokenSource struct {
	mu     sync.Mutex
	token  string
	expiry time.Time

	cfg    Config
	client *http.Client

	// now is swappable for tests
	now func() time.Time
}

// NewTokenSource creates a TokenSource for the given credentials
func NewTokenSource(cfg Config, client *http.Client) *TokenSource {
	return &TokenSource{
		cfg:    cfg,
		client: client,
		now:    time.Now,
	}
}

// Token returns the cached token, refreshing it if expired or missing
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Before(t.expiry) {
		return t.token, nil
	}

	token, ttl, err := t.fetch(ctx)
	if err != nil {
		return "", err
	}

	t.token = token
	// Renew a minute early so in-flight requests never carry a token that
	// expires mid-call.
	t.expiry = t.now().Add(ttl - time.Minute)
	return t.token, nil
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func (t *TokenSource) fetch(ctx context.Context) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.cfg.AuthURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create auth request: %w", err)
	}
	req.SetBasicAuth(t.cfg.ConsumerKey, t.cfg.ConsumerSecret)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read auth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("auth request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var auth authResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return "", 0, fmt.Errorf("failed to parse auth response: %w", err)
	}
	if auth.AccessToken == "" {
		return "", 0, fmt.Errorf("auth response carried no access token")
	}

	// Daraja reports expires_in as a string of seconds, normally "3599"
	seconds, err := strconv.Atoi(auth.ExpiresIn)
	if err != nil || seconds <= 0 {
		seconds = 3599
	}
	return auth.AccessToken, time.Duration(seconds) * time.Second, nil
}
