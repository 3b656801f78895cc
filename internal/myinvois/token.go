package myinvois

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/yijian0905/erp-einvoice/internal/model"
)

// defaultRefreshSkew is how long before actual expiry a cached token is
// treated as stale.
const defaultRefreshSkew = 30 * time.Second

type tokenEntry struct {
	token  string
	expiry time.Time
}

// TokenSource acquires and caches OAuth2 client-credentials tokens, one
// entry per tenant+environment. A stale-but-valid token may be served to any
// number of concurrent callers; refresh itself is single-flighted so a
// thundering herd performs one authentication call. Tokens live only in
// memory.
type TokenSource struct {
	creds CredentialSource
	rest  *resty.Client
	clock clockwork.Clock
	skew  time.Duration

	mu    sync.RWMutex
	cache map[string]tokenEntry

	group singleflight.Group

	// test override for the environment base URL
	baseURLFn func(model.Environment) string
}

// NewTokenSource creates a token source over the given credential source.
func NewTokenSource(creds CredentialSource, rest *resty.Client, clock clockwork.Clock) *TokenSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenSource{
		creds:     creds,
		rest:      rest,
		clock:     clock,
		skew:      defaultRefreshSkew,
		cache:     make(map[string]tokenEntry),
		baseURLFn: envBaseURL,
	}
}

func envBaseURL(env model.Environment) string {
	if env == model.EnvProduction {
		return ProductionBaseURL
	}
	return SandboxBaseURL
}

func cacheKey(tenantID string, env model.Environment) string {
	return tenantID + "|" + string(env)
}

// Token returns a valid access token for the tenant, fetching or refreshing
// when the cached one is missing or inside the expiry skew.
func (s *TokenSource) Token(ctx context.Context, tenantID string) (string, error) {
	cred, err := s.creds.Credentials(ctx, tenantID)
	if err != nil {
		return "", err
	}

	key := cacheKey(tenantID, cred.Environment)
	if token, ok := s.cached(key); ok {
		return token, nil
	}
	return s.fetch(ctx, key, cred)
}

// ForceRefresh discards any cached token for the tenant and acquires a fresh
// one. Used after a 401 from the API.
func (s *TokenSource) ForceRefresh(ctx context.Context, tenantID string) (string, error) {
	cred, err := s.creds.Credentials(ctx, tenantID)
	if err != nil {
		return "", err
	}
	key := cacheKey(tenantID, cred.Environment)

	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	return s.fetch(ctx, key, cred)
}

// Invalidate drops cached tokens for the tenant in every environment. Called
// whenever the tenant's credentials change.
func (s *TokenSource) Invalidate(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, cacheKey(tenantID, model.EnvSandbox))
	delete(s.cache, cacheKey(tenantID, model.EnvProduction))
}

func (s *TokenSource) cached(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[key]
	if !ok || entry.token == "" {
		return "", false
	}
	if entry.expiry.Sub(s.clock.Now()) <= s.skew {
		return "", false
	}
	return entry.token, true
}

func (s *TokenSource) fetch(ctx context.Context, key string, cred *Credentials) (string, error) {
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Another caller may have refreshed while we queued.
		if token, ok := s.cached(key); ok {
			return token, nil
		}

		token, expiry, err := s.requestToken(ctx, cred)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.cache[key] = tokenEntry{token: token, expiry: expiry}
		s.mu.Unlock()

		log.WithFields(log.Fields{"key": key, "expiry": expiry}).
			Debug("access token acquired")
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *TokenSource) requestToken(ctx context.Context, cred *Credentials) (string, time.Time, error) {
	var body tokenResponse

	resp, err := s.rest.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     cred.ClientID,
			"client_secret": cred.ClientSecret,
			"scope":         tokenScope,
		}).
		SetResult(&body).
		Post(s.baseURLFn(cred.Environment) + tokenPath)

	if err != nil {
		return "", time.Time{}, model.NewTransportError("token", 0, 1, err)
	}
	if resp.IsError() {
		status := resp.StatusCode()
		if status >= 500 {
			return "", time.Time{}, model.NewTransportError("token", status, 1, nil)
		}
		return "", time.Time{}, model.NewAuthError("token",
			fmt.Sprintf("token endpoint returned status %d", status), nil)
	}
	if body.AccessToken == "" {
		return "", time.Time{}, model.NewAuthError("token", "token endpoint returned no access token", nil)
	}

	expiry := s.clock.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	return body.AccessToken, expiry, nil
}
