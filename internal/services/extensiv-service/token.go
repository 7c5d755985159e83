package extensivservice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"wms-alloc/internal/config"
)

// TokenSource negotiates and caches an OAuth access token for the WMS API.
// It is an injected dependency with an explicit lifetime; nothing here is
// process-global.
type TokenSource struct {
	cfg        config.Config
	httpClient *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// expirySkew refreshes the token a minute before the server-side expiry.
const expirySkew = 60 * time.Second

func NewTokenSource(cfg config.Config, httpClient *http.Client) *TokenSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &TokenSource{cfg: cfg, httpClient: httpClient}
}

// Token returns a valid access token, reusing the cached one until it is
// close to expiry.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != `` && time.Now().Before(t.expiry.Add(-expirySkew)) {
		return t.token, nil
	}

	if t.cfg.ExtClientID == `` || t.cfg.ExtClientSecret == `` {
		return ``, fmt.Errorf("missing EXT_CLIENT_ID / EXT_CLIENT_SECRET")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	if t.cfg.ExtUserLogin != `` {
		form.Set("user_login", t.cfg.ExtUserLogin)
	}
	if t.cfg.ExtTplGUID != `` {
		form.Set("tplguid", t.cfg.ExtTplGUID)
	}
	if t.cfg.ExtUserLoginID != `` {
		form.Set("user_login_id", t.cfg.ExtUserLoginID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.cfg.ExtBaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return ``, fmt.Errorf("build token request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString(
		[]byte(t.cfg.ExtClientID + ":" + t.cfg.ExtClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return ``, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ``, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return ``, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ``, fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == `` {
		return ``, fmt.Errorf("no access_token in OAuth response")
	}
	if payload.ExpiresIn <= 0 {
		payload.ExpiresIn = 3600
	}

	t.token = payload.AccessToken
	t.expiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)

	return t.token, nil
}
