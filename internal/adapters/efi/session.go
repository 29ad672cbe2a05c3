package efi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/lembretes/pix-service/internal/config"
	"github.com/lembretes/pix-service/internal/domain/ports"
	pkgerrors "github.com/lembretes/pix-service/pkg/errors"
	"github.com/lembretes/pix-service/pkg/httpx"
	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

// Tokens are reused until this long before their declared expiry, so a
// token never dies mid-request.
const tokenExpiryMargin = 60 * time.Second

// SessionManager owns the mutually-authenticated client and the bearer
// token used by every PSP call. Tokens are cached until expiry and dropped
// on Invalidate; everything else is immutable after construction.
type SessionManager struct {
	cfg     *config.PSPConfig
	baseURL string
	client  ports.HTTPClient
	logger  ports.Logger

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

// NewSessionManager loads the PKCS#12 bundle and builds the mTLS client.
// A missing or undecodable certificate fails here, before any network
// traffic, with a configuration error distinct from PSP rejections.
func NewSessionManager(cfg *config.PSPConfig, logger ports.Logger) (*SessionManager, error) {
	data, err := os.ReadFile(cfg.CertPath)
	if err != nil {
		return nil, pkgerrors.NewConfigError("EFI_CERT_PATH", "cannot read client certificate bundle", err)
	}

	key, leaf, caCerts, err := pkcs12.DecodeChain(data, cfg.CertPassphrase)
	if err != nil {
		return nil, pkgerrors.NewConfigError("EFI_CERT_PATH", "cannot decode PKCS#12 bundle", err)
	}

	cert := tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  key,
		Leaf:        leaf,
	}
	for _, ca := range caCerts {
		cert.Certificate = append(cert.Certificate, ca.Raw)
	}

	client := httpx.NewMTLSClient(httpx.PSPClientConfig(), cert, 0)

	return &SessionManager{
		cfg:     cfg,
		baseURL: cfg.BaseURL(),
		client:  client,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// NewSessionManagerWithClient builds a session manager around an injected
// HTTP client and base URL. Used by tests and by deployments that manage
// TLS material elsewhere.
func NewSessionManagerWithClient(cfg *config.PSPConfig, baseURL string, client ports.HTTPClient, logger ports.Logger) *SessionManager {
	return &SessionManager{
		cfg:     cfg,
		baseURL: baseURL,
		client:  client,
		logger:  logger,
		now:     time.Now,
	}
}

// Client returns the mTLS HTTP client shared by the PSP adapters.
func (s *SessionManager) Client() ports.HTTPClient {
	return s.client
}

// BaseURL returns the PSP host fixed at construction time.
func (s *SessionManager) BaseURL() string {
	return s.baseURL
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns a valid bearer token, exchanging client credentials only
// when the cached one is missing or about to expire.
func (s *SessionManager) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expires) {
		return s.token, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.TokenTimeout)
	defer cancel()

	body, _ := json.Marshal(map[string]string{"grant_type": "client_credentials"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/oauth/token", bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.NewPSPError("OAUTH_REQUEST", "failed to build token request", pkgerrors.CategoryProtocol, false)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(s.cfg.ClientID + ":" + s.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", pkgerrors.NewPSPError("OAUTH_TIMEOUT", "token exchange timed out", pkgerrors.CategoryNetworkError, true)
		}
		return "", pkgerrors.NewPSPError("NETWORK_ERROR", "failed to reach PSP token endpoint", pkgerrors.CategoryNetworkError, true)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", pkgerrors.NewPSPError("OAUTH_RESPONSE", "failed to read token response", pkgerrors.CategoryNetworkError, true)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("PSP rejected client credentials",
			ports.Int("status", resp.StatusCode),
		)
		return "", pkgerrors.NewPSPError("OAUTH_REJECTED", "token exchange failed", pkgerrors.CategoryProtocol, false).
			WithResponse(resp.StatusCode, string(respBody))
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil || tr.AccessToken == "" {
		return "", pkgerrors.NewPSPError("OAUTH_RESPONSE", "token response missing access_token", pkgerrors.CategoryProtocol, false).
			WithResponse(resp.StatusCode, string(respBody))
	}

	s.token = tr.AccessToken
	s.expires = s.now().Add(time.Duration(tr.ExpiresIn) * time.Second).Add(-tokenExpiryMargin)
	if tr.ExpiresIn <= 0 {
		// No declared lifetime: do not cache.
		s.expires = s.now()
	}

	s.logger.Debug("acquired PSP access token",
		ports.Int("expires_in", tr.ExpiresIn),
	)
	return s.token, nil
}

// Invalidate drops the cached token so the next call reauthenticates.
// Adapters call it after a 401 from an operation endpoint.
func (s *SessionManager) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expires = time.Time{}
	s.mu.Unlock()
}
