// Package boxstore is the roster store adapter: it authenticates against
// Box with a JWT server-auth app, downloads the roster workbook and coerces
// it into typed roster rows. Nothing downstream of this package ever sees
// raw spreadsheet cells.
package boxstore

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"

	"github.com/oncallrota/rota-api-go/pkg/models"
)

const (
	defaultTokenURL    = "https://api.box.com/oauth2/token"
	defaultAPIBase     = "https://api.box.com/2.0"
	defaultHTTPTimeout = 15 * time.Second

	// assertionLifetime must stay under Box's 60 second maximum.
	assertionLifetime = 45 * time.Second
)

// Config mirrors the box_config.json file downloaded from the Box developer
// console for a JWT server-auth app.
type Config struct {
	BoxAppSettings struct {
		ClientID     string `json:"clientID"`
		ClientSecret string `json:"clientSecret"`
		AppAuth      struct {
			PublicKeyID string `json:"publicKeyID"`
			PrivateKey  string `json:"privateKey"`
			Passphrase  string `json:"passphrase"`
		} `json:"appAuth"`
	} `json:"boxAppSettings"`
	EnterpriseID string `json:"enterpriseID"`
}

// LoadConfig reads and decodes a box_config.json settings file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read box config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode box config: %w", err)
	}
	if cfg.BoxAppSettings.ClientID == "" || cfg.BoxAppSettings.AppAuth.PrivateKey == "" {
		return nil, errors.New("box config missing clientID or private key")
	}
	return &cfg, nil
}

// Client fetches the roster workbook from Box. It caches the short-lived
// access token between calls and bounds every request with the underlying
// http.Client timeout.
type Client struct {
	cfg    *Config
	fileID string
	key    *rsa.PrivateKey
	http   *http.Client
	log    zerolog.Logger
	now    func() time.Time

	// Overridable for tests.
	tokenURL string
	apiBase  string

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// NewClient builds a Box client for one roster file.
func NewClient(cfg *Config, fileID string, log zerolog.Logger) (*Client, error) {
	if fileID == "" {
		return nil, errors.New("box file id is required")
	}
	key, err := parsePrivateKey(cfg.BoxAppSettings.AppAuth.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:      cfg,
		fileID:   fileID,
		key:      key,
		http:     &http.Client{Timeout: defaultHTTPTimeout},
		log:      log,
		now:      time.Now,
		tokenURL: defaultTokenURL,
		apiBase:  defaultAPIBase,
	}, nil
}

// parsePrivateKey accepts the PEM private key from box_config.json in
// PKCS#8 or PKCS#1 form. Encrypted keys must be decrypted before deployment;
// carrying the passphrase decryption here is not worth a crypto dependency.
func parsePrivateKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, errors.New("box private key is not valid PEM")
	}
	if strings.Contains(block.Type, "ENCRYPTED") || block.Headers["Proc-Type"] != "" {
		return nil, errors.New("box private key is encrypted; store it decrypted")
	}
	if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("box private key is not RSA")
		}
		return key, nil
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse box private key: %w", err)
	}
	return key, nil
}

// FetchRoster implements cache.Fetcher: download the workbook and parse it.
// Unusable rows are logged and skipped, never fatal.
func (c *Client) FetchRoster(ctx context.Context) (models.Roster, error) {
	data, err := c.fetchRosterBytes(ctx)
	if err != nil {
		return nil, err
	}
	roster, skipped, err := ParseRoster(data)
	if err != nil {
		return nil, err
	}
	for _, skip := range skipped {
		c.log.Warn().Int("line", skip.Line).Err(skip.Reason).Msg("skipping roster row")
	}
	return roster, nil
}

// fetchRosterBytes downloads the raw workbook content. Box answers the
// content endpoint with a redirect to a signed download URL, which the
// default http.Client follows.
func (c *Client) fetchRosterBytes(ctx context.Context) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/files/%s/content", c.apiBase, url.PathEscape(c.fileID)), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download roster: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download roster: box returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// AccessToken returns a valid Box access token, minting one if needed.
// Exposed for the boxtoken debugging command.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	return c.accessToken(ctx)
}

// accessToken returns a cached token or performs the JWT client-credentials
// grant: a short-lived RS256 assertion signed with the app's private key,
// exchanged for an enterprise access token.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Add(time.Minute).Before(c.tokenExp) {
		return c.token, nil
	}

	jti, err := randomHex(16)
	if err != nil {
		return "", err
	}
	now := c.now()
	assertion := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":          c.cfg.BoxAppSettings.ClientID,
		"sub":          c.cfg.EnterpriseID,
		"box_sub_type": "enterprise",
		"aud":          c.tokenURL,
		"jti":          jti,
		"exp":          now.Add(assertionLifetime).Unix(),
	})
	assertion.Header["kid"] = c.cfg.BoxAppSettings.AppAuth.PublicKeyID

	signed, err := assertion.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign box assertion: %w", err)
	}

	form := url.Values{
		"grant_type":    {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":     {signed},
		"client_id":     {c.cfg.BoxAppSettings.ClientID},
		"client_secret": {c.cfg.BoxAppSettings.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("box token exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("box token exchange: box returned %s", resp.Status)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode box token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", errors.New("box token response missing access_token")
	}

	c.token = body.AccessToken
	c.tokenExp = now.Add(time.Duration(body.ExpiresIn) * time.Second)
	return c.token, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
