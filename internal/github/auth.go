// Package github authenticates as a GitHub App and resolves pull requests
// into the context the sync engine consumes.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultAPIBase = "https://api.github.com"

// TokenSource yields installation access tokens scoped to a repository.
type TokenSource interface {
	GetInstallationToken(ctx context.Context, repo string) (*InstallationToken, error)
}

// AppAuth holds GitHub App authentication configuration.
type AppAuth struct {
	AppID      string
	PrivateKey string

	// APIBase overrides the GitHub API root, for tests.
	APIBase string

	mu    sync.Mutex
	cache map[string]*InstallationToken
}

// InstallationToken is a GitHub App installation access token.
type InstallationToken struct {
	Token     string
	ExpiresAt time.Time
}

// GenerateJWT creates the app-level JWT used to mint installation tokens.
func (a *AppAuth) GenerateJWT() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(a.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("failed to parse private key: %w", err)
	}

	appID, err := strconv.ParseInt(a.AppID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid app ID: %w", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		Issuer:    strconv.FormatInt(appID, 10),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}

	return signedToken, nil
}

// GetInstallationToken returns an installation access token for the repo.
// Tokens are cached per repo until shortly before expiry.
func (a *AppAuth) GetInstallationToken(ctx context.Context, repo string) (*InstallationToken, error) {
	a.mu.Lock()
	if cached, ok := a.cache[repo]; ok && time.Until(cached.ExpiresAt) > time.Minute {
		a.mu.Unlock()
		return cached, nil
	}
	a.mu.Unlock()

	jwtToken, err := a.GenerateJWT()
	if err != nil {
		return nil, err
	}

	installationID, err := a.getInstallationID(ctx, jwtToken, repo)
	if err != nil {
		return nil, err
	}

	token, err := a.getInstallationAccessToken(ctx, jwtToken, installationID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if a.cache == nil {
		a.cache = make(map[string]*InstallationToken)
	}
	a.cache[repo] = token
	a.mu.Unlock()

	return token, nil
}

func (a *AppAuth) apiBase() string {
	if a.APIBase != "" {
		return strings.TrimSuffix(a.APIBase, "/")
	}
	return defaultAPIBase
}

// getInstallationID retrieves the app installation ID for a repository.
func (a *AppAuth) getInstallationID(ctx context.Context, jwtToken, repo string) (int64, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/installation", a.apiBase(), owner, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	setAppHeaders(req, jwtToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to get installation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("GitHub API error: %d - %s", resp.StatusCode, string(body))
	}

	var result struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.ID, nil
}

// getInstallationAccessToken mints an access token for the installation.
func (a *AppAuth) getInstallationAccessToken(ctx context.Context, jwtToken string, installationID int64) (*InstallationToken, error) {
	url := fmt.Sprintf("%s/app/installations/%d/access_tokens", a.apiBase(), installationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setAppHeaders(req, jwtToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("GitHub API error: %d - %s", resp.StatusCode, string(body))
	}

	var result struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &InstallationToken{Token: result.Token, ExpiresAt: result.ExpiresAt}, nil
}

func setAppHeaders(req *http.Request, jwtToken string) {
	req.Header.Set("Authorization", "Bearer "+jwtToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
}

// splitRepo parses "owner/name".
func splitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format: %s (expected owner/repo)", repo)
	}
	return parts[0], parts[1], nil
}
