package github

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func generateTestKey(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}
	return string(pem.EncodeToMemory(block))
}

func TestGenerateJWT(t *testing.T) {
	auth := &AppAuth{AppID: "12345", PrivateKey: generateTestKey(t)}

	signed, err := auth.GenerateJWT()
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}

	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(signed, &jwt.RegisteredClaims{})
	if err != nil {
		t.Fatalf("parse signed token: %v", err)
	}
	claims := token.Claims.(*jwt.RegisteredClaims)
	if claims.Issuer != "12345" {
		t.Errorf("issuer = %q, want app id", claims.Issuer)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > 10*time.Minute {
		t.Errorf("expiry = %v, want within 10 minutes", claims.ExpiresAt)
	}
}

func TestGenerateJWTErrors(t *testing.T) {
	if _, err := (&AppAuth{AppID: "1", PrivateKey: "not a key"}).GenerateJWT(); err == nil {
		t.Error("expected error for malformed private key")
	}
	if _, err := (&AppAuth{AppID: "abc", PrivateKey: generateTestKey(t)}).GenerateJWT(); err == nil {
		t.Error("expected error for non-numeric app id")
	}
}

func TestGetInstallationToken(t *testing.T) {
	var installationCalls, tokenCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/site/installation":
			installationCalls++
			if auth := r.Header.Get("Authorization"); auth == "" {
				t.Error("missing Authorization header")
			}
			fmt.Fprint(w, `{"id": 777}`)
		case "/app/installations/777/access_tokens":
			tokenCalls++
			w.WriteHeader(http.StatusCreated)
			expires := time.Now().Add(time.Hour).Format(time.RFC3339)
			fmt.Fprintf(w, `{"token": "ghs_test", "expires_at": %q}`, expires)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	auth := &AppAuth{AppID: "1", PrivateKey: generateTestKey(t), APIBase: server.URL}

	token, err := auth.GetInstallationToken(context.Background(), "acme/site")
	if err != nil {
		t.Fatalf("GetInstallationToken() error: %v", err)
	}
	if token.Token != "ghs_test" {
		t.Errorf("token = %q", token.Token)
	}

	// Second call is served from the cache.
	if _, err := auth.GetInstallationToken(context.Background(), "acme/site"); err != nil {
		t.Fatalf("cached GetInstallationToken() error: %v", err)
	}
	if installationCalls != 1 || tokenCalls != 1 {
		t.Errorf("API calls = %d/%d, want 1/1 with caching", installationCalls, tokenCalls)
	}
}

func TestGetInstallationTokenAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	}))
	defer server.Close()

	auth := &AppAuth{AppID: "1", PrivateKey: generateTestKey(t), APIBase: server.URL}

	if _, err := auth.GetInstallationToken(context.Background(), "acme/missing"); err == nil {
		t.Error("expected error when app is not installed on the repo")
	}
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		repo      string
		owner     string
		name      string
		wantError bool
	}{
		{repo: "acme/site", owner: "acme", name: "site"},
		{repo: "acme", wantError: true},
		{repo: "acme/site/extra", wantError: true},
		{repo: "/site", wantError: true},
		{repo: "acme/", wantError: true},
	}

	for _, tt := range tests {
		owner, name, err := splitRepo(tt.repo)
		if tt.wantError {
			if err == nil {
				t.Errorf("splitRepo(%q): expected error", tt.repo)
			}
			continue
		}
		if err != nil || owner != tt.owner || name != tt.name {
			t.Errorf("splitRepo(%q) = %q, %q, %v", tt.repo, owner, name, err)
		}
	}
}
