package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"digest-stack/shared/logging"

	"golang.org/x/oauth2"
)

// newTokenServer serves a token endpoint that always issues "new-access",
// and a device endpoint that always rejects the client.
func newTokenServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	refreshes := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			refreshes++
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"new-access","token_type":"Bearer","expires_in":3600,"refresh_token":"test-refresh"}`))
		case "/device":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_client"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &refreshes
}

func testOAuthConfig(srv *httptest.Server) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		Endpoint: oauth2.Endpoint{
			TokenURL:      srv.URL + "/token",
			DeviceAuthURL: srv.URL + "/device",
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

func TestGetToken(t *testing.T) {
	srv, _ := newTokenServer(t)
	oauthConfig := testOAuthConfig(srv)
	tokenFile := filepath.Join(t.TempDir(), "test_token.json")
	logger := logging.Discard()

	t.Run("LoadExistingValidToken", func(t *testing.T) {
		valid := &oauth2.Token{
			AccessToken:  "valid-access-token",
			RefreshToken: "valid-refresh-token",
			Expiry:       time.Now().Add(time.Hour),
		}
		if err := saveToken(tokenFile, valid); err != nil {
			t.Fatalf("Failed to save token: %v", err)
		}

		token, err := getToken(context.Background(), oauthConfig, tokenFile, &bytes.Buffer{}, logger)
		if err != nil {
			t.Fatalf("Failed to get token: %v", err)
		}
		if token.AccessToken != valid.AccessToken {
			t.Errorf("Access token mismatch: got %s, want %s", token.AccessToken, valid.AccessToken)
		}
	})

	t.Run("LoadExpiredTokenWithRefresh", func(t *testing.T) {
		expired := &oauth2.Token{
			AccessToken:  "expired-access-token",
			RefreshToken: "valid-refresh-token",
			Expiry:       time.Now().Add(-time.Hour),
		}
		if err := saveToken(tokenFile, expired); err != nil {
			t.Fatalf("Failed to save token: %v", err)
		}

		token, err := getToken(context.Background(), oauthConfig, tokenFile, &bytes.Buffer{}, logger)
		if err != nil {
			t.Fatalf("Failed to get token: %v", err)
		}
		if token.RefreshToken != expired.RefreshToken {
			t.Errorf("Refresh token mismatch: got %s, want %s", token.RefreshToken, expired.RefreshToken)
		}
	})

	t.Run("NoTokenFileDeviceFlowRejected", func(t *testing.T) {
		os.Remove(tokenFile)

		if _, err := getToken(context.Background(), oauthConfig, tokenFile, &bytes.Buffer{}, logger); err == nil {
			t.Error("Expected error when no token file exists and device authorization fails")
		}
		if _, err := os.Stat(tokenFile); !os.IsNotExist(err) {
			t.Error("No token should be written after a failed authorization")
		}
	})
}

func TestTokenSaverRefreshesAndPersists(t *testing.T) {
	srv, refreshes := newTokenServer(t)
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	ts := &tokenSaver{
		config: testOAuthConfig(srv),
		token: &oauth2.Token{
			AccessToken:  "old-access",
			RefreshToken: "test-refresh",
			Expiry:       time.Now().Add(-time.Hour),
		},
		tokenFile: tokenFile,
		logger:    logging.Discard(),
	}

	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok.AccessToken != "new-access" {
		t.Errorf("AccessToken = %s, want new-access", tok.AccessToken)
	}
	if *refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", *refreshes)
	}

	saved, err := tokenFromFile(tokenFile)
	if err != nil {
		t.Fatalf("refreshed token was not saved: %v", err)
	}
	if saved.AccessToken != "new-access" {
		t.Errorf("saved AccessToken = %s", saved.AccessToken)
	}

	// A still-valid token is reused without another refresh.
	if _, err := ts.Token(); err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if *refreshes != 1 {
		t.Errorf("refreshes = %d after valid token reuse, want 1", *refreshes)
	}
}

func TestTokenFromFile(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "test_token.json")

	t.Run("ValidTokenFile", func(t *testing.T) {
		want := &oauth2.Token{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(time.Hour),
		}
		data, _ := json.Marshal(want)
		if err := os.WriteFile(tokenFile, data, 0600); err != nil {
			t.Fatalf("Failed to write token file: %v", err)
		}

		token, err := tokenFromFile(tokenFile)
		if err != nil {
			t.Fatalf("Failed to read token from file: %v", err)
		}
		if token.AccessToken != want.AccessToken || token.RefreshToken != want.RefreshToken {
			t.Errorf("token = %+v, want %+v", token, want)
		}
	})

	t.Run("NonExistentFile", func(t *testing.T) {
		if _, err := tokenFromFile(filepath.Join(filepath.Dir(tokenFile), "nonexistent.json")); err == nil {
			t.Error("Expected error for non-existent file")
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		if err := os.WriteFile(tokenFile, []byte("invalid json"), 0600); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		if _, err := tokenFromFile(tokenFile); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})
}

func TestSaveToken(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("SaveWithNestedDirectory", func(t *testing.T) {
		tokenFile := filepath.Join(tempDir, "nested", "dir", "token.json")
		if err := saveToken(tokenFile, &oauth2.Token{AccessToken: "nested-access"}); err != nil {
			t.Fatalf("Failed to save token to nested directory: %v", err)
		}

		info, err := os.Stat(tokenFile)
		if err != nil {
			t.Fatalf("Token file was not created: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("Token file has incorrect permissions: %v, want 0600", info.Mode().Perm())
		}
	})

	t.Run("OverwriteExistingFile", func(t *testing.T) {
		tokenFile := filepath.Join(tempDir, "overwrite_token.json")
		if err := saveToken(tokenFile, &oauth2.Token{AccessToken: "first-token"}); err != nil {
			t.Fatalf("Failed to save first token: %v", err)
		}
		if err := saveToken(tokenFile, &oauth2.Token{AccessToken: "second-token"}); err != nil {
			t.Fatalf("Failed to save second token: %v", err)
		}

		saved, _ := tokenFromFile(tokenFile)
		if saved.AccessToken != "second-token" {
			t.Errorf("Token was not overwritten: got %s", saved.AccessToken)
		}
	})
}
