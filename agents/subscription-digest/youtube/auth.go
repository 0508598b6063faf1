package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"digest-stack/shared/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const readonlyScope = "https://www.googleapis.com/auth/youtube.readonly"

// authorizer holds the OAuth state used when the feed reads the
// authenticated user's own subscriptions.
type authorizer struct {
	oauthConfig *oauth2.Config
	source      *tokenSaver
	logger      logrus.FieldLogger
}

// newAuthorizer loads the persisted token or runs the device flow, writing
// the prompts to prompt.
func newAuthorizer(ctx context.Context, cfg *config.YouTubeConfig, prompt io.Writer, logger logrus.FieldLogger) (*authorizer, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{readonlyScope},
		Endpoint:     google.Endpoint,
	}

	token, err := getToken(ctx, oauthConfig, cfg.TokenFile, prompt, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth token: %w", err)
	}

	return &authorizer{
		oauthConfig: oauthConfig,
		source: &tokenSaver{
			config:    oauthConfig,
			token:     token,
			tokenFile: cfg.TokenFile,
			logger:    logger,
		},
		logger: logger,
	}, nil
}

// HTTPClient returns a client that refreshes and persists the token.
func (a *authorizer) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, a.source)
}

// Refresh renews the token ahead of a scheduled run if it is about to expire.
func (a *authorizer) Refresh() error {
	tok, err := a.source.Token()
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	a.logger.WithField("expiry", tok.Expiry).Debug("OAuth token valid")
	return nil
}

// tokenSaver is an oauth2.TokenSource that writes refreshed tokens back to
// disk so they survive restarts.
type tokenSaver struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	logger    logrus.FieldLogger
	mu        sync.Mutex
}

func (ts *tokenSaver) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	newToken, err := ts.config.TokenSource(context.Background(), ts.token).Token()
	if err != nil {
		return nil, err
	}

	if newToken.AccessToken != ts.token.AccessToken {
		ts.logger.Info("Token refreshed, saving to file")
		ts.token = newToken
		if err := saveToken(ts.tokenFile, newToken); err != nil {
			ts.logger.WithError(err).Warn("Failed to save refreshed token")
		}
	}

	return newToken, nil
}

// getToken prefers a stored token with a refresh token, even when expired,
// and only falls back to the device flow when none is usable.
func getToken(ctx context.Context, oauthConfig *oauth2.Config, tokenFile string, prompt io.Writer, logger logrus.FieldLogger) (*oauth2.Token, error) {
	tok, err := tokenFromFile(tokenFile)
	if err == nil {
		if tok.RefreshToken != "" {
			logger.WithField("expiry", tok.Expiry).Info("Loaded token from file")
			return tok, nil
		}
		if tok.Valid() {
			return tok, nil
		}
	}

	logger.Info("Requesting new token with device authorization")
	tok, err = getTokenWithDeviceFlow(ctx, oauthConfig, prompt)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			logger.WithField("status", retrieveErr.Response.Status).
				Errorf("Device authorization response failed: %s", strings.TrimSpace(string(retrieveErr.Body)))
		}
		return nil, fmt.Errorf("device authorization failed: %w (the OAuth client must be of type 'TVs and Limited Input devices' with the YouTube Data API v3 enabled)", err)
	}

	if err := saveToken(tokenFile, tok); err != nil {
		logger.WithError(err).Warn("Failed to save token")
	}
	return tok, nil
}

func getTokenWithDeviceFlow(ctx context.Context, oauthConfig *oauth2.Config, w io.Writer) (*oauth2.Token, error) {
	resp, err := oauthConfig.DeviceAuth(ctx, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("unable to start device authorization: %w", err)
	}

	rule := strings.Repeat("=", 80)
	fmt.Fprintf(w, "\n%s\nYOUTUBE DEVICE AUTHORIZATION REQUIRED\n%s\n", rule, rule)
	fmt.Fprintf(w, "1. Visit %s in your browser (any device works).\n", resp.VerificationURI)
	fmt.Fprintf(w, "2. Enter this code when prompted: %s\n\n", resp.UserCode)
	if completeURL := strings.TrimSpace(resp.VerificationURIComplete); completeURL != "" {
		fmt.Fprintf(w, "   Or open this link directly:\n\n   %s\n\n", completeURL)
	}
	fmt.Fprintf(w, "Waiting for authorization to complete... (Ctrl+C to cancel)\n%s\n", strings.Repeat("-", 80))

	tok, err := oauthConfig.DeviceAccessToken(ctx, resp, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("device authorization did not complete: %w", err)
	}

	fmt.Fprintf(w, "\nAuthorization successful.\n%s\n\n", rule)
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode oauth token: %w", err)
	}
	return nil
}
