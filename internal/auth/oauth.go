package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mkessaci/digimart/internal/config"
	"github.com/mkessaci/digimart/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// OAuth provider names form a closed enum. Anything else is rejected before
// any provider delegation happens.
const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// OAuthIdentity is the minimal identity claim set returned by a provider.
type OAuthIdentity struct {
	Email string
	Name  string
	Image string
}

// OAuthRegistry holds the configured providers and knows how to begin a
// provider flow and resolve the callback to an identity.
type OAuthRegistry struct {
	configs map[string]*oauth2.Config
}

func NewOAuthRegistry(cfg config.OAuthConfig, baseURL string) *OAuthRegistry {
	return &OAuthRegistry{
		configs: map[string]*oauth2.Config{
			ProviderGoogle: {
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  fmt.Sprintf("%s/api/auth/callback/%s", baseURL, ProviderGoogle),
				Scopes:       []string{"openid", "email", "profile"},
				Endpoint:     google.Endpoint,
			},
			ProviderGitHub: {
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				RedirectURL:  fmt.Sprintf("%s/api/auth/callback/%s", baseURL, ProviderGitHub),
				Scopes:       []string{"read:user", "user:email"},
				Endpoint:     github.Endpoint,
			},
		},
	}
}

// ValidProvider reports whether name is in the provider enum.
func ValidProvider(name string) bool {
	switch name {
	case ProviderGoogle, ProviderGitHub:
		return true
	}
	return false
}

// AuthCodeURL returns the provider authorize URL to redirect the user to.
// The provider name is validated before any delegation.
func (r *OAuthRegistry) AuthCodeURL(provider, state string) (string, error) {
	cfg, ok := r.configs[provider]
	if !ok {
		return "", models.ErrInvalidProvider
	}
	return cfg.AuthCodeURL(state), nil
}

// Exchange swaps the callback code for a token and fetches the user's
// identity from the provider.
func (r *OAuthRegistry) Exchange(ctx context.Context, provider, code string) (*OAuthIdentity, error) {
	cfg, ok := r.configs[provider]
	if !ok {
		return nil, models.ErrInvalidProvider
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	switch provider {
	case ProviderGoogle:
		return fetchGoogleIdentity(ctx, client)
	case ProviderGitHub:
		return fetchGitHubIdentity(ctx, client)
	}
	return nil, models.ErrInvalidProvider
}

func fetchGoogleIdentity(ctx context.Context, client *http.Client) (*OAuthIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://openidconnect.googleapis.com/v1/userinfo", nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	var payload struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode google userinfo: %w", err)
	}

	return &OAuthIdentity{Email: payload.Email, Name: payload.Name, Image: payload.Picture}, nil
}

func fetchGitHubIdentity(ctx context.Context, client *http.Client) (*OAuthIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch github user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode github user: %w", err)
	}

	name := payload.Name
	if name == "" {
		name = payload.Login
	}

	email := payload.Email
	if email == "" {
		// Email may be private; fall back to the primary verified address.
		email, err = fetchGitHubPrimaryEmail(ctx, client)
		if err != nil {
			return nil, err
		}
	}
	if email == "" {
		return nil, fmt.Errorf("github account %s has no accessible email", strconv.FormatInt(payload.ID, 10))
	}

	return &OAuthIdentity{Email: email, Name: name, Image: payload.AvatarURL}, nil
}

func fetchGitHubPrimaryEmail(ctx context.Context, client *http.Client) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/user/emails", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch github emails: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github emails endpoint returned status %d", resp.StatusCode)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", fmt.Errorf("failed to decode github emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", nil
}
