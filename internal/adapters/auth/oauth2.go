package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/bft-labs/streamship/internal/ports"
)

// OAuth2Config configures the client credentials flow.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Validate checks that the required fields are set.
func (c OAuth2Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("oauth2: client id is required")
	}
	if c.TokenURL == "" {
		return fmt.Errorf("oauth2: token url is required")
	}
	return nil
}

// OAuth2Provider fetches access tokens with the client credentials grant.
// Tokens are cached until shortly before they expire.
type OAuth2Provider struct {
	source oauth2.TokenSource
}

// NewOAuth2Provider creates a provider. ctx is used for token requests and
// may carry an *http.Client under oauth2.HTTPClient.
func NewOAuth2Provider(ctx context.Context, cfg OAuth2Config) (*OAuth2Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
	return &OAuth2Provider{source: cc.TokenSource(ctx)}, nil
}

// Token implements ports.TokenProvider.
func (p *OAuth2Provider) Token() (string, error) {
	token, err := p.source.Token()
	if err != nil {
		return "", fmt.Errorf("acquire oauth2 token: %w", err)
	}
	if token.AccessToken == "" {
		return "", ErrNoToken
	}
	return token.AccessToken, nil
}

var _ ports.TokenProvider = (*OAuth2Provider)(nil)
