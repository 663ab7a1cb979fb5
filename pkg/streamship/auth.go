package streamship

import (
	"context"

	"github.com/bft-labs/streamship/internal/adapters/auth"
)

// OAuth2Config configures the OAuth2 client credentials flow.
type OAuth2Config = auth.OAuth2Config

// FileTokenProvider serves a token from a file and reloads it on change.
type FileTokenProvider = auth.FileTokenProvider

// NewOAuth2TokenProvider returns a provider that fetches and caches access
// tokens with the client credentials grant.
func NewOAuth2TokenProvider(ctx context.Context, cfg OAuth2Config) (TokenProvider, error) {
	return auth.NewOAuth2Provider(ctx, cfg)
}

// NewFileTokenProvider reads the token at path. Call Run on the result to
// pick up rotated tokens.
func NewFileTokenProvider(path string, logger Logger) (*FileTokenProvider, error) {
	return auth.NewFileTokenProvider(path, logger)
}
