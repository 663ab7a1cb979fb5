package auth

import (
	"errors"

	"github.com/bft-labs/streamship/internal/ports"
)

// ErrNoToken is returned when a provider has no token to hand out.
var ErrNoToken = errors.New("auth: no token available")

// StaticToken always returns the same token.
type StaticToken string

// Token implements ports.TokenProvider.
func (s StaticToken) Token() (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

var _ ports.TokenProvider = StaticToken("")
