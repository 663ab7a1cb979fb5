package ports

// TokenProvider supplies the bearer token for a single request.
// It is invoked once per request; any caching is the provider's concern.
type TokenProvider interface {
	Token() (string, error)
}

// TokenFunc adapts a plain function to TokenProvider.
type TokenFunc func() (string, error)

// Token calls f.
func (f TokenFunc) Token() (string, error) {
	return f()
}
