package combell

import "context"

// Credentials is a Combell API key pair.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Valid reports whether both halves are set.
func (c Credentials) Valid() bool {
	return c.APIKey != "" && c.APISecret != ""
}

type credentialsKey struct{}

// WithCredentials attaches per-request credentials to ctx.
func WithCredentials(ctx context.Context, c Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, c)
}

// CredentialsFromContext returns the credentials attached by WithCredentials.
func CredentialsFromContext(ctx context.Context) (Credentials, bool) {
	c, ok := ctx.Value(credentialsKey{}).(Credentials)
	return c, ok && c.Valid()
}
