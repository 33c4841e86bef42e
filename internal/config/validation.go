package config

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// Validate checks the whole configuration and reports every problem at once.
func (c Config) Validate() error {
	var errs ValidationErrors

	switch c.Server.Transport {
	case MCPTransportStreamableHTTP, MCPTransportSSE, MCPTransportStdio:
	default:
		errs.Add("server.transport", fmt.Sprintf("unsupported transport %q (use %s, %s or %s)",
			c.Server.Transport, MCPTransportStreamableHTTP, MCPTransportSSE, MCPTransportStdio), c.Server.Transport)
	}

	if c.Server.Transport != MCPTransportStdio && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs.Add("server.port", "must be between 1 and 65535", c.Server.Port)
	}

	if u, err := url.Parse(c.Combell.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs.Add("combell.baseURL", "must be an absolute URL", c.Combell.BaseURL)
	}
	if c.Combell.Timeout < 0 {
		errs.Add("combell.timeout", "must not be negative", c.Combell.Timeout)
	}

	if c.Pagination.PageSize <= 0 {
		errs.Add("pagination.pageSize", "must be positive", c.Pagination.PageSize)
	}
	if c.Pagination.MaxPages < 0 {
		errs.Add("pagination.maxPages", "must not be negative", c.Pagination.MaxPages)
	}

	if (c.Auth.APIKey == "") != (c.Auth.APISecret == "") {
		errs.Add("auth", "apiKey and apiSecret must be set together")
	}

	if c.OAuth.Enabled {
		c.validateOAuth(&errs)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs.Add("metrics.path", "must start with /", c.Metrics.Path)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func (c Config) validateOAuth(errs *ValidationErrors) {
	if c.Server.Transport == MCPTransportStdio {
		errs.Add("oauth.enabled", "OAuth requires an HTTP transport")
	}
	if c.OAuth.BaseURL == "" {
		errs.Add("oauth.baseURL", "is required when OAuth is enabled")
	}

	switch c.OAuth.Provider {
	case OAuthProviderDex:
		if c.OAuth.Dex.IssuerURL == "" {
			errs.Add("oauth.dex.issuerURL", "is required for the dex provider")
		}
		if c.OAuth.Dex.ClientID == "" {
			errs.Add("oauth.dex.clientID", "is required for the dex provider")
		}
	case OAuthProviderGoogle:
		if c.OAuth.Google.ClientID == "" {
			errs.Add("oauth.google.clientID", "is required for the google provider")
		}
	default:
		errs.Add("oauth.provider", fmt.Sprintf("unsupported provider %q", c.OAuth.Provider), c.OAuth.Provider)
	}

	if c.OAuth.RefreshTokenTTL < 0 {
		errs.Add("oauth.refreshTokenTTL", "must not be negative", c.OAuth.RefreshTokenTTL)
	}
	limits := map[string]int{
		"oauth.limits.ipRate":          c.OAuth.Limits.IPRate,
		"oauth.limits.ipBurst":         c.OAuth.Limits.IPBurst,
		"oauth.limits.userRate":        c.OAuth.Limits.UserRate,
		"oauth.limits.userBurst":       c.OAuth.Limits.UserBurst,
		"oauth.limits.maxClientsPerIP": c.OAuth.Limits.MaxClientsPerIP,
	}
	for _, field := range slices.Sorted(maps.Keys(limits)) {
		if limits[field] < 0 {
			errs.Add(field, "must not be negative", limits[field])
		}
	}

	switch c.OAuth.Storage.Type {
	case OAuthStorageMemory, "":
	case OAuthStorageValkey:
		if c.OAuth.Storage.Valkey.URL == "" {
			errs.Add("oauth.storage.valkey.url", "is required for valkey storage")
		}
	default:
		errs.Add("oauth.storage.type", fmt.Sprintf("unsupported storage %q", c.OAuth.Storage.Type), c.OAuth.Storage.Type)
	}
}
