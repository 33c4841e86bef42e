package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	oauth "github.com/giantswarm/mcp-oauth"
	"github.com/giantswarm/mcp-oauth/providers"
	"github.com/giantswarm/mcp-oauth/providers/dex"
	"github.com/giantswarm/mcp-oauth/providers/google"
	"github.com/giantswarm/mcp-oauth/security"
	oauthserver "github.com/giantswarm/mcp-oauth/server"
	"github.com/giantswarm/mcp-oauth/storage"
	"github.com/giantswarm/mcp-oauth/storage/memory"
	"github.com/giantswarm/mcp-oauth/storage/valkey"

	"combell-mcp/internal/config"
	"combell-mcp/pkg/logging"
)

const (
	// defaultValkeyKeyPrefix namespaces OAuth keys in a shared Valkey.
	defaultValkeyKeyPrefix = "combell-mcp:"

	// logEmailPrefixLength is the number of characters to show when logging emails.
	logEmailPrefixLength = 8
)

var (
	dexOAuthScopes = []string{"openid", "profile", "email", "groups", "offline_access"}

	googleOAuthScopes = []string{
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	}
)

// OAuthGuard puts OAuth 2.1 bearer-token validation in front of the MCP
// endpoints and serves the authorization server endpoints clients need to
// obtain a token.
type OAuthGuard struct {
	config       config.OAuthConfig
	oauthServer  *oauth.Server
	oauthHandler *oauth.Handler
}

// NewOAuthGuard creates the OAuth server and its HTTP handler.
func NewOAuthGuard(cfg config.OAuthConfig, version string) (*OAuthGuard, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("OAuth is not enabled")
	}

	if err := validateHTTPSRequirement(cfg.BaseURL); err != nil {
		return nil, err
	}

	oauthServer, err := createOAuthServer(cfg, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth server: %w", err)
	}

	return &OAuthGuard{
		config:       cfg,
		oauthServer:  oauthServer,
		oauthHandler: oauth.NewHandler(oauthServer, oauthServer.Logger),
	}, nil
}

// RegisterRoutes mounts the OAuth 2.1 metadata and flow endpoints.
func (g *OAuthGuard) RegisterRoutes(mux *http.ServeMux) {
	// RFC 9728 and RFC 8414 metadata
	mux.HandleFunc("/.well-known/oauth-protected-resource", g.oauthHandler.ServeProtectedResourceMetadata)
	mux.HandleFunc("/.well-known/oauth-authorization-server", g.oauthHandler.ServeAuthorizationServerMetadata)

	mux.HandleFunc("/oauth/register", g.oauthHandler.ServeClientRegistration)
	mux.HandleFunc("/oauth/authorize", g.oauthHandler.ServeAuthorization)
	mux.HandleFunc("/oauth/token", g.oauthHandler.ServeToken)
	mux.HandleFunc("/oauth/callback", g.oauthHandler.ServeCallback)
	mux.HandleFunc("/oauth/revoke", g.oauthHandler.ServeTokenRevocation)
	mux.HandleFunc("/oauth/introspect", g.oauthHandler.ServeTokenIntrospection)

	logging.Info("OAuth", "Registered OAuth 2.1 endpoints")
}

// Protect validates the bearer token before next runs.
func (g *OAuthGuard) Protect(next http.Handler) http.Handler {
	return g.oauthHandler.ValidateToken(identityLogger(next))
}

// Shutdown stops rate limiters and releases storage.
func (g *OAuthGuard) Shutdown(ctx context.Context) error {
	if g.oauthServer == nil {
		return nil
	}
	if err := g.oauthServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown OAuth server: %w", err)
	}
	return nil
}

// identityLogger logs which user a validated request belongs to.
func identityLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userInfo, ok := oauth.UserInfoFromContext(r.Context()); ok && userInfo != nil && userInfo.Email != "" {
			logging.Debug("OAuth", "Authenticated request %s %s (email prefix: %s...)", r.Method, r.URL.Path, hashEmail(userInfo.Email))
		}
		next.ServeHTTP(w, r)
	})
}

// oauthStores are the three storage roles of the OAuth server. A single
// backend serves all of them.
type oauthStores struct {
	tokens  storage.TokenStore
	clients storage.ClientStore
	flows   storage.FlowStore
}

func createOAuthServer(cfg config.OAuthConfig, version string) (*oauth.Server, error) {
	logger := logging.Logger()

	provider, err := newOAuthProvider(cfg, cfg.BaseURL+"/oauth/callback")
	if err != nil {
		return nil, err
	}
	stores, err := newOAuthStores(cfg)
	if err != nil {
		return nil, err
	}

	oauthSrv, err := oauth.NewServer(provider, stores.tokens, stores.clients, stores.flows, newOAuthServerConfig(cfg, version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth server: %w", err)
	}
	if err := applyOAuthSecurity(oauthSrv, cfg); err != nil {
		return nil, err
	}
	return oauthSrv, nil
}

func newOAuthProvider(cfg config.OAuthConfig, redirectURL string) (providers.Provider, error) {
	switch cfg.Provider {
	case config.OAuthProviderDex:
		dexConfig := &dex.Config{
			IssuerURL:    cfg.Dex.IssuerURL,
			ClientID:     cfg.Dex.ClientID,
			ClientSecret: cfg.Dex.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       append([]string(nil), dexOAuthScopes...),
			ConnectorID:  cfg.Dex.ConnectorID,
		}
		if cfg.Dex.CAFile != "" {
			httpClient, err := createHTTPClientWithCA(cfg.Dex.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to create HTTP client with CA: %w", err)
			}
			dexConfig.HTTPClient = httpClient
		}
		provider, err := dex.NewProvider(dexConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create Dex provider: %w", err)
		}
		logging.Info("OAuth", "Identity provider: Dex at %s (custom CA: %t)", cfg.Dex.IssuerURL, cfg.Dex.CAFile != "")
		return provider, nil

	case config.OAuthProviderGoogle:
		provider, err := google.NewProvider(&google.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       googleOAuthScopes,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Google provider: %w", err)
		}
		logging.Info("OAuth", "Identity provider: Google")
		return provider, nil

	default:
		return nil, fmt.Errorf("unsupported OAuth provider: %s (supported: %s, %s)",
			cfg.Provider, config.OAuthProviderDex, config.OAuthProviderGoogle)
	}
}

// newOAuthStores opens the configured backend. Valkey encrypts tokens itself
// when an encryption key is set.
func newOAuthStores(cfg config.OAuthConfig) (oauthStores, error) {
	switch cfg.Storage.Type {
	case config.OAuthStorageMemory, "":
		mem := memory.New()
		logging.Info("OAuth", "Token storage: memory")
		return oauthStores{tokens: mem, clients: mem, flows: mem}, nil

	case config.OAuthStorageValkey:
		vc := cfg.Storage.Valkey
		if vc.URL == "" {
			return oauthStores{}, fmt.Errorf("valkey URL is required when using valkey storage")
		}
		prefix := vc.KeyPrefix
		if prefix == "" {
			prefix = defaultValkeyKeyPrefix
		}
		valkeyConfig := valkey.Config{
			Address:   vc.URL,
			Password:  vc.Password,
			DB:        vc.DB,
			KeyPrefix: prefix,
			Logger:    logging.Logger(),
		}
		if vc.TLSEnabled {
			valkeyConfig.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		store, err := valkey.New(valkeyConfig)
		if err != nil {
			return oauthStores{}, fmt.Errorf("failed to create Valkey storage: %w", err)
		}
		if cfg.EncryptionKey != "" {
			keyBytes, err := decodeEncryptionKey(cfg.EncryptionKey)
			if err != nil {
				store.Close()
				return oauthStores{}, err
			}
			encryptor, err := security.NewEncryptor(keyBytes)
			if err != nil {
				store.Close()
				return oauthStores{}, fmt.Errorf("failed to create encryptor: %w", err)
			}
			store.SetEncryptor(encryptor)
		}
		logging.Info("OAuth", "Token storage: valkey at %s, prefix %s, encrypted %t", vc.URL, prefix, cfg.EncryptionKey != "")
		return oauthStores{tokens: store, clients: store, flows: store}, nil

	default:
		return oauthStores{}, fmt.Errorf("unsupported OAuth storage type: %s (supported: %s, %s)",
			cfg.Storage.Type, config.OAuthStorageMemory, config.OAuthStorageValkey)
	}
}

func newOAuthServerConfig(cfg config.OAuthConfig, version string) *oauthserver.Config {
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = config.DefaultOAuthRefreshTokenTTL
	}
	limits := cfg.Limits.WithDefaults()

	return &oauthserver.Config{
		Issuer:                           cfg.BaseURL,
		RefreshTokenTTL:                  int64(refreshTTL.Seconds()),
		AllowRefreshTokenRotation:        true,
		RequirePKCE:                      true,
		AllowPKCEPlain:                   false,
		AllowPublicClientRegistration:    cfg.AllowPublicClientRegistration,
		RegistrationAccessToken:          cfg.RegistrationToken,
		MaxClientsPerIP:                  limits.MaxClientsPerIP,
		EnableClientIDMetadataDocuments:  cfg.EnableCIMD,
		TrustedPublicRegistrationSchemes: cfg.TrustedPublicRegistrationSchemes,
		AllowLocalhostRedirectURIs:       cfg.AllowLocalhostRedirectURIs,
		Instrumentation: oauthserver.InstrumentationConfig{
			Enabled:         cfg.Instrumentation,
			ServiceName:     "combell-mcp",
			ServiceVersion:  version,
			MetricsExporter: "prometheus",
		},
	}
}

// applyOAuthSecurity installs auditing, rate limiting and, for stores that
// do not encrypt on their own, token encryption.
func applyOAuthSecurity(srv *oauth.Server, cfg config.OAuthConfig) error {
	logger := logging.Logger()

	if cfg.EncryptionKey != "" && cfg.Storage.Type != config.OAuthStorageValkey {
		keyBytes, err := decodeEncryptionKey(cfg.EncryptionKey)
		if err != nil {
			return err
		}
		encryptor, err := security.NewEncryptor(keyBytes)
		if err != nil {
			return fmt.Errorf("failed to create encryptor: %w", err)
		}
		srv.SetEncryptor(encryptor)
	}

	srv.SetAuditor(security.NewAuditor(logger, true))

	limits := cfg.Limits.WithDefaults()
	srv.SetRateLimiter(security.NewRateLimiter(limits.IPRate, limits.IPBurst, logger))
	srv.SetUserRateLimiter(security.NewRateLimiter(limits.UserRate, limits.UserBurst, logger))
	srv.SetClientRegistrationRateLimiter(security.NewClientRegistrationRateLimiterWithConfig(
		limits.MaxClientsPerIP,
		security.DefaultRegistrationWindow,
		security.DefaultMaxRegistrationEntries,
		logger,
	))
	logging.Info("OAuth", "Rate limits: %d/s per IP (burst %d), %d/s per user (burst %d), %d clients per IP",
		limits.IPRate, limits.IPBurst, limits.UserRate, limits.UserBurst, limits.MaxClientsPerIP)
	return nil
}

func decodeEncryptionKey(encoded string) ([]byte, error) {
	keyBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}
	return keyBytes, nil
}

// createHTTPClientWithCA creates an HTTP client that trusts certificates signed by
// the CA in the specified file.
func createHTTPClientWithCA(caFile string) (*http.Client, error) {
	// #nosec G304 -- caFile is operator configuration
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file %s: %w", caFile, err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate from %s", caFile)
	}

	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				RootCAs:    caCertPool,
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: 30 * time.Second,
	}, nil
}

// validateHTTPSRequirement allows plain HTTP only for loopback addresses.
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth 2.1 requires HTTPS for production (got: %s). Use HTTPS or localhost for development", baseURL)
		}
		return nil
	default:
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}
}

// hashEmail returns a truncated prefix of the email for logging.
func hashEmail(email string) string {
	if len(email) > logEmailPrefixLength {
		return email[:logEmailPrefixLength]
	}
	return email
}
