package config

import "time"

// Config is the top-level configuration for combell-mcp.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Combell    CombellConfig    `yaml:"combell"`
	Pagination PaginationConfig `yaml:"pagination"`
	Auth       AuthConfig       `yaml:"auth"`
	OAuth      OAuthConfig      `yaml:"oauth"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

const (
	// MCPTransportStreamableHTTP is the streamable HTTP transport.
	MCPTransportStreamableHTTP = "streamable-http"
	// MCPTransportSSE is the Server-Sent Events transport.
	MCPTransportSSE = "sse"
	// MCPTransportStdio is the standard I/O transport.
	MCPTransportStdio = "stdio"
)

// ServerConfig controls how the MCP server is exposed.
type ServerConfig struct {
	Transport string `yaml:"transport,omitempty"` // streamable-http, sse or stdio
	Host      string `yaml:"host,omitempty"`
	Port      int    `yaml:"port,omitempty"`
	// BaseURL is the externally reachable URL, used by the SSE transport to
	// advertise its message endpoint and by OAuth as the resource identifier.
	BaseURL         string        `yaml:"baseURL,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"`
}

// CombellConfig holds the upstream API settings. The credentials are the
// fallback used when a request does not carry its own.
type CombellConfig struct {
	BaseURL   string        `yaml:"baseURL,omitempty"`
	APIKey    string        `yaml:"apiKey,omitempty"`
	APISecret string        `yaml:"apiSecret,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// HasCredentials reports whether both fallback credentials are set.
func (c CombellConfig) HasCredentials() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// PaginationConfig tunes the listing loop.
type PaginationConfig struct {
	PageSize int `yaml:"pageSize,omitempty"`
	// Strict makes listing tools fail instead of returning partial results
	// when a page fetch fails.
	Strict bool `yaml:"strict,omitempty"`
	// MaxPages bounds a single listing. 0 means unbounded.
	MaxPages int `yaml:"maxPages,omitempty"`
}

// AuthConfig configures the API credential gate on HTTP transports.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Realm   string `yaml:"realm,omitempty"`
	// APIKey and APISecret, when both set, are the only credential pair the
	// gate accepts. Upstream calls then use the combell credentials.
	APIKey    string `yaml:"apiKey,omitempty"`
	APISecret string `yaml:"apiSecret,omitempty"`
}

// HasFixedCredentials reports whether the gate verifies against a configured pair.
func (a AuthConfig) HasFixedCredentials() bool {
	return a.APIKey != "" && a.APISecret != ""
}

const (
	OAuthProviderDex    = "dex"
	OAuthProviderGoogle = "google"

	OAuthStorageMemory = "memory"
	OAuthStorageValkey = "valkey"
)

// OAuthConfig enables bearer-token validation in front of the credential gate.
type OAuthConfig struct {
	Enabled  bool               `yaml:"enabled"`
	BaseURL  string             `yaml:"baseURL,omitempty"`
	Provider string             `yaml:"provider,omitempty"`
	Dex      DexConfig          `yaml:"dex,omitempty"`
	Google   GoogleConfig       `yaml:"google,omitempty"`
	Storage  OAuthStorageConfig `yaml:"storage,omitempty"`

	// EncryptionKey is a base64 encoded 32-byte AES key for tokens at rest.
	EncryptionKey string `yaml:"encryptionKey,omitempty"`

	RegistrationToken                string   `yaml:"registrationToken,omitempty"`
	AllowPublicClientRegistration    bool     `yaml:"allowPublicClientRegistration,omitempty"`
	EnableCIMD                       bool     `yaml:"enableCIMD,omitempty"`
	TrustedPublicRegistrationSchemes []string `yaml:"trustedPublicRegistrationSchemes,omitempty"`
	AllowLocalhostRedirectURIs       bool     `yaml:"allowLocalhostRedirectURIs,omitempty"`

	RefreshTokenTTL time.Duration     `yaml:"refreshTokenTTL,omitempty"`
	Limits          OAuthLimitsConfig `yaml:"limits,omitempty"`
	// Instrumentation exports the OAuth server's own metrics through Prometheus.
	Instrumentation bool `yaml:"instrumentation,omitempty"`
}

// OAuthLimitsConfig bounds request and client registration rates. Zero
// fields fall back to the defaults.
type OAuthLimitsConfig struct {
	IPRate          int `yaml:"ipRate,omitempty"` // requests per second per client IP
	IPBurst         int `yaml:"ipBurst,omitempty"`
	UserRate        int `yaml:"userRate,omitempty"` // requests per second per authenticated user
	UserBurst       int `yaml:"userBurst,omitempty"`
	MaxClientsPerIP int `yaml:"maxClientsPerIP,omitempty"`
}

// WithDefaults fills zero fields with the default limits.
func (l OAuthLimitsConfig) WithDefaults() OAuthLimitsConfig {
	fill := func(v *int, d int) {
		if *v == 0 {
			*v = d
		}
	}
	fill(&l.IPRate, DefaultOAuthIPRate)
	fill(&l.IPBurst, DefaultOAuthIPBurst)
	fill(&l.UserRate, DefaultOAuthUserRate)
	fill(&l.UserBurst, DefaultOAuthUserBurst)
	fill(&l.MaxClientsPerIP, DefaultOAuthMaxClientsPerIP)
	return l
}

// DexConfig configures the Dex OIDC provider.
type DexConfig struct {
	IssuerURL    string `yaml:"issuerURL,omitempty"`
	ClientID     string `yaml:"clientID,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`
	ConnectorID  string `yaml:"connectorID,omitempty"`
	CAFile       string `yaml:"caFile,omitempty"`
}

// GoogleConfig configures the Google OAuth provider.
type GoogleConfig struct {
	ClientID     string `yaml:"clientID,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`
}

// OAuthStorageConfig selects where OAuth tokens and clients live.
type OAuthStorageConfig struct {
	Type   string       `yaml:"type,omitempty"`
	Valkey ValkeyConfig `yaml:"valkey,omitempty"`
}

// ValkeyConfig configures the Valkey token store.
type ValkeyConfig struct {
	URL        string `yaml:"url,omitempty"`
	Password   string `yaml:"password,omitempty"`
	DB         int    `yaml:"db,omitempty"`
	KeyPrefix  string `yaml:"keyPrefix,omitempty"`
	TLSEnabled bool   `yaml:"tlsEnabled,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // text or json
}
