package config

import "time"

const (
	DefaultCombellBaseURL  = "https://api.combell.com/v2"
	DefaultHost            = "localhost"
	DefaultPort            = 8080
	DefaultPageSize        = 100
	DefaultRealm           = "Combell MCP"
	DefaultMetricsPath     = "/metrics"
	DefaultUpstreamTimeout = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultOAuthRefreshTokenTTL = 90 * 24 * time.Hour
	DefaultOAuthIPRate          = 10
	DefaultOAuthIPBurst         = 20
	DefaultOAuthUserRate        = 100
	DefaultOAuthUserBurst       = 200
	DefaultOAuthMaxClientsPerIP = 10
)

// GetDefaultConfig returns the configuration used when no file is present.
func GetDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Transport:       MCPTransportStreamableHTTP,
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Combell: CombellConfig{
			BaseURL: DefaultCombellBaseURL,
			Timeout: DefaultUpstreamTimeout,
		},
		Pagination: PaginationConfig{
			PageSize: DefaultPageSize,
		},
		Auth: AuthConfig{
			Enabled: true,
			Realm:   DefaultRealm,
		},
		OAuth: OAuthConfig{
			Provider: OAuthProviderDex,
			Storage: OAuthStorageConfig{
				Type: OAuthStorageMemory,
			},
			RefreshTokenTTL: DefaultOAuthRefreshTokenTTL,
			Limits:          OAuthLimitsConfig{}.WithDefaults(),
			Instrumentation: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
