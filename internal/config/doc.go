// Package config loads combell-mcp configuration.
//
// Settings are layered: built-in defaults, then the YAML file
// (~/.config/combell-mcp/config.yaml unless --config says otherwise), then a
// .env file, then environment variables. Command line flags are applied by
// the caller on top of the result.
//
// Example config.yaml:
//
//	server:
//	  transport: streamable-http
//	  host: 0.0.0.0
//	  port: 8080
//	combell:
//	  apiKey: my-key
//	  apiSecret: my-secret
//	pagination:
//	  pageSize: 100
//	  strict: false
//	auth:
//	  enabled: true
//	oauth:
//	  enabled: false
package config
