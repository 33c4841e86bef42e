// Package server exposes the Combell MCP server over HTTP or stdio.
//
// # Request chain
//
// HTTP requests to the MCP endpoints pass through up to two layers before
// they reach the tool handlers:
//
//	┌───────────────────────────────────────────────────┐
//	│ [ OAuth ValidateToken ]  optional, oauth.enabled  │
//	│        │  401 without a valid bearer token        │
//	│        ▼                                          │
//	│ [ AuthGate ]             auth.enabled             │
//	│        │  401 without API credentials             │
//	│        │  403 when a fixed pair does not match    │
//	│        ▼                                          │
//	│ [ MCP transport ]  /mcp or /sse + /message        │
//	│        ▼                                          │
//	│ [ tool handler ] builds a Combell client from the │
//	│                  credentials in the context       │
//	└───────────────────────────────────────────────────┘
//
// Credentials are accepted as HTTP Basic auth or as the X-API-Key and
// X-API-Secret header pair. When OAuth is enabled the Authorization header
// carries the bearer token, so the header pair must be used.
//
// # Endpoints
//
//   - /health - unauthenticated liveness probe
//   - /metrics - Prometheus metrics when metrics.enabled is set
//   - /mcp - streamable HTTP transport
//   - /sse, /message - SSE transport
//   - /.well-known/oauth-authorization-server, /.well-known/oauth-protected-resource
//   - /oauth/register, /oauth/authorize, /oauth/token, /oauth/callback,
//     /oauth/revoke, /oauth/introspect
//
// The stdio transport has no auth layer; tools then use the Combell
// credentials from the configuration.
package server
