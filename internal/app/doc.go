// Package app wires combell-mcp together and runs it.
//
// Bootstrap order:
//
//  1. Configuration: YAML file, .env file, environment, command line flags,
//     then validation (see LoadSettings)
//  2. Logging on stderr at the configured level and format
//  3. A private Prometheus registry with the Go and process collectors and
//     the combell-mcp collectors
//  4. The Combell client factory, the paginator and the tool provider
//  5. The MCP server with every tool registered
//
// Run then serves either stdio or one HTTP transport. For HTTP the server
// and a shutdown watcher run in an errgroup; SIGINT, SIGTERM or a cancelled
// context start a graceful shutdown bounded by server.shutdownTimeout.
// Under systemd READY=1 is sent once the listener is up and STOPPING=1 when
// shutdown begins.
//
// Combell credentials in the configuration are required when the transport
// is stdio, when the auth gate is disabled and when it is pinned to a fixed
// pair. Otherwise callers present their own and the configured pair is only
// a fallback. Missing required credentials yield ErrMissingCredentials.
package app
