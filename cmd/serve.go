package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

type serveOptions struct {
	transport string
	host      string
	port      int
}

func newServeCmd(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the combell-mcp server",
		Long: `Starts the MCP server on the configured transport.

Transports:
  streamable-http  HTTP on /mcp (default)
  sse              Server-Sent Events on /sse with messages posted to /message
  stdio            standard input and output, for launching from an MCP client

HTTP transports require X-API-Key and X-API-Secret headers (or HTTP Basic
credentials) on every MCP request unless auth.enabled is false. The
presented pair is used to sign the Combell API requests, unless the
configuration pins a fixed pair in auth.apiKey and auth.apiSecret.

Configuration is read from --config, then --env-file, then the
environment (COMBELL_API_KEY, COMBELL_API_SECRET, COMBELL_MCP_TRANSPORT,
...), then the flags below.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := global.appConfig(versionOf(cmd))
			cfg.Transport = opts.transport
			cfg.Host = opts.host
			cfg.Port = opts.port

			application, err := initApplication(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return application.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", "", "MCP transport: streamable-http, sse or stdio")
	cmd.Flags().StringVar(&opts.host, "host", "", "Address to bind HTTP transports to")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Port for HTTP transports")
	return cmd
}
