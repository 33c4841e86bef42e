package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"combell-mcp/internal/cli"
)

type callOptions struct {
	output    string
	quiet     bool
	noHeaders bool
}

func newCallCmd(global *globalOptions) *cobra.Command {
	opts := &callOptions{}

	cmd := &cobra.Command{
		Use:   "call <tool> [key=value ...]",
		Short: "Run one tool against the Combell API",
		Long: `Runs a single tool in-process with the configured Combell credentials
and prints the result.

Arguments are given as key=value pairs and converted to the types the tool
declares. Run 'combell-mcp tools' for the list of tools.

Examples:
  combell-mcp call domains
  combell-mcp call dns_records domain=example.com type=MX
  combell-mcp call domain_health -o json
  combell-mcp call hosting_overview -o yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.ValidateOutputFormat(opts.output); err != nil {
				return err
			}

			cfg := global.appConfig(versionOf(cmd))
			cfg.RequireCredentials = true
			if !global.debug {
				cfg.LogLevel = "warn"
			}
			application, err := initApplication(cfg)
			if err != nil {
				return err
			}

			executor, err := cli.NewToolExecutor(application.MCPServer(), cli.ExecutorOptions{
				Format:    cli.OutputFormat(opts.output),
				NoHeaders: opts.noHeaders,
				Quiet:     opts.quiet,
				Out:       cmd.OutOrStdout(),
				ErrOut:    cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			defer executor.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := executor.Connect(ctx); err != nil {
				return err
			}

			tool, err := executor.Tool(ctx, args[0])
			if err != nil {
				return err
			}
			toolArgs, err := cli.ParseArgs(tool, args[1:])
			if err != nil {
				return err
			}

			err = executor.Execute(ctx, tool.Name, toolArgs)
			var toolErr *cli.ToolError
			if errors.As(err, &toolErr) && !opts.quiet {
				// The banner already went to stderr.
				return fmt.Errorf("tool %s failed", toolErr.Tool)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", string(cli.OutputFormatTable), "Output format: table, json or yaml")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress the spinner and failure banners")
	cmd.Flags().BoolVar(&opts.noHeaders, "no-headers", false, "Omit table headers")
	return cmd
}
