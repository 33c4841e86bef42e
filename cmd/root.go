package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"combell-mcp/internal/app"
	"combell-mcp/internal/config"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeMissingCredentials indicates the Combell API credentials are not configured.
	ExitCodeMissingCredentials = 2
)

// lookupEnv reads the process environment. Tests replace it.
var lookupEnv config.LookupFunc = os.LookupEnv

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	envFile    string
	debug      bool
}

// appConfig builds the application configuration for one command run.
func (o *globalOptions) appConfig(version string) *app.Config {
	cfg := app.NewConfig(o.configPath, o.envFile, o.debug, version)
	cfg.Lookup = lookupEnv
	return cfg
}

// rootCmd is the command tree used by Execute.
var rootCmd *cobra.Command

func init() {
	rootCmd = newRootCmd()
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "combell-mcp",
		Short: "MCP server for the Combell hosting API",
		Long: `combell-mcp exposes a Combell hosting account to AI assistants over the
Model Context Protocol. Every tool is read-only: accounts, domains, DNS
records, Linux hostings, MySQL databases and SSL certificates, plus a
domain health check and a hosting overview.

Run 'combell-mcp serve' to start the server, or 'combell-mcp call' to run
a single tool from the terminal.`,
		// Errors are printed by cobra; usage only on flag errors.
		SilenceUsage: true,
	}
	root.SetVersionTemplate(`{{printf "combell-mcp version %s\n" .Version}}`)

	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "Path to the YAML configuration file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file loaded before the environment")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newServeCmd(opts),
		newCallCmd(opts),
		newToolsCmd(opts),
		newVersionCmd(),
		newSelfUpdateCmd(),
	)
	return root
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a code from getExitCode on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, app.ErrMissingCredentials):
		return ExitCodeMissingCredentials
	default:
		return ExitCodeError
	}
}

// versionOf returns the version of the tree cmd belongs to.
func versionOf(cmd *cobra.Command) string {
	if cmd != nil && cmd.Root().Version != "" {
		return cmd.Root().Version
	}
	return rootCmd.Version
}

func initApplication(cfg *app.Config) (*app.Application, error) {
	application, err := app.NewApplication(cfg)
	if err != nil {
		if errors.Is(err, app.ErrMissingCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}
