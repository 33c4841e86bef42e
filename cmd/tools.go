package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"combell-mcp/internal/cli"
	pkgstrings "combell-mcp/pkg/strings"
)

const toolDescriptionWidth = 70

type toolsOptions struct {
	output string
}

type toolSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Arguments   []string `json:"arguments,omitempty"`
	Required    []string `json:"required,omitempty"`
}

func newToolsCmd(global *globalOptions) *cobra.Command {
	opts := &toolsOptions{}

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		Long: `Lists every tool the server registers with its arguments.
Required arguments are marked with *.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != string(cli.OutputFormatTable) && opts.output != string(cli.OutputFormatJSON) {
				return fmt.Errorf("unsupported output format: %q (valid: table, json)", opts.output)
			}

			cfg := global.appConfig(versionOf(cmd))
			cfg.Offline = true
			if !global.debug {
				cfg.LogLevel = "warn"
			}
			application, err := initApplication(cfg)
			if err != nil {
				return err
			}

			executor, err := cli.NewToolExecutor(application.MCPServer(), cli.ExecutorOptions{Quiet: true})
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
			tools, err := executor.ListTools(ctx)
			if err != nil {
				return err
			}

			summaries := summarizeTools(tools)
			if opts.output == string(cli.OutputFormatJSON) {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}
			renderToolTable(cmd.OutOrStdout(), summaries)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", string(cli.OutputFormatTable), "Output format: table or json")
	return cmd
}

func summarizeTools(tools []mcp.Tool) []toolSummary {
	summaries := make([]toolSummary, 0, len(tools))
	for _, t := range tools {
		s := toolSummary{
			Name:        t.Name,
			Description: t.Description,
			Required:    slices.Sorted(slices.Values(t.InputSchema.Required)),
		}
		for name := range t.InputSchema.Properties {
			s.Arguments = append(s.Arguments, name)
		}
		sort.Strings(s.Arguments)
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries
}

func renderToolTable(w io.Writer, summaries []toolSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"NAME", "DESCRIPTION", "ARGUMENTS"})

	for _, s := range summaries {
		args := make([]string, 0, len(s.Arguments))
		for _, a := range s.Arguments {
			if slices.Contains(s.Required, a) {
				a += "*"
			}
			args = append(args, a)
		}
		t.AppendRow(table.Row{
			s.Name,
			pkgstrings.Truncate(s.Description, toolDescriptionWidth),
			pkgstrings.OrDash(strings.Join(args, ", ")),
		})
	}
	t.Render()
}
