package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// ExecutorOptions controls how tool results are presented.
type ExecutorOptions struct {
	// Format specifies the desired output format (table, json, yaml)
	Format OutputFormat
	// NoHeaders suppresses the header row in table output
	NoHeaders bool
	// Quiet suppresses the spinner and failure banners
	Quiet bool
	// Out receives results. Defaults to os.Stdout.
	Out io.Writer
	// ErrOut receives the spinner and failure banners. Defaults to os.Stderr.
	ErrOut io.Writer
}

// ToolError is a tool result flagged as an error.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tool, e.Message)
}

// ToolExecutor runs tools of an in-process MCP server and prints their
// results. It goes through the MCP protocol like a remote client would.
type ToolExecutor struct {
	client   *client.Client
	options  ExecutorOptions
	renderer *Renderer
	tools    []mcp.Tool
}

// NewToolExecutor creates an executor bound to s. Call Connect before use.
func NewToolExecutor(s *mcpserver.MCPServer, options ExecutorOptions) (*ToolExecutor, error) {
	if options.Format == "" {
		options.Format = OutputFormatTable
	}
	if err := ValidateOutputFormat(string(options.Format)); err != nil {
		return nil, err
	}
	if options.Out == nil {
		options.Out = os.Stdout
	}
	if options.ErrOut == nil {
		options.ErrOut = os.Stderr
	}

	c, err := client.NewInProcessClient(s)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-process client: %w", err)
	}

	return &ToolExecutor{
		client:  c,
		options: options,
		renderer: &Renderer{
			Format:    options.Format,
			Out:       options.Out,
			NoHeaders: options.NoHeaders,
		},
	}, nil
}

// Connect performs the MCP handshake.
func (e *ToolExecutor) Connect(ctx context.Context) error {
	if err := e.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start client: %w", err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "combell-mcp-cli",
		Version: "1.0.0",
	}
	if _, err := e.client.Initialize(ctx, initRequest); err != nil {
		return fmt.Errorf("failed to initialize MCP protocol: %w", err)
	}
	return nil
}

// Close releases the client.
func (e *ToolExecutor) Close() error {
	return e.client.Close()
}

// ListTools returns the tools the server announces.
func (e *ToolExecutor) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if e.tools != nil {
		return e.tools, nil
	}
	result, err := e.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	e.tools = result.Tools
	return e.tools, nil
}

// Tool looks up one announced tool.
func (e *ToolExecutor) Tool(ctx context.Context, name string) (mcp.Tool, error) {
	tools, err := e.ListTools(ctx)
	if err != nil {
		return mcp.Tool{}, err
	}
	for _, t := range tools {
		if t.Name == name {
			return t, nil
		}
	}
	return mcp.Tool{}, fmt.Errorf("unknown tool %q", name)
}

// Execute calls a tool and prints its result in the configured format.
func (e *ToolExecutor) Execute(ctx context.Context, toolName string, args map[string]any) error {
	var s *spinner.Spinner
	if !e.options.Quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(e.options.ErrOut))
		s.Suffix = " Calling " + toolName + "..."
		s.Start()
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = toolName
	request.Params.Arguments = args
	result, err := e.client.CallTool(ctx, request)

	if s != nil {
		s.Stop()
	}

	if err != nil {
		e.banner("Command failed")
		return fmt.Errorf("failed to execute tool %s: %w", toolName, err)
	}
	if result.IsError {
		e.banner("Command returned error")
		return &ToolError{Tool: toolName, Message: errorMessage(result)}
	}

	payload := resultText(result)
	if payload == "" {
		if !e.options.Quiet {
			fmt.Fprintln(e.options.Out, "No results")
		}
		return nil
	}
	return e.renderer.Render(payload)
}

func (e *ToolExecutor) banner(msg string) {
	if !e.options.Quiet {
		fmt.Fprintln(e.options.ErrOut, text.FgRed.Sprint(msg))
	}
}

func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if tc, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// errorMessage unwraps the {"error": "..."} envelope tools return.
func errorMessage(result *mcp.CallToolResult) string {
	raw := resultText(result)
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return raw
}
