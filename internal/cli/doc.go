// Package cli runs Combell tools from the command line.
//
// ToolExecutor connects an mcp-go in-process client to the MCP server the
// serve command would expose, so a tool call from the shell goes through the
// same schema validation and handlers as a call from an MCP client.
//
// Results are printed as:
//   - table: listings become go-pretty tables with one column per field,
//     objects become key/value tables
//   - json: the tool output as returned
//   - yaml: the tool output converted to YAML
//
// A spinner is shown on stderr while a call runs unless Quiet is set.
//
//	executor, err := cli.NewToolExecutor(mcpServer, cli.ExecutorOptions{Format: cli.OutputFormatTable})
//	if err != nil {
//		return err
//	}
//	defer executor.Close()
//	if err := executor.Connect(ctx); err != nil {
//		return err
//	}
//	return executor.Execute(ctx, "domains", nil)
package cli
