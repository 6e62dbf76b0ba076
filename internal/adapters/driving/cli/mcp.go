package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/mcp"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can identify
medicines and look up drug-safety records.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default)
  pillmate mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  pillmate mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "pillmate": {
        "command": "/path/to/pillmate",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE:        runMCPServe,
	Annotations: catalogAnnotation,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Catalog:    catalogService,
		Candidates: candidateSearch,
		Safety:     safetyRetriever,
		Advisor:    safetyAdvisor,
		Regimen:    regimenAnalyzer,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	startWatcher(ctx, func(result domain.LoadResult) {
		logger.Debug("catalog state after reload: %s (%d records)", result.State, result.Records)
	})

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// startWatcher runs the catalog watcher in the background until ctx ends.
// It does nothing when hot reload is disabled.
func startWatcher(ctx context.Context, onReload func(domain.LoadResult)) {
	if catalogWatcher == nil {
		return
	}
	catalogWatcher.OnReload(onReload)
	go func() {
		if err := catalogWatcher.Run(ctx); err != nil {
			// Watch errors shouldn't stop the server
			logger.Warn("catalog watcher stopped: %v", err)
		}
	}()
}
