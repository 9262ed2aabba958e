package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/tunebar/internal/dispatch"
	"github.com/desertthunder/tunebar/internal/shared"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
)

// MCP serves the dispatcher to agent clients over stdio. The query tool
// mirrors what the query bar does, so a client sees the same result rows a
// user would.
func (r *Runner) MCP(ctx context.Context, cmd *cli.Command) error {
	if r.dispatcher == nil {
		return fmt.Errorf("%w: set spotify client_id and client_secret in config.toml", shared.ErrMissingCredentials)
	}

	dir, err := r.config.PluginDir()
	if err != nil {
		return err
	}

	// stdout carries the protocol, so logs go to a file.
	f, err := shared.OpenLogFile(filepath.Join(dir, "mcp.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()
	r.logger.SetOutput(f)

	mcpServer := server.NewMCPServer(
		"tunebar",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithLogging(),
	)

	queryTool := mcp.NewTool("query",
		mcp.WithDescription("Dispatch a query against the Spotify control surface. Blank input lists playback controls for the current track. Prefix with 'artist', 'album', 'track', or 'playlist' to search one category; any other text searches every category."),
		mcp.WithString("query",
			mcp.Description("Query text, for example 'track so what' or 'vol 40'"),
		),
	)

	playTool := mcp.NewTool("play",
		mcp.WithDescription("Start playback of a Spotify URI on the active device. Use URIs returned by the query tool."),
		mcp.WithString("uri",
			mcp.Required(),
			mcp.Description("Spotify URI, for example spotify:track:4iV5W9uYEdYUVa79Axb7Rh"),
		),
	)

	mcpServer.AddTool(queryTool, r.mcpQuery)
	mcpServer.AddTool(playTool, r.mcpPlay)

	metricsResource := mcp.NewResource(
		"tunebar://metrics",
		"Dispatch Metrics",
		mcp.WithResourceDescription("Dispatch, suppression, and search counters for this session"),
		mcp.WithMIMEType("application/json"),
	)
	mcpServer.AddResource(metricsResource, r.mcpMetrics)

	r.logger.Info("serving MCP on stdio")
	if err := server.ServeStdio(mcpServer); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}

func (r *Runner) mcpQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("query", "")

	results := r.dispatcher.Dispatch(ctx, text)
	if results == nil {
		results = []dispatch.Result{}
	}

	data, err := shared.MarshalJSON(results, true)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}

func (r *Runner) mcpPlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := request.RequireString("uri")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid uri parameter: %v", err)), nil
	}

	if err := r.session.PlayItem(ctx, uri); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Playback failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Started playback of %s", uri)), nil
}

func (r *Runner) mcpMetrics(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := shared.MarshalJSON(r.dispatcher.Metrics().Snapshot(), true)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
