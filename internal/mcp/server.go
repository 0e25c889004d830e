// Package mcp exposes post generation as Model Context Protocol tools, so
// assistants can call postforge over stdio or HTTP.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/postforge/internal/config"
	"github.com/ternarybob/postforge/internal/logger"
	"github.com/ternarybob/postforge/pkg/sdk"
)

// Generator runs one post generation.
type Generator interface {
	Run(ctx context.Context, source, audience string, target int) (*sdk.Result, error)
}

// Server wraps the generator to provide MCP tool access.
type Server struct {
	cfg    *config.Config
	gen    Generator
	server *server.MCPServer
	logger arbor.ILogger
}

// NewServer creates a new MCP server.
func NewServer(cfg *config.Config, gen Generator, version string) *Server {
	s := &Server{
		cfg:    cfg,
		gen:    gen,
		logger: logger.GetLogger(),
	}

	mcpServer := server.NewMCPServer(
		"postforge",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.server = mcpServer
	return s
}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	// generate_post - run the editor, writer and critic
	mcpServer.AddTool(
		mcp.NewTool("generate_post",
			mcp.WithDescription("Turn free-form text into a LinkedIn post. The text is edited, drafted and critiqued until the requested number of drafts exists."),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Source text: notes, an announcement, a summary"),
			),
			mcp.WithString("target_audience",
				mcp.Required(),
				mcp.Description("Who the post is for (e.g., 'engineering managers')"),
			),
			mcp.WithNumber("n_drafts",
				mcp.Description(fmt.Sprintf("Number of drafts to produce (default: %d, max: %d)",
					s.cfg.Generation.DefaultDrafts, s.cfg.Generation.MaxDrafts)),
			),
			mcp.WithString("format",
				mcp.Description("Output format: 'text' for the final post only, 'json' for every version (default: text)"),
			),
		),
		s.handleGeneratePost,
	)

	// post_stats - advisory length and hashtag check
	mcpServer.AddTool(
		mcp.NewTool("post_stats",
			mcp.WithDescription("Check a post against LinkedIn guidance: about 1300 characters and 3 to 5 hashtags."),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Post text to check"),
			),
		),
		s.handlePostStats,
	)
}

// handleGeneratePost handles the generate_post tool.
func (s *Server) handleGeneratePost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	audience := request.GetString("target_audience", "")
	if strings.TrimSpace(audience) == "" {
		return mcp.NewToolResultError("target_audience parameter is required"), nil
	}

	var requested *int
	if v, ok := request.GetArguments()["n_drafts"]; ok {
		n, err := draftsArg(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		requested = &n
	}
	drafts, err := s.cfg.ResolveDrafts(requested)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	format := request.GetString("format", "text")
	if format != "text" && format != "json" {
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}

	result, err := s.gen.Run(ctx, text, audience, drafts)
	if err != nil {
		s.logger.Error().Err(err).Int("n_drafts", drafts).Msg("MCP generation failed")
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	if format == "text" {
		return mcp.NewToolResultText(result.FinalPost), nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// draftsArg converts the n_drafts argument. JSON numbers arrive as float64;
// fractions are rejected instead of truncated.
func draftsArg(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, fmt.Errorf("n_drafts must be a whole number, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("n_drafts must be a number, got %T", v)
	}
}

// handlePostStats handles the post_stats tool.
func (s *Server) handlePostStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("text", "")
	if text == "" {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	return mcp.NewToolResultText(FormatStats(sdk.PostStats(text))), nil
}

// FormatStats renders stats for an assistant to read.
func FormatStats(st sdk.Stats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Characters: %d (recommended %d)\n", st.Characters, sdk.RecommendedPostLength)
	fmt.Fprintf(&sb, "Hashtags: %d (recommended %d-%d)\n", st.Hashtags, sdk.MinHashtags, sdk.MaxHashtags)
	if st.WithinLength && st.HashtagsInRange {
		sb.WriteString("Within guidance.")
	} else {
		if !st.WithinLength {
			sb.WriteString("Longer than recommended.\n")
		}
		if !st.HashtagsInRange {
			sb.WriteString("Hashtag count outside the recommended range.\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ServeStdio starts the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.server)
}

// HTTPHandler returns a streamable HTTP transport for mounting on the API.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.server)
}
