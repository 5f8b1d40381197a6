// Package mcpserver exposes the exchange archive and the text reply policy to
// MCP clients over stdio. It never writes to the log.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jwulff/finvoice/internal/conversation"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

// Archive is the read side of the exchange store.
type Archive interface {
	RecentExchanges(limit int) ([]conversation.Exchange, error)
}

// Server holds the tool handlers.
type Server struct {
	archive Archive
	policy  conversation.ResponsePolicy
	version string
	logger  *zap.Logger
}

// New returns a server answering from archive and policy.
func New(archive Archive, policy conversation.ResponsePolicy, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{archive: archive, policy: policy, version: version, logger: logger}
}

// MCP builds the protocol server with both tools registered.
func (s *Server) MCP() *server.MCPServer {
	srv := server.NewMCPServer("finvoice", s.version, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("recent_exchanges",
		mcp.WithDescription("List the most recent archived chat exchanges, oldest first."),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of exchanges (default %d, max %d)", defaultLimit, maxLimit)),
		),
	), s.handleRecentExchanges)

	srv.AddTool(mcp.NewTool("ask_assistant",
		mcp.WithDescription("Ask the financial assistant a question and get its reply with insights."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to ask"),
		),
	), s.handleAskAssistant)

	return srv
}

// ServeStdio blocks serving MCP requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.MCP())
}

type insightJSON struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Metric      string `json:"metric,omitempty"`
}

type exchangeJSON struct {
	ID        uint64        `json:"id"`
	Origin    string        `json:"origin"`
	Channel   string        `json:"channel"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	Insights  []insightJSON `json:"insights,omitempty"`
}

type replyJSON struct {
	Content  string        `json:"content"`
	Insights []insightJSON `json:"insights,omitempty"`
}

func toInsightsJSON(in []conversation.Insight) []insightJSON {
	if len(in) == 0 {
		return nil
	}
	out := make([]insightJSON, len(in))
	for i, v := range in {
		out[i] = insightJSON{
			Category:    string(v.Category),
			Title:       v.Title,
			Description: v.Description,
			Metric:      v.MetricValue,
		}
	}
	return out
}

func (s *Server) handleRecentExchanges(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	exchanges, err := s.archive.RecentExchanges(limit)
	if err != nil {
		s.logger.Error("recent_exchanges", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("read archive: %v", err)), nil
	}

	out := make([]exchangeJSON, 0, len(exchanges))
	for _, e := range exchanges {
		out = append(out, exchangeJSON{
			ID:        e.ID,
			Origin:    e.Origin.String(),
			Channel:   e.Channel.String(),
			Content:   e.Content,
			CreatedAt: e.CreatedAt.UTC(),
			Insights:  toInsightsJSON(e.Insights),
		})
	}
	return jsonResult(out)
}

func (s *Server) handleAskAssistant(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("question must not be empty"), nil
	}

	reply := s.policy.Generate(strings.TrimSpace(question))
	s.logger.Debug("ask_assistant", zap.Int("insights", len(reply.Insights)))
	return jsonResult(replyJSON{Content: reply.Content, Insights: toInsightsJSON(reply.Insights)})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
