package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// MCPServer exposes the study stages as MCP tools
type MCPServer struct {
	analyzer  *Analyzer
	mcpServer *server.MCPServer
	logger    zerolog.Logger
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(analyzer *Analyzer, version string) *MCPServer {
	mcpServer := server.NewMCPServer(
		"vidstudy-server",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		analyzer:  analyzer,
		mcpServer: mcpServer,
		logger:    NewLogger("mcp"),
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("analyze_transcript",
		mcp.WithDescription("Turn a video transcript into a study report: summary, study guide, recommended topics and quiz questions, as Markdown."),
		mcp.WithString("transcript",
			mcp.Description("Plain text transcript of the video"),
			mcp.Required(),
		),
		mcp.WithString("title",
			mcp.Description("Optional title for the report"),
		),
	), s.handleAnalyze)

	s.mcpServer.AddTool(mcp.NewTool("summarize_transcript",
		mcp.WithDescription("Write a short summary of a video transcript. Transcripts under 50 characters are rejected with a fixed message."),
		mcp.WithString("text",
			mcp.Description("Transcript to summarize"),
			mcp.Required(),
		),
	), s.stageHandler(StageSummary, func(ctx context.Context, text string) string {
		return s.analyzer.Summarizer().Summarize(ctx, text)
	}))

	s.mcpServer.AddTool(mcp.NewTool("create_study_guide",
		mcp.WithDescription("Build a study guide (key concepts, objectives, strategies) from a summary."),
		mcp.WithString("text",
			mcp.Description("Summary to build the guide from"),
			mcp.Required(),
		),
	), s.stageHandler(StageStudyGuide, func(ctx context.Context, text string) string {
		return s.analyzer.StudyGuides().CreateGuide(ctx, text)
	}))

	s.mcpServer.AddTool(mcp.NewTool("recommend_topics",
		mcp.WithDescription("Recommend related topics for further study based on a transcript."),
		mcp.WithString("text",
			mcp.Description("Transcript to base the recommendations on"),
			mcp.Required(),
		),
	), s.stageHandler(StageTopics, func(ctx context.Context, text string) string {
		return s.analyzer.Topics().Recommend(ctx, text)
	}))

	s.mcpServer.AddTool(mcp.NewTool("generate_quiz",
		mcp.WithDescription("Write quiz questions with answers from a study guide."),
		mcp.WithString("text",
			mcp.Description("Study guide to write questions for"),
			mcp.Required(),
		),
	), s.stageHandler(StageQuiz, func(ctx context.Context, text string) string {
		return s.analyzer.Quizzes().Generate(ctx, text)
	}))
}

// handleAnalyze implements the analyze_transcript tool
func (s *MCPServer) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	transcript, err := request.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError("transcript parameter is required and must be a string"), nil
	}
	title := request.GetString("title", "")

	s.logger.Info().Int("transcript_len", len(transcript)).Msg("analyze_transcript called")

	report, err := s.analyzer.Analyze(ctx, title, transcript, nil)
	if errors.Is(err, ErrEmptyTranscript) {
		return mcp.NewToolResultError("transcript is empty"), nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("analyze_transcript failed")
		return mcp.NewToolResultErrorFromErr("analysis failed", err), nil
	}

	return mcp.NewToolResultText(report.Markdown()), nil
}

// stageHandler adapts a single stage to an MCP tool handler taking a "text" argument
func (s *MCPServer) stageHandler(stage string, run func(context.Context, string) string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError("text parameter is required and must be a string"), nil
		}
		if strings.TrimSpace(text) == "" {
			return mcp.NewToolResultError("text is empty"), nil
		}

		s.logger.Debug().Str("stage", stage).Int("text_len", len(text)).Msg("tool called")
		return mcp.NewToolResultText(run(ctx, text)), nil
	}
}

// Start starts the MCP server using the specified transport ("stdio" or "http")
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Info().Str("addr", addr).Msg("serving MCP over streamable HTTP")
		return httpServer.Start(addr)
	}

	s.logger.Info().Msg("serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}

// GetServer returns the underlying MCP server for advanced configuration
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.mcpServer
}
