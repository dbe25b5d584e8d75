package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aldaque/storyloom"
	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// Server wraps a storyloom Session and exposes it as an MCP Server, so
// agent hosts can drive stories as tools.
type Server struct {
	session   *storyloom.Session
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(session *storyloom.Session) *Server {
	s := &Server{
		session:   session,
		mcpServer: server.NewMCPServer("storyloom-mcp", storyloom.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: execute_story_batch
	executeTool := mcp.NewTool("execute_story_batch",
		mcp.WithDescription("Execute a batch of story commands atomically. Commands apply in order; the batch stops at the first failure without rolling back earlier commands."),
		mcp.WithString("story", mcp.Required(), mcp.Description("Target story name")),
		mcp.WithString("commands", mcp.Required(), mcp.Description("JSON array of story commands")),
		mcp.WithObject("options", mcp.Description("Creation options, applied only if this batch creates the story")),
		mcp.WithOutputSchema[domain.ExecuteResult](),
	)
	s.mcpServer.AddTool(executeTool, mcp.NewStructuredToolHandler(s.handleExecuteBatch))

	// TOOL: list_stories
	s.mcpServer.AddTool(mcp.NewTool("list_stories",
		mcp.WithDescription("List all story names known to the session."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stories, err := s.session.GetStories(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(stories)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: delete_story
	deleteTool := mcp.NewTool("delete_story",
		mcp.WithDescription("Delete a story and all its durable state. Succeeds even if the story does not exist."),
		mcp.WithString("story", mcp.Required(), mcp.Description("Story name to delete")),
	)
	s.mcpServer.AddTool(deleteTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		story := request.GetString("story", "")
		if err := s.session.DeleteStory(ctx, story); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
		}
		return mcp.NewToolResultText("deleted"), nil
	})
}

// handleExecuteBatch drives one enqueue/execute cycle from tool arguments.
func (s *Server) handleExecuteBatch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.ExecuteResult, error) {
	story, _ := args["story"].(string)

	commandsJSON, _ := args["commands"].(string)
	var commands []domain.Command
	if err := json.Unmarshal([]byte(commandsJSON), &commands); err != nil {
		return domain.ExecuteResult{}, fmt.Errorf("commands must be a JSON array of story commands: %w", err)
	}

	ctrl, err := s.session.ControlStory(story)
	if err != nil {
		return domain.ExecuteResult{}, fmt.Errorf("control denied: %w", err)
	}

	if raw, ok := args["options"].(map[string]interface{}); ok {
		var options domain.StoryOptions
		if err := mapstructure.Decode(raw, &options); err != nil {
			return domain.ExecuteResult{}, fmt.Errorf("invalid options: %w", err)
		}
		ctrl.SetCreateOptions(options)
	}

	ctrl.Enqueue(commands...)
	return ctrl.Execute(ctx), nil
}

func (s *Server) registerResources() {
	// EXPOSE: storyloom://stories
	s.mcpServer.AddResource(mcp.NewResource("storyloom://stories", "Current Stories",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		stories, err := s.session.GetStories(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list stories: %w", err)
		}
		jsonBytes, _ := json.Marshal(stories)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "storyloom://stories",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
