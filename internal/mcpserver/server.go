// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Pulse tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/pulse/internal/feed"
	"github.com/starford/pulse/internal/state"
	"github.com/starford/pulse/internal/tasks"
)

// Server wraps the MCP server with Pulse tools.
type Server struct {
	mcp   *server.MCPServer
	store *state.Store
}

// New creates a new MCP server with all Pulse tools registered.
func New(store *state.Store) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"Pulse",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List all newsletter posts with their ids, titles, and categories."),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read the full record of a newsletter post, including comments."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Numeric post id")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Search newsletter posts by title (case-insensitive substring)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks. Filter is one of all, active, completed."),
		mcp.WithString("filter", mcp.Description("Optional status filter (default all)")),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task to the shared task list."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("description", mcp.Description("Optional task description")),
	), s.addTask)

	s.mcp.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task as completed (toggles an already-completed task back to active)."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Numeric task id")),
	), s.completeTask)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := s.store.Snapshot().Newsletters
	lines := make([]string, 0, len(list))
	for _, n := range list {
		lines = append(lines, fmt.Sprintf("#%d [%s] %s - by %s, %d comments", n.ID, n.Category, n.Title, n.Author, n.Comments))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no posts"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireFloat("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, found := feed.FindByID(s.store.Snapshot().Newsletters, int64(id))
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("post not found: %d", int64(id))), nil
	}
	out, _ := json.MarshalIndent(n, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results := feed.Filter(s.store.Snapshot().Newsletters, query)
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	lines := make([]string, 0, len(results))
	for _, n := range results {
		lines = append(lines, fmt.Sprintf("#%d %s", n.ID, n.Title))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := tasks.FilterAll
	if f, err := req.RequireString("filter"); err == nil && f != "" {
		filter = f
	}
	list := tasks.List(s.store.Snapshot().Tasks, filter)
	if len(list) == 0 {
		return mcp.NewToolResultText("no tasks"), nil
	}
	lines := make([]string, 0, len(list))
	for _, task := range list {
		mark := " "
		if task.Completed {
			mark = "x"
		}
		lines = append(lines, fmt.Sprintf("[%s] #%d %s", mark, task.ID, task.Title))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) addTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description := ""
	if d, dErr := req.RequireString("description"); dErr == nil {
		description = d
	}
	created, err := s.store.AddTask(title, description)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: #%d %s", created.ID, created.Title)), nil
}

func (s *Server) completeTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireFloat("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.store.ToggleTask(int64(id))
	task, found := tasks.FindByID(s.store.Snapshot().Tasks, int64(id))
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("task not found: %d", int64(id))), nil
	}
	status := "active"
	if task.Completed {
		status = "completed"
	}
	return mcp.NewToolResultText(fmt.Sprintf("#%d %s is now %s", task.ID, task.Title, status)), nil
}
