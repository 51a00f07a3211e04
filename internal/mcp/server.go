// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the task dashboard as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/taskdash/internal/integration"
	"github.com/valter-silva-au/taskdash/internal/observability"
	"github.com/valter-silva-au/taskdash/pkg/models"
)

// Server wraps the task backend and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	backend     integration.TaskBackend
	metricsCalc observability.MetricsCalculator
	now         func() time.Time
}

// NewServer creates a new MCP server. metricsCalc may be nil if the activity
// log is disabled.
func NewServer(backend integration.TaskBackend, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		backend:     backend,
		metricsCalc: metricsCalc,
		now:         time.Now,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "tdash", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves MCP over stdio, blocking until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskOutput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Overdue     bool   `json:"overdue"`
	CreatedAt   string `json:"created_at"`
	DueDate     string `json:"due_date"`
}

type listTasksInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"category filter: all, pending, completed or overdue. Defaults to all."`
	Search string `json:"search,omitempty" jsonschema:"case-insensitive text matched against title and description"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type taskStatsInput struct{}

type addTaskInput struct {
	Title       string `json:"title" jsonschema:"required,the task title"`
	Description string `json:"description,omitempty" jsonschema:"longer description of the task"`
	DueDate     string `json:"due_date" jsonschema:"required,due date as YYYY-MM-DD or RFC3339"`
	Status      string `json:"status,omitempty" jsonschema:"pending or completed. Defaults to pending."`
}

type updateTaskInput struct {
	TaskID      string  `json:"task_id" jsonschema:"required,the task identifier"`
	Title       *string `json:"title,omitempty" jsonschema:"new title"`
	Description *string `json:"description,omitempty" jsonschema:"new description"`
	DueDate     *string `json:"due_date,omitempty" jsonschema:"new due date as YYYY-MM-DD or RFC3339"`
	Status      *string `json:"status,omitempty" jsonschema:"new status: pending or completed"`
}

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the task identifier"`
}

type messageOutput struct {
	Message string `json:"message"`
}

type getActivityInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window (e.g. 7d, 24h, 30m). Defaults to 7d."`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of recent events to return. Defaults to 20."`
}

type activityEvent struct {
	Time    string `json:"time"`
	Type    string `json:"type"`
	Message string `json:"msg"`
	TaskID  string `json:"task_id,omitempty"`
}

type activityOutput struct {
	TasksCreated   int             `json:"tasks_created"`
	TasksUpdated   int             `json:"tasks_updated"`
	TasksCompleted int             `json:"tasks_completed"`
	TasksDeleted   int             `json:"tasks_deleted"`
	EventCount     int             `json:"event_count"`
	OldestEvent    string          `json:"oldest_event,omitempty"`
	NewestEvent    string          `json:"newest_event,omitempty"`
	Recent         []activityEvent `json:"recent"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks matching an optional category filter and search text. Overdue tasks are reported with overdue=true.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "task_stats",
		Description: "Get store-wide task statistics: total, completed, pending, overdue and completion progress in percent.",
	}, s.handleTaskStats)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task",
		Description: "Create a new task. The identifier and creation time are assigned by the store.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_task",
		Description: "Update a task's title, description, due date or status. Omitted fields are left unchanged.",
	}, s.handleUpdateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_task",
		Description: "Mark a task as completed.",
	}, s.handleCompleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task permanently. Deleting an unknown identifier succeeds.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_activity",
		Description: "Get activity counters and the most recent events from the task event log.",
	}, s.handleGetActivity)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(ctx context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	category, err := models.ParseCategory(input.Filter)
	if err != nil {
		return errorResult(err.Error()), listTasksOutput{}, nil
	}

	tasks, err := s.backend.QueryTasks(ctx, category, input.Search)
	if err != nil {
		return errorResult(integration.FailureMessage("load tasks", err)), listTasksOutput{}, nil
	}

	now := s.now()
	out := listTasksOutput{
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(t, now)
	}
	return nil, out, nil
}

func (s *Server) handleTaskStats(ctx context.Context, _ *gomcp.CallToolRequest, _ taskStatsInput) (*gomcp.CallToolResult, models.TaskStats, error) {
	stats, err := s.backend.Stats(ctx)
	if err != nil {
		return errorResult(integration.FailureMessage("load statistics", err)), models.TaskStats{}, nil
	}
	return nil, stats, nil
}

func (s *Server) handleAddTask(ctx context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.Title == "" {
		return errorResult("title is required"), taskOutput{}, nil
	}
	due, err := models.ParseDueDate(input.DueDate)
	if err != nil {
		return errorResult(err.Error()), taskOutput{}, nil
	}

	task, err := s.backend.AddTask(ctx, models.TaskDraft{
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TaskStatus(input.Status),
		DueDate:     due,
	})
	if err != nil {
		return errorResult(integration.FailureMessage("add task", err)), taskOutput{}, nil
	}
	return nil, taskToOutput(task, s.now()), nil
}

func (s *Server) handleUpdateTask(ctx context.Context, _ *gomcp.CallToolRequest, input updateTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}

	patch := models.TaskPatch{
		Title:       input.Title,
		Description: input.Description,
	}
	if input.Status != nil {
		status := models.TaskStatus(*input.Status)
		patch.Status = &status
	}
	if input.DueDate != nil {
		due, err := models.ParseDueDate(*input.DueDate)
		if err != nil {
			return errorResult(err.Error()), taskOutput{}, nil
		}
		patch.DueDate = &due
	}

	task, err := s.backend.UpdateTask(ctx, input.TaskID, patch)
	if err != nil {
		return errorResult(integration.FailureMessage("update task", err)), taskOutput{}, nil
	}
	return nil, taskToOutput(task, s.now()), nil
}

func (s *Server) handleCompleteTask(ctx context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}

	task, err := s.backend.CompleteTask(ctx, input.TaskID)
	if err != nil {
		return errorResult(integration.FailureMessage("complete task", err)), taskOutput{}, nil
	}
	return nil, taskToOutput(task, s.now()), nil
}

func (s *Server) handleDeleteTask(ctx context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, messageOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), messageOutput{}, nil
	}

	if err := s.backend.DeleteTask(ctx, input.TaskID); err != nil {
		return errorResult(integration.FailureMessage("delete task", err)), messageOutput{}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("task %s deleted", input.TaskID)}, nil
}

func (s *Server) handleGetActivity(_ context.Context, _ *gomcp.CallToolRequest, input getActivityInput) (*gomcp.CallToolResult, activityOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("activity log not available (events may be disabled)"), activityOutput{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}
	window, err := observability.ParseWindow(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), activityOutput{}, nil
	}
	since := s.now().UTC().Add(-window)

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	metrics, err := s.metricsCalc.Calculate(since)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating activity: %s", err)), activityOutput{}, nil
	}
	recent, err := s.metricsCalc.Recent(since, limit)
	if err != nil {
		return errorResult(fmt.Sprintf("reading recent activity: %s", err)), activityOutput{}, nil
	}

	out := activityOutput{
		TasksCreated:   metrics.TasksCreated,
		TasksUpdated:   metrics.TasksUpdated,
		TasksCompleted: metrics.TasksCompleted,
		TasksDeleted:   metrics.TasksDeleted,
		EventCount:     metrics.EventCount,
		Recent:         make([]activityEvent, len(recent)),
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}
	for i, e := range recent {
		out.Recent[i] = activityEvent{
			Time:    e.Time.Format(time.RFC3339),
			Type:    e.Type,
			Message: e.Message,
			TaskID:  e.TaskID(),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

func taskToOutput(t models.Task, now time.Time) taskOutput {
	return taskOutput{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Overdue:     t.IsOverdue(now),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		DueDate:     t.DueDate.Format(time.RFC3339),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
