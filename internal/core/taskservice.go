package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/valter-silva-au/taskdash/pkg/models"
)

// TaskStore is the subset of storage.TaskStore that TaskService needs.
// Defining it here keeps core independent of the storage package.
type TaskStore interface {
	TaskReader
	Insert(draft models.TaskDraft) (models.Task, error)
	Merge(taskID string, patch models.TaskPatch) (models.Task, error)
	Remove(taskID string) bool
}

// TaskService defines the task operations offered to the CLI, dashboard and
// MCP surfaces.
type TaskService interface {
	ListTasks() []models.Task
	QueryTasks(category models.Category, searchText string) ([]models.Task, error)
	Stats() models.TaskStats
	AddTask(draft models.TaskDraft) (models.Task, error)
	UpdateTask(taskID string, patch models.TaskPatch) (models.Task, error)
	CompleteTask(taskID string) (models.Task, error)
	DeleteTask(taskID string) error
}

// taskService implements TaskService by coordinating the store, the query
// engine and the activity event log. mu serializes updates so the
// read-then-merge in UpdateTask sees a consistent previous state.
type taskService struct {
	mu     sync.Mutex
	store  TaskStore
	engine *QueryEngine
	events EventLogger
	log    zerolog.Logger
}

// NewTaskService creates a TaskService. events may be nil when the activity
// log is disabled.
func NewTaskService(store TaskStore, now Clock, events EventLogger, logger zerolog.Logger) TaskService {
	return &taskService{
		store:  store,
		engine: NewQueryEngine(store, now),
		events: events,
		log:    logger.With().Str("component", "tasks").Logger(),
	}
}

func (s *taskService) ListTasks() []models.Task {
	return s.store.List()
}

func (s *taskService) QueryTasks(category models.Category, searchText string) ([]models.Task, error) {
	tasks, err := s.engine.Query(category, searchText)
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("category", string(category)).
		Str("search", searchText).
		Int("matches", len(tasks)).
		Msg("query")
	return tasks, nil
}

func (s *taskService) Stats() models.TaskStats {
	return s.engine.Stats()
}

// AddTask inserts a new task and records a task.created event.
func (s *taskService) AddTask(draft models.TaskDraft) (models.Task, error) {
	task, err := s.store.Insert(draft)
	if err != nil {
		return models.Task{}, err
	}

	s.log.Info().Str("task_id", task.ID).Str("title", task.Title).Msg("task created")
	s.logEvent("task.created", map[string]any{
		"task_id": task.ID,
		"title":   task.Title,
		"status":  string(task.Status),
		"due":     task.DueDate.Format(time.RFC3339),
	})
	return task, nil
}

// UpdateTask merges patch into the stored task. A transition from pending to
// completed is additionally recorded as task.completed.
func (s *taskService) UpdateTask(taskID string, patch models.TaskPatch) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, found := s.find(taskID)

	task, err := s.store.Merge(taskID, patch)
	if err != nil {
		s.log.Debug().Err(err).Str("task_id", taskID).Msg("update rejected")
		return models.Task{}, err
	}
	if patch.IsEmpty() {
		return task, nil
	}

	s.log.Info().Str("task_id", task.ID).Strs("fields", patchFields(patch)).Msg("task updated")
	s.logEvent("task.updated", map[string]any{
		"task_id": task.ID,
		"fields":  patchFields(patch),
		"status":  string(task.Status),
	})

	if found && prev.Status != models.StatusCompleted && task.Status == models.StatusCompleted {
		s.logEvent("task.completed", map[string]any{"task_id": task.ID, "title": task.Title})
	}
	return task, nil
}

// CompleteTask marks the task completed.
func (s *taskService) CompleteTask(taskID string) (models.Task, error) {
	status := models.StatusCompleted
	return s.UpdateTask(taskID, models.TaskPatch{Status: &status})
}

// DeleteTask removes the task. Deleting an unknown identifier succeeds.
func (s *taskService) DeleteTask(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.Remove(taskID) {
		s.log.Debug().Str("task_id", taskID).Msg("delete of unknown task ignored")
		return nil
	}

	s.log.Info().Str("task_id", taskID).Msg("task deleted")
	s.logEvent("task.deleted", map[string]any{"task_id": taskID})
	return nil
}

func (s *taskService) find(taskID string) (models.Task, bool) {
	for _, t := range s.store.List() {
		if t.ID == taskID {
			return t, true
		}
	}
	return models.Task{}, false
}

// logEvent writes to the activity log if one is configured. Failures are
// logged and otherwise ignored.
func (s *taskService) logEvent(eventType string, data map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.LogEvent(eventType, data); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("failed to write activity event")
	}
}

func patchFields(p models.TaskPatch) []string {
	var fields []string
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.DueDate != nil {
		fields = append(fields, "due_date")
	}
	return fields
}
