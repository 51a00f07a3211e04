package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/valter-silva-au/taskdash/pkg/models"
)

// maxIDAttempts bounds how often Insert retries an identifier that is already
// taken before giving up.
const maxIDAttempts = 8

// IDGenerator produces opaque task identifiers.
type IDGenerator interface {
	GenerateID() string
}

type uuidGenerator struct{}

func (uuidGenerator) GenerateID() string { return uuid.NewString() }

// NewUUIDGenerator returns the default IDGenerator, backed by random UUIDs.
func NewUUIDGenerator() IDGenerator { return uuidGenerator{} }

// TaskStore defines the interface for the authoritative task collection.
type TaskStore interface {
	List() []models.Task
	Insert(draft models.TaskDraft) (models.Task, error)
	Merge(taskID string, patch models.TaskPatch) (models.Task, error)
	Remove(taskID string) bool
}

// MemoryStoreOptions configures NewMemoryTaskStore. Zero values select the
// wall clock, UUID identifiers and an empty collection.
type MemoryStoreOptions struct {
	Clock func() time.Time
	IDGen IDGenerator
	Tasks []models.Task
}

// memoryTaskStore keeps tasks in insertion order for the life of the process.
type memoryTaskStore struct {
	mu    sync.RWMutex
	tasks []models.Task
	now   func() time.Time
	idGen IDGenerator
}

// NewMemoryTaskStore creates an in-memory TaskStore. The initial tasks are
// copied; later changes to opts.Tasks do not affect the store.
func NewMemoryTaskStore(opts MemoryStoreOptions) TaskStore {
	s := &memoryTaskStore{
		tasks: make([]models.Task, len(opts.Tasks)),
		now:   opts.Clock,
		idGen: opts.IDGen,
	}
	copy(s.tasks, opts.Tasks)
	if s.now == nil {
		s.now = time.Now
	}
	if s.idGen == nil {
		s.idGen = NewUUIDGenerator()
	}
	return s
}

// List returns a snapshot of every task in insertion order.
func (s *memoryTaskStore) List() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Insert validates the draft, assigns a fresh identifier and creation time,
// and appends the new task.
func (s *memoryTaskStore) Insert(draft models.TaskDraft) (models.Task, error) {
	if err := draft.Validate(); err != nil {
		return models.Task{}, fmt.Errorf("inserting task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.freshID()
	if err != nil {
		return models.Task{}, fmt.Errorf("inserting task: %w", err)
	}

	status := draft.Status
	if status == "" {
		status = models.StatusPending
	}

	task := models.Task{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Status:      status,
		CreatedAt:   s.now().UTC(),
		DueDate:     draft.DueDate,
	}
	s.tasks = append(s.tasks, task)
	return task, nil
}

// Merge applies patch to the task with the given identifier and stores the
// result in place. Returns models.ErrNotFound if no such task exists.
func (s *memoryTaskStore) Merge(taskID string, patch models.TaskPatch) (models.Task, error) {
	if err := patch.Validate(); err != nil {
		return models.Task{}, fmt.Errorf("updating task %s: %w", taskID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(taskID)
	if idx < 0 {
		return models.Task{}, fmt.Errorf("updating task %s: %w", taskID, models.ErrNotFound)
	}

	updated := patch.Apply(s.tasks[idx])
	s.tasks[idx] = updated
	return updated, nil
}

// Remove deletes the task with the given identifier. Removing an unknown
// identifier is a no-op; the return value reports whether anything was removed.
func (s *memoryTaskStore) Remove(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(taskID)
	if idx < 0 {
		return false
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	return true
}

// indexOf must be called with s.mu held.
func (s *memoryTaskStore) indexOf(taskID string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// freshID must be called with s.mu held.
func (s *memoryTaskStore) freshID() (string, error) {
	for range maxIDAttempts {
		id := s.idGen.GenerateID()
		if id != "" && s.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("generating task id: %d attempts collided with existing ids", maxIDAttempts)
}
