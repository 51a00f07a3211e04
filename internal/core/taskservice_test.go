package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/valter-silva-au/taskdash/internal/storage"
	"github.com/valter-silva-au/taskdash/pkg/models"
)

type recordedEvent struct {
	eventType string
	data      map[string]any
}

// fakeEventLogger records every event; err, when set, is returned instead.
type fakeEventLogger struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (f *fakeEventLogger) LogEvent(eventType string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, recordedEvent{eventType: eventType, data: data})
	return nil
}

func (f *fakeEventLogger) types() []string {
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.eventType
	}
	return out
}

type counterIDs struct{ n int }

func (c *counterIDs) GenerateID() string {
	c.n++
	return fmt.Sprintf("new-%d", c.n)
}

func newTestService(t *testing.T) (TaskService, *fakeEventLogger) {
	t.Helper()
	store := storage.NewMemoryTaskStore(storage.MemoryStoreOptions{
		Clock: fixedClock,
		IDGen: &counterIDs{},
		Tasks: sampleTasks(),
	})
	events := &fakeEventLogger{}
	return NewTaskService(store, fixedClock, events, zerolog.Nop()), events
}

func TestTaskService_AddTask(t *testing.T) {
	svc, events := newTestService(t)

	task, err := svc.AddTask(models.TaskDraft{
		Title:   "Write release notes",
		DueDate: refNow.Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if task.ID != "new-1" || task.Status != models.StatusPending {
		t.Fatalf("unexpected task: %+v", task)
	}
	if !task.CreatedAt.Equal(refNow) {
		t.Errorf("CreatedAt = %v, want %v", task.CreatedAt, refNow)
	}

	if got := svc.Stats(); got.Total != 5 || got.Pending != 3 {
		t.Errorf("stats after add = %+v", got)
	}
	if !equalIDs(events.types(), []string{"task.created"}) {
		t.Fatalf("events = %v", events.types())
	}
	if events.events[0].data["task_id"] != "new-1" {
		t.Errorf("event data = %v", events.events[0].data)
	}
}

func TestTaskService_AddInvalidEmitsNothing(t *testing.T) {
	svc, events := newTestService(t)

	_, err := svc.AddTask(models.TaskDraft{Title: "   "})
	if !errors.Is(err, models.ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask, got %v", err)
	}
	if len(events.events) != 0 {
		t.Fatalf("expected no events, got %v", events.types())
	}
	if got := len(svc.ListTasks()); got != 4 {
		t.Fatalf("expected 4 tasks, got %d", got)
	}
}

func TestTaskService_CompleteTask(t *testing.T) {
	svc, events := newTestService(t)

	task, err := svc.CompleteTask("3")
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if task.Status != models.StatusCompleted {
		t.Fatalf("status = %s", task.Status)
	}
	if !equalIDs(events.types(), []string{"task.updated", "task.completed"}) {
		t.Fatalf("events = %v", events.types())
	}

	stats := svc.Stats()
	want := models.TaskStats{Total: 4, Completed: 3, Pending: 1, Overdue: 0, Progress: 75}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestTaskService_CompleteAlreadyCompletedSkipsCompletionEvent(t *testing.T) {
	svc, events := newTestService(t)

	if _, err := svc.CompleteTask("2"); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if !equalIDs(events.types(), []string{"task.updated"}) {
		t.Fatalf("events = %v", events.types())
	}
}

func TestTaskService_ConcurrentCompleteEmitsOneCompletion(t *testing.T) {
	svc, events := newTestService(t)

	const workers = 16
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CompleteTask("3"); err != nil {
				t.Errorf("CompleteTask: %v", err)
			}
		}()
	}
	wg.Wait()

	completed := 0
	for _, typ := range events.types() {
		if typ == "task.completed" {
			completed++
		}
	}
	if completed != 1 {
		t.Fatalf("task.completed emitted %d times, want 1 (events = %v)", completed, events.types())
	}
	if got := len(events.types()); got != workers+1 {
		t.Fatalf("got %d events, want %d", got, workers+1)
	}
}

func TestTaskService_UpdateNotFound(t *testing.T) {
	svc, events := newTestService(t)
	before := svc.ListTasks()

	title := "renamed"
	_, err := svc.UpdateTask("999", models.TaskPatch{Title: &title})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !equalIDs(ids(svc.ListTasks()), ids(before)) {
		t.Fatalf("store changed after failed update")
	}
	if len(events.events) != 0 {
		t.Fatalf("expected no events, got %v", events.types())
	}
}

func TestTaskService_UpdateFields(t *testing.T) {
	svc, events := newTestService(t)

	title := "Client presentation v2"
	due := refNow.Add(72 * time.Hour)
	task, err := svc.UpdateTask("3", models.TaskPatch{Title: &title, DueDate: &due})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.Title != title || !task.DueDate.Equal(due) {
		t.Fatalf("patch not applied: %+v", task)
	}
	if task.ID != "3" || !task.CreatedAt.Equal(sampleTasks()[2].CreatedAt) {
		t.Fatalf("identity fields changed: %+v", task)
	}
	if got := svc.Stats().Overdue; got != 0 {
		t.Errorf("expected no overdue after moving the due date, got %d", got)
	}

	fields, ok := events.events[0].data["fields"].([]string)
	if !ok || !equalIDs(fields, []string{"title", "due_date"}) {
		t.Errorf("fields = %v", events.events[0].data["fields"])
	}
}

func TestTaskService_EmptyPatchEmitsNothing(t *testing.T) {
	svc, events := newTestService(t)

	if _, err := svc.UpdateTask("1", models.TaskPatch{}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if len(events.events) != 0 {
		t.Fatalf("expected no events, got %v", events.types())
	}
}

func TestTaskService_DeleteTask(t *testing.T) {
	svc, events := newTestService(t)

	if err := svc.DeleteTask("1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := svc.DeleteTask("1"); err != nil {
		t.Fatalf("second DeleteTask: %v", err)
	}
	if got := ids(svc.ListTasks()); !equalIDs(got, []string{"2", "3", "4"}) {
		t.Fatalf("tasks = %v", got)
	}
	if !equalIDs(events.types(), []string{"task.deleted"}) {
		t.Fatalf("events = %v", events.types())
	}
}

func TestTaskService_QueryUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.QueryTasks(models.Category("someday"), ""); !errors.Is(err, models.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestTaskService_EventFailureDoesNotFailOperation(t *testing.T) {
	store := storage.NewMemoryTaskStore(storage.MemoryStoreOptions{Clock: fixedClock, Tasks: sampleTasks()})
	events := &fakeEventLogger{err: errors.New("disk full")}
	svc := NewTaskService(store, fixedClock, events, zerolog.Nop())

	if _, err := svc.AddTask(models.TaskDraft{Title: "still works"}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := svc.DeleteTask("1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if got := len(svc.ListTasks()); got != 4 {
		t.Fatalf("expected 4 tasks, got %d", got)
	}
}

func TestTaskService_NilEventLogger(t *testing.T) {
	store := storage.NewMemoryTaskStore(storage.MemoryStoreOptions{Clock: fixedClock})
	svc := NewTaskService(store, fixedClock, nil, zerolog.Nop())

	if _, err := svc.AddTask(models.TaskDraft{Title: "no log"}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
}
