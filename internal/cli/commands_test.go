package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/taskdash/internal/integration"
	"github.com/valter-silva-au/taskdash/internal/storage"
	"github.com/valter-silva-au/taskdash/pkg/models"
)

func TestListCmd_Table(t *testing.T) {
	installFixtureBackend(t)

	out, err := runCommand(t, listCmd)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Complete project proposal", "Client presentation", "OVERDUE", "COMPLETED", "PENDING"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestListCmd_FilterAndSearch(t *testing.T) {
	installFixtureBackend(t)
	setFlag(t, listCmd, "filter", "pending")
	setFlag(t, listCmd, "search", "PROPOSAL")
	setFlag(t, listCmd, "json", "true")

	out, err := runCommand(t, listCmd)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var tasks []models.Task
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatalf("decoding JSON: %v\n%s", err, out)
	}
	if len(tasks) != 1 || tasks[0].ID != "1" {
		t.Errorf("got %v, want task 1 only", taskIDs(tasks))
	}
}

func TestListCmd_EmptyResult(t *testing.T) {
	installFixtureBackend(t)
	setFlag(t, listCmd, "search", "no such task")

	out, err := runCommand(t, listCmd)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No tasks found. Create a new task to get started!") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestListCmd_InvalidFilter(t *testing.T) {
	installFixtureBackend(t)
	setFlag(t, listCmd, "filter", "archived")

	_, err := runCommand(t, listCmd)
	if err == nil || !strings.Contains(err.Error(), "--filter") {
		t.Fatalf("expected --filter error, got %v", err)
	}
}

func TestListCmd_TransportFailure(t *testing.T) {
	orig := Backend
	Backend = failingBackend{}
	defer func() { Backend = orig }()

	_, err := runCommand(t, listCmd)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Failed to load tasks. Please try again." {
		t.Errorf("message = %q", err.Error())
	}
	if !errors.Is(err, integration.ErrTransport) || !errors.Is(err, errDown) {
		t.Error("expected the cause to stay in the chain")
	}
}

func TestStatsCmd(t *testing.T) {
	installFixtureBackend(t)

	out, err := runCommand(t, statsCmd)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"Total Tasks:", "Overdue:", "Overall Progress (50%)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStatsCmd_JSON(t *testing.T) {
	installFixtureBackend(t)
	setFlag(t, statsCmd, "json", "true")

	out, err := runCommand(t, statsCmd)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats models.TaskStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decoding JSON: %v", err)
	}
	want := models.TaskStats{Total: 4, Completed: 2, Pending: 2, Overdue: 1, Progress: 50}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestTextProgressBar(t *testing.T) {
	tests := []struct {
		percent    int
		wantFilled int
	}{
		{0, 0},
		{50, 10},
		{100, 20},
		{150, 20},
		{-5, 0},
	}
	for _, tt := range tests {
		bar := textProgressBar(tt.percent, 20)
		if got := strings.Count(bar, "█"); got != tt.wantFilled {
			t.Errorf("textProgressBar(%d) filled = %d, want %d", tt.percent, got, tt.wantFilled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 20 {
			t.Errorf("textProgressBar(%d) width = %d, want 20", tt.percent, got)
		}
	}
}

func TestAddCmd(t *testing.T) {
	backend := installFixtureBackend(t)
	setFlag(t, addCmd, "title", "Prepare Q3 report")
	setFlag(t, addCmd, "description", "Numbers and charts")
	setFlag(t, addCmd, "due", "2030-09-30")

	out, err := runCommand(t, addCmd)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	tasks := mustTasks(t, backend)
	if len(tasks) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(tasks))
	}
	added := tasks[4]
	if added.Title != "Prepare Q3 report" || added.Status != models.StatusPending {
		t.Errorf("added task = %+v", added)
	}
	if !strings.Contains(out, "Created task "+added.ID) || !strings.Contains(out, "Due: Sep 30, 2030") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestAddCmd_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		flags   map[string]string
		wantErr string
	}{
		{"bad due date", map[string]string{"title": "x", "due": "next week"}, "--due"},
		{"blank title", map[string]string{"title": "   ", "due": "2030-01-01"}, "title"},
		{"bad status", map[string]string{"title": "x", "due": "2030-01-01", "status": "done"}, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := installFixtureBackend(t)
			for name, value := range tt.flags {
				setFlag(t, addCmd, name, value)
			}

			_, err := runCommand(t, addCmd)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
			if len(mustTasks(t, backend)) != 4 {
				t.Error("store should be unchanged")
			}
		})
	}
}

func TestUpdateCmd(t *testing.T) {
	backend := installFixtureBackend(t)
	setFlag(t, updateCmd, "title", "Client presentation (moved)")
	setFlag(t, updateCmd, "due", "2030-07-20")

	out, err := runCommand(t, updateCmd, "3")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(out, "Updated task 3") {
		t.Errorf("unexpected output:\n%s", out)
	}

	task := mustTasks(t, backend)[2]
	if task.Title != "Client presentation (moved)" {
		t.Errorf("title = %q", task.Title)
	}
	if task.Description == "" {
		t.Error("unchanged description was cleared")
	}
	if task.IsOverdue(task.CreatedAt) {
		t.Error("task should no longer be overdue")
	}
}

func TestUpdateCmd_NothingToUpdate(t *testing.T) {
	installFixtureBackend(t)

	_, err := runCommand(t, updateCmd, "1")
	if err == nil || !strings.Contains(err.Error(), "nothing to update") {
		t.Fatalf("expected nothing-to-update error, got %v", err)
	}
}

func TestUpdateCmd_NotFound(t *testing.T) {
	installFixtureBackend(t)
	setFlag(t, updateCmd, "title", "x")

	_, err := runCommand(t, updateCmd, "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound in chain, got %v", err)
	}
	if !strings.Contains(err.Error(), "task not found") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestCompleteCmd(t *testing.T) {
	backend := installFixtureBackend(t)

	out, err := runCommand(t, completeCmd, "3")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !strings.Contains(out, "Completed task 3: Client presentation") {
		t.Errorf("unexpected output: %q", out)
	}
	if mustTasks(t, backend)[2].Status != models.StatusCompleted {
		t.Error("task 3 not completed")
	}
}

func TestDeleteCmd(t *testing.T) {
	backend := installFixtureBackend(t)

	if _, err := runCommand(t, deleteCmd, "2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := strings.Join(taskIDs(mustTasks(t, backend)), ","); got != "1,3,4" {
		t.Errorf("store = %s, want 1,3,4", got)
	}

	// Deleting again is not an error.
	if _, err := runCommand(t, deleteCmd, "2"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestExportCmd(t *testing.T) {
	installFixtureBackend(t)
	path := filepath.Join(t.TempDir(), "out", "tasks.yaml")

	out, err := runCommand(t, exportCmd, path)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "Exported 4 task(s)") {
		t.Errorf("unexpected output: %q", out)
	}

	tasks, err := storage.LoadSeedFile(path)
	if err != nil {
		t.Fatalf("loading exported file: %v", err)
	}
	if got := strings.Join(taskIDs(tasks), ","); got != "1,2,3,4" {
		t.Errorf("exported = %s, want 1,2,3,4", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

func TestActivityCmd(t *testing.T) {
	installFixtureBackend(t)
	if _, err := runCommand(t, completeCmd, "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCommand(t, deleteCmd, "4"); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, activityCmd)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	for _, want := range []string{"Events recorded:", "Tasks completed:", "task.completed", "task.deleted"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestActivityCmd_JSON(t *testing.T) {
	installFixtureBackend(t)
	if _, err := runCommand(t, completeCmd, "1"); err != nil {
		t.Fatal(err)
	}
	setFlag(t, activityCmd, "json", "true")

	out, err := runCommand(t, activityCmd)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	var got struct {
		TasksCompleted int `json:"tasks_completed"`
		Recent         []struct {
			Type string `json:"type"`
		} `json:"recent"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding JSON: %v\n%s", err, out)
	}
	if got.TasksCompleted != 1 {
		t.Errorf("tasks_completed = %d, want 1", got.TasksCompleted)
	}
	// Completing a task writes task.updated then task.completed; recent is newest first.
	if len(got.Recent) != 2 || got.Recent[0].Type != "task.completed" || got.Recent[1].Type != "task.updated" {
		t.Errorf("unexpected recent events: %+v", got.Recent)
	}
}

func TestActivityCmd_Disabled(t *testing.T) {
	orig := MetricsCalc
	MetricsCalc = nil
	defer func() { MetricsCalc = orig }()

	_, err := runCommand(t, activityCmd)
	if err == nil || !strings.Contains(err.Error(), "not available") {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestActivityCmd_BadWindow(t *testing.T) {
	installFixtureBackend(t)
	setFlag(t, activityCmd, "since", "-3d")

	_, err := runCommand(t, activityCmd)
	if err == nil || !strings.Contains(err.Error(), "--since") {
		t.Fatalf("expected --since error, got %v", err)
	}
}
