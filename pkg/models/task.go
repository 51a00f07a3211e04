package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the stored lifecycle state of a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

// Valid reports whether s is one of the enumerated statuses.
func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

var (
	// ErrNotFound is returned when no task has the requested identifier.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidTask is returned when a draft or patch violates the task invariants.
	ErrInvalidTask = errors.New("invalid task")
	// ErrUnknownCategory is returned for a filter category outside the enumeration.
	ErrUnknownCategory = errors.New("unknown filter category")
)

// Task represents a unit of work shown on the dashboard.
// Overdue is never stored; use IsOverdue.
type Task struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Status      TaskStatus `yaml:"status" json:"status"`
	CreatedAt   time.Time  `yaml:"created_at" json:"created_at"`
	DueDate     time.Time  `yaml:"due_date" json:"due_date"`
}

// IsOverdue reports whether the task is pending and its due date is strictly
// before now. This is the only overdue predicate; filtering and stats both
// call it.
func (t Task) IsOverdue(now time.Time) bool {
	return t.Status == StatusPending && t.DueDate.Before(now)
}

// TaskDraft holds the caller-supplied fields of a new task. The store assigns
// the identifier and creation time.
type TaskDraft struct {
	Title       string
	Description string
	Status      TaskStatus // empty means pending
	DueDate     time.Time
}

// Validate checks the draft against the task invariants.
func (d TaskDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidTask)
	}
	if d.Status != "" && !d.Status.Valid() {
		return fmt.Errorf("%w: status %q must be pending or completed", ErrInvalidTask, d.Status)
	}
	return nil
}

// TaskPatch is a partial update. Nil fields are left untouched. There is no
// way to express a change to ID or CreatedAt.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	DueDate     *time.Time
}

// Validate checks the fields the patch would set.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidTask)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: status %q must be pending or completed", ErrInvalidTask, *p.Status)
	}
	return nil
}

// IsEmpty reports whether the patch sets no field at all.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.DueDate == nil
}

// Apply returns a copy of t with the patch fields overriding the originals.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	return t
}

// TaskStats is a store-wide aggregate recomputed on every read.
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
	Progress  int `json:"progress"` // percent, 0-100
}

// FormatDate renders a timestamp the way the dashboard displays dates.
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// Badge returns the label shown next to a task: COMPLETED, OVERDUE or PENDING.
func (t Task) Badge(now time.Time) string {
	switch {
	case t.Status == StatusCompleted:
		return "COMPLETED"
	case t.IsOverdue(now):
		return "OVERDUE"
	default:
		return "PENDING"
	}
}

// DueLabel renders the due date caption, e.g. "Due: Jul 8, 2024". Completed
// tasks read "Completed: ..." instead.
func (t Task) DueLabel() string {
	if t.Status == StatusCompleted {
		return "Completed: " + FormatDate(t.DueDate)
	}
	return "Due: " + FormatDate(t.DueDate)
}

// ParseDueDate accepts either a calendar date (2006-01-02), taken as the last
// second of that day in UTC, or a full RFC3339 timestamp.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d.Add(24*time.Hour - time.Second), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: due date %q must be YYYY-MM-DD or RFC3339", ErrInvalidTask, s)
	}
	return t.UTC(), nil
}
