package core

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/valter-silva-au/taskdash/pkg/models"
)

// Clock returns the current instant. Tests inject a fixed clock.
type Clock func() time.Time

// TaskReader is the read-only subset of the task store the query engine needs.
type TaskReader interface {
	List() []models.Task
}

// QueryEngine derives filtered views and statistics from the store's current
// snapshot. It never mutates the store.
type QueryEngine struct {
	store TaskReader
	now   Clock
}

// NewQueryEngine creates a QueryEngine over store. A nil clock selects time.Now.
func NewQueryEngine(store TaskReader, now Clock) *QueryEngine {
	if now == nil {
		now = time.Now
	}
	return &QueryEngine{store: store, now: now}
}

// Query returns the tasks matching searchText and category, in store order.
func (e *QueryEngine) Query(category models.Category, searchText string) ([]models.Task, error) {
	return FilterTasks(e.store.List(), category, searchText, e.now())
}

// Stats computes aggregate counts over the entire store.
func (e *QueryEngine) Stats() models.TaskStats {
	return ComputeStats(e.store.List(), e.now())
}

// FilterTasks applies the search filter and then the category filter. The
// input slice is not modified and the result preserves input order. An
// unknown category is rejected with models.ErrUnknownCategory.
func FilterTasks(tasks []models.Task, category models.Category, searchText string, now time.Time) ([]models.Task, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("querying tasks: %w %q", models.ErrUnknownCategory, category)
	}

	needle := strings.ToLower(searchText)
	result := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if needle != "" && !matchesSearch(t, needle) {
			continue
		}
		if !matchesCategory(t, category, now) {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

// matchesSearch expects needle already lower-cased.
func matchesSearch(t models.Task, needle string) bool {
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

func matchesCategory(t models.Task, category models.Category, now time.Time) bool {
	switch category {
	case models.CategoryPending:
		return t.Status == models.StatusPending
	case models.CategoryCompleted:
		return t.Status == models.StatusCompleted
	case models.CategoryOverdue:
		return t.IsOverdue(now)
	default:
		return true
	}
}

// ComputeStats counts tasks by status and overdue-ness at now. Progress is
// the completed share rounded half away from zero, or 0 for an empty set.
func ComputeStats(tasks []models.Task, now time.Time) models.TaskStats {
	var s models.TaskStats
	s.Total = len(tasks)
	for _, t := range tasks {
		switch t.Status {
		case models.StatusCompleted:
			s.Completed++
		case models.StatusPending:
			s.Pending++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	if s.Total > 0 {
		s.Progress = int(math.Round(float64(s.Completed*100) / float64(s.Total)))
	}
	return s
}
