package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valter-silva-au/taskdash/pkg/models"
	"gopkg.in/yaml.v3"
)

// SeedFile represents the top-level structure of a tasks seed file.
type SeedFile struct {
	Version string        `yaml:"version"`
	Tasks   []models.Task `yaml:"tasks"`
}

// DefaultFixture returns the sample tasks the dashboard ships with. Due dates
// are placed relative to anchor so that, evaluated at anchor, exactly one of
// the two pending tasks is overdue.
func DefaultFixture(anchor time.Time) []models.Task {
	anchor = anchor.UTC().Truncate(time.Minute)
	day := 24 * time.Hour

	return []models.Task{
		{
			ID:          "1",
			Title:       "Complete project proposal",
			Description: "Write and review the Q2 project proposal document. Include timeline, budget, and resource allocation details.",
			Status:      models.StatusPending,
			CreatedAt:   anchor.Add(-25 * day),
			DueDate:     anchor.Add(5 * day),
		},
		{
			ID:          "2",
			Title:       "Update website design",
			Description: "Redesign the homepage layout with improved user experience and modern design elements.",
			Status:      models.StatusCompleted,
			CreatedAt:   anchor.Add(-30 * day),
			DueDate:     anchor.Add(-1 * day),
		},
		{
			ID:          "3",
			Title:       "Client presentation",
			Description: "Prepare and deliver presentation to the new client about our services and capabilities.",
			Status:      models.StatusPending,
			CreatedAt:   anchor.Add(-39 * day),
			DueDate:     anchor.Add(-2 * day),
		},
		{
			ID:          "4",
			Title:       "Weekly team meeting",
			Description: "Conduct regular team meeting to discuss progress and blockers.",
			Status:      models.StatusCompleted,
			CreatedAt:   anchor.Add(-35 * day),
			DueDate:     anchor.Add(-5 * day),
		},
	}
}

// LoadSeedFile reads and validates a YAML seed file.
func LoadSeedFile(path string) ([]models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading seed file: %w", err)
	}

	var sf SeedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("loading seed file: parsing YAML: %w", err)
	}

	seen := make(map[string]bool, len(sf.Tasks))
	for i, t := range sf.Tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("loading seed file: task %d: %w: id must not be empty", i, models.ErrInvalidTask)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("loading seed file: task %s: %w: duplicate id", t.ID, models.ErrInvalidTask)
		}
		seen[t.ID] = true

		if strings.TrimSpace(t.Title) == "" {
			return nil, fmt.Errorf("loading seed file: task %s: %w: title must not be empty", t.ID, models.ErrInvalidTask)
		}
		if !t.Status.Valid() {
			return nil, fmt.Errorf("loading seed file: task %s: %w: status %q must be pending or completed", t.ID, models.ErrInvalidTask, t.Status)
		}
	}

	if sf.Tasks == nil {
		return []models.Task{}, nil
	}
	return sf.Tasks, nil
}

// WriteSeedFile writes tasks in the seed file format so a snapshot can be used
// as the starting point of a later session.
func WriteSeedFile(path string, tasks []models.Task) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("writing seed file: creating directory: %w", err)
		}
	}

	sf := SeedFile{Version: "1.0", Tasks: tasks}
	data, err := yaml.Marshal(&sf)
	if err != nil {
		return fmt.Errorf("writing seed file: marshaling YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing seed file: %w", err)
	}
	return nil
}
