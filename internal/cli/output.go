package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/valter-silva-au/taskdash/internal/integration"
	"github.com/valter-silva-au/taskdash/pkg/models"
)

var (
	badgeCompleted = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)
	badgeOverdue   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	badgePending   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

func styleForBadge(badge string) lipgloss.Style {
	switch badge {
	case "COMPLETED":
		return badgeCompleted
	case "OVERDUE":
		return badgeOverdue
	default:
		return badgePending
	}
}

// printTaskTable writes one row per task: ID, badge, due caption, title.
func printTaskTable(w io.Writer, tasks []models.Task, now time.Time) {
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(w, "No tasks found. Create a new task to get started!")
		return
	}

	idWidth := len("ID")
	for _, t := range tasks {
		idWidth = max(idWidth, len(t.ID))
	}

	_, _ = fmt.Fprintf(w, "  %-*s  %-9s  %-24s  %s\n", idWidth, "ID", "STATUS", "DUE", "TITLE")
	_, _ = fmt.Fprintf(w, "  %-*s  %-9s  %-24s  %s\n", idWidth, "--", "------", "---", "-----")
	for _, t := range tasks {
		badge := t.Badge(now)
		// Pad before styling so escape codes do not break the column.
		styled := styleForBadge(badge).Render(fmt.Sprintf("%-9s", badge))
		_, _ = fmt.Fprintf(w, "  %-*s  %s  %-24s  %s\n", idWidth, t.ID, styled, t.DueLabel(), t.Title)
	}
}

// printTaskDetail writes a multi-line view of a single task.
func printTaskDetail(w io.Writer, t models.Task, now time.Time) {
	_, _ = fmt.Fprintf(w, "%s  %s\n", styleForBadge(t.Badge(now)).Render(t.Badge(now)), t.Title)
	_, _ = fmt.Fprintf(w, "  %-12s %s\n", "ID:", t.ID)
	if strings.TrimSpace(t.Description) != "" {
		_, _ = fmt.Fprintf(w, "  %-12s %s\n", "Description:", t.Description)
	}
	_, _ = fmt.Fprintf(w, "  %-12s %s\n", "Created:", models.FormatDate(t.CreatedAt))
	_, _ = fmt.Fprintf(w, "  %s\n", t.DueLabel())
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting output as JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// actionError carries the user-facing message for a failed action while
// keeping the cause available to errors.Is.
type actionError struct {
	msg string
	err error
}

func (e *actionError) Error() string { return e.msg }
func (e *actionError) Unwrap() error { return e.err }

func failed(action string, err error) error {
	return &actionError{msg: integration.FailureMessage(action, err), err: err}
}
