package integration

import (
	"errors"

	"github.com/valter-silva-au/taskdash/pkg/models"
)

// FailureMessage renders err for display after a failed action such as
// "update task". Transport failures collapse to a generic retry prompt;
// engine errors keep their reason.
func FailureMessage(action string, err error) string {
	switch {
	case errors.Is(err, ErrTransport):
		return "Failed to " + action + ". Please try again."
	case errors.Is(err, models.ErrNotFound):
		return "failed to " + action + ": task not found"
	default:
		return "failed to " + action + ": " + err.Error()
	}
}
