package cli

import (
	"github.com/rs/zerolog"
	"github.com/valter-silva-au/taskdash/internal/integration"
	"github.com/valter-silva-au/taskdash/internal/observability"
)

// Service instances, set during app initialization in app.go.
var (
	Backend     integration.TaskBackend
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Logger      = zerolog.Nop()

	// LogToStderr reports whether Logger writes to the terminal. The
	// dashboard silences it while the alternate screen is active.
	LogToStderr bool
)
