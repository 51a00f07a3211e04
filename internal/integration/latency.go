// Package integration holds the transport boundary between the task service
// and its consumers. The only transport today is a simulated network that
// delays each call the way the mock API the dashboard was built against did.
package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/valter-silva-au/taskdash/internal/core"
	"github.com/valter-silva-au/taskdash/pkg/models"
)

// ErrTransport marks a failure of the transport itself, as opposed to an
// error reported by the task engine.
var ErrTransport = errors.New("transport failure")

// TaskBackend is the context-aware task API the CLI, dashboard and MCP
// surfaces consume.
type TaskBackend interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	QueryTasks(ctx context.Context, category models.Category, searchText string) ([]models.Task, error)
	Stats(ctx context.Context) (models.TaskStats, error)
	AddTask(ctx context.Context, draft models.TaskDraft) (models.Task, error)
	UpdateTask(ctx context.Context, taskID string, patch models.TaskPatch) (models.Task, error)
	CompleteTask(ctx context.Context, taskID string) (models.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
}

// latencyBackend delegates to a TaskService after a per-operation delay.
type latencyBackend struct {
	svc    core.TaskService
	delays models.LatencyConfig
	log    zerolog.Logger
}

// NewLatencyBackend wraps svc. When cfg.Enabled is false every delay is zero
// and calls only fail if ctx is already done.
func NewLatencyBackend(svc core.TaskService, cfg models.LatencyConfig, logger zerolog.Logger) TaskBackend {
	if !cfg.Enabled {
		cfg = models.LatencyConfig{}
	}
	return &latencyBackend{
		svc:    svc,
		delays: cfg,
		log:    logger.With().Str("component", "transport").Logger(),
	}
}

func (b *latencyBackend) ListTasks(ctx context.Context) ([]models.Task, error) {
	if err := b.wait(ctx, "list", b.delays.List); err != nil {
		return nil, err
	}
	return b.svc.ListTasks(), nil
}

func (b *latencyBackend) QueryTasks(ctx context.Context, category models.Category, searchText string) ([]models.Task, error) {
	if err := b.wait(ctx, "list", b.delays.List); err != nil {
		return nil, err
	}
	return b.svc.QueryTasks(category, searchText)
}

func (b *latencyBackend) Stats(ctx context.Context) (models.TaskStats, error) {
	if err := b.wait(ctx, "stats", b.delays.Stats); err != nil {
		return models.TaskStats{}, err
	}
	return b.svc.Stats(), nil
}

func (b *latencyBackend) AddTask(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	if err := b.wait(ctx, "add", b.delays.Add); err != nil {
		return models.Task{}, err
	}
	return b.svc.AddTask(draft)
}

func (b *latencyBackend) UpdateTask(ctx context.Context, taskID string, patch models.TaskPatch) (models.Task, error) {
	if err := b.wait(ctx, "update", b.delays.Update); err != nil {
		return models.Task{}, err
	}
	return b.svc.UpdateTask(taskID, patch)
}

func (b *latencyBackend) CompleteTask(ctx context.Context, taskID string) (models.Task, error) {
	if err := b.wait(ctx, "update", b.delays.Update); err != nil {
		return models.Task{}, err
	}
	return b.svc.CompleteTask(taskID)
}

func (b *latencyBackend) DeleteTask(ctx context.Context, taskID string) error {
	if err := b.wait(ctx, "delete", b.delays.Delete); err != nil {
		return err
	}
	return b.svc.DeleteTask(taskID)
}

// wait blocks for d or until ctx is done, whichever comes first.
func (b *latencyBackend) wait(ctx context.Context, op string, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
	}
	if d <= 0 {
		return nil
	}

	b.log.Trace().Str("op", op).Dur("delay", d).Msg("simulating latency")
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", ErrTransport, op, ctx.Err())
	}
}
