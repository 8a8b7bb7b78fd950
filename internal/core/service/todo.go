package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"userdir/internal/core/domain"
	"userdir/internal/core/port"
	"userdir/internal/core/telemetry"
	"userdir/pkg/config"
)

type TodoService struct {
	repo    port.TodoRepository
	logger  *config.Logger
	metrics *telemetry.AppMetrics
	probe   port.Telemetry
}

func NewTodoService(repo port.TodoRepository, logger *config.Logger, metrics *telemetry.AppMetrics, probe port.Telemetry) *TodoService {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	if probe == nil {
		probe = telemetry.NewNoOpProbe()
	}

	return &TodoService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		probe:   probe,
	}
}

func (ts *TodoService) List(ctx context.Context) ([]domain.TodoRecord, error) {
	ctx, span := ts.probe.StartServiceSpan(ctx, "todo", "List", nil)
	defer span.End()

	todos, err := ts.repo.List(ctx)
	ts.metrics.RecordTodoOperation(ctx, "list", err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus("error", err.Error())
		ts.logger.Ctx(ctx).Error("Failed to list todos", zap.Error(err))
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"todo.count": len(todos)})

	return todos, nil
}

func (ts *TodoService) Add(ctx context.Context, text string) (domain.TodoRecord, error) {
	ctx, span := ts.probe.StartServiceSpan(ctx, "todo", "Add", nil)
	defer span.End()

	todo, err := ts.repo.Add(ctx, text)
	ts.metrics.RecordTodoOperation(ctx, "add", err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus("error", err.Error())
		ts.logger.Ctx(ctx).Error("Failed to add todo", zap.Error(err))
		return domain.TodoRecord{}, err
	}

	ts.probe.RecordBusinessEvent(ctx, "created", "todo", strconv.Itoa(todo.ID), nil)

	return todo, nil
}

func (ts *TodoService) Update(ctx context.Context, todo domain.TodoRecord) (domain.TodoRecord, error) {
	ctx, span := ts.probe.StartServiceSpan(ctx, "todo", "Update", map[string]interface{}{"todo.id": todo.ID})
	defer span.End()

	saved, err := ts.repo.Update(ctx, todo)
	ts.metrics.RecordTodoOperation(ctx, "update", err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus("error", err.Error())
		ts.logger.Ctx(ctx).Error("Failed to update todo", zap.Error(err), zap.Int("id", todo.ID))
		return domain.TodoRecord{}, err
	}

	return saved, nil
}

func (ts *TodoService) Remove(ctx context.Context, id int) error {
	ctx, span := ts.probe.StartServiceSpan(ctx, "todo", "Remove", map[string]interface{}{"todo.id": id})
	defer span.End()

	err := ts.repo.Remove(ctx, id)
	ts.metrics.RecordTodoOperation(ctx, "remove", err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus("error", err.Error())
		ts.logger.Ctx(ctx).Error("Failed to remove todo", zap.Error(err), zap.Int("id", id))
		return err
	}

	return nil
}
