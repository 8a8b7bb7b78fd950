package keyvalue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"userdir/internal/core/domain"
	"userdir/internal/core/port"
	tel "userdir/internal/core/telemetry"
	"userdir/pkg/config"
)

const DefaultTodoKey = "todos"

// TodoRepository keeps the whole todo list as one JSON array under a single
// key. Every operation reads the array, changes it and writes it back.
// Writers in this process are serialized; writers in other processes sharing
// the same store still race and the last write wins.
type TodoRepository struct {
	mu        sync.Mutex
	store     port.KeyValueStore
	key       string
	nextID    domain.TodoIDStrategy
	logger    *config.Logger
	telemetry port.Telemetry
}

type TodoOption func(*TodoRepository)

func WithKey(key string) TodoOption {
	return func(r *TodoRepository) {
		if key != "" {
			r.key = key
		}
	}
}

func WithIDStrategy(strategy domain.TodoIDStrategy) TodoOption {
	return func(r *TodoRepository) {
		if strategy != nil {
			r.nextID = strategy
		}
	}
}

func WithLogger(logger *config.Logger) TodoOption {
	return func(r *TodoRepository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithTelemetry(telemetry port.Telemetry) TodoOption {
	return func(r *TodoRepository) {
		if telemetry != nil {
			r.telemetry = telemetry
		}
	}
}

func NewTodoRepository(store port.KeyValueStore, opts ...TodoOption) *TodoRepository {
	r := &TodoRepository{
		store:     store,
		key:       DefaultTodoKey,
		nextID:    domain.LengthPlusOne,
		logger:    config.NewNopLogger(),
		telemetry: tel.NewNoOpProbe(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *TodoRepository) Key() string {
	return r.key
}

// load treats a missing key and an unreadable payload alike: both are an
// empty list. Store failures are returned.
func (r *TodoRepository) load(ctx context.Context) ([]domain.TodoRecord, error) {
	raw, err := r.store.Get(ctx, r.key)

	if errors.Is(err, port.ErrKeyNotFound) {
		return []domain.TodoRecord{}, nil
	}

	if err != nil {
		return nil, err
	}

	var todos []domain.TodoRecord

	if err := json.Unmarshal(raw, &todos); err != nil {
		r.logger.Ctx(ctx).Warn("Stored todos are not valid JSON, treating as empty",
			zap.String("key", r.key),
			zap.Int("bytes", len(raw)),
			zap.Error(err))

		return []domain.TodoRecord{}, nil
	}

	if todos == nil {
		todos = []domain.TodoRecord{}
	}

	return todos, nil
}

func (r *TodoRepository) save(ctx context.Context, todos []domain.TodoRecord) error {
	raw, err := json.Marshal(todos)
	if err != nil {
		return err
	}

	return r.store.Set(ctx, r.key, raw)
}

func (r *TodoRepository) List(ctx context.Context) ([]domain.TodoRecord, error) {
	ctx, span := r.telemetry.StartRepositorySpan(ctx, "List", "todo", map[string]interface{}{
		"kv.key": r.key,
	})
	defer span.End()

	startTime := time.Now()

	r.mu.Lock()
	todos, err := r.load(ctx)
	r.mu.Unlock()

	r.telemetry.RecordRepositoryOperation(ctx, "List", "todo", time.Since(startTime), err)

	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"todo.count": len(todos)})

	return todos, nil
}

func (r *TodoRepository) Add(ctx context.Context, text string) (domain.TodoRecord, error) {
	ctx, span := r.telemetry.StartRepositorySpan(ctx, "Add", "todo", map[string]interface{}{
		"kv.key": r.key,
	})
	defer span.End()

	startTime := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	todos, err := r.load(ctx)
	if err != nil {
		r.telemetry.RecordRepositoryOperation(ctx, "Add", "todo", time.Since(startTime), err)
		return domain.TodoRecord{}, err
	}

	todo := domain.TodoRecord{
		ID:        r.nextID(todos),
		Text:      text,
		Completed: false,
	}

	if domain.HasTodoID(todos, todo.ID) {
		r.logger.Ctx(ctx).Warn("New todo id is already in use",
			zap.String("key", r.key),
			zap.Int("id", todo.ID),
			zap.Int("count", len(todos)))
	}

	err = r.save(ctx, append(todos, todo))
	r.telemetry.RecordRepositoryOperation(ctx, "Add", "todo", time.Since(startTime), err)

	if err != nil {
		span.RecordError(err)
		return domain.TodoRecord{}, err
	}

	span.SetAttributes(map[string]interface{}{"todo.id": todo.ID})

	return todo, nil
}

// Update replaces every record carrying todo.ID and writes the list back.
// An unknown id leaves the list as it was.
func (r *TodoRepository) Update(ctx context.Context, todo domain.TodoRecord) (domain.TodoRecord, error) {
	ctx, span := r.telemetry.StartRepositorySpan(ctx, "Update", "todo", map[string]interface{}{
		"kv.key":  r.key,
		"todo.id": todo.ID,
	})
	defer span.End()

	startTime := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	todos, err := r.load(ctx)
	if err != nil {
		r.telemetry.RecordRepositoryOperation(ctx, "Update", "todo", time.Since(startTime), err)
		return domain.TodoRecord{}, err
	}

	for i := range todos {
		if todos[i].ID == todo.ID {
			todos[i] = todo
		}
	}

	err = r.save(ctx, todos)
	r.telemetry.RecordRepositoryOperation(ctx, "Update", "todo", time.Since(startTime), err)

	if err != nil {
		span.RecordError(err)
		return domain.TodoRecord{}, err
	}

	return todo, nil
}

func (r *TodoRepository) Remove(ctx context.Context, id int) error {
	ctx, span := r.telemetry.StartRepositorySpan(ctx, "Remove", "todo", map[string]interface{}{
		"kv.key":  r.key,
		"todo.id": id,
	})
	defer span.End()

	startTime := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	todos, err := r.load(ctx)
	if err != nil {
		r.telemetry.RecordRepositoryOperation(ctx, "Remove", "todo", time.Since(startTime), err)
		return err
	}

	kept := make([]domain.TodoRecord, 0, len(todos))

	for _, t := range todos {
		if t.ID != id {
			kept = append(kept, t)
		}
	}

	err = r.save(ctx, kept)
	r.telemetry.RecordRepositoryOperation(ctx, "Remove", "todo", time.Since(startTime), err)

	if err != nil {
		span.RecordError(err)
	}

	return err
}
