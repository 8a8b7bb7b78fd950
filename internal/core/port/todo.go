package port

import (
	"context"

	"userdir/internal/core/domain"
)

type TodoRepository interface {
	List(ctx context.Context) ([]domain.TodoRecord, error)
	Add(ctx context.Context, text string) (domain.TodoRecord, error)
	Update(ctx context.Context, todo domain.TodoRecord) (domain.TodoRecord, error)
	Remove(ctx context.Context, id int) error
}

type TodoService interface {
	List(ctx context.Context) ([]domain.TodoRecord, error)
	Add(ctx context.Context, text string) (domain.TodoRecord, error)
	Update(ctx context.Context, todo domain.TodoRecord) (domain.TodoRecord, error)
	Remove(ctx context.Context, id int) error
}
