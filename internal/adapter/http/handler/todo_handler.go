package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	. "userdir/internal/adapter/http/helper"
	"userdir/internal/core/domain"
	"userdir/internal/core/model/request"
	"userdir/internal/core/port"
	"userdir/internal/core/util"
	"userdir/pkg/config"
	. "userdir/pkg/tracing"
)

type TodoHandler struct {
	svc    port.TodoService
	Logger *config.Logger
}

func NewTodoHandler(todoService port.TodoService, logger *config.Logger) *TodoHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &TodoHandler{
		svc:    todoService,
		Logger: logger,
	}
}

func parseTodoID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		SendBadRequestError(c, "id", "id must be an integer")
		return 0, false
	}

	return id, true
}

func (t *TodoHandler) GetAllTodos(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetAllTodos", []attribute.KeyValue{
		attribute.String("handler.operation", "GetAllTodos"),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})
	defer span.End()

	todos, err := t.svc.List(ctx)

	if err != nil {
		AddSpanError(span, err)

		config.LogError(ctx, t.Logger, err, "Failed to get todos")

		SendInternalError(c, "Error getting todos")
		return
	}

	span.SetAttributes(
		attribute.Int("http.status_code", http.StatusOK),
		attribute.Int("todo.count", len(todos)),
	)

	SendSuccess(c, http.StatusOK, todos)
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.ParamsToMap[request.TodoRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	todo, err := t.svc.Add(ctx, params.Text)

	if err != nil {
		config.LogError(ctx, t.Logger, err, "Failed to create todo")
		SendInternalError(c, "Error creating todo")
		return
	}

	SendSuccess(c, http.StatusCreated, todo)
}

// UpdateTodo replaces the todo at :id. An id that is not stored is
// accepted and changes nothing.
func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseTodoID(c)
	if !ok {
		return
	}

	params, err := util.ParamsToMap[request.TodoUpdateRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	todo, err := t.svc.Update(ctx, domain.TodoRecord{
		ID:        id,
		Text:      params.Text,
		Completed: params.Completed,
	})

	if err != nil {
		config.LogError(ctx, t.Logger, err, "Failed to update todo", zap.Int("id", id))
		SendInternalError(c, "Error updating todo")
		return
	}

	SendSuccess(c, http.StatusOK, todo)
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseTodoID(c)
	if !ok {
		return
	}

	if err := t.svc.Remove(ctx, id); err != nil {
		config.LogError(ctx, t.Logger, err, "Failed to delete todo", zap.Int("id", id))
		SendInternalError(c, "Error deleting todo")
		return
	}

	SendSuccess(c, http.StatusOK, nil, "Todo deleted successfully")
}
