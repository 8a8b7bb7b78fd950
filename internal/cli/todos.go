package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"userdir/internal/adapter/database"
	"userdir/internal/adapter/database/keyvalue"
	"userdir/internal/core/domain"
	"userdir/internal/core/port"
	"userdir/internal/core/service"
	"userdir/pkg/config"
	. "userdir/pkg/tracing"
)

type todosClient struct {
	opts *options
}

func newTodosCmd(opts *options) *cobra.Command {
	t := &todosClient{opts: opts}

	cmd := &cobra.Command{Use: "todos", Short: "Manage the stored todo list"}
	cmd.AddCommand(&cobra.Command{Use: "list", Short: "List todos", RunE: t.list})
	cmd.AddCommand(&cobra.Command{Use: "add", Short: "Add a todo", Args: cobra.MinimumNArgs(1), RunE: t.add})
	cmd.AddCommand(&cobra.Command{Use: "done", Short: "Mark a todo as completed", Args: cobra.ExactArgs(1), RunE: t.done})
	cmd.AddCommand(&cobra.Command{Use: "rm", Short: "Remove a todo by id", Args: cobra.ExactArgs(1), RunE: t.remove})

	return cmd
}

// with opens the configured store for the duration of one command.
func (t *todosClient) with(cmd *cobra.Command, name string, fn func(context.Context, port.TodoService) error) error {
	cfg := t.opts.cfg

	logger, err := config.NewLogger(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := database.Open(ctx, cfg.Store, cfg.LogLevel, logger, nil, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	repo := keyvalue.NewTodoRepository(store,
		keyvalue.WithKey(cfg.TodoKey),
		keyvalue.WithIDStrategy(domain.TodoIDStrategyByName(cfg.TodoIDStrategy)),
		keyvalue.WithLogger(logger),
	)
	svc := service.NewTodoService(repo, logger, nil, nil)

	return SpanWrapper(ctx, "cli.todos."+name, []attribute.KeyValue{
		attribute.String("kv.driver", cfg.Store.Driver),
	}, func(ctx context.Context) error {
		return fn(ctx, svc)
	})
}

func (t *todosClient) print(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid todo id %q", arg)
	}
	return id, nil
}

func (t *todosClient) list(cmd *cobra.Command, args []string) error {
	return t.with(cmd, "list", func(ctx context.Context, svc port.TodoService) error {
		todos, err := svc.List(ctx)
		if err != nil {
			return err
		}
		return t.print(cmd, todos)
	})
}

func (t *todosClient) add(cmd *cobra.Command, args []string) error {
	return t.with(cmd, "add", func(ctx context.Context, svc port.TodoService) error {
		todo, err := svc.Add(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return t.print(cmd, todo)
	})
}

func (t *todosClient) done(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return t.with(cmd, "done", func(ctx context.Context, svc port.TodoService) error {
		todos, err := svc.List(ctx)
		if err != nil {
			return err
		}

		for _, todo := range todos {
			if todo.ID != id {
				continue
			}

			todo.Completed = true

			saved, err := svc.Update(ctx, todo)
			if err != nil {
				return err
			}
			return t.print(cmd, saved)
		}

		return fmt.Errorf("todo %d not found", id)
	})
}

func (t *todosClient) remove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return t.with(cmd, "rm", func(ctx context.Context, svc port.TodoService) error {
		if err := svc.Remove(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d\n", id)
		return nil
	})
}
