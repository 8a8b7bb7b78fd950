package http

import (
	"userdir/internal/adapter/database/keyvalue"
	"userdir/internal/adapter/http/handler"
	"userdir/internal/core/domain"
	"userdir/internal/core/port"
	"userdir/internal/core/service"
	"userdir/internal/core/telemetry"
	"userdir/pkg/config"
)

type Container struct {
	Directory *service.UserDirectory
	Sessions  *service.SessionRegistry
	TodoRepo  port.TodoRepository

	TodoService port.TodoService

	UserHandler    *handler.UserHandler
	SessionHandler *handler.SessionHandler
	TodoHandler    *handler.TodoHandler
	HealthHandler  *handler.HealthHandler
}

func NewContainer(store port.KeyValueStore, cfg *config.AppConfig, logger *config.Logger, metrics *telemetry.AppMetrics, probe port.Telemetry) *Container {
	opts := []service.DirectoryOption{
		service.WithDirectoryLogger(logger),
		service.WithDirectoryMetrics(metrics),
		service.WithDirectoryTelemetry(probe),
	}

	if cfg.SeedSample {
		opts = append(opts, service.WithSeed(domain.SampleUsers()))
	}

	directory := service.NewUserDirectory(opts...)
	sessions := service.NewSessionRegistry(directory, cfg.SessionTTL, logger, metrics)

	todoRepo := keyvalue.NewTodoRepository(store,
		keyvalue.WithKey(cfg.TodoKey),
		keyvalue.WithIDStrategy(domain.TodoIDStrategyByName(cfg.TodoIDStrategy)),
		keyvalue.WithLogger(logger),
		keyvalue.WithTelemetry(probe),
	)
	todoSvc := service.NewTodoService(todoRepo, logger, metrics, probe)

	return &Container{
		Directory: directory,
		Sessions:  sessions,
		TodoRepo:  todoRepo,

		TodoService: todoSvc,

		UserHandler:    handler.NewUserHandler(directory, logger),
		SessionHandler: handler.NewSessionHandler(sessions, logger),
		TodoHandler:    handler.NewTodoHandler(todoSvc, logger),
		HealthHandler: &handler.HealthHandler{
			Service: cfg.ServiceName,
			Version: cfg.ServiceVersion,
		},
	}
}

func (c *Container) Handlers() HandlersConfig {
	return HandlersConfig{
		UserHandler:    c.UserHandler,
		SessionHandler: c.SessionHandler,
		TodoHandler:    c.TodoHandler,
		HealthHandler:  c.HealthHandler,
	}
}
