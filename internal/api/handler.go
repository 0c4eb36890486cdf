package api

import (
	"context"
	"log/slog"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
	"github.com/0x-Shashi/Forge-Flow/internal/mq"
	"github.com/0x-Shashi/Forge-Flow/internal/nodes"
	"github.com/0x-Shashi/Forge-Flow/internal/repo"
	"github.com/0x-Shashi/Forge-Flow/internal/runner"
)

// WorkflowStore — операции хранилища workflow, нужные API.
// Реализуется repo.WorkflowRepo.
type WorkflowStore interface {
	Create(ctx context.Context, wf *domain.Workflow) error
	GetByID(ctx context.Context, id string) (*domain.Workflow, error)
	List(ctx context.Context, limit, offset int) ([]domain.Workflow, error)
	ListActive(ctx context.Context) ([]domain.Workflow, error)
	Update(ctx context.Context, wf *domain.Workflow) error
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
}

// ExecutionStore — операции хранилища прогонов, нужные API.
// Реализуется repo.ExecutionRepo.
type ExecutionStore interface {
	Create(ctx context.Context, exec *domain.Execution) error
	GetByID(ctx context.Context, id string) (*domain.Execution, error)
	List(ctx context.Context, filter repo.ExecutionFilter) ([]domain.Execution, error)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	workflows    WorkflowStore
	executions   ExecutionStore
	orchestrator *runner.Orchestrator
	publisher    *mq.Publisher
	ledger       nodes.Ledger
	logger       *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Workflows    WorkflowStore
	Executions   ExecutionStore
	Orchestrator *runner.Orchestrator

	// Publisher — публикация событий завершения. Может быть nil
	// (degraded mode без RabbitMQ).
	Publisher *mq.Publisher

	// Ledger — запись итогов в леджер. Может быть nil.
	Ledger nodes.Ledger

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		workflows:    cfg.Workflows,
		executions:   cfg.Executions,
		orchestrator: cfg.Orchestrator,
		publisher:    cfg.Publisher,
		ledger:       cfg.Ledger,
		logger:       logger,
	}
}
