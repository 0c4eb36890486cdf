package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
)

// ExecutionRepo — репозиторий записей прогонов.
//
// Результаты узлов хранятся как JSONB в формате обмена
// (nodeId, success, output, error, durationMs).
type ExecutionRepo struct {
	pool *pgxpool.Pool
}

// NewExecutionRepo создаёт новый ExecutionRepo.
func NewExecutionRepo(pool *pgxpool.Pool) *ExecutionRepo {
	return &ExecutionRepo{pool: pool}
}

// Create сохраняет запись прогона.
func (r *ExecutionRepo) Create(ctx context.Context, exec *domain.Execution) error {
	resultsJSON, err := json.Marshal(exec.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	query := `
		INSERT INTO executions (id, workflow_id, status, results, error, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		exec.ID,
		exec.WorkflowID,
		exec.Status,
		resultsJSON,
		nullString(exec.Error),
		exec.StartedAt,
		nullTime(exec.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// GetByID возвращает запись прогона по ID.
func (r *ExecutionRepo) GetByID(ctx context.Context, id string) (*domain.Execution, error) {
	query := `
		SELECT id, workflow_id, status, results, error, started_at, completed_at
		FROM executions
		WHERE id = $1
	`
	return r.scanExecution(r.pool.QueryRow(ctx, query, id))
}

// ExecutionFilter — параметры фильтрации прогонов.
type ExecutionFilter struct {
	WorkflowID string
	Status     domain.ExecutionStatus
	Limit      int
	Offset     int
}

// List возвращает записи прогонов, новые первыми.
func (r *ExecutionRepo) List(ctx context.Context, filter ExecutionFilter) ([]domain.Execution, error) {
	query := `
		SELECT id, workflow_id, status, results, error, started_at, completed_at
		FROM executions
		WHERE ($1::text IS NULL OR workflow_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY started_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(filter.WorkflowID),
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var executions []domain.Execution
	for rows.Next() {
		exec, err := r.scanExecution(rows)
		if err != nil {
			return nil, err
		}
		executions = append(executions, *exec)
	}
	return executions, rows.Err()
}

// CountByStatus возвращает количество прогонов в статусе.
func (r *ExecutionRepo) CountByStatus(ctx context.Context, status domain.ExecutionStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM executions WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count executions: %w", err)
	}
	return count, nil
}

// --- Helpers ---

func (r *ExecutionRepo) scanExecution(row pgx.Row) (*domain.Execution, error) {
	var exec domain.Execution
	var resultsJSON []byte
	var execError *string
	var completedAt *time.Time

	err := row.Scan(
		&exec.ID,
		&exec.WorkflowID,
		&exec.Status,
		&resultsJSON,
		&execError,
		&exec.StartedAt,
		&completedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan execution: %w", err)
	}

	if execError != nil {
		exec.Error = *execError
	}
	if completedAt != nil {
		exec.CompletedAt = *completedAt
	}
	if err := json.Unmarshal(resultsJSON, &exec.Results); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}

	return &exec, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
