package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
)

// WorkflowRepo — репозиторий определений workflow.
//
// Узлы и рёбра хранятся как JSONB в формате обмена с канвасом.
type WorkflowRepo struct {
	pool *pgxpool.Pool
}

// NewWorkflowRepo создаёт новый WorkflowRepo.
func NewWorkflowRepo(pool *pgxpool.Pool) *WorkflowRepo {
	return &WorkflowRepo{pool: pool}
}

// Create сохраняет новый workflow.
func (r *WorkflowRepo) Create(ctx context.Context, wf *domain.Workflow) error {
	nodesJSON, edgesJSON, err := marshalGraph(wf)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	wf.CreatedAt = now
	wf.UpdatedAt = now

	query := `
		INSERT INTO workflows (id, name, description, nodes, edges, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		wf.ID,
		wf.Name,
		nullString(wf.Description),
		nodesJSON,
		edgesJSON,
		wf.IsActive,
		wf.CreatedAt,
		wf.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: workflow %s", ErrAlreadyExists, wf.ID)
		}
		return fmt.Errorf("insert workflow: %w", err)
	}
	return nil
}

// GetByID возвращает workflow по ID.
func (r *WorkflowRepo) GetByID(ctx context.Context, id string) (*domain.Workflow, error) {
	query := `
		SELECT id, name, description, nodes, edges, is_active, created_at, updated_at
		FROM workflows
		WHERE id = $1
	`
	return r.scanWorkflow(r.pool.QueryRow(ctx, query, id))
}

// List возвращает workflows, новые первыми.
func (r *WorkflowRepo) List(ctx context.Context, limit, offset int) ([]domain.Workflow, error) {
	query := `
		SELECT id, name, description, nodes, edges, is_active, created_at, updated_at
		FROM workflows
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListActive возвращает активные workflows.
func (r *WorkflowRepo) ListActive(ctx context.Context) ([]domain.Workflow, error) {
	query := `
		SELECT id, name, description, nodes, edges, is_active, created_at, updated_at
		FROM workflows
		WHERE is_active = true
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active workflows: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Update обновляет определение workflow.
func (r *WorkflowRepo) Update(ctx context.Context, wf *domain.Workflow) error {
	nodesJSON, edgesJSON, err := marshalGraph(wf)
	if err != nil {
		return err
	}

	wf.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE workflows
		SET name = $2, description = $3, nodes = $4, edges = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		wf.ID,
		wf.Name,
		nullString(wf.Description),
		nodesJSON,
		edgesJSON,
		wf.IsActive,
		wf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет workflow.
func (r *WorkflowRepo) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive переключает флаг активности.
func (r *WorkflowRepo) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE workflows SET is_active = $2, updated_at = $3 WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

func marshalGraph(wf *domain.Workflow) (nodesJSON, edgesJSON []byte, err error) {
	nodesJSON, err = json.Marshal(wf.Nodes)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal nodes: %w", err)
	}
	edgesJSON, err = json.Marshal(wf.Edges)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal edges: %w", err)
	}
	return nodesJSON, edgesJSON, nil
}

func (r *WorkflowRepo) scanWorkflow(row pgx.Row) (*domain.Workflow, error) {
	var wf domain.Workflow
	var description *string
	var nodesJSON, edgesJSON []byte

	err := row.Scan(
		&wf.ID,
		&wf.Name,
		&description,
		&nodesJSON,
		&edgesJSON,
		&wf.IsActive,
		&wf.CreatedAt,
		&wf.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan workflow: %w", err)
	}

	if description != nil {
		wf.Description = *description
	}
	if err := json.Unmarshal(nodesJSON, &wf.Nodes); err != nil {
		return nil, fmt.Errorf("unmarshal nodes: %w", err)
	}
	if err := json.Unmarshal(edgesJSON, &wf.Edges); err != nil {
		return nil, fmt.Errorf("unmarshal edges: %w", err)
	}

	return &wf, nil
}

func (r *WorkflowRepo) collect(rows pgx.Rows) ([]domain.Workflow, error) {
	var workflows []domain.Workflow
	for rows.Next() {
		wf, err := r.scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, *wf)
	}
	return workflows, rows.Err()
}

func nullString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
