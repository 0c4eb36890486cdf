package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KVRepo — key/value хранилище для action-узлов типа save.
//
// Реализует nodes.Store: значение сериализуется в JSONB и
// перезаписывает прежнее по тому же ключу.
type KVRepo struct {
	pool *pgxpool.Pool
}

// NewKVRepo создаёт новый KVRepo.
func NewKVRepo(pool *pgxpool.Pool) *KVRepo {
	return &KVRepo{pool: pool}
}

// Save сохраняет значение под ключом (upsert).
func (r *KVRepo) Save(ctx context.Context, key string, value any) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = $3
	`
	_, err = r.pool.Exec(ctx, query, key, valueJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save value: %w", err)
	}
	return nil
}

// Get возвращает значение по ключу.
func (r *KVRepo) Get(ctx context.Context, key string) (any, error) {
	var valueJSON []byte
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM kv_store WHERE key = $1`, key).Scan(&valueJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get value: %w", err)
	}

	var value any
	if err := json.Unmarshal(valueJSON, &value); err != nil {
		return nil, fmt.Errorf("unmarshal value: %w", err)
	}
	return value, nil
}

// Delete удаляет значение по ключу.
func (r *KVRepo) Delete(ctx context.Context, key string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete value: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
