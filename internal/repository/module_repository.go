package repository

import (
	"context"
	"database/sql"
	"encoding/json"
)

// moduleStoreKey is the fixed id of the singleton module document. The
// whole JSON array lives in one row and is replaced wholesale on every
// write (last-writer-wins, no merge).
const moduleStoreKey = "custom_modules"

type ModuleRepo struct{ DB *sql.DB }

func NewModuleRepo(db *sql.DB) *ModuleRepo { return &ModuleRepo{DB: db} }

// Fetch returns the stored module array as raw JSON. sql.ErrNoRows means
// nothing has been written yet; any other error means the store is
// unreachable.
func (r *ModuleRepo) Fetch(ctx context.Context) (json.RawMessage, error) {
	var data []byte
	err := r.DB.QueryRowContext(ctx,
		"SELECT data FROM module_store WHERE id=?", moduleStoreKey).Scan(&data)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// Upsert replaces the singleton document under the fixed key.
func (r *ModuleRepo) Upsert(ctx context.Context, data json.RawMessage) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO module_store (id, data, updated_at)
		 VALUES (?, ?, UTC_TIMESTAMP())
		 ON DUPLICATE KEY UPDATE data=VALUES(data), updated_at=UTC_TIMESTAMP()`,
		moduleStoreKey, []byte(data))
	return err
}
