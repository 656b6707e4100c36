package db

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/V2473/pokedex/internal/errors"
)

// GetJSON decodes the blob stored under key into dst. found is false when
// the key has never been written; dst is left untouched in that case.
func GetJSON(ctx context.Context, db *sql.DB, key string, dst any) (bool, error) {
	var raw string
	err := db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&raw)
	if stderrors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(fmt.Errorf("read %s: %w", key, err))
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return true, errors.NewInternal(fmt.Errorf("decode %s: %w", key, err))
	}
	return true, nil
}

// PutJSON encodes v and stores it under key, replacing any previous value.
func PutJSON(ctx context.Context, db *sql.DB, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("encode %s: %w", key, err))
	}

	query := `
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, string(data), time.Now().Unix()); err != nil {
		return errors.NewInternal(fmt.Errorf("write %s: %w", key, err))
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func Delete(ctx context.Context, db *sql.DB, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return errors.NewInternal(fmt.Errorf("delete %s: %w", key, err))
	}
	return nil
}

// Keys lists stored keys in ascending order.
func Keys(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT key FROM blobs ORDER BY key`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, errors.NewInternal(err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return keys, nil
}
