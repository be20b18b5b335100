package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"doc-notification/storage"
)

// KVStore is the SQLite implementation of storage.Store.
// Each key is one row; Set is a single upsert statement.
type KVStore struct {
	db *DB
}

var _ storage.Store = (*KVStore)(nil)

func NewKVStore(db *DB) *KVStore {
	return &KVStore{db: db}
}

// Get decodes the JSON stored under key into dst
func (s *KVStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storage.Wrap("get", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, storage.Wrap("get", key, err)
	}
	return true, nil
}

// Set encodes value and upserts it under key
func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return storage.Wrap("set", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, raw, time.Now().UTC())
	return storage.Wrap("set", key, err)
}

// Remove deletes key; absent keys are ignored
func (s *KVStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return storage.Wrap("remove", key, err)
}

// Keys lists every stored key
func (s *KVStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key ASC`)
	if err != nil {
		return nil, storage.Wrap("keys", "", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, storage.Wrap("keys", "", err)
		}
		keys = append(keys, key)
	}

	return keys, storage.Wrap("keys", "", rows.Err())
}
