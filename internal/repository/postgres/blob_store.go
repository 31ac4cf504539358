package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"tmsbilling/internal/port"
)

type blobRow struct {
	StoreKey  string    `db:"store_key"`
	Payload   []byte    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}

type blobStore struct {
	db *sqlx.DB
}

// NewBlobStore creates a PostgreSQL-backed BlobStore over the invoice_store table.
func NewBlobStore(db *sqlx.DB) port.BlobStore {
	return &blobStore{db: db}
}

func (r *blobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var row blobRow
	err := r.db.GetContext(ctx, &row,
		"SELECT store_key, payload, updated_at FROM invoice_store WHERE store_key = $1", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, port.ErrBlobNotFound
		}
		return nil, fmt.Errorf("blobStore.Get: %w", err)
	}
	return row.Payload, nil
}

func (r *blobStore) Put(ctx context.Context, key string, data []byte) error {
	query := `INSERT INTO invoice_store (store_key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (store_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query, key, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("blobStore.Put: %w", err)
	}
	return nil
}

func (r *blobStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
