package snapshots

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mgallardo/freightdeck/internal/dbx"
	"github.com/mgallardo/freightdeck/internal/entity"
)

// Storage keys, kept stable across releases: the serialized collections and
// the version live in separate rows.
const (
	cacheKey   = "mantenedores_cache"
	versionKey = "mantenedores_version"
)

// SQLiteRepository stores the snapshot in a metadata key-value table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a repository bound to the given database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) get(ctx context.Context, q dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) set(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

// Load reads the persisted snapshot. Missing rows mean no cache; unreadable
// values are reported as errors for the caller to downgrade to a miss.
func (r *SQLiteRepository) Load(ctx context.Context) (*entity.Snapshot, error) {
	rawItems, err := r.get(ctx, r.db, cacheKey)
	if err != nil {
		return nil, err
	}
	rawVersion, err := r.get(ctx, r.db, versionKey)
	if err != nil {
		return nil, err
	}
	if rawItems == nil || rawVersion == nil {
		return nil, nil
	}

	version, err := strconv.ParseInt(string(rawVersion), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt cached version %q: %w", rawVersion, err)
	}

	snap := &entity.Snapshot{Version: version}
	if err := json.Unmarshal(rawItems, &snap.ItemsByType); err != nil {
		return nil, fmt.Errorf("corrupt cached snapshot: %w", err)
	}
	snap.Normalize()
	return snap, nil
}

// Save upserts both rows in one transaction so a crash cannot leave the
// version and the collections out of step.
func (r *SQLiteRepository) Save(ctx context.Context, snap *entity.Snapshot) error {
	raw, err := json.Marshal(snap.ItemsByType)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := r.set(ctx, tx, cacheKey, raw); err != nil {
			return err
		}
		return r.set(ctx, tx, versionKey, []byte(strconv.FormatInt(snap.Version, 10)))
	})
}

// Clear drops both rows.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, key := range []string{cacheKey, versionKey} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
				return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
			}
		}
		return nil
	})
}
