package entities

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mgallardo/freightdeck/internal/common"
	"github.com/mgallardo/freightdeck/internal/dbx"
	"github.com/mgallardo/freightdeck/internal/entity"
)

// PostgresRepository is the PostgreSQL-backed Repository. Every mutation runs
// in a transaction that also advances the data_version row, so the version and
// the data can never drift apart.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository binds the repository to an open, migrated database.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Version(ctx context.Context) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx, `SELECT version FROM data_version WHERE id = 1`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("error reading data version: %w", err)
	}
	return version, nil
}

func (r *PostgresRepository) Snapshot(ctx context.Context) (*entity.Snapshot, error) {
	snap := entity.NewSnapshot()

	err := dbx.WithTx(ctx, r.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx dbx.DBTX) error {
		if err := tx.QueryRowContext(ctx, `SELECT version FROM data_version WHERE id = 1`).Scan(&snap.Version); err != nil {
			return fmt.Errorf("error reading data version: %w", err)
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT id, type, name, attrs, created_at, updated_at FROM entities ORDER BY id`)
		if err != nil {
			return fmt.Errorf("error listing entities: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			t, item, err := scanEntity(rows)
			if err != nil {
				return err
			}
			snap.ItemsByType[t] = append(snap.ItemsByType[t], *item)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	snap.Normalize()
	return snap, nil
}

func (r *PostgresRepository) ListByType(ctx context.Context, t entity.Type) ([]entity.Entity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, name, attrs, created_at, updated_at FROM entities WHERE type = $1 ORDER BY id`, t)
	if err != nil {
		return nil, fmt.Errorf("error listing entities: %w", err)
	}
	defer rows.Close()

	items := []entity.Entity{}
	for rows.Next() {
		_, item, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) Find(ctx context.Context, id entity.ID) (entity.Type, *entity.Entity, error) {
	numericID, err := numericID(id)
	if err != nil {
		return "", nil, err
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, type, name, attrs, created_at, updated_at FROM entities WHERE id = $1`, numericID)

	t, item, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("%w: entity %s", common.ErrorNotFound, id)
	}
	if err != nil {
		return "", nil, err
	}
	return t, item, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, t entity.Type, e *entity.Entity) error {
	attrs, err := marshalAttrs(e.Attrs)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO entities (type, name, attrs, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			t, e.Name, attrs, e.CreatedAt, e.UpdatedAt).Scan(&id)
		if err != nil {
			return fmt.Errorf("error inserting entity: %w", err)
		}
		e.ID = entity.ID(strconv.FormatInt(id, 10))
		return bumpVersion(ctx, tx)
	})
}

func (r *PostgresRepository) Save(ctx context.Context, t entity.Type, e *entity.Entity) error {
	numericID, err := numericID(e.ID)
	if err != nil {
		return err
	}
	attrs, err := marshalAttrs(e.Attrs)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE entities SET name = $1, attrs = $2, updated_at = $3 WHERE id = $4`,
			e.Name, attrs, e.UpdatedAt, numericID)
		if err != nil {
			return fmt.Errorf("error updating entity: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: entity %s", common.ErrorNotFound, e.ID)
		}
		return bumpVersion(ctx, tx)
	})
}

func (r *PostgresRepository) Remove(ctx context.Context, id entity.ID) error {
	numericID, err := numericID(id)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE id = $1`, numericID)
		if err != nil {
			return fmt.Errorf("error deleting entity: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: entity %s", common.ErrorNotFound, id)
		}
		return bumpVersion(ctx, tx)
	})
}

func (r *PostgresRepository) Close() {
	_ = r.db.Close()
}

func bumpVersion(ctx context.Context, tx dbx.DBTX) error {
	if _, err := tx.ExecContext(ctx, `UPDATE data_version SET version = version + 1 WHERE id = 1`); err != nil {
		return fmt.Errorf("error advancing data version: %w", err)
	}
	return nil
}

// numericID converts a normalized id back to the bigint key. Non-numeric ids
// cannot exist in this store, so they map to not-found rather than an error.
func numericID(id entity.ID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: entity %s", common.ErrorNotFound, id)
	}
	return n, nil
}

func marshalAttrs(attrs map[string]any) ([]byte, error) {
	if attrs == nil {
		return []byte("{}"), nil
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("error encoding attributes: %w", err)
	}
	return raw, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (entity.Type, *entity.Entity, error) {
	var (
		id       int64
		t        entity.Type
		item     entity.Entity
		rawAttrs []byte
	)
	if err := row.Scan(&id, &t, &item.Name, &rawAttrs, &item.CreatedAt, &item.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("error scanning entity: %w", err)
	}
	item.ID = entity.ID(strconv.FormatInt(id, 10))
	if len(rawAttrs) > 0 {
		if err := json.Unmarshal(rawAttrs, &item.Attrs); err != nil {
			return "", nil, fmt.Errorf("error decoding attributes: %w", err)
		}
	}
	return t, &item, nil
}
