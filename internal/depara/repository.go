package depara

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demonstra-fin/demonstra/internal/platform/db"
)

// Repository is the durable Postgres-backed registry. The registry survives
// process restarts; it is the source of truth for classifications.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a registry repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const entryColumns = `account_code, account_title, classification, grupo_df, status, updated_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	var updatedAt pgtype.Timestamptz
	if err := row.Scan(&e.AccountCode, &e.AccountTitle, &e.Classification, &e.Group, &e.Status, &updatedAt); err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		e.UpdatedAt = updatedAt.Time
	}
	return &e, nil
}

func (r *Repository) Lookup(ctx context.Context, accountCode string) (*Entry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM depara WHERE account_code = $1`, accountCode)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("depara: lookup %s: %w", accountCode, err)
	}
	return e, nil
}

// UpsertUnseen inserts a Pendente entry for an unseen account code. The
// insert is idempotent: an existing entry is returned unchanged.
func (r *Repository) UpsertUnseen(ctx context.Context, accountCode, accountTitle string) (*Entry, error) {
	if accountCode == "" {
		return nil, fmt.Errorf("%w: empty account code", ErrValidation)
	}
	var entry *Entry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`INSERT INTO depara (account_code, account_title, classification, grupo_df, status, updated_at)
			 VALUES ($1, $2, '', '', $3, NOW())
			 ON CONFLICT (account_code) DO NOTHING`,
			accountCode, accountTitle, StatusPending)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			if err := bumpVersion(ctx, tx); err != nil {
				return err
			}
		}
		entry, err = scanEntry(tx.QueryRow(ctx,
			`SELECT `+entryColumns+` FROM depara WHERE account_code = $1`, accountCode))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("depara: upsert unseen %s: %w", accountCode, err)
	}
	return entry, nil
}

// Confirm sets the classification and group for a known account code and
// flips its status to OK. The row update is atomic; concurrent confirms for
// the same code serialize on the row lock (last write wins).
func (r *Repository) Confirm(ctx context.Context, accountCode, classification, group string) (*Entry, error) {
	if classification == "" {
		return nil, fmt.Errorf("%w: empty classification", ErrValidation)
	}
	var entry *Entry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`UPDATE depara
			 SET classification = $2, grupo_df = $3, status = $4, updated_at = NOW()
			 WHERE account_code = $1
			 RETURNING `+entryColumns,
			accountCode, classification, group, StatusOK)
		e, err := scanEntry(row)
		if err != nil {
			return err
		}
		entry = e
		return bumpVersion(ctx, tx)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("depara: confirm %s: %w", accountCode, err)
	}
	return entry, nil
}

// List returns entries matching the filter, ordered by account code.
// Status and group filter in SQL; the accent-insensitive search predicate
// is applied in Go so both stores share one matching rule. A single
// company's chart of accounts stays in the low thousands, so the full
// scan is bounded.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM depara`
	var conditions []string
	var args []interface{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Group != nil {
		args = append(args, *filter.Group)
		conditions = append(conditions, fmt.Sprintf("grupo_df = $%d", len(args)))
	}
	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY account_code"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("depara: list: %w", err)
	}
	defer rows.Close()

	folded := foldSearch(filter.Search)
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("depara: list scan: %w", err)
		}
		if matchesSearch(*e, folded) {
			out = append(out, *e)
		}
	}
	return out, rows.Err()
}

func (r *Repository) Version(ctx context.Context) (int64, error) {
	var version int64
	err := r.pool.QueryRow(ctx, `SELECT version FROM depara_meta`).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 1, nil
		}
		return 0, fmt.Errorf("depara: version: %w", err)
	}
	return version, nil
}

func bumpVersion(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `UPDATE depara_meta SET version = version + 1`)
	return err
}
