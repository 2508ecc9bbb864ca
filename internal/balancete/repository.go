package balancete

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demonstra-fin/demonstra/internal/platform/db"
)

// Repository is the Postgres-backed LineStore.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a line repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ReplacePeriods deletes the stored values for the given periods and writes
// the new batch in one transaction, so a re-imported month never doubles up.
func (r *Repository) ReplacePeriods(ctx context.Context, year int, periods []string, items []LineItem) error {
	replaced := make(map[string]struct{}, len(periods))
	for _, p := range periods {
		replaced[p] = struct{}{}
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM balancete_lines WHERE ano = $1 AND periodo = ANY($2)`,
			year, periods); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, item := range items {
			for period, value := range item.Values {
				if _, ok := replaced[period]; !ok {
					continue
				}
				// Duplicate account rows are merged upstream; if one slips
				// through, last write wins like the in-memory store.
				batch.Queue(
					`INSERT INTO balancete_lines (ano, periodo, account_code, account_title, valor)
					 VALUES ($1, $2, $3, $4, $5)
					 ON CONFLICT (ano, periodo, account_code)
					 DO UPDATE SET account_title = EXCLUDED.account_title, valor = EXCLUDED.valor`,
					year, period, item.AccountCode, item.AccountTitle, value)
			}
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("balancete: replace periods: %w", err)
	}
	return nil
}

func (r *Repository) LinesForYear(ctx context.Context, year int) ([]LineItem, []string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT account_code, account_title, periodo, valor
		 FROM balancete_lines
		 WHERE ano = $1
		 ORDER BY account_code, periodo`, year)
	if err != nil {
		return nil, nil, fmt.Errorf("balancete: lines for year: %w", err)
	}
	defer rows.Close()

	var items []LineItem
	periodSet := make(map[string]struct{})
	var current *LineItem
	for rows.Next() {
		var code, title, period string
		var value float64
		if err := rows.Scan(&code, &title, &period, &value); err != nil {
			return nil, nil, fmt.Errorf("balancete: scan line: %w", err)
		}
		periodSet[period] = struct{}{}
		if current == nil || current.AccountCode != code {
			items = append(items, LineItem{AccountCode: code, AccountTitle: title, Values: make(map[string]float64)})
			current = &items[len(items)-1]
		}
		current.Values[period] = value
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	periods := make([]string, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Strings(periods)
	return items, periods, nil
}

func (r *Repository) Periods(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT periodo FROM balancete_lines ORDER BY periodo`)
	if err != nil {
		return nil, fmt.Errorf("balancete: periods: %w", err)
	}
	defer rows.Close()

	var periods []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}
