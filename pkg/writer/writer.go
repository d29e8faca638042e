// Package writer executes idempotent inserts against the destination store.
// All statements are parameterized; raw dump text is never executed.
package writer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/shoplink/legacymigrate/pkg/database"
)

// TargetWriter is the destination-store surface the migration pass needs:
// a natural-key existence check backing the idempotent skip, and a
// parameterized insert.
type TargetWriter interface {
	// Exists reports whether a row with the given natural-key value is
	// already present, returning its surrogate id when it is.
	Exists(ctx context.Context, table, naturalKey string, value any) (string, bool, error)

	// Insert writes one projected row. Column names come from the declared
	// projections, values are bound as statement parameters.
	Insert(ctx context.Context, table string, values map[string]any) error
}

type pgWriter struct {
	db *database.DB
}

// NewPostgresWriter creates a TargetWriter backed by the destination pool.
func NewPostgresWriter(db *database.DB) TargetWriter {
	return &pgWriter{db: db}
}

var _ TargetWriter = (*pgWriter)(nil)

// Table and column identifiers interpolated below come exclusively from the
// static table declarations in pkg/projection, never from dump content.

func (w *pgWriter) Exists(ctx context.Context, table, naturalKey string, value any) (string, bool, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE %s = $1 LIMIT 1`, table, naturalKey)

	var id string
	err := w.db.QueryRow(ctx, query, value).Scan(&id)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to check %s by %s: %w", table, naturalKey, err)
	}
	return id, true, nil
}

func (w *pgWriter) Insert(ctx context.Context, table string, values map[string]any) error {
	columns := make([]string, 0, len(values))
	for col := range values {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = values[col]
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if _, err := w.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}
