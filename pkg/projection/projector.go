// Package projection declares, per target table, how legacy dump columns map
// to target columns: which transformer shapes each value and which columns
// are foreign keys resolved through the identity registry.
package projection

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/shoplink/legacymigrate/pkg/apperrors"
	"github.com/shoplink/legacymigrate/pkg/identity"
)

// Field maps one legacy column to one target column.
//
// Legacy names the source column in the table's manifest. A Field with an
// empty Legacy and a Generate func fills a target column the legacy schema
// never had. FKKind marks the value as a legacy foreign key to be resolved
// through the identity registry; an unresolved reference projects to nil,
// never to the raw legacy integer.
type Field struct {
	Legacy    string
	Target    string
	Transform func(any) any
	FKKind    identity.Kind
	Generate  func() any
}

// Table declares the projection for one legacy table.
//
// Columns is the explicit ordered manifest of the legacy table's dump
// columns. A decoded row whose length differs from the manifest is rejected,
// so schema drift in the dump surfaces as an error instead of silently
// shifting fields. LegacyPK names the integer primary key column and
// NaturalKey names the target column used for the idempotent existence check.
type Table struct {
	Kind       identity.Kind
	LegacyName string
	LegacyPK   string
	NaturalKey string
	Columns    []string
	Fields     []Field
}

// TargetTable derives the destination table name from the entity kind.
func (t *Table) TargetTable() string {
	return inflection.Plural(string(t.Kind))
}

// ProjectedRow is a legacy row after transformation and foreign-key
// resolution, ready for insertion into the target store.
type ProjectedRow struct {
	LegacyID  int64
	Surrogate string
	Values    map[string]any
	// Unresolved lists the target columns whose legacy foreign key had no
	// identity-map entry and degraded to nil.
	Unresolved []string
}

// Projector applies one table's declared projection to decoded rows.
type Projector struct {
	table  *Table
	index  map[string]int
	logger *zap.Logger
}

// NewProjector builds a projector for a table declaration.
func NewProjector(table *Table, logger *zap.Logger) (*Projector, error) {
	index := make(map[string]int, len(table.Columns))
	for i, name := range table.Columns {
		index[name] = i
	}
	if _, ok := index[table.LegacyPK]; !ok {
		return nil, fmt.Errorf("table %s: primary key %q not in column manifest", table.LegacyName, table.LegacyPK)
	}
	for _, f := range table.Fields {
		if f.Legacy == "" {
			if f.Generate == nil {
				return nil, fmt.Errorf("table %s: field %s has neither a legacy column nor a generator", table.LegacyName, f.Target)
			}
			continue
		}
		if _, ok := index[f.Legacy]; !ok {
			return nil, fmt.Errorf("table %s: field %s references unknown legacy column %q", table.LegacyName, f.Target, f.Legacy)
		}
	}
	return &Projector{
		table:  table,
		index:  index,
		logger: logger.Named("projector").With(zap.String("table", table.LegacyName)),
	}, nil
}

// Project maps one decoded legacy row to a projected target row.
//
// The primary key is handled first: if the registry already holds a surrogate
// for (kind, legacyID) it is reused, otherwise a new one is minted and
// registered immediately, so a foreign key in the same row pointing back at
// the same table resolves. Unresolved foreign keys become nil with a warning.
func (p *Projector) Project(row []any, reg *identity.Registry) (*ProjectedRow, error) {
	if len(row) != len(p.table.Columns) {
		return nil, fmt.Errorf("table %s: row has %d fields, manifest declares %d: %w",
			p.table.LegacyName, len(row), len(p.table.Columns), apperrors.ErrColumnMismatch)
	}

	legacyID, ok := asInt64(row[p.index[p.table.LegacyPK]])
	if !ok {
		return nil, fmt.Errorf("table %s: primary key %q is not an integer: %v",
			p.table.LegacyName, p.table.LegacyPK, row[p.index[p.table.LegacyPK]])
	}

	surrogate, known := reg.Resolve(p.table.Kind, legacyID)
	if !known {
		surrogate = uuid.NewString()
		if err := reg.Register(p.table.Kind, legacyID, surrogate); err != nil {
			return nil, fmt.Errorf("table %s: %w", p.table.LegacyName, err)
		}
	}

	out := &ProjectedRow{
		LegacyID:  legacyID,
		Surrogate: surrogate,
		Values:    map[string]any{"id": surrogate},
	}

	for _, f := range p.table.Fields {
		var value any
		if f.Legacy != "" {
			value = row[p.index[f.Legacy]]
		}

		if f.FKKind != "" {
			out.Values[f.Target] = p.resolveForeignKey(f, value, legacyID, reg, out)
			continue
		}

		if isAbsent(value) && f.Generate != nil {
			out.Values[f.Target] = f.Generate()
			continue
		}
		if f.Transform != nil {
			value = f.Transform(value)
		}
		out.Values[f.Target] = value
	}

	return out, nil
}

// LegacyID extracts the integer primary key from a decoded row without
// projecting it.
func (p *Projector) LegacyID(row []any) (int64, error) {
	if len(row) != len(p.table.Columns) {
		return 0, fmt.Errorf("table %s: row has %d fields, manifest declares %d: %w",
			p.table.LegacyName, len(row), len(p.table.Columns), apperrors.ErrColumnMismatch)
	}
	id, ok := asInt64(row[p.index[p.table.LegacyPK]])
	if !ok {
		return 0, fmt.Errorf("table %s: primary key %q is not an integer: %v",
			p.table.LegacyName, p.table.LegacyPK, row[p.index[p.table.LegacyPK]])
	}
	return id, nil
}

// NaturalKeyValue computes the value of the table's natural-key column from a
// decoded row, applying the declared transform. It is used for the idempotent
// existence check before the row is projected, so it must not depend on the
// identity registry or on generated values.
func (p *Projector) NaturalKeyValue(row []any) (any, error) {
	if len(row) != len(p.table.Columns) {
		return nil, fmt.Errorf("table %s: row has %d fields, manifest declares %d: %w",
			p.table.LegacyName, len(row), len(p.table.Columns), apperrors.ErrColumnMismatch)
	}
	for _, f := range p.table.Fields {
		if f.Target != p.table.NaturalKey {
			continue
		}
		if f.Legacy == "" || f.FKKind != "" {
			return nil, fmt.Errorf("table %s: natural key %q must map a plain legacy column",
				p.table.LegacyName, p.table.NaturalKey)
		}
		value := row[p.index[f.Legacy]]
		if f.Transform != nil {
			value = f.Transform(value)
		}
		return value, nil
	}
	return nil, fmt.Errorf("table %s: natural key %q is not a declared field",
		p.table.LegacyName, p.table.NaturalKey)
}

func (p *Projector) resolveForeignKey(f Field, value any, legacyID int64, reg *identity.Registry, out *ProjectedRow) any {
	refID, ok := asInt64(value)
	if !ok || refID == 0 {
		// Legacy dumps use 0 or NULL for "no reference".
		return nil
	}
	surrogate, found := reg.Resolve(f.FKKind, refID)
	if !found {
		out.Unresolved = append(out.Unresolved, f.Target)
		p.logger.Warn("unresolved foreign key, projecting null",
			zap.String("column", f.Target),
			zap.String("references", string(f.FKKind)),
			zap.Int64("legacy_ref_id", refID),
			zap.Int64("legacy_row_id", legacyID))
		return nil
	}
	return surrogate
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}
