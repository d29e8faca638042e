// Package runner sequences table migrations in dependency order and drives
// the tokenizer, decoder, projector, identity registry, and target writer for
// each one. A pass is created at process start and ends by flushing the
// identity map and reporting per-kind counts.
package runner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shoplink/legacymigrate/pkg/apperrors"
	"github.com/shoplink/legacymigrate/pkg/dump"
	"github.com/shoplink/legacymigrate/pkg/identity"
	"github.com/shoplink/legacymigrate/pkg/projection"
	"github.com/shoplink/legacymigrate/pkg/writer"
)

// Report holds the outcome of one kind's migration within a pass.
type Report struct {
	Kind     identity.Kind
	Migrated int
	Skipped  int
	Failed   int
	// Unresolved counts foreign-key fields that degraded to null because the
	// referenced legacy ID was absent from the identity map.
	Unresolved int
	// Conflicts counts duplicate-identity registrations that kept the
	// first-registered mapping.
	Conflicts int
	// Aborted is set when a structural tokenizer error stopped this kind.
	// Other kinds in the pass are unaffected.
	Aborted error
}

// Pass is one sequential execution of the migrator over a set of entity
// kinds. Rows are processed strictly one at a time; a row's insert is the
// unit of atomicity, so partial progress survives an interrupted run.
type Pass struct {
	dumpText string
	registry *identity.Registry
	target   writer.TargetWriter
	logger   *zap.Logger
}

// NewPass creates a pass over the given dump text. The registry should
// already contain the mappings persisted by earlier passes.
func NewPass(dumpText string, registry *identity.Registry, target writer.TargetWriter, logger *zap.Logger) *Pass {
	return &Pass{
		dumpText: dumpText,
		registry: registry,
		target:   target,
		logger:   logger.Named("pass"),
	}
}

// Run migrates the requested kinds. Whatever subset is requested, kinds run
// in the canonical dependency order (lookup tables, then owning entities,
// then owned entities, then relationship tables) so no table migrates before
// the tables its foreign keys reference. An empty request means all kinds.
//
// The returned reports cover every kind that ran. The error is non-nil when
// at least one kind aborted structurally; committed work for other kinds is
// unaffected.
func (p *Pass) Run(ctx context.Context, kinds []identity.Kind) ([]Report, error) {
	requested := make(map[identity.Kind]bool, len(kinds))
	for _, k := range kinds {
		requested[k] = true
	}

	var (
		reports []Report
		aborted []error
	)
	for _, table := range projection.Tables {
		if len(requested) > 0 && !requested[table.Kind] {
			continue
		}
		report := p.runKind(ctx, table)
		reports = append(reports, report)
		if report.Aborted != nil {
			aborted = append(aborted, fmt.Errorf("%s: %w", table.LegacyName, report.Aborted))
		}
	}

	if len(aborted) > 0 {
		return reports, fmt.Errorf("pass finished with aborted tables: %w", errors.Join(aborted...))
	}
	return reports, nil
}

func (p *Pass) runKind(ctx context.Context, table *projection.Table) Report {
	report := Report{Kind: table.Kind}
	log := p.logger.With(zap.String("table", table.LegacyName))

	projector, err := projection.NewProjector(table, p.logger)
	if err != nil {
		report.Aborted = err
		log.Error("invalid table declaration", zap.Error(err))
		return report
	}

	bodies := dump.ExtractInsertValues(p.dumpText, table.LegacyName)
	if len(bodies) == 0 {
		log.Info("no insert statements in dump, nothing to migrate")
		return report
	}

	var tuples [][]string
	for _, body := range bodies {
		parsed, err := dump.TokenizeTuples(body)
		if err != nil {
			// Tuple boundaries are ambiguous past this point; the whole
			// table aborts, other tables keep their committed work.
			report.Aborted = err
			log.Error("tokenizer failed, aborting table", zap.Error(err))
			return report
		}
		tuples = append(tuples, parsed...)
	}

	for _, tuple := range tuples {
		row := make([]any, len(tuple))
		for i, token := range tuple {
			row[i] = dump.Decode(token)
		}
		p.migrateRow(ctx, projector, table, row, &report, log)
	}

	log.Info("table migrated",
		zap.Int("migrated", report.Migrated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int("unresolved_fks", report.Unresolved),
		zap.Int("identity_conflicts", report.Conflicts))
	return report
}

// migrateRow processes a single legacy row. Failures are contained here:
// a bad row is logged with its legacy ID and the pass moves on.
func (p *Pass) migrateRow(ctx context.Context, projector *projection.Projector, table *projection.Table, row []any, report *Report, log *zap.Logger) {
	legacyID, err := projector.LegacyID(row)
	if err != nil {
		report.Failed++
		log.Error("row rejected", zap.Error(err))
		return
	}

	naturalKey, err := projector.NaturalKeyValue(row)
	if err != nil {
		report.Failed++
		log.Error("row rejected", zap.Int64("legacy_id", legacyID), zap.Error(err))
		return
	}

	existingID, found, err := p.target.Exists(ctx, table.TargetTable(), table.NaturalKey, naturalKey)
	if err != nil {
		report.Failed++
		log.Error("existence check failed", zap.Int64("legacy_id", legacyID), zap.Error(err))
		return
	}
	if found {
		// Idempotent no-op. Adopt the existing row's surrogate so the map
		// stays the single source of truth; a different already-registered
		// surrogate signals a non-idempotent re-run or corrupted map.
		if err := p.registry.Register(table.Kind, legacyID, existingID); err != nil {
			report.Conflicts++
			log.Warn("duplicate identity registration, keeping first mapping",
				zap.Int64("legacy_id", legacyID),
				zap.String("existing_row_id", existingID),
				zap.Error(err))
		}
		report.Skipped++
		log.Debug("row already present, skipping", zap.Int64("legacy_id", legacyID))
		return
	}

	projected, err := projector.Project(row, p.registry)
	if err != nil {
		report.Failed++
		if errors.Is(err, apperrors.ErrIdentityConflict) {
			report.Conflicts++
		}
		log.Error("projection failed", zap.Int64("legacy_id", legacyID), zap.Error(err))
		return
	}
	report.Unresolved += len(projected.Unresolved)

	if err := p.target.Insert(ctx, table.TargetTable(), projected.Values); err != nil {
		// Legacy data is assumed dirty; one bad row must not stop the rest.
		report.Failed++
		log.Error("insert failed",
			zap.Int64("legacy_id", legacyID),
			zap.String("surrogate", projected.Surrogate),
			zap.Error(err))
		return
	}

	report.Migrated++
}
