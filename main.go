// legacymigrate re-projects a legacy relational dump (integer primary keys,
// Unix-epoch timestamps, MySQL-style INSERT statements) into the new schema:
// surrogate UUID primary keys, ISO-8601 timestamps, renamed columns. Tables
// migrate in dependency order; the identity map document carries legacy-ID to
// surrogate-ID mappings between runs, so the order can be split across
// independent invocations.
//
// Usage: legacymigrate [-dump path] [-kinds bank,user,...]
//
// Destination connection: standard PG* environment variables, or config.yaml.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for schema migrations
	"go.uber.org/zap"

	"github.com/shoplink/legacymigrate/pkg/config"
	"github.com/shoplink/legacymigrate/pkg/database"
	"github.com/shoplink/legacymigrate/pkg/identity"
	"github.com/shoplink/legacymigrate/pkg/logging"
	"github.com/shoplink/legacymigrate/pkg/projection"
	"github.com/shoplink/legacymigrate/pkg/runner"
	"github.com/shoplink/legacymigrate/pkg/writer"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	dumpFlag := flag.String("dump", "", "legacy dump file (overrides config)")
	kindsFlag := flag.String("kinds", "", "comma-separated entity kinds to migrate (overrides config, empty = all)")
	flag.Parse()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dumpFlag != "" {
		cfg.DumpPath = *dumpFlag
	}
	if *kindsFlag != "" {
		cfg.Kinds = *kindsFlag
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("Migration pass failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	logger.Info("Starting migration pass",
		zap.String("version", cfg.Version),
		zap.String("dump", cfg.DumpPath),
		zap.String("identity_map", cfg.IdentityMapPath),
		zap.String("destination", logging.SanitizeConnectionString(cfg.Database.ConnectionString())))

	kinds, err := resolveKinds(cfg.KindList())
	if err != nil {
		return err
	}

	dumpText, err := os.ReadFile(cfg.DumpPath)
	if err != nil {
		return fmt.Errorf("failed to read dump file: %w", err)
	}

	// Destination schema first: golang-migrate wants a database/sql handle.
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open destination: %w", err)
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		sqlDB.Close()
		return err
	}
	sqlDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	registry, err := identity.Load(cfg.IdentityMapPath)
	if err != nil {
		return err
	}
	logger.Info("Loaded identity map", zap.Int("entries", registry.Size()))

	pass := runner.NewPass(string(dumpText), registry, writer.NewPostgresWriter(db), logger)
	reports, runErr := pass.Run(ctx, kinds)

	// The map is flushed exactly once per pass, even when a table aborted:
	// mappings registered for successfully processed kinds must survive.
	if err := registry.Save(cfg.IdentityMapPath); err != nil {
		return err
	}
	logger.Info("Saved identity map", zap.Int("entries", registry.Size()))

	printReports(reports)
	return runErr
}

func resolveKinds(names []string) ([]identity.Kind, error) {
	var kinds []identity.Kind
	for _, name := range names {
		kind := identity.Kind(name)
		if projection.TableForKind(kind) == nil {
			return nil, fmt.Errorf("unknown entity kind %q", name)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func printReports(reports []runner.Report) {
	fmt.Printf("%-15s %9s %9s %9s %12s %10s\n",
		"kind", "migrated", "skipped", "failed", "unresolved", "conflicts")
	for _, r := range reports {
		status := ""
		if r.Aborted != nil {
			status = "  ABORTED: " + r.Aborted.Error()
		}
		fmt.Printf("%-15s %9d %9d %9d %12d %10d%s\n",
			r.Kind, r.Migrated, r.Skipped, r.Failed, r.Unresolved, r.Conflicts, status)
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
