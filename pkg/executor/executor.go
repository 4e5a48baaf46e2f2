// Package executor runs end-to-end migrations: it loads the declarative
// model, connects through the configured driver, generates the migration
// script, and hands the finished fragment sequence to a caller-supplied
// serialization callback.
package executor

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pvginkel/gmtdata/pkg/drivers"
	"github.com/pvginkel/gmtdata/pkg/migrate"
	"github.com/pvginkel/gmtdata/pkg/schema"
)

type (
	// Config contains the options for one executor.
	Config struct {
		// SchemaFile is the path to the declarative schema definition
		SchemaFile string

		// ConnectionString is the target database connection
		ConnectionString string

		// NoConstraintsOrIndexes suppresses foreign key and index operations
		NoConstraintsOrIndexes bool

		// Driver selects the dialect generator/reader pair (e.g. "mysql")
		Driver string
	}

	// SerializeFunc receives the complete fragment sequence of a successful
	// run. It is called exactly once per successful run and never with a
	// partial sequence; it owns writing, displaying or executing the script.
	SerializeFunc func(statements []migrate.Statement) error

	// Executor wires configuration, driver selection and the generator into
	// one runnable unit.
	Executor struct {
		cfg       Config
		serialize SerializeFunc
		logger    *slog.Logger
	}
)

// New creates an Executor for the given configuration and serialization
// callback.
//
// Example:
//
//	exec := executor.New(executor.Config{
//		SchemaFile:       "db/schema.gmt",
//		ConnectionString: "root@tcp(localhost:3306)/webshop",
//		Driver:           "mysql",
//	}, func(statements []migrate.Statement) error {
//		return migrate.WriteScript(os.Stdout, statements)
//	})
//
//	result, err := exec.Execute(ctx)
func New(cfg Config, serialize SerializeFunc) *Executor {
	return &Executor{
		cfg:       cfg,
		serialize: serialize,
		logger:    slog.Default(),
	}
}

// Execute performs one migration run. The serialization callback is invoked
// exactly once, after the run has fully succeeded; any failure before that
// point means the callback is never called.
func (e *Executor) Execute(ctx context.Context) (*migrate.Result, error) {
	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID, "driver", e.cfg.Driver)

	logger.Info("starting migration run", "schema_file", e.cfg.SchemaFile)

	model, err := schema.ParseFile(e.cfg.SchemaFile)
	if err != nil {
		return nil, migrate.NewSchemaError("failed to load schema definition", err)
	}

	driver, err := drivers.Get(e.cfg.Driver)
	if err != nil {
		return nil, migrate.NewMigrationError("cannot select driver", err)
	}

	db, err := driver.Open(e.cfg.ConnectionString)
	if err != nil {
		return nil, migrate.NewMigrationError("cannot open connection", err)
	}
	defer func() { _ = db.Close() }()

	gen := migrate.NewGenerator(migrate.GeneratorConfig{
		Model:   model,
		Dialect: driver.Dialect,
	})

	result, err := gen.Run(ctx, db, migrate.Options{
		NoConstraintsOrIndexes: e.cfg.NoConstraintsOrIndexes,
	})
	if err != nil {
		logger.Error("migration run failed", "err", err)
		return nil, err
	}

	logger.Info("migration run complete",
		"changes", len(result.Difference.Changes),
		"fragments", len(result.Statements))

	if e.serialize != nil {
		if err := e.serialize(result.Statements); err != nil {
			return nil, migrate.NewMigrationError("serialization callback failed", err)
		}
	}

	return result, nil
}
