package migrate

import (
	"context"
	"database/sql"
	"time"

	"github.com/pvginkel/gmtdata/pkg/schema"
)

type (
	// Generator drives a migration run: it verifies the connection, reads the
	// current structure, derives the target structure from the declarative
	// model, computes the difference, and translates every change into
	// dialect-specific script fragments.
	//
	// A Generator is configured once and may be run multiple times; all
	// per-run state (buffer, snapshots, difference) is local to Run.
	Generator struct {
		model   *schema.Schema
		dialect Dialect
		clock   func() time.Time
	}

	// GeneratorConfig contains the options for creating a Generator.
	GeneratorConfig struct {
		// Model is the already-parsed declarative schema description
		Model *schema.Schema

		// Dialect supplies every database-specific decision
		Dialect Dialect

		// Clock overrides the timestamp source for the script header
		Clock func() time.Time
	}

	// Result carries the outcome of a successful run: the complete fragment
	// sequence plus the snapshots and difference it was generated from.
	Result struct {
		Statements []Statement
		Current    *Snapshot
		Target     *Snapshot
		Difference *Difference
	}
)

// NewGenerator creates a Generator for the given model and dialect.
//
// Example:
//
//	gen := migrate.NewGenerator(migrate.GeneratorConfig{
//		Model:   model,
//		Dialect: mysql.New(),
//	})
//
//	result, err := gen.Run(ctx, db, migrate.Options{})
func NewGenerator(cfg GeneratorConfig) *Generator {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Generator{
		model:   cfg.Model,
		dialect: cfg.Dialect,
		clock:   clock,
	}
}

// Run executes one migration run against the given connection and returns
// the complete, ordered fragment sequence.
//
// The run is strictly sequential: verify connection, emit the header, read
// the current snapshot, derive the target snapshot, diff, translate changes.
// Any failure aborts the run with a wrapped error and no partial output is
// ever returned. Schema-authoring mistakes surface as SchemaErrors during
// derivation; everything else is wrapped in a MigrationError carrying the
// original cause.
func (g *Generator) Run(ctx context.Context, db *sql.DB, opts Options) (*Result, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, NewMigrationError("cannot open connection", err)
	}

	buf := NewBuffer(g.dialect.StatementSeparator())
	g.writeHeader(buf)

	current, err := g.dialect.NewSchemaReader(db, g.model.Name).Read(ctx)
	if err != nil {
		return nil, NewMigrationError("failed to read current schema", err)
	}

	target, err := SnapshotFromModel(g.model, g.dialect)
	if err != nil {
		return nil, err
	}

	diff := Diff(current, target, opts)

	if !diff.Empty() {
		if err := g.dialect.WriteProlog(buf); err != nil {
			return nil, NewMigrationError("failed to write prolog", err)
		}

		for _, change := range diff.Changes {
			if err := g.dialect.WriteChange(buf, change); err != nil {
				return nil, NewMigrationError("failed to apply changes", err)
			}
		}
	}

	return &Result{
		Statements: buf.Statements(),
		Current:    current,
		Target:     target,
		Difference: diff,
	}, nil
}

// writeHeader emits the unconditional script header: a generated-by comment,
// a generation timestamp, and the dialect's select-database text. The
// select-database line is emitted as a comment fragment so the script replays
// cleanly regardless of which session settings the caller controls.
func (g *Generator) writeHeader(buf *Buffer) {
	buf.Comment(g.dialect.EscapeComment("Automatically generated migration script"))
	buf.Comment(g.dialect.EscapeComment("Generated at " + g.clock().UTC().Format(time.RFC1123)))
	buf.BlankLine()
	buf.Comment(g.dialect.EscapeComment(g.dialect.UseStatement(g.model.Name)))
	buf.BlankLine()
}
