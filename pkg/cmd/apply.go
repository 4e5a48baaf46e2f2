package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/pvginkel/gmtdata/pkg/drivers"
	"github.com/pvginkel/gmtdata/pkg/executor"
	"github.com/pvginkel/gmtdata/pkg/migrate"
)

// apply creates the CLI command that generates the migration script and
// immediately executes it against the configured database.
func apply() *cli.Command {
	return &cli.Command{
		Name:   "apply",
		Usage:  "Generate the migration script and execute it",
		Before: requireConfig,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			driver, err := drivers.Get(currentConfig.Driver)
			if err != nil {
				return err
			}

			db, err := driver.Open(currentConfig.ConnectionString)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			// Prolog statements like SET FOREIGN_KEY_CHECKS are session
			// scoped, so the whole script must run on one connection
			conn, err := db.Conn(ctx)
			if err != nil {
				return errors.Wrap(err, "failed to acquire connection")
			}
			defer func() { _ = conn.Close() }()

			var applied int
			exec := executor.New(executorConfig(), func(statements []migrate.Statement) error {
				return executeStatements(ctx, conn, statements, &applied)
			})

			if _, err := exec.Execute(ctx); err != nil {
				return err
			}

			if applied == 0 {
				fmt.Fprintln(cmd.Writer, "Database is up to date")
			} else {
				fmt.Fprintf(cmd.Writer, "Applied %d statements\n", applied)
			}
			return nil
		},
	}
}

func executeStatements(ctx context.Context, conn *sql.Conn, statements []migrate.Statement, applied *int) error {
	for _, stmt := range migrate.ExecutableStatements(statements) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to execute statement: %s", stmt)
		}
		*applied++
	}
	return nil
}
