package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/pvginkel/gmtdata/pkg/drivers"
	"github.com/pvginkel/gmtdata/pkg/migrate"
	"github.com/pvginkel/gmtdata/pkg/schema"
)

// validate creates the CLI command that checks the declarative schema
// definition without touching the database. It runs the same projection the
// generator uses, so every schema-authoring mistake the diff would hit shows
// up here.
func validate() *cli.Command {
	return &cli.Command{
		Name:   "validate",
		Usage:  "Check the schema definition for errors",
		Before: requireConfig,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			model, err := schema.ParseFile(currentConfig.SchemaFile)
			if err != nil {
				return err
			}

			driver, err := drivers.Get(currentConfig.Driver)
			if err != nil {
				return err
			}

			snapshot, err := migrate.SnapshotFromModel(model, driver.Dialect)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.Writer, "Schema '%s' is valid (%d tables)\n",
				snapshot.Database, len(snapshot.Tables))
			return nil
		},
	}
}
