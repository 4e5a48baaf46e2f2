package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/pvginkel/gmtdata/pkg/consts"
	"github.com/pvginkel/gmtdata/pkg/executor"
	"github.com/pvginkel/gmtdata/pkg/migrate"
)

// diff creates the CLI command that generates the migration script by
// comparing the live database structure with the declared schema.
func diff() *cli.Command {
	return &cli.Command{
		Name:   "diff",
		Usage:  "Generate the migration script for the configured database",
		Before: requireConfig,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the script to a file instead of stdout",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var script string
			exec := executor.New(executorConfig(), func(statements []migrate.Statement) error {
				script = migrate.Script(statements)
				return nil
			})

			result, err := exec.Execute(ctx)
			if err != nil {
				return err
			}

			if output := cmd.String("output"); output != "" {
				if err := os.WriteFile(output, []byte(script), consts.ModeFile); err != nil {
					return errors.Wrapf(err, "failed to write script to %s", output)
				}
				fmt.Fprintf(cmd.Writer, "Wrote %s (%d changes)\n", output, len(result.Difference.Changes))
				return nil
			}

			fmt.Fprint(cmd.Writer, script)
			return nil
		},
	}
}

func executorConfig() executor.Config {
	return executor.Config{
		SchemaFile:             currentConfig.SchemaFile,
		ConnectionString:       currentConfig.ConnectionString,
		NoConstraintsOrIndexes: currentConfig.NoConstraintsOrIndexes,
		Driver:                 currentConfig.Driver,
	}
}
