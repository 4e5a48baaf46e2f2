package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/pvginkel/gmtdata/pkg/drivers"
)

// driversCmd creates the CLI command listing the registered drivers.
func driversCmd() *cli.Command {
	return &cli.Command{
		Name:  "drivers",
		Usage: "List the supported database drivers",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			for _, name := range drivers.Names() {
				fmt.Fprintln(cmd.Writer, name)
			}
			return nil
		},
	}
}
