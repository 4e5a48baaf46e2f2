package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"

	"github.com/pvginkel/gmtdata/pkg/config"
	"github.com/pvginkel/gmtdata/pkg/consts"
)

var currentConfig *config.Config

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run creates and executes the main gmtdata CLI application with the given
// version and command-line arguments.
//
// The application looks for gmtdata.yaml in the working directory (or the
// file named by --config) and, when present, loads it as the project
// configuration used by the subcommands.
//
// Global Flags:
//   - --config, -c: Config file path (defaults to gmtdata.yaml)
func Run(p Params) {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	app := &cli.Command{
		Name:  "gmtdata",
		Usage: "A tool for declarative SQL schema migrations",
		Description: `gmtdata compares a declaratively specified database schema against the
live structure of the target database and generates the ordered DDL
script that brings the database in line with the declaration.`,
		Version: p.Version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "the gmtdata config file",
				Sources: cli.EnvVars("GMTDATA_CONFIG"),
				Value:   consts.DefaultConfigFile,
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			path := cmd.String("config")

			if _, err := os.Stat(path); os.IsNotExist(err) {
				return ctx, nil
			} else if err != nil {
				return ctx, err
			}

			cfg, err := config.LoadConfigFile(path)
			if err != nil {
				return ctx, err
			}

			currentConfig = cfg
			return ctx, nil
		},
		Commands: p.Commands,
	}

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			slog.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}

func requireConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if currentConfig == nil {
		return ctx, errors.Errorf("%s not found", consts.DefaultConfigFile)
	}

	if err := currentConfig.Validate(); err != nil {
		return ctx, err
	}

	return ctx, nil
}
