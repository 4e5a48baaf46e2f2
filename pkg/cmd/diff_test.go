package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/pvginkel/gmtdata/pkg/config"
	"github.com/pvginkel/gmtdata/pkg/consts"
)

const testSchema = `
schema webshop {
    table users {
        column id int primary
        column email varchar(255)
    }
}
`

// withTestConfig points the package-level configuration at a throwaway
// schema and an in-memory SQLite database for the duration of the test.
func withTestConfig(t *testing.T, schemaSource string) {
	t.Helper()

	schemaFile := filepath.Join(t.TempDir(), "schema.gmt")
	require.NoError(t, os.WriteFile(schemaFile, []byte(schemaSource), consts.ModeFile))

	previous := currentConfig
	currentConfig = &config.Config{
		Driver:           "sqlite",
		SchemaFile:       schemaFile,
		ConnectionString: ":memory:",
	}
	t.Cleanup(func() { currentConfig = previous })
}

func TestDiffCommand_WritesScriptToStdout(t *testing.T) {
	withTestConfig(t, testSchema)

	command := diff()

	var buf bytes.Buffer
	app := &cli.Command{
		Name:   "test",
		Flags:  command.Flags,
		Action: command.Action,
		Writer: &buf,
	}

	err := app.Run(context.Background(), []string{"test"})
	require.NoError(t, err)

	output := buf.String()
	require.Contains(t, output, "CREATE TABLE \"users\"")
	require.Contains(t, output, "-- Automatically generated migration script")
}

func TestDiffCommand_WritesScriptToFile(t *testing.T) {
	withTestConfig(t, testSchema)

	outputFile := filepath.Join(t.TempDir(), "migration.sql")
	command := diff()

	var buf bytes.Buffer
	app := &cli.Command{
		Name:   "test",
		Flags:  command.Flags,
		Action: command.Action,
		Writer: &buf,
	}

	err := app.Run(context.Background(), []string{"test", "--output", outputFile})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Wrote "+outputFile)

	script, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	require.Contains(t, string(script), "CREATE TABLE \"users\"")
}

func TestDiffCommand_InvalidSchema(t *testing.T) {
	withTestConfig(t, "schema broken {")

	command := diff()
	app := &cli.Command{
		Name:   "test",
		Flags:  command.Flags,
		Action: command.Action,
		Writer: &bytes.Buffer{},
	}

	err := app.Run(context.Background(), []string{"test"})
	require.Error(t, err)
}

func TestRequireConfig_MissingConfig(t *testing.T) {
	previous := currentConfig
	currentConfig = nil
	t.Cleanup(func() { currentConfig = previous })

	_, err := requireConfig(context.Background(), &cli.Command{})
	require.Error(t, err)
	require.Contains(t, err.Error(), consts.DefaultConfigFile)
}
