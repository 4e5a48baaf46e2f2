// Package drivers binds dialect names to their database/sql driver and
// migrate.Dialect implementation. Importing this package registers the
// underlying drivers.
package drivers

import (
	"database/sql"
	"sort"

	"github.com/pkg/errors"

	// Database drivers register themselves with database/sql
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pvginkel/gmtdata/pkg/migrate"
	"github.com/pvginkel/gmtdata/pkg/migrate/mysql"
	"github.com/pvginkel/gmtdata/pkg/migrate/postgres"
	"github.com/pvginkel/gmtdata/pkg/migrate/sqlite"
)

// ErrUnknownDriver is returned when no driver is registered under the
// requested name.
var ErrUnknownDriver = errors.New("unknown driver")

// Driver couples a dialect with the database/sql driver that connects to it.
type Driver struct {
	// Name is the identifier used in configuration (e.g. "mysql")
	Name string

	// SQLDriverName is the database/sql registration name
	SQLDriverName string

	// Dialect implements the DDL generation rules
	Dialect migrate.Dialect
}

var registry = map[string]*Driver{}

func init() {
	Register(&Driver{Name: "mysql", SQLDriverName: "mysql", Dialect: mysql.New()})
	Register(&Driver{Name: "postgres", SQLDriverName: "pgx", Dialect: postgres.New()})
	Register(&Driver{Name: "sqlite", SQLDriverName: "sqlite3", Dialect: sqlite.New()})
}

// Register adds a driver to the registry, replacing any driver with the same
// name.
func Register(d *Driver) {
	registry[d.Name] = d
}

// Get returns the driver registered under the given name.
func Get(name string) (*Driver, error) {
	d, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDriver, "'%s'", name)
	}
	return d, nil
}

// Names returns the registered driver names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open opens a database handle through the named driver.
func (d *Driver) Open(connectionString string) (*sql.DB, error) {
	db, err := sql.Open(d.SQLDriverName, connectionString)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s connection", d.Name)
	}
	return db, nil
}
