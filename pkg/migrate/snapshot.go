package migrate

import (
	"github.com/pvginkel/gmtdata/pkg/compare"
)

type (
	// Snapshot is a normalized description of a schema's structure at a point
	// in time. One snapshot is read from the live database per run, another is
	// derived from the declarative model; both are immutable for the run's
	// duration and compared structurally, never by identity.
	Snapshot struct {
		// Database is the schema/database name this snapshot describes
		Database string

		// Tables holds every table keyed by name
		Tables map[string]*Table
	}

	// Table describes one table: ordered columns, the identifying key,
	// secondary indexes, and outgoing foreign keys.
	Table struct {
		Name        string
		Columns     []*Column
		PrimaryKey  []string
		Indexes     []*Index
		ForeignKeys []*ForeignKey
	}

	// Column describes a single column in canonical terms.
	Column struct {
		Name          string
		Type          DbType
		Length        int // 0 when the type carries no length
		Scale         int // decimal scale
		Nullable      bool
		Default       *string
		AutoIncrement bool
		Charset       string
		Collation     string
		EnumValues    []string // members of an enumeration type, in order
	}

	// Index describes a secondary index over one or more columns.
	Index struct {
		Name    string
		Columns []string
		Unique  bool
	}

	// ForeignKey describes a relationship from local columns to columns of
	// another table.
	ForeignKey struct {
		Name       string
		Columns    []string
		RefTable   string
		RefColumns []string
	}
)

// NewSnapshot creates an empty snapshot for the given database name.
func NewSnapshot(database string) *Snapshot {
	return &Snapshot{Database: database, Tables: map[string]*Table{}}
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Equal reports whether two snapshots describe the same structure.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if eq, more := compare.NilCheck(s, other); !more {
		return eq
	}

	if len(s.Tables) != len(other.Tables) {
		return false
	}
	for name, table := range s.Tables {
		if !table.Equal(other.Tables[name]) {
			return false
		}
	}
	return true
}

// Equal reports whether two tables are structurally identical. Column order
// is significant; index and foreign key order is not.
func (t *Table) Equal(other *Table) bool {
	if eq, more := compare.NilCheck(t, other); !more {
		return eq
	}

	if t.Name != other.Name {
		return false
	}

	return compare.Slices(t.Columns, other.Columns, func(a, b *Column) bool { return a.Equal(b) }) &&
		compare.Slices(t.PrimaryKey, other.PrimaryKey, func(a, b string) bool { return a == b }) &&
		compare.SlicesUnordered(t.Indexes, other.Indexes, func(a, b *Index) bool { return a.Equal(b) }) &&
		compare.SlicesUnordered(t.ForeignKeys, other.ForeignKeys, func(a, b *ForeignKey) bool { return a.Equal(b) })
}

// Equal reports whether two columns are structurally identical.
func (c *Column) Equal(other *Column) bool {
	if eq, more := compare.NilCheck(c, other); !more {
		return eq
	}

	return c.Name == other.Name &&
		c.Type == other.Type &&
		c.Length == other.Length &&
		c.Scale == other.Scale &&
		c.Nullable == other.Nullable &&
		c.AutoIncrement == other.AutoIncrement &&
		c.Charset == other.Charset &&
		c.Collation == other.Collation &&
		compare.Pointers(c.Default, other.Default) &&
		compare.Slices(c.EnumValues, other.EnumValues, func(a, b string) bool { return a == b })
}

// AttrsEqual reports whether two columns agree on nullability and default,
// ignoring type, length and the remaining attributes. The differ uses this to
// distinguish attribute-only alters from type alters, since some dialects
// require different statement shapes for each.
func (c *Column) AttrsEqual(other *Column) bool {
	return c.Nullable == other.Nullable && compare.Pointers(c.Default, other.Default)
}

// TypeEqual reports whether two columns agree on type, length, scale and
// character set.
func (c *Column) TypeEqual(other *Column) bool {
	return c.Type == other.Type &&
		c.Length == other.Length &&
		c.Scale == other.Scale &&
		c.AutoIncrement == other.AutoIncrement &&
		c.Charset == other.Charset &&
		c.Collation == other.Collation &&
		compare.Slices(c.EnumValues, other.EnumValues, func(a, b string) bool { return a == b })
}

// Equal reports whether two indexes are structurally identical.
func (i *Index) Equal(other *Index) bool {
	if eq, more := compare.NilCheck(i, other); !more {
		return eq
	}

	return i.Name == other.Name &&
		i.Unique == other.Unique &&
		compare.Slices(i.Columns, other.Columns, func(a, b string) bool { return a == b })
}

// Equal reports whether two foreign keys are structurally identical.
func (f *ForeignKey) Equal(other *ForeignKey) bool {
	if eq, more := compare.NilCheck(f, other); !more {
		return eq
	}

	return f.Name == other.Name &&
		f.RefTable == other.RefTable &&
		compare.Slices(f.Columns, other.Columns, func(a, b string) bool { return a == b }) &&
		compare.Slices(f.RefColumns, other.RefColumns, func(a, b string) bool { return a == b })
}
