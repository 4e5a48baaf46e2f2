// Package schema defines the declarative schema model and its parser. The
// model describes the desired structure of a database; the migrate package
// projects it into a snapshot and diffs it against the live structure.
package schema

type (
	// Schema is the root of the declarative model: a named database schema
	// with an optional default character set and a set of tables.
	//
	// The textual form is a small block DSL:
	//
	//	schema webshop {
	//	    charset 'utf8mb4'
	//
	//	    table users {
	//	        column id int primary auto_increment
	//	        column email varchar(255)
	//	        column bio text nullable
	//	        index idx_users_email (email) unique
	//	    }
	//	}
	Schema struct {
		Name    string   `parser:"'schema' @Ident '{'"`
		Charset *string  `parser:"('charset' @String)?"`
		Tables  []*Table `parser:"@@* '}'"`
	}

	// Table declares one table and its elements.
	Table struct {
		Name     string          `parser:"'table' @Ident '{'"`
		Elements []*TableElement `parser:"@@* '}'"`
	}

	// TableElement is a single declaration inside a table block.
	TableElement struct {
		Column     *Column     `parser:"@@"`
		Index      *Index      `parser:"| @@"`
		ForeignKey *ForeignKey `parser:"| @@"`
	}

	// Column declares a column: a name, a SQL type name (resolved to a
	// canonical type during projection), an optional length/scale, and flags.
	Column struct {
		Name     string          `parser:"'column' @Ident"`
		TypeName string          `parser:"@Ident"`
		Length   *ColumnLength   `parser:"('(' @@ ')')?"`
		Options  []*ColumnOption `parser:"@@*"`
	}

	// ColumnLength carries a length and an optional decimal scale.
	ColumnLength struct {
		Length int  `parser:"@Number"`
		Scale  *int `parser:"(',' @Number)?"`
	}

	// ColumnOption is one of the bare column modifiers. The values option
	// lists the members of an enumeration column.
	ColumnOption struct {
		Primary       bool     `parser:"@'primary'"`
		AutoIncrement bool     `parser:"| @'auto_increment'"`
		Nullable      bool     `parser:"| @'nullable'"`
		Default       *string  `parser:"| ('default' @String)"`
		Charset       *string  `parser:"| ('charset' @String)"`
		Values        []string `parser:"| ('values' '(' @String (',' @String)* ')')"`
	}

	// Index declares a secondary index over one or more columns.
	Index struct {
		Name    string   `parser:"'index' @Ident"`
		Columns []string `parser:"'(' @Ident (',' @Ident)* ')'"`
		Unique  bool     `parser:"@'unique'?"`
	}

	// ForeignKey declares a relationship to another table.
	ForeignKey struct {
		Name       string   `parser:"'foreign' 'key' @Ident"`
		Columns    []string `parser:"'(' @Ident (',' @Ident)* ')'"`
		RefTable   string   `parser:"'references' @Ident"`
		RefColumns []string `parser:"'(' @Ident (',' @Ident)* ')'"`
	}
)

// Table returns the table with the given name, or nil.
func (s *Schema) Table(name string) *Table {
	for _, t := range s.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Columns returns the table's column declarations in declaration order.
func (t *Table) Columns() []*Column {
	var cols []*Column
	for _, e := range t.Elements {
		if e.Column != nil {
			cols = append(cols, e.Column)
		}
	}
	return cols
}

// Indexes returns the table's index declarations.
func (t *Table) Indexes() []*Index {
	var indexes []*Index
	for _, e := range t.Elements {
		if e.Index != nil {
			indexes = append(indexes, e.Index)
		}
	}
	return indexes
}

// ForeignKeys returns the table's foreign key declarations.
func (t *Table) ForeignKeys() []*ForeignKey {
	var fks []*ForeignKey
	for _, e := range t.Elements {
		if e.ForeignKey != nil {
			fks = append(fks, e.ForeignKey)
		}
	}
	return fks
}

// PrimaryKey returns the names of the columns marked primary, in declaration
// order.
func (t *Table) PrimaryKey() []string {
	var key []string
	for _, c := range t.Columns() {
		if c.IsPrimary() {
			key = append(key, c.Name)
		}
	}
	return key
}

// IsPrimary reports whether the column carries the primary modifier.
func (c *Column) IsPrimary() bool {
	for _, o := range c.Options {
		if o.Primary {
			return true
		}
	}
	return false
}

// IsAutoIncrement reports whether the column carries the auto_increment
// modifier.
func (c *Column) IsAutoIncrement() bool {
	for _, o := range c.Options {
		if o.AutoIncrement {
			return true
		}
	}
	return false
}

// IsNullable reports whether the column carries the nullable modifier.
func (c *Column) IsNullable() bool {
	for _, o := range c.Options {
		if o.Nullable {
			return true
		}
	}
	return false
}

// DefaultValue returns the declared default, or nil.
func (c *Column) DefaultValue() *string {
	for _, o := range c.Options {
		if o.Default != nil {
			return o.Default
		}
	}
	return nil
}

// EnumValues returns the declared enumeration members, or nil.
func (c *Column) EnumValues() []string {
	for _, o := range c.Options {
		if len(o.Values) > 0 {
			return o.Values
		}
	}
	return nil
}

// CharsetName returns the column-level character set, or the empty string.
func (c *Column) CharsetName() string {
	for _, o := range c.Options {
		if o.Charset != nil {
			return *o.Charset
		}
	}
	return ""
}
