package migrate

import "sort"

const (
	// ChangeCreateTable indicates a table needs to be created
	ChangeCreateTable ChangeKind = "CREATE TABLE"
	// ChangeDropTable indicates a table needs to be dropped
	ChangeDropTable ChangeKind = "DROP TABLE"
	// ChangeAddColumn indicates a column needs to be added
	ChangeAddColumn ChangeKind = "ADD COLUMN"
	// ChangeDropColumn indicates a column needs to be dropped
	ChangeDropColumn ChangeKind = "DROP COLUMN"
	// ChangeAlterColumnType indicates a column's type, length or character set
	// needs to change
	ChangeAlterColumnType ChangeKind = "ALTER COLUMN TYPE"
	// ChangeAlterColumnAttrs indicates only a column's nullability or default
	// needs to change
	ChangeAlterColumnAttrs ChangeKind = "ALTER COLUMN ATTRS"
	// ChangeAlterPrimaryKey indicates a table's identifying key needs to change
	ChangeAlterPrimaryKey ChangeKind = "ALTER PRIMARY KEY"
	// ChangeAddIndex indicates a secondary index needs to be created
	ChangeAddIndex ChangeKind = "ADD INDEX"
	// ChangeDropIndex indicates a secondary index needs to be dropped
	ChangeDropIndex ChangeKind = "DROP INDEX"
	// ChangeAddForeignKey indicates a foreign key needs to be created
	ChangeAddForeignKey ChangeKind = "ADD FOREIGN KEY"
	// ChangeDropForeignKey indicates a foreign key needs to be dropped
	ChangeDropForeignKey ChangeKind = "DROP FOREIGN KEY"
)

type (
	// ChangeKind identifies the type of structural change.
	ChangeKind string

	// Change is one structural change operation. Which pointer fields are set
	// depends on the kind: Table for table operations, Column/CurrentColumn
	// for column operations, Index and ForeignKey for their respective kinds.
	Change struct {
		Kind      ChangeKind
		TableName string

		// Table is the target table for creates and primary key alters, the
		// current table for drops
		Table *Table

		// CurrentTable is the live table for primary key alters, so dialects
		// can tell a key replacement from a first-time key
		CurrentTable *Table

		// Column is the target column definition for add/alter operations
		Column *Column

		// CurrentColumn is the live column definition for alter/drop operations
		CurrentColumn *Column

		Index      *Index
		ForeignKey *ForeignKey

		// TableCreated reports whether TableName is created earlier in this
		// same difference. Dialects that can only declare constraints inside
		// CREATE TABLE use this to tell inlined constraints from alters.
		TableCreated bool
	}

	// Options parameterizes the diff computation.
	Options struct {
		// NoConstraintsOrIndexes suppresses all foreign key and index
		// operations
		NoConstraintsOrIndexes bool
	}

	// Difference is the ordered list of changes that transforms the current
	// snapshot into the target snapshot. Applying the changes sequentially
	// never violates referential constraints: foreign key drops precede the
	// drop of either endpoint, and foreign key creates follow the creation of
	// both endpoint tables.
	Difference struct {
		Changes []*Change
	}
)

// Empty reports whether no changes are needed.
func (d *Difference) Empty() bool { return len(d.Changes) == 0 }

// Diff computes the ordered set of structural changes that turns current into
// target. Two structurally identical snapshots yield an empty difference.
//
// Change ordering:
//  1. foreign key drops (dependents before their targets)
//  2. index drops
//  3. table creates
//  4. per-table column and primary key changes
//  5. table drops
//  6. index creates
//  7. foreign key creates (after every endpoint table exists)
func Diff(current, target *Snapshot, opts Options) *Difference {
	d := &Difference{}

	currentNames := sortedTableNames(current)
	targetNames := sortedTableNames(target)

	if !opts.NoConstraintsOrIndexes {
		for _, name := range currentNames {
			d.dropForeignKeys(current.Tables[name], target.Tables[name])
		}
		for _, name := range currentNames {
			d.dropIndexes(current.Tables[name], target.Tables[name])
		}
	}

	for _, name := range targetNames {
		if _, ok := current.Tables[name]; !ok {
			d.add(&Change{Kind: ChangeCreateTable, TableName: name, Table: target.Tables[name]})
		}
	}

	for _, name := range targetNames {
		if currentTable, ok := current.Tables[name]; ok {
			d.alterTable(currentTable, target.Tables[name])
		}
	}

	for _, name := range currentNames {
		if _, ok := target.Tables[name]; !ok {
			d.add(&Change{Kind: ChangeDropTable, TableName: name, Table: current.Tables[name]})
		}
	}

	if !opts.NoConstraintsOrIndexes {
		for _, name := range targetNames {
			d.addIndexes(current.Tables[name], target.Tables[name])
		}
		for _, name := range targetNames {
			d.addForeignKeys(current.Tables[name], target.Tables[name])
		}
	}

	return d
}

func (d *Difference) add(c *Change) {
	d.Changes = append(d.Changes, c)
}

// dropForeignKeys emits drops for every foreign key of the current table that
// is absent (or different) in the target, including all foreign keys of
// tables that are going away.
func (d *Difference) dropForeignKeys(currentTable, targetTable *Table) {
	for _, fk := range currentTable.ForeignKeys {
		if targetTable != nil && containsForeignKey(targetTable.ForeignKeys, fk) {
			continue
		}
		d.add(&Change{Kind: ChangeDropForeignKey, TableName: currentTable.Name, ForeignKey: fk})
	}
}

func (d *Difference) dropIndexes(currentTable, targetTable *Table) {
	for _, idx := range currentTable.Indexes {
		if targetTable != nil && containsIndex(targetTable.Indexes, idx) {
			continue
		}
		if targetTable == nil {
			// Dropping the table drops its indexes
			continue
		}
		d.add(&Change{Kind: ChangeDropIndex, TableName: currentTable.Name, Index: idx})
	}
}

func (d *Difference) addIndexes(currentTable, targetTable *Table) {
	for _, idx := range targetTable.Indexes {
		if currentTable != nil && containsIndex(currentTable.Indexes, idx) {
			continue
		}
		d.add(&Change{Kind: ChangeAddIndex, TableName: targetTable.Name, Index: idx, TableCreated: currentTable == nil})
	}
}

func (d *Difference) addForeignKeys(currentTable, targetTable *Table) {
	for _, fk := range targetTable.ForeignKeys {
		if currentTable != nil && containsForeignKey(currentTable.ForeignKeys, fk) {
			continue
		}
		d.add(&Change{Kind: ChangeAddForeignKey, TableName: targetTable.Name, ForeignKey: fk, TableCreated: currentTable == nil})
	}
}

// alterTable emits column adds, alters and drops, plus a primary key change
// when the identifying key differs. Adds follow target column order so that
// generated scripts are stable; alters distinguish attribute-only changes
// from type changes.
func (d *Difference) alterTable(currentTable, targetTable *Table) {
	for _, targetCol := range targetTable.Columns {
		currentCol := currentTable.Column(targetCol.Name)
		switch {
		case currentCol == nil:
			d.add(&Change{Kind: ChangeAddColumn, TableName: targetTable.Name, Column: targetCol})
		case !currentCol.TypeEqual(targetCol):
			d.add(&Change{Kind: ChangeAlterColumnType, TableName: targetTable.Name, Column: targetCol, CurrentColumn: currentCol})
		case !currentCol.AttrsEqual(targetCol):
			d.add(&Change{Kind: ChangeAlterColumnAttrs, TableName: targetTable.Name, Column: targetCol, CurrentColumn: currentCol})
		}
	}

	for _, currentCol := range currentTable.Columns {
		if targetTable.Column(currentCol.Name) == nil {
			d.add(&Change{Kind: ChangeDropColumn, TableName: targetTable.Name, CurrentColumn: currentCol})
		}
	}

	if !stringsEqual(currentTable.PrimaryKey, targetTable.PrimaryKey) {
		d.add(&Change{Kind: ChangeAlterPrimaryKey, TableName: targetTable.Name, Table: targetTable, CurrentTable: currentTable})
	}
}

func containsIndex(indexes []*Index, idx *Index) bool {
	for _, other := range indexes {
		if other.Equal(idx) {
			return true
		}
	}
	return false
}

func containsForeignKey(fks []*ForeignKey, fk *ForeignKey) bool {
	for _, other := range fks {
		if other.Equal(fk) {
			return true
		}
	}
	return false
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedTableNames(s *Snapshot) []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
