package migrate

import (
	"github.com/pvginkel/gmtdata/pkg/schema"
)

// charsetTypes lists the canonical types that carry a character set and
// therefore a collation.
var charsetTypes = map[DbType]bool{
	DbTypeString:      true,
	DbTypeFixedString: true,
	DbTypeText:        true,
	DbTypeTinyText:    true,
	DbTypeMediumText:  true,
	DbTypeLongText:    true,
	DbTypeEnumeration: true,
}

// SnapshotFromModel projects the declarative model into a normalized
// snapshot. The dialect participates so that collation decisions are
// dialect-specific during projection.
//
// All schema-authoring mistakes (unknown type names, missing required
// lengths, dangling foreign key references) surface here as SchemaErrors,
// before any DDL is generated.
func SnapshotFromModel(model *schema.Schema, d Dialect) (*Snapshot, error) {
	snapshot := NewSnapshot(model.Name)

	for _, modelTable := range model.Tables {
		table, err := tableFromModel(model, modelTable, d)
		if err != nil {
			return nil, err
		}
		snapshot.Tables[table.Name] = table
	}

	for _, table := range snapshot.Tables {
		for _, fk := range table.ForeignKeys {
			if _, ok := snapshot.Tables[fk.RefTable]; !ok {
				return nil, SchemaErrorf("foreign key '%s' on table '%s' references unknown table '%s'",
					fk.Name, table.Name, fk.RefTable)
			}
		}
	}

	return snapshot, nil
}

func tableFromModel(model *schema.Schema, modelTable *schema.Table, d Dialect) (*Table, error) {
	table := &Table{
		Name:       modelTable.Name,
		PrimaryKey: modelTable.PrimaryKey(),
	}

	for _, modelCol := range modelTable.Columns() {
		col, err := columnFromModel(model, modelTable, modelCol, d)
		if err != nil {
			return nil, err
		}
		table.Columns = append(table.Columns, col)
	}

	for _, modelIdx := range modelTable.Indexes() {
		table.Indexes = append(table.Indexes, &Index{
			Name:    modelIdx.Name,
			Columns: modelIdx.Columns,
			Unique:  modelIdx.Unique,
		})
	}

	for _, modelFk := range modelTable.ForeignKeys() {
		table.ForeignKeys = append(table.ForeignKeys, &ForeignKey{
			Name:       modelFk.Name,
			Columns:    modelFk.Columns,
			RefTable:   modelFk.RefTable,
			RefColumns: modelFk.RefColumns,
		})
	}

	return table, nil
}

func columnFromModel(model *schema.Schema, modelTable *schema.Table, modelCol *schema.Column, d Dialect) (*Column, error) {
	dbType, err := ParseDbType(modelCol.TypeName)
	if err != nil {
		return nil, err
	}

	needsLength, err := RequiresLength(dbType)
	if err != nil {
		return nil, err
	}
	if needsLength && modelCol.Length == nil {
		return nil, SchemaErrorf("column '%s.%s': type '%s' requires a length",
			modelTable.Name, modelCol.Name, modelCol.TypeName)
	}

	col := &Column{
		Name:          modelCol.Name,
		Type:          dbType,
		Nullable:      modelCol.IsNullable(),
		Default:       modelCol.DefaultValue(),
		AutoIncrement: modelCol.IsAutoIncrement(),
		EnumValues:    modelCol.EnumValues(),
	}

	if dbType == DbTypeEnumeration && len(col.EnumValues) == 0 {
		return nil, SchemaErrorf("column '%s.%s': enumeration types require a values list",
			modelTable.Name, modelCol.Name)
	}

	if modelCol.Length != nil {
		col.Length = modelCol.Length.Length
		if modelCol.Length.Scale != nil {
			col.Scale = *modelCol.Length.Scale
		}
	}

	// Fold the type into the dialect's storage shape first, so that charset
	// decisions apply to the type the dialect will actually report back
	d.NormalizeColumn(col)

	if charsetTypes[col.Type] {
		charset := modelCol.CharsetName()
		if charset == "" && model.Charset != nil {
			charset = *model.Charset
		}
		if charset != "" {
			collation, err := d.DefaultCollation(charset)
			if err != nil {
				return nil, NewSchemaError("cannot determine collation for column '"+modelTable.Name+"."+modelCol.Name+"'", err)
			}
			// Dialects that don't track per-column collation return the
			// empty string; those columns carry no charset in the snapshot
			if collation != "" {
				col.Charset = charset
				col.Collation = collation
			}
		}
	}

	return col, nil
}
