package migrate

import "strings"

// DbType is the canonical, dialect-independent column type. The enumeration
// is closed: every dialect-specific type name maps to exactly one DbType, and
// values outside this set are treated as defects rather than user errors.
type DbType string

const (
	DbTypeUnset       DbType = ""
	DbTypeTinyInt     DbType = "tinyint"
	DbTypeSmallInt    DbType = "smallint"
	DbTypeMediumInt   DbType = "mediumint"
	DbTypeInt         DbType = "int"
	DbTypeBigInt      DbType = "bigint"
	DbTypeFloat       DbType = "float"
	DbTypeDouble      DbType = "double"
	DbTypeDecimal     DbType = "decimal"
	DbTypeString      DbType = "string"
	DbTypeFixedString DbType = "fixed_string"
	DbTypeText        DbType = "text"
	DbTypeTinyText    DbType = "tiny_text"
	DbTypeMediumText  DbType = "medium_text"
	DbTypeLongText    DbType = "long_text"
	DbTypeBinary      DbType = "binary"
	DbTypeFixedBinary DbType = "fixed_binary"
	DbTypeBlob        DbType = "blob"
	DbTypeTinyBlob    DbType = "tiny_blob"
	DbTypeMediumBlob  DbType = "medium_blob"
	DbTypeLongBlob    DbType = "long_blob"
	DbTypeDate        DbType = "date"
	DbTypeDateTime    DbType = "datetime"
	DbTypeTimestamp   DbType = "timestamp"
	DbTypeTime        DbType = "time"
	DbTypeYear        DbType = "year"
	DbTypeEnumeration DbType = "enum"
	DbTypeGuid        DbType = "guid"
)

// lengthByType is the fixed answer to "does this type take an explicit
// length/precision specifier in DDL". Only the variable and fixed length
// string/binary families do. DbTypeUnset is intentionally absent so that it
// falls through to the defect path.
var lengthByType = map[DbType]bool{
	DbTypeTinyInt:     false,
	DbTypeSmallInt:    false,
	DbTypeMediumInt:   false,
	DbTypeInt:         false,
	DbTypeBigInt:      false,
	DbTypeFloat:       false,
	DbTypeDouble:      false,
	DbTypeDecimal:     false,
	DbTypeString:      true,
	DbTypeFixedString: true,
	DbTypeText:        false,
	DbTypeTinyText:    false,
	DbTypeMediumText:  false,
	DbTypeLongText:    false,
	DbTypeBinary:      true,
	DbTypeFixedBinary: true,
	DbTypeBlob:        false,
	DbTypeTinyBlob:    false,
	DbTypeMediumBlob:  false,
	DbTypeLongBlob:    false,
	DbTypeDate:        false,
	DbTypeDateTime:    false,
	DbTypeTimestamp:   false,
	DbTypeTime:        false,
	DbTypeYear:        false,
	DbTypeEnumeration: false,
	DbTypeGuid:        false,
}

// dbTypeAliases maps the common SQL spellings (lowercased) onto the canonical
// types. New aliases are a table edit, not new code.
var dbTypeAliases = map[string]DbType{
	"int":        DbTypeInt,
	"integer":    DbTypeInt,
	"double":     DbTypeDouble,
	"real":       DbTypeDouble,
	"decimal":    DbTypeDecimal,
	"dec":        DbTypeDecimal,
	"numeric":    DbTypeDecimal,
	"bool":       DbTypeTinyInt,
	"boolean":    DbTypeTinyInt,
	"tinyint":    DbTypeTinyInt,
	"smallint":   DbTypeSmallInt,
	"mediumint":  DbTypeMediumInt,
	"bigint":     DbTypeBigInt,
	"float":      DbTypeFloat,
	"varchar":    DbTypeString,
	"text":       DbTypeText,
	"blob":       DbTypeBlob,
	"datetime":   DbTypeDateTime,
	"date":       DbTypeDate,
	"timestamp":  DbTypeTimestamp,
	"time":       DbTypeTime,
	"year":       DbTypeYear,
	"char":       DbTypeFixedString,
	"binary":     DbTypeFixedBinary,
	"varbinary":  DbTypeBinary,
	"tinyblob":   DbTypeTinyBlob,
	"tinytext":   DbTypeTinyText,
	"mediumblob": DbTypeMediumBlob,
	"mediumtext": DbTypeMediumText,
	"longblob":   DbTypeLongBlob,
	"longtext":   DbTypeLongText,
	"enum":       DbTypeEnumeration,
	"guid":       DbTypeGuid,
}

// RequiresLength reports whether the given canonical type needs an explicit
// length in DDL. A value outside the closed enumeration (including
// DbTypeUnset) returns ErrUnexpectedDbType; reaching that path is a defect in
// the caller, not a schema-authoring mistake.
//
// Example:
//
//	ok, err := migrate.RequiresLength(migrate.DbTypeString) // true, nil
func RequiresLength(t DbType) (bool, error) {
	needsLength, ok := lengthByType[t]
	if !ok {
		return false, ErrUnexpectedDbType
	}
	return needsLength, nil
}

// ParseDbType resolves a dialect type name to its canonical type. The lookup
// is case-insensitive. Unknown names produce a SchemaError naming the
// offending string, since they indicate a mistake in the declarative model.
//
// Example:
//
//	t, err := migrate.ParseDbType("VarChar") // DbTypeString, nil
func ParseDbType(name string) (DbType, error) {
	t, ok := dbTypeAliases[strings.ToLower(name)]
	if !ok {
		return DbTypeUnset, SchemaErrorf("unexpected data type '%s'", name)
	}
	return t, nil
}
