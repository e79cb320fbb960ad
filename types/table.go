package types

import "strings"

// Column types supported by the tuple codec.
const (
	TypeInt     = "INT"     // 4-byte signed integer
	TypeBoolean = "BOOLEAN" // 1 byte, 0/1
	TypeVarchar = "VARCHAR" // u16 length prefix + UTF-8 bytes
)

type ColumnDef struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// TableSchema is an immutable description of a table: an ordered sequence of
// columns. Column declaration order drives the on-disk tuple layout, so the
// Columns slice must never be reordered after creation.
type TableSchema struct {
	TableName string      `json:"table_name"`
	Columns   []ColumnDef `json:"columns"`
}

// ColumnIndex returns the declaration-order index of the named column,
// or -1 if the schema has no such column. Names compare case-insensitively.
func (s *TableSchema) ColumnIndex(name string) int {
	for i, col := range s.Columns {
		if strings.EqualFold(col.Name, name) {
			return i
		}
	}
	return -1
}

// HasNullable reports whether any column of the schema is nullable.
// The tuple null bitmap is present on disk exactly when this is true.
func (s *TableSchema) HasNullable() bool {
	for _, col := range s.Columns {
		if col.Nullable {
			return true
		}
	}
	return false
}

// NullBitmapSize returns the byte size of the tuple null bitmap:
// ceil(len(Columns)/8) when the schema has a nullable column, else 0.
func (s *TableSchema) NullBitmapSize() int {
	if !s.HasNullable() {
		return 0
	}
	return (len(s.Columns) + 7) / 8
}
