package types

import "strings"

// Row is one decoded tuple keyed by column name. A nil value means NULL.
// Column values are int32 (INT), bool (BOOLEAN) or string (VARCHAR).
type Row struct {
	Values map[string]interface{}
}

// RowPointer locates one tuple inside a table's heap pages.
type RowPointer struct {
	PageID    uint32 `json:"page_id"`
	SlotIndex uint16 `json:"slot_index"`
}

func NewRow() Row {
	return Row{Values: make(map[string]interface{})}
}

func (r *Row) Set(column string, value interface{}) {
	r.Values[strings.ToLower(column)] = value
}

func (r *Row) Get(column string) interface{} {
	return r.Values[strings.ToLower(column)]
}

func (r *Row) ToMap() map[string]interface{} {
	return r.Values
}

func (r *Row) Clone() Row {
	newMap := make(map[string]interface{}, len(r.Values))
	for k, v := range r.Values {
		newMap[k] = v
	}
	return Row{Values: newMap}
}
