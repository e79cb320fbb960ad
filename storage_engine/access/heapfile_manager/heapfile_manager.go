package heapfile

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"HeapDB/storage_engine/bufferpool"
	"HeapDB/storage_engine/page"
	"HeapDB/types"
)

/*
This file is the entry point of the heap access layer.
Insert maps an INSERT's column list onto schema order, encodes the tuple and
places it on the table's last heap page, growing the table by one page when
the tuple does not fit. Scan hands out a lazy Scanner over the table.

Every page pin taken here is released on every exit path; the layer never
holds two pages pinned at once.
*/

// NewHeapFileManager wires the access layer to its collaborators.
func NewHeapFileManager(cat Catalog, bufferPool *bufferpool.BufferPool, log *logrus.Logger) *HeapFileManager {
	return &HeapFileManager{
		catalog:    cat,
		bufferPool: bufferPool,
		log:        log,
	}
}

// Insert stores one row in tableName. columns names the supplied values in
// INSERT order; schema columns not mentioned are stored as NULL. Column
// order in the statement does not matter: each value is routed to its schema
// position before encoding.
func (hfm *HeapFileManager) Insert(tableName string, columns []string, values []interface{}) (types.RowPointer, error) {
	schema, err := hfm.catalog.GetSchema(tableName)
	if err != nil {
		return types.RowPointer{}, err
	}

	ordered, err := orderBySchema(&schema, columns, values)
	if err != nil {
		return types.RowPointer{}, err
	}

	raw, err := EncodeTuple(&schema, ordered)
	if err != nil {
		return types.RowPointer{}, err
	}

	pg, err := hfm.lastPage(tableName)
	if err != nil {
		return types.RowPointer{}, err
	}

	slotIdx, ok := InsertTuple(pg, raw)
	if !ok {
		// Page full is an expected control path, not an error: release the
		// full page and grow the table by one fresh page.
		fullID := pg.ID
		if err := hfm.bufferPool.UnpinPage(fullID, false); err != nil {
			return types.RowPointer{}, err
		}
		hfm.log.WithFields(logrus.Fields{"table": tableName, "page": fullID}).Debug("heap page full, growing table")

		pg, err = hfm.appendPage(tableName)
		if err != nil {
			return types.RowPointer{}, err
		}
		slotIdx, ok = InsertTuple(pg, raw)
		if !ok {
			hfm.bufferPool.UnpinPage(pg.ID, true)
			return types.RowPointer{}, fmt.Errorf("tuple of %d bytes does not fit on an empty page", len(raw))
		}
	}

	ptr := types.RowPointer{PageID: uint32(pg.ID), SlotIndex: slotIdx}
	if err := hfm.bufferPool.UnpinPage(pg.ID, true); err != nil {
		return types.RowPointer{}, err
	}
	return ptr, nil
}

// Scan returns a lazy scanner over every row of tableName, in insertion
// order: pages in page-id order, slots in slot order within each page.
func (hfm *HeapFileManager) Scan(tableName string) (*Scanner, error) {
	schema, err := hfm.catalog.GetSchema(tableName)
	if err != nil {
		return nil, err
	}
	pageIDs, err := hfm.catalog.PageIDs(tableName)
	if err != nil {
		return nil, err
	}
	return &Scanner{
		hfm:     hfm,
		schema:  schema,
		pageIDs: pageIDs,
	}, nil
}

// ############################################# INTERNALS #################################################

// lastPage returns the table's current last heap page, pinned. A table with
// no pages yet gets its first page allocated here.
func (hfm *HeapFileManager) lastPage(tableName string) (*page.Page, error) {
	pageIDs, err := hfm.catalog.PageIDs(tableName)
	if err != nil {
		return nil, err
	}
	if len(pageIDs) == 0 {
		return hfm.appendPage(tableName)
	}
	return hfm.bufferPool.FetchPage(pageIDs[len(pageIDs)-1])
}

// appendPage allocates one fresh heap page, initializes it and registers it
// with the catalog. The page is returned pinned.
func (hfm *HeapFileManager) appendPage(tableName string) (*page.Page, error) {
	pg, err := hfm.bufferPool.NewPage()
	if err != nil {
		return nil, err
	}
	InitHeapPage(pg)

	if err := hfm.catalog.AppendPage(tableName, pg.ID); err != nil {
		hfm.bufferPool.UnpinPage(pg.ID, true)
		return nil, err
	}
	return pg, nil
}

// orderBySchema routes each supplied value to its schema column index and
// leaves unmentioned columns NULL.
func orderBySchema(schema *types.TableSchema, columns []string, values []interface{}) ([]interface{}, error) {
	if len(columns) != len(values) {
		return nil, fmt.Errorf("insert lists %d columns but %d values", len(columns), len(values))
	}

	ordered := make([]interface{}, len(schema.Columns))
	seen := make(map[int]bool, len(columns))
	for i, name := range columns {
		idx := schema.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("table '%s' has no column '%s'", schema.TableName, name)
		}
		if seen[idx] {
			return nil, fmt.Errorf("column '%s' mentioned twice", name)
		}
		seen[idx] = true
		ordered[idx] = values[i]
	}

	return ordered, nil
}
