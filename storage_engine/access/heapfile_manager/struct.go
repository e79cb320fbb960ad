package heapfile

import (
	"github.com/sirupsen/logrus"

	"HeapDB/storage_engine/bufferpool"
	"HeapDB/storage_engine/page"
	"HeapDB/types"
)

// Catalog is the slice of the catalog manager the heap access layer needs:
// schema lookup and per-table page bookkeeping. The catalog owns table
// lifecycle; this layer only reads schemas and appends pages.
type Catalog interface {
	GetSchema(tableName string) (types.TableSchema, error)
	PageIDs(tableName string) ([]page.PageID, error)
	AppendPage(tableName string, pageID page.PageID) error
}

// HeapFileManager is the table-level access layer: it turns named-column
// inserts and scans into buffer pool fetches and heap page operations.
type HeapFileManager struct {
	catalog    Catalog
	bufferPool *bufferpool.BufferPool
	log        *logrus.Logger
}
