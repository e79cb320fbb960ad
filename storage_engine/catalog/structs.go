package catalog

import (
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"HeapDB/storage_engine/page"
	"HeapDB/types"
)

// ErrTableNotFound means the catalog has no entry for the requested table.
var ErrTableNotFound = errors.New("table does not exist")

// TableMeta is everything the catalog persists per table: the immutable
// schema and the ordered list of heap pages the table occupies.
type TableMeta struct {
	Schema  types.TableSchema `json:"schema"`
	PageIDs []page.PageID     `json:"page_ids"`
}

// CatalogManager owns table lifecycle and lookup. Metadata is persisted as
// JSON under the data directory and reloaded on open; schema lookups are
// served from a ristretto cache in front of the authoritative map, since
// every insert and scan starts with a GetSchema.
type CatalogManager struct {
	dataDir     string
	catalogPath string
	tables      map[string]*TableMeta
	schemaCache *ristretto.Cache[string, types.TableSchema]
	log         *logrus.Logger
	mu          sync.RWMutex
}
