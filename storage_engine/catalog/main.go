package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"HeapDB/storage_engine/page"
	"HeapDB/types"
)

/*
This file is the main access of the Catalog Manager.
The catalog maintains the metadata of the database and persists it on disk:
table schemas and the ordered heap page list of every table. The whole
catalog is loaded when the engine opens and written back on every mutation.

The storage core treats schemas as immutable inputs; only table creation
writes them, so persisting the full catalog on mutation is cheap.
*/

const catalogFileName = "catalog.json"

// NewCatalogManager loads (or initializes) the catalog under dataDir.
func NewCatalogManager(dataDir string, log *logrus.Logger) (*CatalogManager, error) {
	schemaCache, err := ristretto.NewCache(&ristretto.Config[string, types.TableSchema]{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "catalog: create schema cache")
	}

	cm := &CatalogManager{
		dataDir:     dataDir,
		catalogPath: filepath.Join(dataDir, catalogFileName),
		tables:      make(map[string]*TableMeta),
		schemaCache: schemaCache,
		log:         log,
	}

	if err := cm.load(); err != nil {
		schemaCache.Close()
		return nil, err
	}
	return cm, nil
}

// CreateTable registers a new table. The schema is validated once here and
// immutable afterwards.
func (cm *CatalogManager) CreateTable(schema types.TableSchema) error {
	if err := validateSchema(&schema); err != nil {
		return err
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	key := strings.ToLower(schema.TableName)
	if _, exists := cm.tables[key]; exists {
		return fmt.Errorf("table '%s' already exists", schema.TableName)
	}

	cm.tables[key] = &TableMeta{Schema: schema}
	if err := cm.persistLocked(); err != nil {
		delete(cm.tables, key)
		return err
	}

	cm.log.WithField("table", schema.TableName).Debug("catalog created table")
	return nil
}

// TableExists reports whether the catalog knows tableName.
func (cm *CatalogManager) TableExists(tableName string) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	_, exists := cm.tables[strings.ToLower(tableName)]
	return exists
}

// GetSchema returns the immutable schema of tableName, consulting the
// ristretto cache before the authoritative map.
func (cm *CatalogManager) GetSchema(tableName string) (types.TableSchema, error) {
	key := strings.ToLower(tableName)

	if schema, found := cm.schemaCache.Get(key); found {
		return schema, nil
	}

	cm.mu.RLock()
	meta, exists := cm.tables[key]
	cm.mu.RUnlock()
	if !exists {
		return types.TableSchema{}, errors.Wrapf(ErrTableNotFound, "table '%s'", tableName)
	}

	cm.schemaCache.Set(key, meta.Schema, 1)
	return meta.Schema, nil
}

// PageIDs returns a copy of the table's heap pages in allocation order.
func (cm *CatalogManager) PageIDs(tableName string) ([]page.PageID, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	meta, exists := cm.tables[strings.ToLower(tableName)]
	if !exists {
		return nil, errors.Wrapf(ErrTableNotFound, "table '%s'", tableName)
	}
	out := make([]page.PageID, len(meta.PageIDs))
	copy(out, meta.PageIDs)
	return out, nil
}

// FirstPageID returns the table's first heap page. ok is false while the
// table has no pages yet.
func (cm *CatalogManager) FirstPageID(tableName string) (page.PageID, bool, error) {
	ids, err := cm.PageIDs(tableName)
	if err != nil {
		return page.InvalidPageID, false, err
	}
	if len(ids) == 0 {
		return page.InvalidPageID, false, nil
	}
	return ids[0], true, nil
}

// AppendPage records a freshly allocated heap page as the table's new last
// page and persists the catalog.
func (cm *CatalogManager) AppendPage(tableName string, pageID page.PageID) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	meta, exists := cm.tables[strings.ToLower(tableName)]
	if !exists {
		return errors.Wrapf(ErrTableNotFound, "table '%s'", tableName)
	}

	meta.PageIDs = append(meta.PageIDs, pageID)
	if err := cm.persistLocked(); err != nil {
		meta.PageIDs = meta.PageIDs[:len(meta.PageIDs)-1]
		return err
	}

	cm.log.WithFields(logrus.Fields{"table": tableName, "page": pageID}).Debug("catalog appended page")
	return nil
}

// Close releases the schema cache.
func (cm *CatalogManager) Close() {
	cm.schemaCache.Close()
}

// ############################################# INTERNALS #################################################

func (cm *CatalogManager) load() error {
	data, err := os.ReadFile(cm.catalogPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // fresh database
		}
		return errors.Wrap(err, "catalog: read")
	}

	if err := json.Unmarshal(data, &cm.tables); err != nil {
		return errors.Wrap(err, "catalog: parse")
	}

	cm.log.WithField("tables", len(cm.tables)).Debug("catalog loaded")
	return nil
}

func (cm *CatalogManager) persistLocked() error {
	data, err := json.MarshalIndent(cm.tables, "", "  ")
	if err != nil {
		return errors.Wrap(err, "catalog: marshal")
	}
	if err := os.WriteFile(cm.catalogPath, data, 0644); err != nil {
		return errors.Wrap(err, "catalog: write")
	}
	return nil
}

func validateSchema(schema *types.TableSchema) error {
	if schema.TableName == "" {
		return fmt.Errorf("table name must not be empty")
	}
	if len(schema.Columns) == 0 {
		return fmt.Errorf("table '%s' must have at least one column", schema.TableName)
	}

	seen := make(map[string]bool, len(schema.Columns))
	for _, col := range schema.Columns {
		if col.Name == "" {
			return fmt.Errorf("table '%s' has a column with an empty name", schema.TableName)
		}
		key := strings.ToLower(col.Name)
		if seen[key] {
			return fmt.Errorf("table '%s' declares column '%s' twice", schema.TableName, col.Name)
		}
		seen[key] = true

		switch col.Type {
		case types.TypeInt, types.TypeBoolean, types.TypeVarchar:
		default:
			return fmt.Errorf("column '%s' has unknown type '%s'", col.Name, col.Type)
		}
	}
	return nil
}
