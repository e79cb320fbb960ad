package storageengine

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"HeapDB/config"
	heapfile "HeapDB/storage_engine/access/heapfile_manager"
	"HeapDB/storage_engine/bufferpool"
	"HeapDB/storage_engine/catalog"
	diskmanager "HeapDB/storage_engine/disk_manager"
	"HeapDB/types"
)

/*
The main file of the storage engine: initializes the disk manager, buffer
pool, catalog and heap access layer from a config, and exposes the narrow
surface the executor collaborator calls: CreateTable, Insert, Scan.
*/

const databaseFileName = "heapdb.db"

// Open builds a storage engine over cfg.DataDir, creating the directory,
// database file and catalog on first use.
func Open(cfg config.Config, log *logrus.Logger) (*StorageEngine, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", cfg.DataDir)
	}

	dm, err := diskmanager.Open(filepath.Join(cfg.DataDir, databaseFileName), log)
	if err != nil {
		return nil, err
	}

	cm, err := catalog.NewCatalogManager(cfg.DataDir, log)
	if err != nil {
		dm.Close()
		return nil, err
	}

	bp := bufferpool.NewBufferPool(cfg.PoolSize, dm, log)
	hm := heapfile.NewHeapFileManager(cm, bp, log)

	log.WithFields(logrus.Fields{
		"data_dir":  cfg.DataDir,
		"pool_size": cfg.PoolSize,
	}).Info("storage engine opened")

	return &StorageEngine{
		DiskManager:    dm,
		BufferPool:     bp,
		CatalogManager: cm,
		HeapManager:    hm,
		dataDir:        cfg.DataDir,
		log:            log,
	}, nil
}

// CreateTable registers a new table schema with the catalog.
func (se *StorageEngine) CreateTable(schema types.TableSchema) error {
	return se.CatalogManager.CreateTable(schema)
}

// Insert stores one row; columns names the supplied values, unmentioned
// schema columns become NULL.
func (se *StorageEngine) Insert(tableName string, columns []string, values []interface{}) error {
	_, err := se.HeapManager.Insert(tableName, columns, values)
	return err
}

// Scan returns a lazy scanner over tableName in insertion order.
func (se *StorageEngine) Scan(tableName string) (*heapfile.Scanner, error) {
	return se.HeapManager.Scan(tableName)
}

// Close flushes every dirty frame and releases the backing file and the
// catalog's cache. The engine must not be used afterwards.
func (se *StorageEngine) Close() error {
	flushErr := se.BufferPool.FlushAll()
	closeErr := se.DiskManager.Close()
	se.CatalogManager.Close()

	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
