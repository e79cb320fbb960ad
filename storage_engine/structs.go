package storageengine

import (
	"github.com/sirupsen/logrus"

	heapfile "HeapDB/storage_engine/access/heapfile_manager"
	"HeapDB/storage_engine/bufferpool"
	"HeapDB/storage_engine/catalog"
	diskmanager "HeapDB/storage_engine/disk_manager"
)

// StorageEngine wires one database's components together: a single backing
// file behind the disk manager, one buffer pool over it, the catalog, and
// the heap access layer on top. Every dependency is constructor-injected;
// there is no ambient global state, and exactly one engine may own a given
// database file at a time.
type StorageEngine struct {
	DiskManager    *diskmanager.DiskManager
	BufferPool     *bufferpool.BufferPool
	CatalogManager *catalog.CatalogManager
	HeapManager    *heapfile.HeapFileManager

	dataDir string
	log     *logrus.Logger
}
