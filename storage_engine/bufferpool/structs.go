package bufferpool

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	diskmanager "HeapDB/storage_engine/disk_manager"
	"HeapDB/storage_engine/page"
)

// ############################################# ERRORS ####################################################

var (
	// ErrPoolExhausted means every frame is pinned; the caller should unpin
	// pages and retry, or it has leaked pin counts.
	ErrPoolExhausted = errors.New("buffer pool exhausted: all frames pinned")

	// ErrPageNotCached means the page is not resident in any frame.
	ErrPageNotCached = errors.New("page not in buffer pool")

	// ErrPageNotPinned means UnpinPage was called on a frame whose pin count
	// is already zero. That is a caller bug, not a recoverable condition.
	ErrPageNotPinned = errors.New("page pin count already zero")
)

// ############################################# BUFFER POOL #############################################

// BufferPool caches disk pages in a fixed arena of frames and delegates
// eviction decisions to an LRU replacer. Frames are cross-referenced only by
// stable integer indices; the page table maps resident page ids to frames.
//
// One mutex guards the page table, the free list, the replacer and all frame
// pin/dirty state. The current engine drives the pool from a single caller,
// but keeping every mutation behind this one boundary means a concurrent
// version only has to change the primitive, not the data model.
type BufferPool struct {
	frames      []*page.Page          // fixed arena, allocated at construction
	pageTable   map[page.PageID]int   // pageID -> frame index, resident pages only
	freeList    []int                 // frame indices never used or fully released
	replacer    *LRUReplacer          // unpinned frames, eviction order
	diskManager *diskmanager.DiskManager
	log         *logrus.Logger
	mu          sync.Mutex
}

// Stats is a point-in-time snapshot of pool occupancy.
type Stats struct {
	ResidentPages int
	PinnedPages   int
	DirtyPages    int
	FreeFrames    int
	Capacity      int
}
