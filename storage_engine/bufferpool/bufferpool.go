package bufferpool

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	diskmanager "HeapDB/storage_engine/disk_manager"
	"HeapDB/storage_engine/page"
)

/*
This file is the main file of the bufferpool.
The buffer pool works on LRU based caching and holds access to the disk
manager for flushing dirty frames onto the disk; on a cache miss the page
is loaded from disk into a free or victimized frame.

Pages are identified by PageID. Every FetchPage/NewPage must be matched by
exactly one UnpinPage on every exit path, or the frame leaks pin count and
becomes permanently unevictable.
*/

// NewBufferPool creates a buffer pool with a fixed number of frames.
func NewBufferPool(capacity int, diskManager *diskmanager.DiskManager, log *logrus.Logger) *BufferPool {
	bp := &BufferPool{
		frames:      make([]*page.Page, capacity),
		pageTable:   make(map[page.PageID]int, capacity),
		freeList:    make([]int, 0, capacity),
		replacer:    NewLRUReplacer(capacity),
		diskManager: diskManager,
		log:         log,
	}
	for i := 0; i < capacity; i++ {
		bp.frames[i] = page.NewFrame()
		bp.freeList = append(bp.freeList, i)
	}
	return bp
}

// FetchPage returns the frame holding pageID with its pin count incremented,
// loading the page from disk on a miss. Fails with ErrPoolExhausted when the
// pool has no free frame and every resident page is pinned.
func (bp *BufferPool) FetchPage(pageID page.PageID) (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	// Cache hit: pin and withdraw from eviction eligibility.
	if frameIdx, exists := bp.pageTable[pageID]; exists {
		frame := bp.frames[frameIdx]
		frame.PinCount++
		bp.replacer.Pin(frameIdx)
		bp.log.WithFields(logrus.Fields{"page": pageID, "pins": frame.PinCount}).Debug("bufferpool hit")
		return frame, nil
	}

	bp.log.WithField("page", pageID).Debug("bufferpool miss, loading from disk")

	frameIdx, err := bp.freeFrame()
	if err != nil {
		return nil, err
	}

	frame := bp.frames[frameIdx]
	if err := bp.diskManager.ReadPage(pageID, frame.Data); err != nil {
		// The frame was already evicted and reset; put it back on the free
		// list so the failed fetch does not shrink the pool.
		bp.freeList = append(bp.freeList, frameIdx)
		return nil, err
	}

	frame.ID = pageID
	frame.PinCount = 1
	frame.IsDirty = false
	bp.pageTable[pageID] = frameIdx
	return frame, nil
}

// NewPage allocates a fresh page on disk and installs it zero-initialized
// and pinned. Equivalent to a guaranteed-miss fetch of a brand-new page.
func (bp *BufferPool) NewPage() (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameIdx, err := bp.freeFrame()
	if err != nil {
		return nil, err
	}

	pageID, err := bp.diskManager.AllocatePage()
	if err != nil {
		bp.freeList = append(bp.freeList, frameIdx)
		return nil, err
	}

	frame := bp.frames[frameIdx]
	frame.ID = pageID
	frame.PinCount = 1
	frame.IsDirty = true // nothing but zeroes on disk yet
	bp.pageTable[pageID] = frameIdx

	bp.log.WithFields(logrus.Fields{"page": pageID, "frame": frameIdx}).Debug("bufferpool new page")
	return frame, nil
}

// UnpinPage decrements the pin count for a page, ORs in the dirty flag, and
// makes the frame evictable when the count reaches zero. An unpin that only
// read never clears an earlier write's dirty flag.
func (bp *BufferPool) UnpinPage(pageID page.PageID, isDirty bool) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameIdx, exists := bp.pageTable[pageID]
	if !exists {
		return errors.Wrapf(ErrPageNotCached, "unpin page %d", pageID)
	}

	frame := bp.frames[frameIdx]
	if frame.PinCount == 0 {
		return errors.Wrapf(ErrPageNotPinned, "unpin page %d", pageID)
	}

	frame.PinCount--
	if isDirty {
		frame.IsDirty = true
	}
	if frame.PinCount == 0 {
		bp.replacer.RecordAccess(frameIdx)
	}
	return nil
}

// FlushPage writes the frame's current bytes to disk regardless of the dirty
// flag, then clears it. Fails with ErrPageNotCached if the page is not
// resident.
func (bp *BufferPool) FlushPage(pageID page.PageID) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameIdx, exists := bp.pageTable[pageID]
	if !exists {
		return errors.Wrapf(ErrPageNotCached, "flush page %d", pageID)
	}

	frame := bp.frames[frameIdx]
	if err := bp.diskManager.WritePage(pageID, frame.Data); err != nil {
		return err
	}
	frame.IsDirty = false
	bp.log.WithField("page", pageID).Debug("bufferpool flushed page")
	return nil
}

// FlushAll writes every resident dirty frame back to disk. Used at shutdown.
func (bp *BufferPool) FlushAll() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	bp.log.WithField("resident", len(bp.pageTable)).Debug("bufferpool flushing all dirty pages")

	for pageID, frameIdx := range bp.pageTable {
		frame := bp.frames[frameIdx]
		if !frame.IsDirty {
			continue
		}
		if err := bp.diskManager.WritePage(pageID, frame.Data); err != nil {
			return err
		}
		frame.IsDirty = false
	}
	return nil
}

// ############################################# INTERNALS #################################################

// freeFrame returns the index of a frame ready to receive a new page,
// evicting (and flushing, if dirty) the LRU victim when no free frame
// remains. The returned frame is reset and absent from the page table.
// Assumes bp.mu is held.
func (bp *BufferPool) freeFrame() (int, error) {
	if n := len(bp.freeList); n > 0 {
		frameIdx := bp.freeList[n-1]
		bp.freeList = bp.freeList[:n-1]
		return frameIdx, nil
	}

	frameIdx, ok := bp.replacer.Victim()
	if !ok {
		return 0, errors.Wrapf(ErrPoolExhausted, "%d frames", len(bp.frames))
	}

	victim := bp.frames[frameIdx]
	bp.log.WithFields(logrus.Fields{"page": victim.ID, "dirty": victim.IsDirty}).Debug("bufferpool evicting page")

	if victim.IsDirty {
		if err := bp.diskManager.WritePage(victim.ID, victim.Data); err != nil {
			// Eviction failed; the frame still holds a valid page, so it
			// stays resident and evictable.
			bp.replacer.RecordAccess(frameIdx)
			return 0, err
		}
	}

	delete(bp.pageTable, victim.ID)
	victim.Reset()
	return frameIdx, nil
}
