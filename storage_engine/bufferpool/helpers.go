package bufferpool

import "HeapDB/storage_engine/page"

/*
This file holds helper functions for the bufferpool
*/

// GetStats returns current buffer pool occupancy.
func (bp *BufferPool) GetStats() Stats {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	stats := Stats{
		ResidentPages: len(bp.pageTable),
		FreeFrames:    len(bp.freeList),
		Capacity:      len(bp.frames),
	}

	for _, frameIdx := range bp.pageTable {
		frame := bp.frames[frameIdx]
		if frame.PinCount > 0 {
			stats.PinnedPages++
		}
		if frame.IsDirty {
			stats.DirtyPages++
		}
	}

	return stats
}

// Size returns the current number of resident pages.
func (bp *BufferPool) Size() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return len(bp.pageTable)
}

// Capacity returns the fixed number of frames in the pool.
func (bp *BufferPool) Capacity() int {
	return len(bp.frames)
}

// PinCount reports the pin count of a resident page, or 0/false when the
// page is not cached. Useful for asserting pin discipline in tests.
func (bp *BufferPool) PinCount(pageID page.PageID) (int32, bool) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameIdx, exists := bp.pageTable[pageID]
	if !exists {
		return 0, false
	}
	return bp.frames[frameIdx].PinCount, true
}
