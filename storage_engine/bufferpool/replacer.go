package bufferpool

/*
LRUReplacer tracks which frames are eligible for eviction and in what order.

Recency is driven by unpin time, not by reads or writes: a frame enters the
replacer only when its pin count reaches zero, and leaves it the moment the
page is pinned again. Victim order among frames unpinned at the same logical
time is their insertion order, so eviction is fully deterministic.

The replacer never touches frame state itself; the BufferPool calls it with
its own mutex held, so no locking happens here.
*/
type LRUReplacer struct {
	// elements holds eligible frame indices, most recently unpinned at the
	// front. Victim pops from the back.
	elements []int
}

func NewLRUReplacer(capacity int) *LRUReplacer {
	return &LRUReplacer{
		elements: make([]int, 0, capacity),
	}
}

// RecordAccess marks frameIdx as the most recently unpinned frame.
// Called when a frame's pin count transitions to zero.
func (r *LRUReplacer) RecordAccess(frameIdx int) {
	r.remove(frameIdx)
	r.elements = append([]int{frameIdx}, r.elements...)
}

// Pin removes frameIdx from eviction eligibility. Called when a cached
// page is fetched again while resident.
func (r *LRUReplacer) Pin(frameIdx int) {
	r.remove(frameIdx)
}

// Victim returns and removes the least-recently-unpinned frame.
// ok is false when no frame is evictable (the pool-exhaustion signal).
func (r *LRUReplacer) Victim() (frameIdx int, ok bool) {
	if len(r.elements) == 0 {
		return 0, false
	}
	last := len(r.elements) - 1
	frameIdx = r.elements[last]
	r.elements = r.elements[:last]
	return frameIdx, true
}

// Size returns the number of frames currently eligible for eviction.
func (r *LRUReplacer) Size() int {
	return len(r.elements)
}

func (r *LRUReplacer) remove(frameIdx int) {
	for i, v := range r.elements {
		if v == frameIdx {
			r.elements = append(r.elements[:i], r.elements[i+1:]...)
			return
		}
	}
}
