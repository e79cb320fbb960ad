package page

const (
	// PageSize is the fixed unit of disk I/O. Recorded in the database file
	// header and validated on open, so it cannot drift between builds.
	PageSize = 4096
)

// PageID is a 0-based, monotonically increasing page number within one
// database file. IDs are never reused once allocated.
type PageID uint32

// InvalidPageID marks a frame that currently holds no page.
const InvalidPageID = PageID(^uint32(0))

/*
Page is one in-memory frame of the buffer pool: the raw bytes of a single
disk page plus the bookkeeping the pool needs to decide when the frame can
be reused.

Frames are allocated once at pool construction and live for the engine's
lifetime; the buffer pool hands out *Page handles and every FetchPage must
be matched by exactly one UnpinPage. All PinCount/IsDirty mutation happens
under the owning pool's mutex, which is the single coordination boundary
planned for a later concurrent version.
*/
type Page struct {
	ID       PageID // InvalidPageID while the frame is free
	Data     []byte // always exactly PageSize bytes
	IsDirty  bool   // in-memory copy diverges from disk
	PinCount int32  // >0 means in active use, never evictable
}

// NewFrame returns an empty frame with a zeroed PageSize buffer.
func NewFrame() *Page {
	return &Page{
		ID:   InvalidPageID,
		Data: make([]byte, PageSize),
	}
}

// Reset prepares the frame for reuse by a different page.
func (p *Page) Reset() {
	p.ID = InvalidPageID
	p.IsDirty = false
	p.PinCount = 0
	for i := range p.Data {
		p.Data[i] = 0
	}
}
