package heapfile

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"HeapDB/storage_engine/page"
)

/*
This file contains standalone functions operating on *page.Page for the
slotted heap page format. All functions take *page.Page as first argument
since methods cannot be defined on types from external packages.

Heap page binary layout (all values little-endian):

	Offset  Size  Field
	──────────────────────────────────────────────
	0       2     ItemCount     uint16 — slot directory entries
	2       2     FreeSpacePtr  uint16 — start of the packed payload region
	──────────────────────────────────────────────
	4             HeapHeaderSize

Standard slotted-page layout:

	[ header 4B ][ slot dir → ][ free space ][ ← tuple payloads ]
	0           4              ^             ^                   4096
	                           dir end       FreeSpacePtr

	Slot directory grows FORWARD  from HeapHeaderSize.
	Tuple payloads grow BACKWARD from PageSize.
	Free space is the gap between the directory end and FreeSpacePtr.

A slot entry is 4 bytes: [ Offset uint16 ][ Length uint16 ]

	Offset — absolute byte offset from start of page to the tuple bytes.
	Length — byte length of the tuple. Length 0 is the reserved deleted
	         state; no operation produces it in this version.

Slot i lives at: HeapHeaderSize + i*SlotSize.
*/
const (
	heapOffItemCount    = 0 // uint16 (2)
	heapOffFreeSpacePtr = 2 // uint16 (2)

	// HeapHeaderSize is the fixed header size in bytes.
	// The slot directory starts at this offset on a fresh page.
	HeapHeaderSize = 4

	// SlotSize is the byte size of one slot entry: Offset(2) + Length(2).
	SlotSize = 4
)

// ErrInvalidSlot means a slot index past the item count, or a slot in the
// reserved deleted state. Caller violated the slot-index contract.
var ErrInvalidSlot = errors.New("invalid heap page slot")

// InitHeapPage stamps a fresh heap-page header into pg.Data.
//
// After this call:
//   - ItemCount    == 0
//   - FreeSpacePtr == PageSize (payload region empty, grows backward)
//   - All non-header bytes zeroed
func InitHeapPage(pg *page.Page) {
	for i := HeapHeaderSize; i < page.PageSize; i++ {
		pg.Data[i] = 0
	}
	setItemCount(pg, 0)
	setFreeSpacePtr(pg, page.PageSize)
	pg.IsDirty = true
}

// ItemCount returns the number of slot directory entries on the page.
func ItemCount(pg *page.Page) uint16 {
	return binary.LittleEndian.Uint16(pg.Data[heapOffItemCount:])
}

// FreeSpace returns the byte gap between the end of the slot directory and
// the start of the packed payload region.
func FreeSpace(pg *page.Page) int {
	dirEnd := HeapHeaderSize + int(ItemCount(pg))*SlotSize
	return int(freeSpacePtr(pg)) - dirEnd
}

// InsertTuple appends data to the page. Required space is the tuple length
// plus one directory entry; ok is false when the contiguous free gap is too
// small, in which case the page is left completely untouched and the caller
// must try another page. Returns the new slot index on success.
func InsertTuple(pg *page.Page, data []byte) (slotIdx uint16, ok bool) {
	needed := len(data) + SlotSize
	if FreeSpace(pg) < needed {
		return 0, false
	}

	// Payload grows backward from the free-space pointer.
	newFreePtr := freeSpacePtr(pg) - uint16(len(data))
	copy(pg.Data[newFreePtr:], data)

	slotIdx = ItemCount(pg)
	writeSlot(pg, slotIdx, newFreePtr, uint16(len(data)))

	setItemCount(pg, slotIdx+1)
	setFreeSpacePtr(pg, newFreePtr)

	pg.IsDirty = true
	return slotIdx, true
}

// ReadTuple returns a copy of the tuple bytes at slotIdx.
func ReadTuple(pg *page.Page, slotIdx uint16) ([]byte, error) {
	if slotIdx >= ItemCount(pg) {
		return nil, errors.Wrapf(ErrInvalidSlot, "slot %d out of range (count=%d)", slotIdx, ItemCount(pg))
	}
	offset, length := readSlot(pg, slotIdx)
	if length == 0 {
		return nil, errors.Wrapf(ErrInvalidSlot, "slot %d is deleted", slotIdx)
	}
	out := make([]byte, length)
	copy(out, pg.Data[offset:offset+length])
	return out, nil
}

// ############################################# INTERNALS #################################################

func freeSpacePtr(pg *page.Page) uint16 {
	return binary.LittleEndian.Uint16(pg.Data[heapOffFreeSpacePtr:])
}

func setItemCount(pg *page.Page, count uint16) {
	binary.LittleEndian.PutUint16(pg.Data[heapOffItemCount:], count)
}

func setFreeSpacePtr(pg *page.Page, ptr uint16) {
	binary.LittleEndian.PutUint16(pg.Data[heapOffFreeSpacePtr:], ptr)
}

func slotOffset(slotIdx uint16) int {
	return HeapHeaderSize + int(slotIdx)*SlotSize
}

func readSlot(pg *page.Page, slotIdx uint16) (offset, length uint16) {
	base := slotOffset(slotIdx)
	offset = binary.LittleEndian.Uint16(pg.Data[base:])
	length = binary.LittleEndian.Uint16(pg.Data[base+2:])
	return offset, length
}

func writeSlot(pg *page.Page, slotIdx uint16, offset, length uint16) {
	base := slotOffset(slotIdx)
	binary.LittleEndian.PutUint16(pg.Data[base:], offset)
	binary.LittleEndian.PutUint16(pg.Data[base+2:], length)
}
