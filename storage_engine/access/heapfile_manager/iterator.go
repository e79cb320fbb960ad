package heapfile

import (
	"HeapDB/storage_engine/page"
	"HeapDB/types"
)

/*
This file holds the two iterators of the heap access layer:

SlotIter walks the slots of one page in ascending slot order. It is lazy,
finite and restartable; slots in the reserved deleted state are skipped.

Scanner walks a whole table in page-id order, then slot order inside each
page. It pins exactly one page at a time: a page is fetched, its tuples
decoded, and the page unpinned before the scanner moves on, so a scan can
never wedge the buffer pool.
*/

// SlotIter iterates the occupied slots of a single heap page.
type SlotIter struct {
	pg   *page.Page
	next uint16
}

func NewSlotIter(pg *page.Page) *SlotIter {
	return &SlotIter{pg: pg}
}

// Next returns the next occupied slot and its tuple bytes.
// ok is false when the page is exhausted.
func (it *SlotIter) Next() (slotIdx uint16, data []byte, ok bool) {
	count := ItemCount(it.pg)
	for it.next < count {
		idx := it.next
		it.next++
		offset, length := readSlot(it.pg, idx)
		if length == 0 {
			continue // reserved deleted state
		}
		out := make([]byte, length)
		copy(out, it.pg.Data[offset:offset+length])
		return idx, out, true
	}
	return 0, nil, false
}

// Reset restarts the iterator from slot 0.
func (it *SlotIter) Reset() {
	it.next = 0
}

// Scanner is a lazy table scan. Obtain one from HeapFileManager.Scan and
// call Next until ok is false.
type Scanner struct {
	hfm     *HeapFileManager
	schema  types.TableSchema
	pageIDs []page.PageID

	nextPage int
	buffered []types.Row
	nextRow  int
	err      error
}

// Next returns the next row in insertion order. ok is false when the scan
// is exhausted or failed; check Err afterwards.
func (s *Scanner) Next() (types.Row, bool) {
	if s.err != nil {
		return types.Row{}, false
	}

	for s.nextRow >= len(s.buffered) {
		if s.nextPage >= len(s.pageIDs) {
			return types.Row{}, false
		}
		if err := s.loadPage(s.pageIDs[s.nextPage]); err != nil {
			s.err = err
			return types.Row{}, false
		}
		s.nextPage++
	}

	row := s.buffered[s.nextRow]
	s.nextRow++
	return row, true
}

// Err returns the first error the scan hit, if any.
func (s *Scanner) Err() error {
	return s.err
}

// loadPage fetches one heap page, decodes every tuple on it and unpins the
// page again before returning. The page is unpinned on error paths too.
func (s *Scanner) loadPage(pageID page.PageID) error {
	pg, err := s.hfm.bufferPool.FetchPage(pageID)
	if err != nil {
		return err
	}
	defer s.hfm.bufferPool.UnpinPage(pageID, false)

	s.buffered = s.buffered[:0]
	s.nextRow = 0

	iter := NewSlotIter(pg)
	for {
		_, raw, ok := iter.Next()
		if !ok {
			break
		}
		values, err := DecodeTuple(&s.schema, raw)
		if err != nil {
			return err
		}
		row := types.NewRow()
		for i, col := range s.schema.Columns {
			row.Set(col.Name, values[i])
		}
		s.buffered = append(s.buffered, row)
	}
	return nil
}
