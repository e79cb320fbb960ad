package diskmanager

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"HeapDB/storage_engine/page"
)

/*
This is the main file for the disk manager.
It owns:
The OS file handle of the database file
The 100-byte file header (magic, format version, page size, page count)
Page allocation (monotonic 0-based ids, never reused)
Reading/writing raw page bytes at fixed offsets (ReadAt, WriteAt)

Backing file layout:

	Offset  Size  Field
	──────────────────────────────────────────────
	0       6     Magic        "HEAPDB"
	6       2     Version      uint16
	8       4     PageSize     uint32
	12      4     PageCount    uint32
	16..99        zero padding
	──────────────────────────────────────────────
	100           HeaderSize — page i starts at HeaderSize + i*PageSize

A page is always written as one full PageSize block; a read that returns
fewer bytes is surfaced as ErrIO (truncated or corrupt file), never padded.
*/
const (
	// HeaderSize is the fixed byte size of the file header block.
	HeaderSize = 100

	// FormatVersion is bumped whenever the on-disk layout changes.
	FormatVersion = 1

	magicSize = 6
)

var magicBytes = [magicSize]byte{'H', 'E', 'A', 'P', 'D', 'B'}

const (
	headerOffMagic     = 0 // [6]byte
	headerOffVersion   = 6 // uint16
	headerOffPageSize  = 8 // uint32
	headerOffPageCount = 12
)

// Open opens (or creates) the database file at filePath and validates its
// header. An empty or freshly created file gets a new header written; an
// existing file whose magic, version, page size or recorded page count does
// not match is rejected with ErrCorruptHeader.
func Open(filePath string, log *logrus.Logger) (*DiskManager, error) {
	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "open %s: %v", filePath, err)
	}

	dm := &DiskManager{
		file:     file,
		filePath: filePath,
		log:      log,
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(ErrIO, "stat %s: %v", filePath, err)
	}

	if stat.Size() == 0 {
		if err := dm.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
		log.WithField("path", filePath).Debug("created new database file")
		return dm, nil
	}

	if err := dm.validateHeader(stat.Size()); err != nil {
		file.Close()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"path":  filePath,
		"pages": dm.pageCount,
	}).Debug("opened database file")

	return dm, nil
}

// AllocatePage reserves the next unused page id, extends the file with a
// zeroed page and persists the updated header. Ids are never reused.
func (dm *DiskManager) AllocatePage() (page.PageID, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	id := page.PageID(dm.pageCount)
	zero := make([]byte, page.PageSize)
	if err := dm.writePageLocked(id, zero); err != nil {
		return page.InvalidPageID, err
	}

	dm.pageCount++
	if err := dm.writeHeaderLocked(); err != nil {
		dm.pageCount--
		return page.InvalidPageID, err
	}

	dm.log.WithField("page", id).Debug("allocated page")
	return id, nil
}

// ReadPage reads page id into buf, which must be exactly PageSize bytes.
func (dm *DiskManager) ReadPage(id page.PageID, buf []byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if uint32(id) >= dm.pageCount {
		return errors.Wrapf(ErrIO, "read page %d: out of range (page count %d)", id, dm.pageCount)
	}
	if len(buf) != page.PageSize {
		return errors.Wrapf(ErrIO, "read page %d: buffer is %d bytes, want %d", id, len(buf), page.PageSize)
	}

	n, err := dm.file.ReadAt(buf, dm.offset(id))
	if err != nil {
		return errors.Wrapf(ErrIO, "read page %d: %v", id, err)
	}
	if n != page.PageSize {
		return errors.Wrapf(ErrIO, "read page %d: short read of %d bytes", id, n)
	}
	return nil
}

// WritePage writes the full PageSize block buf as page id.
func (dm *DiskManager) WritePage(id page.PageID, buf []byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if uint32(id) >= dm.pageCount {
		return errors.Wrapf(ErrIO, "write page %d: out of range (page count %d)", id, dm.pageCount)
	}
	if len(buf) != page.PageSize {
		return errors.Wrapf(ErrIO, "write page %d: buffer is %d bytes, want %d", id, len(buf), page.PageSize)
	}

	return dm.writePageLocked(id, buf)
}

// PageCount returns the number of pages allocated so far.
func (dm *DiskManager) PageCount() uint32 {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.pageCount
}

// Close releases the underlying file handle. Callers must flush the buffer
// pool first; Close does not write anything.
func (dm *DiskManager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.file == nil {
		return nil
	}
	err := dm.file.Close()
	dm.file = nil
	if err != nil {
		return errors.Wrapf(ErrIO, "close %s: %v", dm.filePath, err)
	}
	return nil
}

// ############################################# INTERNALS #################################################

func (dm *DiskManager) offset(id page.PageID) int64 {
	return HeaderSize + int64(id)*page.PageSize
}

func (dm *DiskManager) writePageLocked(id page.PageID, buf []byte) error {
	n, err := dm.file.WriteAt(buf, dm.offset(id))
	if err != nil {
		return errors.Wrapf(ErrIO, "write page %d: %v", id, err)
	}
	if n != page.PageSize {
		return errors.Wrapf(ErrIO, "write page %d: short write of %d bytes", id, n)
	}
	return nil
}

func (dm *DiskManager) writeHeader() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.writeHeaderLocked()
}

func (dm *DiskManager) writeHeaderLocked() error {
	header := make([]byte, HeaderSize)
	copy(header[headerOffMagic:], magicBytes[:])
	binary.LittleEndian.PutUint16(header[headerOffVersion:], FormatVersion)
	binary.LittleEndian.PutUint32(header[headerOffPageSize:], page.PageSize)
	binary.LittleEndian.PutUint32(header[headerOffPageCount:], dm.pageCount)

	n, err := dm.file.WriteAt(header, 0)
	if err != nil {
		return errors.Wrapf(ErrIO, "write header: %v", err)
	}
	if n != HeaderSize {
		return errors.Wrapf(ErrIO, "write header: short write of %d bytes", n)
	}
	return nil
}

func (dm *DiskManager) validateHeader(fileSize int64) error {
	if fileSize < HeaderSize {
		return errors.Wrapf(ErrCorruptHeader, "file is %d bytes, smaller than the %d byte header", fileSize, HeaderSize)
	}

	header := make([]byte, HeaderSize)
	n, err := dm.file.ReadAt(header, 0)
	if err != nil || n != HeaderSize {
		return errors.Wrapf(ErrCorruptHeader, "read header: got %d bytes: %v", n, err)
	}

	if !bytes.Equal(header[headerOffMagic:headerOffMagic+magicSize], magicBytes[:]) {
		return errors.Wrap(ErrCorruptHeader, "bad magic bytes")
	}
	if v := binary.LittleEndian.Uint16(header[headerOffVersion:]); v != FormatVersion {
		return errors.Wrapf(ErrCorruptHeader, "format version %d, want %d", v, FormatVersion)
	}
	if ps := binary.LittleEndian.Uint32(header[headerOffPageSize:]); ps != page.PageSize {
		return errors.Wrapf(ErrCorruptHeader, "page size %d, want %d", ps, page.PageSize)
	}

	recorded := binary.LittleEndian.Uint32(header[headerOffPageCount:])
	dataBytes := fileSize - HeaderSize
	if dataBytes%page.PageSize != 0 {
		return errors.Wrapf(ErrCorruptHeader, "file holds a partial page (%d trailing bytes)", dataBytes%page.PageSize)
	}
	if actual := uint32(dataBytes / page.PageSize); recorded != actual {
		return errors.Wrapf(ErrCorruptHeader, "header records %d pages but file holds %d", recorded, actual)
	}

	dm.pageCount = recorded
	return nil
}
