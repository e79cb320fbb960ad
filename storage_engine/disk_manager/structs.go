package diskmanager

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ############################################# ERRORS ####################################################

var (
	// ErrIO wraps short reads/writes and out-of-range page ids. Short I/O on a
	// fixed-size block means corruption or device failure, never retried.
	ErrIO = errors.New("disk i/o error")

	// ErrCorruptHeader means the file header failed validation on open.
	// The engine refuses to open such a file.
	ErrCorruptHeader = errors.New("corrupt database file header")
)

// ############################################# DISK MANAGER #############################################

// DiskManager owns the single backing file of one database: the file header,
// page allocation and raw page I/O at fixed offsets.
type DiskManager struct {
	file      *os.File
	filePath  string
	pageCount uint32 // pages currently allocated; next AllocatePage returns this value
	log       *logrus.Logger
	mu        sync.Mutex
}
