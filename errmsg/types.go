package errmsg

import "errors"

var (
	ErrShortRead      = errors.New("short read")
	ErrShortWrite     = errors.New("short write")
	ErrOutOfBounds    = errors.New("slot out of bounds")
	ErrBufferTooSmall = errors.New("buffer too small")
	ErrTooSmall       = errors.New("resize target too small")
	ErrMalformedHeader = errors.New("malformed header")
	ErrOpenChunks     = errors.New("open chunks")
	ErrNoFile         = errors.New("chunk has no bound file")
	ErrSlotBusy       = errors.New("slot already has a live chunk")
	ErrNotExist       = errors.New("not exist")
)
