package chunk

import (
	"os"

	"github.com/basalt-db/chunkstore/errmsg"
	"github.com/basalt-db/chunkstore/index"
	"github.com/basalt-db/chunkstore/internal/rw"
)

// New allocates a size-byte buffer for slot, binds it to array's index
// entry for that slot, and marks the chunk as buffer-owning.
func New(arr *index.Array, fp *os.File, slot uint64, size uint64) (*Chunk, error) {
	e, err := arr.Elem(slot)
	if err != nil {
		return nil, err
	}
	e.Length = size
	return &Chunk{slot: slot, buf: make([]byte, size), owns: true, entry: e, file: fp}, nil
}

// NewFromBuffer binds a caller-supplied buffer to slot's index entry. The
// chunk does not own buf.
func NewFromBuffer(arr *index.Array, fp *os.File, slot uint64, buf []byte) (*Chunk, error) {
	e, err := arr.Elem(slot)
	if err != nil {
		return nil, err
	}
	e.Length = uint64(len(buf))
	return &Chunk{slot: slot, buf: buf, owns: false, entry: e, file: fp}, nil
}

// Load allocates a buffer sized to the slot's committed payload length and
// reads the payload from disk into it. The returned chunk owns the buffer.
func Load(arr *index.Array, fp *os.File, slot uint64) (*Chunk, error) {
	e, err := arr.Elem(slot)
	if err != nil {
		return nil, err
	}
	buf, err := rw.ReadAt(fp, int64(e.Offset), int(e.Length))
	if err != nil {
		return nil, err
	}
	return &Chunk{slot: slot, buf: buf, owns: true, entry: e, file: fp}, nil
}

// LoadInto reads the slot's committed payload into a caller-supplied
// buffer, failing with ErrBufferTooSmall if it cannot hold the payload.
// The returned chunk does not own buf.
func LoadInto(arr *index.Array, fp *os.File, slot uint64, buf []byte) (*Chunk, error) {
	e, err := arr.Elem(slot)
	if err != nil {
		return nil, err
	}
	if uint64(len(buf)) < e.Length {
		return nil, errmsg.ErrBufferTooSmall
	}
	n, err := fp.ReadAt(buf[:e.Length], int64(e.Offset))
	switch {
	case err != nil:
		return nil, err
	case uint64(n) != e.Length:
		return nil, errmsg.ErrShortRead
	}
	return &Chunk{slot: slot, buf: buf[:e.Length], owns: false, entry: e, file: fp}, nil
}

// Replace swaps in newBuf as the chunk's payload and updates the bound
// index entry's length, returning the displaced buffer so the caller can
// free or reuse it. The chunk's ownership flag is left unchanged; a caller
// that allocated newBuf and wants the chunk to own it calls SetOwned(true)
// explicitly afterward.
func (c *Chunk) Replace(newBuf []byte) []byte {
	old := c.buf
	c.buf = newBuf
	c.entry.Length = uint64(len(newBuf))
	return old
}

// Commit appends the chunk's current buffer to end-of-file and records the
// new offset in the bound index entry. Fails with ErrNoFile if the chunk
// has no bound file.
func (c *Chunk) Commit() error {
	if c.file == nil {
		return errmsg.ErrNoFile
	}
	p, err := rw.AppendAt(c.file, c.buf)
	if err != nil {
		return err
	}
	c.entry.Offset = uint64(p)
	return nil
}

// Destroy releases the chunk handle: it notifies the parent Store (if
// parented) so the slot can be freed, and drops the owned buffer.
func (c *Chunk) Destroy() {
	if c.release != nil {
		c.release()
	}
	if c.owns {
		c.buf = nil
	}
}
