package chunk

import (
	"os"

	"github.com/basalt-db/chunkstore/index"
)

// Chunk is a handle bound to one index slot. It owns its payload buffer
// when it allocated it itself (New, Load) and borrows it otherwise
// (NewFromBuffer, LoadInto). release, when non-nil, is called by Destroy
// so the parent Store can drop its live-table entry: a non-owning,
// index-based back-reference rather than a pointer to the Store.
type Chunk struct {
	slot  uint64
	buf   []byte
	owns  bool
	entry *index.Entry
	file  *os.File

	release func()
}

// Slot returns the chunk's slot index.
func (c *Chunk) Slot() uint64 { return c.slot }

// Buffer returns the chunk's current payload buffer.
func (c *Chunk) Buffer() []byte { return c.buf }

// Len returns the length of the chunk's current payload buffer.
func (c *Chunk) Len() uint64 { return uint64(len(c.buf)) }

// Owns reports whether the chunk owns (and will free) its own buffer.
func (c *Chunk) Owns() bool { return c.owns }

// SetOwned makes ownership transfer after Replace explicit: the chunk's
// Destroy will release buf iff owns is true.
func (c *Chunk) SetOwned(owns bool) { c.owns = owns }

// Rebind points the chunk at a new index entry, used by Store.Resize after
// the array has grown and the live table has been rebuilt.
func (c *Chunk) Rebind(e *index.Entry) { c.entry = e }

// SetRelease installs the Store's release callback; used only by the store
// package when producing a chunk.
func (c *Chunk) SetRelease(f func()) { c.release = f }
