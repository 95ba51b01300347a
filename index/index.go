package index

import (
	"encoding/binary"
	"os"

	"github.com/basalt-db/chunkstore/errmsg"
	"github.com/basalt-db/chunkstore/header"
	"github.com/basalt-db/chunkstore/internal/rw"
)

// New allocates a fresh, all-zero N+1 entry array sized from h.ArraySize.
// No I/O is performed.
func New(h *header.Header) *Array {
	n := h.ArraySize()
	return &Array{n: n, entries: make([]Entry, n+1)}
}

// Load reads a committed snapshot of (h.ArraySize()+1)*EntrySize bytes
// starting at h.CurrentCommit.
func Load(h *header.Header, fp *os.File) (*Array, error) {
	n := h.ArraySize()
	buf, err := rw.ReadAt(fp, int64(h.CurrentCommit()), int(n+1)*EntrySize)
	if err != nil {
		return nil, err
	}
	a := &Array{n: n, entries: decode(buf, n+1)}
	a.selfOffset = h.CurrentCommit()
	a.selfLen = uint64(len(buf))
	return a, nil
}

// N returns the number of addressable chunk slots (excluding entry 0).
func (a *Array) N() uint64 { return a.n }

// Elem returns a mutable reference to the entry for slot n (0..N-1).
func (a *Array) Elem(n uint64) (*Entry, error) {
	if n >= a.n {
		return nil, errmsg.ErrOutOfBounds
	}
	return &a.entries[n+1], nil
}

// Resize grows the array to newN slots, zero-filling the new tail and
// setting h.ArraySize to the new slot count newN. Shrinking
// fails with ErrTooSmall; resizing to the current size is a no-op.
func (a *Array) Resize(newN uint64, h *header.Header) error {
	switch {
	case newN < a.n:
		return errmsg.ErrTooSmall
	case newN == a.n:
		return nil
	}
	grown := make([]Entry, newN+1)
	copy(grown, a.entries)
	a.entries = grown
	a.n = newN
	h.SetArraySize(newN)
	return nil
}

// Commit appends the current snapshot to end-of-file and updates h's
// commit pointers. Entry 0 of the freshly appended snapshot records where
// the *previous* snapshot lived (the back-link), not where this one lives;
// the new location is recorded afterward for the next Commit's back-link.
func (a *Array) Commit(fp *os.File, h *header.Header) error {
	a.entries[0] = Entry{Offset: a.selfOffset, Length: a.selfLen}
	buf := encode(a.entries)

	p, err := rw.AppendAt(fp, buf)
	if err != nil {
		return err
	}

	h.SetCurrentCommit(uint64(p))
	if h.FirstCommit() == 0 {
		h.SetFirstCommit(uint64(p))
	}
	a.selfOffset = uint64(p)
	a.selfLen = uint64(len(buf))
	return nil
}

func encode(entries []Entry) []byte {
	buf := make([]byte, len(entries)*EntrySize)
	for i, e := range entries {
		binary.LittleEndian.PutUint64(buf[i*EntrySize:], e.Offset)
		binary.LittleEndian.PutUint64(buf[i*EntrySize+8:], e.Length)
	}
	return buf
}

func decode(buf []byte, n uint64) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		o := i * EntrySize
		entries[i] = Entry{
			Offset: binary.LittleEndian.Uint64(buf[o:]),
			Length: binary.LittleEndian.Uint64(buf[o+8:]),
		}
	}
	return entries
}
