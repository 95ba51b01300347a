package store

import (
	"os"

	"github.com/basalt-db/chunkstore/chunk"
	"github.com/basalt-db/chunkstore/errmsg"
	"github.com/basalt-db/chunkstore/header"
	"github.com/basalt-db/chunkstore/index"
	"github.com/nnsgmsone/damrey/logger"
	"golang.org/x/sys/unix"
)

// Create builds a brand new store file at cfg.Path with n addressable
// chunk slots: a fresh header, a fresh index array, and the three commits
// that leave the header pointing at the array's first snapshot
// (header, array, header again).
func Create(cfg Config, n uint64) (*Store, error) {
	fp, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0664)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.LogWriter, "chunkstore")

	h := header.New()
	h.SetArraySize(n)
	if err := h.Commit(fp); err != nil {
		fp.Close()
		return nil, err
	}
	flush(log, fp, cfg)

	arr := index.New(h)
	if err := arr.Commit(fp, h); err != nil {
		fp.Close()
		return nil, err
	}
	flush(log, fp, cfg)

	if err := h.Commit(fp); err != nil {
		fp.Close()
		return nil, err
	}
	flush(log, fp, cfg)

	return &Store{
		file:   fp,
		cfg:    cfg,
		log:    log,
		header: h,
		array:  arr,
		live:   make([]*chunk.Chunk, n),
		state:  stateCreated,
	}, nil
}

// Open loads an existing store file: its header, then the index snapshot
// the header currently points at.
func Open(cfg Config) (*Store, error) {
	fp, err := os.OpenFile(cfg.Path, os.O_RDWR, 0664)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errmsg.ErrNotExist
		}
		return nil, err
	}
	log := logger.New(cfg.LogWriter, "chunkstore")

	h, err := header.Load(fp)
	if err != nil {
		fp.Close()
		return nil, err
	}
	arr, err := index.Load(h, fp)
	if err != nil {
		fp.Close()
		return nil, err
	}
	return &Store{
		file:   fp,
		cfg:    cfg,
		log:    log,
		header: h,
		array:  arr,
		live:   make([]*chunk.Chunk, arr.N()),
		state:  stateOpen,
	}, nil
}

// Resize grows the store to newN slots: the array is resized, a new live
// table is allocated and the existing handles copied across, and every
// still-live chunk is rebound to its new index-entry pointer. Without this
// last step, surviving chunk handles would hold dangling *index.Entry
// pointers into the array's old backing slice.
func (s *Store) Resize(newN uint64) error {
	if err := s.array.Resize(newN, s.header); err != nil {
		return err
	}
	grown := make([]*chunk.Chunk, newN)
	copy(grown, s.live)
	s.live = grown

	for slot, c := range s.live {
		if c == nil {
			continue
		}
		e, err := s.array.Elem(uint64(slot))
		if err != nil {
			return err
		}
		c.Rebind(e)
	}
	s.dirty()
	return nil
}

// ChunkSize returns the committed payload length of slot, without loading
// the payload itself.
func (s *Store) ChunkSize(slot uint64) (uint64, error) {
	e, err := s.array.Elem(slot)
	if err != nil {
		return 0, err
	}
	return e.Length, nil
}

// AllocateChunkBuffer allocates a buffer sized to slot's current committed
// length, for callers about to call OpenChunk.
func (s *Store) AllocateChunkBuffer(slot uint64) ([]byte, error) {
	n, err := s.ChunkSize(slot)
	if err != nil {
		return nil, err
	}
	return make([]byte, n), nil
}

// Chunkify binds buf as slot's payload and tracks the resulting handle as
// live. Fails with ErrSlotBusy if slot already has a live chunk, rather
// than silently leaking the previous handle.
func (s *Store) Chunkify(slot uint64, buf []byte) (*chunk.Chunk, error) {
	if slot < uint64(len(s.live)) && s.live[slot] != nil {
		s.log.Errorf("chunkify: slot %d already has a live chunk\n", slot)
		return nil, errmsg.ErrSlotBusy
	}
	c, err := chunk.NewFromBuffer(s.array, s.file, slot, buf)
	if err != nil {
		return nil, err
	}
	s.bind(slot, c)
	return c, nil
}

// OpenChunk reads slot's committed payload into buf and tracks the
// resulting handle as live. Same occupied-slot policy as Chunkify.
func (s *Store) OpenChunk(slot uint64, buf []byte) (*chunk.Chunk, error) {
	if slot < uint64(len(s.live)) && s.live[slot] != nil {
		s.log.Errorf("open_chunk: slot %d already has a live chunk\n", slot)
		return nil, errmsg.ErrSlotBusy
	}
	c, err := chunk.LoadInto(s.array, s.file, slot, buf)
	if err != nil {
		return nil, err
	}
	s.bind(slot, c)
	return c, nil
}

func (s *Store) bind(slot uint64, c *chunk.Chunk) {
	c.SetRelease(func() {
		s.live[slot] = nil
		s.refs--
	})
	s.live[slot] = c
	s.refs++
	s.dirty()
}

// Commit appends the array snapshot and rewrites the header to point at
// it. It does not commit individual chunk buffers; call CommitChunks (or
// CommitAll) first if any live chunk holds unwritten payload changes.
func (s *Store) Commit() error {
	if err := s.array.Commit(s.file, s.header); err != nil {
		return err
	}
	flush(s.log, s.file, s.cfg)
	if err := s.header.Commit(s.file); err != nil {
		return err
	}
	flush(s.log, s.file, s.cfg)
	s.state = stateCommitted
	return nil
}

// CommitChunks appends every live chunk's current buffer to end-of-file
// and updates its index entry, without touching the array snapshot or the
// header.
func (s *Store) CommitChunks() error {
	for _, c := range s.live {
		if c == nil {
			continue
		}
		if err := c.Commit(); err != nil {
			return err
		}
		flush(s.log, s.file, s.cfg)
	}
	return nil
}

// CommitAll commits every live chunk, then the array snapshot and header.
func (s *Store) CommitAll() error {
	if err := s.CommitChunks(); err != nil {
		return err
	}
	return s.Commit()
}

// Destroy releases the store's resources, failing with ErrOpenChunks if
// any chunk handle is still live. Callers must Destroy every chunk first
// so refs reaches zero.
func (s *Store) Destroy() error {
	if s.refs > 0 {
		return errmsg.ErrOpenChunks
	}
	return s.destroy()
}

// DestroyUnsafe releases the store's resources regardless of outstanding
// live chunks. Any chunk handle the caller still holds becomes invalid.
func (s *Store) DestroyUnsafe() error {
	return s.destroy()
}

// Close commits the store's current state, then destroys it.
func (s *Store) Close() error {
	if err := s.Commit(); err != nil {
		return err
	}
	return s.Destroy()
}

func (s *Store) destroy() error {
	if s.state == stateDestroyed {
		return nil
	}
	s.live = nil
	s.array = nil
	s.header = nil
	s.state = stateDestroyed
	return s.file.Close()
}

func (s *Store) dirty() {
	if s.state != stateDestroyed {
		s.state = stateDirty
	}
}

func flush(log logger.Log, fp *os.File, cfg Config) {
	if !cfg.FlushOnCommit {
		return
	}
	if err := unix.Fsync(int(fp.Fd())); err != nil {
		log.Errorf("fsync failed: %v\n", err)
	}
}
