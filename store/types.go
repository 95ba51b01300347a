package store

import (
	"io"
	"os"

	"github.com/basalt-db/chunkstore/chunk"
	"github.com/basalt-db/chunkstore/header"
	"github.com/basalt-db/chunkstore/index"
	"github.com/nnsgmsone/damrey/logger"
)

// state tracks the Store's lifecycle:
// Created -> Open <-> Dirty -> Committed -> ... -> Destroyed.
type state int

const (
	stateCreated state = iota
	stateOpen
	stateDirty
	stateCommitted
	stateDestroyed
)

// Config configures a Store.
type Config struct {
	// Path is the backing file's path. Create requires it not to exist
	// (an existing file, even an empty one, makes Create fail); Open
	// requires it to already hold a valid header.
	Path string

	// LogWriter receives structured log lines via damrey/logger.
	LogWriter io.Writer

	// FlushOnCommit, when true, calls unix.Fsync after each of Create's
	// three commits, after each chunk append in CommitChunks, after the
	// index append in Commit, and after the header commit in Commit. The
	// header's append and in-place rewrite are not separated by an fsync,
	// and a Chunk.Commit called directly does not fsync.
	FlushOnCommit bool
}

// DefaultConfig returns a Config with sane defaults: logging to stderr and
// no forced flush on every commit (the caller opts in for durability at
// the cost of latency).
func DefaultConfig() Config {
	return Config{
		LogWriter:     os.Stderr,
		FlushOnCommit: false,
	}
}

// Store is the persistence engine's orchestrator: it owns the Header, the
// Array, and the table of live Chunk handles, and is the only component
// that opens or closes the backing file.
type Store struct {
	file *os.File
	cfg  Config
	log  logger.Log

	header *header.Header
	array  *index.Array

	live []*chunk.Chunk
	refs int

	state state
}

// stateNames supports String for debugging and test assertions.
var stateNames = map[state]string{
	stateCreated:   "created",
	stateOpen:      "open",
	stateDirty:     "dirty",
	stateCommitted: "committed",
	stateDestroyed: "destroyed",
}

func (st state) String() string { return stateNames[st] }

// State reports the Store's current lifecycle state.
func (s *Store) State() string { return s.state.String() }

// Refs reports the number of currently live chunk handles.
func (s *Store) Refs() int { return s.refs }
