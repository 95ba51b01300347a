// Package rw implements the positional read/write/append primitives shared
// by the header, index, and chunk packages.
package rw

import (
	"io"
	"os"

	"github.com/basalt-db/chunkstore/errmsg"
)

// ReadAt reads exactly n bytes at offset o, failing with ErrShortRead if
// fewer bytes were returned.
func ReadAt(fp *os.File, o int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	m, err := fp.ReadAt(buf, o)
	switch {
	case err != nil:
		return nil, err
	case m != n:
		return nil, errmsg.ErrShortRead
	}
	return buf, nil
}

// WriteAt writes buf at offset o, failing with ErrShortWrite if fewer bytes
// were written than supplied.
func WriteAt(fp *os.File, o int64, buf []byte) error {
	n, err := fp.WriteAt(buf, o)
	switch {
	case err != nil:
		return err
	case n != len(buf):
		return errmsg.ErrShortWrite
	}
	return nil
}

// AppendAt obtains the end-of-file position and writes buf there as two
// separate observable acts, per the positional I/O model: a Seek to learn
// the offset, then a WriteAt at that offset. Serializing callers is the
// caller's responsibility.
func AppendAt(fp *os.File, buf []byte) (int64, error) {
	p, err := fp.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if err := WriteAt(fp, p, buf); err != nil {
		return 0, err
	}
	return p, nil
}
