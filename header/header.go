package header

import (
	"encoding/binary"
	"os"

	"github.com/basalt-db/chunkstore/errmsg"
	"github.com/basalt-db/chunkstore/internal/rw"
)

// New builds a fresh in-memory header: magic, version and endianness are
// stamped, dataStart is set to the header's own size, and every commit
// pointer starts at zero.
func New() *Header {
	return &Header{
		magic:      Magic,
		version:    Version,
		endianness: Endianness,
		dataStart:  Size,
	}
}

// Load reads the Size bytes at offset 0 of fp and decodes them into a
// Header, failing with ErrMalformedHeader if the magic or endianness do
// not match.
func Load(fp *os.File) (*Header, error) {
	buf, err := rw.ReadAt(fp, 0, Size)
	if err != nil {
		return nil, err
	}
	h := decode(buf)
	if h.magic != Magic || h.endianness != Endianness {
		return nil, errmsg.ErrMalformedHeader
	}
	return h, nil
}

// Reload re-reads the header bytes at offset 0, refreshing h in place.
func (h *Header) Reload(fp *os.File) error {
	buf, err := rw.ReadAt(fp, 0, Size)
	if err != nil {
		return err
	}
	*h = *decode(buf)
	return nil
}

// Commit appends a historical copy of h to end-of-file, then overwrites the
// live record at offset 0 with the same bytes. If the process dies after
// the append, the in-place header on disk is untouched and still
// references the previous snapshot; a death mid-rewrite can leave a torn
// header at offset 0 mixing old and new fields. Load does not detect such a
// tear, since the magic and endianness bytes are the same in both records.
// On a file shorter than Size the live record is written first, so the
// historical copy lands after it rather than on top of it.
func (h *Header) Commit(fp *os.File) error {
	buf := h.encode()
	st, err := fp.Stat()
	if err != nil {
		return err
	}
	if st.Size() < Size {
		if err := rw.WriteAt(fp, 0, buf); err != nil {
			return err
		}
	}
	if _, err := rw.AppendAt(fp, buf); err != nil {
		return err
	}
	return rw.WriteAt(fp, 0, buf)
}

func (h *Header) ArraySize() uint64     { return h.arraySize }
func (h *Header) SetArraySize(n uint64) { h.arraySize = n }

func (h *Header) FirstCommit() uint64     { return h.firstCommit }
func (h *Header) SetFirstCommit(o uint64) { h.firstCommit = o }

func (h *Header) CurrentCommit() uint64     { return h.currentCommit }
func (h *Header) SetCurrentCommit(o uint64) { h.currentCommit = o }

func (h *Header) AuxOffset() uint64     { return h.auxOffset }
func (h *Header) SetAuxOffset(o uint64) { h.auxOffset = o }

func (h *Header) AuxSize() uint64     { return h.auxSize }
func (h *Header) SetAuxSize(n uint64) { h.auxSize = n }

func (h *Header) DataStart() uint64 { return h.dataStart }
func (h *Header) Version() uint32   { return h.version }

func (h *Header) encode() []byte {
	buf := make([]byte, Size)
	copy(buf[0:8], h.magic[:])
	binary.LittleEndian.PutUint32(buf[8:12], h.version)
	binary.LittleEndian.PutUint16(buf[12:14], h.reserved)
	binary.LittleEndian.PutUint16(buf[14:16], h.endianness)
	binary.LittleEndian.PutUint64(buf[16:24], h.arraySize)
	binary.LittleEndian.PutUint64(buf[24:32], h.dataStart)
	binary.LittleEndian.PutUint64(buf[32:40], h.firstCommit)
	binary.LittleEndian.PutUint64(buf[40:48], h.currentCommit)
	binary.LittleEndian.PutUint64(buf[48:56], h.auxOffset)
	binary.LittleEndian.PutUint64(buf[56:64], h.auxSize)
	return buf
}

func decode(buf []byte) *Header {
	h := &Header{}
	copy(h.magic[:], buf[0:8])
	h.version = binary.LittleEndian.Uint32(buf[8:12])
	h.reserved = binary.LittleEndian.Uint16(buf[12:14])
	h.endianness = binary.LittleEndian.Uint16(buf[14:16])
	h.arraySize = binary.LittleEndian.Uint64(buf[16:24])
	h.dataStart = binary.LittleEndian.Uint64(buf[24:32])
	h.firstCommit = binary.LittleEndian.Uint64(buf[32:40])
	h.currentCommit = binary.LittleEndian.Uint64(buf[40:48])
	h.auxOffset = binary.LittleEndian.Uint64(buf[48:56])
	h.auxSize = binary.LittleEndian.Uint64(buf[56:64])
	return h
}
