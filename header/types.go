package header

const (
	// Size is the fixed on-disk width of a Header record in bytes.
	Size = 64

	// Version is the format version this package writes. Load does not
	// check the version field.
	Version = 4

	// Endianness is the constant stamped into every header; Load aborts if
	// the value read back does not match.
	Endianness = 0x000A
)

// Magic is "CHUNK   " (5 letters padded with 3 spaces to 8 bytes),
// interpreted as a little-endian integer on disk.
var Magic = [8]byte{'C', 'H', 'U', 'N', 'K', ' ', ' ', ' '}

// Header is the fixed 64-byte record living at offset 0 of a store file.
// magic, version, endianness and dataStart never change after New; the
// remaining fields are rewritten on every Commit.
type Header struct {
	magic       [8]byte
	version     uint32
	reserved    uint16
	endianness  uint16
	arraySize   uint64
	dataStart   uint64
	firstCommit uint64
	currentCommit uint64
	auxOffset   uint64
	auxSize     uint64
}
