package hgsave

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
)

// Magic is the sentinel opening every block.
const Magic uint32 = 0xfeeda1e5

// DefaultChunkSize is the uncompressed size of every block but the last.
const DefaultChunkSize = 0x80000

const headerSize = 16

// maxExpansion bounds the LZ4 decompression ratio: every 255 bytes of a
// match length cost at least one byte of input.
const maxExpansion = 255

var (
	// ErrBadMagic is returned by strict readers when a block does not start with Magic.
	ErrBadMagic = errors.New("hgsave: bad magic byte sequence")
	// ErrTruncated is returned when a block header or payload runs past the end of input.
	ErrTruncated = errors.New("hgsave: truncated block")
	// ErrCorrupt is returned when a block payload cannot be decompressed.
	ErrCorrupt = errors.New("hgsave: corrupt block")
	// ErrUnencodable is returned when text contains characters outside ISO-8859-15.
	ErrUnencodable = errors.New("hgsave: text not representable in ISO-8859-15")

	errClosed = errors.New("hgsave: is closed")
)

// BlockHeader is the fixed 16-byte frame preceding every compressed payload.
type BlockHeader struct {
	Magic            uint32 // always Magic for a trusted block
	CompressedSize   uint32 // payload bytes following the header
	UncompressedSize uint32 // payload bytes after decompression
	Reserved         uint32 // zero on write, ignored on read
}

func (h *BlockHeader) decode(p []byte) {
	h.Magic = binary.LittleEndian.Uint32(p[0:])
	h.CompressedSize = binary.LittleEndian.Uint32(p[4:])
	h.UncompressedSize = binary.LittleEndian.Uint32(p[8:])
	h.Reserved = binary.LittleEndian.Uint32(p[12:])
}

func (h *BlockHeader) encode(p []byte) {
	binary.LittleEndian.PutUint32(p[0:], h.Magic)
	binary.LittleEndian.PutUint32(p[4:], h.CompressedSize)
	binary.LittleEndian.PutUint32(p[8:], h.UncompressedSize)
	binary.LittleEndian.PutUint32(p[12:], 0)
}

// checkSizes rejects headers claiming more output than the payload can
// produce, before any buffer is sized from them.
func (h *BlockHeader) checkSizes() error {
	if uint64(h.UncompressedSize) > maxExpansion*uint64(h.CompressedSize)+headerSize {
		return fmt.Errorf("%w: %d bytes cannot expand to %d", ErrCorrupt, h.CompressedSize, h.UncompressedSize)
	}
	return nil
}

// IsContainer reports whether data starts with a block magic.
func IsContainer(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == Magic
}

// --------------------------------------------------------------------

// Options configure a Codec or Writer.
type Options struct {
	// ChunkSize is the uncompressed size of each block.
	// Default: 0x80000 (512KiB).
	ChunkSize int

	// Logger receives diagnostics, such as the pass-through of
	// input that is not a container.
	// Default: slog.Default().
	Logger *slog.Logger
}

func (o *Options) norm() *Options {
	var oo Options
	if o != nil {
		oo = *o
	}

	if oo.ChunkSize < 1 {
		oo.ChunkSize = DefaultChunkSize
	}
	return &oo
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
