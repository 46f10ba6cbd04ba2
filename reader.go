package hgsave

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// Reader instances iterate across the blocks of a container and expose
// the decompressed payload as an io.Reader. Unlike Decompress, a Reader
// is strict: a block without Magic fails with ErrBadMagic.
type Reader struct {
	r io.Reader

	hdr BlockHeader
	tmp []byte // header scratch
	raw []byte // compressed payload
	out []byte // decompressed payload of the current block
	pos int    // bytes of out consumed by Read
	num int    // blocks read

	err error
}

// NewReader wraps a reader and returns a Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, tmp: make([]byte, headerSize)}
}

// Next advances to the next block and returns true if successful.
// It returns false at the end of the container or on error, see Err.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}

	if _, err := io.ReadFull(r.r, r.tmp); err == io.EOF {
		return false
	} else if err == io.ErrUnexpectedEOF {
		r.err = fmt.Errorf("%w: header of block %d", ErrTruncated, r.num)
		return false
	} else if err != nil {
		r.err = err
		return false
	}

	r.hdr.decode(r.tmp)
	if r.hdr.Magic != Magic {
		r.err = fmt.Errorf("%w: block %d starts with %#08x", ErrBadMagic, r.num, r.hdr.Magic)
		return false
	}
	if err := r.hdr.checkSizes(); err != nil {
		r.err = fmt.Errorf("block %d: %w", r.num, err)
		return false
	}

	releaseBuffer(r.raw)
	r.raw = fetchBuffer(int(r.hdr.CompressedSize))
	if _, err := io.ReadFull(r.r, r.raw); err == io.EOF || err == io.ErrUnexpectedEOF {
		r.err = fmt.Errorf("%w: payload of block %d", ErrTruncated, r.num)
		return false
	} else if err != nil {
		r.err = err
		return false
	}

	releaseBuffer(r.out)
	r.out = fetchBuffer(int(r.hdr.UncompressedSize))
	if err := decodeBlock(r.raw, r.out); err != nil {
		r.err = fmt.Errorf("block %d: %w", r.num, err)
		return false
	}

	r.pos = 0
	r.num++
	return true
}

// Header returns the header of the current block.
func (r *Reader) Header() BlockHeader { return r.hdr }

// Bytes returns the decompressed payload of the current block. Please
// note that the buffer is reused and must be copied if used beyond the
// next cursor move.
func (r *Reader) Bytes() []byte { return r.out }

// NumBlocks returns the number of blocks read so far.
func (r *Reader) NumBlocks() int { return r.num }

// Err exposes reader errors, if any.
func (r *Reader) Err() error { return r.err }

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	for r.pos >= len(r.out) {
		if !r.Next() {
			if r.err != nil {
				return 0, r.err
			}
			return 0, io.EOF
		}
	}

	n := copy(p, r.out[r.pos:])
	r.pos += n
	return n, nil
}

// Release releases the reader and frees up resources. The reader must
// not be used after this method is called.
func (r *Reader) Release() {
	releaseBuffer(r.raw)
	releaseBuffer(r.out)
	r.raw, r.out = nil, nil
	r.err = errReleased
}

var errReleased = errors.New("hgsave: reader was released")

// --------------------------------------------------------------------

// ScanBlocks returns the headers of all blocks in data without
// decompressing any payload. It is strict about magic and framing.
func ScanBlocks(data []byte) ([]BlockHeader, error) {
	var headers []BlockHeader

	for pos := 0; pos < len(data); {
		if len(data)-pos < headerSize {
			if !IsContainer(data[pos:]) {
				return headers, fmt.Errorf("%w: at offset %d", ErrBadMagic, pos)
			}
			return headers, fmt.Errorf("%w: header at offset %d", ErrTruncated, pos)
		}

		var h BlockHeader
		h.decode(data[pos:])
		if h.Magic != Magic {
			return headers, fmt.Errorf("%w: at offset %d", ErrBadMagic, pos)
		}
		pos += headerSize

		if uint64(h.CompressedSize) > uint64(len(data)-pos) {
			return headers, fmt.Errorf("%w: payload at offset %d", ErrTruncated, pos)
		}
		pos += int(h.CompressedSize)
		headers = append(headers, h)
	}
	return headers, nil
}

// decodeBlock decompresses src into dst, which must be sized to the
// expected uncompressed length.
func decodeBlock(src, dst []byte) error {
	if len(dst) == 0 {
		return nil
	}

	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if n != len(dst) {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrCorrupt, n, len(dst))
	}
	return nil
}

// --------------------------------------------------------------------

var bufPool sync.Pool

func fetchBuffer(sz int) []byte {
	if v := bufPool.Get(); v != nil {
		if p := v.([]byte); sz <= cap(p) {
			return p[:sz]
		}
	}
	return make([]byte, sz)
}

func releaseBuffer(p []byte) {
	if cap(p) != 0 {
		bufPool.Put(p)
	}
}
