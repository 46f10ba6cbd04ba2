package hgsave

import (
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Writer instances can write a container. Bytes written are buffered
// into chunks of Options.ChunkSize; each full chunk is compressed and
// framed as one block.
type Writer struct {
	w io.Writer
	o *Options

	buf []byte // plain chunk buffer
	lz  []byte // compressed buffer
	hdr []byte // scratch header buffer

	comp   lz4.Compressor
	blocks int
}

// NewWriter wraps a writer and returns a Writer.
func NewWriter(w io.Writer, o *Options) *Writer {
	o = o.norm()
	return &Writer{
		w:   w,
		o:   o,
		buf: make([]byte, 0, o.ChunkSize),
		hdr: make([]byte, headerSize),
	}
}

// Write appends p to the container payload.
func (w *Writer) Write(p []byte) (int, error) {
	if w.hdr == nil {
		return 0, errClosed
	}

	var n int
	for len(p) != 0 {
		room := w.o.ChunkSize - len(w.buf)
		if room > len(p) {
			room = len(p)
		}
		w.buf = append(w.buf, p[:room]...)
		p = p[room:]
		n += room

		if len(w.buf) == w.o.ChunkSize {
			if err := w.flush(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// NumBlocks returns the number of blocks written so far.
func (w *Writer) NumBlocks() int {
	return w.blocks
}

// Close flushes the final, possibly short, block. It does not close
// the underlying writer.
func (w *Writer) Close() error {
	if w.hdr == nil {
		return errClosed
	}
	if err := w.flush(); err != nil {
		return err
	}
	w.hdr = nil
	return nil
}

func (w *Writer) flush() error {
	if len(w.buf) == 0 {
		return nil
	}

	if bound := lz4.CompressBlockBound(len(w.buf)); cap(w.lz) < bound {
		w.lz = make([]byte, bound)
	}
	n, err := w.comp.CompressBlock(w.buf, w.lz[:cap(w.lz)])
	if err != nil {
		return fmt.Errorf("hgsave: lz4 compress: %w", err)
	}

	h := BlockHeader{
		Magic:            Magic,
		CompressedSize:   uint32(n),
		UncompressedSize: uint32(len(w.buf)),
	}
	h.encode(w.hdr)

	if _, err := w.w.Write(w.hdr); err != nil {
		return err
	}
	if _, err := w.w.Write(w.lz[:n]); err != nil {
		return err
	}

	w.blocks++
	w.buf = w.buf[:0]
	return nil
}
