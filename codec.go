package hgsave

import (
	"bytes"
	"fmt"

	"github.com/bsm/hgsave/tree"
)

// Codec converts between save files and documents. A Codec holds only
// immutable options and is safe for concurrent use.
type Codec struct {
	o *Options
}

// NewCodec returns a Codec.
func NewCodec(o *Options) *Codec {
	return &Codec{o: o.norm()}
}

var defaultCodec = NewCodec(nil)

// Compress splits data into chunks and frames each as one LZ4 block.
// Empty input yields empty output.
func (c *Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data)/2 + headerSize)

	w := NewWriter(&buf, c.o)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress concatenates the decompressed payloads of all blocks in
// data. If a block does not start with Magic, a warning is logged and
// data is returned unchanged, so already decompressed input passes
// through. The same applies to corrupt input that happens not to start
// with Magic.
func (c *Codec) Decompress(data []byte) ([]byte, error) {
	out := make([]byte, 0, 2*len(data))

	var h BlockHeader
	for pos := 0; pos < len(data); {
		if !IsContainer(data[pos:]) {
			c.o.logger().Warn("invalid block, returning input unchanged (already decompressed?)",
				"offset", pos, "size", len(data))
			return data, nil
		}
		if len(data)-pos < headerSize {
			return nil, fmt.Errorf("%w: header at offset %d", ErrTruncated, pos)
		}

		h.decode(data[pos:])
		pos += headerSize

		if uint64(h.CompressedSize) > uint64(len(data)-pos) {
			return nil, fmt.Errorf("%w: payload at offset %d", ErrTruncated, pos)
		}
		if err := h.checkSizes(); err != nil {
			return nil, fmt.Errorf("offset %d: %w", pos-headerSize, err)
		}
		src := data[pos : pos+int(h.CompressedSize)]
		pos += len(src)

		n := len(out)
		out = append(out, make([]byte, h.UncompressedSize)...)
		if err := decodeBlock(src, out[n:]); err != nil {
			return nil, fmt.Errorf("offset %d: %w", pos-len(src)-headerSize, err)
		}
	}
	return out, nil
}

// Unpack decompresses raw, decodes it as text and parses the document,
// translating object keys to their long form.
func (c *Codec) Unpack(raw []byte, m tree.KeyMapper, strict bool) (tree.Value, error) {
	plain, err := c.Decompress(raw)
	if err != nil {
		return tree.Value{}, err
	}
	return tree.Decode(BytesToText(plain), m, strict)
}

// Pack serializes the document with short object keys, encodes it as
// text and compresses it.
func (c *Codec) Pack(v tree.Value, m tree.KeyMapper, strict bool) ([]byte, error) {
	text, err := tree.Encode(v, m, strict)
	if err != nil {
		return nil, err
	}
	plain, err := TextToBytes(text)
	if err != nil {
		return nil, err
	}
	return c.Compress(plain)
}

// Compress compresses data using default options.
func Compress(data []byte) ([]byte, error) { return defaultCodec.Compress(data) }

// Decompress decompresses data using default options.
func Decompress(data []byte) ([]byte, error) { return defaultCodec.Decompress(data) }

// Unpack converts a save file to a document using default options.
func Unpack(raw []byte, m tree.KeyMapper, strict bool) (tree.Value, error) {
	return defaultCodec.Unpack(raw, m, strict)
}

// Pack converts a document to a save file using default options.
func Pack(v tree.Value, m tree.KeyMapper, strict bool) ([]byte, error) {
	return defaultCodec.Pack(v, m, strict)
}
