package hgsave

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// The charmap table leaves the C1 range 0x80-0x9f undefined. Those bytes
// map to the code points of the same value.
const c1First, c1Last = 0x80, 0x9f

// BytesToText strips all trailing NUL bytes from b and decodes the
// remainder as ISO-8859-15. Every byte maps to exactly one character,
// so decoding never fails.
func BytesToText(b []byte) string {
	b = bytes.TrimRight(b, "\x00")

	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c >= c1First && c <= c1Last {
			sb.WriteRune(rune(c))
			continue
		}
		sb.WriteRune(charmap.ISO8859_15.DecodeByte(c))
	}
	return sb.String()
}

// TextToBytes encodes s as ISO-8859-15 and appends a single NUL byte.
func TextToBytes(s string) ([]byte, error) {
	b := make([]byte, 0, len(s)+1)
	for i, r := range s {
		if r >= c1First && r <= c1Last {
			b = append(b, byte(r))
			continue
		}
		c, ok := charmap.ISO8859_15.EncodeRune(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrUnencodable, r, i)
		}
		b = append(b, c)
	}
	return append(b, 0), nil
}
