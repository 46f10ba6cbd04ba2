// Package backup keeps compressed copies of save files before they are
// overwritten.
package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bsm/hgsave/internal/fsutil"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Compression is the backup compression codec.
type Compression uint8

// Supported compression codecs.
const (
	Snappy Compression = iota
	Zstd
	None
	unknownCompression
)

func (c Compression) isValid() bool {
	return c < unknownCompression
}

// String returns the codec name.
func (c Compression) String() string {
	switch c {
	case Snappy:
		return "snappy"
	case Zstd:
		return "zstd"
	case None:
		return "none"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// Ext returns the file extension appended to backups.
func (c Compression) Ext() string {
	switch c {
	case Snappy:
		return ".sz"
	case Zstd:
		return ".zst"
	default:
		return ""
	}
}

// ParseCompression parses a codec name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "snappy":
		return Snappy, nil
	case "zstd":
		return Zstd, nil
	case "none":
		return None, nil
	default:
		return 0, fmt.Errorf("backup: unknown compression %q", name)
	}
}

// Options define backup specific options.
type Options struct {
	// Compression is the codec to use.
	// Default: Snappy.
	Compression Compression

	// Suffix is appended to the source path, before the codec extension.
	// Default: ".bak".
	Suffix string
}

func (o *Options) norm() *Options {
	var oo Options
	if o != nil {
		oo = *o
	}

	if !oo.Compression.isValid() {
		oo.Compression = Snappy
	}
	if oo.Suffix == "" {
		oo.Suffix = ".bak"
	}
	return &oo
}

// Path returns the backup path for src.
func Path(src string, o *Options) string {
	o = o.norm()
	return src + o.Suffix + o.Compression.Ext()
}

// Create copies src to its backup path and returns that path. A missing
// src is not an error; the returned path is empty.
func Create(src string, o *Options) (string, error) {
	o = o.norm()

	in, err := os.Open(src)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	defer in.Close()

	dst := Path(src, o)
	err = fsutil.WriteFile(dst, 0o644, func(w io.Writer) error {
		return compress(w, in, o.Compression)
	})
	if err != nil {
		return "", fmt.Errorf("backup: %s: %w", dst, err)
	}
	return dst, nil
}

// Restore decompresses the backup at src into dst. The codec is derived
// from the extension of src.
func Restore(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	defer in.Close()

	c := detect(src)
	err = fsutil.WriteFile(dst, 0o644, func(w io.Writer) error {
		return decompress(w, in, c)
	})
	if err != nil {
		return fmt.Errorf("backup: restore %s: %w", src, err)
	}
	return nil
}

func detect(name string) Compression {
	switch {
	case strings.HasSuffix(name, Snappy.Ext()):
		return Snappy
	case strings.HasSuffix(name, Zstd.Ext()):
		return Zstd
	default:
		return None
	}
}

func compress(w io.Writer, r io.Reader, c Compression) error {
	switch c {
	case Snappy:
		sw := snappy.NewBufferedWriter(w)
		if _, err := io.Copy(sw, r); err != nil {
			_ = sw.Close()
			return err
		}
		return sw.Close()

	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return err
		}
		if _, err := io.Copy(zw, r); err != nil {
			_ = zw.Close()
			return err
		}
		return zw.Close()

	default:
		_, err := io.Copy(w, r)
		return err
	}
}

func decompress(w io.Writer, r io.Reader, c Compression) error {
	switch c {
	case Snappy:
		_, err := io.Copy(w, snappy.NewReader(r))
		return err

	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return err
		}
		defer zr.Close()

		_, err = zr.WriteTo(w)
		return err

	default:
		_, err := io.Copy(w, r)
		return err
	}
}
