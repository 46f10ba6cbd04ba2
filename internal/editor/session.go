// Package editor holds the state of an editing session: the open save
// document and the settings needed to load and store it.
package editor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bsm/hgsave"
	"github.com/bsm/hgsave/internal/backup"
	"github.com/bsm/hgsave/internal/fsutil"
	"github.com/bsm/hgsave/keymap"
	"github.com/bsm/hgsave/tree"
)

// ErrNoDocument is returned when an operation needs an open document.
var ErrNoDocument = errors.New("editor: no document open")

// Format is the on-disk representation of a document.
type Format uint8

// Supported formats.
const (
	// Container is the compressed save format with short keys.
	Container Format = iota
	// JSON is plain JSON text with long keys.
	JSON
)

func (f Format) String() string {
	if f == JSON {
		return "json"
	}
	return "container"
}

// FormatOf chooses the format for path by its extension.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return Container
}

// Options configure a Session.
type Options struct {
	// Keys translates object keys. A nil table leaves keys unchanged.
	Keys *keymap.Table

	// Strict fails on keys missing from Keys.
	Strict bool

	// Codec reads and writes containers.
	// Default: hgsave.NewCodec(nil).
	Codec *hgsave.Codec

	// Backup, when set, makes Save back up files before overwriting them.
	Backup *backup.Options

	// Logger receives progress messages.
	// Default: slog.Default().
	Logger *slog.Logger
}

func (o *Options) norm() *Options {
	var oo Options
	if o != nil {
		oo = *o
	}

	if oo.Codec == nil {
		oo.Codec = hgsave.NewCodec(&hgsave.Options{Logger: oo.Logger})
	}
	if oo.Logger == nil {
		oo.Logger = slog.Default()
	}
	return &oo
}

// Session owns the current document. It is not safe for concurrent use.
type Session struct {
	o *Options

	doc    tree.Value
	path   string
	loaded bool
}

// New returns an empty session.
func New(o *Options) *Session {
	return &Session{o: o.norm()}
}

// Path returns the path the document was opened from.
func (s *Session) Path() string { return s.path }

// Document returns the open document, which may be modified in place.
func (s *Session) Document() (*tree.Value, error) {
	if !s.loaded {
		return nil, ErrNoDocument
	}
	return &s.doc, nil
}

// Load replaces the open document.
func (s *Session) Load(doc tree.Value, path string) {
	s.doc, s.path, s.loaded = doc, path, true
}

// Open reads the document at path.
func (s *Session) Open(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	format := FormatOf(path)

	var doc tree.Value
	switch format {
	case JSON:
		doc, err = tree.Parse(string(raw))
	default:
		doc, err = s.o.Codec.Unpack(raw, s.o.Keys, s.o.Strict)
	}
	if err != nil {
		return fmt.Errorf("editor: open %s: %w", path, err)
	}

	s.o.Logger.Debug("opened document", "path", path, "format", format, "size", len(raw))
	s.Load(doc, path)
	return nil
}

// Encode serializes the open document in the given format.
func (s *Session) Encode(format Format) ([]byte, error) {
	if !s.loaded {
		return nil, ErrNoDocument
	}

	switch format {
	case JSON:
		text, err := tree.Marshal(s.doc)
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	default:
		return s.o.Codec.Pack(s.doc, s.o.Keys, s.o.Strict)
	}
}

// Save writes the open document to path, choosing the format by its
// extension. An existing file is backed up first if configured.
func (s *Session) Save(path string) error {
	format := FormatOf(path)

	data, err := s.Encode(format)
	if err != nil {
		return fmt.Errorf("editor: save %s: %w", path, err)
	}

	if s.o.Backup != nil {
		bak, err := backup.Create(path, s.o.Backup)
		if err != nil {
			return fmt.Errorf("editor: save %s: %w", path, err)
		}
		if bak != "" {
			s.o.Logger.Info("backed up previous file", "path", path, "backup", bak)
		}
	}

	if err := fsutil.WriteBytes(path, 0o644, data); err != nil {
		return fmt.Errorf("editor: save %s: %w", path, err)
	}

	s.o.Logger.Debug("saved document", "path", path, "format", format, "size", len(data))
	return nil
}

// Lookup returns the node addressed by the JSON pointer ptr.
func (s *Session) Lookup(ptr string) (*tree.Value, error) {
	if !s.loaded {
		return nil, ErrNoDocument
	}
	return s.doc.Lookup(ptr)
}

// Show returns the node addressed by ptr as tab-indented JSON.
func (s *Session) Show(ptr string) (string, error) {
	node, err := s.Lookup(ptr)
	if err != nil {
		return "", err
	}
	return tree.MarshalIndent(*node, "\t")
}

// Replace parses text as plain JSON, keys as written, and stores it at
// ptr. On a parse error the document is unchanged.
func (s *Session) Replace(ptr, text string) error {
	if !s.loaded {
		return ErrNoDocument
	}

	v, err := tree.Parse(text)
	if err != nil {
		return err
	}
	return s.doc.Replace(ptr, v)
}

// WriteTo writes the open document to w as tab-indented JSON.
func (s *Session) WriteTo(w io.Writer) (int64, error) {
	text, err := s.Show("")
	if err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, text+"\n")
	return int64(n), err
}
