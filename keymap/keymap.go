// Package keymap translates between the short object keys stored in
// save files and their human-readable long forms.
//
// A Table is built once from a definition, a JSON object mapping short
// keys to long keys, and is read-only afterwards. It is safe for
// concurrent use.
package keymap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/jsonc"
)

// ErrKeyNotFound is returned by strict lookups for unmapped keys.
var ErrKeyNotFound = errors.New("keymap: key not found")

// Pair is a single definition entry.
type Pair struct {
	Short string
	Long  string
}

// Table is an immutable bidirectional key mapping.
type Table struct {
	long  map[string]string // short -> long
	short map[string]string // long -> short
}

// New builds a table from pairs in registration order. A repeated short
// key keeps its last long value. A long value claimed by several short
// keys maps back to the last one registered.
func New(pairs []Pair) *Table {
	t := &Table{
		long:  make(map[string]string, len(pairs)),
		short: make(map[string]string, len(pairs)),
	}

	order := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if _, ok := t.long[p.Short]; !ok {
			order = append(order, p.Short)
		}
		t.long[p.Short] = p.Long
	}
	for _, s := range order {
		t.short[t.long[s]] = s
	}
	return t
}

// FromMap builds a table from a plain map. Registration order is the
// sorted order of short keys.
func FromMap(m map[string]string) *Table {
	pairs := make([]Pair, 0, len(m))
	for s, l := range m {
		pairs = append(pairs, Pair{Short: s, Long: l})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Short < pairs[j].Short })
	return New(pairs)
}

// Parse reads a definition. Comments and trailing commas are accepted.
// Entries are registered in document order.
func Parse(data []byte) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))

	if tok, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("keymap: parse definition: %w", err)
	} else if tok != json.Delim('{') {
		return nil, fmt.Errorf("keymap: parse definition: expected object, got %v", tok)
	}

	var pairs []Pair
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("keymap: parse definition: %w", err)
		}
		short := tok.(string)

		var long string
		if err := dec.Decode(&long); err != nil {
			return nil, fmt.Errorf("keymap: parse definition: entry %q: %w", short, err)
		}
		pairs = append(pairs, Pair{Short: short, Long: long})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("keymap: parse definition: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("keymap: parse definition: trailing data after object")
	}
	return New(pairs), nil
}

// Load reads a definition file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keymap: %w", err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// SidecarPath returns the definition path co-located with the given
// executable: its extension, if any, is replaced by ".json".
func SidecarPath(exe string) string {
	return exe[:len(exe)-len(filepath.Ext(exe))] + ".json"
}

// DefaultPath returns the sidecar definition path of the running executable.
func DefaultPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("keymap: locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return SidecarPath(exe), nil
}

// Len returns the number of short keys.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.long)
}

// ToLong returns the long form of key. Unmapped keys are returned
// unchanged unless strict is set, in which case ErrKeyNotFound is
// returned.
func (t *Table) ToLong(key string, strict bool) (string, error) {
	var m map[string]string
	if t != nil {
		m = t.long
	}
	return lookup(m, key, strict)
}

// ToShort returns the short form of key. Unmapped keys are returned
// unchanged unless strict is set, in which case ErrKeyNotFound is
// returned.
func (t *Table) ToShort(key string, strict bool) (string, error) {
	var m map[string]string
	if t != nil {
		m = t.short
	}
	return lookup(m, key, strict)
}

func lookup(m map[string]string, key string, strict bool) (string, error) {
	if v, ok := m[key]; ok {
		return v, nil
	}
	if strict {
		return "", fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return key, nil
}
