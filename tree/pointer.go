package tree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound is returned when a pointer does not resolve.
var ErrNotFound = errors.New("tree: pointer not found")

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// SplitPointer splits an RFC 6901 JSON pointer into unescaped reference
// tokens. The empty pointer refers to the whole document.
func SplitPointer(ptr string) ([]string, error) {
	if ptr == "" {
		return nil, nil
	}
	if ptr[0] != '/' {
		return nil, fmt.Errorf("tree: invalid pointer %q: must be empty or start with '/'", ptr)
	}

	tokens := strings.Split(ptr[1:], "/")
	for i, t := range tokens {
		tokens[i] = pointerUnescaper.Replace(t)
	}
	return tokens, nil
}

// Lookup returns a pointer to the node addressed by ptr. The result
// aliases v and stays valid until the enclosing array or object is
// resized.
func (v *Value) Lookup(ptr string) (*Value, error) {
	tokens, err := SplitPointer(ptr)
	if err != nil {
		return nil, err
	}

	cur := v
	for i, t := range tokens {
		var next *Value
		switch cur.kind {
		case Object:
			next = cur.Get(t)
		case Array:
			if n, err := strconv.Atoi(t); err == nil && strconv.Itoa(n) == t {
				next = cur.Index(n)
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, "/"+strings.Join(tokens[:i+1], "/"))
		}
		cur = next
	}
	return cur, nil
}

// Replace stores val at ptr. The addressed node must exist, except
// that a missing final member of an object is added.
func (v *Value) Replace(ptr string, val Value) error {
	tokens, err := SplitPointer(ptr)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		*v = val
		return nil
	}

	parentPtr := ptr[:strings.LastIndexByte(ptr, '/')]
	parent, err := v.Lookup(parentPtr)
	if err != nil {
		return err
	}

	last := tokens[len(tokens)-1]
	if parent.kind == Object {
		parent.Set(last, val)
		return nil
	}

	node, err := v.Lookup(ptr)
	if err != nil {
		return err
	}
	*node = val
	return nil
}
