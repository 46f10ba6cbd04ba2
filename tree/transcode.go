package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrSyntax wraps all JSON parse failures.
var ErrSyntax = errors.New("tree: parse failed")

// KeyMapper renames object keys. ToLong is applied while decoding,
// ToShort while encoding. A strict miss must return an error.
type KeyMapper interface {
	ToLong(key string, strict bool) (string, error)
	ToShort(key string, strict bool) (string, error)
}

// Decode parses text, passing every object key through m.ToLong. A nil
// mapper keeps keys unchanged. Malformed input never yields a partial
// tree.
func Decode(text string, m KeyMapper, strict bool) (Value, error) {
	var rename func(string) (string, error)
	if m != nil {
		rename = func(k string) (string, error) { return m.ToLong(k, strict) }
	}

	d := decoder{dec: json.NewDecoder(strings.NewReader(text)), rename: rename}
	d.dec.UseNumber()

	v, err := d.value()
	if err != nil {
		return Value{}, err
	}
	if _, err := d.dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("%w: extra data after offset %d", ErrSyntax, d.dec.InputOffset())
	}
	return v, nil
}

// Parse parses plain JSON text without renaming keys.
func Parse(text string) (Value, error) {
	return Decode(text, nil, false)
}

// Encode serializes v as compact JSON, passing every object key
// through m.ToShort. A nil mapper keeps keys unchanged.
func Encode(v Value, m KeyMapper, strict bool) (string, error) {
	var rename func(string) (string, error)
	if m != nil {
		rename = func(k string) (string, error) { return m.ToShort(k, strict) }
	}

	e := encoder{rename: rename}
	if err := e.value(v, 0); err != nil {
		return "", err
	}
	return e.buf.String(), nil
}

// Marshal serializes v as compact JSON.
func Marshal(v Value) (string, error) {
	return Encode(v, nil, false)
}

// MarshalIndent serializes v with each nesting level indented by indent.
func MarshalIndent(v Value, indent string) (string, error) {
	e := encoder{indent: indent}
	if err := e.value(v, 0); err != nil {
		return "", err
	}
	return e.buf.String(), nil
}

// --------------------------------------------------------------------

type decoder struct {
	dec    *json.Decoder
	rename func(string) (string, error)
}

func (d *decoder) token() (json.Token, error) {
	tok, err := d.dec.Token()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return tok, nil
}

func (d *decoder) value() (Value, error) {
	tok, err := d.token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return NumberValue(t), nil
	case string:
		return StringValue(t), nil
	case json.Delim:
		if t == '[' {
			return d.array()
		}
		return d.object()
	}
	return Value{}, fmt.Errorf("%w: unexpected token %v", ErrSyntax, tok)
}

func (d *decoder) array() (Value, error) {
	v := ArrayValue()
	for d.dec.More() {
		elem, err := d.value()
		if err != nil {
			return Value{}, err
		}
		v.arr = append(v.arr, elem)
	}
	if _, err := d.token(); err != nil { // ]
		return Value{}, err
	}
	return v, nil
}

func (d *decoder) object() (Value, error) {
	var ms memberSet
	for d.dec.More() {
		tok, err := d.token()
		if err != nil {
			return Value{}, err
		}

		key := tok.(string)
		if d.rename != nil {
			if key, err = d.rename(key); err != nil {
				return Value{}, err
			}
		}

		val, err := d.value()
		if err != nil {
			return Value{}, err
		}
		ms.set(key, val)
	}
	if _, err := d.token(); err != nil { // }
		return Value{}, err
	}
	return ms.value(), nil
}

// memberSet collects object members, keeping the first position and the
// last value of repeated keys.
type memberSet struct {
	members []Member
	index   map[string]int
}

func (ms *memberSet) set(key string, val Value) {
	if i, ok := ms.index[key]; ok {
		ms.members[i].Value = val
		return
	}
	if ms.index == nil {
		ms.index = make(map[string]int)
	}
	ms.index[key] = len(ms.members)
	ms.members = append(ms.members, Member{Key: key, Value: val})
}

func (ms *memberSet) value() Value {
	if ms.members == nil {
		ms.members = []Member{}
	}
	return Value{kind: Object, obj: ms.members}
}

// --------------------------------------------------------------------

type encoder struct {
	buf    strings.Builder
	rename func(string) (string, error)
	indent string
}

func (e *encoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		e.buf.WriteString(e.indent)
	}
}

func (e *encoder) value(v Value, depth int) error {
	switch v.kind {
	case Null:
		e.buf.WriteString("null")
	case Bool:
		if v.b {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}
	case Number:
		if !isNumberLiteral(v.s) {
			return fmt.Errorf("tree: invalid number literal %q", v.s)
		}
		e.buf.WriteString(v.s)
	case String:
		e.str(v.s)
	case Array:
		if len(v.arr) == 0 {
			e.buf.WriteString("[]")
			return nil
		}
		e.buf.WriteByte('[')
		for i, elem := range v.arr {
			if i != 0 {
				e.buf.WriteByte(',')
			}
			e.newline(depth + 1)
			if err := e.value(elem, depth+1); err != nil {
				return err
			}
		}
		e.newline(depth)
		e.buf.WriteByte(']')
	case Object:
		if len(v.obj) == 0 {
			e.buf.WriteString("{}")
			return nil
		}
		members, err := e.members(v.obj)
		if err != nil {
			return err
		}

		e.buf.WriteByte('{')
		for i, m := range members {
			if i != 0 {
				e.buf.WriteByte(',')
			}
			e.newline(depth + 1)
			e.str(m.Key)
			e.buf.WriteByte(':')
			if e.indent != "" {
				e.buf.WriteByte(' ')
			}
			if err := e.value(m.Value, depth+1); err != nil {
				return err
			}
		}
		e.newline(depth)
		e.buf.WriteByte('}')
	default:
		return fmt.Errorf("tree: cannot encode %v", v.kind)
	}
	return nil
}

// members renames object keys. Renamed keys that collide collapse to
// the first position with the last value.
func (e *encoder) members(obj []Member) ([]Member, error) {
	if e.rename == nil {
		return obj, nil
	}

	var ms memberSet
	for _, m := range obj {
		key, err := e.rename(m.Key)
		if err != nil {
			return nil, err
		}
		ms.set(key, m.Value)
	}
	return ms.members, nil
}

// isNumberLiteral reports whether s is a JSON number.
func isNumberLiteral(s string) bool {
	if s == "" {
		return false
	}
	first, last := s[0], s[len(s)-1]
	if first != '-' && (first < '0' || first > '9') {
		return false
	}
	if last < '0' || last > '9' {
		return false
	}
	return json.Valid([]byte(s))
}

const hexDigits = "0123456789abcdef"

// str writes s as a JSON string. Only quotes, backslashes and control
// characters are escaped; everything else is written verbatim.
func (e *encoder) str(s string) {
	e.buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}

		e.buf.WriteString(s[start:i])
		switch c {
		case '"', '\\':
			e.buf.WriteByte('\\')
			e.buf.WriteByte(c)
		case '\b':
			e.buf.WriteString(`\b`)
		case '\f':
			e.buf.WriteString(`\f`)
		case '\n':
			e.buf.WriteString(`\n`)
		case '\r':
			e.buf.WriteString(`\r`)
		case '\t':
			e.buf.WriteString(`\t`)
		default:
			e.buf.WriteString(`\u00`)
			e.buf.WriteByte(hexDigits[c>>4])
			e.buf.WriteByte(hexDigits[c&0xf])
		}
		start = i + 1
	}
	e.buf.WriteString(s[start:])
	e.buf.WriteByte('"')
}
