// Package tree holds the in-memory form of a save document and converts
// it to and from JSON text, renaming object keys on the way.
//
// Strings are Go strings and therefore valid UTF-8. A lone surrogate
// escape such as "\ud800" decodes to U+FFFD and cannot be restored.
package tree

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Member is a single object entry.
type Member struct {
	Key   string
	Value Value
}

// Value is a JSON-shaped document node. The zero Value is null.
// Numbers keep their literal text, objects keep insertion order.
type Value struct {
	kind Kind
	b    bool
	s    string // string contents or number literal
	arr  []Value
	obj  []Member
}

// NullValue returns a null.
func NullValue() Value { return Value{} }

// BoolValue returns a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue returns a number with the given literal.
func NumberValue(n json.Number) Value { return Value{kind: Number, s: string(n)} }

// IntValue returns an integer number.
func IntValue(n int64) Value { return Value{kind: Number, s: strconv.FormatInt(n, 10)} }

// FloatValue returns a floating point number.
func FloatValue(f float64) Value {
	return Value{kind: Number, s: strconv.FormatFloat(f, 'g', -1, 64)}
}

// StringValue returns a string.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// ArrayValue returns an array of the given elements.
func ArrayValue(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: Array, arr: elems}
}

// ObjectValue returns an object of the given members. Later members
// replace earlier ones with the same key.
func ObjectValue(members ...Member) Value {
	ms := memberSet{members: make([]Member, 0, len(members))}
	for _, m := range members {
		ms.set(m.Key, m.Value)
	}
	return Value{kind: Object, obj: ms.members}
}

// Kind returns the variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == Null }

// Bool returns the boolean, false for other kinds.
func (v Value) Bool() bool { return v.b }

// Number returns the number literal, empty for other kinds.
func (v Value) Number() json.Number {
	if v.kind != Number {
		return ""
	}
	return json.Number(v.s)
}

// Str returns the string contents, empty for other kinds.
func (v Value) Str() string {
	if v.kind != String {
		return ""
	}
	return v.s
}

// Len returns the number of array elements or object members.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.obj)
	}
	return 0
}

// Elems returns the array elements.
func (v Value) Elems() []Value { return v.arr }

// Members returns the object members in insertion order.
func (v Value) Members() []Member { return v.obj }

// Index returns a pointer to the i-th array element or nil.
func (v *Value) Index(i int) *Value {
	if v.kind != Array || i < 0 || i >= len(v.arr) {
		return nil
	}
	return &v.arr[i]
}

// Append adds elements to an array.
func (v *Value) Append(elems ...Value) {
	if v.kind == Array {
		v.arr = append(v.arr, elems...)
	}
}

// Get returns a pointer to the member value stored under key or nil.
func (v *Value) Get(key string) *Value {
	if v.kind != Object {
		return nil
	}
	for i := range v.obj {
		if v.obj[i].Key == key {
			return &v.obj[i].Value
		}
	}
	return nil
}

// Set stores val under key. An existing member keeps its position.
func (v *Value) Set(key string, val Value) {
	if v.kind != Object {
		return
	}
	if p := v.Get(key); p != nil {
		*p = val
		return
	}
	v.obj = append(v.obj, Member{Key: key, Value: val})
}

// Delete removes key and reports whether it was present.
func (v *Value) Delete(key string) bool {
	if v.kind != Object {
		return false
	}
	for i := range v.obj {
		if v.obj[i].Key == key {
			v.obj = append(v.obj[:i], v.obj[i+1:]...)
			return true
		}
	}
	return false
}

// Equal reports whether v and o are structurally equal. Object members
// must match in order. Numbers compare by literal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case Number, String:
		return v.s == o.s
	case Array:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for i := range v.obj {
			if v.obj[i].Key != o.obj[i].Key || !v.obj[i].Value.Equal(o.obj[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// String returns the compact JSON form of v.
func (v Value) String() string {
	s, _ := Marshal(v)
	return s
}
