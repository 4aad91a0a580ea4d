// Package document implements the dynamically-typed tree that state
// snapshots are serialized to and parsed from.
//
// A [Value] is a tagged variant over the JSON shapes: null, bool, number,
// string, array and object. Objects remember the order in which members
// were added and preserve the order found in parsed input, so a
// parse/serialize round trip does not shuffle the file.
//
// Readers are fail-closed: every Get* accessor reports ok=false when the
// key is absent or holds a value of another kind, and never panics. Code
// applying a document onto live state checks ok and leaves the live field
// untouched otherwise.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/tailscale/hujson"
)

// Kind identifies which variant a [Value] holds.
type Kind uint8

// Kind values enumerate the supported document shapes.
const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

type member struct {
	name  string
	value *Value
}

// Value is a single node of a document tree.
// The zero value is the null value.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	str     string
	elems   []*Value
	members []member
	byName  map[string]int
}

// NewObject returns an empty object value.
func NewObject() *Value {
	return &Value{kind: Object, byName: map[string]int{}}
}

// NewArray returns an empty array value.
func NewArray() *Value {
	return &Value{kind: Array}
}

// NewBool returns a boolean value.
func NewBool(b bool) *Value {
	return &Value{kind: Bool, boolean: b}
}

// NewNumber returns a numeric value.
func NewNumber(n float64) *Value {
	return &Value{kind: Number, number: n}
}

// NewString returns a string value.
func NewString(s string) *Value {
	return &Value{kind: String, str: s}
}

// Kind returns which variant the value holds.
func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}

	return v.kind
}

// --- Object readers ---

// Get returns the member value for key.
// Returns (nil, false) if v is not an object or the key is absent.
func (v *Value) Get(key string) (*Value, bool) {
	if v == nil || v.kind != Object {
		return nil, false
	}

	i, ok := v.byName[key]
	if !ok {
		return nil, false
	}

	return v.members[i].value, true
}

// Has reports whether the object has a member named key.
func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)

	return ok
}

// GetBool returns the boolean member for key.
// Returns (false, false) if key is missing or not a boolean.
func (v *Value) GetBool(key string) (bool, bool) {
	m, ok := v.Get(key)
	if !ok || m.kind != Bool {
		return false, false
	}

	return m.boolean, true
}

// GetInt returns the numeric member for key truncated to int.
// Returns (0, false) if key is missing or not a number.
func (v *Value) GetInt(key string) (int, bool) {
	m, ok := v.Get(key)
	if !ok || m.kind != Number {
		return 0, false
	}

	return int(m.number), true
}

// GetFloat returns the numeric member for key.
// Returns (0, false) if key is missing or not a number.
func (v *Value) GetFloat(key string) (float64, bool) {
	m, ok := v.Get(key)
	if !ok || m.kind != Number {
		return 0, false
	}

	return m.number, true
}

// GetString returns the string member for key.
// Returns ("", false) if key is missing or not a string.
func (v *Value) GetString(key string) (string, bool) {
	m, ok := v.Get(key)
	if !ok || m.kind != String {
		return "", false
	}

	return m.str, true
}

// GetArray returns the array member for key.
// Returns (nil, false) if key is missing or not an array.
func (v *Value) GetArray(key string) (*Value, bool) {
	m, ok := v.Get(key)
	if !ok || m.kind != Array {
		return nil, false
	}

	return m, true
}

// GetObject returns the object member for key.
// Returns (nil, false) if key is missing or not an object.
func (v *Value) GetObject(key string) (*Value, bool) {
	m, ok := v.Get(key)
	if !ok || m.kind != Object {
		return nil, false
	}

	return m, true
}

// Len returns the number of array elements or object members.
// Returns 0 for every other kind and for nil.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}

	switch v.kind {
	case Array:
		return len(v.elems)
	case Object:
		return len(v.members)
	default:
		return 0
	}
}

// NameAt returns the name of the i-th object member, or "" when out of
// range or not an object.
func (v *Value) NameAt(i int) string {
	if v == nil || v.kind != Object || i < 0 || i >= len(v.members) {
		return ""
	}

	return v.members[i].name
}

// ValueAt returns the value of the i-th object member, or nil when out of
// range or not an object.
func (v *Value) ValueAt(i int) *Value {
	if v == nil || v.kind != Object || i < 0 || i >= len(v.members) {
		return nil
	}

	return v.members[i].value
}

// --- Object writers ---

// Set stores val under key, replacing an existing member in place so that
// member order is stable across updates. No-op if v is not an object.
func (v *Value) Set(key string, val *Value) {
	if v == nil || v.kind != Object {
		return
	}

	if val == nil {
		val = &Value{}
	}

	if i, ok := v.byName[key]; ok {
		v.members[i].value = val

		return
	}

	if v.byName == nil {
		v.byName = map[string]int{}
	}

	v.byName[key] = len(v.members)
	v.members = append(v.members, member{name: key, value: val})
}

// SetBool stores a boolean member.
func (v *Value) SetBool(key string, b bool) {
	v.Set(key, NewBool(b))
}

// SetInt stores a numeric member.
func (v *Value) SetInt(key string, n int) {
	v.Set(key, NewNumber(float64(n)))
}

// SetFloat stores a numeric member.
func (v *Value) SetFloat(key string, n float64) {
	v.Set(key, NewNumber(n))
}

// SetString stores a string member.
func (v *Value) SetString(key string, s string) {
	v.Set(key, NewString(s))
}

// AddObject stores a fresh empty object under key and returns it.
func (v *Value) AddObject(key string) *Value {
	obj := NewObject()
	v.Set(key, obj)

	return obj
}

// AddArray stores a fresh empty array under key and returns it.
func (v *Value) AddArray(key string) *Value {
	arr := NewArray()
	v.Set(key, arr)

	return arr
}

// --- Array readers ---

// Index returns the i-th array element, or nil when out of range or not
// an array.
func (v *Value) Index(i int) *Value {
	if v == nil || v.kind != Array || i < 0 || i >= len(v.elems) {
		return nil
	}

	return v.elems[i]
}

// StringAt returns the i-th array element as a string.
// Returns ("", false) when out of range or the element is not a string.
func (v *Value) StringAt(i int) (string, bool) {
	e := v.Index(i)
	if e == nil || e.kind != String {
		return "", false
	}

	return e.str, true
}

// ObjectAt returns the i-th array element as an object.
// Returns (nil, false) when out of range or the element is not an object.
func (v *Value) ObjectAt(i int) (*Value, bool) {
	e := v.Index(i)
	if e == nil || e.kind != Object {
		return nil, false
	}

	return e, true
}

// --- Array writers ---

// Append adds val to the end of the array. No-op if v is not an array.
func (v *Value) Append(val *Value) {
	if v == nil || v.kind != Array {
		return
	}

	if val == nil {
		val = &Value{}
	}

	v.elems = append(v.elems, val)
}

// AppendString adds a string element.
func (v *Value) AppendString(s string) {
	v.Append(NewString(s))
}

// AppendObject adds a fresh empty object element and returns it.
func (v *Value) AppendObject() *Value {
	obj := NewObject()
	v.Append(obj)

	return obj
}

// Clone returns a deep copy of the value.
func (v *Value) Clone() *Value {
	if v == nil {
		return &Value{}
	}

	out := &Value{kind: v.kind, boolean: v.boolean, number: v.number, str: v.str}

	switch v.kind {
	case Array:
		out.elems = make([]*Value, len(v.elems))
		for i, e := range v.elems {
			out.elems[i] = e.Clone()
		}
	case Object:
		out.byName = make(map[string]int, len(v.members))
		out.members = make([]member, len(v.members))

		for i, m := range v.members {
			out.members[i] = member{name: m.name, value: m.value.Clone()}
			out.byName[m.name] = i
		}
	default:
	}

	return out
}

// Equal reports deep semantic equality, including object member order.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v.Kind() == Null && o.Kind() == Null
	}

	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case Bool:
		return v.boolean == o.boolean
	case Number:
		return v.number == o.number
	case String:
		return v.str == o.str
	case Array:
		if len(v.elems) != len(o.elems) {
			return false
		}

		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}

		return true
	case Object:
		if len(v.members) != len(o.members) {
			return false
		}

		for i := range v.members {
			if v.members[i].name != o.members[i].name {
				return false
			}

			if !v.members[i].value.Equal(o.members[i].value) {
				return false
			}
		}

		return true
	default:
		return true
	}
}

// --- Parsing ---

var errTrailingData = errors.New("trailing data after document")

// Parse decodes data into a document tree. Input may contain comments and
// trailing commas; it is standardized before decoding so hand-edited
// files keep loading.
func Parse(data []byte) (*Value, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("standardizing document: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()

	v, err := parseNext(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	return v, nil
}

func parseNext(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t.String())
		}
	case bool:
		return NewBool(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", t.String(), err)
		}

		return NewNumber(n), nil
	case string:
		return NewString(t), nil
	case nil:
		return &Value{}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func parseObject(dec *json.Decoder) (*Value, error) {
	obj := NewObject()

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		if d, ok := tok.(json.Delim); ok && d == '}' {
			return obj, nil
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %v, not a string", tok)
		}

		val, err := parseNext(dec)
		if err != nil {
			return nil, err
		}

		obj.Set(key, val)
	}
}

func parseArray(dec *json.Decoder) (*Value, error) {
	arr := NewArray()

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		if d, ok := tok.(json.Delim); ok && d == ']' {
			return arr, nil
		}

		val, err := parseToken(dec, tok)
		if err != nil {
			return nil, err
		}

		arr.Append(val)
	}
}

// --- Serialization ---

// Marshal renders the document as compact JSON with object members in
// insertion order.
func (v *Value) Marshal() []byte {
	var buf bytes.Buffer

	v.write(&buf)

	return buf.Bytes()
}

func (v *Value) write(buf *bytes.Buffer) {
	if v == nil {
		buf.WriteString("null")

		return
	}

	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case Number:
		buf.WriteString(formatNumber(v.number))
	case String:
		writeQuoted(buf, v.str)
	case Array:
		buf.WriteByte('[')

		for i, e := range v.elems {
			if i > 0 {
				buf.WriteByte(',')
			}

			e.write(buf)
		}

		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')

		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}

			writeQuoted(buf, m.name)
			buf.WriteByte(':')
			m.value.write(buf)
		}

		buf.WriteByte('}')
	}
}

// formatNumber prints integral values without an exponent or fraction so
// timestamps and positions stay greppable.
func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
		return strconv.FormatInt(int64(n), 10)
	}

	return strconv.FormatFloat(n, 'g', -1, 64)
}

func writeQuoted(buf *bytes.Buffer, s string) {
	quoted, err := json.Marshal(s)
	if err != nil {
		// Marshaling a string cannot fail; keep the document well-formed
		// regardless.
		buf.WriteString(`""`)

		return
	}

	buf.Write(quoted)
}
