// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package ast defines a document model for Lua table-constructor data, and
// a parser that constructs documents from table-constructor source.
package ast

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/creachadair/ltree"
)

// A Value is an arbitrary Lua data value. The concrete type is one of
// Nil, Bool, Int, Float, String, or *Table.
type Value interface {
	// Equal reports whether the value is structurally equal to other.
	// Numbers compare by value across Int and Float, and NaN compares
	// equal to NaN; see the package rules on Float.
	Equal(other Value) bool

	// Clone returns a deep copy of the value, sharing no mutable
	// structure with the original.
	Clone() Value

	// WriteTo emits the value to w.
	WriteTo(w *ltree.Writer) error
}

// Nil represents the nil constant.
type Nil struct{}

func (Nil) Equal(other Value) bool        { _, ok := other.(Nil); return ok }
func (Nil) Clone() Value                  { return Nil{} }
func (Nil) WriteTo(w *ltree.Writer) error { return w.WriteNil() }
func (Nil) String() string                { return "nil" }

// A Bool is a Boolean constant, true or false.
type Bool bool

func (b Bool) Equal(other Value) bool        { o, ok := other.(Bool); return ok && b == o }
func (b Bool) Clone() Value                  { return b }
func (b Bool) WriteTo(w *ltree.Writer) error { return w.WriteBool(bool(b)) }

// An Int is an integer value.
type Int int64

func (z Int) Equal(other Value) bool {
	switch o := other.(type) {
	case Int:
		return z == o
	case Float:
		return floatEqualsInt(float64(o), int64(z))
	}
	return false
}

func (z Int) Clone() Value                  { return z }
func (z Int) WriteTo(w *ltree.Writer) error { return w.WriteInt(int64(z)) }

// A Float is a floating-point value.
//
// Two Float values are equal when they are numerically equal, or when both
// are NaN: any NaN compares equal to any other NaN, so documents
// containing 0/0 compare equal after a round trip. A Float with an
// integral value is equal to the corresponding Int.
type Float float64

func (n Float) Equal(other Value) bool {
	switch o := other.(type) {
	case Float:
		if math.IsNaN(float64(n)) || math.IsNaN(float64(o)) {
			return math.IsNaN(float64(n)) && math.IsNaN(float64(o))
		}
		return n == o
	case Int:
		return floatEqualsInt(float64(n), int64(o))
	}
	return false
}

func (n Float) Clone() Value                  { return n }
func (n Float) WriteTo(w *ltree.Writer) error { return w.WriteFloat(float64(n)) }

// floatEqualsInt reports whether f exactly represents the integer z.
func floatEqualsInt(f float64, z int64) bool {
	return f == math.Trunc(f) &&
		f >= float64(math.MinInt64) && f < float64(math.MaxInt64) &&
		int64(f) == z
}

// A String is a string value. Lua strings are byte strings; a String may
// hold arbitrary bytes.
type String string

func (s String) Equal(other Value) bool        { o, ok := other.(String); return ok && s == o }
func (s String) Clone() Value                  { return s }
func (s String) WriteTo(w *ltree.Writer) error { return w.WriteString(string(s)) }

// A Field is a single entry of a Table: a value with an optional key.
// A nil Key marks a positional field. A non-nil Key is a scalar, never
// Nil and never a *Table.
type Field struct {
	Key   Value
	Value Value
}

// NewField constructs a field with the given key and value, which may be
// Values or any type accepted by ToValue. A nil key produces a positional
// field. NewField panics if the key is an explicit Nil or a table.
func NewField(key, value any) *Field {
	f := &Field{Value: ToValue(value)}
	if key != nil {
		f.Key = keyValue(ToValue(key))
	}
	return f
}

func (f *Field) String() string {
	if f.Key == nil {
		return "Field(positional)"
	}
	return fmt.Sprintf("Field(key=%v)", f.Key)
}

// Clone returns a deep copy of f.
func (f *Field) Clone() *Field {
	out := &Field{Value: f.Value.Clone()}
	if f.Key != nil {
		out.Key = f.Key.Clone()
	}
	return out
}

// keyValue checks that v is usable as a field key.
func keyValue(v Value) Value {
	switch v.(type) {
	case Nil:
		panic("ast: nil table key")
	case *Table:
		panic("ast: table used as a key")
	}
	return v
}

// A Table is an ordered sequence of fields supporting both positional and
// named addressing. The zero value, and NewTable(), are empty tables ready
// for use. A Table is not safe for concurrent use without external
// synchronization.
type Table struct {
	fields []*Field
	byKey  map[any]int // index of the last field claiming each key; lazily built
}

// NewTable constructs a table holding the given fields in order.
func NewTable(fields ...*Field) *Table {
	t := &Table{fields: fields}
	for _, f := range fields {
		if f.Key != nil {
			keyValue(f.Key)
		}
	}
	return t
}

// nanKey stands in for NaN keys, which cannot index a Go map directly.
type nanKey struct{}

// keyRep returns the comparable representation of a key, folding integral
// floats to integers so that [1] and [1.0] address the same field.
func keyRep(key Value) any {
	switch t := key.(type) {
	case Bool:
		return bool(t)
	case Int:
		return int64(t)
	case Float:
		f := float64(t)
		if math.IsNaN(f) {
			return nanKey{}
		}
		if f == math.Trunc(f) && f >= float64(math.MinInt64) && f < float64(math.MaxInt64) {
			return int64(f)
		}
		return f
	case String:
		return string(t)
	}
	panic(fmt.Sprintf("ast: invalid key type %T", key))
}

// index returns the named-key index, rebuilding it if necessary.
func (t *Table) index() map[any]int {
	if t.byKey == nil {
		t.byKey = make(map[any]int, len(t.fields))
		for i, f := range t.fields {
			if f.Key != nil {
				t.byKey[keyRep(f.Key)] = i // a later duplicate wins
			}
		}
	}
	return t.byKey
}

// Len reports the number of fields in t, positional and named.
func (t *Table) Len() int { return len(t.fields) }

// Fields returns the fields of t in document order. The returned slice is
// shared with the table; the caller may update field values through it,
// but must not add, remove, or re-key fields except through the table.
func (t *Table) Fields() []*Field { return t.fields }

// Names returns the keys of the named fields of t in document order.
func (t *Table) Names() []Value {
	var out []Value
	for _, f := range t.fields {
		if f.Key != nil {
			out = append(out, f.Key)
		}
	}
	return out
}

// Values returns the values of all fields of t in document order.
func (t *Table) Values() []Value {
	out := make([]Value, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.Value
	}
	return out
}

// Append adds a positional field holding value at the end of t.
func (t *Table) Append(value any) *Field {
	f := &Field{Value: ToValue(value)}
	t.fields = append(t.fields, f)
	return f
}

// AppendField adds f at the end of t, preserving any existing field with
// the same key; the new field becomes the one named access resolves to.
func (t *Table) AppendField(f *Field) *Field {
	if f.Key != nil {
		keyValue(f.Key)
		if t.byKey != nil {
			t.byKey[keyRep(f.Key)] = len(t.fields)
		}
	}
	t.fields = append(t.fields, f)
	return f
}

// Set assigns value to the field named by key, overwriting the value of
// the field the key currently resolves to, or appending a new named field.
// It panics if key is nil or not a scalar.
func (t *Table) Set(key, value any) *Field {
	if key == nil {
		panic("ast: nil table key")
	}
	k := keyValue(ToValue(key))
	if i, ok := t.index()[keyRep(k)]; ok {
		t.fields[i].Value = ToValue(value)
		return t.fields[i]
	}
	return t.AppendField(&Field{Key: k, Value: ToValue(value)})
}

// Find returns the field the named key resolves to, or nil. When several
// fields carry the same key, the last in document order wins.
func (t *Table) Find(key any) *Field {
	if key == nil {
		return nil
	}
	if i, ok := t.index()[keyRep(keyValue(ToValue(key)))]; ok {
		return t.fields[i]
	}
	return nil
}

// At returns the value of the i-th positional field of t, 1-based,
// counting only fields without a key. It returns nil if i is out of range.
func (t *Table) At(i int) Value {
	if i < 1 {
		return nil
	}
	var pos int
	for _, f := range t.fields {
		if f.Key == nil {
			pos++
			if pos == i {
				return f.Value
			}
		}
	}
	return nil
}

// Get resolves key the way a Lua table lookup would: positional fields
// occupy the integer keys 1..N in document order, sharing a namespace with
// explicit integer keys, and the last field claiming a key in document
// order provides its value. The Boolean result distinguishes an absent
// field from an explicit nil value.
func (t *Table) Get(key any) (Value, bool) {
	if key == nil {
		return nil, false
	}
	rep := keyRep(keyValue(ToValue(key)))
	if n, ok := rep.(int64); ok {
		var out Value
		var pos int64
		for _, f := range t.fields {
			if f.Key == nil {
				pos++
				if pos == n {
					out = f.Value
				}
			} else if keyRep(f.Key) == rep {
				out = f.Value
			}
		}
		return out, out != nil
	}
	if f := t.Find(key); f != nil {
		return f.Value, true
	}
	return nil, false
}

// Remove removes the field the named key resolves to, and reports whether
// a field was removed. If duplicate fields carry the key, the remaining
// latest duplicate becomes the one the key resolves to.
func (t *Table) Remove(key any) bool {
	if key == nil {
		return false
	}
	i, ok := t.index()[keyRep(keyValue(ToValue(key)))]
	if !ok {
		return false
	}
	t.removeAt(i)
	return true
}

// RemoveField removes the field identical to f from t, and reports whether
// it was present.
func (t *Table) RemoveField(f *Field) bool {
	for i, g := range t.fields {
		if g == f {
			t.removeAt(i)
			return true
		}
	}
	return false
}

func (t *Table) removeAt(i int) {
	t.fields = append(t.fields[:i], t.fields[i+1:]...)
	t.byKey = nil // rebuilt on next named access
}

// entries returns the effective key-to-value mapping of t: positional
// fields claim the integer keys 1..N in document order, and the last
// claimant of each key wins, as in a Lua table constructor.
func (t *Table) entries() map[any]Value {
	m := make(map[any]Value, len(t.fields))
	var pos int64
	for _, f := range t.fields {
		if f.Key == nil {
			pos++
			m[pos] = f.Value
		} else {
			m[keyRep(f.Key)] = f.Value
		}
	}
	return m
}

// Equal reports whether other is a *Table with the same effective
// contents: the tables resolve the same keys to equal values. Positional
// order is significant (positional fields claim their ordinals as keys);
// the order of named fields is not. {[1] = 9} and {9} are equal.
func (t *Table) Equal(other Value) bool {
	o, ok := other.(*Table)
	if !ok {
		return false
	}
	te, oe := t.entries(), o.entries()
	if len(te) != len(oe) {
		return false
	}
	for k, v := range te {
		ov, ok := oe[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of t.
func (t *Table) Clone() Value {
	out := &Table{fields: make([]*Field, len(t.fields))}
	for i, f := range t.fields {
		out.fields[i] = f.Clone()
	}
	return out
}

// WriteTo emits t to w as a table constructor.
func (t *Table) WriteTo(w *ltree.Writer) error {
	if err := w.BeginTable(); err != nil {
		return err
	}
	for _, f := range t.fields {
		switch k := f.Key.(type) {
		case nil:
			// positional
		case String:
			if err := w.WriteKey(string(k)); err != nil {
				return err
			}
		default:
			if err := w.BeginKey(); err != nil {
				return err
			}
			if err := f.Key.WriteTo(w); err != nil {
				return err
			}
			if err := w.EndKey(); err != nil {
				return err
			}
		}
		if err := f.Value.WriteTo(w); err != nil {
			return err
		}
	}
	return w.EndTable()
}

func (t *Table) String() string { return fmt.Sprintf("Table(len=%d)", len(t.fields)) }

// ToValue converts a Go value into an ast.Value. It accepts Values,
// booleans, integers, floats, strings, nil, and the convenience container
// forms []any (a positional table) and map[string]any (a named table with
// fields in sorted key order). ToValue panics if v does not have one of
// those types, or if an integer cannot be represented as an Int.
func ToValue(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case nil:
		return Nil{}
	case bool:
		return Bool(t)
	case int:
		return Int(t)
	case int32:
		return Int(t)
	case int64:
		return Int(t)
	case uint:
		return uintValue(uint64(t))
	case uint32:
		return Int(t)
	case uint64:
		return uintValue(t)
	case float32:
		return Float(t)
	case float64:
		return Float(t)
	case string:
		return String(t)
	case []any:
		out := new(Table)
		for _, elt := range t {
			out.Append(elt)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := new(Table)
		for _, k := range keys {
			out.Set(k, t[k])
		}
		return out
	}
	panic(fmt.Sprintf("ast: invalid value type %T", v))
}

func uintValue(v uint64) Value {
	if v > math.MaxInt64 {
		panic(fmt.Sprintf("ast: integer %d out of range", v))
	}
	return Int(v)
}

// Text renders v as compact table-constructor text.
// In case of error in rendering, it returns an empty string.
func Text(v Value) string {
	var sb strings.Builder
	w := ltree.NewWriter(&sb)
	if v.WriteTo(w) != nil || w.Flush() != nil {
		return ""
	}
	return sb.String()
}

// Format renders a pretty-printed representation of v to w with default
// writer settings.
func Format(w io.Writer, v Value) error {
	lw := ltree.NewWriter(w)
	lw.SetFormat(ltree.Prettified)
	lw.CloseOutput(false)
	if err := v.WriteTo(lw); err != nil {
		return err
	}
	return lw.Flush()
}

// FormatToString formats v to a string with default settings.
// In case of error in formatting, it returns an empty string.
func FormatToString(v Value) string {
	var sb strings.Builder
	if Format(&sb, v) != nil {
		return ""
	}
	return sb.String()
}
