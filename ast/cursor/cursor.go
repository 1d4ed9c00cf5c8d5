// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over the structure of a table value.
package cursor

import (
	"fmt"

	"github.com/creachadair/ltree/ast"
)

// Path traverses a sequential path into the structure of v where path
// elements are as documented for the Cursor.Down method.  This is a
// convenience wrapper for creating a cursor, applying path, and retrieving
// its value.
func Path[T ast.Value](v ast.Value, path ...any) (T, error) {
	c := New(v).Down(path...)
	var result T
	if err := c.Err(); err != nil {
		return result, err
	}
	v, ok := c.Value().(T)
	if !ok {
		return result, fmt.Errorf("wrong value type %T", c.Value())
	}
	return v.(T), nil
}

// A Cursor is a pointer that navigates into the structure of an ast.Value.
type Cursor struct {
	org ast.Value
	stk []ast.Value
	err error
}

// New constructs a new Cursor to traverse the structure of origin.
func New(origin ast.Value) *Cursor { return &Cursor{org: origin} }

// Origin returns the origin value of c.
func (c *Cursor) Origin() ast.Value { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Value reports the current value under the cursor.
func (c *Cursor) Value() ast.Value {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1]
}

// Path reports the complete sequence of values from the origin to the
// current location in c.
func (c *Cursor) Path() []ast.Value {
	return append([]ast.Value{c.org}, c.stk...)
}

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position upward in the structure, if possible.
// It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset resets the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.stk = c.stk[:0]; c.err = nil }

// Down traverses a sequential path into the structure of c starting from
// the current value, where path elements are strings, integers, or
// functions.  If the path is valid, the element reached is returned. If
// the path cannot be completely consumed, traversal stops and an error is
// recorded. Use Err to recover the error.
//
// If a path element is a string, the current value must be a table, and
// the string resolves the named field with that key.
//
// If a path element is an integer, the current value must be a table, and
// the integer resolves a field the way a Lua lookup would: positional
// fields occupy the keys 1..N, sharing a namespace with explicit integer
// keys. A negative index counts backward through the positional fields
// (-1 is last, -2 second last). An error is reported if no field claims
// the resulting key.
//
// If a path element is a function, the function is executed and its result
// becomes the next value in the sequence. The function must have a
// signature
//
//	func(ast.Value) (ast.Value, error)
//
// If the function reports an error, traversal stops and the error is
// recorded.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil // reset error
	cur := c.Value()
	for _, elt := range path {
		switch t := elt.(type) {
		case string:
			tab, ok := cur.(*ast.Table)
			if !ok {
				return c.setErrorf("cannot traverse %T with %q", cur, elt)
			}
			f := tab.Find(t)
			if f == nil {
				return c.setErrorf("key %q not found", t)
			}
			cur = c.push(f.Value)

		case int:
			tab, ok := cur.(*ast.Table)
			if !ok {
				return c.setErrorf("cannot traverse %T with %v", cur, elt)
			}
			i := t
			if i < 0 {
				i += numPositional(tab) + 1
			}
			v, ok := tab.Get(i)
			if !ok {
				return c.setErrorf("table index %d not found", t)
			}
			cur = c.push(v)

		case func(ast.Value) (ast.Value, error):
			next, err := t(cur)
			if err != nil {
				c.err = err
				return c
			}
			cur = c.push(next)

		default:
			return c.setErrorf("invalid path element %T", elt)
		}
	}
	return c
}

func (c *Cursor) push(v ast.Value) ast.Value { c.stk = append(c.stk, v); return v }

func (c *Cursor) setErrorf(msg string, args ...any) *Cursor {
	c.err = fmt.Errorf(msg, args...)
	return c
}

func numPositional(t *ast.Table) int {
	var n int
	for _, f := range t.Fields() {
		if f.Key == nil {
			n++
		}
	}
	return n
}
