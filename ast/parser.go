// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/creachadair/ltree"
)

// ErrExtraInput is reported by ParseSingle when well-formed input remains
// after the first value.
var ErrExtraInput = errors.New("extra input after value")

// Parse parses the sequence of values from r.
// In case of error, any successfully-parsed prefix is returned with the error.
func Parse(r io.Reader) ([]Value, error) {
	st := ltree.NewStream(r)
	h := new(parseHandler)
	var vs []Value
	for {
		err := st.ParseOne(h)
		if err == io.EOF {
			return vs, nil
		} else if err != nil {
			return vs, err
		}
		vs = append(vs, h.take())
	}
}

// ParseSingle parses a single value from r. It is an error, reported as
// ErrExtraInput, if any non-blank text remains after the first value; the
// value is returned along with the error. If r is empty, ParseSingle
// returns io.EOF.
func ParseSingle(r io.Reader) (Value, error) {
	st := ltree.NewStream(r)
	h := new(parseHandler)
	if err := st.ParseOne(h); err != nil {
		return nil, err
	}
	v := h.take()
	if err := st.ParseOne(h); err == nil {
		return v, ErrExtraInput
	} else if !errors.Is(err, io.EOF) {
		return v, errors.Join(ErrExtraInput, err)
	}
	return v, nil
}

// AnchorValue decodes the literal at loc into a Value. String literals are
// unquoted, integer literals out of the 64-bit range fall back to Float,
// and a Name anchor (a bare key) becomes a String.
func AnchorValue(loc ltree.Anchor) (Value, error) {
	switch loc.Token() {
	case ltree.Nil:
		return Nil{}, nil
	case ltree.True:
		return Bool(true), nil
	case ltree.False:
		return Bool(false), nil
	case ltree.Integer:
		z, err := ltree.ParseInt(loc.Text())
		if errors.Is(err, strconv.ErrRange) {
			f, ferr := ltree.ParseFloat(loc.Text())
			if ferr == nil {
				return Float(f), nil
			}
		}
		return Int(z), err
	case ltree.Number, ltree.Inf, ltree.NaN:
		f, err := ltree.ParseFloat(loc.Text())
		return Float(f), err
	case ltree.String:
		s, err := ltree.Unquote(loc.Text())
		return String(s), err
	case ltree.Name:
		return String(loc.Copy()), nil
	}
	return nil, fmt.Errorf("invalid value token %v", loc.Token())
}

// A parseHandler builds Values from parser events. Tables under
// construction are stacked; a completed top-level value is left in out for
// the driver to take.
type parseHandler struct {
	open []openTable
	out  Value
}

// An openTable is a table under construction together with the pending key
// of the field being parsed, if any.
type openTable struct {
	t   *Table
	key Value
}

func (h *parseHandler) take() Value {
	v := h.out
	h.out = nil
	return v
}

// place attaches a completed value: as the current field of the innermost
// open table, or as the finished top-level value.
func (h *parseHandler) place(v Value) {
	if len(h.open) == 0 {
		h.out = v
		return
	}
	top := &h.open[len(h.open)-1]
	if top.key != nil {
		top.t.AppendField(&Field{Key: top.key, Value: v})
		top.key = nil
	} else {
		top.t.AppendField(&Field{Value: v})
	}
}

func (h *parseHandler) BeginTable(loc ltree.Anchor) error {
	h.open = append(h.open, openTable{t: new(Table)})
	return nil
}

func (h *parseHandler) EndTable(loc ltree.Anchor) error {
	top := h.open[len(h.open)-1]
	h.open = h.open[:len(h.open)-1]
	h.place(top.t)
	return nil
}

func (h *parseHandler) Key(loc ltree.Anchor) error {
	if loc.Token() == ltree.Nil {
		return errors.New("table key is nil")
	}
	key, err := AnchorValue(loc)
	if err != nil {
		return err
	}
	h.open[len(h.open)-1].key = key
	return nil
}

func (h *parseHandler) Value(loc ltree.Anchor) error {
	v, err := AnchorValue(loc)
	if err != nil {
		return err
	}
	h.place(v)
	return nil
}

func (h *parseHandler) EndOfInput(loc ltree.Anchor) {}
