// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of Lua string literals.
package escape

import (
	"errors"
	"fmt"

	"go4.org/mem"
)

// Unquote decodes the contents of a quoted Lua string literal. The input
// must have the enclosing quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. Unquote
// reports an error for an invalid or incomplete escape sequence, and for a
// decimal byte escape whose value exceeds 255.
func Unquote(src mem.RO) ([]byte, error) {
	dec := make([]byte, 0, src.Len())
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(dec, src), nil
	}

	for src.Len() != 0 {
		dec = mem.Append(dec, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}

		b := src.At(0)
		src = src.SliceFrom(1)
		switch b {
		case '\\', '\'', '"', '[', ']':
			dec = append(dec, b)
		case 'a':
			dec = append(dec, '\a')
		case 'b':
			dec = append(dec, '\b')
		case 'f':
			dec = append(dec, '\f')
		case 'n':
			dec = append(dec, '\n')
		case 'r':
			dec = append(dec, '\r')
		case 't':
			dec = append(dec, '\t')
		case 'v':
			dec = append(dec, '\v')
		default:
			if b < '0' || b > '9' {
				return nil, fmt.Errorf("invalid escape %q", string(rune(b)))
			}
			v := int(b - '0')
			for n := 0; n < 2 && src.Len() > 0; n++ {
				d := src.At(0)
				if d < '0' || d > '9' {
					break
				}
				v = 10*v + int(d-'0')
				src = src.SliceFrom(1)
			}
			if v > 255 {
				return nil, fmt.Errorf("escape value %d out of range", v)
			}
			dec = append(dec, byte(v))
		}

		i = mem.IndexByte(src, '\\')
		if i < 0 {
			dec = mem.Append(dec, src)
			break
		}
	}
	return dec, nil
}
