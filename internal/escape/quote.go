// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package escape

import "go4.org/mem"

var controlEsc = [...]byte{
	'\a': 'a',
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	'\v': 'v',
	' ':  ' ', // sentinel
}

// Quote encodes a string for inclusion in a Lua string literal delimited by
// delim, which must be a single or double quotation mark. Lua strings are
// byte strings; bytes outside the ASCII range pass through unaltered.
func Quote(src mem.RO, delim byte) []byte {
	buf := make([]byte, 0, src.Len()+2)
	buf = append(buf, delim)
	for i := 0; i < src.Len(); i++ {
		b := src.At(i)
		switch {
		case b == '\\' || b == delim:
			buf = append(buf, '\\', b)
		case b < ' ':
			if e := controlEsc[b]; e != 0 {
				buf = append(buf, '\\', e)
			} else {
				buf = appendByteEsc(buf, b, nextIsDigit(src, i+1))
			}
		case b == 0x7f:
			buf = appendByteEsc(buf, b, nextIsDigit(src, i+1))
		default:
			buf = append(buf, b)
		}
	}
	return append(buf, delim)
}

// appendByteEsc appends a decimal byte escape for b. When the following
// source byte is a digit the escape is padded to three digits, since "\d"
// escapes absorb up to three.
func appendByteEsc(buf []byte, b byte, pad bool) []byte {
	buf = append(buf, '\\')
	if b >= 100 || pad {
		buf = append(buf, '0'+b/100, '0'+b/10%10, '0'+b%10)
	} else if b >= 10 {
		buf = append(buf, '0'+b/10, '0'+b%10)
	} else {
		buf = append(buf, '0'+b)
	}
	return buf
}

func nextIsDigit(src mem.RO, i int) bool {
	return i < src.Len() && src.At(i) >= '0' && src.At(i) <= '9'
}
