// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package ltree

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/creachadair/ltree/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a double-quoted Lua string literal. The contents are
// escaped and double quotation marks are added.
func Quote(src string) string { return string(escape.Quote(mem.S(src), '"')) }

// QuoteDelim encodes src as a quoted Lua string literal delimited by delim,
// which must be a single or double quotation mark.
func QuoteDelim(src string, delim byte) (string, error) {
	if delim != '\'' && delim != '"' {
		return "", fmt.Errorf("invalid string delimiter %q", string(rune(delim)))
	}
	return string(escape.Quote(mem.S(src), delim)), nil
}

// LongQuote encodes src as a long-bracket Lua string literal of the given
// level. Long-bracket strings have no escapes, so LongQuote reports an error
// if src contains the level's closing bracket sequence, or begins with a
// newline (which the Lua reader would strip).
func LongQuote(src string, level int) (string, error) {
	if level < 0 {
		return "", fmt.Errorf("invalid long-bracket level %d", level)
	}
	eqs := strings.Repeat("=", level)
	if strings.Contains(src, "]"+eqs+"]") {
		return "", fmt.Errorf("text contains the level-%d closing bracket", level)
	}
	if strings.HasPrefix(src, "\n") || strings.HasPrefix(src, "\r") {
		return "", errors.New("text begins with a newline")
	}
	return "[" + eqs + "[" + src + "]" + eqs + "]", nil
}

// Unquote decodes a Lua string literal in any of its three forms: single
// quoted, double quoted, or long bracket. Delimiters are removed; escape
// sequences in the quoted forms are replaced with their unescaped
// equivalents; a single newline immediately after a long bracket opener is
// stripped.
func Unquote(text []byte) (string, error) {
	if len(text) >= 2 && (text[0] == '\'' || text[0] == '"') {
		if text[len(text)-1] != text[0] {
			return "", errors.New("missing quotation")
		}
		dec, err := escape.Unquote(mem.B(text[1 : len(text)-1]))
		return string(dec), err
	}
	if len(text) >= 4 && text[0] == '[' {
		return unquoteLong(text)
	}
	return "", errors.New("invalid string literal")
}

func unquoteLong(text []byte) (string, error) {
	level := 0
	for 1+level < len(text) && text[1+level] == '=' {
		level++
	}
	open := 2 + level
	if open > len(text) || text[open-1] != '[' {
		return "", errors.New("invalid long bracket")
	}
	if len(text) < 2*open || string(text[len(text)-open:]) != "]"+strings.Repeat("=", level)+"]" {
		return "", errors.New("missing closing long bracket")
	}
	body := text[open : len(text)-open]

	// A single leading newline is stripped, counting the two-byte forms.
	switch {
	case len(body) >= 2 && (string(body[:2]) == "\r\n" || string(body[:2]) == "\n\r"):
		body = body[2:]
	case len(body) >= 1 && (body[0] == '\n' || body[0] == '\r'):
		body = body[1:]
	}
	return string(body), nil
}

// ParseInt decodes the text of an integer literal, decimal or hexadecimal.
//
// A hexadecimal literal of at most 8 digits is interpreted as a 32-bit
// value, a longer one as a 64-bit value, reproducing the wraparound of Lua's
// literal reader: the leading sign is applied to the converted magnitude, so
// -0xFFFFFFFF is 1, not -4294967295. Decimal overflow of the 64-bit range is
// an error (wrapping strconv.ErrRange); callers wanting Lua's behavior fall
// back to ParseFloat.
func ParseInt(text []byte) (int64, error) {
	body, neg := splitSign(text)
	if h, ok := cutHexPrefix(body); ok {
		mag, err := strconv.ParseUint(h, 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hex literal: %w", err)
		}
		var v int64
		if len(h) <= 8 {
			v = int64(int32(uint32(mag)))
		} else {
			v = int64(mag)
		}
		if neg {
			v = -v
		}
		return v, nil
	}
	v, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal: %w", err)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// ParseFloat decodes the text of a numeric literal as a float64. The
// constant spellings math.huge, -math.huge, and 0/0 are included.
// Conversion is culture-invariant.
func ParseFloat(text []byte) (float64, error) {
	body, neg := splitSign(text)
	var v float64
	switch {
	case body == "math.huge":
		v = math.Inf(+1)
	case body == "0/0":
		return math.NaN(), nil
	default:
		if h, ok := cutHexPrefix(body); ok {
			mag, err := strconv.ParseUint(h, 16, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid hex literal: %w", err)
			}
			v = float64(mag)
			break
		}
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number literal: %w", err)
		}
		v = f
	}
	if neg {
		v = -v
	}
	return v, nil
}

// splitSign removes an optional leading "-" and the horizontal whitespace
// Lua permits after it, reporting whether the sign was present.
func splitSign(text []byte) (body string, neg bool) {
	body = string(text)
	if rest, ok := strings.CutPrefix(body, "-"); ok {
		return strings.TrimLeft(rest, " \t"), true
	}
	return body, false
}

func cutHexPrefix(s string) (string, bool) {
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		return rest, true
	}
	return strings.CutPrefix(s, "0X")
}

// FormatInt renders v as a plain decimal Lua integer literal.
func FormatInt(v int64) string { return strconv.FormatInt(v, 10) }

// FormatFloat renders v as a Lua literal: the shortest decimal text that
// round-trips to the same float64, spelled so that it reparses as a float
// rather than an integer. The non-finite values render as their constant
// spellings 0/0, math.huge, and -math.huge.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "0/0"
	case math.IsInf(v, +1):
		return "math.huge"
	case math.IsInf(v, -1):
		return "-math.huge"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// reserved is the set of Lua reserved words, which are never legal as bare
// table keys.
var reserved = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// IsReserved reports whether s is a Lua reserved word. Words outside the
// 2..8 length range of the keyword set are rejected without a lookup.
func IsReserved(s string) bool {
	return len(s) >= 2 && len(s) <= 8 && reserved[s]
}

// IsName reports whether s is a well-formed bare identifier: an ASCII
// letter or underscore followed by letters, digits, and underscores.
// Reserved words satisfy IsName; use IsReserved to exclude them.
func IsName(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameRune(s[i]) {
			return false
		}
	}
	return true
}
