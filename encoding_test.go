// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package ltree_test

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/creachadair/ltree"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", `""`},
		{" ", `" "`},
		{"a b c", `"a b c"`},
		{"a\t\nb", `"a\t\nb"`},
		{"it's", `"it's"`},
		{`say "hi"`, `"say \"hi\""`},
		{`a\b`, `"a\\b"`},
		{"\a\b\f\v\r", `"\a\b\f\v\r"`},
		{"\x00\x01", `"\0\1"`},
		{"\x001", `"\0001"`}, // padded: a digit follows the escape
		{"\x7f", `"\127"`},
		{"\x7f5x", `"\1275x"`},
		{"caf\xc3\xa9", "\"caf\xc3\xa9\""}, // non-ASCII bytes pass through
	}
	for _, test := range tests {
		got := ltree.Quote(test.input)
		if got != test.want {
			t.Errorf("Quote(%#q): got %#q, want %#q", test.input, got, test.want)
		}
	}
}

func TestQuoteDelim(t *testing.T) {
	tests := []struct {
		input string
		delim byte
		want  string
	}{
		{"it's", '\'', `'it\'s'`},
		{`say "hi"`, '\'', `'say "hi"'`},
		{`say "hi"`, '"', `"say \"hi\""`},
	}
	for _, test := range tests {
		got, err := ltree.QuoteDelim(test.input, test.delim)
		if err != nil {
			t.Errorf("QuoteDelim(%#q, %c): unexpected error: %v", test.input, test.delim, err)
		} else if got != test.want {
			t.Errorf("QuoteDelim(%#q, %c): got %#q, want %#q", test.input, test.delim, got, test.want)
		}
	}
	if got, err := ltree.QuoteDelim("x", 'q'); err == nil {
		t.Errorf("QuoteDelim with bad delimiter: got %#q, want error", got)
	}
}

func TestLongQuote(t *testing.T) {
	tests := []struct {
		input string
		level int
		want  string
		fail  bool
	}{
		{"abc", 0, "[[abc]]", false},
		{"", 0, "[[]]", false},
		{"a]]b", 1, "[=[a]]b]=]", false},
		{`no \escapes here`, 0, `[[no \escapes here]]`, false},
		{"a]]b", 0, "", true},  // contains the closing bracket
		{"a]=]b", 1, "", true}, // contains the closing bracket
		{"\nx", 0, "", true},   // leading newline would be stripped
		{"x", -1, "", true},    // invalid level
	}
	for _, test := range tests {
		got, err := ltree.LongQuote(test.input, test.level)
		if err != nil {
			if !test.fail {
				t.Errorf("LongQuote(%#q, %d): unexpected error: %v", test.input, test.level, err)
			}
			continue
		}
		if test.fail {
			t.Errorf("LongQuote(%#q, %d): got %#q, want error", test.input, test.level, got)
		} else if got != test.want {
			t.Errorf("LongQuote(%#q, %d): got %#q, want %#q", test.input, test.level, got, test.want)
		}
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		input string
		want  string
		fail  bool
	}{
		{``, ``, true},               // missing quotes
		{`"missing quote`, ``, true}, // missing quotes
		{`missing quote"`, ``, true}, // missing quotes
		{`""`, ``, false},
		{`''`, ``, false},
		{`'ok go'`, "ok go", false},
		{`"abc\ndef"`, "abc\ndef", false},
		{`'\a\b\f\n\r\t\v'`, "\a\b\f\n\r\t\v", false},
		{`'\[\]'`, "[]", false},
		{`'a\'b'`, "a'b", false},
		{`"a\"b"`, `a"b`, false},
		{`'a\\b\\cd'`, `a\b\cd`, false},
		{`'\65\066\6'`, "AB\x06", false}, // decimal byte escapes
		{`'\0001'`, "\x001", false},
		{`'\256'`, ``, true}, // escape value out of range
		{`'\x41'`, ``, true}, // invalid escape letter
		{`'trailing\'`, ``, true},

		// Long-bracket strings: no escape processing, delimiters removed.
		{`[[abc]]`, "abc", false},
		{`[[\n]]`, `\n`, false},
		{`[=[ab]]cd]=]`, "ab]]cd", false},
		{"[[\nabc]]", "abc", false},   // a single leading newline is stripped
		{"[[\r\nabc]]", "abc", false}, // including the two-byte forms
		{"[[\n\nabc]]", "\nabc", false},
		{`[=[x]=]`, "x", false},
		{`[[x]`, ``, true},   // missing closer
		{`[=[x]]`, ``, true}, // closer level mismatch
		{`[x]`, ``, true},
	}

	for _, test := range tests {
		got, err := ltree.Unquote([]byte(test.input))
		if err != nil {
			if !test.fail {
				t.Errorf("Unquote(%#q): got %v, want no error", test.input, err)
			} else {
				t.Logf("Unquote(%#q): got expected error: %v", test.input, err)
			}
		} else if test.fail {
			t.Errorf("Unquote(%#q): got %#q, want error", test.input, got)
		}
		if got != test.want {
			t.Errorf("Unquote(%#q): got %#q, want %#q", test.input, got, test.want)
		}
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"5139", 5139},
		{"-1", -1},
		{"- 7", -7}, // horizontal space after the sign is permitted

		// Hex literals of at most 8 digits convert through 32 bits, longer
		// ones through 64, and the sign applies to the converted magnitude.
		{"0x45f", 1119},
		{"-0x45f", -1119},
		{"0xFFFFFFFF", -1},
		{"-0xFFFFFFFF", 1},
		{"0x7FFFFFFF", 2147483647},
		{"0x100000000", 4294967296},
		{"0xFFFFFFFFFFFFFFFF", -1},
		{"0X10", 16},

		{"9223372036854775807", math.MaxInt64},
		{"-9223372036854775807", -math.MaxInt64},
	}
	for _, test := range tests {
		got, err := ltree.ParseInt([]byte(test.input))
		if err != nil {
			t.Errorf("ParseInt(%#q): unexpected error: %v", test.input, err)
		} else if got != test.want {
			t.Errorf("ParseInt(%#q): got %d, want %d", test.input, got, test.want)
		}
	}

	// Decimal overflow is a range error, so callers can fall back to float.
	if got, err := ltree.ParseInt([]byte("9223372036854775808")); !errors.Is(err, strconv.ErrRange) {
		t.Errorf("ParseInt(overflow): got %d, %v; want range error", got, err)
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"0", 0},
		{"2.5", 2.5},
		{".5", 0.5},
		{"5e15", 5e15},
		{"-0.001E-100", -0.001e-100},
		{"- 2.5", -2.5},
		{"math.huge", math.Inf(+1)},
		{"-math.huge", math.Inf(-1)},
		{"0x10", 16},
		{"-0x10", -16},
	}
	for _, test := range tests {
		got, err := ltree.ParseFloat([]byte(test.input))
		if err != nil {
			t.Errorf("ParseFloat(%#q): unexpected error: %v", test.input, err)
		} else if got != test.want {
			t.Errorf("ParseFloat(%#q): got %v, want %v", test.input, got, test.want)
		}
	}
	if got, err := ltree.ParseFloat([]byte("0/0")); err != nil || !math.IsNaN(got) {
		t.Errorf("ParseFloat(0/0): got %v, %v; want NaN", got, err)
	}
	if got, err := ltree.ParseFloat([]byte("bogus")); err == nil {
		t.Errorf("ParseFloat(bogus): got %v, want error", got)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		// Values without a fraction or exponent keep a trailing ".0" so they
		// reparse as floats.
		{0, "0.0"},
		{1, "1.0"},
		{123, "123.0"},
		{-4, "-4.0"},

		{2.5, "2.5"},
		{0.5, "0.5"},
		{5e15, "5e+15"},
		{1e100, "1e+100"},
		{-0.001e-100, "-1e-103"},

		{math.NaN(), "0/0"},
		{math.Inf(+1), "math.huge"},
		{math.Inf(-1), "-math.huge"},
	}
	for _, test := range tests {
		got := ltree.FormatFloat(test.input)
		if got != test.want {
			t.Errorf("FormatFloat(%v): got %q, want %q", test.input, got, test.want)
		}
	}
}

func TestNames(t *testing.T) {
	for _, ok := range []string{"a", "_", "_private9", "xYz", "while", "function"} {
		if !ltree.IsName(ok) {
			t.Errorf("IsName(%q): got false, want true", ok)
		}
	}
	for _, bad := range []string{"", "9x", "a-b", "a b", "caf\xc3\xa9"} {
		if ltree.IsName(bad) {
			t.Errorf("IsName(%q): got true, want false", bad)
		}
	}
	for _, kw := range []string{"and", "do", "elseif", "function", "nil", "while"} {
		if !ltree.IsReserved(kw) {
			t.Errorf("IsReserved(%q): got false, want true", kw)
		}
	}
	for _, name := range []string{"", "x", "whilex", "functions", "Nil"} {
		if ltree.IsReserved(name) {
			t.Errorf("IsReserved(%q): got true, want false", name)
		}
	}
}
