// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package ltree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Token is the type of a lexical token in the Lua table-constructor grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid Token = iota // invalid token
	LBrace               // left brace "{"
	RBrace               // right brace "}"
	LSquare              // left square bracket "["
	RSquare              // right square bracket "]"
	Equal                // equal sign "="
	Comma                // comma ","
	Semi                 // semicolon ";"
	Integer              // number: decimal integer or hex literal
	Number               // number with fraction and/or exponent
	String               // string: quoted or long-bracket form
	Name                 // bare identifier (unquoted table key)
	True                 // constant: true
	False                // constant: false
	Nil                  // constant: nil
	Inf                  // constant: math.huge or -math.huge
	NaN                  // constant: 0/0

	LineComment // comment: -- ... <LF>
	LongComment // comment: --[=*[ ... ]=*]
)

var tokenStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Equal:   `"="`,
	Comma:   `","`,
	Semi:    `";"`,
	Integer: "integer",
	Number:  "number",
	String:  "string",
	Name:    "name",
	True:    "true",
	False:   "false",
	Nil:     "nil",
	Inf:     "math.huge",
	NaN:     "0/0",

	LineComment: "line comment",
	LongComment: "long comment",
}

func (t Token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[v]
}

// bufSize is the initial capacity of the scanner's sliding input window.
// Tokens longer than the window accumulate in the token buffer, so the
// window only bounds lookahead, not token length.
const bufSize = 1024

// A Scanner reads lexical tokens from an input stream.  Each call to Next
// advances the scanner to the next token, or reports an error.
type Scanner struct {
	r        io.Reader
	comments bool // report comment tokens
	ownInput bool // close the reader when the scanner is closed
	closed   bool

	win  []byte // sliding window of input
	cur  int    // read position in win
	fill int    // end of valid data in win
	eof  bool   // the underlying reader is exhausted
	rerr error  // deferred read error other than io.EOF

	buf bytes.Buffer // current token
	tok Token
	err error

	pos, end int // start and end offsets of current token

	// Apparent line and column offsets (0-based)
	pline, pcol int
	eline, ecol int
}

// NewScanner constructs a new lexical scanner that consumes input from r.
// NewScanner will panic if r == nil.
func NewScanner(r io.Reader) *Scanner {
	if r == nil {
		panic("ltree: scanner has no input")
	}
	return &Scanner{r: r, win: make([]byte, bufSize), ownInput: true}
}

// PreserveComments configures the scanner to report (true) or silently
// discard (false) comment tokens. Comments are always recognized; by default
// the scanner skips them as if they were whitespace.
func (s *Scanner) PreserveComments(ok bool) { s.comments = ok }

// CloseInput configures whether Close closes the underlying reader, if the
// reader implements io.Closer. It is true by default.
func (s *Scanner) CloseInput(ok bool) { s.ownInput = ok }

// Close releases the scanner and, if enabled, closes the underlying reader.
// It reports an error if the scanner is already closed.
func (s *Scanner) Close() error {
	if s.closed {
		return errors.New("scanner is already closed")
	}
	s.closed = true
	if c, ok := s.r.(io.Closer); ok && s.ownInput {
		return c.Close()
	}
	return nil
}

// Next advances s to the next token of the input, or reports an error.
// At the end of the input, Next returns io.EOF.
func (s *Scanner) Next() error {
	s.buf.Reset()
	s.err = nil
	s.tok = Invalid

	for {
		// Discard whitespace before the token.
		for s.ensure(1) && isSpace(s.win[s.cur]) {
			s.take()
		}
		s.pos, s.pline, s.pcol = s.end, s.eline, s.ecol
		if !s.ensure(1) {
			if s.rerr != nil {
				return s.setErr(s.rerr)
			}
			return s.setErr(io.EOF)
		}

		switch ch := s.win[s.cur]; {
		case ch == '{':
			return s.emit(LBrace)
		case ch == '}':
			return s.emit(RBrace)
		case ch == ']':
			return s.emit(RSquare)
		case ch == '=':
			return s.emit(Equal)
		case ch == ',':
			return s.emit(Comma)
		case ch == ';':
			return s.emit(Semi)

		case ch == '[':
			// A "[" followed by "=..." or "[" opens a long-bracket string;
			// otherwise it is a key opener.
			if level, ok := s.longOpen(); ok {
				return s.scanLongString(level)
			}
			return s.emit(LSquare)

		case ch == '\'', ch == '"':
			return s.scanQuoted(ch)

		case ch == '-':
			if s.peekString("--") {
				if err := s.scanComment(); err != nil {
					return err
				}
				if s.comments {
					return nil
				}
				s.buf.Reset() // discard and continue scanning
				continue
			}
			return s.scanMinus()

		case isDigit(ch):
			return s.scanNumber(false)
		case ch == '.' && s.ensure(2) && isDigit(s.win[s.cur+1]):
			return s.scanNumber(false)

		case isNameStart(ch):
			return s.scanName()

		default:
			return s.failf("unexpected %q", ch)
		}
	}
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token.  The return value is
// only valid until the next call of Next. The caller must copy the contents
// of the returned slice if it is needed beyond that.
func (s *Scanner) Text() []byte { return s.buf.Bytes() }

// Copy returns a copy of the undecoded text of the current token.
func (s *Scanner) Copy() []byte { return append([]byte(nil), s.buf.Bytes()...) }

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.pos, End: s.end} }

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.Span(),
		First: LineCol{Line: s.pline + 1, Column: s.pcol},
		Last:  LineCol{Line: s.eline + 1, Column: s.ecol},
	}
}

// Int64 decodes the text of the current token as an int64.
// It panics if the current token is not an Integer.
func (s *Scanner) Int64() int64 {
	if s.tok != Integer {
		panic("token is not an integer")
	}
	v, err := ParseInt(s.buf.Bytes())
	if err != nil {
		panic(err)
	}
	return v
}

// Float64 decodes the text of the current token as a float64.
// It panics if the current token is not an Integer, Number, Inf, or NaN.
func (s *Scanner) Float64() float64 {
	switch s.tok {
	case Integer, Number, Inf, NaN:
		v, err := ParseFloat(s.buf.Bytes())
		if err != nil {
			panic(err)
		}
		return v
	}
	panic("token is not a number")
}

// Unquote decodes the text of the current token as a string.
// It panics if the current token is not a String.
func (s *Scanner) Unquote() string {
	if s.tok != String {
		panic("token is not a string")
	}
	dec, err := Unquote(s.buf.Bytes())
	if err != nil {
		panic(err)
	}
	return dec
}

// Name returns the text of the current token as a string.
// It panics if the current token is not a Name.
func (s *Scanner) Name() string {
	if s.tok != Name {
		panic("token is not a name")
	}
	return s.buf.String()
}

// Bool reports the value of the current token.
// It panics if the current token is not True or False.
func (s *Scanner) Bool() bool {
	switch s.tok {
	case True:
		return true
	case False:
		return false
	}
	panic("token is not a Boolean constant")
}

// ensure guarantees at least n bytes of unread input are contiguously
// available in the window, shifting and refilling as needed. It reports
// false if the input ends with fewer than n bytes available.
func (s *Scanner) ensure(n int) bool {
	for s.fill-s.cur < n && !s.eof {
		if s.cur > 0 {
			copy(s.win, s.win[s.cur:s.fill])
			s.fill -= s.cur
			s.cur = 0
		}
		if n > len(s.win) {
			grown := make([]byte, 2*len(s.win)+n)
			copy(grown, s.win[:s.fill])
			s.win = grown
		}
		nr, err := s.r.Read(s.win[s.fill:])
		s.fill += nr
		if err == io.EOF {
			s.eof = true
		} else if err != nil {
			s.eof = true
			s.rerr = err
		}
	}
	return s.fill-s.cur >= n
}

// take consumes and returns the next byte of input, updating position
// accounting. The caller must have previously ensured availability.
func (s *Scanner) take() byte {
	b := s.win[s.cur]
	s.cur++
	s.end++
	if b == '\n' {
		s.eline++
		s.ecol = 0
	} else {
		s.ecol++
	}
	return b
}

// keep consumes the next byte and appends it to the token buffer.
func (s *Scanner) keep() byte { b := s.take(); s.buf.WriteByte(b); return b }

// peekString reports whether the unread input begins with text, without
// consuming anything.
func (s *Scanner) peekString(text string) bool {
	if !s.ensure(len(text)) {
		return false
	}
	return string(s.win[s.cur:s.cur+len(text)]) == text
}

// consumeString consumes text if the unread input begins with it, appending
// it to the token buffer.
func (s *Scanner) consumeString(text string) bool {
	if !s.peekString(text) {
		return false
	}
	for i := 0; i < len(text); i++ {
		s.keep()
	}
	return true
}

// keepWhile consumes bytes matching f into the token buffer, returning the
// number consumed. Input is refilled transparently, so a run longer than the
// window is not truncated.
func (s *Scanner) keepWhile(f func(byte) bool) int {
	var n int
	for s.ensure(1) && f(s.win[s.cur]) {
		s.keep()
		n++
	}
	return n
}

// emit consumes a single byte as a complete token of type tok.
func (s *Scanner) emit(tok Token) error {
	s.keep()
	s.tok = tok
	return nil
}

// longOpen reports whether the unread input begins a long-bracket opener
// "[" "="* "[", and if so its level (the count of "=" signs).
func (s *Scanner) longOpen() (level int, ok bool) {
	for i := 1; ; i++ {
		if !s.ensure(i + 1) {
			return 0, false
		}
		switch s.win[s.cur+i] {
		case '=':
			// keep counting
		case '[':
			return i - 1, true
		default:
			return 0, false
		}
	}
}

// scanLongBody consumes the body of a long-bracket string or comment whose
// opener has already been consumed, through the matching level-N closer.
// Bracket runs of a different level are literal content.
func (s *Scanner) scanLongBody(level int, what string) error {
	for {
		if !s.ensure(1) {
			return s.failf("unexpected end of input in %s", what)
		}
		if s.keep() != ']' {
			continue
		}

		// Candidate closer: count the "=" signs that follow.
		var n int
		for s.ensure(1) && s.win[s.cur] == '=' {
			s.keep()
			n++
		}
		if !s.ensure(1) {
			return s.failf("unexpected end of input in %s", what)
		}
		if n == level && s.win[s.cur] == ']' {
			s.keep()
			return nil
		}
		// Not a matching closer; what we consumed is literal content. If the
		// next byte is "]" it may begin a new candidate, so leave it unread.
	}
}

// scanLongString consumes a long-bracket string literal of the given level.
// The raw text, brackets included, becomes the token text.
func (s *Scanner) scanLongString(level int) error {
	for i := 0; i < level+2; i++ {
		s.keep() // the opener: "[" "="* "["
	}
	if err := s.scanLongBody(level, "long string"); err != nil {
		return err
	}
	s.tok = String
	return nil
}

// scanQuoted consumes a quoted string literal delimited by open, validating
// escape sequences. The raw text, quotes included, becomes the token text.
func (s *Scanner) scanQuoted(open byte) error {
	s.keep()
	for {
		if !s.ensure(1) {
			return s.failf("unexpected end of input in string")
		}
		switch ch := s.keep(); {
		case ch == open:
			s.tok = String
			return nil
		case ch == '\n', ch == '\r':
			return s.failf("unterminated string")
		case ch == '\\':
			if err := s.scanEscape(); err != nil {
				return err
			}
		}
	}
}

// scanEscape validates a single backslash escape whose "\" has already been
// consumed, leaving the raw text in the token buffer.
func (s *Scanner) scanEscape() error {
	if !s.ensure(1) {
		return s.failf("unexpected end of input in string")
	}
	switch ch := s.keep(); ch {
	case '\\', '\'', '"', 'a', 'b', 'f', 'n', 'r', 't', 'v', '[', ']':
		return nil
	default:
		if !isDigit(ch) {
			return s.failf("invalid %q after escape", ch)
		}
		v := int(ch - '0')
		for i := 0; i < 2; i++ {
			if !s.ensure(1) || !isDigit(s.win[s.cur]) {
				break
			}
			v = 10*v + int(s.keep()-'0')
		}
		if v > 255 {
			return s.failf("escape value %d out of range", v)
		}
		return nil
	}
}

// scanComment consumes a comment beginning with "--", either a line comment
// terminated by a newline or EOF, or a long-bracket comment terminated by
// its matching closer. The terminating newline of a line comment is not part
// of the token text.
func (s *Scanner) scanComment() error {
	s.keep()
	s.keep() // "--"
	if level, ok := s.longOpen(); ok {
		for i := 0; i < level+2; i++ {
			s.keep()
		}
		if err := s.scanLongBody(level, "long comment"); err != nil {
			return err
		}
		s.tok = LongComment
		return nil
	}
	s.keepWhile(isNotNL)
	s.tok = LineComment
	return nil
}

// scanMinus consumes a "-" that does not open a comment. Lua's literal
// reader permits horizontal whitespace between the sign and the digits; a
// sign with nothing to negate is an error, since the "-" is already spent.
func (s *Scanner) scanMinus() error {
	s.keep()
	for s.ensure(1) && (s.win[s.cur] == ' ' || s.win[s.cur] == '\t') {
		s.take() // not token text
	}
	if s.consumeString("math.huge") {
		s.tok = Inf
		return nil
	}
	if !s.ensure(1) {
		return s.failf("unexpected end of input after %q", "-")
	}
	if ch := s.win[s.cur]; !isDigit(ch) && ch != '.' {
		return s.failf("expected digits after %q", "-")
	}
	return s.scanNumber(true)
}

// scanNumber consumes a numeric literal. The optional leading "-" has
// already been consumed when neg is true.
func (s *Scanner) scanNumber(neg bool) error {
	if s.consumeString("0x") || s.consumeString("0X") {
		if s.keepWhile(isHexDigit) == 0 {
			return s.failf("missing hex digits")
		}
		s.tok = Integer
		return nil
	}

	nint := s.keepWhile(isDigit)
	isFloat := false
	if s.ensure(1) && s.win[s.cur] == '.' {
		s.keep()
		if s.keepWhile(isDigit) == 0 && nint == 0 {
			return s.failf("missing digits in number")
		}
		isFloat = true
	} else if nint == 0 {
		return s.failf("missing digits in number")
	}
	if s.ensure(1) && (s.win[s.cur] == 'e' || s.win[s.cur] == 'E') {
		s.keep()
		if s.ensure(1) && (s.win[s.cur] == '+' || s.win[s.cur] == '-') {
			s.keep()
		}
		if s.keepWhile(isDigit) == 0 {
			return s.failf("missing exponent digits")
		}
		isFloat = true
	}

	// The whole-part integer zero may begin the NaN spelling "0/0".
	if !neg && !isFloat && s.buf.String() == "0" && s.consumeString("/0") {
		s.tok = NaN
		return nil
	}

	if isFloat {
		s.tok = Number
	} else {
		s.tok = Integer
	}
	return nil
}

// scanName consumes an identifier and classifies the keyword constants.
// The spelling "math.huge" is recognized as a single constant token; any
// other identifier, including a plain "math", is an ordinary Name.
func (s *Scanner) scanName() error {
	s.keep()
	s.keepWhile(isNameRune)
	switch s.buf.String() {
	case "nil":
		s.tok = Nil
	case "true":
		s.tok = True
	case "false":
		s.tok = False
	case "math":
		if s.peekString(".huge") && !(s.ensure(6) && isNameRune(s.win[s.cur+5])) {
			s.consumeString(".huge")
			s.tok = Inf
		} else {
			s.tok = Name
		}
	default:
		s.tok = Name
	}
	return nil
}

type posError struct {
	pos int
	err error
}

func (p posError) Error() string {
	return fmt.Sprintf("%s (offset %d)", p.err.Error(), p.pos)
}

func (p posError) Unwrap() error { return p.err }

func (s *Scanner) setErr(err error) error {
	s.err = err
	return err
}

func (s *Scanner) failf(msg string, args ...any) error {
	return s.setErr(posError{s.end, fmt.Errorf(msg, args...)})
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNotNL(ch byte) bool     { return ch != '\n' && ch != '\r' }
func isDigit(ch byte) bool     { return '0' <= ch && ch <= '9' }
func isNameStart(ch byte) bool { return ch == '_' || isLetter(ch) }
func isNameRune(ch byte) bool  { return isNameStart(ch) || isDigit(ch) }

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
