// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package ltree

import (
	"fmt"
	"io"
	"strings"
)

// An Anchor represents a location in source text. The methods of an Anchor
// will report the location, token type, and contents of the anchor.
type Anchor interface {
	Token() Token       // Returns the token type of the anchor
	Text() []byte       // Returns a view of the raw (undecoded) text of the anchor
	Copy() []byte       // Returns a copy of the raw text of the anchor
	Location() Location // Returns the full location of the anchor
}

// A Handler handles events from parsing an input stream.  If a method
// reports an error, parsing stops and that error is returned to the caller.
// The parser ensures tables are correctly balanced.
//
// The Anchor argument to a Handler method is only valid for the duration of
// that method call. If the method needs to retain information about the
// location after it returns, it must copy the relevant data.
type Handler interface {
	// Begin a new table, whose open brace is at loc.
	BeginTable(loc Anchor) error

	// End the most-recently-opened table, whose close brace is at loc.
	EndTable(loc Anchor) error

	// Report the key of a field in the current table. The anchor is the key
	// literal: a Name token for the unquoted "key = value" form, otherwise
	// the literal found between "[" and "]". A Nil anchor means the input
	// spelled an explicit [nil] key; accepting or rejecting it is the
	// handler's concern.
	Key(loc Anchor) error

	// Report a field or top-level value at the given location. The type of
	// the value can be recovered from the token. String tokens are quoted.
	Value(loc Anchor) error

	// EndOfInput reports the end of the input stream.
	EndOfInput(loc Anchor)
}

// CommentHandler is an optional interface that a Handler may implement to
// handle comment tokens. If a handler implements this method and comment
// preservation is enabled in the scanner, Comment will be called for each
// comment token that occurs in the input. If the handler does not provide
// this method, comments will be silently discarded.
type CommentHandler interface {
	// Process the line or long comment at the specified location.
	// Comments include their leading "--" marker; line comments do not
	// include the terminating newline.
	Comment(loc Anchor)
}

// Stream is a stream parser that consumes input and delivers events to a
// Handler corresponding with the structure of the input.
type Stream struct {
	s      *Scanner
	frames []frame
}

// NewStream constructs a new Stream that consumes input from r.
func NewStream(r io.Reader) *Stream { return &Stream{s: NewScanner(r)} }

// NewStreamWithScanner constructs a new Stream that consumes input from s.
func NewStreamWithScanner(s *Scanner) *Stream { return &Stream{s: s} }

// PreserveComments configures the scanner associated with s to report
// (true) or silently discard (false) comment tokens.
func (s *Stream) PreserveComments(ok bool) { s.s.PreserveComments(ok) }

// Path renders the parser's current position as a Lua-like access path,
// for example `.alpha[3]["odd key"]`. At the top level the path is empty.
func (s *Stream) Path() string {
	var sb strings.Builder
	for _, f := range s.frames {
		sb.WriteString(f.cur)
	}
	return sb.String()
}

// A frame records the parse state of one open table: how many positional
// fields have been seen, and the rendering of the field being parsed.
type frame struct {
	n   int    // positional fields seen so far
	cur string // path element for the current field
}

func (s *Stream) recoverParseError(errp *error) {
	if serr := recover(); serr != nil {
		switch err := serr.(type) {
		case *SyntaxError:
			*errp = err
		case handlerError:
			*errp = err.error
		default:
			panic(serr)
		}
	}
}

// Parse parses the input stream and delivers events to h until either an
// error occurs or the input is exhausted. In case of a syntax error, the
// returned error has type [*SyntaxError].
func (s *Stream) Parse(h Handler) (err error) {
	defer s.recoverParseError(&err)

	for {
		err := s.nextToken(h)
		if err == io.EOF {
			h.EndOfInput(s.s)
			return nil
		} else if err != nil {
			s.syntaxError(err, "%v", err)
		}

		s.parseValue(h, s.s.Token())
	}
}

// ParseOne parses a single value from the input stream and delivers events
// to h until the value is complete or an error occurs. If no further value
// is available from the input, ParseOne returns io.EOF. In case of a syntax
// error, the returned error has type [*SyntaxError].
func (s *Stream) ParseOne(h Handler) (err error) {
	defer s.recoverParseError(&err)

	if err := s.nextToken(h); err == io.EOF {
		h.EndOfInput(s.s)
		return err
	} else if err != nil {
		s.syntaxError(err, "%v", err)
	}
	s.parseValue(h, s.s.Token())
	return nil
}

// parseValue consumes a single value of any type, whose first token is tok.
func (s *Stream) parseValue(h Handler, tok Token) {
	switch tok {
	case LBrace:
		s.parseTable(h)
	case Integer, Number, String, True, False, Nil, Inf, NaN:
		s.checkError(h.Value(s.s))
	case RBrace, RSquare, LSquare, Equal, Comma, Semi:
		s.syntaxError(nil, "unexpected %v", tok)
	case Name:
		s.syntaxError(nil, "unexpected name %q", s.s.Text())
	default:
		s.syntaxError(nil, "unknown token %v", tok)
	}
}

// parseTable consumes a table constructor and its fields.
// Precondition: token == LBrace.
// Postcondition: token == RBrace.
func (s *Stream) parseTable(h Handler) {
	s.checkError(h.BeginTable(s.s))
	s.frames = append(s.frames, frame{})

	tok := s.advance(h)
	for tok != RBrace {
		s.parseField(h, tok)

		// After a field comes a separator or the end of the table.
		tok = s.advance(h, Comma, Semi, RBrace)
		if tok == RBrace {
			break
		}
		tok = s.advance(h) // field start, or "}" after a trailing separator
	}

	s.frames = s.frames[:len(s.frames)-1]
	s.checkError(h.EndTable(s.s))
}

// parseField consumes a single table field beginning at tok: a bare-name
// key, a bracketed literal key, or a positional value.
func (s *Stream) parseField(h Handler, tok Token) {
	switch tok {
	case Name:
		s.top().cur = "." + string(s.s.Text())
		s.checkError(h.Key(s.s))
		s.advance(h, Equal)
		s.parseValue(h, s.advance(h))

	case LSquare:
		switch key := s.advance(h); key {
		case Integer, Number, String, True, False, Nil, Inf, NaN:
			s.top().cur = keyPath(key, s.s.Text())
			s.checkError(h.Key(s.s))
		default:
			s.syntaxError(nil, "expected literal key, got %v", key)
		}
		s.advance(h, RSquare)
		s.advance(h, Equal)
		s.parseValue(h, s.advance(h))

	default:
		f := s.top()
		f.n++
		f.cur = fmt.Sprintf("[%d]", f.n)
		s.parseValue(h, tok)
	}
}

func (s *Stream) top() *frame { return &s.frames[len(s.frames)-1] }

// keyPath renders a bracketed key literal as a path element.
func keyPath(tok Token, text []byte) string {
	if tok == String {
		dec, err := Unquote(text)
		if err == nil {
			if isBarePath(dec) {
				return "." + dec
			}
			return `["` + dec + `"]`
		}
	}
	return "[" + string(text) + "]"
}

// isBarePath reports whether name can appear in a path after "." without
// quoting: non-empty, and free of spaces, tabs, dots, brackets, and braces.
func isBarePath(name string) bool {
	return name != "" && !strings.ContainsAny(name, " \t.[]{}")
}

func (s *Stream) nextToken(h Handler) error {
	for {
		if err := s.s.Next(); err != nil {
			return err
		}
		// Comment tokens are reported only when the scanner preserves them;
		// pass them to the handler if it implements CommentHandler. Either
		// way they are invisible to the rest of the parser.
		if tok := s.s.Token(); tok == LineComment || tok == LongComment {
			if ch, ok := h.(CommentHandler); ok {
				ch.Comment(s.s)
			}
			continue
		}
		return nil
	}
}

func (s *Stream) advance(h Handler, tokens ...Token) Token {
	if err := s.nextToken(h); err != nil {
		s.syntaxError(err, "%v", tokLabel(tokens, err))
	}
	tok := s.s.Token()
	if len(tokens) != 0 && !tokOneOf(tok, tokens) {
		s.syntaxError(nil, "%v", tokLabel(tokens, tok))
	}
	return tok
}

func (s *Stream) syntaxError(err error, msg string, args ...any) {
	panic(&SyntaxError{
		Location: s.s.Location().First,
		Path:     s.Path(),
		Message:  fmt.Sprintf(msg, args...),
		err:      err,
	})
}

func (s *Stream) checkError(err error) {
	if err != nil {
		panic(handlerError{err})
	}
}

type handlerError struct{ error }

func (h handlerError) Unwrap() error { return h.error }

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []Token, got any) string {
	if len(tokens) == 0 {
		if err, ok := got.(error); ok {
			return fmt.Sprintf("expected more input, got error: %v", err)
		}
		return fmt.Sprint(got)
	}
	var exp string
	if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, len(tokens)-1)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	if err, ok := got.(error); ok {
		return fmt.Sprintf("expected %s, got error: %v", exp, err)
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}

// tokOneOf reports whether cur is an element of tokens.
func tokOneOf(cur Token, tokens []Token) bool {
	for _, t := range tokens {
		if t == cur {
			return true
		}
	}
	return false
}

// SyntaxError is the concrete type of errors reported by the stream parser.
// Path locates the error structurally, as a Lua-like access path from the
// top of the document; it is empty at the top level.
type SyntaxError struct {
	Location LineCol
	Path     string
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	if s.Path != "" {
		return fmt.Sprintf("at %s (%s): %s", s.Location, s.Path, s.Message)
	}
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }
